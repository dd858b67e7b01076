package services

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
)

// GetQueues lists a namespace's queues with runtime counters.
func (uc *UseCase) GetQueues(ctx context.Context, namespaceID uuid.UUID) ([]*mmodel.Queue, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_queues")
	defer span.End()

	client, _, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return nil, err
	}

	queues, err := client.GetQueues(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list queues", err)

		return nil, err
	}

	return queues, nil
}

// GetQueue retrieves one queue.
func (uc *UseCase) GetQueue(ctx context.Context, namespaceID uuid.UUID, name string) (*mmodel.Queue, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_queue")
	defer span.End()

	client, _, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return nil, err
	}

	queue, err := client.GetQueue(ctx, name)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get queue", err)

		return nil, err
	}

	return queue, nil
}

// GetTopics lists a namespace's topics.
func (uc *UseCase) GetTopics(ctx context.Context, namespaceID uuid.UUID) ([]*mmodel.Topic, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_topics")
	defer span.End()

	client, _, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return nil, err
	}

	topics, err := client.GetTopics(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list topics", err)

		return nil, err
	}

	return topics, nil
}

// GetTopic retrieves one topic.
func (uc *UseCase) GetTopic(ctx context.Context, namespaceID uuid.UUID, name string) (*mmodel.Topic, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_topic")
	defer span.End()

	client, _, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return nil, err
	}

	topic, err := client.GetTopic(ctx, name)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get topic", err)

		return nil, err
	}

	return topic, nil
}

// GetSubscriptions lists a topic's subscriptions with runtime counters.
func (uc *UseCase) GetSubscriptions(ctx context.Context, namespaceID uuid.UUID, topic string) ([]*mmodel.Subscription, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_subscriptions")
	defer span.End()

	client, _, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return nil, err
	}

	subscriptions, err := client.GetSubscriptions(ctx, topic)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list subscriptions", err)

		return nil, err
	}

	return subscriptions, nil
}

// GetSubscription retrieves one subscription.
func (uc *UseCase) GetSubscription(ctx context.Context, namespaceID uuid.UUID, topic, name string) (*mmodel.Subscription, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_subscription")
	defer span.End()

	client, _, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return nil, err
	}

	subscription, err := client.GetSubscription(ctx, topic, name)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get subscription", err)

		return nil, err
	}

	return subscription, nil
}

// TestNamespaceConnection runs the cheap health probe for a namespace.
func (uc *UseCase) TestNamespaceConnection(ctx context.Context, namespaceID uuid.UUID) error {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.test_namespace_connection")
	defer span.End()

	client, _, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return err
	}

	if err := client.TestConnection(ctx); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Namespace probe failed", err)

		return err
	}

	return nil
}
