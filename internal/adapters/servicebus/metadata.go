package servicebus

import (
	"context"
	"reflect"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus/admin"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
)

// sbAdmin adapts the SDK admin client to the adminAPI slice, folding pager
// iteration into the list calls.
type sbAdmin struct {
	client *admin.Client
}

func (a *sbAdmin) ListQueues(ctx context.Context) ([]admin.QueueItem, error) {
	var items []admin.QueueItem

	pager := a.client.NewListQueuesPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Queues...)
	}

	return items, nil
}

func (a *sbAdmin) GetQueue(ctx context.Context, name string) (*admin.GetQueueResponse, error) {
	return a.client.GetQueue(ctx, name, nil)
}

func (a *sbAdmin) GetQueueRuntimeProperties(ctx context.Context, name string) (*admin.GetQueueRuntimePropertiesResponse, error) {
	return a.client.GetQueueRuntimeProperties(ctx, name, nil)
}

func (a *sbAdmin) ListTopics(ctx context.Context) ([]admin.TopicItem, error) {
	var items []admin.TopicItem

	pager := a.client.NewListTopicsPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Topics...)
	}

	return items, nil
}

func (a *sbAdmin) GetTopic(ctx context.Context, name string) (*admin.GetTopicResponse, error) {
	return a.client.GetTopic(ctx, name, nil)
}

func (a *sbAdmin) GetTopicRuntimeProperties(ctx context.Context, name string) (*admin.GetTopicRuntimePropertiesResponse, error) {
	return a.client.GetTopicRuntimeProperties(ctx, name, nil)
}

func (a *sbAdmin) ListSubscriptions(ctx context.Context, topic string) ([]admin.SubscriptionPropertiesItem, error) {
	var items []admin.SubscriptionPropertiesItem

	pager := a.client.NewListSubscriptionsPager(topic, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Subscriptions...)
	}

	return items, nil
}

func (a *sbAdmin) GetSubscription(ctx context.Context, topic, name string) (*admin.GetSubscriptionResponse, error) {
	return a.client.GetSubscription(ctx, topic, name, nil)
}

func (a *sbAdmin) GetSubscriptionRuntimeProperties(ctx context.Context, topic, name string) (*admin.GetSubscriptionRuntimePropertiesResponse, error) {
	return a.client.GetSubscriptionRuntimeProperties(ctx, topic, name, nil)
}

// GetQueues lists every queue with its static properties and runtime counters,
// all through the wrapper's cached admin client.
func (w *ClientWrapper) GetQueues(ctx context.Context) ([]*mmodel.Queue, error) {
	adminClient, err := w.getAdmin()
	if err != nil {
		return nil, err
	}

	items, err := adminClient.ListQueues(ctx)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Queue{}).Name())
	}

	queues := make([]*mmodel.Queue, 0, len(items))

	for _, item := range items {
		runtime, err := adminClient.GetQueueRuntimeProperties(ctx, item.QueueName)
		if err != nil {
			return nil, translateError(err, reflect.TypeOf(mmodel.Queue{}).Name())
		}

		if runtime == nil {
			// Deleted between list and get; skip rather than fail the listing.
			continue
		}

		queues = append(queues, mapQueue(item.QueueName, item.QueueProperties, runtime.QueueRuntimeProperties))
	}

	return queues, nil
}

// GetQueue retrieves one queue or a typed not-found.
func (w *ClientWrapper) GetQueue(ctx context.Context, name string) (*mmodel.Queue, error) {
	adminClient, err := w.getAdmin()
	if err != nil {
		return nil, err
	}

	properties, err := adminClient.GetQueue(ctx, name)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Queue{}).Name())
	}

	if properties == nil {
		return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.Queue{}).Name())
	}

	runtime, err := adminClient.GetQueueRuntimeProperties(ctx, name)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Queue{}).Name())
	}

	if runtime == nil {
		return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.Queue{}).Name())
	}

	return mapQueue(name, properties.QueueProperties, runtime.QueueRuntimeProperties), nil
}

// GetTopics lists every topic with static properties and runtime counters.
func (w *ClientWrapper) GetTopics(ctx context.Context) ([]*mmodel.Topic, error) {
	adminClient, err := w.getAdmin()
	if err != nil {
		return nil, err
	}

	items, err := adminClient.ListTopics(ctx)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Topic{}).Name())
	}

	topics := make([]*mmodel.Topic, 0, len(items))

	for _, item := range items {
		runtime, err := adminClient.GetTopicRuntimeProperties(ctx, item.TopicName)
		if err != nil {
			return nil, translateError(err, reflect.TypeOf(mmodel.Topic{}).Name())
		}

		if runtime == nil {
			continue
		}

		topics = append(topics, mapTopic(item.TopicName, item.TopicProperties, runtime.TopicRuntimeProperties))
	}

	return topics, nil
}

// GetTopic retrieves one topic or a typed not-found.
func (w *ClientWrapper) GetTopic(ctx context.Context, name string) (*mmodel.Topic, error) {
	adminClient, err := w.getAdmin()
	if err != nil {
		return nil, err
	}

	properties, err := adminClient.GetTopic(ctx, name)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Topic{}).Name())
	}

	if properties == nil {
		return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.Topic{}).Name())
	}

	runtime, err := adminClient.GetTopicRuntimeProperties(ctx, name)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Topic{}).Name())
	}

	if runtime == nil {
		return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.Topic{}).Name())
	}

	return mapTopic(name, properties.TopicProperties, runtime.TopicRuntimeProperties), nil
}

// GetSubscriptions lists a topic's subscriptions with runtime counters.
func (w *ClientWrapper) GetSubscriptions(ctx context.Context, topic string) ([]*mmodel.Subscription, error) {
	adminClient, err := w.getAdmin()
	if err != nil {
		return nil, err
	}

	items, err := adminClient.ListSubscriptions(ctx, topic)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Subscription{}).Name())
	}

	subscriptions := make([]*mmodel.Subscription, 0, len(items))

	for _, item := range items {
		runtime, err := adminClient.GetSubscriptionRuntimeProperties(ctx, topic, item.SubscriptionName)
		if err != nil {
			return nil, translateError(err, reflect.TypeOf(mmodel.Subscription{}).Name())
		}

		if runtime == nil {
			continue
		}

		subscriptions = append(subscriptions, mapSubscription(topic, item.SubscriptionName, item.SubscriptionProperties, runtime.SubscriptionRuntimeProperties))
	}

	return subscriptions, nil
}

// GetSubscription retrieves one subscription or a typed not-found.
func (w *ClientWrapper) GetSubscription(ctx context.Context, topic, name string) (*mmodel.Subscription, error) {
	adminClient, err := w.getAdmin()
	if err != nil {
		return nil, err
	}

	properties, err := adminClient.GetSubscription(ctx, topic, name)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Subscription{}).Name())
	}

	if properties == nil {
		return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.Subscription{}).Name())
	}

	runtime, err := adminClient.GetSubscriptionRuntimeProperties(ctx, topic, name)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Subscription{}).Name())
	}

	if runtime == nil {
		return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.Subscription{}).Name())
	}

	return mapSubscription(topic, name, properties.SubscriptionProperties, runtime.SubscriptionRuntimeProperties), nil
}

func mapQueue(name string, properties admin.QueueProperties, runtime admin.QueueRuntimeProperties) *mmodel.Queue {
	queue := &mmodel.Queue{
		Name: name,
		Counts: mmodel.EntityCounts{
			Active:             int64(runtime.ActiveMessageCount),
			DeadLetter:         int64(runtime.DeadLetterMessageCount),
			Scheduled:          int64(runtime.ScheduledMessageCount),
			Transfer:           int64(runtime.TransferMessageCount),
			TransferDeadLetter: int64(runtime.TransferDeadLetterMessageCount),
			Total:              runtime.TotalMessageCount,
		},
		SizeInBytes: runtime.SizeInBytes,
		CreatedAt:   runtime.CreatedAt,
		UpdatedAt:   runtime.UpdatedAt,
		AccessedAt:  runtime.AccessedAt,
	}

	if properties.Status != nil {
		queue.Status = string(*properties.Status)
	}

	if properties.MaxSizeInMegabytes != nil {
		queue.MaxSizeInMegabytes = *properties.MaxSizeInMegabytes
	}

	if properties.DefaultMessageTimeToLive != nil {
		queue.DefaultMessageTimeToLive = *properties.DefaultMessageTimeToLive
	}

	if properties.LockDuration != nil {
		queue.LockDuration = *properties.LockDuration
	}

	if properties.MaxDeliveryCount != nil {
		queue.MaxDeliveryCount = *properties.MaxDeliveryCount
	}

	if properties.RequiresSession != nil {
		queue.RequiresSession = *properties.RequiresSession
	}

	if properties.RequiresDuplicateDetection != nil {
		queue.RequiresDuplicateDetection = *properties.RequiresDuplicateDetection
	}

	if properties.EnablePartitioning != nil {
		queue.EnablePartitioning = *properties.EnablePartitioning
	}

	if properties.DeadLetteringOnMessageExpiration != nil {
		queue.DeadLetteringOnMessageExpiration = *properties.DeadLetteringOnMessageExpiration
	}

	if properties.ForwardTo != nil {
		queue.ForwardTo = *properties.ForwardTo
	}

	if properties.ForwardDeadLetteredMessagesTo != nil {
		queue.ForwardDeadLetteredMessagesTo = *properties.ForwardDeadLetteredMessagesTo
	}

	return queue
}

func mapTopic(name string, properties admin.TopicProperties, runtime admin.TopicRuntimeProperties) *mmodel.Topic {
	topic := &mmodel.Topic{
		Name:                  name,
		SizeInBytes:           runtime.SizeInBytes,
		SubscriptionCount:     runtime.SubscriptionCount,
		ScheduledMessageCount: runtime.ScheduledMessageCount,
		CreatedAt:             runtime.CreatedAt,
		UpdatedAt:             runtime.UpdatedAt,
		AccessedAt:            runtime.AccessedAt,
	}

	if properties.Status != nil {
		topic.Status = string(*properties.Status)
	}

	if properties.MaxSizeInMegabytes != nil {
		topic.MaxSizeInMegabytes = *properties.MaxSizeInMegabytes
	}

	if properties.DefaultMessageTimeToLive != nil {
		topic.DefaultMessageTimeToLive = *properties.DefaultMessageTimeToLive
	}

	if properties.RequiresDuplicateDetection != nil {
		topic.RequiresDuplicateDetection = *properties.RequiresDuplicateDetection
	}

	if properties.EnablePartitioning != nil {
		topic.EnablePartitioning = *properties.EnablePartitioning
	}

	return topic
}

func mapSubscription(topic, name string, properties admin.SubscriptionProperties, runtime admin.SubscriptionRuntimeProperties) *mmodel.Subscription {
	subscription := &mmodel.Subscription{
		TopicName: topic,
		Name:      name,
		Counts: mmodel.EntityCounts{
			Active:             int64(runtime.ActiveMessageCount),
			DeadLetter:         int64(runtime.DeadLetterMessageCount),
			Transfer:           int64(runtime.TransferMessageCount),
			TransferDeadLetter: int64(runtime.TransferDeadLetterMessageCount),
			Total:              runtime.TotalMessageCount,
		},
		CreatedAt:  runtime.CreatedAt,
		UpdatedAt:  runtime.UpdatedAt,
		AccessedAt: runtime.AccessedAt,
	}

	if properties.Status != nil {
		subscription.Status = string(*properties.Status)
	}

	if properties.LockDuration != nil {
		subscription.LockDuration = *properties.LockDuration
	}

	if properties.MaxDeliveryCount != nil {
		subscription.MaxDeliveryCount = *properties.MaxDeliveryCount
	}

	if properties.RequiresSession != nil {
		subscription.RequiresSession = *properties.RequiresSession
	}

	if properties.DeadLetteringOnMessageExpiration != nil {
		subscription.DeadLetteringOnMessageExpiration = *properties.DeadLetteringOnMessageExpiration
	}

	if properties.ForwardTo != nil {
		subscription.ForwardTo = *properties.ForwardTo
	}

	if properties.ForwardDeadLetteredMessagesTo != nil {
		subscription.ForwardDeadLetteredMessagesTo = *properties.ForwardDeadLetteredMessagesTo
	}

	return subscription
}
