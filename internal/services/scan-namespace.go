package services

import (
	"context"
	"encoding/json"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/internal/adapters/servicebus"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"go.opentelemetry.io/otel/attribute"
)

// ScanNamespace runs one scanner pass over a namespace: every queue and
// subscription with a dead-letter backlog is peeked, each sighting upserted,
// and Active rows that disappeared from their DLQ are resolved once stale.
// Returns the number of newly tracked messages.
//
// Errors on a single entity are logged and skipped so one broken entity never
// starves the rest of the namespace.
func (uc *UseCase) ScanNamespace(ctx context.Context, ns *mmodel.Namespace, settings ScanSettings) (int, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.scan_namespace")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.namespace_id", ns.ID.String()),
	)

	scanStarted := time.Now().UTC()

	client, _, err := uc.brokerClientFor(ctx, ns)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return 0, err
	}

	created := 0
	observed := make(map[string][]int64)

	queues, err := client.GetQueues(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list queues", err)

		return 0, err
	}

	for _, queue := range queues {
		if queue.Counts.DeadLetter == 0 {
			continue
		}

		seqs, n, err := uc.scanEntity(ctx, client, ns, scanEntityInput{
			peekEntity: queue.Name,
			entityName: queue.Name,
			entityType: constant.EntityTypeQueue,
		}, settings)
		if err != nil {
			logger.Warnf("Scanning DLQ of queue %s in namespace %s failed: %v", queue.Name, ns.Name, err)

			continue
		}

		observed[queue.Name] = seqs
		created += n
	}

	topics, err := client.GetTopics(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to list topics", err)

		return created, err
	}

	for _, topic := range topics {
		subscriptions, err := client.GetSubscriptions(ctx, topic.Name)
		if err != nil {
			logger.Warnf("Listing subscriptions of topic %s in namespace %s failed: %v", topic.Name, ns.Name, err)

			continue
		}

		for _, subscription := range subscriptions {
			if subscription.Counts.DeadLetter == 0 {
				continue
			}

			entityName := mmodel.SubscriptionEntityName(topic.Name, subscription.Name)

			seqs, n, err := uc.scanEntity(ctx, client, ns, scanEntityInput{
				peekEntity:   topic.Name,
				subscription: subscription.Name,
				entityName:   entityName,
				topicName:    topic.Name,
				entityType:   constant.EntityTypeSubscription,
			}, settings)
			if err != nil {
				logger.Warnf("Scanning DLQ of subscription %s failed: %v", entityName, err)

				continue
			}

			observed[entityName] = seqs
			created += n
		}
	}

	uc.resolveVanished(ctx, ns, observed, scanStarted.Add(-settings.StaleThreshold))

	return created, nil
}

type scanEntityInput struct {
	peekEntity   string
	subscription string
	entityName   string
	topicName    string
	entityType   constant.EntityType
}

func (uc *UseCase) scanEntity(ctx context.Context, client servicebus.Client, ns *mmodel.Namespace, input scanEntityInput, settings ScanSettings) ([]int64, int, error) {
	logger := libCommons.NewLoggerFromContext(ctx)

	messages, err := client.PeekMessages(ctx, mmodel.PeekMessagesInput{
		EntityName:       input.peekEntity,
		SubscriptionName: input.subscription,
		FromDeadLetter:   true,
		MaxMessages:      settings.MaxPeekPerEntity,
	})
	if err != nil {
		return nil, 0, err
	}

	observedAt := time.Now().UTC()
	created := 0
	seqs := make([]int64, 0, len(messages))

	for _, msg := range messages {
		seqs = append(seqs, msg.SequenceNumber)

		var propertiesJSON string

		if len(msg.ApplicationProperties) > 0 {
			if raw, err := json.Marshal(msg.ApplicationProperties); err == nil {
				propertiesJSON = string(raw)
			}
		}

		isNew, err := uc.DlqRepo.UpsertObserved(ctx, &mmodel.DlqObservation{
			NamespaceID:                ns.ID,
			EntityName:                 input.entityName,
			TopicName:                  input.topicName,
			EntityType:                 input.entityType,
			BrokerMessageID:            msg.MessageID,
			SequenceNumber:             msg.SequenceNumber,
			EnqueuedTime:               msg.EnqueuedTime,
			DeadLetterReason:           msg.DeadLetterReason,
			DeadLetterErrorDescription: msg.DeadLetterErrorDescription,
			DeliveryCount:              msg.DeliveryCount,
			BodyPreview:                mmodel.TruncateBodyPreview(msg.Body),
			ContentType:                msg.ContentType,
			CustomPropertiesJSON:       propertiesJSON,
			ObservedAt:                 observedAt,
		})
		if err != nil {
			logger.Warnf("Upserting seq %d on %s failed: %v", msg.SequenceNumber, input.entityName, err)

			continue
		}

		if isNew {
			created++
		}
	}

	return seqs, created, nil
}

// resolveVanished transitions Active rows whose sequence was not observed this
// pass and whose last sighting is older than the stale threshold. Rows resolve
// exactly once; terminal states never revert.
func (uc *UseCase) resolveVanished(ctx context.Context, ns *mmodel.Namespace, observed map[string][]int64, staleBefore time.Time) {
	logger := libCommons.NewLoggerFromContext(ctx)

	entities, err := uc.DlqRepo.ListActiveEntities(ctx, ns.ID)
	if err != nil {
		logger.Warnf("Listing tracked entities for namespace %s failed: %v", ns.Name, err)

		return
	}

	for _, entityName := range entities {
		actives, err := uc.DlqRepo.ListActiveSequences(ctx, ns.ID, entityName)
		if err != nil {
			logger.Warnf("Listing active sequences on %s failed: %v", entityName, err)

			continue
		}

		observedSet := make(map[int64]struct{}, len(observed[entityName]))
		for _, seq := range observed[entityName] {
			observedSet[seq] = struct{}{}
		}

		var notSeen []int64

		for seq := range actives {
			if _, ok := observedSet[seq]; !ok {
				notSeen = append(notSeen, seq)
			}
		}

		resolved, err := uc.DlqRepo.MarkResolved(ctx, ns.ID, entityName, notSeen, staleBefore)
		if err != nil {
			logger.Warnf("Resolving vanished messages on %s failed: %v", entityName, err)

			continue
		}

		if resolved > 0 {
			logger.Infof("Resolved %d drained messages on %s", resolved, entityName)
		}
	}
}
