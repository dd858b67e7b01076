package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ReplayMessages replays a set of sequence numbers against one entity through
// a single receiver and sender. The result map carries one entry per requested
// sequence; a failure on one never aborts the rest.
func (uc *UseCase) ReplayMessages(ctx context.Context, namespaceID uuid.UUID, entity, subscription string, sequenceNumbers []int64, replayedBy string) (map[int64]error, error) {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.replay_messages")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_id", namespaceID.String()),
		attribute.String("app.request.entity_name", entity),
		attribute.Int("app.request.sequence_count", len(sequenceNumbers)),
	)

	if strings.TrimSpace(entity) == "" {
		return nil, pkg.ValidateBusinessError(constant.ErrEntityNameRequired, reflect.TypeOf(mmodel.Message{}).Name())
	}

	if len(sequenceNumbers) == 0 {
		return nil, pkg.ValidateBusinessError(constant.ErrBatchSequencesRequired, reflect.TypeOf(mmodel.Message{}).Name())
	}

	client, ns, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return nil, err
	}

	results, err := client.ReplayMessages(ctx, entity, subscription, sequenceNumbers, "")
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Batch replay failed", err)

		logger.Errorf("Batch replay on %s failed: %v", entity, err)

		return nil, err
	}

	uc.recordBatchReplay(ctx, ns.ID, entity, subscription, results, replayedBy)

	return results, nil
}

// recordBatchReplay persists per-sequence outcomes for the tracked subset of a
// manual batch replay in one transactional batch.
func (uc *UseCase) recordBatchReplay(ctx context.Context, namespaceID uuid.UUID, entity, subscription string, results map[int64]error, replayedBy string) {
	logger := libCommons.NewLoggerFromContext(ctx)

	entityName := entity
	if subscription != "" {
		entityName = mmodel.SubscriptionEntityName(entity, subscription)
	}

	now := time.Now().UTC()

	var records []*mmodel.ReplayHistory

	for sequenceNumber, result := range results {
		tracked, err := uc.DlqRepo.FindBySequence(ctx, namespaceID, entityName, sequenceNumber)
		if err != nil {
			var notFound pkg.EntityNotFoundError
			if !errors.As(err, &notFound) {
				logger.Warnf("Failed to look up tracked message seq %d: %v", sequenceNumber, err)
			}

			continue
		}

		outcome := constant.ReplayOutcomeSuccess
		details := ""

		if result != nil {
			outcome = constant.ReplayOutcomeFailed
			details = result.Error()

			var notFound pkg.EntityNotFoundError
			if errors.As(result, &notFound) {
				outcome = constant.ReplayOutcomeError
			}
		}

		records = append(records, &mmodel.ReplayHistory{
			DlqMessageID:     tracked.ID,
			ReplayedAt:       now,
			ReplayedBy:       replayedBy,
			ReplayStrategy:   constant.ReplayStrategyBatch,
			ReplayedToEntity: entity,
			OutcomeStatus:    outcome,
			ErrorDetails:     details,
		})
	}

	if err := uc.DlqRepo.RecordReplayOutcomes(ctx, records); err != nil {
		logger.Warnf("Failed to record batch replay outcomes: %v", err)
	}
}
