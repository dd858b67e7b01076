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

// ReplayMessage moves one dead-lettered message back to its live entity and,
// when the message is tracked, records the attempt and transitions its status.
func (uc *UseCase) ReplayMessage(ctx context.Context, namespaceID uuid.UUID, entity, subscription string, sequenceNumber int64, replayedBy string) error {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.replay_message")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_id", namespaceID.String()),
		attribute.String("app.request.entity_name", entity),
		attribute.Int64("app.request.sequence_number", sequenceNumber),
	)

	if strings.TrimSpace(entity) == "" {
		return pkg.ValidateBusinessError(constant.ErrEntityNameRequired, reflect.TypeOf(mmodel.Message{}).Name())
	}

	client, ns, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return err
	}

	replayErr := client.ReplayMessage(ctx, entity, subscription, sequenceNumber, "")
	if replayErr != nil {
		libOpentelemetry.HandleSpanError(&span, "Replay failed", replayErr)

		logger.Errorf("Replay of seq %d on %s failed: %v", sequenceNumber, entity, replayErr)
	}

	uc.recordManualReplay(ctx, ns.ID, entity, subscription, sequenceNumber, replayedBy, replayErr)

	return replayErr
}

// recordManualReplay persists the outcome of an operator-initiated replay when
// the message is tracked. Untracked messages replay without bookkeeping.
func (uc *UseCase) recordManualReplay(ctx context.Context, namespaceID uuid.UUID, entity, subscription string, sequenceNumber int64, replayedBy string, replayErr error) {
	logger := libCommons.NewLoggerFromContext(ctx)

	entityName := entity
	if subscription != "" {
		entityName = mmodel.SubscriptionEntityName(entity, subscription)
	}

	tracked, err := uc.DlqRepo.FindBySequence(ctx, namespaceID, entityName, sequenceNumber)
	if err != nil {
		var notFound pkg.EntityNotFoundError
		if !errors.As(err, &notFound) {
			logger.Warnf("Failed to look up tracked message for replay bookkeeping: %v", err)
		}

		return
	}

	outcome := constant.ReplayOutcomeSuccess
	details := ""

	if replayErr != nil {
		outcome = constant.ReplayOutcomeFailed
		details = replayErr.Error()

		var notFound pkg.EntityNotFoundError
		if errors.As(replayErr, &notFound) {
			outcome = constant.ReplayOutcomeError
		}
	}

	record := &mmodel.ReplayHistory{
		DlqMessageID:     tracked.ID,
		ReplayedAt:       time.Now().UTC(),
		ReplayedBy:       replayedBy,
		ReplayStrategy:   constant.ReplayStrategyOriginalEntity,
		ReplayedToEntity: entity,
		OutcomeStatus:    outcome,
		ErrorDetails:     details,
	}

	if err := uc.DlqRepo.RecordReplayOutcome(ctx, record); err != nil {
		logger.Warnf("Failed to record replay outcome for tracked message %s: %v", tracked.ID, err)
	}
}
