package services

import (
	"context"
	"errors"
	"reflect"
	"strings"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// PurgeMessage deletes one message by sequence number. A tracked dead-lettered
// message purged this way transitions to Discarded.
func (uc *UseCase) PurgeMessage(ctx context.Context, namespaceID uuid.UUID, entity, subscription string, sequenceNumber int64, fromDeadLetter bool) error {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.purge_message")
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

	if err := client.PurgeMessage(ctx, entity, subscription, sequenceNumber, fromDeadLetter); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Purge failed", err)

		logger.Errorf("Purge of seq %d on %s failed: %v", sequenceNumber, entity, err)

		return err
	}

	if fromDeadLetter {
		entityName := entity
		if subscription != "" {
			entityName = mmodel.SubscriptionEntityName(entity, subscription)
		}

		tracked, err := uc.DlqRepo.FindBySequence(ctx, ns.ID, entityName, sequenceNumber)
		if err == nil {
			if err := uc.DlqRepo.TransitionStatus(ctx, tracked.ID, constant.DlqStatusDiscarded); err != nil {
				var terminal pkg.UnprocessableOperationError
				if !errors.As(err, &terminal) {
					logger.Warnf("Failed to discard tracked message %s after purge: %v", tracked.ID, err)
				}
			}
		}
	}

	return nil
}
