package services

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// ArchiveDlqMessage moves a tracked message to the Archived terminal state.
// The broker copy, if any, is left alone.
func (uc *UseCase) ArchiveDlqMessage(ctx context.Context, id uuid.UUID) error {
	return uc.transitionDlqMessage(ctx, id, constant.DlqStatusArchived, "service.archive_dlq_message")
}

// DiscardDlqMessage moves a tracked message to the Discarded terminal state
// without touching the broker.
func (uc *UseCase) DiscardDlqMessage(ctx context.Context, id uuid.UUID) error {
	return uc.transitionDlqMessage(ctx, id, constant.DlqStatusDiscarded, "service.discard_dlq_message")
}

func (uc *UseCase) transitionDlqMessage(ctx context.Context, id uuid.UUID, status constant.DlqMessageStatus, spanName string) error {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.dlq_message_id", id.String()),
	)

	if err := uc.DlqRepo.TransitionStatus(ctx, id, status); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to transition tracked message", err)

		logger.Errorf("Failed to transition tracked message %v to %s: %v", id, status, err)

		return err
	}

	return nil
}
