package services

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// GetDlqMessages fetches tracked messages for a namespace under a filter and
// paging.
func (uc *UseCase) GetDlqMessages(ctx context.Context, namespaceID uuid.UUID, filter mmodel.DlqFilter, page mmodel.Pagination) ([]*mmodel.DlqMessage, error) {
	_, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_dlq_messages")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_id", namespaceID.String()),
	)

	messages, err := uc.DlqRepo.FindByNamespace(ctx, namespaceID, filter, page)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get tracked messages", err)

		return nil, err
	}

	return messages, nil
}

// GetDlqMessageByID fetches one tracked message.
func (uc *UseCase) GetDlqMessageByID(ctx context.Context, id uuid.UUID) (*mmodel.DlqMessage, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_dlq_message_by_id")
	defer span.End()

	message, err := uc.DlqRepo.Find(ctx, id)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get tracked message", err)

		return nil, err
	}

	return message, nil
}

// GetDlqSummary aggregates a namespace's tracked messages.
func (uc *UseCase) GetDlqSummary(ctx context.Context, namespaceID uuid.UUID) (*mmodel.DlqSummary, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_dlq_summary")
	defer span.End()

	summary, err := uc.DlqRepo.GetSummary(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get summary", err)

		return nil, err
	}

	return summary, nil
}

// GetDlqTimeline fetches the replay attempts of one tracked message.
func (uc *UseCase) GetDlqTimeline(ctx context.Context, dlqMessageID uuid.UUID) ([]*mmodel.ReplayHistory, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_dlq_timeline")
	defer span.End()

	// Surface a typed not-found for unknown ids instead of an empty timeline.
	if _, err := uc.DlqRepo.Find(ctx, dlqMessageID); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get tracked message", err)

		return nil, err
	}

	timeline, err := uc.DlqRepo.FindTimeline(ctx, dlqMessageID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get timeline", err)

		return nil, err
	}

	return timeline, nil
}
