package services

import (
	"context"
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

// PeekMessages reads messages non-destructively from a queue, subscription, or
// their dead-letter sub-queue. Every peek is a fresh snapshot.
func (uc *UseCase) PeekMessages(ctx context.Context, namespaceID uuid.UUID, input mmodel.PeekMessagesInput) ([]*mmodel.Message, error) {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.peek_messages")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_id", namespaceID.String()),
		attribute.String("app.request.entity_name", input.EntityName),
		attribute.Bool("app.request.from_dead_letter", input.FromDeadLetter),
	)

	if strings.TrimSpace(input.EntityName) == "" {
		return nil, pkg.ValidateBusinessError(constant.ErrEntityNameRequired, reflect.TypeOf(mmodel.Message{}).Name())
	}

	client, _, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return nil, err
	}

	messages, err := client.PeekMessages(ctx, input)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to peek messages", err)

		logger.Errorf("Failed to peek messages on %s: %v", input.EntityName, err)

		return nil, err
	}

	return messages, nil
}
