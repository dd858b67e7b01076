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

// SendMessage publishes an operator-authored message to a queue or topic.
func (uc *UseCase) SendMessage(ctx context.Context, namespaceID uuid.UUID, input mmodel.SendMessageInput) error {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.send_message")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_id", namespaceID.String()),
		attribute.String("app.request.entity_name", input.EntityName),
	)

	if strings.TrimSpace(input.EntityName) == "" {
		return pkg.ValidateBusinessError(constant.ErrEntityNameRequired, reflect.TypeOf(mmodel.Message{}).Name())
	}

	client, _, err := uc.brokerClient(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return err
	}

	if err := client.SendMessage(ctx, input); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to send message", err)

		logger.Errorf("Failed to send message to %s: %v", input.EntityName, err)

		return err
	}

	return nil
}
