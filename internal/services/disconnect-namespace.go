package services

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// DisconnectNamespace deactivates a namespace and disposes its broker client.
// The record stays so tracked-message history remains joinable.
func (uc *UseCase) DisconnectNamespace(ctx context.Context, id uuid.UUID) (*mmodel.Namespace, error) {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.disconnect_namespace")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_id", id.String()),
	)

	logger.Infof("Disconnecting namespace %v", id)

	ns, err := uc.NamespaceRepo.SetActive(ctx, id, false)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to deactivate namespace", err)

		return nil, err
	}

	uc.Brokers.Invalidate(ctx, id)

	return ns, nil
}
