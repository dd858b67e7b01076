package services

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// GetNamespaceByID fetches one namespace from the repository.
func (uc *UseCase) GetNamespaceByID(ctx context.Context, id uuid.UUID) (*mmodel.Namespace, error) {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_namespace_by_id")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_id", id.String()),
	)

	ns, err := uc.NamespaceRepo.Find(ctx, id)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get namespace by id", err)

		logger.Errorf("Failed to get namespace by id %v", id)

		return nil, err
	}

	return ns, nil
}
