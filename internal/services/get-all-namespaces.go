package services

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg/mmodel"
)

// GetAllNamespaces fetches every namespace, connected or disconnected.
func (uc *UseCase) GetAllNamespaces(ctx context.Context) ([]*mmodel.Namespace, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_all_namespaces")
	defer span.End()

	namespaces, err := uc.NamespaceRepo.FindAll(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get namespaces", err)

		logger.Errorf("Failed to get namespaces: %v", err)

		return nil, err
	}

	return namespaces, nil
}
