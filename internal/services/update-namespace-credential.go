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

// UpdateNamespaceCredential rotates a namespace's stored credential. The cached
// broker client is invalidated so the next request builds one against the new
// secret; an in-flight call on the old client finishes or observes disposal.
func (uc *UseCase) UpdateNamespaceCredential(ctx context.Context, id uuid.UUID, input *mmodel.UpdateCredentialInput) (*mmodel.Namespace, error) {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.update_namespace_credential")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_id", id.String()),
	)

	logger.Infof("Rotating credential for namespace %v", id)

	if strings.TrimSpace(input.ConnectionString) == "" {
		return nil, pkg.ValidateBusinessError(constant.ErrCredentialRequired, reflect.TypeOf(mmodel.Namespace{}).Name())
	}

	ns, err := uc.NamespaceRepo.Find(ctx, id)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get namespace", err)

		return nil, err
	}

	if ns.AuthType != constant.AuthTypeConnectionString {
		return nil, pkg.ValidateBusinessError(constant.ErrInvalidAuthType, reflect.TypeOf(mmodel.Namespace{}).Name())
	}

	encrypted, err := uc.Protector.Encrypt(input.ConnectionString)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to encrypt credential", err)

		return nil, err
	}

	updated, err := uc.NamespaceRepo.UpdateCredential(ctx, id, encrypted)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to update credential", err)

		return nil, err
	}

	uc.Brokers.Invalidate(ctx, id)

	return updated, nil
}
