package services

import (
	"context"
	"reflect"
	"strings"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"go.opentelemetry.io/otel/attribute"
)

// CreateNamespace connects a broker namespace: validates the input, encrypts
// the credential, probes the broker once, and persists the record. A wrapper
// is only cached when the probe succeeds.
func (uc *UseCase) CreateNamespace(ctx context.Context, input *mmodel.CreateNamespaceInput) (*mmodel.Namespace, error) {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.create_namespace")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.namespace_name", input.Name),
	)

	logger.Infof("Connecting namespace %s", input.Name)

	if strings.TrimSpace(input.Name) == "" {
		return nil, pkg.ValidateBusinessError(constant.ErrMissingFieldsInRequest, reflect.TypeOf(mmodel.Namespace{}).Name())
	}

	switch input.AuthType {
	case constant.AuthTypeConnectionString:
		if strings.TrimSpace(input.ConnectionString) == "" {
			return nil, pkg.ValidateBusinessError(constant.ErrCredentialRequired, reflect.TypeOf(mmodel.Namespace{}).Name())
		}
	case constant.AuthTypeManagedIdentity:
	default:
		return nil, pkg.ValidateBusinessError(constant.ErrInvalidAuthType, reflect.TypeOf(mmodel.Namespace{}).Name())
	}

	now := time.Now().UTC()

	ns := &mmodel.Namespace{
		ID:          libCommons.GenerateUUIDv7(),
		Name:        input.Name,
		DisplayName: input.DisplayName,
		AuthType:    input.AuthType,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if input.AuthType == constant.AuthTypeConnectionString {
		encrypted, err := uc.Protector.Encrypt(input.ConnectionString)
		if err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to encrypt credential", err)

			return nil, err
		}

		ns.EncryptedCredential = encrypted
	}

	client, err := uc.Brokers.GetOrCreate(ctx, ns, input.ConnectionString)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to build broker client", err)

		logger.Errorf("Failed to build broker client for namespace %s: %v", input.Name, err)

		return nil, err
	}

	if err := client.TestConnection(ctx); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Namespace probe failed", err)

		uc.Brokers.Invalidate(ctx, ns.ID)

		return nil, err
	}

	created, err := uc.NamespaceRepo.Create(ctx, ns)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to persist namespace", err)

		uc.Brokers.Invalidate(ctx, ns.ID)

		return nil, err
	}

	return created, nil
}
