package services

import (
	"context"
	"errors"
	"testing"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	"github.com/debdevops/servicehub/internal/adapters/servicebus"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/dlq"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/namespace"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUpdateNamespaceCredential(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockNamespaceRepo := namespace.NewMockRepository(ctrl)
	mockBrokers := servicebus.NewMockProvider(ctrl)
	protector := newTestProtector(t)

	uc := &UseCase{
		NamespaceRepo: mockNamespaceRepo,
		DlqRepo:       dlq.NewMockRepository(ctrl),
		Brokers:       mockBrokers,
		Protector:     protector,
	}

	namespaceID := libCommons.GenerateUUIDv7()

	existing := &mmodel.Namespace{
		ID:        namespaceID,
		Name:      "prod-east",
		AuthType:  constant.AuthTypeConnectionString,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}

	newConnectionString := "Endpoint=sb://demo.servicebus.windows.net/;SharedAccessKeyName=root;SharedAccessKey=rotated"

	mockNamespaceRepo.EXPECT().Find(gomock.Any(), namespaceID).Return(existing, nil)
	mockNamespaceRepo.EXPECT().
		UpdateCredential(gomock.Any(), namespaceID, gomock.Any()).
		DoAndReturn(func(ctx context.Context, id any, encrypted string) (*mmodel.Namespace, error) {
			// What lands in the store decrypts back to the rotated secret.
			decrypted, err := protector.Decrypt(encrypted)
			require.NoError(t, err)
			assert.Equal(t, newConnectionString, decrypted)

			updated := *existing
			updated.EncryptedCredential = encrypted

			return &updated, nil
		})

	// The cached client for the namespace is disposed so the next request
	// builds one from the rotated credential.
	mockBrokers.EXPECT().Invalidate(gomock.Any(), namespaceID)

	updated, err := uc.UpdateNamespaceCredential(context.Background(), namespaceID, &mmodel.UpdateCredentialInput{
		ConnectionString: newConnectionString,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, updated.EncryptedCredential)
}

func TestUpdateNamespaceCredential_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc := &UseCase{
		NamespaceRepo: namespace.NewMockRepository(ctrl),
		DlqRepo:       dlq.NewMockRepository(ctrl),
		Brokers:       servicebus.NewMockProvider(ctrl),
		Protector:     newTestProtector(t),
	}

	_, err := uc.UpdateNamespaceCredential(context.Background(), libCommons.GenerateUUIDv7(), &mmodel.UpdateCredentialInput{})

	var validation pkg.ValidationError

	require.True(t, errors.As(err, &validation))
	assert.Equal(t, constant.ErrCredentialRequired.Error(), validation.Code)
}

func TestUpdateNamespaceCredential_ManagedIdentityRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockNamespaceRepo := namespace.NewMockRepository(ctrl)

	uc := &UseCase{
		NamespaceRepo: mockNamespaceRepo,
		DlqRepo:       dlq.NewMockRepository(ctrl),
		Brokers:       servicebus.NewMockProvider(ctrl),
		Protector:     newTestProtector(t),
	}

	namespaceID := libCommons.GenerateUUIDv7()

	mockNamespaceRepo.EXPECT().Find(gomock.Any(), namespaceID).Return(&mmodel.Namespace{
		ID:       namespaceID,
		AuthType: constant.AuthTypeManagedIdentity,
		IsActive: true,
	}, nil)

	_, err := uc.UpdateNamespaceCredential(context.Background(), namespaceID, &mmodel.UpdateCredentialInput{
		ConnectionString: "Endpoint=sb://x/;SharedAccessKeyName=n;SharedAccessKey=k",
	})

	var validation pkg.ValidationError

	require.True(t, errors.As(err, &validation))
	assert.Equal(t, constant.ErrInvalidAuthType.Error(), validation.Code)
}
