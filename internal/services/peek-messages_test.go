package services

import (
	"context"
	"errors"
	"testing"

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

func TestPeekMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockNamespaceRepo := namespace.NewMockRepository(ctrl)
	mockBrokers := servicebus.NewMockProvider(ctrl)
	mockClient := servicebus.NewMockClient(ctrl)
	protector := newTestProtector(t)

	uc := &UseCase{
		NamespaceRepo: mockNamespaceRepo,
		DlqRepo:       dlq.NewMockRepository(ctrl),
		Brokers:       mockBrokers,
		Protector:     protector,
	}

	namespaceID := libCommons.GenerateUUIDv7()

	connectionString := "Endpoint=sb://demo.servicebus.windows.net/;SharedAccessKeyName=root;SharedAccessKey=key"

	encrypted, err := protector.Encrypt(connectionString)
	require.NoError(t, err)

	ns := &mmodel.Namespace{
		ID:                  namespaceID,
		Name:                "demo",
		AuthType:            constant.AuthTypeConnectionString,
		EncryptedCredential: encrypted,
		IsActive:            true,
	}

	input := mmodel.PeekMessagesInput{
		EntityName:     "q1",
		FromDeadLetter: true,
		MaxMessages:    10,
	}

	mockNamespaceRepo.EXPECT().Find(gomock.Any(), namespaceID).Return(ns, nil)
	// The stored credential is decrypted before reaching the cache.
	mockBrokers.EXPECT().GetOrCreate(gomock.Any(), ns, connectionString).Return(mockClient, nil)
	mockClient.EXPECT().PeekMessages(gomock.Any(), input).Return([]*mmodel.Message{
		{MessageID: "m-1", SequenceNumber: 1, State: mmodel.MessageStateDeadLettered},
	}, nil)

	messages, err := uc.PeekMessages(context.Background(), namespaceID, input)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, int64(1), messages[0].SequenceNumber)
}

func TestPeekMessages_InactiveNamespace(t *testing.T) {
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
		IsActive: false,
	}, nil)

	_, err := uc.PeekMessages(context.Background(), namespaceID, mmodel.PeekMessagesInput{EntityName: "q1"})

	var unprocessable pkg.UnprocessableOperationError

	require.True(t, errors.As(err, &unprocessable))
	assert.Equal(t, constant.ErrNamespaceInactive.Error(), unprocessable.Code)
}

func TestPeekMessages_RequiresEntityName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc := &UseCase{
		NamespaceRepo: namespace.NewMockRepository(ctrl),
		DlqRepo:       dlq.NewMockRepository(ctrl),
		Brokers:       servicebus.NewMockProvider(ctrl),
		Protector:     newTestProtector(t),
	}

	_, err := uc.PeekMessages(context.Background(), libCommons.GenerateUUIDv7(), mmodel.PeekMessagesInput{})

	var validation pkg.ValidationError

	require.True(t, errors.As(err, &validation))
	assert.Equal(t, constant.ErrEntityNameRequired.Error(), validation.Code)
}

func TestPeekMessages_CorruptedCredentialNotCached(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockNamespaceRepo := namespace.NewMockRepository(ctrl)
	mockBrokers := servicebus.NewMockProvider(ctrl)

	uc := &UseCase{
		NamespaceRepo: mockNamespaceRepo,
		DlqRepo:       dlq.NewMockRepository(ctrl),
		Brokers:       mockBrokers,
		Protector:     newTestProtector(t),
	}

	namespaceID := libCommons.GenerateUUIDv7()

	mockNamespaceRepo.EXPECT().Find(gomock.Any(), namespaceID).Return(&mmodel.Namespace{
		ID:                  namespaceID,
		AuthType:            constant.AuthTypeConnectionString,
		EncryptedCredential: "V2:not-a-real-payload",
		IsActive:            true,
	}, nil)

	// Decryption fails before the cache is ever consulted.
	_, err := uc.PeekMessages(context.Background(), namespaceID, mmodel.PeekMessagesInput{EntityName: "q1"})

	var internal pkg.InternalServerError

	require.True(t, errors.As(err, &internal))
	assert.Equal(t, constant.ErrDecryptFailed.Error(), internal.Code)
}
