package services

import (
	"context"
	"errors"
	"testing"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	"github.com/debdevops/servicehub/internal/adapters/servicebus"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/dlq"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/namespace"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type autoReplayFixture struct {
	uc            *UseCase
	namespaceRepo *namespace.MockRepository
	dlqRepo       *dlq.MockRepository
	brokers       *servicebus.MockProvider
	client        *servicebus.MockClient
	namespaceID   uuid.UUID
}

func newAutoReplayFixture(t *testing.T) *autoReplayFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &autoReplayFixture{
		namespaceRepo: namespace.NewMockRepository(ctrl),
		dlqRepo:       dlq.NewMockRepository(ctrl),
		brokers:       servicebus.NewMockProvider(ctrl),
		client:        servicebus.NewMockClient(ctrl),
		namespaceID:   libCommons.GenerateUUIDv7(),
	}

	f.uc = &UseCase{
		NamespaceRepo: f.namespaceRepo,
		DlqRepo:       f.dlqRepo,
		Brokers:       f.brokers,
		Protector:     newTestProtector(t),
	}

	return f
}

func (f *autoReplayFixture) message() *mmodel.DlqMessage {
	return &mmodel.DlqMessage{
		ID:              libCommons.GenerateUUIDv7(),
		NamespaceID:     f.namespaceID,
		EntityName:      "q1",
		EntityType:      constant.EntityTypeQueue,
		SequenceNumber:  42,
		FailureCategory: constant.FailureProcessingError,
		Status:          constant.DlqStatusActive,
	}
}

func (f *autoReplayFixture) rule(maxPerHour int, targetEntity string) *mmodel.AutoReplayRule {
	return &mmodel.AutoReplayRule{
		ID:   libCommons.GenerateUUIDv7(),
		Name: "retry-processing",
		Conditions: []mmodel.RuleCondition{
			{Field: mmodel.FieldFailureCategory, Operator: mmodel.OperatorEquals, Value: "ProcessingError"},
		},
		Action: mmodel.RuleAction{
			AutoReplay:        true,
			TargetEntity:      targetEntity,
			MaxReplaysPerHour: maxPerHour,
		},
		Enabled: true,
	}
}

func (f *autoReplayFixture) expectBrokerClient() {
	f.namespaceRepo.EXPECT().Find(gomock.Any(), f.namespaceID).Return(&mmodel.Namespace{
		ID:       f.namespaceID,
		Name:     "demo",
		AuthType: constant.AuthTypeManagedIdentity,
		IsActive: true,
	}, nil)
	f.brokers.EXPECT().GetOrCreate(gomock.Any(), gomock.Any(), "").Return(f.client, nil)
}

func TestAutoReplayMessage_Success(t *testing.T) {
	f := newAutoReplayFixture(t)

	message := f.message()
	rule := f.rule(10, "")

	f.dlqRepo.EXPECT().CountReplaysByRuleSince(gomock.Any(), rule.ID, gomock.Any()).Return(int64(0), nil)
	f.expectBrokerClient()
	f.client.EXPECT().ReplayMessage(gomock.Any(), "q1", "", int64(42), "").Return(nil)

	f.dlqRepo.EXPECT().
		RecordReplayOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, record *mmodel.ReplayHistory) error {
			assert.Equal(t, message.ID, record.DlqMessageID)
			assert.Equal(t, &rule.ID, record.RuleID)
			assert.Equal(t, constant.ReplayOutcomeSuccess, record.OutcomeStatus)
			assert.Equal(t, constant.ReplayStrategyOriginalEntity, record.ReplayStrategy)
			assert.Equal(t, "q1", record.ReplayedToEntity)
			assert.Equal(t, "auto-replay", record.ReplayedBy)

			return nil
		})

	outcome, err := f.uc.AutoReplayMessage(context.Background(), message, rule)
	require.NoError(t, err)
	assert.Equal(t, constant.ReplayOutcomeSuccess, outcome)
}

func TestAutoReplayMessage_RateLimited(t *testing.T) {
	f := newAutoReplayFixture(t)

	message := f.message()
	rule := f.rule(1, "")

	// Budget of one, one already spent this hour: the broker is never touched.
	f.dlqRepo.EXPECT().CountReplaysByRuleSince(gomock.Any(), rule.ID, gomock.Any()).Return(int64(1), nil)

	f.dlqRepo.EXPECT().
		RecordReplayOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, record *mmodel.ReplayHistory) error {
			assert.Equal(t, constant.ReplayOutcomeSkipped, record.OutcomeStatus)
			assert.Equal(t, "RateLimited", record.ErrorDetails)

			return nil
		})

	outcome, err := f.uc.AutoReplayMessage(context.Background(), message, rule)
	require.NoError(t, err)
	assert.Equal(t, constant.ReplayOutcomeSkipped, outcome)
}

func TestAutoReplayMessage_TargetOverride(t *testing.T) {
	f := newAutoReplayFixture(t)

	message := f.message()
	rule := f.rule(10, "repair-queue")

	f.dlqRepo.EXPECT().CountReplaysByRuleSince(gomock.Any(), rule.ID, gomock.Any()).Return(int64(0), nil)
	f.expectBrokerClient()
	f.client.EXPECT().ReplayMessage(gomock.Any(), "q1", "", int64(42), "repair-queue").Return(nil)

	f.dlqRepo.EXPECT().
		RecordReplayOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, record *mmodel.ReplayHistory) error {
			assert.Equal(t, constant.ReplayStrategyAlternateEntity, record.ReplayStrategy)
			assert.Equal(t, "repair-queue", record.ReplayedToEntity)

			return nil
		})

	_, err := f.uc.AutoReplayMessage(context.Background(), message, rule)
	require.NoError(t, err)
}

func TestAutoReplayMessage_SubscriptionSource(t *testing.T) {
	f := newAutoReplayFixture(t)

	message := f.message()
	message.EntityName = "orders/subscriptions/billing"
	message.TopicName = "orders"
	message.EntityType = constant.EntityTypeSubscription

	rule := f.rule(10, "")

	f.dlqRepo.EXPECT().CountReplaysByRuleSince(gomock.Any(), rule.ID, gomock.Any()).Return(int64(0), nil)
	f.expectBrokerClient()
	f.client.EXPECT().ReplayMessage(gomock.Any(), "orders", "billing", int64(42), "").Return(nil)
	f.dlqRepo.EXPECT().RecordReplayOutcome(gomock.Any(), gomock.Any()).Return(nil)

	_, err := f.uc.AutoReplayMessage(context.Background(), message, rule)
	require.NoError(t, err)
}

func TestAutoReplayMessage_BrokerFailureRecordsFailed(t *testing.T) {
	f := newAutoReplayFixture(t)

	message := f.message()
	rule := f.rule(10, "")

	brokerErr := errors.New("send refused")

	f.dlqRepo.EXPECT().CountReplaysByRuleSince(gomock.Any(), rule.ID, gomock.Any()).Return(int64(0), nil)
	f.expectBrokerClient()
	f.client.EXPECT().ReplayMessage(gomock.Any(), "q1", "", int64(42), "").Return(brokerErr)

	f.dlqRepo.EXPECT().
		RecordReplayOutcome(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, record *mmodel.ReplayHistory) error {
			assert.Equal(t, constant.ReplayOutcomeFailed, record.OutcomeStatus)
			assert.Equal(t, "send refused", record.ErrorDetails)

			return nil
		})

	outcome, err := f.uc.AutoReplayMessage(context.Background(), message, rule)
	require.ErrorIs(t, err, brokerErr)
	assert.Equal(t, constant.ReplayOutcomeFailed, outcome)
}
