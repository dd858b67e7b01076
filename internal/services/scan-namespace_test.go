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
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type scanFixture struct {
	uc            *UseCase
	namespaceRepo *namespace.MockRepository
	dlqRepo       *dlq.MockRepository
	brokers       *servicebus.MockProvider
	client        *servicebus.MockClient
	ns            *mmodel.Namespace
}

func newScanFixture(t *testing.T) *scanFixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := &scanFixture{
		namespaceRepo: namespace.NewMockRepository(ctrl),
		dlqRepo:       dlq.NewMockRepository(ctrl),
		brokers:       servicebus.NewMockProvider(ctrl),
		client:        servicebus.NewMockClient(ctrl),
	}

	f.uc = &UseCase{
		NamespaceRepo: f.namespaceRepo,
		DlqRepo:       f.dlqRepo,
		Brokers:       f.brokers,
		Protector:     newTestProtector(t),
	}

	f.ns = &mmodel.Namespace{
		ID:       libCommons.GenerateUUIDv7(),
		Name:     "demo",
		AuthType: constant.AuthTypeManagedIdentity,
		IsActive: true,
	}

	f.brokers.EXPECT().GetOrCreate(gomock.Any(), gomock.Any(), "").Return(f.client, nil)

	return f
}

func TestScanNamespace_UpsertsDeadLetteredMessages(t *testing.T) {
	f := newScanFixture(t)

	f.client.EXPECT().GetQueues(gomock.Any()).Return([]*mmodel.Queue{
		{Name: "q1", Counts: mmodel.EntityCounts{DeadLetter: 1}},
		{Name: "empty", Counts: mmodel.EntityCounts{DeadLetter: 0}},
	}, nil)

	f.client.EXPECT().
		PeekMessages(gomock.Any(), mmodel.PeekMessagesInput{
			EntityName:     "q1",
			FromDeadLetter: true,
			MaxMessages:    100,
		}).
		Return([]*mmodel.Message{
			{
				MessageID:        "m-7",
				SequenceNumber:   7,
				EnqueuedTime:     time.Now().UTC(),
				Body:             []byte("payload"),
				DeadLetterReason: "TTLExpired",
				DeliveryCount:    3,
				State:            mmodel.MessageStateDeadLettered,
			},
		}, nil)

	f.dlqRepo.EXPECT().
		UpsertObserved(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, observation *mmodel.DlqObservation) (bool, error) {
			assert.Equal(t, f.ns.ID, observation.NamespaceID)
			assert.Equal(t, "q1", observation.EntityName)
			assert.Equal(t, constant.EntityTypeQueue, observation.EntityType)
			assert.Equal(t, int64(7), observation.SequenceNumber)
			assert.Equal(t, "TTLExpired", observation.DeadLetterReason)
			assert.Equal(t, "payload", observation.BodyPreview)

			return true, nil
		})

	f.client.EXPECT().GetTopics(gomock.Any()).Return(nil, nil)

	f.dlqRepo.EXPECT().ListActiveEntities(gomock.Any(), f.ns.ID).Return([]string{"q1"}, nil)
	f.dlqRepo.EXPECT().ListActiveSequences(gomock.Any(), f.ns.ID, "q1").
		Return(map[int64]time.Time{7: time.Now().UTC()}, nil)
	// Sequence 7 was observed this pass, so nothing resolves.
	f.dlqRepo.EXPECT().MarkResolved(gomock.Any(), f.ns.ID, "q1", gomock.Nil(), gomock.Any()).Return(int64(0), nil)

	created, err := f.uc.ScanNamespace(context.Background(), f.ns, DefaultScanSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestScanNamespace_ResolvesVanishedMessages(t *testing.T) {
	f := newScanFixture(t)

	// Nothing dead-lettered anymore.
	f.client.EXPECT().GetQueues(gomock.Any()).Return([]*mmodel.Queue{
		{Name: "q2", Counts: mmodel.EntityCounts{DeadLetter: 0}},
	}, nil)
	f.client.EXPECT().GetTopics(gomock.Any()).Return(nil, nil)

	staleSeen := time.Now().UTC().Add(-time.Minute)

	f.dlqRepo.EXPECT().ListActiveEntities(gomock.Any(), f.ns.ID).Return([]string{"q2"}, nil)
	f.dlqRepo.EXPECT().ListActiveSequences(gomock.Any(), f.ns.ID, "q2").
		Return(map[int64]time.Time{7: staleSeen}, nil)
	f.dlqRepo.EXPECT().
		MarkResolved(gomock.Any(), f.ns.ID, "q2", []int64{7}, gomock.Any()).
		Return(int64(1), nil)

	created, err := f.uc.ScanNamespace(context.Background(), f.ns, DefaultScanSettings())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestScanNamespace_ScansSubscriptions(t *testing.T) {
	f := newScanFixture(t)

	f.client.EXPECT().GetQueues(gomock.Any()).Return(nil, nil)
	f.client.EXPECT().GetTopics(gomock.Any()).Return([]*mmodel.Topic{{Name: "orders"}}, nil)
	f.client.EXPECT().GetSubscriptions(gomock.Any(), "orders").Return([]*mmodel.Subscription{
		{TopicName: "orders", Name: "billing", Counts: mmodel.EntityCounts{DeadLetter: 2}},
	}, nil)

	f.client.EXPECT().
		PeekMessages(gomock.Any(), mmodel.PeekMessagesInput{
			EntityName:       "orders",
			SubscriptionName: "billing",
			FromDeadLetter:   true,
			MaxMessages:      100,
		}).
		Return([]*mmodel.Message{
			{MessageID: "m-1", SequenceNumber: 1, DeadLetterReason: "filter mismatch"},
		}, nil)

	f.dlqRepo.EXPECT().
		UpsertObserved(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, observation *mmodel.DlqObservation) (bool, error) {
			assert.Equal(t, "orders/subscriptions/billing", observation.EntityName)
			assert.Equal(t, "orders", observation.TopicName)
			assert.Equal(t, constant.EntityTypeSubscription, observation.EntityType)

			return true, nil
		})

	f.dlqRepo.EXPECT().ListActiveEntities(gomock.Any(), f.ns.ID).Return(nil, nil)

	created, err := f.uc.ScanNamespace(context.Background(), f.ns, DefaultScanSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestScanNamespace_EntityErrorDoesNotAbortOthers(t *testing.T) {
	f := newScanFixture(t)

	f.client.EXPECT().GetQueues(gomock.Any()).Return([]*mmodel.Queue{
		{Name: "broken", Counts: mmodel.EntityCounts{DeadLetter: 5}},
		{Name: "healthy", Counts: mmodel.EntityCounts{DeadLetter: 1}},
	}, nil)

	f.client.EXPECT().
		PeekMessages(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("receiver failure"))

	f.client.EXPECT().
		PeekMessages(gomock.Any(), gomock.Any()).
		Return([]*mmodel.Message{{MessageID: "m-9", SequenceNumber: 9, DeadLetterReason: "ttl"}}, nil)

	f.dlqRepo.EXPECT().UpsertObserved(gomock.Any(), gomock.Any()).Return(true, nil)

	f.client.EXPECT().GetTopics(gomock.Any()).Return(nil, nil)
	f.dlqRepo.EXPECT().ListActiveEntities(gomock.Any(), f.ns.ID).Return(nil, nil)

	created, err := f.uc.ScanNamespace(context.Background(), f.ns, DefaultScanSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}
