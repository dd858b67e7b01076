// Package servicebus wraps the broker SDK behind per-namespace clients and a
// process-wide cache. It owns every receiver, sender, and admin client; callers
// borrow capability through method calls and never hold broker resources.
package servicebus

import (
	"context"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus/admin"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
)

// Client is the per-namespace broker façade.
//
//go:generate mockgen --destination=servicebus_mock.go --package=servicebus . Client,Provider
type Client interface {
	PeekMessages(ctx context.Context, input mmodel.PeekMessagesInput) ([]*mmodel.Message, error)
	SendMessage(ctx context.Context, input mmodel.SendMessageInput) error
	ReplayMessage(ctx context.Context, entity, subscription string, sequenceNumber int64, targetEntity string) error
	ReplayMessages(ctx context.Context, entity, subscription string, sequenceNumbers []int64, targetEntity string) (map[int64]error, error)
	PurgeMessage(ctx context.Context, entity, subscription string, sequenceNumber int64, fromDeadLetter bool) error
	GetQueues(ctx context.Context) ([]*mmodel.Queue, error)
	GetQueue(ctx context.Context, name string) (*mmodel.Queue, error)
	GetTopics(ctx context.Context) ([]*mmodel.Topic, error)
	GetTopic(ctx context.Context, name string) (*mmodel.Topic, error)
	GetSubscriptions(ctx context.Context, topic string) ([]*mmodel.Subscription, error)
	GetSubscription(ctx context.Context, topic, name string) (*mmodel.Subscription, error)
	TestConnection(ctx context.Context) error
	Close(ctx context.Context) error
}

// Provider hands out the live client for a namespace. Callers must re-acquire
// for every logical request; holding a Client across requests races disposal.
type Provider interface {
	GetOrCreate(ctx context.Context, namespace *mmodel.Namespace, credential string) (Client, error)
	Invalidate(ctx context.Context, namespaceID uuid.UUID)
	Shutdown(ctx context.Context)
}

// Limits tunes the scan loops of the replay and purge protocol.
type Limits struct {
	SingleMaxAttempts int
	SingleBatchSize   int
	SingleWait        time.Duration
	BatchMaxAttempts  int
	BatchBatchSize    int
	BatchWait         time.Duration
	PurgeMaxAttempts  int
	PurgeBatchSize    int
}

// DefaultLimits returns the contract defaults.
func DefaultLimits() Limits {
	return Limits{
		SingleMaxAttempts: 10,
		SingleBatchSize:   50,
		SingleWait:        3 * time.Second,
		BatchMaxAttempts:  10,
		BatchBatchSize:    100,
		BatchWait:         5 * time.Second,
		PurgeMaxAttempts:  20,
		PurgeBatchSize:    100,
	}
}

// receiver is the slice of the SDK receiver the wrapper uses. The concrete
// *azservicebus.Receiver satisfies it.
type receiver interface {
	PeekMessages(ctx context.Context, maxMessages int, options *azservicebus.PeekMessagesOptions) ([]*azservicebus.ReceivedMessage, error)
	ReceiveMessages(ctx context.Context, maxMessages int, options *azservicebus.ReceiveMessagesOptions) ([]*azservicebus.ReceivedMessage, error)
	CompleteMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.CompleteMessageOptions) error
	AbandonMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.AbandonMessageOptions) error
	Close(ctx context.Context) error
}

// sender is the slice of the SDK sender the wrapper uses.
type sender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// adminAPI is the slice of the admin client the wrapper uses for metadata.
// Pager iteration is folded into the list calls.
type adminAPI interface {
	ListQueues(ctx context.Context) ([]admin.QueueItem, error)
	GetQueue(ctx context.Context, name string) (*admin.GetQueueResponse, error)
	GetQueueRuntimeProperties(ctx context.Context, name string) (*admin.GetQueueRuntimePropertiesResponse, error)
	ListTopics(ctx context.Context) ([]admin.TopicItem, error)
	GetTopic(ctx context.Context, name string) (*admin.GetTopicResponse, error)
	GetTopicRuntimeProperties(ctx context.Context, name string) (*admin.GetTopicRuntimePropertiesResponse, error)
	ListSubscriptions(ctx context.Context, topic string) ([]admin.SubscriptionPropertiesItem, error)
	GetSubscription(ctx context.Context, topic, name string) (*admin.GetSubscriptionResponse, error)
	GetSubscriptionRuntimeProperties(ctx context.Context, topic, name string) (*admin.GetSubscriptionRuntimePropertiesResponse, error)
}

type receiverFactory func(entity, subscription string, deadLetter bool) (receiver, error)

type senderFactory func(entity string) (sender, error)

type adminFactory func() (adminAPI, error)
