package servicebus

import (
	"context"
	"errors"
	"net"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus/admin"
	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/debdevops/servicehub/pkg/mretry"
)

const (
	maxPeekMessages   = 100
	completeTimeout   = 30 * time.Second
	defaultDNSTimeout = 5 * time.Second
)

// ClientWrapper is the per-namespace broker façade. One wrapper serves every
// caller of its namespace; senders and receivers are created per call, while
// the metadata admin client is a lazily built singleton.
type ClientWrapper struct {
	namespace *mmodel.Namespace
	fqns      string
	limits    Limits
	retry     mretry.Config
	logger    libLog.Logger

	client *azservicebus.Client

	newReceiver receiverFactory
	newSender   senderFactory
	newAdmin    adminFactory

	adminMu sync.Mutex
	admin   adminAPI

	closed atomic.Bool
}

// NewClientWrapper builds the wrapper for a namespace. For ConnectionString
// auth the credential is the decrypted connection string; for ManagedIdentity
// it is ignored and the ambient identity chain is used against the namespace's
// fully-qualified name.
func NewClientWrapper(namespace *mmodel.Namespace, credential string, limits Limits, logger libLog.Logger) (*ClientWrapper, error) {
	w := &ClientWrapper{
		namespace: namespace,
		limits:    limits,
		retry:     mretry.DefaultConfig(),
		logger:    logger,
	}

	switch namespace.AuthType {
	case constant.AuthTypeConnectionString:
		fqns, err := endpointFromConnectionString(credential)
		if err != nil {
			return nil, err
		}

		client, err := azservicebus.NewClientFromConnectionString(credential, nil)
		if err != nil {
			return nil, pkg.ValidateBusinessError(constant.ErrInvalidConnectionString, reflect.TypeOf(mmodel.Namespace{}).Name())
		}

		w.fqns = fqns
		w.client = client
		w.newAdmin = func() (adminAPI, error) {
			ac, err := admin.NewClientFromConnectionString(credential, nil)
			if err != nil {
				return nil, err
			}

			return &sbAdmin{client: ac}, nil
		}
	case constant.AuthTypeManagedIdentity:
		fqns := namespace.Name
		if !strings.Contains(fqns, ".") {
			fqns += ".servicebus.windows.net"
		}

		tokenCredential, err := azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, translateError(err, reflect.TypeOf(mmodel.Namespace{}).Name())
		}

		client, err := azservicebus.NewClient(fqns, tokenCredential, nil)
		if err != nil {
			return nil, translateError(err, reflect.TypeOf(mmodel.Namespace{}).Name())
		}

		w.fqns = fqns
		w.client = client
		w.newAdmin = func() (adminAPI, error) {
			ac, err := admin.NewClient(fqns, tokenCredential, nil)
			if err != nil {
				return nil, err
			}

			return &sbAdmin{client: ac}, nil
		}
	default:
		return nil, pkg.ValidateBusinessError(constant.ErrInvalidAuthType, reflect.TypeOf(mmodel.Namespace{}).Name())
	}

	w.newReceiver = w.sdkReceiver
	w.newSender = w.sdkSender

	return w, nil
}

func endpointFromConnectionString(connectionString string) (string, error) {
	for _, part := range strings.Split(connectionString, ";") {
		key, value, found := strings.Cut(part, "=")
		if !found || !strings.EqualFold(strings.TrimSpace(key), "Endpoint") {
			continue
		}

		value = strings.TrimSpace(value)
		value = strings.TrimPrefix(value, "sb://")

		return strings.TrimSuffix(value, "/"), nil
	}

	return "", pkg.ValidateBusinessError(constant.ErrInvalidConnectionString, reflect.TypeOf(mmodel.Namespace{}).Name())
}

func (w *ClientWrapper) sdkReceiver(entity, subscription string, deadLetter bool) (receiver, error) {
	options := &azservicebus.ReceiverOptions{
		ReceiveMode: azservicebus.ReceiveModePeekLock,
	}

	if deadLetter {
		options.SubQueue = azservicebus.SubQueueDeadLetter
	}

	if subscription != "" {
		return w.client.NewReceiverForSubscription(entity, subscription, options)
	}

	return w.client.NewReceiverForQueue(entity, options)
}

func (w *ClientWrapper) sdkSender(entity string) (sender, error) {
	return w.client.NewSender(entity, nil)
}

// getAdmin returns the wrapper's admin client, building it on first use. At
// most one admin client exists over the wrapper's lifetime; a fresh one per
// metadata call exhausts sockets under load.
func (w *ClientWrapper) getAdmin() (adminAPI, error) {
	w.adminMu.Lock()
	defer w.adminMu.Unlock()

	if w.closed.Load() {
		return nil, errClientDisposed()
	}

	if w.admin != nil {
		return w.admin, nil
	}

	adminClient, err := w.newAdmin()
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Namespace{}).Name())
	}

	w.admin = adminClient

	return w.admin, nil
}

// PeekMessages reads up to 100 messages non-destructively. The receiver lives
// only for this call.
func (w *ClientWrapper) PeekMessages(ctx context.Context, input mmodel.PeekMessagesInput) ([]*mmodel.Message, error) {
	if w.closed.Load() {
		return nil, errClientDisposed()
	}

	maxMessages := input.MaxMessages
	if maxMessages < 1 {
		maxMessages = 1
	} else if maxMessages > maxPeekMessages {
		maxMessages = maxPeekMessages
	}

	rcv, err := w.newReceiver(input.EntityName, input.SubscriptionName, input.FromDeadLetter)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}
	defer w.closeQuietly(rcv.Close)

	var options *azservicebus.PeekMessagesOptions

	if input.FromSequenceNumber != nil {
		// Resume after the given sequence; the SDK peek is inclusive.
		from := *input.FromSequenceNumber + 1
		options = &azservicebus.PeekMessagesOptions{FromSequenceNumber: &from}
	}

	var peeked []*azservicebus.ReceivedMessage

	err = mretry.Do(ctx, w.retry, func(ctx context.Context) error {
		var peekErr error
		peeked, peekErr = rcv.PeekMessages(ctx, maxMessages, options)

		return peekErr
	}, isRetryable)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}

	messages := make([]*mmodel.Message, 0, len(peeked))
	for _, msg := range peeked {
		messages = append(messages, toMessage(msg, input.FromDeadLetter))
	}

	return messages, nil
}

// SendMessage publishes one operator-authored message. The sender lives only
// for this call.
func (w *ClientWrapper) SendMessage(ctx context.Context, input mmodel.SendMessageInput) error {
	if w.closed.Load() {
		return errClientDisposed()
	}

	snd, err := w.newSender(input.EntityName)
	if err != nil {
		return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}
	defer w.closeQuietly(snd.Close)

	msg := buildMessage(input)

	err = mretry.Do(ctx, w.retry, func(ctx context.Context) error {
		return snd.SendMessage(ctx, msg, nil)
	}, isRetryable)
	if err != nil {
		return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}

	return nil
}

// ReplayMessage moves the message with the given sequence number from the
// entity's dead-letter sub-queue back to the live entity. The original is
// removed only after the broker acknowledges the clone, so a crash in between
// leaves both copies rather than neither.
func (w *ClientWrapper) ReplayMessage(ctx context.Context, entity, subscription string, sequenceNumber int64, targetEntity string) error {
	if w.closed.Load() {
		return errClientDisposed()
	}

	rcv, err := w.newReceiver(entity, subscription, true)
	if err != nil {
		return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}
	defer w.closeQuietly(rcv.Close)

	var leftovers []*azservicebus.ReceivedMessage

	defer func() {
		w.abandonAll(rcv, leftovers)
	}()

	var target *azservicebus.ReceivedMessage

	for attempt := 0; attempt < w.limits.SingleMaxAttempts && target == nil; attempt++ {
		batch, err := w.receiveBatch(ctx, rcv, w.limits.SingleBatchSize, w.limits.SingleWait)
		if err != nil {
			return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
		}

		if len(batch) == 0 {
			break
		}

		for _, msg := range batch {
			if target == nil && msg.SequenceNumber != nil && *msg.SequenceNumber == sequenceNumber {
				target = msg
			} else {
				leftovers = append(leftovers, msg)
			}
		}
	}

	if target == nil {
		return errMessageNotFound(sequenceNumber)
	}

	sendEntity := entity
	if targetEntity != "" {
		sendEntity = targetEntity
	}

	return w.sendAndComplete(ctx, rcv, sendEntity, target, sequenceNumber, &leftovers)
}

// sendAndComplete performs the clone-send-complete step of a replay. On send
// failure the locked original is handed back to the leftovers list so the exit
// path abandons it and it becomes visible again.
func (w *ClientWrapper) sendAndComplete(ctx context.Context, rcv receiver, entity string, target *azservicebus.ReceivedMessage, sequenceNumber int64, leftovers *[]*azservicebus.ReceivedMessage) error {
	snd, err := w.newSender(entity)
	if err != nil {
		*leftovers = append(*leftovers, target)

		return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}
	defer w.closeQuietly(snd.Close)

	clone := cloneForReplay(target, sequenceNumber)

	err = mretry.Do(ctx, w.retry, func(ctx context.Context) error {
		return snd.SendMessage(ctx, clone, nil)
	}, isRetryable)
	if err != nil {
		*leftovers = append(*leftovers, target)

		return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}

	// The clone is acknowledged. Completing the original must run even if the
	// caller cancelled; abandoning after a successful send guarantees a
	// duplicate delivery.
	completeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completeTimeout)
	defer cancel()

	if err := rcv.CompleteMessage(completeCtx, target, nil); err != nil {
		w.logger.Warnf("replay of seq %d on %s: clone sent but completing the original failed, the dead-lettered copy will redeliver: %v",
			sequenceNumber, entity, err)

		return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}

	return nil
}

// ReplayMessages replays a set of sequence numbers against the same entity
// using one receiver and one sender. Failures are per-sequence; one bad
// message never aborts the rest.
func (w *ClientWrapper) ReplayMessages(ctx context.Context, entity, subscription string, sequenceNumbers []int64, targetEntity string) (map[int64]error, error) {
	if w.closed.Load() {
		return nil, errClientDisposed()
	}

	if len(sequenceNumbers) == 0 {
		return nil, pkg.ValidateBusinessError(constant.ErrBatchSequencesRequired, reflect.TypeOf(mmodel.Message{}).Name())
	}

	pending := make(map[int64]struct{}, len(sequenceNumbers))
	for _, seq := range sequenceNumbers {
		pending[seq] = struct{}{}
	}

	rcv, err := w.newReceiver(entity, subscription, true)
	if err != nil {
		return nil, translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}
	defer w.closeQuietly(rcv.Close)

	var leftovers []*azservicebus.ReceivedMessage

	defer func() {
		w.abandonAll(rcv, leftovers)
	}()

	found := make(map[int64]*azservicebus.ReceivedMessage, len(sequenceNumbers))

	for attempt := 0; attempt < w.limits.BatchMaxAttempts && len(pending) > 0; attempt++ {
		batch, err := w.receiveBatch(ctx, rcv, w.limits.BatchBatchSize, w.limits.BatchWait)
		if err != nil {
			return nil, translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
		}

		if len(batch) == 0 {
			break
		}

		for _, msg := range batch {
			if msg.SequenceNumber != nil {
				if _, wanted := pending[*msg.SequenceNumber]; wanted {
					found[*msg.SequenceNumber] = msg
					delete(pending, *msg.SequenceNumber)

					continue
				}
			}

			leftovers = append(leftovers, msg)
		}
	}

	results := make(map[int64]error, len(sequenceNumbers))

	for seq := range pending {
		results[seq] = errMessageNotFound(seq)
	}

	if len(found) == 0 {
		return results, nil
	}

	sendEntity := entity
	if targetEntity != "" {
		sendEntity = targetEntity
	}

	snd, err := w.newSender(sendEntity)
	if err != nil {
		for _, msg := range found {
			leftovers = append(leftovers, msg)
		}

		return nil, translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}
	defer w.closeQuietly(snd.Close)

	foundSeqs := make([]int64, 0, len(found))
	for seq := range found {
		foundSeqs = append(foundSeqs, seq)
	}

	sort.Slice(foundSeqs, func(i, j int) bool { return foundSeqs[i] < foundSeqs[j] })

	for _, seq := range foundSeqs {
		target := found[seq]
		clone := cloneForReplay(target, seq)

		sendErr := mretry.Do(ctx, w.retry, func(ctx context.Context) error {
			return snd.SendMessage(ctx, clone, nil)
		}, isRetryable)
		if sendErr != nil {
			leftovers = append(leftovers, target)
			results[seq] = translateError(sendErr, reflect.TypeOf(mmodel.Message{}).Name())

			continue
		}

		completeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), completeTimeout)

		if completeErr := rcv.CompleteMessage(completeCtx, target, nil); completeErr != nil {
			w.logger.Warnf("batch replay of seq %d on %s: clone sent but completing the original failed: %v", seq, entity, completeErr)

			results[seq] = translateError(completeErr, reflect.TypeOf(mmodel.Message{}).Name())
		} else {
			results[seq] = nil
		}

		cancel()
	}

	return results, nil
}

// PurgeMessage deletes one message by sequence number, from the dead-letter
// sub-queue or the live entity. Everything else received along the way is
// abandoned on exit.
func (w *ClientWrapper) PurgeMessage(ctx context.Context, entity, subscription string, sequenceNumber int64, fromDeadLetter bool) error {
	if w.closed.Load() {
		return errClientDisposed()
	}

	rcv, err := w.newReceiver(entity, subscription, fromDeadLetter)
	if err != nil {
		return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}
	defer w.closeQuietly(rcv.Close)

	var leftovers []*azservicebus.ReceivedMessage

	defer func() {
		w.abandonAll(rcv, leftovers)
	}()

	var target *azservicebus.ReceivedMessage

	for attempt := 0; attempt < w.limits.PurgeMaxAttempts && target == nil; attempt++ {
		batch, err := w.receiveBatch(ctx, rcv, w.limits.PurgeBatchSize, w.limits.SingleWait)
		if err != nil {
			return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
		}

		if len(batch) == 0 {
			break
		}

		for _, msg := range batch {
			if target == nil && msg.SequenceNumber != nil && *msg.SequenceNumber == sequenceNumber {
				target = msg
			} else {
				leftovers = append(leftovers, msg)
			}
		}
	}

	if target == nil {
		return errMessageNotFound(sequenceNumber)
	}

	if err := rcv.CompleteMessage(ctx, target, nil); err != nil {
		return translateError(err, reflect.TypeOf(mmodel.Message{}).Name())
	}

	return nil
}

// TestConnection is a cheap existence probe: the wrapper must be live and its
// namespace host resolvable. It deliberately avoids touching entities.
func (w *ClientWrapper) TestConnection(ctx context.Context) error {
	if w.closed.Load() {
		return errClientDisposed()
	}

	resolveCtx, cancel := context.WithTimeout(ctx, defaultDNSTimeout)
	defer cancel()

	if _, err := net.DefaultResolver.LookupHost(resolveCtx, w.fqns); err != nil {
		return pkg.ExternalServiceError{
			EntityType: reflect.TypeOf(mmodel.Namespace{}).Name(),
			Code:       constant.ErrBrokerUnavailable.Error(),
			Title:      "Namespace Unreachable",
			Message:    "The namespace host could not be resolved.",
			Retryable:  true,
			Err:        err,
		}
	}

	return nil
}

// Close disposes the wrapper. It is idempotent and safe to race in-flight
// operations, which observe the disposed state and return cleanly.
func (w *ClientWrapper) Close(ctx context.Context) error {
	if w.closed.Swap(true) {
		return nil
	}

	if w.client != nil {
		if err := w.client.Close(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warnf("closing broker client for namespace %s: %v", w.namespace.Name, err)

			return err
		}
	}

	return nil
}

// receiveBatch receives up to max messages, waiting at most wait. An exhausted
// wait is an empty batch, not an error; caller cancellation still propagates.
func (w *ClientWrapper) receiveBatch(ctx context.Context, rcv receiver, max int, wait time.Duration) ([]*azservicebus.ReceivedMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batchCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	batch, err := rcv.ReceiveMessages(batchCtx, max, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil
		}

		return nil, err
	}

	return batch, nil
}

// abandonAll releases every held lock so the messages become visible again
// instead of waiting out their lease. Best-effort by design.
func (w *ClientWrapper) abandonAll(rcv receiver, messages []*azservicebus.ReceivedMessage) {
	if len(messages) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), completeTimeout)
	defer cancel()

	for _, msg := range messages {
		if err := rcv.AbandonMessage(ctx, msg, nil); err != nil {
			seq := int64(-1)
			if msg.SequenceNumber != nil {
				seq = *msg.SequenceNumber
			}

			w.logger.Warnf("abandoning seq %d failed, the message stays invisible until its lock expires: %v", seq, err)
		}
	}
}

func (w *ClientWrapper) closeQuietly(close func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := close(ctx); err != nil {
		w.logger.Debugf("closing broker link: %v", err)
	}
}
