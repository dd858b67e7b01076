package servicebus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/debdevops/servicehub/pkg/mretry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReceiver struct {
	batches   [][]*azservicebus.ReceivedMessage
	peeks     [][]*azservicebus.ReceivedMessage
	peekMax   []int
	peekOpts  []*azservicebus.PeekMessagesOptions
	completed []*azservicebus.ReceivedMessage
	abandoned []*azservicebus.ReceivedMessage

	receiveErr  error
	completeErr error
	closed      bool
}

func (f *fakeReceiver) PeekMessages(ctx context.Context, maxMessages int, options *azservicebus.PeekMessagesOptions) ([]*azservicebus.ReceivedMessage, error) {
	f.peekMax = append(f.peekMax, maxMessages)
	f.peekOpts = append(f.peekOpts, options)

	if len(f.peeks) == 0 {
		return nil, nil
	}

	batch := f.peeks[0]
	f.peeks = f.peeks[1:]

	if len(batch) > maxMessages {
		batch = batch[:maxMessages]
	}

	return batch, nil
}

func (f *fakeReceiver) ReceiveMessages(ctx context.Context, maxMessages int, options *azservicebus.ReceiveMessagesOptions) ([]*azservicebus.ReceivedMessage, error) {
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}

	if len(f.batches) == 0 {
		// Nothing left; behave like an exhausted receive wait.
		return nil, context.DeadlineExceeded
	}

	batch := f.batches[0]
	f.batches = f.batches[1:]

	if len(batch) > maxMessages {
		f.batches = append([][]*azservicebus.ReceivedMessage{batch[maxMessages:]}, f.batches...)
		batch = batch[:maxMessages]
	}

	return batch, nil
}

func (f *fakeReceiver) CompleteMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.CompleteMessageOptions) error {
	if f.completeErr != nil {
		return f.completeErr
	}

	f.completed = append(f.completed, message)

	return nil
}

func (f *fakeReceiver) AbandonMessage(ctx context.Context, message *azservicebus.ReceivedMessage, options *azservicebus.AbandonMessageOptions) error {
	f.abandoned = append(f.abandoned, message)

	return nil
}

func (f *fakeReceiver) Close(ctx context.Context) error {
	f.closed = true

	return nil
}

type fakeSender struct {
	sent    []*azservicebus.Message
	sendErr error
	closed  bool
}

func (f *fakeSender) SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error {
	if f.sendErr != nil {
		return f.sendErr
	}

	f.sent = append(f.sent, message)

	return nil
}

func (f *fakeSender) Close(ctx context.Context) error {
	f.closed = true

	return nil
}

func newTestWrapper(rcv *fakeReceiver, snd *fakeSender) *ClientWrapper {
	w := &ClientWrapper{
		namespace: &mmodel.Namespace{Name: "demo"},
		fqns:      "demo.servicebus.windows.net",
		limits:    DefaultLimits(),
		retry:     mretry.DefaultConfig().WithInitialBackoff(time.Millisecond).WithMaxBackoff(2 * time.Millisecond),
		logger:    &libLog.NoneLogger{},
	}

	w.newReceiver = func(entity, subscription string, deadLetter bool) (receiver, error) {
		return rcv, nil
	}

	w.newSender = func(entity string) (sender, error) {
		return snd, nil
	}

	return w
}

func dlqMessage(seq int64, body, reason string) *azservicebus.ReceivedMessage {
	s := seq

	msg := &azservicebus.ReceivedMessage{
		MessageID:      "orig-" + body,
		SequenceNumber: &s,
		Body:           []byte(body),
	}

	if reason != "" {
		msg.DeadLetterReason = &reason
	}

	return msg
}

func TestPeekMessages_ClampsMaxMessages(t *testing.T) {
	testCases := []struct {
		name      string
		requested int
		expected  int
	}{
		{name: "zero clamps to one", requested: 0, expected: 1},
		{name: "negative clamps to one", requested: -5, expected: 1},
		{name: "huge clamps to hundred", requested: 10000, expected: 100},
		{name: "in range passes through", requested: 25, expected: 25},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rcv := &fakeReceiver{}
			w := newTestWrapper(rcv, &fakeSender{})

			_, err := w.PeekMessages(context.Background(), mmodel.PeekMessagesInput{
				EntityName:  "q1",
				MaxMessages: testCase.requested,
			})
			require.NoError(t, err)

			require.Len(t, rcv.peekMax, 1)
			assert.Equal(t, testCase.expected, rcv.peekMax[0])
		})
	}
}

func TestPeekMessages_FromSequenceIsExclusive(t *testing.T) {
	rcv := &fakeReceiver{}
	w := newTestWrapper(rcv, &fakeSender{})

	from := int64(41)

	_, err := w.PeekMessages(context.Background(), mmodel.PeekMessagesInput{
		EntityName:         "q1",
		MaxMessages:        10,
		FromSequenceNumber: &from,
	})
	require.NoError(t, err)

	require.Len(t, rcv.peekOpts, 1)
	require.NotNil(t, rcv.peekOpts[0])
	assert.Equal(t, int64(42), *rcv.peekOpts[0].FromSequenceNumber)
}

func TestPeekMessages_DeadLetterState(t *testing.T) {
	rcv := &fakeReceiver{
		peeks: [][]*azservicebus.ReceivedMessage{{dlqMessage(7, "payload", "ttl expired")}},
	}
	w := newTestWrapper(rcv, &fakeSender{})

	messages, err := w.PeekMessages(context.Background(), mmodel.PeekMessagesInput{
		EntityName:     "q1",
		FromDeadLetter: true,
		MaxMessages:    10,
	})
	require.NoError(t, err)

	require.Len(t, messages, 1)
	assert.Equal(t, mmodel.MessageStateDeadLettered, messages[0].State)
	assert.Equal(t, "ttl expired", messages[0].DeadLetterReason)
	assert.Equal(t, int64(7), messages[0].SequenceNumber)
}

func TestReplayMessage_SendsCloneThenCompletes(t *testing.T) {
	target := dlqMessage(42, "hello", "processor exception")
	target.ApplicationProperties = map[string]any{
		"tenant":                                "acme",
		constant.PropDeadLetterReason:           "processor exception",
		constant.PropDeadLetterErrorDescription: "boom",
	}

	other := dlqMessage(41, "other", "")

	rcv := &fakeReceiver{
		batches: [][]*azservicebus.ReceivedMessage{{other, target}},
	}
	snd := &fakeSender{}
	w := newTestWrapper(rcv, snd)

	err := w.ReplayMessage(context.Background(), "q1", "", 42, "")
	require.NoError(t, err)

	// The clone carries the body, replay metadata, and a fresh id.
	require.Len(t, snd.sent, 1)
	clone := snd.sent[0]

	assert.Equal(t, []byte("hello"), clone.Body)
	require.NotNil(t, clone.MessageID)
	assert.NotEqual(t, "orig-hello", *clone.MessageID)
	assert.Equal(t, true, clone.ApplicationProperties[constant.PropReplayed])
	assert.Equal(t, int64(42), clone.ApplicationProperties[constant.PropOriginalSequenceNumber])
	assert.Equal(t, "processor exception", clone.ApplicationProperties[constant.PropOriginalDeadLetterReason])
	assert.Equal(t, "acme", clone.ApplicationProperties["tenant"])
	assert.NotContains(t, clone.ApplicationProperties, constant.PropDeadLetterReason)
	assert.NotContains(t, clone.ApplicationProperties, constant.PropDeadLetterErrorDescription)

	// The original is completed only after the send; everything else abandoned.
	require.Len(t, rcv.completed, 1)
	assert.Same(t, target, rcv.completed[0])
	require.Len(t, rcv.abandoned, 1)
	assert.Same(t, other, rcv.abandoned[0])
}

func TestReplayMessage_DefaultsDeadLetterReasonToUnknown(t *testing.T) {
	target := dlqMessage(42, "hello", "")

	rcv := &fakeReceiver{batches: [][]*azservicebus.ReceivedMessage{{target}}}
	snd := &fakeSender{}
	w := newTestWrapper(rcv, snd)

	require.NoError(t, w.ReplayMessage(context.Background(), "q1", "", 42, ""))

	require.Len(t, snd.sent, 1)
	assert.Equal(t, "Unknown", snd.sent[0].ApplicationProperties[constant.PropOriginalDeadLetterReason])
}

func TestReplayMessage_NotFound(t *testing.T) {
	rcv := &fakeReceiver{
		batches: [][]*azservicebus.ReceivedMessage{{dlqMessage(1, "a", ""), dlqMessage(2, "b", "")}},
	}
	snd := &fakeSender{}
	w := newTestWrapper(rcv, snd)

	err := w.ReplayMessage(context.Background(), "q1", "", 99, "")
	require.Error(t, err)

	var notFound pkg.EntityNotFoundError

	require.True(t, errors.As(err, &notFound))
	assert.Empty(t, snd.sent)
	assert.Empty(t, rcv.completed)
	// Both held messages become visible again.
	assert.Len(t, rcv.abandoned, 2)
}

func TestReplayMessage_ScansDeepIntoTheQueue(t *testing.T) {
	// Target hidden behind several full batches; limits allow 10 x 50.
	var batches [][]*azservicebus.ReceivedMessage

	seq := int64(0)

	for i := 0; i < 9; i++ {
		var batch []*azservicebus.ReceivedMessage

		for j := 0; j < 50; j++ {
			seq++
			batch = append(batch, dlqMessage(seq, "filler", ""))
		}

		batches = append(batches, batch)
	}

	target := dlqMessage(499, "needle", "")
	batches[8][48] = target

	rcv := &fakeReceiver{batches: batches}
	snd := &fakeSender{}
	w := newTestWrapper(rcv, snd)

	require.NoError(t, w.ReplayMessage(context.Background(), "q1", "", 499, ""))

	require.Len(t, rcv.completed, 1)
	assert.Same(t, target, rcv.completed[0])
	// Everything received along the way is released.
	assert.Len(t, rcv.abandoned, 9*50-1)
}

func TestReplayMessage_SendFailureAbandonsTarget(t *testing.T) {
	target := dlqMessage(42, "hello", "")

	rcv := &fakeReceiver{batches: [][]*azservicebus.ReceivedMessage{{target}}}
	snd := &fakeSender{sendErr: errors.New("amqp link down")}
	w := newTestWrapper(rcv, snd)

	err := w.ReplayMessage(context.Background(), "q1", "", 42, "")
	require.Error(t, err)

	assert.Empty(t, rcv.completed)
	require.Len(t, rcv.abandoned, 1)
	assert.Same(t, target, rcv.abandoned[0])
}

func TestReplayMessage_OnDisposedWrapper(t *testing.T) {
	w := newTestWrapper(&fakeReceiver{}, &fakeSender{})
	require.NoError(t, w.Close(context.Background()))

	err := w.ReplayMessage(context.Background(), "q1", "", 42, "")

	var unavailable pkg.ServiceUnavailableError

	require.True(t, errors.As(err, &unavailable))
}

func TestReplayMessages_PartialResults(t *testing.T) {
	msg10 := dlqMessage(10, "ten", "")
	msg11 := dlqMessage(11, "eleven", "")
	msg12 := dlqMessage(12, "twelve", "")

	rcv := &fakeReceiver{batches: [][]*azservicebus.ReceivedMessage{{msg10, msg11, msg12}}}
	snd := &fakeSender{}
	w := newTestWrapper(rcv, snd)

	results, err := w.ReplayMessages(context.Background(), "t1", "s1", []int64{10, 11, 99}, "")
	require.NoError(t, err)

	require.Len(t, results, 3)
	assert.NoError(t, results[10])
	assert.NoError(t, results[11])

	var notFound pkg.EntityNotFoundError

	require.True(t, errors.As(results[99], &notFound))

	assert.Len(t, snd.sent, 2)
	assert.Len(t, rcv.completed, 2)
	// seq 12 was not requested and is abandoned on exit.
	require.Len(t, rcv.abandoned, 1)
	assert.Same(t, msg12, rcv.abandoned[0])
}

func TestReplayMessages_FullBatchSinglePass(t *testing.T) {
	var batch []*azservicebus.ReceivedMessage

	var seqs []int64

	for seq := int64(1); seq <= 100; seq++ {
		batch = append(batch, dlqMessage(seq, "m", ""))
		seqs = append(seqs, seq)
	}

	rcv := &fakeReceiver{batches: [][]*azservicebus.ReceivedMessage{batch}}
	snd := &fakeSender{}
	w := newTestWrapper(rcv, snd)

	results, err := w.ReplayMessages(context.Background(), "q1", "", seqs, "")
	require.NoError(t, err)

	require.Len(t, results, 100)

	for seq, result := range results {
		assert.NoError(t, result, "seq %d", seq)
	}

	assert.Len(t, snd.sent, 100)
	assert.Len(t, rcv.completed, 100)
	assert.Empty(t, rcv.abandoned)
}

func TestReplayMessages_OneSendFailureDoesNotAbortTheRest(t *testing.T) {
	msg1 := dlqMessage(1, "one", "")
	msg2 := dlqMessage(2, "two", "")

	rcv := &fakeReceiver{batches: [][]*azservicebus.ReceivedMessage{{msg1, msg2}}}

	snd := &failOnceSender{failBody: "one"}
	w := newTestWrapper(rcv, &fakeSender{})
	w.newSender = func(entity string) (sender, error) { return snd, nil }
	w.retry = mretry.Config{MaxRetries: 0, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

	results, err := w.ReplayMessages(context.Background(), "q1", "", []int64{1, 2}, "")
	require.NoError(t, err)

	assert.Error(t, results[1])
	assert.NoError(t, results[2])

	// The failed one is abandoned, the successful one completed.
	require.Len(t, rcv.completed, 1)
	require.Len(t, rcv.abandoned, 1)
	assert.Same(t, msg1, rcv.abandoned[0])
}

func TestReplayMessages_RequiresSequences(t *testing.T) {
	w := newTestWrapper(&fakeReceiver{}, &fakeSender{})

	_, err := w.ReplayMessages(context.Background(), "q1", "", nil, "")

	var validation pkg.ValidationError

	require.True(t, errors.As(err, &validation))
}

type failOnceSender struct {
	failBody string
	sent     []*azservicebus.Message
}

func (f *failOnceSender) SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error {
	if string(message.Body) == f.failBody {
		return errors.New("send refused")
	}

	f.sent = append(f.sent, message)

	return nil
}

func (f *failOnceSender) Close(ctx context.Context) error {
	return nil
}

func TestPurgeMessage_CompletesTarget(t *testing.T) {
	target := dlqMessage(5, "victim", "")
	other := dlqMessage(6, "bystander", "")

	rcv := &fakeReceiver{batches: [][]*azservicebus.ReceivedMessage{{target, other}}}
	w := newTestWrapper(rcv, &fakeSender{})

	require.NoError(t, w.PurgeMessage(context.Background(), "q1", "", 5, true))

	require.Len(t, rcv.completed, 1)
	assert.Same(t, target, rcv.completed[0])
	require.Len(t, rcv.abandoned, 1)
	assert.Same(t, other, rcv.abandoned[0])
}

func TestPurgeMessage_NotFound(t *testing.T) {
	rcv := &fakeReceiver{}
	w := newTestWrapper(rcv, &fakeSender{})

	err := w.PurgeMessage(context.Background(), "q1", "", 5, false)

	var notFound pkg.EntityNotFoundError

	require.True(t, errors.As(err, &notFound))
}

func TestClose_Idempotent(t *testing.T) {
	w := newTestWrapper(&fakeReceiver{}, &fakeSender{})

	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()))
}
