package servicebus

import (
	"encoding/json"
	"math"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
)

// toMessage converts a broker message into the transport-neutral view.
func toMessage(msg *azservicebus.ReceivedMessage, fromDeadLetter bool) *mmodel.Message {
	out := &mmodel.Message{
		MessageID:             msg.MessageID,
		Body:                  msg.Body,
		DeliveryCount:         msg.DeliveryCount,
		TimeToLive:            msg.TimeToLive,
		ScheduledEnqueueTime:  msg.ScheduledEnqueueTime,
		ExpiresAt:             msg.ExpiresAt,
		ApplicationProperties: msg.ApplicationProperties,
		State:                 messageState(msg, fromDeadLetter),
	}

	if msg.SequenceNumber != nil {
		out.SequenceNumber = *msg.SequenceNumber
	}

	if msg.EnqueuedTime != nil {
		out.EnqueuedTime = *msg.EnqueuedTime
	}

	out.ContentType = stringValue(msg.ContentType)
	out.CorrelationID = stringValue(msg.CorrelationID)
	out.SessionID = stringValue(msg.SessionID)
	out.PartitionKey = stringValue(msg.PartitionKey)
	out.Subject = stringValue(msg.Subject)
	out.ReplyTo = stringValue(msg.ReplyTo)
	out.To = stringValue(msg.To)
	out.DeadLetterReason = stringValue(msg.DeadLetterReason)
	out.DeadLetterErrorDescription = stringValue(msg.DeadLetterErrorDescription)
	out.DeadLetterSource = stringValue(msg.DeadLetterSource)

	return out
}

func messageState(msg *azservicebus.ReceivedMessage, fromDeadLetter bool) mmodel.MessageState {
	if fromDeadLetter {
		return mmodel.MessageStateDeadLettered
	}

	switch msg.State {
	case azservicebus.MessageStateDeferred:
		return mmodel.MessageStateDeferred
	case azservicebus.MessageStateScheduled:
		return mmodel.MessageStateScheduled
	default:
		return mmodel.MessageStateActive
	}
}

// buildMessage assembles an outbound broker message from a send request.
func buildMessage(input mmodel.SendMessageInput) *azservicebus.Message {
	msg := &azservicebus.Message{
		Body:                  []byte(input.Body),
		ContentType:           stringPtr(input.ContentType),
		CorrelationID:         stringPtr(input.CorrelationID),
		SessionID:             stringPtr(input.SessionID),
		PartitionKey:          stringPtr(input.PartitionKey),
		Subject:               stringPtr(input.Subject),
		ReplyTo:               stringPtr(input.ReplyTo),
		ReplyToSessionID:      stringPtr(input.ReplyToSessionID),
		To:                    stringPtr(input.To),
		ScheduledEnqueueTime:  input.ScheduledEnqueueTime,
		ApplicationProperties: coerceProperties(input.ApplicationProperties),
	}

	if input.TimeToLiveSeconds > 0 {
		ttl := time.Duration(input.TimeToLiveSeconds) * time.Second
		msg.TimeToLive = &ttl
	}

	return msg
}

// coerceProperties converts generic JSON scalars to the primitive types the
// broker accepts. Whole-valued numbers become int64, the rest float64; nested
// values fall back to their JSON text.
func coerceProperties(props map[string]any) map[string]any {
	if len(props) == 0 {
		return nil
	}

	coerced := make(map[string]any, len(props))

	for key, value := range props {
		switch v := value.(type) {
		case nil:
			coerced[key] = nil
		case string, bool, int64, float64:
			coerced[key] = coerceScalar(v)
		case int:
			coerced[key] = int64(v)
		case int32:
			coerced[key] = int64(v)
		case json.Number:
			if i, err := v.Int64(); err == nil {
				coerced[key] = i
			} else if f, err := v.Float64(); err == nil {
				coerced[key] = f
			} else {
				coerced[key] = v.String()
			}
		default:
			if raw, err := json.Marshal(v); err == nil {
				coerced[key] = string(raw)
			}
		}
	}

	return coerced
}

func coerceScalar(value any) any {
	f, ok := value.(float64)
	if !ok {
		return value
	}

	if f == math.Trunc(f) && math.Abs(f) < float64(math.MaxInt64) {
		return int64(f)
	}

	return f
}

// cloneForReplay builds the message sent back to the live entity: the original
// body and user-visible headers under a fresh message id, with the dead-letter
// bookkeeping properties replaced by replay metadata.
func cloneForReplay(original *azservicebus.ReceivedMessage, sequenceNumber int64) *azservicebus.Message {
	freshID := libCommons.GenerateUUIDv7().String()

	clone := &azservicebus.Message{
		MessageID:             &freshID,
		Body:                  original.Body,
		ContentType:           original.ContentType,
		CorrelationID:         original.CorrelationID,
		SessionID:             original.SessionID,
		PartitionKey:          original.PartitionKey,
		Subject:               original.Subject,
		ReplyTo:               original.ReplyTo,
		ReplyToSessionID:      original.ReplyToSessionID,
		To:                    original.To,
		TimeToLive:            original.TimeToLive,
		ApplicationProperties: make(map[string]any, len(original.ApplicationProperties)+4),
	}

	for key, value := range original.ApplicationProperties {
		if key == constant.PropDeadLetterReason || key == constant.PropDeadLetterErrorDescription {
			continue
		}

		clone.ApplicationProperties[key] = value
	}

	reason := "Unknown"
	if original.DeadLetterReason != nil && *original.DeadLetterReason != "" {
		reason = *original.DeadLetterReason
	}

	clone.ApplicationProperties[constant.PropReplayed] = true
	clone.ApplicationProperties[constant.PropReplayedAt] = time.Now().UTC().Format(time.RFC3339)
	clone.ApplicationProperties[constant.PropOriginalSequenceNumber] = sequenceNumber
	clone.ApplicationProperties[constant.PropOriginalDeadLetterReason] = reason

	return clone
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
