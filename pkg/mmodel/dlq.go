package mmodel

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/google/uuid"
)

// BodyPreviewLimit caps how much of a dead-lettered body is persisted.
const BodyPreviewLimit = 4096

// DlqMessage is one distinct message the scanner has ever observed in a dead-letter
// sub-queue. The dedup key is (NamespaceID, EntityName, SequenceNumber).
type DlqMessage struct {
	ID                         uuid.UUID                 `json:"id"`
	NamespaceID                uuid.UUID                 `json:"namespaceId"`
	EntityName                 string                    `json:"entityName"`
	TopicName                  string                    `json:"topicName,omitempty"`
	EntityType                 constant.EntityType       `json:"entityType"`
	BrokerMessageID            string                    `json:"brokerMessageId"`
	SequenceNumber             int64                     `json:"sequenceNumber"`
	EnqueuedTime               time.Time                 `json:"enqueuedTime"`
	DeadLetterReason           string                    `json:"deadLetterReason"`
	DeadLetterErrorDescription string                    `json:"deadLetterErrorDescription,omitempty"`
	DeliveryCount              uint32                    `json:"deliveryCount"`
	FailureCategory            constant.FailureCategory  `json:"failureCategory"`
	BodyPreview                string                    `json:"bodyPreview,omitempty"`
	ContentType                string                    `json:"contentType,omitempty"`
	CustomPropertiesJSON       string                    `json:"customProperties,omitempty"`
	FirstSeenAt                time.Time                 `json:"firstSeenAt"`
	LastSeenAt                 time.Time                 `json:"lastSeenAt"`
	Status                     constant.DlqMessageStatus `json:"status"`
	ReplayedAt                 *time.Time                `json:"replayedAt,omitempty"`
	ReplaySuccess              *bool                     `json:"replaySuccess,omitempty"`
}

// CustomProperties decodes the persisted application properties. Values are
// rendered as strings; a malformed payload yields nil.
func (m *DlqMessage) CustomProperties() map[string]string {
	if m.CustomPropertiesJSON == "" {
		return nil
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(m.CustomPropertiesJSON), &raw); err != nil {
		return nil
	}

	props := make(map[string]string, len(raw))

	for k, v := range raw {
		switch val := v.(type) {
		case string:
			props[k] = val
		case nil:
			props[k] = ""
		default:
			props[k] = fmt.Sprintf("%v", val)
		}
	}

	return props
}

// CustomProperty returns the string form of one application property carried by
// the observed message, or "" when absent.
func (m *DlqMessage) CustomProperty(name string) string {
	props := m.CustomProperties()
	if props == nil {
		return ""
	}

	return props[name]
}

// DlqObservation is a single sighting of a dead-lettered message during a scan.
type DlqObservation struct {
	NamespaceID                uuid.UUID
	EntityName                 string
	TopicName                  string
	EntityType                 constant.EntityType
	BrokerMessageID            string
	SequenceNumber             int64
	EnqueuedTime               time.Time
	DeadLetterReason           string
	DeadLetterErrorDescription string
	DeliveryCount              uint32
	BodyPreview                string
	ContentType                string
	CustomPropertiesJSON       string
	ObservedAt                 time.Time
}

// DlqFilter narrows tracked-message reads.
type DlqFilter struct {
	EntityName      string
	FailureCategory constant.FailureCategory
	Status          constant.DlqMessageStatus
	Search          string
}

// Pagination is offset paging for tracked-message reads.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DlqSummary aggregates a namespace's tracked messages for the overview screen.
type DlqSummary struct {
	NamespaceID     uuid.UUID                            `json:"namespaceId"`
	Total           int64                                `json:"total"`
	ByStatus        map[constant.DlqMessageStatus]int64  `json:"byStatus"`
	ByCategory      map[constant.FailureCategory]int64   `json:"byCategory"`
	ByEntity        map[string]int64                     `json:"byEntity"`
	OldestActiveAge *time.Duration                       `json:"oldestActiveAge,omitempty"`
}

// ReplayHistory is one append-only record of a replay attempt.
type ReplayHistory struct {
	ID               uuid.UUID               `json:"id"`
	DlqMessageID     uuid.UUID               `json:"dlqMessageId"`
	RuleID           *uuid.UUID              `json:"ruleId,omitempty"`
	ReplayedAt       time.Time               `json:"replayedAt"`
	ReplayedBy       string                  `json:"replayedBy"`
	ReplayStrategy   constant.ReplayStrategy `json:"replayStrategy"`
	ReplayedToEntity string                  `json:"replayedToEntity"`
	OutcomeStatus    constant.ReplayOutcome  `json:"outcomeStatus"`
	ErrorDetails     string                  `json:"errorDetails,omitempty"`
}

// classificationRules maps dead-letter reason substrings to categories in
// precedence order. Matching is case-insensitive.
var classificationRules = []struct {
	category  constant.FailureCategory
	substring []string
}{
	{constant.FailureMaxDeliveryCountExceeded, []string{"maxdelivery"}},
	{constant.FailureTTLExpired, []string{"expired", "ttl"}},
	{constant.FailureFilterEvaluation, []string{"filter"}},
	{constant.FailureSessionLock, []string{"session"}},
	{constant.FailureAuthorization, []string{"unauthorized", "forbidden"}},
	{constant.FailureResourceNotFound, []string{"notfound", "entitynotfound"}},
	{constant.FailureQuotaExceeded, []string{"quota", "sizeexceeded"}},
	{constant.FailureDataQuality, []string{"deserializ", "schema", "malformed"}},
	{constant.FailureProcessingError, []string{"exception", "error"}},
}

// ClassifyFailure derives the stable failure category from a broker-supplied
// dead-letter reason. Unknown reason text falls back to Transient.
func ClassifyFailure(reason string) constant.FailureCategory {
	lowered := strings.ToLower(reason)

	for _, rule := range classificationRules {
		for _, sub := range rule.substring {
			if strings.Contains(lowered, sub) {
				return rule.category
			}
		}
	}

	return constant.FailureTransient
}

// TruncateBodyPreview renders at most BodyPreviewLimit bytes of a message body
// as UTF-8, replacing invalid sequences.
func TruncateBodyPreview(body []byte) string {
	if len(body) > BodyPreviewLimit {
		body = body[:BodyPreviewLimit]
	}

	return strings.ToValidUTF8(string(body), "�")
}

// SubscriptionEntityName builds the canonical tracked entity name for a
// topic subscription.
func SubscriptionEntityName(topic, subscription string) string {
	return topic + "/subscriptions/" + subscription
}

// SubscriptionFromEntityName strips the "<topic>/subscriptions/" prefix from a
// tracked entity name, returning the bare subscription name. Names without the
// prefix are returned unchanged.
func SubscriptionFromEntityName(entityName string) string {
	if idx := strings.Index(entityName, "/subscriptions/"); idx >= 0 {
		return entityName[idx+len("/subscriptions/"):]
	}

	return entityName
}
