package mmodel

import (
	"time"

	"github.com/google/uuid"
)

// RuleOperator is a comparison applied by one rule condition.
type RuleOperator string

const (
	OperatorEquals      RuleOperator = "Equals"
	OperatorNotEquals   RuleOperator = "NotEquals"
	OperatorContains    RuleOperator = "Contains"
	OperatorNotContains RuleOperator = "NotContains"
	OperatorStartsWith  RuleOperator = "StartsWith"
	OperatorEndsWith    RuleOperator = "EndsWith"
	OperatorRegex       RuleOperator = "Regex"
	OperatorGreaterThan RuleOperator = "GreaterThan"
	OperatorLessThan    RuleOperator = "LessThan"
	OperatorIn          RuleOperator = "In"
)

// Rule condition fields. Custom application properties are addressed as
// "Property.<name>".
const (
	FieldDeadLetterReason           = "DeadLetterReason"
	FieldDeadLetterErrorDescription = "DeadLetterErrorDescription"
	FieldFailureCategory            = "FailureCategory"
	FieldEntityName                 = "EntityName"
	FieldTopicName                  = "TopicName"
	FieldContentType                = "ContentType"
	FieldBodyPreview                = "BodyPreview"
	FieldDeliveryCount              = "DeliveryCount"
	FieldEnqueuedTime               = "EnqueuedTime"
	FieldPropertyPrefix             = "Property."
)

// RuleCondition is one field/operator/value triple; a rule's conditions are
// combined with conjunction.
type RuleCondition struct {
	Field    string       `json:"field" validate:"required"`
	Operator RuleOperator `json:"operator" validate:"required"`
	Value    string       `json:"value"`
}

// RuleAction describes what happens when a rule matches.
type RuleAction struct {
	AutoReplay         bool   `json:"autoReplay"`
	TargetEntity       string `json:"targetEntity,omitempty"`
	DelaySeconds       int    `json:"delaySeconds" validate:"gte=0"`
	ExponentialBackoff bool   `json:"exponentialBackoff"`
	MaxReplaysPerHour  int    `json:"maxReplaysPerHour" validate:"gt=0"`
}

// AutoReplayRule identifies dead-lettered messages worth replaying and how to
// replay them. A nil NamespaceID makes the rule global.
type AutoReplayRule struct {
	ID           uuid.UUID       `json:"id"`
	NamespaceID  *uuid.UUID      `json:"namespaceId,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Conditions   []RuleCondition `json:"conditions"`
	Action       RuleAction      `json:"action"`
	Enabled      bool            `json:"enabled"`
	MatchCount   int64           `json:"matchCount"`
	SuccessCount int64           `json:"successCount"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// CreateRuleInput is a struct design to encapsulate request create payload data.
type CreateRuleInput struct {
	NamespaceID *uuid.UUID      `json:"namespaceId,omitempty"`
	Name        string          `json:"name" validate:"required,max=256"`
	Description string          `json:"description,omitempty"`
	Conditions  []RuleCondition `json:"conditions" validate:"required,min=1"`
	Action      RuleAction      `json:"action"`
	Enabled     bool            `json:"enabled"`
}

// UpdateRuleInput is a struct design to encapsulate request update payload data.
type UpdateRuleInput struct {
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Conditions  []RuleCondition `json:"conditions,omitempty"`
	Action      *RuleAction     `json:"action,omitempty"`
	Enabled     *bool           `json:"enabled,omitempty"`
}

// ReplayAllSummary is the outcome of one coordinator run over a rule.
type ReplayAllSummary struct {
	RuleID   uuid.UUID `json:"ruleId"`
	Matched  int       `json:"matched"`
	Replayed int       `json:"replayed"`
	Failed   int       `json:"failed"`
	Skipped  int       `json:"skipped"`
}

// PendingMatches is the read-only match statistic for one rule, computed over
// Active tracked messages. Disabled rules are included.
type PendingMatches struct {
	RuleID  uuid.UUID `json:"ruleId"`
	Name    string    `json:"name"`
	Enabled bool      `json:"enabled"`
	Pending int       `json:"pending"`
}
