package rules

import (
	"testing"
	"time"

	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/stretchr/testify/assert"
)

func sampleMessage() *mmodel.DlqMessage {
	return &mmodel.DlqMessage{
		EntityName:                 "orders/subscriptions/billing",
		TopicName:                  "orders",
		EntityType:                 constant.EntityTypeSubscription,
		DeadLetterReason:           "Processor Exception",
		DeadLetterErrorDescription: "NullReferenceException at OrderHandler.cs:42",
		FailureCategory:            constant.FailureProcessingError,
		ContentType:                "application/json",
		BodyPreview:                `{"orderId":"A-1001","amount":25.50}`,
		DeliveryCount:              7,
		EnqueuedTime:               time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		CustomPropertiesJSON:       `{"tenant":"acme","region":"eu-west"}`,
	}
}

func rule(conditions ...mmodel.RuleCondition) *mmodel.AutoReplayRule {
	return &mmodel.AutoReplayRule{
		Conditions: conditions,
		Action:     mmodel.RuleAction{MaxReplaysPerHour: 100},
	}
}

func TestMatches_StringOperators(t *testing.T) {
	message := sampleMessage()

	testCases := []struct {
		name      string
		condition mmodel.RuleCondition
		expected  bool
	}{
		{
			name:      "equals case-insensitive",
			condition: mmodel.RuleCondition{Field: mmodel.FieldDeadLetterReason, Operator: mmodel.OperatorEquals, Value: "processor exception"},
			expected:  true,
		},
		{
			name:      "not equals",
			condition: mmodel.RuleCondition{Field: mmodel.FieldDeadLetterReason, Operator: mmodel.OperatorNotEquals, Value: "ttl expired"},
			expected:  true,
		},
		{
			name:      "contains",
			condition: mmodel.RuleCondition{Field: mmodel.FieldDeadLetterErrorDescription, Operator: mmodel.OperatorContains, Value: "nullreference"},
			expected:  true,
		},
		{
			name:      "not contains",
			condition: mmodel.RuleCondition{Field: mmodel.FieldBodyPreview, Operator: mmodel.OperatorNotContains, Value: "refund"},
			expected:  true,
		},
		{
			name:      "starts with",
			condition: mmodel.RuleCondition{Field: mmodel.FieldEntityName, Operator: mmodel.OperatorStartsWith, Value: "ORDERS/"},
			expected:  true,
		},
		{
			name:      "ends with",
			condition: mmodel.RuleCondition{Field: mmodel.FieldEntityName, Operator: mmodel.OperatorEndsWith, Value: "/billing"},
			expected:  true,
		},
		{
			name:      "regex full match",
			condition: mmodel.RuleCondition{Field: mmodel.FieldContentType, Operator: mmodel.OperatorRegex, Value: `application/.*`},
			expected:  true,
		},
		{
			name:      "regex partial is not a match",
			condition: mmodel.RuleCondition{Field: mmodel.FieldContentType, Operator: mmodel.OperatorRegex, Value: `application`},
			expected:  false,
		},
		{
			name:      "invalid regex evaluates false",
			condition: mmodel.RuleCondition{Field: mmodel.FieldContentType, Operator: mmodel.OperatorRegex, Value: `([`},
			expected:  false,
		},
		{
			name:      "in membership",
			condition: mmodel.RuleCondition{Field: mmodel.FieldFailureCategory, Operator: mmodel.OperatorIn, Value: "TTLExpired, ProcessingError , DataQuality"},
			expected:  true,
		},
		{
			name:      "in no membership",
			condition: mmodel.RuleCondition{Field: mmodel.FieldFailureCategory, Operator: mmodel.OperatorIn, Value: "TTLExpired,DataQuality"},
			expected:  false,
		},
		{
			name:      "unknown field evaluates false",
			condition: mmodel.RuleCondition{Field: "NoSuchField", Operator: mmodel.OperatorEquals, Value: "x"},
			expected:  false,
		},
		{
			name:      "unknown operator evaluates false",
			condition: mmodel.RuleCondition{Field: mmodel.FieldDeadLetterReason, Operator: "FuzzyMatch", Value: "x"},
			expected:  false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Matches(rule(testCase.condition), message))
		})
	}
}

func TestMatches_NumericAndTimeOperators(t *testing.T) {
	message := sampleMessage()

	testCases := []struct {
		name      string
		condition mmodel.RuleCondition
		expected  bool
	}{
		{
			name:      "delivery count greater than",
			condition: mmodel.RuleCondition{Field: mmodel.FieldDeliveryCount, Operator: mmodel.OperatorGreaterThan, Value: "5"},
			expected:  true,
		},
		{
			name:      "delivery count less than",
			condition: mmodel.RuleCondition{Field: mmodel.FieldDeliveryCount, Operator: mmodel.OperatorLessThan, Value: "5"},
			expected:  false,
		},
		{
			name:      "delivery count numeric equals",
			condition: mmodel.RuleCondition{Field: mmodel.FieldDeliveryCount, Operator: mmodel.OperatorEquals, Value: "7"},
			expected:  true,
		},
		{
			name:      "delivery count against garbage value",
			condition: mmodel.RuleCondition{Field: mmodel.FieldDeliveryCount, Operator: mmodel.OperatorGreaterThan, Value: "many"},
			expected:  false,
		},
		{
			name:      "substring operator on numeric field evaluates false",
			condition: mmodel.RuleCondition{Field: mmodel.FieldDeliveryCount, Operator: mmodel.OperatorContains, Value: "7"},
			expected:  false,
		},
		{
			name:      "enqueued after",
			condition: mmodel.RuleCondition{Field: mmodel.FieldEnqueuedTime, Operator: mmodel.OperatorGreaterThan, Value: "2024-04-01T00:00:00Z"},
			expected:  true,
		},
		{
			name:      "enqueued before",
			condition: mmodel.RuleCondition{Field: mmodel.FieldEnqueuedTime, Operator: mmodel.OperatorLessThan, Value: "2024-04-01T00:00:00Z"},
			expected:  false,
		},
		{
			name:      "enqueued against garbage timestamp",
			condition: mmodel.RuleCondition{Field: mmodel.FieldEnqueuedTime, Operator: mmodel.OperatorGreaterThan, Value: "yesterday"},
			expected:  false,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, Matches(rule(testCase.condition), message))
		})
	}
}

func TestMatches_CustomProperties(t *testing.T) {
	message := sampleMessage()

	matched := Matches(rule(mmodel.RuleCondition{
		Field:    "Property.tenant",
		Operator: mmodel.OperatorEquals,
		Value:    "ACME",
	}), message)
	assert.True(t, matched)

	missing := Matches(rule(mmodel.RuleCondition{
		Field:    "Property.missing",
		Operator: mmodel.OperatorEquals,
		Value:    "anything",
	}), message)
	assert.False(t, missing)
}

func TestMatches_Conjunction(t *testing.T) {
	message := sampleMessage()

	both := rule(
		mmodel.RuleCondition{Field: mmodel.FieldFailureCategory, Operator: mmodel.OperatorEquals, Value: "ProcessingError"},
		mmodel.RuleCondition{Field: mmodel.FieldDeliveryCount, Operator: mmodel.OperatorGreaterThan, Value: "5"},
	)
	assert.True(t, Matches(both, message))

	oneFails := rule(
		mmodel.RuleCondition{Field: mmodel.FieldFailureCategory, Operator: mmodel.OperatorEquals, Value: "ProcessingError"},
		mmodel.RuleCondition{Field: mmodel.FieldDeliveryCount, Operator: mmodel.OperatorLessThan, Value: "5"},
	)
	assert.False(t, Matches(oneFails, message))
}

func TestMatches_NoConditionsNeverMatches(t *testing.T) {
	assert.False(t, Matches(rule(), sampleMessage()))
}

func TestMatches_Deterministic(t *testing.T) {
	message := sampleMessage()
	r := rule(mmodel.RuleCondition{Field: mmodel.FieldDeadLetterReason, Operator: mmodel.OperatorContains, Value: "exception"})

	first := Matches(r, message)

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Matches(r, message))
	}
}

func TestValidCondition(t *testing.T) {
	assert.True(t, ValidCondition(mmodel.RuleCondition{Field: mmodel.FieldDeadLetterReason, Operator: mmodel.OperatorEquals}))
	assert.True(t, ValidCondition(mmodel.RuleCondition{Field: "Property.tenant", Operator: mmodel.OperatorContains}))
	assert.False(t, ValidCondition(mmodel.RuleCondition{Field: "Property.", Operator: mmodel.OperatorContains}))
	assert.False(t, ValidCondition(mmodel.RuleCondition{Field: "Bogus", Operator: mmodel.OperatorEquals}))
	assert.False(t, ValidCondition(mmodel.RuleCondition{Field: mmodel.FieldDeadLetterReason, Operator: "Bogus"}))
}
