// Package rules evaluates auto-replay rules against tracked DLQ messages.
// Evaluation is pure: no side effects, deterministic for a given message, and
// a malformed condition evaluates false instead of failing the rule.
package rules

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/debdevops/servicehub/pkg/mmodel"
)

// fieldKind drives which operators apply to a field.
type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindTime
)

// Matches reports whether every condition of the rule holds for the message.
// A rule with no conditions matches nothing: an unconditioned auto-replay rule
// would replay an entire DLQ on every scan.
func Matches(rule *mmodel.AutoReplayRule, message *mmodel.DlqMessage) bool {
	if len(rule.Conditions) == 0 {
		return false
	}

	for _, condition := range rule.Conditions {
		if !evaluate(condition, message) {
			return false
		}
	}

	return true
}

func evaluate(condition mmodel.RuleCondition, message *mmodel.DlqMessage) bool {
	value, kind, ok := fieldValue(condition.Field, message)
	if !ok {
		return false
	}

	switch kind {
	case kindNumber, kindTime:
		return evaluateOrdered(condition, value, kind)
	default:
		return evaluateString(condition, value)
	}
}

func fieldValue(field string, message *mmodel.DlqMessage) (string, fieldKind, bool) {
	if name, found := strings.CutPrefix(field, mmodel.FieldPropertyPrefix); found {
		return message.CustomProperty(name), kindString, true
	}

	switch field {
	case mmodel.FieldDeadLetterReason:
		return message.DeadLetterReason, kindString, true
	case mmodel.FieldDeadLetterErrorDescription:
		return message.DeadLetterErrorDescription, kindString, true
	case mmodel.FieldFailureCategory:
		return string(message.FailureCategory), kindString, true
	case mmodel.FieldEntityName:
		return message.EntityName, kindString, true
	case mmodel.FieldTopicName:
		return message.TopicName, kindString, true
	case mmodel.FieldContentType:
		return message.ContentType, kindString, true
	case mmodel.FieldBodyPreview:
		return message.BodyPreview, kindString, true
	case mmodel.FieldDeliveryCount:
		return strconv.FormatUint(uint64(message.DeliveryCount), 10), kindNumber, true
	case mmodel.FieldEnqueuedTime:
		return message.EnqueuedTime.UTC().Format(time.RFC3339Nano), kindTime, true
	default:
		return "", kindString, false
	}
}

func evaluateString(condition mmodel.RuleCondition, value string) bool {
	lowered := strings.ToLower(value)
	target := strings.ToLower(condition.Value)

	switch condition.Operator {
	case mmodel.OperatorEquals:
		return lowered == target
	case mmodel.OperatorNotEquals:
		return lowered != target
	case mmodel.OperatorContains:
		return strings.Contains(lowered, target)
	case mmodel.OperatorNotContains:
		return !strings.Contains(lowered, target)
	case mmodel.OperatorStartsWith:
		return strings.HasPrefix(lowered, target)
	case mmodel.OperatorEndsWith:
		return strings.HasSuffix(lowered, target)
	case mmodel.OperatorRegex:
		matched, err := regexp.MatchString("^(?:"+condition.Value+")$", value)

		return err == nil && matched
	case mmodel.OperatorIn:
		for _, candidate := range strings.Split(condition.Value, ",") {
			if strings.EqualFold(strings.TrimSpace(candidate), value) {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func evaluateOrdered(condition mmodel.RuleCondition, value string, kind fieldKind) bool {
	switch condition.Operator {
	case mmodel.OperatorEquals, mmodel.OperatorNotEquals,
		mmodel.OperatorGreaterThan, mmodel.OperatorLessThan:
	case mmodel.OperatorIn:
		return evaluateString(condition, value)
	default:
		return false
	}

	var comparison int

	if kind == kindTime {
		have, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return false
		}

		want, err := parseTimeValue(condition.Value)
		if err != nil {
			return false
		}

		comparison = have.Compare(want)
	} else {
		have, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}

		want, err := strconv.ParseFloat(strings.TrimSpace(condition.Value), 64)
		if err != nil {
			return false
		}

		switch {
		case have < want:
			comparison = -1
		case have > want:
			comparison = 1
		}
	}

	switch condition.Operator {
	case mmodel.OperatorEquals:
		return comparison == 0
	case mmodel.OperatorNotEquals:
		return comparison != 0
	case mmodel.OperatorGreaterThan:
		return comparison > 0
	default:
		return comparison < 0
	}
}

func parseTimeValue(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}

	return time.Parse(time.RFC3339, value)
}

// ValidOperators is the operator whitelist, used by rule validation.
var ValidOperators = map[mmodel.RuleOperator]struct{}{
	mmodel.OperatorEquals:      {},
	mmodel.OperatorNotEquals:   {},
	mmodel.OperatorContains:    {},
	mmodel.OperatorNotContains: {},
	mmodel.OperatorStartsWith:  {},
	mmodel.OperatorEndsWith:    {},
	mmodel.OperatorRegex:       {},
	mmodel.OperatorGreaterThan: {},
	mmodel.OperatorLessThan:    {},
	mmodel.OperatorIn:          {},
}

// ValidFields is the field whitelist, used by rule validation. Property-prefixed
// fields are validated separately.
var ValidFields = map[string]struct{}{
	mmodel.FieldDeadLetterReason:           {},
	mmodel.FieldDeadLetterErrorDescription: {},
	mmodel.FieldFailureCategory:            {},
	mmodel.FieldEntityName:                 {},
	mmodel.FieldTopicName:                  {},
	mmodel.FieldContentType:                {},
	mmodel.FieldBodyPreview:                {},
	mmodel.FieldDeliveryCount:              {},
	mmodel.FieldEnqueuedTime:               {},
}

// ValidCondition reports whether a condition references a known field and
// operator. Evaluation tolerates unknown ones; creation rejects them early.
func ValidCondition(condition mmodel.RuleCondition) bool {
	if _, ok := ValidOperators[condition.Operator]; !ok {
		return false
	}

	if strings.HasPrefix(condition.Field, mmodel.FieldPropertyPrefix) {
		return len(condition.Field) > len(mmodel.FieldPropertyPrefix)
	}

	_, ok := ValidFields[condition.Field]

	return ok
}
