package services

import (
	"context"
	"reflect"
	"strings"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/internal/rules"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"go.opentelemetry.io/otel/attribute"
)

// CreateRule validates and persists a new auto-replay rule. Conditions with
// unknown fields or operators are rejected here rather than silently never
// matching.
func (uc *UseCase) CreateRule(ctx context.Context, input *mmodel.CreateRuleInput) (*mmodel.AutoReplayRule, error) {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.create_rule")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.rule_name", input.Name),
	)

	logger.Infof("Creating auto-replay rule %s", input.Name)

	if strings.TrimSpace(input.Name) == "" || len(input.Conditions) == 0 {
		return nil, pkg.ValidateBusinessError(constant.ErrMissingFieldsInRequest, reflect.TypeOf(mmodel.AutoReplayRule{}).Name())
	}

	if err := validateRuleDefinition(input.Conditions, input.Action); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Invalid rule definition", err)

		return nil, err
	}

	now := time.Now().UTC()

	rule := &mmodel.AutoReplayRule{
		ID:          libCommons.GenerateUUIDv7(),
		NamespaceID: input.NamespaceID,
		Name:        input.Name,
		Description: input.Description,
		Conditions:  input.Conditions,
		Action:      input.Action,
		Enabled:     input.Enabled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if rule.Action.MaxReplaysPerHour == 0 {
		rule.Action.MaxReplaysPerHour = constant.DefaultMaxReplaysPerHour
	}

	created, err := uc.DlqRepo.CreateRule(ctx, rule)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to persist rule", err)

		return nil, err
	}

	return created, nil
}

func validateRuleDefinition(conditions []mmodel.RuleCondition, action mmodel.RuleAction) error {
	for _, condition := range conditions {
		if !rules.ValidCondition(condition) {
			return pkg.ValidateBusinessError(constant.ErrInvalidRuleCondition, reflect.TypeOf(mmodel.AutoReplayRule{}).Name())
		}
	}

	if action.DelaySeconds < 0 || action.MaxReplaysPerHour < 0 {
		return pkg.ValidateBusinessError(constant.ErrInvalidRuleAction, reflect.TypeOf(mmodel.AutoReplayRule{}).Name())
	}

	return nil
}
