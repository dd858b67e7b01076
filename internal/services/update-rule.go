package services

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// UpdateRule applies a partial update to a rule's definition. Counters are
// untouched; they only move with replay outcomes.
func (uc *UseCase) UpdateRule(ctx context.Context, id uuid.UUID, input *mmodel.UpdateRuleInput) (*mmodel.AutoReplayRule, error) {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.update_rule")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.rule_id", id.String()),
	)

	rule, err := uc.DlqRepo.FindRule(ctx, id)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to load rule", err)

		return nil, err
	}

	if input.Name != "" {
		rule.Name = input.Name
	}

	if input.Description != "" {
		rule.Description = input.Description
	}

	if len(input.Conditions) > 0 {
		rule.Conditions = input.Conditions
	}

	if input.Action != nil {
		rule.Action = *input.Action

		if rule.Action.MaxReplaysPerHour == 0 {
			rule.Action.MaxReplaysPerHour = constant.DefaultMaxReplaysPerHour
		}
	}

	if input.Enabled != nil {
		rule.Enabled = *input.Enabled
	}

	if err := validateRuleDefinition(rule.Conditions, rule.Action); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Invalid rule definition", err)

		return nil, err
	}

	updated, err := uc.DlqRepo.UpdateRule(ctx, rule)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to update rule", err)

		logger.Errorf("Failed to update rule %v: %v", id, err)

		return nil, err
	}

	return updated, nil
}

// DeleteRule removes a rule; its history stays for auditing.
func (uc *UseCase) DeleteRule(ctx context.Context, id uuid.UUID) error {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.delete_rule")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.rule_id", id.String()),
	)

	logger.Infof("Deleting rule %v", id)

	if err := uc.DlqRepo.DeleteRule(ctx, id); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to delete rule", err)

		return err
	}

	return nil
}
