package services

import (
	"context"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/internal/rules"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
)

// GetAllRules fetches the rules visible to a namespace (its own plus global),
// or every rule when namespaceID is nil.
func (uc *UseCase) GetAllRules(ctx context.Context, namespaceID *uuid.UUID) ([]*mmodel.AutoReplayRule, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_all_rules")
	defer span.End()

	found, err := uc.DlqRepo.FindAllRules(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get rules", err)

		return nil, err
	}

	return found, nil
}

// GetRuleByID fetches one rule.
func (uc *UseCase) GetRuleByID(ctx context.Context, id uuid.UUID) (*mmodel.AutoReplayRule, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_rule_by_id")
	defer span.End()

	rule, err := uc.DlqRepo.FindRule(ctx, id)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get rule", err)

		return nil, err
	}

	return rule, nil
}

// GetPendingMatches computes the read-only pending-match statistic: how many
// Active tracked messages each rule currently matches. Disabled rules are
// evaluated too; they just never replay.
func (uc *UseCase) GetPendingMatches(ctx context.Context, namespaceID *uuid.UUID) ([]*mmodel.PendingMatches, error) {
	_, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.get_pending_matches")
	defer span.End()

	allRules, err := uc.DlqRepo.FindAllRules(ctx, namespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get rules", err)

		return nil, err
	}

	pending := make([]*mmodel.PendingMatches, 0, len(allRules))

	for _, rule := range allRules {
		scope := rule.NamespaceID
		if scope == nil {
			scope = namespaceID
		}

		candidates, err := uc.DlqRepo.FindActiveForReplay(ctx, scope)
		if err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to load candidates", err)

			return nil, err
		}

		count := 0

		for _, candidate := range candidates {
			if rules.Matches(rule, candidate) {
				count++
			}
		}

		pending = append(pending, &mmodel.PendingMatches{
			RuleID:  rule.ID,
			Name:    rule.Name,
			Enabled: rule.Enabled,
			Pending: count,
		})
	}

	return pending, nil
}
