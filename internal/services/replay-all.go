package services

import (
	"context"
	"errors"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/internal/rules"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

type replayGroupKey struct {
	namespaceID uuid.UUID
	entityName  string
}

// ReplayAll evaluates a rule over every Active tracked message in its scope,
// batch-replays the matches entity by entity, and persists the per-sequence
// outcomes in one transactional batch per group. Partial failures never abort
// the run. A batch replay with a target override still records the "batch"
// strategy.
func (uc *UseCase) ReplayAll(ctx context.Context, ruleID uuid.UUID) (*mmodel.ReplayAllSummary, error) {
	logger, tracer, reqId, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.replay_all")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.request_id", reqId),
		attribute.String("app.request.rule_id", ruleID.String()),
	)

	rule, err := uc.DlqRepo.FindRule(ctx, ruleID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to load rule", err)

		return nil, err
	}

	candidates, err := uc.DlqRepo.FindActiveForReplay(ctx, rule.NamespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to load replay candidates", err)

		return nil, err
	}

	var matched []*mmodel.DlqMessage

	for _, candidate := range candidates {
		if rules.Matches(rule, candidate) {
			matched = append(matched, candidate)
		}
	}

	summary := &mmodel.ReplayAllSummary{
		RuleID:  rule.ID,
		Matched: len(matched),
	}

	if len(matched) == 0 {
		return summary, nil
	}

	used, err := uc.DlqRepo.CountReplaysByRuleSince(ctx, rule.ID, time.Now().UTC().Add(-rateLimitWindow))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to check rate limit", err)

		return nil, err
	}

	budget := int64(rule.Action.MaxReplaysPerHour) - used
	if budget < 0 {
		budget = 0
	}

	admitted := matched
	if int64(len(matched)) > budget {
		admitted = matched[:budget]
	}

	// Everything over budget is recorded as skipped before any broker work.
	if skipped := matched[len(admitted):]; len(skipped) > 0 {
		now := time.Now().UTC()

		var records []*mmodel.ReplayHistory

		for _, message := range skipped {
			_, _, replayedTo, _ := resolveReplayTarget(message, rule)

			records = append(records, &mmodel.ReplayHistory{
				DlqMessageID:     message.ID,
				RuleID:           &rule.ID,
				ReplayedAt:       now,
				ReplayedBy:       autoReplayPrincipal,
				ReplayStrategy:   constant.ReplayStrategyBatch,
				ReplayedToEntity: replayedTo,
				OutcomeStatus:    constant.ReplayOutcomeSkipped,
				ErrorDetails:     "RateLimited",
			})
		}

		if err := uc.DlqRepo.RecordReplayOutcomes(ctx, records); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to record skipped replays", err)

			return nil, err
		}

		summary.Skipped = len(skipped)
	}

	groups := make(map[replayGroupKey][]*mmodel.DlqMessage)

	var groupOrder []replayGroupKey

	for _, message := range admitted {
		key := replayGroupKey{namespaceID: message.NamespaceID, entityName: message.EntityName}

		if _, seen := groups[key]; !seen {
			groupOrder = append(groupOrder, key)
		}

		groups[key] = append(groups[key], message)
	}

	for _, key := range groupOrder {
		replayed, failed := uc.replayGroup(ctx, rule, key, groups[key])

		summary.Replayed += replayed
		summary.Failed += failed
	}

	logger.Infof("Rule %s replay-all: %d matched, %d replayed, %d failed, %d skipped",
		rule.Name, summary.Matched, summary.Replayed, summary.Failed, summary.Skipped)

	return summary, nil
}

// replayGroup batch-replays one (namespace, entity) group and persists its
// outcomes. Group-level failures mark every member Failed instead of erroring
// the whole run.
func (uc *UseCase) replayGroup(ctx context.Context, rule *mmodel.AutoReplayRule, key replayGroupKey, messages []*mmodel.DlqMessage) (replayed, failed int) {
	logger := libCommons.NewLoggerFromContext(ctx)

	first := messages[0]
	sourceEntity, sourceSubscription, replayedTo, _ := resolveReplayTarget(first, rule)

	bySeq := make(map[int64]*mmodel.DlqMessage, len(messages))
	seqs := make([]int64, 0, len(messages))

	for _, message := range messages {
		bySeq[message.SequenceNumber] = message
		seqs = append(seqs, message.SequenceNumber)
	}

	now := time.Now().UTC()

	var records []*mmodel.ReplayHistory

	appendOutcome := func(message *mmodel.DlqMessage, outcome constant.ReplayOutcome, details string) {
		records = append(records, &mmodel.ReplayHistory{
			DlqMessageID:     message.ID,
			RuleID:           &rule.ID,
			ReplayedAt:       now,
			ReplayedBy:       autoReplayPrincipal,
			ReplayStrategy:   constant.ReplayStrategyBatch,
			ReplayedToEntity: replayedTo,
			OutcomeStatus:    outcome,
			ErrorDetails:     details,
		})
	}

	client, _, err := uc.brokerClient(ctx, key.namespaceID)
	if err != nil {
		logger.Errorf("Acquiring broker client for group %s failed: %v", key.entityName, err)

		for _, message := range messages {
			appendOutcome(message, constant.ReplayOutcomeFailed, err.Error())
		}

		uc.persistGroupOutcomes(ctx, key, records)

		return 0, len(messages)
	}

	results, err := client.ReplayMessages(ctx, sourceEntity, sourceSubscription, seqs, rule.Action.TargetEntity)
	if err != nil {
		logger.Errorf("Batch replay of group %s failed: %v", key.entityName, err)

		for _, message := range messages {
			appendOutcome(message, constant.ReplayOutcomeFailed, err.Error())
		}

		uc.persistGroupOutcomes(ctx, key, records)

		return 0, len(messages)
	}

	for seq, result := range results {
		message, tracked := bySeq[seq]
		if !tracked {
			continue
		}

		if result == nil {
			appendOutcome(message, constant.ReplayOutcomeSuccess, "")

			replayed++

			continue
		}

		outcome := constant.ReplayOutcomeFailed

		var notFound pkg.EntityNotFoundError
		if errors.As(result, &notFound) {
			outcome = constant.ReplayOutcomeError
		}

		appendOutcome(message, outcome, result.Error())

		failed++
	}

	uc.persistGroupOutcomes(ctx, key, records)

	return replayed, failed
}

func (uc *UseCase) persistGroupOutcomes(ctx context.Context, key replayGroupKey, records []*mmodel.ReplayHistory) {
	logger := libCommons.NewLoggerFromContext(ctx)

	if err := uc.DlqRepo.RecordReplayOutcomes(ctx, records); err != nil {
		logger.Errorf("Persisting replay outcomes for group %s failed: %v", key.entityName, err)
	}
}
