package services

import (
	"context"
	"errors"
	"strings"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"go.opentelemetry.io/otel/attribute"
)

// rateLimitWindow is the rolling window a rule's replay budget applies to.
const rateLimitWindow = time.Hour

// autoReplayPrincipal marks history rows written by the rule engine rather
// than an operator.
const autoReplayPrincipal = "auto-replay"

// AutoReplayMessage replays one tracked message on behalf of a rule: budget
// check, target resolution, optional delay, the replay itself, and the
// transactional outcome record. Returns the persisted outcome.
func (uc *UseCase) AutoReplayMessage(ctx context.Context, message *mmodel.DlqMessage, rule *mmodel.AutoReplayRule) (constant.ReplayOutcome, error) {
	logger, tracer, _, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, span := tracer.Start(ctx, "service.auto_replay_message")
	defer span.End()

	span.SetAttributes(
		attribute.String("app.request.rule_id", rule.ID.String()),
		attribute.String("app.request.dlq_message_id", message.ID.String()),
	)

	used, err := uc.DlqRepo.CountReplaysByRuleSince(ctx, rule.ID, time.Now().UTC().Add(-rateLimitWindow))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to check rate limit", err)

		return "", err
	}

	sourceEntity, sourceSubscription, replayedTo, strategy := resolveReplayTarget(message, rule)

	if used >= int64(rule.Action.MaxReplaysPerHour) {
		logger.Infof("Rule %s exhausted its hourly budget, skipping seq %d", rule.Name, message.SequenceNumber)

		record := &mmodel.ReplayHistory{
			DlqMessageID:     message.ID,
			RuleID:           &rule.ID,
			ReplayedAt:       time.Now().UTC(),
			ReplayedBy:       autoReplayPrincipal,
			ReplayStrategy:   strategy,
			ReplayedToEntity: replayedTo,
			OutcomeStatus:    constant.ReplayOutcomeSkipped,
			ErrorDetails:     "RateLimited",
		}

		if err := uc.DlqRepo.RecordReplayOutcome(ctx, record); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to record skipped replay", err)

			return "", err
		}

		return constant.ReplayOutcomeSkipped, nil
	}

	if rule.Action.DelaySeconds > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(rule.Action.DelaySeconds) * time.Second):
		}
	}

	client, _, err := uc.brokerClient(ctx, message.NamespaceID)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to acquire broker client", err)

		return "", err
	}

	replayErr := client.ReplayMessage(ctx, sourceEntity, sourceSubscription, message.SequenceNumber, rule.Action.TargetEntity)

	outcome := constant.ReplayOutcomeSuccess
	details := ""

	if replayErr != nil {
		outcome = constant.ReplayOutcomeFailed
		details = replayErr.Error()

		var notFound pkg.EntityNotFoundError
		if errors.As(replayErr, &notFound) {
			outcome = constant.ReplayOutcomeError
		}

		logger.Errorf("Auto-replay of seq %d via rule %s failed: %v", message.SequenceNumber, rule.Name, replayErr)
	}

	record := &mmodel.ReplayHistory{
		DlqMessageID:     message.ID,
		RuleID:           &rule.ID,
		ReplayedAt:       time.Now().UTC(),
		ReplayedBy:       autoReplayPrincipal,
		ReplayStrategy:   strategy,
		ReplayedToEntity: replayedTo,
		OutcomeStatus:    outcome,
		ErrorDetails:     details,
	}

	if err := uc.DlqRepo.RecordReplayOutcome(ctx, record); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to record replay outcome", err)

		return "", err
	}

	return outcome, replayErr
}

// resolveReplayTarget decides where a rule-driven replay scans from and sends
// to. An explicit target entity wins; a subscription otherwise replays to its
// topic; a queue replays to itself.
func resolveReplayTarget(message *mmodel.DlqMessage, rule *mmodel.AutoReplayRule) (sourceEntity, sourceSubscription, replayedTo string, strategy constant.ReplayStrategy) {
	if message.EntityType == constant.EntityTypeSubscription {
		sourceEntity = message.TopicName
		if sourceEntity == "" {
			sourceEntity = topicFromEntityName(message.EntityName)
		}

		sourceSubscription = mmodel.SubscriptionFromEntityName(message.EntityName)
	} else {
		sourceEntity = message.EntityName
	}

	replayedTo = sourceEntity
	strategy = constant.ReplayStrategyOriginalEntity

	if rule.Action.TargetEntity != "" {
		replayedTo = rule.Action.TargetEntity
		strategy = constant.ReplayStrategyAlternateEntity
	}

	return sourceEntity, sourceSubscription, replayedTo, strategy
}

func topicFromEntityName(entityName string) string {
	if idx := strings.Index(entityName, "/subscriptions/"); idx >= 0 {
		return entityName[:idx]
	}

	return entityName
}
