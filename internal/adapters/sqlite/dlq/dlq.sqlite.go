package dlq

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/Masterminds/squirrel"
	"github.com/debdevops/servicehub/internal/adapters/sqlite"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Repository provides an interface for operations on tracked DLQ messages,
// replay history, and auto-replay rules. The three aggregates share one store
// so replay outcomes can be persisted in a single transactional batch.
//
//go:generate mockgen --destination=dlq.sqlite_mock.go --package=dlq . Repository
type Repository interface {
	UpsertObserved(ctx context.Context, observation *mmodel.DlqObservation) (bool, error)
	MarkResolved(ctx context.Context, namespaceID uuid.UUID, entityName string, notSeen []int64, staleBefore time.Time) (int64, error)
	ListActiveSequences(ctx context.Context, namespaceID uuid.UUID, entityName string) (map[int64]time.Time, error)
	ListActiveEntities(ctx context.Context, namespaceID uuid.UUID) ([]string, error)
	Find(ctx context.Context, id uuid.UUID) (*mmodel.DlqMessage, error)
	FindBySequence(ctx context.Context, namespaceID uuid.UUID, entityName string, sequenceNumber int64) (*mmodel.DlqMessage, error)
	FindByNamespace(ctx context.Context, namespaceID uuid.UUID, filter mmodel.DlqFilter, page mmodel.Pagination) ([]*mmodel.DlqMessage, error)
	FindActiveForReplay(ctx context.Context, namespaceID *uuid.UUID) ([]*mmodel.DlqMessage, error)
	GetSummary(ctx context.Context, namespaceID uuid.UUID) (*mmodel.DlqSummary, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, status constant.DlqMessageStatus) error
	AddReplayHistory(ctx context.Context, record *mmodel.ReplayHistory) (*mmodel.ReplayHistory, error)
	FindTimeline(ctx context.Context, dlqMessageID uuid.UUID) ([]*mmodel.ReplayHistory, error)
	CountReplaysByRuleSince(ctx context.Context, ruleID uuid.UUID, since time.Time) (int64, error)
	RecordReplayOutcome(ctx context.Context, record *mmodel.ReplayHistory) error
	RecordReplayOutcomes(ctx context.Context, records []*mmodel.ReplayHistory) error
	CreateRule(ctx context.Context, rule *mmodel.AutoReplayRule) (*mmodel.AutoReplayRule, error)
	UpdateRule(ctx context.Context, rule *mmodel.AutoReplayRule) (*mmodel.AutoReplayRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) error
	FindRule(ctx context.Context, id uuid.UUID) (*mmodel.AutoReplayRule, error)
	FindAllRules(ctx context.Context, namespaceID *uuid.UUID) ([]*mmodel.AutoReplayRule, error)
}

// SqliteRepository is a sqlite-specific implementation of the DLQ Repository.
type SqliteRepository struct {
	connection *sqlite.Connection
}

// NewSqliteRepository returns a new instance of SqliteRepository using the given connection.
func NewSqliteRepository(sc *sqlite.Connection) (*SqliteRepository, error) {
	r := &SqliteRepository{
		connection: sc,
	}

	if err := sc.Connect(); err != nil {
		return nil, err
	}

	return r, nil
}

const messageColumns = `id, namespace_id, entity_name, topic_name, entity_type, broker_message_id,
	sequence_number, enqueued_time, dead_letter_reason, dead_letter_error_description, delivery_count,
	failure_category, body_preview, content_type, custom_properties_json, first_seen_at, last_seen_at,
	status, replayed_at, replay_success`

const historyColumns = `id, dlq_message_id, rule_id, replayed_at, replayed_by, replay_strategy,
	replayed_to_entity, outcome_status, error_details`

const ruleColumns = `id, namespace_id, name, description, conditions_json, action_json, enabled,
	match_count, success_count, created_at, updated_at`

// UpsertObserved records one scan sighting. An existing row keeps its status
// (terminal rows are never reactivated) but refreshes the broker-supplied
// fields and the derived failure category. Returns true when a row was created.
func (r *SqliteRepository) UpsertObserved(ctx context.Context, observation *mmodel.DlqObservation) (bool, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.upsert_observed_dlq_message")
	defer span.End()

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return false, err
	}

	category := mmodel.ClassifyFailure(observation.DeadLetterReason)

	result, err := db.ExecContext(ctx, `
		UPDATE dlq_messages SET
			last_seen_at = ?,
			dead_letter_reason = ?,
			dead_letter_error_description = ?,
			delivery_count = ?,
			failure_category = ?
		WHERE namespace_id = ? AND entity_name = ? AND sequence_number = ?`,
		observation.ObservedAt,
		observation.DeadLetterReason,
		observation.DeadLetterErrorDescription,
		observation.DeliveryCount,
		string(category),
		observation.NamespaceID.String(),
		observation.EntityName,
		observation.SequenceNumber,
	)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to refresh observed message", err)

		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get rows affected", err)

		return false, err
	}

	if rowsAffected > 0 {
		return false, nil
	}

	var topicName any
	if observation.TopicName != "" {
		topicName = observation.TopicName
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO dlq_messages (`+messageColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, NULL)`,
		libCommons.GenerateUUIDv7().String(),
		observation.NamespaceID.String(),
		observation.EntityName,
		topicName,
		string(observation.EntityType),
		observation.BrokerMessageID,
		observation.SequenceNumber,
		observation.EnqueuedTime,
		observation.DeadLetterReason,
		observation.DeadLetterErrorDescription,
		observation.DeliveryCount,
		string(category),
		observation.BodyPreview,
		observation.ContentType,
		observation.CustomPropertiesJSON,
		observation.ObservedAt,
		observation.ObservedAt,
		string(constant.DlqStatusActive),
	)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to insert observed message", err)

		// A concurrent scan of the same entity can race the insert; the row's
		// unique index makes the second writer's refresh equivalent.
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && errors.Is(sqliteErr.ExtendedCode, sqlite3.ErrConstraintUnique) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

// MarkResolved transitions Active rows whose sequence is in notSeen and whose
// last sighting predates staleBefore. Terminal rows are left untouched, which
// keeps the transition one-shot.
func (r *SqliteRepository) MarkResolved(ctx context.Context, namespaceID uuid.UUID, entityName string, notSeen []int64, staleBefore time.Time) (int64, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.mark_resolved")
	defer span.End()

	if len(notSeen) == 0 {
		return 0, nil
	}

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return 0, err
	}

	query, args, err := squirrel.Update("dlq_messages").
		Set("status", string(constant.DlqStatusResolved)).
		Where(squirrel.Eq{
			"namespace_id":    namespaceID.String(),
			"entity_name":     entityName,
			"sequence_number": notSeen,
			"status":          string(constant.DlqStatusActive),
		}).
		Where(squirrel.Lt{"last_seen_at": staleBefore}).
		ToSql()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to build resolution query", err)

		return 0, err
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to resolve stale messages", err)

		return 0, err
	}

	return result.RowsAffected()
}

// ListActiveSequences returns the Active sequence numbers tracked for one
// entity together with their last sighting time.
func (r *SqliteRepository) ListActiveSequences(ctx context.Context, namespaceID uuid.UUID, entityName string) (map[int64]time.Time, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.list_active_sequences")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT sequence_number, last_seen_at FROM dlq_messages
		WHERE namespace_id = ? AND entity_name = ? AND status = ?`,
		namespaceID.String(), entityName, string(constant.DlqStatusActive))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to query active sequences", err)

		return nil, err
	}
	defer rows.Close()

	sequences := make(map[int64]time.Time)

	for rows.Next() {
		var (
			seq      int64
			lastSeen time.Time
		)

		if err := rows.Scan(&seq, &lastSeen); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to scan sequence row", err)

			return nil, err
		}

		sequences[seq] = lastSeen
	}

	if err := rows.Err(); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to iterate sequence rows", err)

		return nil, err
	}

	return sequences, nil
}

// ListActiveEntities returns the entities of a namespace that still carry
// Active tracked rows, used by the scanner's resolution sweep.
func (r *SqliteRepository) ListActiveEntities(ctx context.Context, namespaceID uuid.UUID) ([]string, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.list_active_entities")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT DISTINCT entity_name FROM dlq_messages
		WHERE namespace_id = ? AND status = ?`,
		namespaceID.String(), string(constant.DlqStatusActive))
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to query active entities", err)

		return nil, err
	}
	defer rows.Close()

	var entities []string

	for rows.Next() {
		var entity string

		if err := rows.Scan(&entity); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to scan entity row", err)

			return nil, err
		}

		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to iterate entity rows", err)

		return nil, err
	}

	return entities, nil
}

// FindBySequence retrieves one tracked message by its dedup key.
func (r *SqliteRepository) FindBySequence(ctx context.Context, namespaceID uuid.UUID, entityName string, sequenceNumber int64) (*mmodel.DlqMessage, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.find_dlq_message_by_sequence")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM dlq_messages
		WHERE namespace_id = ? AND entity_name = ? AND sequence_number = ?`,
		namespaceID.String(), entityName, sequenceNumber)

	record := &MessageSQLiteModel{}
	if err := scanMessage(row.Scan, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.DlqMessage{}).Name())
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to scan tracked message", err)

		return nil, err
	}

	return record.ToEntity(), nil
}

// Find retrieves one tracked message by id.
func (r *SqliteRepository) Find(ctx context.Context, id uuid.UUID) (*mmodel.DlqMessage, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.find_dlq_message")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+messageColumns+` FROM dlq_messages WHERE id = ?`, id.String())

	record := &MessageSQLiteModel{}
	if err := scanMessage(row.Scan, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.DlqMessage{}).Name())
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to scan tracked message", err)

		return nil, err
	}

	return record.ToEntity(), nil
}

// FindByNamespace retrieves tracked messages for a namespace under the given
// filter and paging, most recently seen first.
func (r *SqliteRepository) FindByNamespace(ctx context.Context, namespaceID uuid.UUID, filter mmodel.DlqFilter, page mmodel.Pagination) ([]*mmodel.DlqMessage, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.find_dlq_messages_by_namespace")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	builder := squirrel.Select(messageColumns).
		From("dlq_messages").
		Where(squirrel.Eq{"namespace_id": namespaceID.String()}).
		OrderBy("last_seen_at DESC")

	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"status": string(filter.Status)})
	}

	if filter.EntityName != "" {
		builder = builder.Where(squirrel.Eq{"entity_name": filter.EntityName})
	}

	if filter.FailureCategory != "" {
		builder = builder.Where(squirrel.Eq{"failure_category": string(filter.FailureCategory)})
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		builder = builder.Where(squirrel.Or{
			squirrel.Like{"dead_letter_reason": pattern},
			squirrel.Like{"dead_letter_error_description": pattern},
			squirrel.Like{"body_preview": pattern},
		})
	}

	if page.Limit > 0 {
		builder = builder.Limit(uint64(page.Limit))

		if page.Page > 1 {
			builder = builder.Offset(uint64((page.Page - 1) * page.Limit))
		}
	}

	query, args, err := builder.ToSql()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to build tracked-message query", err)

		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to query tracked messages", err)

		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

// FindActiveForReplay retrieves every Active tracked message visible to a rule:
// the rule's namespace when set, all namespaces when global.
func (r *SqliteRepository) FindActiveForReplay(ctx context.Context, namespaceID *uuid.UUID) ([]*mmodel.DlqMessage, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.find_active_for_replay")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	builder := squirrel.Select(messageColumns).
		From("dlq_messages").
		Where(squirrel.Eq{"status": string(constant.DlqStatusActive)}).
		OrderBy("namespace_id, entity_name, sequence_number")

	if namespaceID != nil {
		builder = builder.Where(squirrel.Eq{"namespace_id": namespaceID.String()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to build replay candidate query", err)

		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to query replay candidates", err)

		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

// GetSummary aggregates a namespace's tracked messages by status, failure
// category, and entity.
func (r *SqliteRepository) GetSummary(ctx context.Context, namespaceID uuid.UUID) (*mmodel.DlqSummary, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.get_dlq_summary")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	summary := &mmodel.DlqSummary{
		NamespaceID: namespaceID,
		ByStatus:    make(map[constant.DlqMessageStatus]int64),
		ByCategory:  make(map[constant.FailureCategory]int64),
		ByEntity:    make(map[string]int64),
	}

	rows, err := db.QueryContext(ctx, `
		SELECT status, failure_category, entity_name, COUNT(*)
		FROM dlq_messages WHERE namespace_id = ?
		GROUP BY status, failure_category, entity_name`,
		namespaceID.String())
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to query summary", err)

		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status, category, entity string
			count                    int64
		)

		if err := rows.Scan(&status, &category, &entity, &count); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to scan summary row", err)

			return nil, err
		}

		summary.Total += count
		summary.ByStatus[constant.DlqMessageStatus(status)] += count
		summary.ByCategory[constant.FailureCategory(category)] += count
		summary.ByEntity[entity] += count
	}

	if err := rows.Err(); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to iterate summary rows", err)

		return nil, err
	}

	var oldest time.Time

	// Select the typed column rather than MIN(): the driver returns an untyped
	// aggregate as text, which does not scan into a time.
	err = db.QueryRowContext(ctx, `
		SELECT first_seen_at FROM dlq_messages WHERE namespace_id = ? AND status = ?
		ORDER BY first_seen_at LIMIT 1`,
		namespaceID.String(), string(constant.DlqStatusActive)).Scan(&oldest)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		libOpentelemetry.HandleSpanError(&span, "Failed to query oldest active message", err)

		return nil, err
	}

	if err == nil {
		age := time.Since(oldest)
		summary.OldestActiveAge = &age
	}

	return summary, nil
}

// TransitionStatus applies a manual terminal transition (Archive, Discard) or a
// replay transition to one tracked message. Terminal rows reject any change.
func (r *SqliteRepository) TransitionStatus(ctx context.Context, id uuid.UUID, status constant.DlqMessageStatus) error {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.transition_dlq_status")
	defer span.End()

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return err
	}

	err = transitionStatusTx(ctx, db, id, status, nil)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to transition tracked message", err)

		return err
	}

	return nil
}

// AddReplayHistory appends one replay-history record. The table is append-only.
func (r *SqliteRepository) AddReplayHistory(ctx context.Context, record *mmodel.ReplayHistory) (*mmodel.ReplayHistory, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.add_replay_history")
	defer span.End()

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	if err := insertHistory(ctx, db, record); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to insert replay history", err)

		return nil, err
	}

	return record, nil
}

// FindTimeline retrieves the replay attempts of one tracked message, oldest first.
func (r *SqliteRepository) FindTimeline(ctx context.Context, dlqMessageID uuid.UUID) ([]*mmodel.ReplayHistory, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.find_replay_timeline")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT `+historyColumns+` FROM replay_history WHERE dlq_message_id = ? ORDER BY replayed_at`,
		dlqMessageID.String())
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to query replay timeline", err)

		return nil, err
	}
	defer rows.Close()

	var history []*mmodel.ReplayHistory

	for rows.Next() {
		record := &HistorySQLiteModel{}

		if err := rows.Scan(&record.ID, &record.DlqMessageID, &record.RuleID, &record.ReplayedAt,
			&record.ReplayedBy, &record.ReplayStrategy, &record.ReplayedToEntity,
			&record.OutcomeStatus, &record.ErrorDetails); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to scan history row", err)

			return nil, err
		}

		history = append(history, record.ToEntity())
	}

	if err := rows.Err(); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to iterate history rows", err)

		return nil, err
	}

	return history, nil
}

// CountReplaysByRuleSince counts the broker-touching replay attempts a rule has
// made since the given instant. Skipped records never reached the broker and do
// not consume budget.
func (r *SqliteRepository) CountReplaysByRuleSince(ctx context.Context, ruleID uuid.UUID, since time.Time) (int64, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.count_replays_by_rule")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return 0, err
	}

	var count int64

	err = db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM replay_history
		WHERE rule_id = ? AND replayed_at >= ? AND outcome_status != ?`,
		ruleID.String(), since, string(constant.ReplayOutcomeSkipped)).Scan(&count)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to count rule replays", err)

		return 0, err
	}

	return count, nil
}

// RecordReplayOutcome persists one replay attempt atomically: the history row,
// the tracked message's state transition, and the owning rule's counters all
// commit or none do.
func (r *SqliteRepository) RecordReplayOutcome(ctx context.Context, record *mmodel.ReplayHistory) error {
	return r.RecordReplayOutcomes(ctx, []*mmodel.ReplayHistory{record})
}

// RecordReplayOutcomes persists a batch of replay attempts in one transaction,
// the coordinator's per-group commit.
func (r *SqliteRepository) RecordReplayOutcomes(ctx context.Context, records []*mmodel.ReplayHistory) error {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.record_replay_outcomes")
	defer span.End()

	if len(records) == 0 {
		return nil
	}

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to begin transaction", err)

		return err
	}

	defer func() {
		_ = tx.Rollback()
	}()

	for _, record := range records {
		if err := recordOutcomeTx(ctx, tx, record); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to persist replay outcome", err)

			return err
		}
	}

	if err := tx.Commit(); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to commit replay outcomes", err)

		return err
	}

	return nil
}

func recordOutcomeTx(ctx context.Context, tx execer, record *mmodel.ReplayHistory) error {
	if err := insertHistory(ctx, tx, record); err != nil {
		return err
	}

	switch record.OutcomeStatus {
	case constant.ReplayOutcomeSuccess:
		if err := transitionStatusTx(ctx, tx, record.DlqMessageID, constant.DlqStatusReplayed, &record.ReplayedAt); err != nil {
			return err
		}
	case constant.ReplayOutcomeFailed:
		if err := transitionStatusTx(ctx, tx, record.DlqMessageID, constant.DlqStatusReplayFailed, nil); err != nil {
			return err
		}
	}

	if record.RuleID != nil {
		successDelta := 0
		if record.OutcomeStatus == constant.ReplayOutcomeSuccess {
			successDelta = 1
		}

		_, err := tx.ExecContext(ctx, `
			UPDATE auto_replay_rules
			SET match_count = match_count + 1, success_count = success_count + ?, updated_at = ?
			WHERE id = ?`,
			successDelta, record.ReplayedAt, record.RuleID.String())
		if err != nil {
			return err
		}
	}

	return nil
}

// CreateRule inserts a new auto-replay rule and returns it.
func (r *SqliteRepository) CreateRule(ctx context.Context, rule *mmodel.AutoReplayRule) (*mmodel.AutoReplayRule, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.create_rule")
	defer span.End()

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	record := &RuleSQLiteModel{}
	if err := record.FromEntity(rule); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to serialize rule", err)

		return nil, err
	}

	_, err = db.ExecContext(ctx, `INSERT INTO auto_replay_rules (`+ruleColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.NamespaceID,
		record.Name,
		record.Description,
		record.ConditionsJSON,
		record.ActionJSON,
		record.Enabled,
		record.MatchCount,
		record.SuccessCount,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to insert rule", err)

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && errors.Is(sqliteErr.ExtendedCode, sqlite3.ErrConstraintUnique) {
			return nil, pkg.ValidateBusinessError(constant.ErrDuplicateRuleName, reflect.TypeOf(mmodel.AutoReplayRule{}).Name(), record.Name)
		}

		return nil, err
	}

	return rule, nil
}

// UpdateRule replaces a rule's definition. Counters are not touched here; they
// move only through RecordReplayOutcome.
func (r *SqliteRepository) UpdateRule(ctx context.Context, rule *mmodel.AutoReplayRule) (*mmodel.AutoReplayRule, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.update_rule")
	defer span.End()

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	record := &RuleSQLiteModel{}
	if err := record.FromEntity(rule); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to serialize rule", err)

		return nil, err
	}

	result, err := db.ExecContext(ctx, `
		UPDATE auto_replay_rules
		SET name = ?, description = ?, conditions_json = ?, action_json = ?, enabled = ?, updated_at = ?
		WHERE id = ?`,
		record.Name,
		record.Description,
		record.ConditionsJSON,
		record.ActionJSON,
		record.Enabled,
		time.Now().UTC(),
		record.ID,
	)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to update rule", err)

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && errors.Is(sqliteErr.ExtendedCode, sqlite3.ErrConstraintUnique) {
			return nil, pkg.ValidateBusinessError(constant.ErrDuplicateRuleName, reflect.TypeOf(mmodel.AutoReplayRule{}).Name(), record.Name)
		}

		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get rows affected", err)

		return nil, err
	}

	if rowsAffected == 0 {
		err := pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.AutoReplayRule{}).Name())

		libOpentelemetry.HandleSpanError(&span, "Rule not found for update", err)

		return nil, err
	}

	return r.FindRule(ctx, rule.ID)
}

// DeleteRule removes a rule. Its history rows keep their rule_id for auditing.
func (r *SqliteRepository) DeleteRule(ctx context.Context, id uuid.UUID) error {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.delete_rule")
	defer span.End()

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM auto_replay_rules WHERE id = ?`, id.String())
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to delete rule", err)

		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get rows affected", err)

		return err
	}

	if rowsAffected == 0 {
		return pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.AutoReplayRule{}).Name())
	}

	return nil
}

// FindRule retrieves one rule by id.
func (r *SqliteRepository) FindRule(ctx context.Context, id uuid.UUID) (*mmodel.AutoReplayRule, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.find_rule")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	record := &RuleSQLiteModel{}

	row := db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM auto_replay_rules WHERE id = ?`, id.String())
	if err := row.Scan(&record.ID, &record.NamespaceID, &record.Name, &record.Description,
		&record.ConditionsJSON, &record.ActionJSON, &record.Enabled,
		&record.MatchCount, &record.SuccessCount, &record.CreatedAt, &record.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.AutoReplayRule{}).Name())
		}

		libOpentelemetry.HandleSpanError(&span, "Failed to scan rule", err)

		return nil, err
	}

	return record.ToEntity()
}

// FindAllRules retrieves rules visible to a namespace: that namespace's rules
// plus global ones. A nil namespaceID returns every rule.
func (r *SqliteRepository) FindAllRules(ctx context.Context, namespaceID *uuid.UUID) ([]*mmodel.AutoReplayRule, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.find_all_rules")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	builder := squirrel.Select(ruleColumns).
		From("auto_replay_rules").
		OrderBy("created_at")

	if namespaceID != nil {
		builder = builder.Where(squirrel.Or{
			squirrel.Eq{"namespace_id": namespaceID.String()},
			squirrel.Eq{"namespace_id": nil},
		})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to build rule query", err)

		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to query rules", err)

		return nil, err
	}
	defer rows.Close()

	var rules []*mmodel.AutoReplayRule

	for rows.Next() {
		record := &RuleSQLiteModel{}

		if err := rows.Scan(&record.ID, &record.NamespaceID, &record.Name, &record.Description,
			&record.ConditionsJSON, &record.ActionJSON, &record.Enabled,
			&record.MatchCount, &record.SuccessCount, &record.CreatedAt, &record.UpdatedAt); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to scan rule row", err)

			return nil, err
		}

		rule, err := record.ToEntity()
		if err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to decode rule", err)

			return nil, err
		}

		rules = append(rules, rule)
	}

	if err := rows.Err(); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to iterate rule rows", err)

		return nil, err
	}

	return rules, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertHistory(ctx context.Context, db execer, record *mmodel.ReplayHistory) error {
	if record.ID == uuid.Nil {
		record.ID = libCommons.GenerateUUIDv7()
	}

	model := &HistorySQLiteModel{}
	model.FromEntity(record)

	_, err := db.ExecContext(ctx, `INSERT INTO replay_history (`+historyColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		model.ID,
		model.DlqMessageID,
		model.RuleID,
		model.ReplayedAt,
		model.ReplayedBy,
		model.ReplayStrategy,
		model.ReplayedToEntity,
		model.OutcomeStatus,
		model.ErrorDetails,
	)

	return err
}

func transitionStatusTx(ctx context.Context, db execer, id uuid.UUID, status constant.DlqMessageStatus, replayedAt *time.Time) error {
	terminal := []string{
		string(constant.DlqStatusReplayed),
		string(constant.DlqStatusResolved),
		string(constant.DlqStatusArchived),
		string(constant.DlqStatusDiscarded),
	}

	var (
		result sql.Result
		err    error
	)

	switch status {
	case constant.DlqStatusReplayed:
		query, args, buildErr := squirrel.Update("dlq_messages").
			Set("status", string(status)).
			Set("replay_success", true).
			Set("replayed_at", replayedAt).
			Where(squirrel.Eq{"id": id.String()}).
			Where(squirrel.NotEq{"status": terminal}).
			ToSql()
		if buildErr != nil {
			return buildErr
		}

		result, err = db.ExecContext(ctx, query, args...)
	case constant.DlqStatusReplayFailed:
		query, args, buildErr := squirrel.Update("dlq_messages").
			Set("status", string(status)).
			Set("replay_success", false).
			Where(squirrel.Eq{"id": id.String()}).
			Where(squirrel.NotEq{"status": terminal}).
			ToSql()
		if buildErr != nil {
			return buildErr
		}

		result, err = db.ExecContext(ctx, query, args...)
	default:
		query, args, buildErr := squirrel.Update("dlq_messages").
			Set("status", string(status)).
			Where(squirrel.Eq{"id": id.String()}).
			Where(squirrel.NotEq{"status": terminal}).
			ToSql()
		if buildErr != nil {
			return buildErr
		}

		result, err = db.ExecContext(ctx, query, args...)
	}

	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		var existing string

		scanErr := db.QueryRowContext(ctx, `SELECT status FROM dlq_messages WHERE id = ?`, id.String()).Scan(&existing)
		if errors.Is(scanErr, sql.ErrNoRows) {
			return pkg.ValidateBusinessError(constant.ErrEntityNotFound, reflect.TypeOf(mmodel.DlqMessage{}).Name())
		}

		if scanErr != nil {
			return scanErr
		}

		return pkg.ValidateBusinessError(constant.ErrMessageAlreadyTerminal, reflect.TypeOf(mmodel.DlqMessage{}).Name())
	}

	return nil
}

type scanFunc func(dest ...any) error

func scanMessage(scan scanFunc, record *MessageSQLiteModel) error {
	return scan(&record.ID, &record.NamespaceID, &record.EntityName, &record.TopicName, &record.EntityType,
		&record.BrokerMessageID, &record.SequenceNumber, &record.EnqueuedTime, &record.DeadLetterReason,
		&record.DeadLetterErrorDescription, &record.DeliveryCount, &record.FailureCategory, &record.BodyPreview,
		&record.ContentType, &record.CustomPropertiesJSON, &record.FirstSeenAt, &record.LastSeenAt,
		&record.Status, &record.ReplayedAt, &record.ReplaySuccess)
}

func collectMessages(rows *sql.Rows) ([]*mmodel.DlqMessage, error) {
	var messages []*mmodel.DlqMessage

	for rows.Next() {
		record := &MessageSQLiteModel{}

		if err := scanMessage(rows.Scan, record); err != nil {
			return nil, err
		}

		messages = append(messages, record.ToEntity())
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}
