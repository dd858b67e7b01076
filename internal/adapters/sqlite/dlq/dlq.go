// Package dlq provides the sqlite store for tracked dead-letter messages,
// replay history, and auto-replay rules.
package dlq

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
)

// MessageSQLiteModel represents the row structure for a tracked DLQ message.
type MessageSQLiteModel struct {
	ID                         string
	NamespaceID                string
	EntityName                 string
	TopicName                  sql.NullString
	EntityType                 string
	BrokerMessageID            string
	SequenceNumber             int64
	EnqueuedTime               time.Time
	DeadLetterReason           string
	DeadLetterErrorDescription string
	DeliveryCount              int64
	FailureCategory            string
	BodyPreview                string
	ContentType                string
	CustomPropertiesJSON       string
	FirstSeenAt                time.Time
	LastSeenAt                 time.Time
	Status                     string
	ReplayedAt                 sql.NullTime
	ReplaySuccess              sql.NullBool
}

// ToEntity maps a row model back to the tracked-message entity.
func (m *MessageSQLiteModel) ToEntity() *mmodel.DlqMessage {
	entity := &mmodel.DlqMessage{
		ID:                         uuid.MustParse(m.ID),
		NamespaceID:                uuid.MustParse(m.NamespaceID),
		EntityName:                 m.EntityName,
		EntityType:                 constant.EntityType(m.EntityType),
		BrokerMessageID:            m.BrokerMessageID,
		SequenceNumber:             m.SequenceNumber,
		EnqueuedTime:               m.EnqueuedTime,
		DeadLetterReason:           m.DeadLetterReason,
		DeadLetterErrorDescription: m.DeadLetterErrorDescription,
		DeliveryCount:              uint32(m.DeliveryCount),
		FailureCategory:            constant.FailureCategory(m.FailureCategory),
		BodyPreview:                m.BodyPreview,
		ContentType:                m.ContentType,
		CustomPropertiesJSON:       m.CustomPropertiesJSON,
		FirstSeenAt:                m.FirstSeenAt,
		LastSeenAt:                 m.LastSeenAt,
		Status:                     constant.DlqMessageStatus(m.Status),
	}

	if m.TopicName.Valid {
		entity.TopicName = m.TopicName.String
	}

	if m.ReplayedAt.Valid {
		at := m.ReplayedAt.Time
		entity.ReplayedAt = &at
	}

	if m.ReplaySuccess.Valid {
		ok := m.ReplaySuccess.Bool
		entity.ReplaySuccess = &ok
	}

	return entity
}

// HistorySQLiteModel represents the row structure for one replay attempt.
type HistorySQLiteModel struct {
	ID               string
	DlqMessageID     string
	RuleID           sql.NullString
	ReplayedAt       time.Time
	ReplayedBy       string
	ReplayStrategy   string
	ReplayedToEntity string
	OutcomeStatus    string
	ErrorDetails     sql.NullString
}

// FromEntity maps a replay-history entity to its row model.
func (m *HistorySQLiteModel) FromEntity(entity *mmodel.ReplayHistory) {
	m.ID = entity.ID.String()
	m.DlqMessageID = entity.DlqMessageID.String()
	m.ReplayedAt = entity.ReplayedAt
	m.ReplayedBy = entity.ReplayedBy
	m.ReplayStrategy = string(entity.ReplayStrategy)
	m.ReplayedToEntity = entity.ReplayedToEntity
	m.OutcomeStatus = string(entity.OutcomeStatus)

	if entity.RuleID != nil {
		m.RuleID = sql.NullString{String: entity.RuleID.String(), Valid: true}
	}

	if entity.ErrorDetails != "" {
		m.ErrorDetails = sql.NullString{String: entity.ErrorDetails, Valid: true}
	}
}

// ToEntity maps a row model back to the replay-history entity.
func (m *HistorySQLiteModel) ToEntity() *mmodel.ReplayHistory {
	entity := &mmodel.ReplayHistory{
		ID:               uuid.MustParse(m.ID),
		DlqMessageID:     uuid.MustParse(m.DlqMessageID),
		ReplayedAt:       m.ReplayedAt,
		ReplayedBy:       m.ReplayedBy,
		ReplayStrategy:   constant.ReplayStrategy(m.ReplayStrategy),
		ReplayedToEntity: m.ReplayedToEntity,
		OutcomeStatus:    constant.ReplayOutcome(m.OutcomeStatus),
	}

	if m.RuleID.Valid {
		id := uuid.MustParse(m.RuleID.String)
		entity.RuleID = &id
	}

	if m.ErrorDetails.Valid {
		entity.ErrorDetails = m.ErrorDetails.String
	}

	return entity
}

// RuleSQLiteModel represents the row structure for an auto-replay rule.
// Conditions and the action are persisted as JSON documents.
type RuleSQLiteModel struct {
	ID             string
	NamespaceID    sql.NullString
	Name           string
	Description    string
	ConditionsJSON string
	ActionJSON     string
	Enabled        bool
	MatchCount     int64
	SuccessCount   int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FromEntity maps a rule entity to its row model.
func (m *RuleSQLiteModel) FromEntity(entity *mmodel.AutoReplayRule) error {
	conditions, err := json.Marshal(entity.Conditions)
	if err != nil {
		return err
	}

	action, err := json.Marshal(entity.Action)
	if err != nil {
		return err
	}

	m.ID = entity.ID.String()
	m.Name = entity.Name
	m.Description = entity.Description
	m.ConditionsJSON = string(conditions)
	m.ActionJSON = string(action)
	m.Enabled = entity.Enabled
	m.MatchCount = entity.MatchCount
	m.SuccessCount = entity.SuccessCount
	m.CreatedAt = entity.CreatedAt
	m.UpdatedAt = entity.UpdatedAt

	if entity.NamespaceID != nil {
		m.NamespaceID = sql.NullString{String: entity.NamespaceID.String(), Valid: true}
	}

	return nil
}

// ToEntity maps a row model back to the rule entity.
func (m *RuleSQLiteModel) ToEntity() (*mmodel.AutoReplayRule, error) {
	entity := &mmodel.AutoReplayRule{
		ID:           uuid.MustParse(m.ID),
		Name:         m.Name,
		Description:  m.Description,
		Enabled:      m.Enabled,
		MatchCount:   m.MatchCount,
		SuccessCount: m.SuccessCount,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}

	if m.NamespaceID.Valid {
		id := uuid.MustParse(m.NamespaceID.String)
		entity.NamespaceID = &id
	}

	if err := json.Unmarshal([]byte(m.ConditionsJSON), &entity.Conditions); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(m.ActionJSON), &entity.Action); err != nil {
		return nil, err
	}

	return entity, nil
}
