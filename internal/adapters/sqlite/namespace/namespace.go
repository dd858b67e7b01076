// Package namespace provides the sqlite repository for connected broker namespaces.
package namespace

import (
	"time"

	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
)

// SQLiteModel represents the row structure for a namespace.
type SQLiteModel struct {
	ID                  string
	Name                string
	DisplayName         string
	AuthType            string
	EncryptedCredential string
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// FromEntity maps a namespace entity to its row model.
func (m *SQLiteModel) FromEntity(entity *mmodel.Namespace) {
	m.ID = entity.ID.String()
	m.Name = entity.Name
	m.DisplayName = entity.DisplayName
	m.AuthType = string(entity.AuthType)
	m.EncryptedCredential = entity.EncryptedCredential
	m.IsActive = entity.IsActive
	m.CreatedAt = entity.CreatedAt
	m.UpdatedAt = entity.UpdatedAt
}

// ToEntity maps a row model back to the namespace entity.
func (m *SQLiteModel) ToEntity() *mmodel.Namespace {
	return &mmodel.Namespace{
		ID:                  uuid.MustParse(m.ID),
		Name:                m.Name,
		DisplayName:         m.DisplayName,
		AuthType:            constant.AuthType(m.AuthType),
		EncryptedCredential: m.EncryptedCredential,
		IsActive:            m.IsActive,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}
