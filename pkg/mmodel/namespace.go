package mmodel

import (
	"time"

	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/google/uuid"
)

// CreateNamespaceInput is a struct design to encapsulate request create payload data.
type CreateNamespaceInput struct {
	Name             string            `json:"name" validate:"required,max=256"`
	DisplayName      string            `json:"displayName" validate:"max=256"`
	AuthType         constant.AuthType `json:"authType" validate:"required"`
	ConnectionString string            `json:"connectionString,omitempty"`
}

// UpdateCredentialInput is a struct design to encapsulate request credential rotation payload data.
type UpdateCredentialInput struct {
	ConnectionString string `json:"connectionString" validate:"required"`
}

// Namespace is a connected broker namespace an operator inspects through the hub.
//
// EncryptedCredential carries the version-tagged ciphertext produced by the
// credential protector; it is empty for ManagedIdentity namespaces.
type Namespace struct {
	ID                  uuid.UUID         `json:"id"`
	Name                string            `json:"name"`
	DisplayName         string            `json:"displayName"`
	AuthType            constant.AuthType `json:"authType"`
	EncryptedCredential string            `json:"-"`
	IsActive            bool              `json:"isActive"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// Namespaces struct to return get all.
type Namespaces struct {
	Items []Namespace `json:"items"`
}
