package pkg

import (
	"errors"
	"fmt"
	"strings"

	cn "github.com/debdevops/servicehub/pkg/constant"
)

// EntityNotFoundError records an error indicating an entity was not found in any case that caused it.
// You can use it to representing a Database not found, cache not found or any other repository.
type EntityNotFoundError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// NewEntityNotFoundError creates an instance of EntityNotFoundError.
func NewEntityNotFoundError(entityType string) EntityNotFoundError {
	return EntityNotFoundError{
		EntityType: entityType,
	}
}

// Error implements the error interface.
func (e EntityNotFoundError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		if strings.TrimSpace(e.EntityType) != "" {
			return fmt.Sprintf("Entity %s not found", e.EntityType)
		}

		if e.Err != nil {
			return e.Err.Error()
		}

		return "entity not found"
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e EntityNotFoundError) Unwrap() error {
	return e.Err
}

// ValidationError records an error indicating the caller's input failed validation.
type ValidationError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if strings.TrimSpace(e.Code) != "" {
		return fmt.Sprintf("%s - %s", e.Code, e.Message)
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e ValidationError) Unwrap() error {
	return e.Err
}

// EntityConflictError records an error indicating an entity already exists in some repository.
type EntityConflictError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// Error implements the error interface.
func (e EntityConflictError) Error() string {
	if e.Err != nil && strings.TrimSpace(e.Message) == "" {
		return e.Err.Error()
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e EntityConflictError) Unwrap() error {
	return e.Err
}

// ExternalServiceError records a failure reported by the broker after the
// resilience layer gave up. Retryable distinguishes the transient kind.
type ExternalServiceError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Retryable  bool
	Err        error
}

// Error implements the error interface.
func (e ExternalServiceError) Error() string {
	if e.Err != nil && strings.TrimSpace(e.Message) == "" {
		return e.Err.Error()
	}

	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e ExternalServiceError) Unwrap() error {
	return e.Err
}

// ServiceUnavailableError indicates an operation raced a disposed broker client.
// The caller should re-acquire a client from the cache and retry the request.
type ServiceUnavailableError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// Error implements the error interface.
func (e ServiceUnavailableError) Error() string {
	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e ServiceUnavailableError) Unwrap() error {
	return e.Err
}

// UnprocessableOperationError indicates an operation that couldn't be performed because it's invalid
// in the entity's current state.
type UnprocessableOperationError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// Error implements the error interface.
func (e UnprocessableOperationError) Error() string {
	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e UnprocessableOperationError) Unwrap() error {
	return e.Err
}

// InternalServerError indicates an unexpected failure inside the engine.
type InternalServerError struct {
	EntityType string
	Title      string
	Message    string
	Code       string
	Err        error
}

// Error implements the error interface.
func (e InternalServerError) Error() string {
	return e.Message
}

// Unwrap implements the error interface introduced in Go 1.13 to unwrap the internal error.
func (e InternalServerError) Unwrap() error {
	return e.Err
}

// ValidateInternalError validate the error and return the appropriate internal error code, title and message.
func ValidateInternalError(err error, entityType string) error {
	return InternalServerError{
		EntityType: entityType,
		Code:       cn.ErrInternalServer.Error(),
		Title:      "Internal Server Error",
		Message:    "The server encountered an unexpected error. Please try again later or contact support.",
		Err:        err,
	}
}

// ValidateBusinessError validate the error and return the appropriate business error code, title and message.
func ValidateBusinessError(err error, entityType string, args ...any) error {
	switch {
	case errors.Is(err, cn.ErrEntityNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       cn.ErrEntityNotFound.Error(),
			Title:      "Entity Not Found",
			Message:    "No entity was found for the given ID. Please make sure to use the correct ID for the entity you are trying to manage.",
		}
	case errors.Is(err, cn.ErrDuplicateNamespaceName):
		return EntityConflictError{
			EntityType: entityType,
			Code:       cn.ErrDuplicateNamespaceName.Error(),
			Title:      "Duplicate Namespace Name",
			Message:    fmt.Sprintf("A namespace named %s is already connected. Please choose a different name or disconnect the existing namespace first.", args...),
		}
	case errors.Is(err, cn.ErrDuplicateRuleName):
		return EntityConflictError{
			EntityType: entityType,
			Code:       cn.ErrDuplicateRuleName.Error(),
			Title:      "Duplicate Rule Name",
			Message:    fmt.Sprintf("A rule named %s already exists for this namespace. Please rename the rule and try again.", args...),
		}
	case errors.Is(err, cn.ErrMissingFieldsInRequest):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrMissingFieldsInRequest.Error(),
			Title:      "Missing Fields in Request",
			Message:    "Your request is missing one or more required fields. Please check the request and try again.",
		}
	case errors.Is(err, cn.ErrInvalidConnectionString):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrInvalidConnectionString.Error(),
			Title:      "Invalid Connection String",
			Message:    "The connection string could not be parsed. Please verify the value copied from the broker portal and try again.",
		}
	case errors.Is(err, cn.ErrCredentialRequired):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrCredentialRequired.Error(),
			Title:      "Credential Required",
			Message:    "A credential is required when the authentication type is ConnectionString. Please supply one and try again.",
		}
	case errors.Is(err, cn.ErrInvalidAuthType):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrInvalidAuthType.Error(),
			Title:      "Invalid Authentication Type",
			Message:    "The authentication type must be either ConnectionString or ManagedIdentity.",
		}
	case errors.Is(err, cn.ErrEntityNameRequired):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrEntityNameRequired.Error(),
			Title:      "Entity Name Required",
			Message:    "A queue or topic name is required for this operation.",
		}
	case errors.Is(err, cn.ErrSubscriptionTopicRequired):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrSubscriptionTopicRequired.Error(),
			Title:      "Topic Required for Subscription",
			Message:    "A subscription can only be addressed together with its topic. Please supply the topic name.",
		}
	case errors.Is(err, cn.ErrDecryptFailed):
		return InternalServerError{
			EntityType: entityType,
			Code:       cn.ErrDecryptFailed.Error(),
			Title:      "Credential Decryption Failed",
			Message:    "The stored credential could not be decrypted. The payload is corrupted or was written under a different master key.",
		}
	case errors.Is(err, cn.ErrMessageNotFound):
		return EntityNotFoundError{
			EntityType: entityType,
			Code:       cn.ErrMessageNotFound.Error(),
			Title:      "Message Not Found",
			Message:    fmt.Sprintf("No message with sequence number %v was found within the scan budget. It may have been consumed, purged, or its lock may be held elsewhere.", args...),
		}
	case errors.Is(err, cn.ErrReplayRateLimited):
		return UnprocessableOperationError{
			EntityType: entityType,
			Code:       cn.ErrReplayRateLimited.Error(),
			Title:      "Replay Rate Limited",
			Message:    "The rule's hourly replay budget is exhausted. The attempt was recorded as Skipped and will be retried on a later evaluation.",
		}
	case errors.Is(err, cn.ErrMessageAlreadyTerminal):
		return UnprocessableOperationError{
			EntityType: entityType,
			Code:       cn.ErrMessageAlreadyTerminal.Error(),
			Title:      "Message Already in Terminal State",
			Message:    "The tracked message is already Replayed, Resolved, Archived, or Discarded and cannot be transitioned again.",
		}
	case errors.Is(err, cn.ErrNamespaceInactive):
		return UnprocessableOperationError{
			EntityType: entityType,
			Code:       cn.ErrNamespaceInactive.Error(),
			Title:      "Namespace Inactive",
			Message:    "The namespace is disconnected. Reconnect it before performing broker operations.",
		}
	case errors.Is(err, cn.ErrClientDisposed):
		return ServiceUnavailableError{
			EntityType: entityType,
			Code:       cn.ErrClientDisposed.Error(),
			Title:      "Broker Client Disposed",
			Message:    "The broker client for this namespace was disposed mid-operation. Please retry the request.",
		}
	case errors.Is(err, cn.ErrInvalidExportFormat):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrInvalidExportFormat.Error(),
			Title:      "Invalid Export Format",
			Message:    fmt.Sprintf("The export format %s is not supported. Use json or csv.", args...),
		}
	case errors.Is(err, cn.ErrInvalidRuleCondition):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrInvalidRuleCondition.Error(),
			Title:      "Invalid Rule Condition",
			Message:    "One or more rule conditions reference an unknown field or operator. Please review the rule definition.",
		}
	case errors.Is(err, cn.ErrInvalidRuleAction):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrInvalidRuleAction.Error(),
			Title:      "Invalid Rule Action",
			Message:    "The rule action is invalid. Delay must be non-negative and the hourly replay budget must be positive.",
		}
	case errors.Is(err, cn.ErrBatchSequencesRequired):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrBatchSequencesRequired.Error(),
			Title:      "Sequence Numbers Required",
			Message:    "A batch replay requires at least one sequence number.",
		}
	case errors.Is(err, cn.ErrMasterKeyRequired):
		return ValidationError{
			EntityType: entityType,
			Code:       cn.ErrMasterKeyRequired.Error(),
			Title:      "Master Key Required",
			Message:    "A 256-bit master key is required to protect stored credentials. Set it in the environment and restart.",
		}
	default:
		return err
	}
}
