package servicebus

import (
	"context"
	"errors"
	"reflect"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
)

// translateError maps broker SDK failures onto the engine's error kinds.
// Retries happen before translation, so everything surfacing here is final.
func translateError(err error, entityType string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var sbErr *azservicebus.Error
	if errors.As(err, &sbErr) {
		switch sbErr.Code {
		case azservicebus.CodeNotFound:
			return pkg.ValidateBusinessError(constant.ErrEntityNotFound, entityType)
		case azservicebus.CodeUnauthorizedAccess:
			return pkg.ExternalServiceError{
				EntityType: entityType,
				Code:       constant.ErrBrokerUnavailable.Error(),
				Title:      "Broker Authorization Failed",
				Message:    "The broker rejected the namespace credential. Rotate the credential and reconnect.",
				Retryable:  false,
				Err:        err,
			}
		case azservicebus.CodeConnectionLost, azservicebus.CodeTimeout, azservicebus.CodeLockLost:
			return pkg.ExternalServiceError{
				EntityType: entityType,
				Code:       constant.ErrBrokerUnavailable.Error(),
				Title:      "Broker Temporarily Unavailable",
				Message:    "The broker reported a transient failure and the retry budget is exhausted. Please try again.",
				Retryable:  true,
				Err:        err,
			}
		}
	}

	return pkg.ExternalServiceError{
		EntityType: entityType,
		Code:       constant.ErrBrokerUnavailable.Error(),
		Title:      "Broker Request Failed",
		Message:    "The broker rejected the request.",
		Retryable:  false,
		Err:        err,
	}
}

// isRetryable reports whether the broker failure is worth another attempt at
// this boundary. Only the SDK's transient codes qualify.
func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var sbErr *azservicebus.Error
	if errors.As(err, &sbErr) {
		switch sbErr.Code {
		case azservicebus.CodeConnectionLost, azservicebus.CodeTimeout:
			return true
		}
	}

	return false
}

func errClientDisposed() error {
	return pkg.ValidateBusinessError(constant.ErrClientDisposed, reflect.TypeOf(mmodel.Namespace{}).Name())
}

func errMessageNotFound(sequenceNumber int64) error {
	return pkg.ValidateBusinessError(constant.ErrMessageNotFound, reflect.TypeOf(mmodel.Message{}).Name(), sequenceNumber)
}
