// Package services holds the engine's use cases. Every operation returns a
// value or a typed error; the HTTP edge maps those to status codes and is
// deliberately unknown here.
package services

import (
	"context"
	"reflect"
	"time"

	"github.com/debdevops/servicehub/internal/adapters/servicebus"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/dlq"
	"github.com/debdevops/servicehub/internal/adapters/sqlite/namespace"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mcrypto"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
)

// UseCase provides business logic operations for namespaces, the message
// plane, DLQ tracking, and auto-replay rules.
type UseCase struct {
	NamespaceRepo namespace.Repository
	DlqRepo       dlq.Repository
	Brokers       servicebus.Provider
	Protector     *mcrypto.Crypto
}

// ScanSettings tunes one scanner pass.
type ScanSettings struct {
	MaxPeekPerEntity int
	StaleThreshold   time.Duration
}

// DefaultScanSettings returns the contract defaults.
func DefaultScanSettings() ScanSettings {
	return ScanSettings{
		MaxPeekPerEntity: 100,
		StaleThreshold:   20 * time.Second,
	}
}

// brokerClient resolves the live broker client for a namespace: load the
// record, require it active, decrypt the credential, and re-acquire from the
// cache. Callers never hold the client past the current operation.
func (uc *UseCase) brokerClient(ctx context.Context, namespaceID uuid.UUID) (servicebus.Client, *mmodel.Namespace, error) {
	ns, err := uc.NamespaceRepo.Find(ctx, namespaceID)
	if err != nil {
		return nil, nil, err
	}

	return uc.brokerClientFor(ctx, ns)
}

func (uc *UseCase) brokerClientFor(ctx context.Context, ns *mmodel.Namespace) (servicebus.Client, *mmodel.Namespace, error) {
	if !ns.IsActive {
		return nil, nil, pkg.ValidateBusinessError(constant.ErrNamespaceInactive, reflect.TypeOf(mmodel.Namespace{}).Name())
	}

	var credential string

	if ns.AuthType == constant.AuthTypeConnectionString {
		decrypted, err := uc.Protector.Decrypt(ns.EncryptedCredential)
		if err != nil {
			return nil, nil, err
		}

		credential = decrypted
	}

	client, err := uc.Brokers.GetOrCreate(ctx, ns, credential)
	if err != nil {
		return nil, nil, err
	}

	return client, ns, nil
}
