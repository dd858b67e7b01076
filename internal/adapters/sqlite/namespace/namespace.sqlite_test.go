package namespace

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	"github.com/debdevops/servicehub/internal/adapters/sqlite"
	"github.com/debdevops/servicehub/pkg"
	"github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *SqliteRepository {
	t.Helper()

	connection := &sqlite.Connection{
		DatabaseFile: filepath.Join(t.TempDir(), "servicehub.db"),
		Logger:       &libLog.NoneLogger{},
	}

	repository, err := NewSqliteRepository(connection)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = connection.Close()
	})

	return repository
}

func buildNamespace(name string) *mmodel.Namespace {
	now := time.Now().UTC().Truncate(time.Second)

	return &mmodel.Namespace{
		ID:                  libCommons.GenerateUUIDv7(),
		Name:                name,
		DisplayName:         "Demo " + name,
		AuthType:            constant.AuthTypeConnectionString,
		EncryptedCredential: "V2:c2VjcmV0",
		IsActive:            true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func TestSqliteRepository_CreateAndFind(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()

	created, err := repository.Create(ctx, buildNamespace("prod-east"))
	require.NoError(t, err)

	found, err := repository.Find(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "prod-east", found.Name)
	assert.Equal(t, constant.AuthTypeConnectionString, found.AuthType)
	assert.Equal(t, "V2:c2VjcmV0", found.EncryptedCredential)
	assert.True(t, found.IsActive)
}

func TestSqliteRepository_FindMissing(t *testing.T) {
	repository := newTestRepository(t)

	_, err := repository.Find(context.Background(), uuid.New())

	var notFound pkg.EntityNotFoundError

	require.True(t, errors.As(err, &notFound))
}

func TestSqliteRepository_DuplicateActiveName(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()

	_, err := repository.Create(ctx, buildNamespace("prod-east"))
	require.NoError(t, err)

	_, err = repository.Create(ctx, buildNamespace("prod-east"))

	var conflict pkg.EntityConflictError

	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, constant.ErrDuplicateNamespaceName.Error(), conflict.Code)
}

func TestSqliteRepository_NameReusableAfterDisconnect(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()

	first, err := repository.Create(ctx, buildNamespace("prod-east"))
	require.NoError(t, err)

	_, err = repository.SetActive(ctx, first.ID, false)
	require.NoError(t, err)

	// The unique index only guards active namespaces.
	_, err = repository.Create(ctx, buildNamespace("prod-east"))
	require.NoError(t, err)
}

func TestSqliteRepository_FindByName(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()

	created, err := repository.Create(ctx, buildNamespace("prod-east"))
	require.NoError(t, err)

	found, err := repository.FindByName(ctx, "prod-east")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = repository.SetActive(ctx, created.ID, false)
	require.NoError(t, err)

	_, err = repository.FindByName(ctx, "prod-east")

	var notFound pkg.EntityNotFoundError

	require.True(t, errors.As(err, &notFound))
}

func TestSqliteRepository_FindActive(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()

	active, err := repository.Create(ctx, buildNamespace("prod-east"))
	require.NoError(t, err)

	inactive, err := repository.Create(ctx, buildNamespace("prod-west"))
	require.NoError(t, err)

	_, err = repository.SetActive(ctx, inactive.ID, false)
	require.NoError(t, err)

	all, err := repository.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	actives, err := repository.FindActive(ctx)
	require.NoError(t, err)
	require.Len(t, actives, 1)
	assert.Equal(t, active.ID, actives[0].ID)
}

func TestSqliteRepository_UpdateCredential(t *testing.T) {
	repository := newTestRepository(t)
	ctx := context.Background()

	created, err := repository.Create(ctx, buildNamespace("prod-east"))
	require.NoError(t, err)

	updated, err := repository.UpdateCredential(ctx, created.ID, "V2:bmV3LXNlY3JldA==")
	require.NoError(t, err)

	assert.Equal(t, "V2:bmV3LXNlY3JldA==", updated.EncryptedCredential)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt) || updated.UpdatedAt.Equal(created.UpdatedAt))
}

func TestSqliteRepository_UpdateCredentialValidation(t *testing.T) {
	repository := newTestRepository(t)

	_, err := repository.UpdateCredential(context.Background(), uuid.New(), "   ")

	var validation pkg.ValidationError

	require.True(t, errors.As(err, &validation))
	assert.Equal(t, constant.ErrCredentialRequired.Error(), validation.Code)
}

func TestSqliteRepository_UpdateCredentialMissing(t *testing.T) {
	repository := newTestRepository(t)

	_, err := repository.UpdateCredential(context.Background(), uuid.New(), "V2:abc")

	var notFound pkg.EntityNotFoundError

	require.True(t, errors.As(err, &notFound))
}
