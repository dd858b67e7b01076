package namespace

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"strings"
	"time"

	libCommons "github.com/LerianStudio/lib-commons/v2/commons"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v2/commons/opentelemetry"
	"github.com/debdevops/servicehub/internal/adapters/sqlite"
	"github.com/debdevops/servicehub/pkg"
	cn "github.com/debdevops/servicehub/pkg/constant"
	"github.com/debdevops/servicehub/pkg/mmodel"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

// Repository provides an interface for operations related to namespace entities.
//
//go:generate mockgen --destination=namespace.sqlite_mock.go --package=namespace . Repository
type Repository interface {
	Create(ctx context.Context, namespace *mmodel.Namespace) (*mmodel.Namespace, error)
	Find(ctx context.Context, id uuid.UUID) (*mmodel.Namespace, error)
	FindByName(ctx context.Context, name string) (*mmodel.Namespace, error)
	FindAll(ctx context.Context) ([]*mmodel.Namespace, error)
	FindActive(ctx context.Context) ([]*mmodel.Namespace, error)
	UpdateCredential(ctx context.Context, id uuid.UUID, encryptedCredential string) (*mmodel.Namespace, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*mmodel.Namespace, error)
}

// SqliteRepository is a sqlite-specific implementation of the namespace Repository.
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

const namespaceColumns = `id, name, display_name, auth_type, encrypted_credential, is_active, created_at, updated_at`

// Create inserts a new namespace and returns it.
func (r *SqliteRepository) Create(ctx context.Context, namespace *mmodel.Namespace) (*mmodel.Namespace, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.create_namespace")
	defer span.End()

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	record := &SQLiteModel{}
	record.FromEntity(namespace)

	_, err = db.ExecContext(ctx, `INSERT INTO namespaces (`+namespaceColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Name,
		record.DisplayName,
		record.AuthType,
		record.EncryptedCredential,
		record.IsActive,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to insert namespace", err)

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && errors.Is(sqliteErr.ExtendedCode, sqlite3.ErrConstraintUnique) {
			return nil, pkg.ValidateBusinessError(cn.ErrDuplicateNamespaceName, reflect.TypeOf(mmodel.Namespace{}).Name(), record.Name)
		}

		return nil, err
	}

	return record.ToEntity(), nil
}

// Find retrieves a namespace by id.
func (r *SqliteRepository) Find(ctx context.Context, id uuid.UUID) (*mmodel.Namespace, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.find_namespace")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+namespaceColumns+` FROM namespaces WHERE id = ?`, id.String())

	return scanNamespace(row)
}

// FindByName retrieves the active namespace carrying the given name.
func (r *SqliteRepository) FindByName(ctx context.Context, name string) (*mmodel.Namespace, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.find_namespace_by_name")
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	row := db.QueryRowContext(ctx, `SELECT `+namespaceColumns+` FROM namespaces WHERE name = ? AND is_active = 1`, name)

	return scanNamespace(row)
}

// FindAll retrieves every namespace, connected or not, newest first.
func (r *SqliteRepository) FindAll(ctx context.Context) ([]*mmodel.Namespace, error) {
	return r.list(ctx, "sqlite.find_all_namespaces", `SELECT `+namespaceColumns+` FROM namespaces ORDER BY created_at DESC`)
}

// FindActive retrieves the namespaces the scanner should visit.
func (r *SqliteRepository) FindActive(ctx context.Context) ([]*mmodel.Namespace, error) {
	return r.list(ctx, "sqlite.find_active_namespaces", `SELECT `+namespaceColumns+` FROM namespaces WHERE is_active = 1 ORDER BY created_at DESC`)
}

func (r *SqliteRepository) list(ctx context.Context, spanName, query string) ([]*mmodel.Namespace, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, spanName)
	defer span.End()

	db, err := r.connection.GetDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to query namespaces", err)

		return nil, err
	}
	defer rows.Close()

	var namespaces []*mmodel.Namespace

	for rows.Next() {
		record := &SQLiteModel{}

		if err := rows.Scan(&record.ID, &record.Name, &record.DisplayName, &record.AuthType,
			&record.EncryptedCredential, &record.IsActive, &record.CreatedAt, &record.UpdatedAt); err != nil {
			libOpentelemetry.HandleSpanError(&span, "Failed to scan namespace row", err)

			return nil, err
		}

		namespaces = append(namespaces, record.ToEntity())
	}

	if err := rows.Err(); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to iterate namespace rows", err)

		return nil, err
	}

	return namespaces, nil
}

// UpdateCredential rotates the stored credential of a namespace.
func (r *SqliteRepository) UpdateCredential(ctx context.Context, id uuid.UUID, encryptedCredential string) (*mmodel.Namespace, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.update_namespace_credential")
	defer span.End()

	if strings.TrimSpace(encryptedCredential) == "" {
		err := pkg.ValidateBusinessError(cn.ErrCredentialRequired, reflect.TypeOf(mmodel.Namespace{}).Name())

		libOpentelemetry.HandleSpanError(&span, "Empty credential on rotation", err)

		return nil, err
	}

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE namespaces SET encrypted_credential = ?, updated_at = ? WHERE id = ?`,
		encryptedCredential, time.Now().UTC(), id.String())
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to update credential", err)

		return nil, err
	}

	if err := requireRowAffected(result); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Namespace not found for credential rotation", err)

		return nil, err
	}

	return r.Find(ctx, id)
}

// SetActive connects or disconnects a namespace. Disconnected namespaces are
// kept so tracked-message history remains joinable.
func (r *SqliteRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*mmodel.Namespace, error) {
	tracer := libCommons.NewTracerFromContext(ctx)

	ctx, span := tracer.Start(ctx, "sqlite.set_namespace_active")
	defer span.End()

	db, err := r.connection.GetWriteDB(ctx)
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to get database connection", err)

		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE namespaces SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id.String())
	if err != nil {
		libOpentelemetry.HandleSpanError(&span, "Failed to update namespace state", err)

		return nil, err
	}

	if err := requireRowAffected(result); err != nil {
		libOpentelemetry.HandleSpanError(&span, "Namespace not found for state change", err)

		return nil, err
	}

	return r.Find(ctx, id)
}

func scanNamespace(row *sql.Row) (*mmodel.Namespace, error) {
	record := &SQLiteModel{}

	if err := row.Scan(&record.ID, &record.Name, &record.DisplayName, &record.AuthType,
		&record.EncryptedCredential, &record.IsActive, &record.CreatedAt, &record.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkg.ValidateBusinessError(cn.ErrEntityNotFound, reflect.TypeOf(mmodel.Namespace{}).Name())
		}

		return nil, err
	}

	return record.ToEntity(), nil
}

func requireRowAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return pkg.ValidateBusinessError(cn.ErrEntityNotFound, reflect.TypeOf(mmodel.Namespace{}).Name())
	}

	return nil
}
