// Package sqlite owns the single-file relational store. All writes funnel
// through one connection so the engine stays the store's single writer;
// reads run on a separate WAL-backed pool and do not block on writers.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	libLog "github.com/LerianStudio/lib-commons/v2/commons/log"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Connection is a hub which deals with the sqlite database file.
type Connection struct {
	DatabaseFile string
	Connected    bool
	Logger       libLog.Logger

	mu      sync.Mutex
	writeDB *sql.DB
	readDB  *sql.DB
}

// Connect opens the database, applies pending migrations, and prepares the
// split read/write handles.
func (sc *Connection) Connect() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.Connected {
		return nil
	}

	sc.Logger.Infof("Connecting to sqlite store at %s...", sc.DatabaseFile)

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", sc.DatabaseFile)

	writeDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		sc.Logger.Errorf("failed to open sqlite write handle: %v", err)

		return err
	}

	// One writer at a time; sqlite serializes writes anyway and a single
	// connection avoids SQLITE_BUSY churn under concurrent upserts.
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		sc.Logger.Errorf("failed to open sqlite read handle: %v", err)

		return err
	}

	if err := sc.migrateUp(writeDB); err != nil {
		sc.Logger.Errorf("failed to run sqlite migrations: %v", err)

		return err
	}

	sc.writeDB = writeDB
	sc.readDB = readDB
	sc.Connected = true

	sc.Logger.Info("Connected to sqlite store ✅")

	return nil
}

func (sc *Connection) migrateUp(db *sql.DB) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithInstance("iofs", source, "servicehub", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// GetDB returns the concurrent read handle, connecting first if necessary.
func (sc *Connection) GetDB(ctx context.Context) (*sql.DB, error) {
	if !sc.Connected {
		if err := sc.Connect(); err != nil {
			return nil, err
		}
	}

	return sc.readDB, nil
}

// GetWriteDB returns the serialized write handle, connecting first if necessary.
func (sc *Connection) GetWriteDB(ctx context.Context) (*sql.DB, error) {
	if !sc.Connected {
		if err := sc.Connect(); err != nil {
			return nil, err
		}
	}

	return sc.writeDB, nil
}

// Close releases both handles.
func (sc *Connection) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if !sc.Connected {
		return nil
	}

	sc.Connected = false

	if err := sc.writeDB.Close(); err != nil {
		return err
	}

	return sc.readDB.Close()
}
