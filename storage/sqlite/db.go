// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sqlite implements the record and sync run repositories on SQLite.
//
// The schema is embedded and applied with golang-migrate when the database
// is opened. The (owner_id, source_system, source_id) unique constraint is
// the dedup index.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/mattn/go-sqlite3"
	"github.com/poiesic/ledgersync/storage"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB owns the SQLite connection shared by the repositories.
type DB struct {
	db     *sql.DB
	closed atomic.Bool
	logger *slog.Logger
}

// Option configures Open.
type Option func(*DB)

// WithLogger sets the logger used for migration progress.
func WithLogger(logger *slog.Logger) Option {
	return func(d *DB) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Open opens the database at path and applies pending migrations.
func Open(path string, opts ...Option) (*DB, error) {
	d := &DB{logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "sqlite")

	if err := runMigrations(path); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	d.db = db
	d.logger.Debug("database opened", "path", path)
	return d, nil
}

// runMigrations applies the embedded schema on a dedicated connection.
// The migrate driver closes its connection when done.
func runMigrations(path string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on", path))
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		conn.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		conn.Close()
		return err
	}
	defer m.Close()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

// Close closes the database. Repositories report ErrStorageClosed afterwards.
func (d *DB) Close() error {
	if d.closed.Swap(true) {
		return nil
	}
	return d.db.Close()
}

// IsClosed returns true if the database is closed.
func (d *DB) IsClosed() bool {
	return d.closed.Load()
}

// withTx runs fn in a transaction.
func (d *DB) withTx(fn func(tx *sql.Tx) error) error {
	if d.IsClosed() {
		return storage.ErrStorageClosed
	}
	tx, err := d.db.Begin()
	if err != nil {
		return translateError(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return translateError(err)
	}
	return translateError(tx.Commit())
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", storage.ErrDuplicateKey, err)
		}
		if sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked {
			return fmt.Errorf("%w: %w", storage.ErrTransactionFailed, err)
		}
	}
	if errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %w", storage.ErrStorageClosed, err)
	}
	return err
}

// Timestamps are stored as Unix microseconds.
func toMicros(t time.Time) int64 {
	return t.UnixMicro()
}

func fromMicros(v int64) time.Time {
	return time.UnixMicro(v).UTC()
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
