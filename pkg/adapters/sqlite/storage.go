// Package sqlite stores entity collections as rows of a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aretw0/introspection"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/axsol/backoffice/pkg/adapters/sqlite/migrations"
	"github.com/axsol/backoffice/pkg/core"
)

// Storage implements core.Storage on a SQLite database.
type Storage struct {
	db       *sql.DB
	path     string
	readOnly bool
	writes   atomic.Int64
}

// Option configures Open.
type Option func(*Storage)

// WithReadOnly makes Set, Remove and Clear fail with core.ErrReadOnly.
func WithReadOnly(enabled bool) Option {
	return func(s *Storage) { s.readOnly = enabled }
}

// Open opens (creating if needed) the database at path and applies the embedded
// migrations. Use ":memory:" for a throwaway database.
func Open(ctx context.Context, path string, opts ...Option) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	s := &Storage{db: db, path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database handle.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get implements core.Storage.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM entities WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, wrap(err))
	}
	return value, true, nil
}

// Set implements core.Storage.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	if s.readOnly {
		return fmt.Errorf("set %q: %w", key, core.ErrReadOnly)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO entities (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, wrap(err))
	}
	s.writes.Add(1)
	return nil
}

// Remove implements core.Storage.
func (s *Storage) Remove(ctx context.Context, key string) error {
	if s.readOnly {
		return fmt.Errorf("remove %q: %w", key, core.ErrReadOnly)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove %q: %w", key, wrap(err))
	}
	return nil
}

// Keys implements core.Enumerable.
func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM entities ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", wrap(err))
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Clear implements core.Clearable.
func (s *Storage) Clear(ctx context.Context) error {
	if s.readOnly {
		return fmt.Errorf("clear: %w", core.ErrReadOnly)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("clear: %w", wrap(err))
	}
	return nil
}

// UpdatedAt returns when key was last written.
func (s *Storage) UpdatedAt(ctx context.Context, key string) (time.Time, bool, error) {
	var millis int64
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM entities WHERE key = ?`, key).Scan(&millis)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("updated_at %q: %w", key, wrap(err))
	}
	return time.UnixMilli(millis).UTC(), true, nil
}

// wrap classifies driver errors: a full database becomes core.ErrQuotaExceeded,
// a read-only one core.ErrReadOnly.
func wrap(err error) error {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}
	switch sqliteErr.Code() & 0xff {
	case sqlite3lib.SQLITE_FULL:
		return fmt.Errorf("%w: %w", core.ErrQuotaExceeded, err)
	case sqlite3lib.SQLITE_READONLY:
		return fmt.Errorf("%w: %w", core.ErrReadOnly, err)
	}
	return err
}

// State is the introspection snapshot of a Storage.
type State struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"read_only"`
	Writes   int64  `json:"writes"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	return State{Path: s.path, ReadOnly: s.readOnly, Writes: s.writes.Load()}
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "sqlite"
}

var (
	_ core.Storage                 = (*Storage)(nil)
	_ core.Enumerable              = (*Storage)(nil)
	_ core.Clearable               = (*Storage)(nil)
	_ introspection.Introspectable = (*Storage)(nil)
	_ introspection.Component      = (*Storage)(nil)
)
