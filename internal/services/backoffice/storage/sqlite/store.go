// Package sqlite provides the SQLite-backed lookup snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/backoffice/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/backoffice/internal/services/backoffice/storage"
	"github.com/louisbranch/backoffice/internal/services/backoffice/storage/sqlite/migrations"
)

const timeFormat = time.RFC3339Nano

// Store provides a SQLite-backed storage.Store.
type Store struct {
	sqlDB *sql.DB
}

// Open opens (creating when needed) the SQLite database at path and applies
// the embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutSnapshot replaces the snapshot stored under snapshot.Key.
func (s *Store) PutSnapshot(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(snapshot.Key) == "" {
		return fmt.Errorf("snapshot key is required")
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO lookup_snapshots (key, payload, fetched_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		snapshot.Key,
		snapshot.Payload,
		snapshot.FetchedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("put snapshot %s: %w", snapshot.Key, err)
	}
	return nil
}

// GetSnapshot loads the snapshot stored under key.
func (s *Store) GetSnapshot(ctx context.Context, key string) (storage.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Snapshot{}, false, fmt.Errorf("storage is not configured")
	}
	var (
		payload   []byte
		fetchedAt string
	)
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM lookup_snapshots WHERE key = ?", key,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Snapshot{}, false, nil
	}
	if err != nil {
		return storage.Snapshot{}, false, fmt.Errorf("get snapshot %s: %w", key, err)
	}
	parsed, err := time.Parse(timeFormat, fetchedAt)
	if err != nil {
		return storage.Snapshot{}, false, fmt.Errorf("parse snapshot time %s: %w", key, err)
	}
	return storage.Snapshot{Key: key, Payload: payload, FetchedAt: parsed}, true, nil
}

var _ storage.Store = (*Store)(nil)
