// Package sqlite provides a SQLite-backed snapshot store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/dmscreen/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/dmscreen/internal/storage"
	"github.com/louisbranch/dmscreen/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const currentSlot = "current"

// Store persists the snapshot slot in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens a SQLite snapshot store and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle. Closing twice is a no-op.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	err := s.sqlDB.Close()
	s.sqlDB = nil
	return err
}

// Save overwrites the snapshot row inside one transaction.
func (s *Store) Save(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	payload, err := storage.Encode(snapshot)
	if err != nil {
		return err
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.SaveError(fmt.Errorf("begin snapshot transaction: %w", err))
	}
	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO snapshots (slot, payload, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET
		   payload = excluded.payload,
		   updated_at = excluded.updated_at`,
		currentSlot,
		payload,
		s.now().UTC().UnixMilli(),
	)
	if err != nil {
		_ = tx.Rollback()
		return storage.SaveError(fmt.Errorf("upsert snapshot: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return storage.SaveError(fmt.Errorf("commit snapshot: %w", err))
	}
	return nil
}

// Load reads the snapshot row.
func (s *Store) Load(ctx context.Context) (storage.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, false, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.Snapshot{}, false, fmt.Errorf("storage is not configured")
	}

	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT payload FROM snapshots WHERE slot = ?`, currentSlot).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Snapshot{}, false, nil
		}
		return storage.Snapshot{}, false, storage.LoadError(fmt.Errorf("select snapshot: %w", err))
	}
	snapshot, err := storage.Decode(payload)
	if err != nil {
		return storage.Snapshot{}, false, err
	}
	return snapshot, true, nil
}
