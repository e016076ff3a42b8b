// Package postgres provides a PostgreSQL-backed snapshot store.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/louisbranch/dmscreen/internal/storage"
	"github.com/louisbranch/dmscreen/internal/storage/postgres/migrations"
	"github.com/pressly/goose/v3"
)

const currentSlot = "current"

// Store persists the snapshot slot in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
	slot string
}

// Open connects to PostgreSQL, applies migrations and returns a store that
// writes the default slot.
func Open(ctx context.Context, dsn string) (*Store, error) {
	return OpenSlot(ctx, dsn, currentSlot)
}

// OpenSlot is Open with an explicit slot name, so several screens can share
// one database.
func OpenSlot(ctx context.Context, dsn, slot string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	if strings.TrimSpace(slot) == "" {
		return nil, fmt.Errorf("snapshot slot is required")
	}
	if err := RunMigrations(ctx, dsn); err != nil {
		return nil, err
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Store{pool: pool, slot: slot}, nil
}

// RunMigrations runs goose migrations on the given DSN.
func RunMigrations(ctx context.Context, dsn string) error {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the connection pool. Closing twice is a no-op.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	s.pool = nil
	return nil
}

// Save upserts the snapshot row. A single statement is atomic.
func (s *Store) Save(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.pool == nil {
		return fmt.Errorf("storage is not configured")
	}
	payload, err := storage.Encode(snapshot)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO snapshots (slot, payload, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (slot) DO UPDATE SET payload = $2, updated_at = now()`,
		s.slot, payload,
	)
	if err != nil {
		return storage.SaveError(fmt.Errorf("upsert snapshot %q: %w", s.slot, err))
	}
	return nil
}

// Load reads the snapshot row.
func (s *Store) Load(ctx context.Context) (storage.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, false, err
	}
	if s == nil || s.pool == nil {
		return storage.Snapshot{}, false, fmt.Errorf("storage is not configured")
	}
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM snapshots WHERE slot = $1`, s.slot,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Snapshot{}, false, nil
		}
		return storage.Snapshot{}, false, storage.LoadError(fmt.Errorf("select snapshot %q: %w", s.slot, err))
	}
	snapshot, err := storage.Decode(payload)
	if err != nil {
		return storage.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

// Clear removes the snapshot row for the store's slot.
func (s *Store) Clear(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM snapshots WHERE slot = $1`, s.slot); err != nil {
		return fmt.Errorf("delete snapshot %q: %w", s.slot, err)
	}
	return nil
}
