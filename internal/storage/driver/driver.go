// Package driver opens the snapshot store selected by configuration.
package driver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/dmscreen/internal/platform/timeouts"
	"github.com/louisbranch/dmscreen/internal/storage"
	"github.com/louisbranch/dmscreen/internal/storage/bbolt"
	"github.com/louisbranch/dmscreen/internal/storage/memory"
	"github.com/louisbranch/dmscreen/internal/storage/postgres"
	"github.com/louisbranch/dmscreen/internal/storage/sqlite"
)

// Names of the supported drivers.
const (
	SQLite   = "sqlite"
	Bbolt    = "bbolt"
	Postgres = "postgres"
	Memory   = "memory"
)

// Config selects and locates a snapshot store.
type Config struct {
	Driver      string `env:"DMSCREEN_STORAGE"       envDefault:"sqlite"`
	SQLitePath  string `env:"DMSCREEN_SQLITE_PATH"   envDefault:"data/dmscreen.db"`
	BboltPath   string `env:"DMSCREEN_BBOLT_PATH"    envDefault:"data/dmscreen.bolt"`
	PostgresDSN string `env:"DMSCREEN_POSTGRES_DSN"`
}

// Open returns the configured store. Opening is bounded by
// timeouts.StorageOpen.
func Open(ctx context.Context, cfg Config) (storage.SnapshotStore, error) {
	ctx, cancel := context.WithTimeout(ctx, timeouts.StorageOpen)
	defer cancel()

	switch name := strings.ToLower(strings.TrimSpace(cfg.Driver)); name {
	case SQLite, "":
		if err := ensureDir(cfg.SQLitePath); err != nil {
			return nil, err
		}
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case Bbolt:
		if err := ensureDir(cfg.BboltPath); err != nil {
			return nil, err
		}
		store, err := bbolt.Open(cfg.BboltPath)
		if err != nil {
			return nil, fmt.Errorf("open bbolt store: %w", err)
		}
		return store, nil
	case Postgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case Memory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func ensureDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create storage dir: %w", err)
		}
	}
	return nil
}
