// Package bbolt provides a BoltDB-backed snapshot store laid out like browser
// local storage: one key each for the roster, the attack catalog, the
// encounter tracker and the passive damage list.
package bbolt

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/dmscreen/internal/storage"
	"go.etcd.io/bbolt"
)

const (
	slotBucket = "local_storage"
	// PlayersKey holds the encoded roster.
	PlayersKey = "dnd-player-data"
	// AttacksKey holds the encoded attack catalog.
	AttacksKey = "dnd-attacks-data"
	// EncounterKey holds the encoded encounter tracker.
	EncounterKey = "dnd-dm-data"
	// PassiveDamagesKey holds the encoded passive damage list.
	PassiveDamagesKey = "dnd-passive-damages-data"
)

// slotKeys lists every key of the slot with the snapshot member it holds.
func slotKeys(snapshot *storage.Snapshot) []struct {
	key   string
	value any
} {
	return []struct {
		key   string
		value any
	}{
		{PlayersKey, &snapshot.Players},
		{AttacksKey, &snapshot.Attacks},
		{EncounterKey, &snapshot.Encounter},
		{PassiveDamagesKey, &snapshot.PassiveDamages},
	}
}

// Store provides a BoltDB-backed snapshot store.
type Store struct {
	db *bbolt.DB
}

// Open opens a BoltDB-backed store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	db, err := bbolt.Open(cleanPath, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open storage db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureBuckets(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying BoltDB database. Closing twice is a no-op.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Save writes every key in a single bolt transaction.
func (s *Store) Save(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("storage is not configured")
	}

	snapshot = snapshot.Normalize()
	keys := slotKeys(&snapshot)
	payloads := make([][]byte, len(keys))
	for i, k := range keys {
		data, err := json.Marshal(k.value)
		if err != nil {
			return storage.SaveError(fmt.Errorf("marshal %s: %w", k.key, err))
		}
		payloads[i] = data
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket is missing")
		}
		for i, k := range keys {
			if err := bucket.Put([]byte(k.key), payloads[i]); err != nil {
				return fmt.Errorf("put %s: %w", k.key, err)
			}
		}
		return nil
	})
	if err != nil {
		return storage.SaveError(err)
	}
	return nil
}

// Load reads every key. The slot is absent only when no key exists; missing
// keys read as empty members.
func (s *Store) Load(ctx context.Context) (storage.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, false, err
	}
	if s == nil || s.db == nil {
		return storage.Snapshot{}, false, fmt.Errorf("storage is not configured")
	}

	var snapshot storage.Snapshot
	keys := slotKeys(&snapshot)
	payloads := make([][]byte, len(keys))
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotBucket))
		if bucket == nil {
			return fmt.Errorf("snapshot bucket is missing")
		}
		// Values are only valid inside the transaction.
		for i, k := range keys {
			payloads[i] = cloneBytes(bucket.Get([]byte(k.key)))
		}
		return nil
	})
	if err != nil {
		return storage.Snapshot{}, false, storage.LoadError(err)
	}

	found := false
	for i, k := range keys {
		if payloads[i] == nil {
			continue
		}
		found = true
		if err := json.Unmarshal(payloads[i], k.value); err != nil {
			return storage.Snapshot{}, false, storage.CorruptError(fmt.Errorf("%s: %w", k.key, err))
		}
	}
	if !found {
		return storage.Snapshot{}, false, nil
	}
	return snapshot.Normalize(), true, nil
}

func (s *Store) ensureBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(slotBucket))
		if err != nil {
			return fmt.Errorf("create snapshot bucket: %w", err)
		}
		return nil
	})
}

func cloneBytes(value []byte) []byte {
	if value == nil {
		return nil
	}
	return append([]byte{}, value...)
}
