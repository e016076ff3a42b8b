// Package memory provides an in-process snapshot slot.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/louisbranch/dmscreen/internal/storage"
)

// Store keeps the encoded snapshot in memory. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	saveErr error
	loadErr error
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Save encodes and keeps the snapshot.
func (s *Store) Save(ctx context.Context, snapshot storage.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil {
		return fmt.Errorf("storage is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return storage.SaveError(s.saveErr)
	}
	data, err := storage.Encode(snapshot)
	if err != nil {
		return err
	}
	s.data = data
	s.saves++
	return nil
}

// Load decodes the kept snapshot.
func (s *Store) Load(ctx context.Context) (storage.Snapshot, bool, error) {
	if err := ctx.Err(); err != nil {
		return storage.Snapshot{}, false, err
	}
	if s == nil {
		return storage.Snapshot{}, false, fmt.Errorf("storage is not configured")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return storage.Snapshot{}, false, storage.LoadError(s.loadErr)
	}
	if s.data == nil {
		return storage.Snapshot{}, false, nil
	}
	snapshot, err := storage.Decode(s.data)
	if err != nil {
		return storage.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// Saves returns how many snapshots were written.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Raw returns the encoded snapshot, or nil when the slot is empty.
func (s *Store) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.data...)
}

// SetRaw replaces the slot contents with data.
func (s *Store) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
}

// FailSaves makes every Save fail with err until cleared with nil.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// FailLoads makes every Load fail with err until cleared with nil.
func (s *Store) FailLoads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}
