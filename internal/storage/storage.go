package storage

import (
	"context"
	"encoding/json"

	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/character"
	"github.com/louisbranch/dmscreen/internal/passive"
	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/player"
)

// Snapshot is the persisted state of a session.
type Snapshot struct {
	Players        []player.Player     `json:"players"`
	Attacks        []attack.Definition `json:"attacks"`
	Encounter      character.Encounter `json:"encounter"`
	PassiveDamages []passive.Damage    `json:"passiveDamages"`
}

// Normalize returns a deep copy of s with every nil list, nested ones
// included, replaced by an empty one.
func (s Snapshot) Normalize() Snapshot {
	out := Snapshot{
		Players:        make([]player.Player, len(s.Players)),
		Attacks:        make([]attack.Definition, len(s.Attacks)),
		Encounter:      s.Encounter.Clone(),
		PassiveDamages: append([]passive.Damage{}, s.PassiveDamages...),
	}
	for i, p := range s.Players {
		out.Players[i] = p.Clone()
	}
	for i, d := range s.Attacks {
		out.Attacks[i] = d.Clone()
	}
	return out
}

// SnapshotStore persists a single snapshot slot.
type SnapshotStore interface {
	// Save overwrites the slot with snapshot.
	Save(ctx context.Context, snapshot Snapshot) error
	// Load returns the last saved snapshot. found is false when the slot is
	// empty.
	Load(ctx context.Context) (snapshot Snapshot, found bool, err error)
	Close() error
}

// Encode serializes a snapshot.
func Encode(snapshot Snapshot) ([]byte, error) {
	data, err := json.Marshal(snapshot.Normalize())
	if err != nil {
		return nil, SaveError(err)
	}
	return data, nil
}

// Decode parses a serialized snapshot, upgrading older record layouts.
func Decode(data []byte) (Snapshot, error) {
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, CorruptError(err)
	}
	return snapshot.Normalize(), nil
}

// SaveError wraps a medium failure during a write.
func SaveError(cause error) error {
	return apperrors.Wrap(apperrors.CodeStorageSave, "save snapshot", cause)
}

// LoadError wraps a medium failure during a read.
func LoadError(cause error) error {
	return apperrors.Wrap(apperrors.CodeStorageLoad, "load snapshot", cause)
}

// CorruptError wraps a decode failure of stored bytes.
func CorruptError(cause error) error {
	return apperrors.Wrap(apperrors.CodeStorageCorrupt, "decode snapshot", cause)
}
