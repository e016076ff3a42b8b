package bbolt

import (
	"context"
	"path/filepath"
	"testing"

	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/storage"
	"github.com/louisbranch/dmscreen/internal/storage/storagetest"
	"go.etcd.io/bbolt"
)

func TestStoreContract(t *testing.T) {
	var path string
	open := func(t *testing.T) storage.SnapshotStore {
		path = filepath.Join(t.TempDir(), "dmscreen.bolt")
		return openTempStore(t, path)
	}
	reopen := func(t *testing.T) storage.SnapshotStore {
		return openTempStore(t, path)
	}
	storagetest.RunContract(t, open, reopen)
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestLoadWithOnlyPlayersKey(t *testing.T) {
	store := openTempStore(t, filepath.Join(t.TempDir(), "dmscreen.bolt"))
	putRaw(t, store, PlayersKey, `[{"id":"p1","name":"Gandalf","sessionXp":5,"xpHistory":[]}]`)

	snapshot, found, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatal("expected snapshot with players key to be found")
	}
	if len(snapshot.Players) != 1 || snapshot.Players[0].XP != 5 {
		t.Fatalf("unexpected players: %+v", snapshot.Players)
	}
	if snapshot.Attacks == nil || len(snapshot.Attacks) != 0 {
		t.Fatalf("expected empty attacks, got %#v", snapshot.Attacks)
	}
}

func TestLoadWithOnlyEncounterKey(t *testing.T) {
	store := openTempStore(t, filepath.Join(t.TempDir(), "dmscreen.bolt"))
	putRaw(t, store, EncounterKey, `{"characters":[{"id":1712345678901.5,"name":"Orco","maxHp":15,"currentHp":9,"tempHp":0,"regeneration":0,"logs":[]}],"currentTurn":3,"isTurnActive":false}`)

	snapshot, found, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !found {
		t.Fatal("expected snapshot with encounter key to be found")
	}
	if snapshot.Encounter.CurrentTurn != 3 || len(snapshot.Encounter.Characters) != 1 {
		t.Fatalf("unexpected encounter: %+v", snapshot.Encounter)
	}
	if snapshot.Encounter.Characters[0].ID != "1712345678901-5" {
		t.Fatalf("expected numeric id kept as text, got %q", snapshot.Encounter.Characters[0].ID)
	}
	if snapshot.Players == nil || snapshot.PassiveDamages == nil {
		t.Fatalf("expected empty members, got %+v", snapshot)
	}
}

func TestLoadCorruptAttacks(t *testing.T) {
	store := openTempStore(t, filepath.Join(t.TempDir(), "dmscreen.bolt"))
	putRaw(t, store, AttacksKey, `not-json`)

	if _, _, err := store.Load(context.Background()); apperrors.GetCode(err) != apperrors.CodeStorageCorrupt {
		t.Fatalf("expected corrupt error, got %v", err)
	}
}

func TestSaveWritesEveryKey(t *testing.T) {
	store := openTempStore(t, filepath.Join(t.TempDir(), "dmscreen.bolt"))
	if err := store.Save(context.Background(), storagetest.SampleSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}
	err := store.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(slotBucket))
		for _, key := range []string{PlayersKey, AttacksKey, EncounterKey, PassiveDamagesKey} {
			if bucket.Get([]byte(key)) == nil {
				t.Fatalf("expected key %s to be written", key)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func putRaw(t *testing.T, store *Store, key, value string) {
	t.Helper()
	err := store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(slotBucket)).Put([]byte(key), []byte(value))
	})
	if err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

func openTempStore(t *testing.T, path string) *Store {
	t.Helper()
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}
