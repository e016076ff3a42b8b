// Package storagetest provides fixtures and a shared contract suite for
// snapshot store adapters.
package storagetest

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/character"
	"github.com/louisbranch/dmscreen/internal/passive"
	"github.com/louisbranch/dmscreen/internal/player"
	"github.com/louisbranch/dmscreen/internal/storage"
)

// SampleSnapshot returns a normalized snapshot shaped like the roster,
// catalog, tracker and passive list output.
func SampleSnapshot() storage.Snapshot {
	at := time.Date(2026, 3, 1, 21, 30, 0, 0, time.UTC)
	return storage.Snapshot{
		Players: []player.Player{
			{
				ID:        "p-aragorn",
				Name:      "Aragorn",
				XP:        125,
				XPHistory: []player.XPEntry{{Amount: 100, Timestamp: at}, {Amount: 25, Timestamp: at}},
				Notes:     "Heredero de Isildur",
				Counters:  []player.Counter{{ID: "c-1", Name: "Atletismo", Value: 2, Step: 1, Visible: true}},
			},
			{
				ID:        "p-legolas",
				Name:      "Legolas",
				XPHistory: []player.XPEntry{},
				Counters:  []player.Counter{},
			},
		},
		Attacks: []attack.Definition{
			{
				ID:          "a-2",
				Name:        "Flecha",
				DamageRolls: []attack.DamageRoll{{Dice: "1d8", Min: 1, Bonus: 3, Type: "piercing"}},
				RerollDice:  []attack.RerollDie{{Dice: "1d8", Min: 1, Type: "piercing"}},
				Extra:       map[string]json.RawMessage{"range": json.RawMessage(`150`)},
			},
			{
				ID:          "a-1",
				Name:        "Espada",
				DamageRolls: []attack.DamageRoll{},
				RerollDice:  []attack.RerollDie{},
			},
		},
		Encounter: character.Encounter{
			Characters: []character.Character{
				{
					ID:           "c-troll",
					Name:         "Trol",
					MaxHP:        84,
					CurrentHP:    60,
					TempHP:       5,
					Regeneration: 10,
					CreatedAt:    at,
					Logs: []character.LogEntry{
						{Timestamp: at, Turn: 2, Action: character.ActionDamaged, Amount: 24, HPBefore: 84, HPAfter: 60, TempHPBefore: 5, TempHPAfter: 5},
					},
				},
				{
					ID:        "c-goblin",
					Name:      "Goblin",
					MaxHP:     7,
					CreatedAt: at,
					Logs:      []character.LogEntry{},
				},
			},
			CurrentTurn: 2,
			TurnActive:  true,
		},
		PassiveDamages: []passive.Damage{
			{ID: "pd-1", Name: "Aura de fuego", Dice: "1d6", Type: "fire", Description: "Escudo de llamas"},
		},
	}
}

// RunContract exercises the behavior every SnapshotStore must share. open
// returns a fresh, empty store; reopen returns a new handle on the same slot
// after the previous one is closed, or nil when the adapter cannot reopen.
func RunContract(t *testing.T, open func(t *testing.T) storage.SnapshotStore, reopen func(t *testing.T) storage.SnapshotStore) {
	t.Helper()

	t.Run("empty slot is absent", func(t *testing.T) {
		store := open(t)
		_, found, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("load empty: %v", err)
		}
		if found {
			t.Fatal("expected empty slot to be absent")
		}
	})

	t.Run("load returns saved snapshot", func(t *testing.T) {
		store := open(t)
		want := SampleSnapshot()
		if err := store.Save(context.Background(), want); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, found, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !found {
			t.Fatal("expected snapshot to be found")
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("save overwrites", func(t *testing.T) {
		store := open(t)
		first := SampleSnapshot()
		if err := store.Save(context.Background(), first); err != nil {
			t.Fatalf("save first: %v", err)
		}
		second := SampleSnapshot()
		second.Players = second.Players[:1]
		second.Attacks = []attack.Definition{second.Attacks[1], second.Attacks[0]}
		if err := store.Save(context.Background(), second); err != nil {
			t.Fatalf("save second: %v", err)
		}
		got, _, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if !reflect.DeepEqual(got, second) {
			t.Fatalf("expected last write to win, got %+v", got)
		}
	})

	t.Run("minimal player shape round trip", func(t *testing.T) {
		store := open(t)
		want := storage.Snapshot{Players: []player.Player{{ID: "p-sam", Name: "Sam"}}}
		if err := store.Save(context.Background(), want); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, found, err := store.Load(context.Background())
		if err != nil || !found {
			t.Fatalf("load: found=%v err=%v", found, err)
		}
		if !reflect.DeepEqual(got, want.Normalize()) {
			t.Fatalf("expected %+v, got %+v", want.Normalize(), got)
		}
		if len(got.Players[0].Counters) != 0 {
			t.Fatalf("expected no counters, got %+v", got.Players[0].Counters)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		store := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := store.Save(ctx, SampleSnapshot()); err == nil {
			t.Fatal("expected save with canceled context to fail")
		}
		if _, _, err := store.Load(ctx); err == nil {
			t.Fatal("expected load with canceled context to fail")
		}
	})

	if reopen == nil {
		return
	}
	t.Run("survives reopen", func(t *testing.T) {
		store := open(t)
		want := SampleSnapshot()
		if err := store.Save(context.Background(), want); err != nil {
			t.Fatalf("save: %v", err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		reopened := reopen(t)
		got, found, err := reopened.Load(context.Background())
		if err != nil {
			t.Fatalf("load after reopen: %v", err)
		}
		if !found || !reflect.DeepEqual(got, want) {
			t.Fatalf("expected %+v after reopen, got %+v (found=%v)", want, got, found)
		}
	})
}
