package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/character"
	"github.com/louisbranch/dmscreen/internal/passive"
	apperrors "github.com/louisbranch/dmscreen/internal/platform/errors"
	"github.com/louisbranch/dmscreen/internal/player"
	"github.com/louisbranch/dmscreen/internal/storage"
	"github.com/louisbranch/dmscreen/internal/storage/memory"
	"github.com/louisbranch/dmscreen/internal/storage/storagetest"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) handle(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, event := range r.events {
		out[i] = event.Type
	}
	return out
}

// gatedStore holds every save until release is closed.
type gatedStore struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		Store:   memory.New(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) Save(ctx context.Context, snapshot storage.Snapshot) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
	return s.Store.Save(ctx, snapshot)
}

func startController(t *testing.T, store storage.SnapshotStore, rec *eventRecorder) *Controller {
	t.Helper()
	opts := Options{}
	if rec != nil {
		opts.OnEvent = rec.handle
	}
	c, err := NewController(store, opts)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() {
		_ = c.Close(context.Background())
	})
	return c
}

func flush(t *testing.T, c *Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestNewControllerRequiresStore(t *testing.T) {
	if _, err := NewController(nil, Options{}); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestControllerStartsEmptyWithoutSnapshot(t *testing.T) {
	c := startController(t, memory.New(), nil)

	if c.State() != StateReady {
		t.Fatalf("expected ready, got %s", c.State())
	}
	players, err := c.Players()
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	if len(players) != 0 {
		t.Fatalf("expected no players, got %d", len(players))
	}
}

func TestControllerLoadsSavedSnapshot(t *testing.T) {
	store := memory.New()
	want := storagetest.SampleSnapshot()
	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	c := startController(t, store, nil)
	players, err := c.Players()
	if err != nil {
		t.Fatalf("players: %v", err)
	}
	if len(players) != len(want.Players) || players[0].XP != 125 {
		t.Fatalf("expected loaded players, got %+v", players)
	}
	attacks, err := c.Attacks()
	if err != nil {
		t.Fatalf("attacks: %v", err)
	}
	if len(attacks) != 2 || attacks[0].ID != "a-2" {
		t.Fatalf("expected loaded attack order, got %+v", attacks)
	}
}

func TestControllerLoadFailureStartsEmpty(t *testing.T) {
	store := memory.New()
	store.FailLoads(errors.New("disk gone"))
	rec := &eventRecorder{}

	c := startController(t, store, rec)
	if c.State() != StateReady {
		t.Fatalf("expected ready, got %s", c.State())
	}
	types := rec.types()
	if len(types) != 1 || types[0] != EventLoadFailed {
		t.Fatalf("expected load failed event, got %v", types)
	}
	if _, err := c.AddPlayer("Gimli"); err != nil {
		t.Fatalf("expected usable session after load failure, got %v", err)
	}
}

func TestControllerCorruptSnapshotStartsEmpty(t *testing.T) {
	store := memory.New()
	store.SetRaw([]byte("{not json"))
	rec := &eventRecorder{}

	startController(t, store, rec)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 1 || !apperrors.IsStorage(rec.events[0].Err) {
		t.Fatalf("expected storage load failure event, got %+v", rec.events)
	}
	if rec.events[0].Reason == "" {
		t.Fatal("expected load failure reason")
	}
}

func TestControllerResetScenario(t *testing.T) {
	store := memory.New()
	rec := &eventRecorder{}
	c := startController(t, store, rec)

	aragorn, err := c.AddPlayer("Aragorn")
	if err != nil {
		t.Fatalf("add Aragorn: %v", err)
	}
	legolas, err := c.AddPlayer("Legolas")
	if err != nil {
		t.Fatalf("add Legolas: %v", err)
	}
	for _, grant := range []struct {
		id     string
		amount int
	}{{aragorn, 100}, {legolas, 75}, {aragorn, 25}} {
		if err := c.GrantXP(grant.id, grant.amount); err != nil {
			t.Fatalf("grant: %v", err)
		}
	}
	totals, err := c.Totals()
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals[aragorn] != 125 || totals[legolas] != 75 {
		t.Fatalf("expected 125/75, got %v", totals)
	}

	if err := c.RequestReset(); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	event, err := c.ConfirmReset()
	if err != nil {
		t.Fatalf("confirm reset: %v", err)
	}
	if event.Type != EventResetSucceeded {
		t.Fatalf("expected reset succeeded, got %s", event.Type)
	}
	totals, _ = c.Totals()
	if totals[aragorn] != 0 || totals[legolas] != 0 {
		t.Fatalf("expected 0/0, got %v", totals)
	}
	players, _ := c.Players()
	if len(players) != 2 || players[0].Name != "Aragorn" || players[1].Name != "Legolas" {
		t.Fatalf("expected players kept, got %+v", players)
	}
	flush(t, c)

	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	reopened := startController(t, store, nil)
	totals, _ = reopened.Totals()
	if len(totals) != 2 || totals[aragorn] != 0 || totals[legolas] != 0 {
		t.Fatalf("expected persisted reset, got %v", totals)
	}
	types := rec.types()
	if len(types) != 1 || types[0] != EventResetSucceeded {
		t.Fatalf("expected one reset event, got %v", types)
	}
}

func TestControllerCancelResetKeepsXP(t *testing.T) {
	c := startController(t, memory.New(), nil)
	playerID, _ := c.AddPlayer("Boromir")
	if err := c.GrantXP(playerID, 40); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := c.RequestReset(); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if err := c.GrantXP(playerID, 10); err != nil {
		t.Fatalf("expected grant while reset pending, got %v", err)
	}
	if err := c.CancelReset(); err != nil {
		t.Fatalf("cancel reset: %v", err)
	}
	p, err := c.Player(playerID)
	if err != nil {
		t.Fatalf("player: %v", err)
	}
	if p.XP != 50 {
		t.Fatalf("expected 50 XP, got %d", p.XP)
	}
	if c.State() != StateReady {
		t.Fatalf("expected ready, got %s", c.State())
	}
}

func TestControllerInvalidTransitions(t *testing.T) {
	c, err := NewController(memory.New(), Options{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := c.RequestReset(); apperrors.GetCode(err) != apperrors.CodeSessionNotReady {
		t.Fatalf("expected not ready before start, got %v", err)
	}
	if _, err := c.AddPlayer("Frodo"); apperrors.GetCode(err) != apperrors.CodeSessionNotReady {
		t.Fatalf("expected not ready mutation, got %v", err)
	}
	if _, err := c.Players(); !apperrors.IsFailedPrecondition(err) {
		t.Fatalf("expected failed precondition read, got %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer c.Close(context.Background())

	if err := c.Start(context.Background()); apperrors.GetCode(err) != apperrors.CodeSessionInvalidTransition {
		t.Fatalf("expected invalid transition on second start, got %v", err)
	}
	if _, err := c.ConfirmReset(); apperrors.GetCode(err) != apperrors.CodeSessionInvalidTransition {
		t.Fatalf("expected invalid transition on confirm, got %v", err)
	}
	if err := c.CancelReset(); apperrors.GetCode(err) != apperrors.CodeSessionInvalidTransition {
		t.Fatalf("expected invalid transition on cancel, got %v", err)
	}
	if err := c.RequestReset(); err != nil {
		t.Fatalf("request reset: %v", err)
	}
	if err := c.RequestReset(); apperrors.GetCode(err) != apperrors.CodeSessionInvalidTransition {
		t.Fatalf("expected invalid transition on second request, got %v", err)
	}
}

func TestControllerSaveFailureEmitsEvent(t *testing.T) {
	store := memory.New()
	store.FailSaves(errors.New("quota exceeded"))
	rec := &eventRecorder{}
	c := startController(t, store, rec)

	if _, err := c.AddPlayer("Sam"); err != nil {
		t.Fatalf("expected mutation to succeed despite failing store, got %v", err)
	}
	flush(t, c)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.events) != 1 || rec.events[0].Type != EventSaveFailed {
		t.Fatalf("expected save failed event, got %+v", rec.events)
	}
	if !apperrors.IsStorage(rec.events[0].Err) {
		t.Fatalf("expected storage error, got %v", rec.events[0].Err)
	}
}

func TestControllerCoalescesPendingWrites(t *testing.T) {
	store := newGatedStore()
	c := startController(t, store, nil)

	playerID, err := c.AddPlayer("Merry")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	<-store.entered
	for i := 0; i < 3; i++ {
		if err := c.GrantXP(playerID, 10); err != nil {
			t.Fatalf("grant: %v", err)
		}
	}
	close(store.release)
	flush(t, c)

	if store.Saves() != 2 {
		t.Fatalf("expected 2 saves, got %d", store.Saves())
	}
	loaded, found, err := store.Load(context.Background())
	if err != nil || !found {
		t.Fatalf("load: found=%v err=%v", found, err)
	}
	if loaded.Players[0].XP != 30 {
		t.Fatalf("expected last snapshot to win, got XP %d", loaded.Players[0].XP)
	}
}

func TestControllerFailedValidationDoesNotWrite(t *testing.T) {
	store := memory.New()
	c := startController(t, store, nil)

	if _, err := c.AddPlayer("   "); !apperrors.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := c.GrantXP("missing", 10); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	flush(t, c)
	if store.Saves() != 0 {
		t.Fatalf("expected no saves, got %d", store.Saves())
	}
}

func TestControllerConcurrentGrants(t *testing.T) {
	c := startController(t, memory.New(), nil)
	playerID, _ := c.AddPlayer("Pippin")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.GrantXP(playerID, 5); err != nil {
				t.Errorf("grant: %v", err)
			}
		}()
	}
	wg.Wait()

	p, _ := c.Player(playerID)
	if p.XP != 100 {
		t.Fatalf("expected 100 XP, got %d", p.XP)
	}
	if len(p.XPHistory) != 20 {
		t.Fatalf("expected 20 history entries, got %d", len(p.XPHistory))
	}
}

func TestControllerAttackCatalogPersists(t *testing.T) {
	store := memory.New()
	c := startController(t, store, nil)

	first, err := c.CreateAttack(attack.Input{
		Name:        "Test Attack",
		DamageRolls: []attack.DamageRoll{{Dice: "2d6", Bonus: 3, Type: "slashing"}},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	copyID, err := c.DuplicateAttack(first)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if err := c.MoveAttack(copyID, 0); err != nil {
		t.Fatalf("move: %v", err)
	}
	if err := c.MoveAttack(first, 5); apperrors.GetCode(err) != apperrors.CodeAttackPositionOutRange {
		t.Fatalf("expected position out of range, got %v", err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := c.CreateAttack(attack.Input{Name: "late"}); apperrors.GetCode(err) != apperrors.CodeSessionNotReady {
		t.Fatalf("expected not ready after close, got %v", err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("second close: %v", err)
	}

	reopened := startController(t, store, nil)
	attacks, err := reopened.Attacks()
	if err != nil {
		t.Fatalf("attacks: %v", err)
	}
	if len(attacks) != 2 {
		t.Fatalf("expected 2 attacks, got %d", len(attacks))
	}
	if attacks[0].ID != copyID || attacks[0].Name != "Test Attack (Copia)" || attacks[1].ID != first {
		t.Fatalf("unexpected order %+v", attacks)
	}
}

func TestControllerLoadFailureKeepsStoredSnapshot(t *testing.T) {
	store := memory.New()
	if err := store.Save(context.Background(), storage.Snapshot{Players: []player.Player{{ID: "p-aragorn", Name: "Aragorn"}}}); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	store.FailLoads(errors.New("disk busy"))
	c := startController(t, store, nil)
	store.FailLoads(nil)

	if c.Persisting() {
		t.Fatal("expected persistence off after failed load")
	}
	if _, err := c.AddPlayer("Legolas"); err != nil {
		t.Fatalf("add: %v", err)
	}
	flush(t, c)
	stored, _, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(stored.Players) != 1 || stored.Players[0].Name != "Aragorn" {
		t.Fatalf("expected stored roster untouched, got %+v", stored.Players)
	}

	if err := c.OverwriteStored(); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	flush(t, c)
	if !c.Persisting() {
		t.Fatal("expected persistence on after overwrite")
	}
	stored, _, err = store.Load(context.Background())
	if err != nil {
		t.Fatalf("load after overwrite: %v", err)
	}
	if len(stored.Players) != 1 || stored.Players[0].Name != "Legolas" {
		t.Fatalf("expected in-memory roster stored, got %+v", stored.Players)
	}
}

func TestControllerRejectsMutationsWhileClosing(t *testing.T) {
	store := newGatedStore()
	c, err := NewController(store, Options{})
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := c.AddPlayer("Merry"); err != nil {
		t.Fatalf("add: %v", err)
	}
	<-store.entered

	closed := make(chan error, 1)
	go func() {
		closed <- c.Close(context.Background())
	}()
	deadline := time.Now().Add(5 * time.Second)
	for c.State() != StateClosing {
		if time.Now().After(deadline) {
			t.Fatalf("expected closing state, got %s", c.State())
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := c.AddPlayer("Pippin"); apperrors.GetCode(err) != apperrors.CodeSessionNotReady {
		t.Fatalf("expected not ready while closing, got %v", err)
	}

	close(store.release)
	if err := <-closed; err != nil {
		t.Fatalf("close: %v", err)
	}
	if c.State() != StateClosed {
		t.Fatalf("expected closed, got %s", c.State())
	}
	stored, _, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(stored.Players) != 1 || stored.Players[0].Name != "Merry" {
		t.Fatalf("expected only the accepted player stored, got %+v", stored.Players)
	}
	if _, err := c.AddPlayer("Sam"); apperrors.GetCode(err) != apperrors.CodeSessionNotReady {
		t.Fatalf("expected not ready after close, got %v", err)
	}
}

func TestControllerEncounterPersists(t *testing.T) {
	store := memory.New()
	c := startController(t, store, nil)

	trollID, err := c.CreateCharacter(character.Input{Name: "Trol", MaxHP: 30, Regeneration: 5})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	result, err := c.DamageCharacter(trollID, 12)
	if err != nil {
		t.Fatalf("damage: %v", err)
	}
	if result.RemainingHP != 18 {
		t.Fatalf("expected 18 HP left, got %+v", result)
	}
	if turn, err := c.StartTurn(); err != nil || turn != 1 {
		t.Fatalf("expected turn 1, got %d (%v)", turn, err)
	}
	auraID, err := c.AddPassiveDamage(passive.Input{Name: "Aura", Dice: "2d1+1", Type: "fire"})
	if err != nil {
		t.Fatalf("add passive: %v", err)
	}
	seed := int64(3)
	hit, err := c.ApplyPassiveDamage(auraID, trollID, &seed)
	if err != nil {
		t.Fatalf("apply passive: %v", err)
	}
	if hit.Roll.Total != 3 || hit.Damage.RemainingHP != 20 {
		t.Fatalf("expected 3 damage from 23 HP, got %+v", hit)
	}
	if _, err := c.ApplyPassiveDamage(auraID, "missing", &seed); !apperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened := startController(t, store, nil)
	troll, err := reopened.Character(trollID)
	if err != nil {
		t.Fatalf("character: %v", err)
	}
	if troll.CurrentHP != 20 {
		t.Fatalf("expected 20 HP after reload, got %d", troll.CurrentHP)
	}
	turn, active, err := reopened.Turn()
	if err != nil || turn != 1 || !active {
		t.Fatalf("expected active turn 1, got %d %v (%v)", turn, active, err)
	}
	damages, err := reopened.PassiveDamages()
	if err != nil || len(damages) != 1 || damages[0].ID != auraID {
		t.Fatalf("expected stored passive damage, got %+v (%v)", damages, err)
	}
}
