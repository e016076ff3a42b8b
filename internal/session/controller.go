package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/louisbranch/dmscreen/internal/attack"
	"github.com/louisbranch/dmscreen/internal/character"
	"github.com/louisbranch/dmscreen/internal/passive"
	"github.com/louisbranch/dmscreen/internal/player"
	"github.com/louisbranch/dmscreen/internal/platform/timeouts"
	"github.com/louisbranch/dmscreen/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/dmscreen/internal/session"

// Options configures a Controller.
type Options struct {
	// OnEvent receives acknowledgments. Nil discards them after logging.
	OnEvent EventHandler
	// LoadTimeout bounds the startup read. Zero uses timeouts.SnapshotLoad.
	LoadTimeout time.Duration
	// WriteTimeout bounds each background write. Zero uses timeouts.SnapshotWrite.
	WriteTimeout time.Duration
	// Now overrides the event clock in tests.
	Now func() time.Time
}

// Controller owns the session state and its persistence. All methods are
// safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	state    State
	roster   *player.Roster
	catalog  *attack.Catalog
	tracker  *character.Tracker
	passives *passive.List
	store    storage.SnapshotStore
	writer   *writer
	tracer   trace.Tracer
	// persist is false after a failed load until OverwriteStored is called.
	persist bool

	onEvent     EventHandler
	loadTimeout time.Duration
	now         func() time.Time
}

// NewController builds a controller over store. The controller owns store
// and closes it in Close.
func NewController(store storage.SnapshotStore, opts Options) (*Controller, error) {
	if store == nil {
		return nil, fmt.Errorf("snapshot store is required")
	}
	loadTimeout := opts.LoadTimeout
	if loadTimeout <= 0 {
		loadTimeout = timeouts.SnapshotLoad
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = timeouts.SnapshotWrite
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	c := &Controller{
		state:       StateUninitialized,
		roster:      player.NewRoster(),
		catalog:     attack.NewCatalog(),
		tracker:     character.NewTracker(),
		passives:    passive.NewList(),
		store:       store,
		tracer:      otel.Tracer(tracerName),
		onEvent:     opts.OnEvent,
		loadTimeout: loadTimeout,
		now:         now,
	}
	c.writer = newWriter(store, writeTimeout, c.tracer, c.saveFailed)
	c.roster.OnChange(c.scheduleLocked)
	c.catalog.OnChange(c.scheduleLocked)
	c.tracker.OnChange(c.scheduleLocked)
	c.passives.OnChange(c.scheduleLocked)
	return c, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start loads the persisted snapshot and starts the background writer.
// A storage failure does not fail startup: the controller starts empty,
// keeps every change in memory only and emits a load-failed event. The
// stored snapshot is left untouched until OverwriteStored is called.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateUninitialized {
		state := c.state
		c.mu.Unlock()
		return invalidTransition(state, "start")
	}
	c.state = StateLoading

	snapshot, found, err := c.load(ctx)
	if err == nil && found {
		c.replaceLocked(snapshot)
	}
	c.persist = err == nil
	c.state = StateReady
	c.writer.start(ctx)
	c.mu.Unlock()

	if err != nil {
		log.Printf("session load snapshot: %v; changes stay in memory", err)
		c.emit(Event{Type: EventLoadFailed, Reason: err.Error(), Err: err})
	}
	return nil
}

func (c *Controller) load(ctx context.Context) (storage.Snapshot, bool, error) {
	ctx, span := c.tracer.Start(ctx, "session.load_snapshot")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()
	snapshot, found, err := c.store.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load snapshot")
		return storage.Snapshot{}, false, err
	}
	span.SetAttributes(
		attribute.Bool("dmscreen.snapshot_found", found),
		attribute.Int("dmscreen.players", len(snapshot.Players)),
		attribute.Int("dmscreen.attacks", len(snapshot.Attacks)),
		attribute.Int("dmscreen.characters", len(snapshot.Encounter.Characters)),
		attribute.Int("dmscreen.passive_damages", len(snapshot.PassiveDamages)),
	)
	return snapshot, found, nil
}

func (c *Controller) replaceLocked(snapshot storage.Snapshot) {
	c.roster.Replace(snapshot.Players)
	c.catalog.Replace(snapshot.Attacks)
	c.tracker.Replace(snapshot.Encounter)
	c.passives.Replace(snapshot.PassiveDamages)
}

// Persisting reports whether changes are written to the store. It is false
// after a failed load until OverwriteStored is called.
func (c *Controller) Persisting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persist
}

// OverwriteStored turns persistence back on after a failed load and schedules
// the in-memory state over whatever the store holds.
func (c *Controller) OverwriteStored() error {
	return c.mutate(func() error {
		c.persist = true
		c.scheduleLocked()
		return nil
	})
}

// RequestReset moves a ready session to ResetPending.
func (c *Controller) RequestReset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateReady:
		c.state = StateResetPending
		return nil
	case StateUninitialized, StateLoading:
		return notReady(c.state)
	default:
		return invalidTransition(c.state, "request reset")
	}
}

// ConfirmReset zeroes every player's XP, schedules a write and returns the
// reset-succeeded event, which is also delivered to the event handler.
func (c *Controller) ConfirmReset() (Event, error) {
	c.mu.Lock()
	if c.state != StateResetPending {
		state := c.state
		c.mu.Unlock()
		return Event{}, invalidTransition(state, "confirm reset")
	}
	c.roster.ResetAll()
	c.state = StateReady
	c.mu.Unlock()

	event := Event{Type: EventResetSucceeded, Timestamp: c.now().UTC()}
	c.emit(event)
	return event, nil
}

// CancelReset returns a pending reset to Ready without changes.
func (c *Controller) CancelReset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateResetPending {
		return invalidTransition(c.state, "cancel reset")
	}
	c.state = StateReady
	return nil
}

// Flush waits until every write scheduled before the call has been attempted.
func (c *Controller) Flush(ctx context.Context) error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	if state == StateUninitialized || state == StateLoading {
		return nil
	}
	return c.writer.flush(ctx)
}

// Close rejects further mutations, flushes pending writes, stops the writer
// and closes the store. Closing twice is a no-op.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateClosing || c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosing
	c.mu.Unlock()

	flushErr := c.writer.flush(ctx)

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()

	if err := c.writer.stop(); err != nil {
		return fmt.Errorf("stop writer: %w", err)
	}
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if flushErr != nil {
		return fmt.Errorf("flush snapshots: %w", flushErr)
	}
	return nil
}

// scheduleLocked is the change hook of every owned collection. It runs with
// c.mu held.
func (c *Controller) scheduleLocked() {
	if !c.persist {
		return
	}
	c.writer.schedule(storage.Snapshot{
		Players:        c.roster.List(),
		Attacks:        c.catalog.List(),
		Encounter:      c.tracker.Encounter(),
		PassiveDamages: c.passives.List(),
	}.Normalize())
}

func (c *Controller) saveFailed(err error) {
	log.Printf("session save snapshot: %v", err)
	c.emit(Event{Type: EventSaveFailed, Reason: err.Error(), Err: err})
}

func (c *Controller) emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = c.now().UTC()
	}
	if c.onEvent != nil {
		c.onEvent(event)
	}
}

// mutate runs fn under the lock when the state accepts mutations.
func (c *Controller) mutate(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.acceptsMutations() {
		return notReady(c.state)
	}
	return fn()
}

// read runs fn under the lock once the session has loaded.
func (c *Controller) read(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateUninitialized || c.state == StateLoading {
		return notReady(c.state)
	}
	return fn()
}
