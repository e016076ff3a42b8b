package session

import (
	"context"
	"sync"
	"time"

	"github.com/louisbranch/dmscreen/internal/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// writer persists snapshots on one goroutine. Scheduling never blocks: a
// newer snapshot replaces an older one that has not been picked up yet, so
// writes stay ordered and the last write wins.
type writer struct {
	store   storage.SnapshotStore
	timeout time.Duration
	tracer  trace.Tracer
	report  func(error)

	mu         sync.Mutex
	pending    storage.Snapshot
	hasPending bool
	scheduled  uint64
	attempted  uint64
	progress   chan struct{}

	wake   chan struct{}
	cancel context.CancelFunc
	group  *errgroup.Group
}

func newWriter(store storage.SnapshotStore, timeout time.Duration, tracer trace.Tracer, report func(error)) *writer {
	return &writer{
		store:    store,
		timeout:  timeout,
		tracer:   tracer,
		report:   report,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
	}
}

// start launches the write loop. Values of ctx are kept, its cancellation is
// not: the loop runs until stop.
func (w *writer) start(ctx context.Context) {
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	w.cancel = cancel
	group, groupCtx := errgroup.WithContext(loopCtx)
	w.group = group
	group.Go(func() error {
		return w.run(groupCtx)
	})
}

// schedule queues snapshot for writing.
func (w *writer) schedule(snapshot storage.Snapshot) {
	w.mu.Lock()
	w.pending = snapshot
	w.hasPending = true
	w.scheduled++
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.wake:
		}
		for w.writeNext(ctx) {
		}
	}
}

// writeNext saves the pending snapshot, if any, and reports whether it did.
func (w *writer) writeNext(ctx context.Context) bool {
	w.mu.Lock()
	if !w.hasPending {
		w.mu.Unlock()
		return false
	}
	snapshot, seq := w.pending, w.scheduled
	w.pending, w.hasPending = storage.Snapshot{}, false
	w.mu.Unlock()

	if err := w.save(ctx, snapshot); err != nil && w.report != nil {
		w.report(err)
	}

	w.mu.Lock()
	w.attempted = seq
	close(w.progress)
	w.progress = make(chan struct{})
	w.mu.Unlock()
	return true
}

func (w *writer) save(ctx context.Context, snapshot storage.Snapshot) error {
	ctx, span := w.tracer.Start(ctx, "session.save_snapshot", trace.WithAttributes(
		attribute.Int("dmscreen.players", len(snapshot.Players)),
		attribute.Int("dmscreen.attacks", len(snapshot.Attacks)),
	))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.store.Save(ctx, snapshot); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save snapshot")
		return err
	}
	return nil
}

// flush waits until every snapshot scheduled before the call was attempted.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.scheduled
	w.mu.Unlock()

	for {
		w.mu.Lock()
		if w.attempted >= target {
			w.mu.Unlock()
			return nil
		}
		progress := w.progress
		w.mu.Unlock()

		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// stop ends the write loop. Unsent snapshots are dropped; call flush first.
func (w *writer) stop() error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	return w.group.Wait()
}
