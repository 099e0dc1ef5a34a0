package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fastroute/console/internal/fleet"
	"github.com/fastroute/console/internal/model"
)

// DataSource is the external data collaborator.
type DataSource interface {
	GetMapData(ctx context.Context) (*model.MapData, error)
	GetOrders(ctx context.Context) ([]model.Order, error)
	GetStats(ctx context.Context) (*model.Stats, error)
}

// FetchError marks a failed refresh. The previous snapshot is retained;
// the caller surfaces a recoverable banner and the next trigger retries.
type FetchError struct {
	Step string // which fetch failed: "map", "orders", or "stats"
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("refresh fetch %s: %v", e.Step, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CommitHandler is notified after every successful commit.
type CommitHandler interface {
	HandleCommit(snap *model.Snapshot, selectionCleared bool)
}

// CommitHandlerFunc is a function adapter for CommitHandler.
type CommitHandlerFunc func(*model.Snapshot, bool)

func (f CommitHandlerFunc) HandleCommit(snap *model.Snapshot, selectionCleared bool) {
	f(snap, selectionCleared)
}

// Reconciler fetches fresh state and commits it to the store. Both the
// stream callback and the poller tick call Refresh; invocations may
// overlap and are serialized by freshness, not by mutual exclusion.
type Reconciler struct {
	source  DataSource
	store   *fleet.Store
	handler CommitHandler
	logger  *slog.Logger

	// Monotonic refresh sequence. A commit is applied only when its
	// invocation is still the latest issued.
	seq       atomic.Int64
	discarded atomic.Int64

	commitMu sync.Mutex

	errMu   sync.RWMutex
	lastErr error
}

// New creates a Reconciler.
func New(source DataSource, store *fleet.Store, handler CommitHandler, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		source:  source,
		store:   store,
		handler: handler,
		logger:  logger,
	}
}

// Refresh fetches map data, orders, and stats, then atomically replaces
// the snapshot and re-resolves the selection. On any fetch failure
// nothing is committed and a FetchError is returned.
func (r *Reconciler) Refresh(ctx context.Context) error {
	seq := r.seq.Add(1)

	var (
		mapData *model.MapData
		orders  []model.Order
		stats   *model.Stats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := r.source.GetMapData(gctx)
		if err != nil {
			return &FetchError{Step: "map", Err: err}
		}
		mapData = m
		return nil
	})
	g.Go(func() error {
		o, err := r.source.GetOrders(gctx)
		if err != nil {
			return &FetchError{Step: "orders", Err: err}
		}
		orders = o
		return nil
	})
	g.Go(func() error {
		s, err := r.source.GetStats(gctx)
		if err != nil {
			return &FetchError{Step: "stats", Err: err}
		}
		stats = s
		return nil
	})

	if err := g.Wait(); err != nil {
		// A stale failure must not overwrite the banner state a fresher
		// refresh already established.
		r.commitMu.Lock()
		if seq != r.seq.Load() {
			r.commitMu.Unlock()
			r.logger.Debug("discarding stale refresh failure", "seq", seq, "latest", r.seq.Load())
			return err
		}
		r.setErr(err)
		r.commitMu.Unlock()
		r.logger.Warn("refresh failed, keeping previous snapshot", "seq", seq, "error", err)
		return err
	}

	snap := model.NewSnapshot(*mapData, orders, *stats, time.Now())

	r.commitMu.Lock()
	if seq != r.seq.Load() {
		// A newer refresh was issued while this one was in flight.
		r.commitMu.Unlock()
		r.discarded.Add(1)
		r.logger.Debug("discarding stale refresh", "seq", seq, "latest", r.seq.Load())
		return nil
	}
	cleared := r.store.Commit(snap)
	r.setErr(nil)
	r.commitMu.Unlock()

	if cleared {
		r.logger.Info("selected order absent from snapshot, selection cleared")
	}
	if r.handler != nil {
		r.handler.HandleCommit(snap, cleared)
	}

	return nil
}

// LastError returns the most recent refresh failure, nil after a
// successful commit. Feeds the dismissible error banner.
func (r *Reconciler) LastError() error {
	r.errMu.RLock()
	defer r.errMu.RUnlock()
	return r.lastErr
}

// Discarded returns how many completed refreshes were dropped for
// staleness.
func (r *Reconciler) Discarded() int64 {
	return r.discarded.Load()
}

func (r *Reconciler) setErr(err error) {
	r.errMu.Lock()
	r.lastErr = err
	r.errMu.Unlock()
}
