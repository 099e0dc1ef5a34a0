package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fastroute/console/internal/api"
	"github.com/fastroute/console/internal/fleet"
	"github.com/fastroute/console/internal/grid"
	"github.com/fastroute/console/internal/metrics"
	"github.com/fastroute/console/internal/model"
	"github.com/fastroute/console/internal/overlay"
	"github.com/fastroute/console/internal/poller"
	"github.com/fastroute/console/internal/reconcile"
	"github.com/fastroute/console/internal/stream"
)

// Errors
var (
	ErrUnknownOrder = errors.New("order not in current snapshot")
	ErrNoNextStatus = errors.New("order has no next lifecycle status")
)

// Backend is the REST surface the controller drives. *api.Client
// satisfies it.
type Backend interface {
	GetMapData(ctx context.Context) (*model.MapData, error)
	GetOrders(ctx context.Context) ([]model.Order, error)
	GetStats(ctx context.Context) (*model.Stats, error)
	GetRoute(ctx context.Context, start, end model.RoutePoint) (*model.Route, error)
	CreateOrder(ctx context.Context, p api.CreateOrderParams) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int, status model.OrderStatus) error
	CancelOrder(ctx context.Context, orderID int) error
	DeleteOrder(ctx context.Context, orderID int) error
}

// Pusher is the push-channel collaborator. *stream.Manager satisfies
// it.
type Pusher interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Updates() <-chan stream.UpdateMessage
	States() <-chan stream.ConnState
	State() stream.ConnState
}

// Config holds controller configuration.
type Config struct {
	PollInterval time.Duration // Poll cadence (default: 1s)
}

// Controller owns the live-state loop. Both the push channel and the
// poll scheduler funnel into the reconciler; overlapping refreshes are
// resolved by freshness inside it.
type Controller struct {
	backend Backend
	push    Pusher
	store   *fleet.Store
	rec     *reconcile.Reconciler
	routes  *overlay.Engine
	ticks   *poller.Poller
	met     *metrics.Metrics
	logger  *slog.Logger

	// Clicked grid point, mutually exclusive with the order selection.
	pointMu sync.Mutex
	point   *model.RoutePoint

	lastDiscarded atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	stopped bool
	lifeMu  sync.Mutex
}

// New creates a Controller. met may be nil to disable instrumentation.
func New(backend Backend, push Pusher, cfg Config, met *metrics.Metrics, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		backend: backend,
		push:    push,
		store:   fleet.NewStore(),
		routes:  overlay.NewEngine(backend, logger),
		met:     met,
		logger:  logger,
	}
	c.rec = reconcile.New(backend, c.store, reconcile.CommitHandlerFunc(c.handleCommit), logger)
	c.ticks = poller.New(
		poller.Config{Interval: cfg.PollInterval},
		poller.TickHandlerFunc(func(ctx context.Context) {
			c.refresh(ctx, "poll")
		}),
		logger,
	)

	return c
}

// Start connects the push channel, begins the poll cadence, and spawns
// the notification loop.
func (c *Controller) Start(ctx context.Context) error {
	c.lifeMu.Lock()
	if c.started {
		c.lifeMu.Unlock()
		return nil
	}
	c.started = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.lifeMu.Unlock()

	if err := c.push.Start(c.ctx); err != nil {
		return err
	}

	c.wg.Add(1)
	go c.notifyLoop()

	if err := c.ticks.Start(c.ctx); err != nil {
		return err
	}

	c.logger.Info("dashboard controller started")
	return nil
}

// Teardown stops the poll cadence, closes the push channel, and cancels
// in-flight overlay work. Safe to call multiple times.
func (c *Controller) Teardown(ctx context.Context) error {
	c.lifeMu.Lock()
	if c.stopped || !c.started {
		c.stopped = true
		c.lifeMu.Unlock()
		return nil
	}
	c.stopped = true
	c.lifeMu.Unlock()

	var errs []error
	if err := c.ticks.Stop(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := c.push.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Warn("controller shutdown timeout")
	}

	c.routes.Close()
	c.logger.Info("dashboard controller stopped")
	return errors.Join(errs...)
}

// notifyLoop translates push notifications into refreshes and mirrors
// connection state transitions.
func (c *Controller) notifyLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return

		case _, ok := <-c.push.Updates():
			if !ok {
				return
			}
			if c.met != nil {
				c.met.StreamUpdates.Inc()
			}
			// The notification only signals "state changed"; the full
			// snapshot is refetched from the REST API.
			c.refresh(c.ctx, "stream")

		case s := <-c.push.States():
			c.logger.Info("stream state changed", "state", s)
			if c.met == nil {
				continue
			}
			c.met.SetStreamState(streamStateValue(s))
			if s == stream.StateReconnecting {
				c.met.StreamReconnects.Inc()
			}
		}
	}
}

// refresh runs one reconciliation and records its outcome. Failures are
// already retained by the reconciler for the error banner.
func (c *Controller) refresh(ctx context.Context, trigger string) {
	start := time.Now()
	err := c.rec.Refresh(ctx)
	if c.met == nil {
		return
	}
	c.met.RecordRefresh(trigger, err, time.Since(start))

	d := c.rec.Discarded()
	if delta := d - c.lastDiscarded.Swap(d); delta > 0 {
		c.met.RefreshDiscards.Add(float64(delta))
	}
}

// handleCommit reacts to every committed snapshot: the overlay follows
// the (re-resolved) selection.
func (c *Controller) handleCommit(snap *model.Snapshot, selectionCleared bool) {
	if c.met != nil {
		c.met.SnapshotOrders.Set(float64(len(snap.Orders)))
		if selectionCleared {
			c.met.SelectionCleared.Inc()
		}
	}
	c.recompute(snap)
}

// recompute re-runs the overlay engine against the current selection.
func (c *Controller) recompute(snap *model.Snapshot) {
	var sel *model.Order
	if o, ok := c.store.Selection(); ok {
		sel = &o
	}
	result := c.routes.Recompute(c.runCtx(), sel, snap)
	if c.met != nil {
		c.met.RecordOverlay(string(result.State))
	}
}

// SelectOrder selects an order by id and clears any clicked grid point.
// Returns false when the id is absent from the current snapshot.
func (c *Controller) SelectOrder(id int) bool {
	if !c.store.Select(id) {
		return false
	}
	c.pointMu.Lock()
	c.point = nil
	c.pointMu.Unlock()

	c.recompute(c.store.Snapshot())
	return true
}

// ClearSelection empties the order selection and clears the overlay.
func (c *Controller) ClearSelection() {
	c.store.ClearSelection()
	c.recompute(c.store.Snapshot())
}

// SelectPoint records a clicked grid point, deselecting any order.
// Out-of-grid coordinates are rejected.
func (c *Controller) SelectPoint(x, y int) bool {
	if x < 0 || x >= model.GridWidth || y < 0 || y >= model.GridWidth {
		return false
	}
	c.pointMu.Lock()
	c.point = &model.RoutePoint{X: x, Y: y}
	c.pointMu.Unlock()

	c.store.ClearSelection()
	c.recompute(c.store.Snapshot())
	return true
}

// ClearPoint removes the clicked grid point.
func (c *Controller) ClearPoint() {
	c.pointMu.Lock()
	c.point = nil
	c.pointMu.Unlock()
}

// Selection resolves the selected order against the current snapshot.
func (c *Controller) Selection() (model.Order, bool) {
	return c.store.Selection()
}

// View builds the presentation grid for the current snapshot, overlay,
// selection, and clicked point.
func (c *Controller) View() grid.View {
	var sel *model.Order
	if o, ok := c.store.Selection(); ok {
		sel = &o
	}
	c.pointMu.Lock()
	p := c.point
	c.pointMu.Unlock()

	return grid.NewView(c.store.Snapshot(), c.routes.Overlay(), sel, p)
}

// Snapshot returns the last committed snapshot, nil before the first
// commit.
func (c *Controller) Snapshot() *model.Snapshot {
	return c.store.Snapshot()
}

// Overlay returns the current route overlay.
func (c *Controller) Overlay() overlay.Overlay {
	return c.routes.Overlay()
}

// LastError returns the most recent refresh failure, nil after a
// successful commit. Feeds the dismissible error banner.
func (c *Controller) LastError() error {
	return c.rec.LastError()
}

// StreamState returns the push connection state.
func (c *Controller) StreamState() stream.ConnState {
	return c.push.State()
}

// CreateOrder submits a new order and refreshes immediately on success.
func (c *Controller) CreateOrder(ctx context.Context, p api.CreateOrderParams) (*model.Order, error) {
	o, err := c.backend.CreateOrder(ctx, p)
	c.afterAction(ctx, "create", err)
	return o, err
}

// AdvanceOrder moves an order to its next lifecycle status. Terminal
// and unknown orders are rejected without a backend call.
func (c *Controller) AdvanceOrder(ctx context.Context, orderID int) error {
	snap := c.store.Snapshot()
	if snap == nil {
		return ErrUnknownOrder
	}
	o, ok := snap.Order(orderID)
	if !ok {
		return ErrUnknownOrder
	}
	next := o.Status.Next()
	if next == "" {
		return ErrNoNextStatus
	}

	err := c.backend.UpdateOrderStatus(ctx, orderID, next)
	c.afterAction(ctx, "advance", err)
	return err
}

// CancelOrder cancels an order and refreshes immediately on success.
func (c *Controller) CancelOrder(ctx context.Context, orderID int) error {
	err := c.backend.CancelOrder(ctx, orderID)
	c.afterAction(ctx, "cancel", err)
	return err
}

// DeleteOrder removes an order. If it was selected, the refresh commit
// clears the selection.
func (c *Controller) DeleteOrder(ctx context.Context, orderID int) error {
	err := c.backend.DeleteOrder(ctx, orderID)
	c.afterAction(ctx, "delete", err)
	return err
}

// afterAction records the action outcome and, on success, pulls fresh
// state without waiting for the next tick or notification.
func (c *Controller) afterAction(ctx context.Context, action string, err error) {
	if c.met != nil {
		c.met.RecordAction(action, err)
	}
	if err != nil {
		c.logger.Warn("operator action failed", "action", action, "error", err)
		return
	}
	c.refresh(ctx, "action")
}

// runCtx returns the lifecycle context, or Background before Start.
func (c *Controller) runCtx() context.Context {
	c.lifeMu.Lock()
	defer c.lifeMu.Unlock()
	if c.ctx != nil {
		return c.ctx
	}
	return context.Background()
}

func streamStateValue(s stream.ConnState) int {
	switch s {
	case stream.StateConnected:
		return 2
	case stream.StateReconnecting:
		return 1
	default:
		return 0
	}
}
