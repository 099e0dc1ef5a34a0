package overlay

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/fastroute/console/internal/model"
)

// State is the engine's lifecycle state.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateCleared State = "cleared"
	StateError   State = "error"
)

// RouteProvider is the external routing collaborator.
type RouteProvider interface {
	GetRoute(ctx context.Context, start, end model.RoutePoint) (*model.Route, error)
}

// Overlay is the derived route visualization. It is a value: recomputed
// whole, never patched.
type Overlay struct {
	State         State
	Path          []model.RoutePoint
	Distance      int
	EstimatedTime int

	index map[model.RoutePoint]int // 1-based position along the path
}

// PathIndex returns the cell's 1-based position on the route, or false
// when the cell is off-route or the overlay is not ready.
func (o Overlay) PathIndex(x, y int) (int, bool) {
	idx, ok := o.index[model.RoutePoint{X: x, Y: y}]
	return idx, ok
}

// Visible reports whether there is a route to draw.
func (o Overlay) Visible() bool {
	return o.State == StateReady
}

// Engine computes the overlay for the current selection and snapshot.
type Engine struct {
	provider RouteProvider
	logger   *slog.Logger

	// Generation counter: a recompute publishes only if it is still the
	// newest when its route call returns.
	gen atomic.Int64

	mu      sync.Mutex
	overlay Overlay
	cancel  context.CancelFunc
}

// NewEngine creates an overlay engine.
func NewEngine(provider RouteProvider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		provider: provider,
		logger:   logger,
		overlay:  Overlay{State: StateIdle},
	}
}

// Overlay returns the current overlay value.
func (e *Engine) Overlay() Overlay {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.overlay
}

// Recompute derives the overlay for the given selection and snapshot.
// Runs on every selection change and on every snapshot replacement
// while an order is selected (the bot may have moved). Any in-flight
// route call from an earlier recompute is cancelled.
func (e *Engine) Recompute(ctx context.Context, selected *model.Order, snap *model.Snapshot) Overlay {
	gen := e.gen.Add(1)
	e.Close()

	// No selection, or a terminal order: nothing to draw.
	if selected == nil || snap == nil || selected.Status.Terminal() {
		return e.publish(gen, Overlay{State: StateCleared})
	}

	pickup, ok := snap.Node(selected.PickupNodeID)
	if !ok {
		e.logger.Warn("pickup node missing from snapshot",
			"order_id", selected.ID,
			"node_id", selected.PickupNodeID,
		)
		return e.publish(gen, Overlay{State: StateCleared})
	}
	delivery, ok := snap.Node(selected.DeliveryNodeID)
	if !ok {
		e.logger.Warn("delivery node missing from snapshot",
			"order_id", selected.ID,
			"node_id", selected.DeliveryNodeID,
		)
		return e.publish(gen, Overlay{State: StateCleared})
	}

	// Start from the bot when one is dispatched, else from the pickup.
	start := pickup.Point()
	if selected.BotID != 0 {
		if bot, ok := snap.Bot(selected.BotID); ok {
			start = bot.Position()
		}
	}

	cctx := e.beginLoading(ctx, gen)

	route, err := e.provider.GetRoute(cctx, start, delivery.Point())
	if err != nil {
		e.logger.Warn("route computation failed",
			"order_id", selected.ID,
			"error", err,
		)
		return e.publish(gen, Overlay{State: StateError})
	}

	index := make(map[model.RoutePoint]int, len(route.Path))
	for i, p := range route.Path {
		if _, seen := index[p]; !seen {
			index[p] = i + 1
		}
	}

	return e.publish(gen, Overlay{
		State:         StateReady,
		Path:          route.Path,
		Distance:      route.Distance,
		EstimatedTime: route.EstimatedTime,
		index:         index,
	})
}

// Close cancels any in-flight route computation.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// beginLoading enters the loading state and replaces the in-flight
// cancellation handle. The route call's context derives from the
// caller's, so lifecycle cancellation reaches the provider.
func (e *Engine) beginLoading(ctx context.Context, gen int64) context.Context {
	cctx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	e.cancel = cancel
	if gen == e.gen.Load() {
		e.overlay = Overlay{State: StateLoading}
	}
	e.mu.Unlock()

	return cctx
}

// publish stores the overlay unless a newer recompute superseded this
// one while its route call was in flight.
func (e *Engine) publish(gen int64, o Overlay) Overlay {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen.Load() {
		return e.overlay
	}
	e.overlay = o
	return o
}
