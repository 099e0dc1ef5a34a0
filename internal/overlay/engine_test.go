package overlay

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fastroute/console/internal/model"
)

// fakeProvider records route requests and returns a scripted answer.
type fakeProvider struct {
	calls atomic.Int32
	start model.RoutePoint
	end   model.RoutePoint
	route *model.Route
	err   error
}

func (f *fakeProvider) GetRoute(ctx context.Context, start, end model.RoutePoint) (*model.Route, error) {
	f.calls.Add(1)
	f.start = start
	f.end = end
	if f.err != nil {
		return nil, f.err
	}
	return f.route, nil
}

func testSnapshot(bots ...model.Bot) *model.Snapshot {
	m := model.MapData{
		GridSize: model.GridWidth,
		Nodes: []model.Node{
			{ID: 12, X: 3, Y: 1},
			{ID: 40, X: 4, Y: 4, IsDeliveryPoint: true},
		},
		Bots: bots,
	}
	return model.NewSnapshot(m, nil, model.Stats{}, time.Now())
}

func sixStepRoute() *model.Route {
	return &model.Route{
		Path: []model.RoutePoint{
			{X: 2, Y: 3}, {X: 3, Y: 3}, {X: 4, Y: 3},
			{X: 4, Y: 4}, {X: 5, Y: 4}, {X: 5, Y: 5},
		},
		Distance:      5,
		EstimatedTime: 5,
	}
}

func TestRecompute_BotPositionOverridesPickup(t *testing.T) {
	provider := &fakeProvider{route: sixStepRoute()}
	engine := NewEngine(provider, nil)

	snap := testSnapshot(model.Bot{ID: 7, Status: model.BotBusy, CurrentX: 2, CurrentY: 3})
	order := &model.Order{
		ID:             1,
		PickupNodeID:   12,
		DeliveryNodeID: 40,
		BotID:          7,
		Status:         model.StatusDelivering,
	}

	o := engine.Recompute(context.Background(), order, snap)

	if provider.start != (model.RoutePoint{X: 2, Y: 3}) {
		t.Errorf("start = %+v, want bot position (2,3)", provider.start)
	}
	if provider.end != (model.RoutePoint{X: 4, Y: 4}) {
		t.Errorf("end = %+v, want delivery (4,4)", provider.end)
	}

	if o.State != StateReady {
		t.Fatalf("state = %s, want ready", o.State)
	}
	if len(o.Path) != 6 {
		t.Fatalf("path length = %d, want 6", len(o.Path))
	}

	// Exactly the 6 path cells carry sequential indices 1..6.
	for i, p := range o.Path {
		idx, ok := o.PathIndex(p.X, p.Y)
		if !ok {
			t.Errorf("cell (%d,%d) not marked on route", p.X, p.Y)
			continue
		}
		if idx != i+1 {
			t.Errorf("cell (%d,%d) index = %d, want %d", p.X, p.Y, idx, i+1)
		}
	}
	if _, ok := o.PathIndex(0, 0); ok {
		t.Error("off-route cell reported as on-route")
	}
}

func TestRecompute_UnassignedOrderStartsAtPickup(t *testing.T) {
	provider := &fakeProvider{route: sixStepRoute()}
	engine := NewEngine(provider, nil)

	snap := testSnapshot(model.Bot{ID: 7, CurrentX: 2, CurrentY: 3})
	order := &model.Order{
		ID:             1,
		PickupNodeID:   12,
		DeliveryNodeID: 40,
		Status:         model.StatusPending, // no bot dispatched
	}

	engine.Recompute(context.Background(), order, snap)

	if provider.start != (model.RoutePoint{X: 3, Y: 1}) {
		t.Errorf("start = %+v, want pickup (3,1)", provider.start)
	}
}

func TestRecompute_MissingNodeClearsWithoutCall(t *testing.T) {
	provider := &fakeProvider{route: sixStepRoute()}
	engine := NewEngine(provider, nil)

	order := &model.Order{
		ID:             1,
		PickupNodeID:   999, // not in snapshot
		DeliveryNodeID: 40,
		Status:         model.StatusAssigned,
	}

	o := engine.Recompute(context.Background(), order, testSnapshot())

	if o.State != StateCleared {
		t.Errorf("state = %s, want cleared", o.State)
	}
	if got := provider.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestRecompute_TerminalOrderClears(t *testing.T) {
	provider := &fakeProvider{route: sixStepRoute()}
	engine := NewEngine(provider, nil)
	snap := testSnapshot()

	active := &model.Order{ID: 1, PickupNodeID: 12, DeliveryNodeID: 40, Status: model.StatusDelivering}
	if o := engine.Recompute(context.Background(), active, snap); o.State != StateReady {
		t.Fatalf("state = %s, want ready", o.State)
	}

	for _, status := range []model.OrderStatus{model.StatusDelivered, model.StatusCancelled} {
		done := &model.Order{ID: 1, PickupNodeID: 12, DeliveryNodeID: 40, Status: status}
		o := engine.Recompute(context.Background(), done, snap)
		if o.State != StateCleared {
			t.Errorf("%s: state = %s, want cleared", status, o.State)
		}
		if o.Visible() {
			t.Errorf("%s: overlay still visible", status)
		}
		if len(o.Path) != 0 {
			t.Errorf("%s: path not emptied", status)
		}
	}
}

func TestRecompute_NilSelectionClears(t *testing.T) {
	provider := &fakeProvider{route: sixStepRoute()}
	engine := NewEngine(provider, nil)

	o := engine.Recompute(context.Background(), nil, testSnapshot())

	if o.State != StateCleared {
		t.Errorf("state = %s, want cleared", o.State)
	}
	if got := provider.calls.Load(); got != 0 {
		t.Errorf("provider calls = %d, want 0", got)
	}
}

func TestRecompute_ProviderFailureIsNonFatal(t *testing.T) {
	provider := &fakeProvider{err: errors.New("no path found")}
	engine := NewEngine(provider, nil)

	order := &model.Order{ID: 1, PickupNodeID: 12, DeliveryNodeID: 40, Status: model.StatusAssigned}
	o := engine.Recompute(context.Background(), order, testSnapshot())

	if o.State != StateError {
		t.Errorf("state = %s, want error", o.State)
	}
	if o.Visible() {
		t.Error("error overlay must present as cleared")
	}
}

func TestRecompute_UnknownBotFallsBackToPickup(t *testing.T) {
	provider := &fakeProvider{route: sixStepRoute()}
	engine := NewEngine(provider, nil)

	// bot_id set but the bot is not in the snapshot.
	order := &model.Order{ID: 1, PickupNodeID: 12, DeliveryNodeID: 40, BotID: 99, Status: model.StatusAssigned}
	engine.Recompute(context.Background(), order, testSnapshot())

	if provider.start != (model.RoutePoint{X: 3, Y: 1}) {
		t.Errorf("start = %+v, want pickup (3,1)", provider.start)
	}
}

// deadlineProvider fails when the request context is already cancelled.
type deadlineProvider struct{}

func (p *deadlineProvider) GetRoute(ctx context.Context, start, end model.RoutePoint) (*model.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return sixStepRoute(), nil
}

func TestRecompute_CancelledCallerContextAbortsRoute(t *testing.T) {
	engine := NewEngine(&deadlineProvider{}, nil)

	order := &model.Order{ID: 1, PickupNodeID: 12, DeliveryNodeID: 40, Status: model.StatusAssigned}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The route call's context derives from the caller's, so teardown
	// cancellation reaches the provider.
	if o := engine.Recompute(ctx, order, testSnapshot()); o.State != StateError {
		t.Errorf("state = %s, want error under a cancelled context", o.State)
	}

	if o := engine.Recompute(context.Background(), order, testSnapshot()); o.State != StateReady {
		t.Errorf("state = %s, want ready with a live context", o.State)
	}
}
