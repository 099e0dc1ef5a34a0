package grid

import (
	"github.com/fastroute/console/internal/model"
	"github.com/fastroute/console/internal/overlay"
)

// CellKind is the winning display class for a cell after precedence.
type CellKind string

const (
	CellSelected      CellKind = "selected"
	CellPickup        CellKind = "pickup"
	CellDelivery      CellKind = "delivery"
	CellRoute         CellKind = "route"
	CellRestaurant    CellKind = "restaurant"
	CellDeliveryPoint CellKind = "delivery_point"
	CellEmpty         CellKind = "empty"
)

// CellView is everything the renderer needs for one cell.
type CellView struct {
	X, Y int
	Kind CellKind

	// On-route membership, independent of the winning kind: pickup and
	// delivery cells can also sit on the route.
	OnRoute    bool
	RouteIndex int // 1-based position along the path, 0 when off-route

	Bot        *model.Bot
	Restaurant *model.Restaurant

	// Blocked adjacency toward the right and downward neighbors; the
	// renderer draws each edge once.
	BlockedRight bool
	BlockedDown  bool
}

// View derives cell attributes from one snapshot, one overlay value,
// and the current selections. A View is cheap to build and holds only
// references to immutable inputs.
type View struct {
	snap     *model.Snapshot
	overlay  overlay.Overlay
	selected *model.Order      // selected order, nil when none
	point    *model.RoutePoint // explicitly clicked point, nil when none
}

// NewView builds a presentation view.
func NewView(snap *model.Snapshot, ov overlay.Overlay, selected *model.Order, point *model.RoutePoint) View {
	return View{snap: snap, overlay: ov, selected: selected, point: point}
}

// Blocked reports whether the edge between two adjacent cells is
// blocked, in either direction.
func (v View) Blocked(x1, y1, x2, y2 int) bool {
	if v.snap == nil {
		return false
	}
	return v.snap.Edges.Blocked(model.NodeID(x1, y1), model.NodeID(x2, y2))
}

// Cell classifies the cell at (x, y).
func (v View) Cell(x, y int) CellView {
	cell := CellView{X: x, Y: y, Kind: CellEmpty}
	if v.snap == nil {
		return cell
	}

	if idx, ok := v.overlay.PathIndex(x, y); ok {
		cell.OnRoute = true
		cell.RouteIndex = idx
	}

	if b, ok := v.snap.BotAt(x, y); ok {
		bot := b
		cell.Bot = &bot
	}
	if r, ok := v.snap.RestaurantAt(model.NodeID(x, y)); ok {
		rest := r
		cell.Restaurant = &rest
	}

	cell.Kind = v.classify(x, y, cell)

	cell.BlockedRight = x < model.GridWidth-1 && v.Blocked(x, y, x+1, y)
	cell.BlockedDown = y < model.GridWidth-1 && v.Blocked(x, y, x, y+1)

	return cell
}

// Cells returns the full grid in row-major order.
func (v View) Cells() []CellView {
	cells := make([]CellView, 0, model.GridWidth*model.GridWidth)
	for y := 0; y < model.GridWidth; y++ {
		for x := 0; x < model.GridWidth; x++ {
			cells = append(cells, v.Cell(x, y))
		}
	}
	return cells
}

// classify applies the display precedence.
func (v View) classify(x, y int, cell CellView) CellKind {
	if v.point != nil && v.point.X == x && v.point.Y == y {
		return CellSelected
	}

	if v.selected != nil {
		if n, ok := v.snap.Node(v.selected.PickupNodeID); ok && n.X == x && n.Y == y {
			return CellPickup
		}
		if n, ok := v.snap.Node(v.selected.DeliveryNodeID); ok && n.X == x && n.Y == y {
			return CellDelivery
		}
	}

	if cell.OnRoute {
		return CellRoute
	}

	if cell.Restaurant != nil {
		return CellRestaurant
	}
	if n, ok := v.snap.Node(model.NodeID(x, y)); ok && n.IsDeliveryPoint {
		return CellDeliveryPoint
	}

	return CellEmpty
}
