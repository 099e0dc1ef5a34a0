package model

import "math"

// GridWidth is the fixed edge length of the delivery grid. The map is
// immutable for the session; nodes never appear or disappear.
const GridWidth = 9

// NodeID derives a node's id from its grid coordinates.
func NodeID(x, y int) int {
	return y*GridWidth + x
}

// -----------------------------------------------------------------------------
// Map Types
// -----------------------------------------------------------------------------

// Node is a single cell of the delivery grid.
type Node struct {
	ID              int    `json:"id"`
	X               int    `json:"x"`
	Y               int    `json:"y"`
	IsDeliveryPoint bool   `json:"is_delivery_point"`
	IsRestaurant    bool   `json:"is_restaurant"`
	RestaurantType  string `json:"restaurant_type,omitempty"`
}

// RoutePoint is a single (x, y) step of a computed route.
type RoutePoint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Point returns the node's coordinates as a route point.
func (n Node) Point() RoutePoint {
	return RoutePoint{X: n.X, Y: n.Y}
}

// Route is the routing collaborator's answer for a start/end pair.
type Route struct {
	Path          []RoutePoint `json:"path"`
	Distance      int          `json:"distance"`
	EstimatedTime int          `json:"estimated_time"`
}

// -----------------------------------------------------------------------------
// Fleet Types
// -----------------------------------------------------------------------------

// BotStatus is a delivery bot's operational state.
type BotStatus string

const (
	BotAvailable BotStatus = "available"
	BotBusy      BotStatus = "busy"
	BotReturning BotStatus = "returning"
	BotOffline   BotStatus = "offline"
)

// Bot is a delivery robot. Bots are mutated only by snapshot replacement.
type Bot struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Status          BotStatus `json:"status"`
	CurrentX        int       `json:"current_x"`
	CurrentY        int       `json:"current_y"`
	OrdersCount     int       `json:"current_orders_count"` // 0..3
	TotalDeliveries int       `json:"total_deliveries"`
}

// Position returns the bot's current coordinates as a route point.
func (b Bot) Position() RoutePoint {
	return RoutePoint{X: b.CurrentX, Y: b.CurrentY}
}

// RestaurantType is one of the fixed cuisine categories.
type RestaurantType string

const (
	Ramen RestaurantType = "RAMEN"
	Curry RestaurantType = "CURRY"
	Pizza RestaurantType = "PIZZA"
	Sushi RestaurantType = "SUSHI"
)

// Restaurant is a pickup location anchored to a grid node.
type Restaurant struct {
	ID       int            `json:"id"`
	Name     string         `json:"name"`
	Type     RestaurantType `json:"restaurant_type"`
	NodeID   int            `json:"node_id"`
	IsActive bool           `json:"is_active"`
}

// -----------------------------------------------------------------------------
// Order Types
// -----------------------------------------------------------------------------

// OrderStatus is a stage of the order lifecycle.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusAssigned   OrderStatus = "assigned"
	StatusPickingUp  OrderStatus = "picking_up"
	StatusPickedUp   OrderStatus = "picked_up"
	StatusDelivering OrderStatus = "delivering"
	StatusDelivered  OrderStatus = "delivered"

	// StatusCancelled is a side-branch terminal, not part of the ordered flow.
	StatusCancelled OrderStatus = "cancelled"
)

// Lifecycle is the ordered progression of a delivery, terminal last.
var Lifecycle = []OrderStatus{
	StatusPending,
	StatusAssigned,
	StatusPickingUp,
	StatusPickedUp,
	StatusDelivering,
	StatusDelivered,
}

// Index returns the status's position in the lifecycle, or -1 for
// cancelled and unknown statuses.
func (s OrderStatus) Index() int {
	for i, st := range Lifecycle {
		if st == s {
			return i
		}
	}
	return -1
}

// Progress returns delivery progress as a 0-100 percentage.
func (s OrderStatus) Progress() int {
	idx := s.Index()
	if idx < 0 {
		return 0
	}
	return int(math.Round(float64(idx) / float64(len(Lifecycle)-1) * 100))
}

// Next returns the following lifecycle status, or "" when the order is
// already delivered, cancelled, or unknown.
func (s OrderStatus) Next() OrderStatus {
	idx := s.Index()
	if idx < 0 || idx == len(Lifecycle)-1 {
		return ""
	}
	return Lifecycle[idx+1]
}

// Terminal reports whether the status ends the lifecycle.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Order is a delivery order. BotID is 0 until a bot is dispatched.
type Order struct {
	ID              int         `json:"id"`
	CustomerName    string      `json:"customer_name"`
	CustomerAddress string      `json:"customer_address"`
	PickupNodeID    int         `json:"pickup_node_id"`
	DeliveryNodeID  int         `json:"delivery_node_id"`
	RestaurantID    int         `json:"restaurant_id"`
	BotID           int         `json:"bot_id,omitempty"`
	Status          OrderStatus `json:"status"`
	EstimatedTime   int         `json:"estimated_time,omitempty"`
	CreatedAt       string      `json:"created_at"` // ISO 8601, opaque to this client
}

// Stats are the aggregate counters shown on the dashboard.
type Stats struct {
	TotalOrders         int `json:"total_orders"`
	PendingOrders       int `json:"pending_orders"`
	ActiveDeliveries    int `json:"active_deliveries"`
	CompletedDeliveries int `json:"completed_deliveries"`
	AvailableBots       int `json:"available_bots"`
	BusyBots            int `json:"busy_bots"`
}

// -----------------------------------------------------------------------------
// Wire Envelopes
// -----------------------------------------------------------------------------

// MapData is the GET /api/map/data response.
type MapData struct {
	GridSize     int           `json:"grid_size"`
	Nodes        []Node        `json:"nodes"`
	BlockedPaths []BlockedEdge `json:"blocked_paths"`
	Restaurants  []Restaurant  `json:"restaurants"`
	Bots         []Bot         `json:"bots"`
}
