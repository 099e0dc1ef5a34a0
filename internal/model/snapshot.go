package model

import "time"

// Snapshot bundles the map, order, and stat state fetched in one
// reconciliation cycle. A snapshot is a value: it is swapped atomically
// by the reconciler and never partially mutated, so readers may hold a
// reference without locking.
type Snapshot struct {
	Map     MapData
	Orders  []Order
	Stats   Stats
	Edges   EdgeSet
	Fetched time.Time

	nodesByID  map[int]Node
	botsByID   map[int]Bot
	ordersByID map[int]Order
	restByNode map[int]Restaurant
}

// NewSnapshot builds a snapshot with its lookup indexes precomputed.
func NewSnapshot(m MapData, orders []Order, stats Stats, fetched time.Time) *Snapshot {
	s := &Snapshot{
		Map:        m,
		Orders:     orders,
		Stats:      stats,
		Edges:      NewEdgeSet(m.BlockedPaths),
		Fetched:    fetched,
		nodesByID:  make(map[int]Node, len(m.Nodes)),
		botsByID:   make(map[int]Bot, len(m.Bots)),
		ordersByID: make(map[int]Order, len(orders)),
		restByNode: make(map[int]Restaurant, len(m.Restaurants)),
	}
	for _, n := range m.Nodes {
		s.nodesByID[n.ID] = n
	}
	for _, b := range m.Bots {
		s.botsByID[b.ID] = b
	}
	for _, o := range orders {
		s.ordersByID[o.ID] = o
	}
	for _, r := range m.Restaurants {
		s.restByNode[r.NodeID] = r
	}
	return s
}

// Node looks up a grid node by id.
func (s *Snapshot) Node(id int) (Node, bool) {
	n, ok := s.nodesByID[id]
	return n, ok
}

// Bot looks up a bot by id.
func (s *Snapshot) Bot(id int) (Bot, bool) {
	b, ok := s.botsByID[id]
	return b, ok
}

// Order looks up an order by id.
func (s *Snapshot) Order(id int) (Order, bool) {
	o, ok := s.ordersByID[id]
	return o, ok
}

// RestaurantAt returns the restaurant anchored to a node, if any.
func (s *Snapshot) RestaurantAt(nodeID int) (Restaurant, bool) {
	r, ok := s.restByNode[nodeID]
	return r, ok
}

// BotAt returns the first bot currently at the given coordinates.
func (s *Snapshot) BotAt(x, y int) (Bot, bool) {
	for _, b := range s.Map.Bots {
		if b.CurrentX == x && b.CurrentY == y {
			return b, true
		}
	}
	return Bot{}, false
}
