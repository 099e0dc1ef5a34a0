package model

// BlockedEdge is an undirected adjacency the router must not traverse.
// Blocking (a, b) blocks (b, a).
type BlockedEdge struct {
	FromID int `json:"from_id"`
	ToID   int `json:"to_id"`
}

// edgeKey is a direction-independent edge identity.
type edgeKey struct {
	lo, hi int
}

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// EdgeSet answers blocked-adjacency queries in O(1). Built once per
// snapshot; read-only afterwards.
type EdgeSet struct {
	edges map[edgeKey]struct{}
}

// NewEdgeSet precomputes the symmetric lookup set from the wire list.
func NewEdgeSet(blocked []BlockedEdge) EdgeSet {
	edges := make(map[edgeKey]struct{}, len(blocked))
	for _, e := range blocked {
		edges[newEdgeKey(e.FromID, e.ToID)] = struct{}{}
	}
	return EdgeSet{edges: edges}
}

// Blocked reports whether the edge between two node ids is blocked,
// in either direction.
func (s EdgeSet) Blocked(a, b int) bool {
	_, ok := s.edges[newEdgeKey(a, b)]
	return ok
}

// Len returns the number of distinct blocked edges.
func (s EdgeSet) Len() int {
	return len(s.edges)
}
