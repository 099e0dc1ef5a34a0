package fleet

import (
	"sync"

	"github.com/fastroute/console/internal/model"
)

// Store is the thread-safe snapshot and selection cache.
type Store struct {
	mu sync.RWMutex

	// Last committed snapshot. Nil until the first reconciliation.
	snapshot *model.Snapshot

	// Selected order id; 0 means no selection.
	selectedID int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the last committed snapshot, or nil before the
// first commit. The returned snapshot is immutable.
func (s *Store) Snapshot() *model.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Commit replaces the snapshot and re-resolves the selection against it
// in the same critical section. If the previously selected id is absent
// from the new snapshot's orders, the selection becomes empty and
// cleared reports true.
func (s *Store) Commit(snap *model.Snapshot) (cleared bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap

	if s.selectedID == 0 {
		return false
	}
	if _, ok := snap.Order(s.selectedID); !ok {
		s.selectedID = 0
		return true
	}
	return false
}

// Select records the selected order id. Selecting an id absent from the
// current snapshot is rejected so the selection invariant holds between
// commits.
func (s *Store) Select(orderID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return false
	}
	if _, ok := s.snapshot.Order(orderID); !ok {
		return false
	}
	s.selectedID = orderID
	return true
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedID = 0
}

// Selection resolves the selected order against the current snapshot.
// ok is false when nothing is selected.
func (s *Store) Selection() (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.selectedID == 0 || s.snapshot == nil {
		return model.Order{}, false
	}
	o, ok := s.snapshot.Order(s.selectedID)
	return o, ok
}

// SelectedID returns the raw selected order id, 0 when empty.
func (s *Store) SelectedID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedID
}
