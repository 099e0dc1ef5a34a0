// Package overlay derives the route visualization for the selected
// order.
//
// The engine is a small state machine:
//
//	idle -> loading -> {ready, cleared, error}
//
// re-entering cleared whenever selection is lost or terminal. Route
// failures are non-fatal: the overlay clears and the grid keeps
// rendering from the last-good snapshot.
package overlay
