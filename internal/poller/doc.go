// Package poller implements the reconciliation scheduler.
//
// The poller:
//   - Fires the tick handler on a fixed cadence (default 1s),
//     independent of stream health
//   - Is the primary channel for bot-position updates, since the push
//     stream only signals "something changed"
//   - Stops cleanly and tolerates repeated Stop calls
package poller
