// Package reconcile implements the refresh entry point shared by the
// push stream and the poller.
//
// The reconciler:
//   - Fetches map data, orders, and stats concurrently and commits only
//     when all three succeed (never a partial commit)
//   - Tags every invocation with a monotonic sequence number and
//     discards commits that are no longer the freshest, so overlapping
//     refreshes cannot publish stale state
//   - Re-resolves the selected order id against each new snapshot
package reconcile
