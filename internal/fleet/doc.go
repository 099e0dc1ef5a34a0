// Package fleet holds the last-known snapshot and the order selection.
//
// The store is the only mutable shared state in the console. The
// reconciler is its sole writer; readers observe immutable snapshots.
// Selection is a weak reference: the selected order's id only,
// re-resolved against the latest snapshot on every commit.
package fleet
