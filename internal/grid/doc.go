// Package grid maps a snapshot plus overlay state into per-cell display
// attributes for the map consumer.
//
// Cell classification follows a strict precedence: clicked point, then
// order pickup, order delivery, on-route membership, static
// restaurant/delivery-point markers, and finally empty. Blocked-edge
// adjacency is answered in O(1) from the snapshot's precomputed edge
// set.
package grid
