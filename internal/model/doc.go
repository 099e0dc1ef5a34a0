// Package model defines shared data types used across the fastroute console.
//
// Conventions:
//   - Node ids derive from grid coordinates as y*width+x (width 9)
//   - Snapshots are immutable values, replaced atomically, never mutated
//     in place
//   - Wire types carry json tags matching the backend API exactly
package model
