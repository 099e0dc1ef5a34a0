// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Refresh totals, failures, and staleness discards
//   - Stream connection state and reconnect counts
//   - Route overlay recompute outcomes
//   - Operator action counts by result
package metrics
