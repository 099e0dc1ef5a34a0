// Package api provides the REST client for the fastroute backend.
//
// Read endpoints (retried with backoff):
//   - GET /api/map/data, /api/map/stats, /api/map/route
//   - GET /api/orders, /api/bots, /api/restaurants
//
// Operator actions (never retried; failures surface synchronously):
//   - POST /api/orders, POST /api/orders/{id}/cancel
//   - PUT /api/orders/{id}/status/{status}
//   - DELETE /api/orders/{id}
package api
