// Package stream implements the push-channel client.
//
// The stream:
//   - Holds one long-lived WebSocket connection to /api/stream/orders
//   - Emits decoded "update" notifications; other message types are
//     accepted and ignored
//   - Drops malformed payloads without closing the connection
//   - Reconnects with exponential backoff from a 5 second base delay,
//     exactly one pending attempt at a time
package stream
