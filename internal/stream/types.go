package stream

import (
	"errors"
	"time"

	"github.com/fastroute/console/internal/model"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// UpdateMessage is a decoded push notification. Only Type "update" is
// actionable; the payload signals "state changed" and carries the
// changed orders and bots, but the full snapshot is still refetched.
type UpdateMessage struct {
	Type      string        `json:"type"`
	Timestamp string        `json:"timestamp"`
	Orders    []model.Order `json:"orders"`
	Bots      []model.Bot   `json:"bots"`
}

// ConnState is the manager's connection state machine.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateReconnecting ConnState = "reconnecting"
	StateConnected    ConnState = "connected"
)

// ClientConfig configures a single WebSocket connection.
type ClientConfig struct {
	URL          string        // WebSocket URL (e.g., ws://localhost:8000/api/stream/orders)
	PingTimeout  time.Duration // Max time without ping before considering connection stale
	WriteTimeout time.Duration // Write deadline for control frames
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   64,
	}
}

// ManagerConfig configures the stream Manager.
type ManagerConfig struct {
	URL                string        // WebSocket URL of the push channel
	ReconnectBaseDelay time.Duration // Delay before the first reconnect attempt
	ReconnectMaxDelay  time.Duration // Backoff cap
	PingTimeout        time.Duration // Per-connection stale threshold
	BufferSize         int           // Update channel buffer size
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		ReconnectBaseDelay: 5 * time.Second,
		ReconnectMaxDelay:  60 * time.Second,
		PingTimeout:        60 * time.Second,
		BufferSize:         64,
	}
}
