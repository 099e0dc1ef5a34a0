package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns the push channel: it holds one live connection at a time,
// decodes inbound notifications, and replaces the connection entirely on
// failure after a backoff delay. The connected state is entered on the
// first successful message, not on dial.
type Manager struct {
	cfg    ManagerConfig
	logger *slog.Logger

	updates chan UpdateMessage
	states  chan ConnState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	state   ConnState
	active  Client
	started bool
	stopped bool

	// Injection points for deterministic tests.
	newClient func(ClientConfig, *slog.Logger) Client
	after     func(time.Duration) <-chan time.Time
}

// NewManager creates a stream manager.
func NewManager(cfg ManagerConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ReconnectBaseDelay == 0 {
		cfg.ReconnectBaseDelay = DefaultManagerConfig().ReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay == 0 {
		cfg.ReconnectMaxDelay = DefaultManagerConfig().ReconnectMaxDelay
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultManagerConfig().BufferSize
	}

	return &Manager{
		cfg:       cfg,
		logger:    logger,
		updates:   make(chan UpdateMessage, cfg.BufferSize),
		states:    make(chan ConnState, 16),
		state:     StateDisconnected,
		newClient: NewClient,
		after:     time.After,
	}
}

// Start begins the connect/consume/reconnect loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.started = true
	m.mu.Unlock()

	m.ctx, m.cancel = context.WithCancel(ctx)

	m.wg.Add(1)
	go m.run()

	m.logger.Info("stream manager started", "url", m.cfg.URL)
	return nil
}

// Stop tears down the active connection and cancels any pending
// reconnect. Safe to call multiple times.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	if m.stopped || !m.started {
		m.stopped = true
		m.mu.Unlock()
		return nil
	}
	m.stopped = true
	active := m.active
	m.mu.Unlock()

	m.cancel()
	if active != nil {
		active.Close()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// Only a finished run loop may have its output closed; on
		// timeout the loop could still be dispatching.
		close(m.updates)
	case <-ctx.Done():
		m.logger.Warn("stream shutdown timeout")
	}

	m.logger.Info("stream manager stopped")
	return nil
}

// Updates returns the channel of decoded "update" notifications.
func (m *Manager) Updates() <-chan UpdateMessage {
	return m.updates
}

// States returns the channel of connection state transitions.
func (m *Manager) States() <-chan ConnState {
	return m.states
}

// State returns the current connection state.
func (m *Manager) State() ConnState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// run is the connect/consume/reconnect loop. At most one connection and
// one pending reconnect timer exist at any moment.
func (m *Manager) run() {
	defer m.wg.Done()

	attempt := 0
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		connID := uuid.NewString()
		clientCfg := ClientConfig{
			URL:          m.cfg.URL,
			PingTimeout:  m.cfg.PingTimeout,
			WriteTimeout: 5 * time.Second,
			BufferSize:   m.cfg.BufferSize,
		}
		c := m.newClient(clientCfg, m.logger.With("conn_id", connID))

		m.mu.Lock()
		m.active = c
		m.mu.Unlock()

		if err := c.Connect(m.ctx); err != nil {
			m.logger.Warn("stream connect failed", "conn_id", connID, "error", err)
		} else if m.consume(c, connID) {
			// Connection produced at least one message; the backoff
			// schedule starts over.
			attempt = 0
		}
		c.Close()

		select {
		case <-m.ctx.Done():
			return
		default:
		}

		attempt++
		delay := m.reconnectDelay(attempt)
		m.setState(StateReconnecting)
		m.logger.Info("scheduling stream reconnect",
			"attempt", attempt,
			"delay", delay,
		)

		select {
		case <-m.ctx.Done():
			return
		case <-m.after(delay):
		}
	}
}

// consume reads one connection until it fails. Returns true if at least
// one message arrived.
func (m *Manager) consume(c Client, connID string) bool {
	sawMessage := false

	for {
		select {
		case <-m.ctx.Done():
			return sawMessage

		case err := <-c.Errors():
			m.logger.Warn("stream connection error", "conn_id", connID, "error", err)
			m.setState(StateDisconnected)
			return sawMessage

		case msg, ok := <-c.Messages():
			if !ok {
				m.setState(StateDisconnected)
				return sawMessage
			}

			if !sawMessage {
				sawMessage = true
				m.setState(StateConnected)
			}

			m.dispatch(msg)
		}
	}
}

// dispatch decodes a raw message and forwards actionable updates.
// Malformed payloads are logged and dropped; they never close the
// connection.
func (m *Manager) dispatch(msg TimestampedMessage) {
	var update UpdateMessage
	if err := json.Unmarshal(msg.Data, &update); err != nil {
		m.logger.Warn("malformed stream payload, dropping", "error", err)
		return
	}

	if update.Type != "update" {
		// Heartbeats and other types are accepted and ignored.
		m.logger.Debug("ignoring stream message", "type", update.Type)
		return
	}

	select {
	case m.updates <- update:
	case <-m.ctx.Done():
	default:
		m.logger.Warn("update buffer full, dropping notification")
	}
}

// reconnectDelay returns the backoff delay for the given attempt,
// starting at the base delay and doubling up to the cap.
func (m *Manager) reconnectDelay(attempt int) time.Duration {
	delay := m.cfg.ReconnectBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= m.cfg.ReconnectMaxDelay {
			return m.cfg.ReconnectMaxDelay
		}
	}
	return delay
}

// setState records a transition and surfaces it without blocking.
func (m *Manager) setState(s ConnState) {
	m.mu.Lock()
	if m.state == s {
		m.mu.Unlock()
		return
	}
	m.state = s
	m.mu.Unlock()

	select {
	case m.states <- s:
	default:
	}
}
