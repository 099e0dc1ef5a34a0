package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TickHandler receives scheduler ticks.
type TickHandler interface {
	HandleTick(ctx context.Context)
}

// TickHandlerFunc is a function adapter for TickHandler.
type TickHandlerFunc func(context.Context)

func (f TickHandlerFunc) HandleTick(ctx context.Context) {
	f(ctx)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Tick interval (default: 1s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: time.Second,
	}
}

// Poller fires the tick handler on a fixed cadence.
type Poller struct {
	cfg     Config
	handler TickHandler
	logger  *slog.Logger

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	wg      sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, handler TickHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	return &Poller{
		cfg:     cfg,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the tick loop. The first tick fires immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}
	p.started = true
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("poller started", "interval", p.cfg.Interval)
	return nil
}

// Stop cancels the timer. Safe to call on an already-stopped poller.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel := p.cancel
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the tick loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Tick immediately on start.
	p.handler.HandleTick(p.ctx)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.handler.HandleTick(p.ctx)
		}
	}
}
