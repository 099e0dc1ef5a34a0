package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoller_TicksOnCadence(t *testing.T) {
	var ticks atomic.Int32
	handler := TickHandlerFunc(func(ctx context.Context) {
		ticks.Add(1)
	})

	p := New(Config{Interval: 20 * time.Millisecond}, handler, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Immediate tick plus at least two interval ticks.
	time.Sleep(70 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if got := ticks.Load(); got < 3 {
		t.Errorf("ticks = %d, want >= 3", got)
	}
}

func TestPoller_NoTicksAfterStop(t *testing.T) {
	var ticks atomic.Int32
	handler := TickHandlerFunc(func(ctx context.Context) {
		ticks.Add(1)
	})

	p := New(Config{Interval: 10 * time.Millisecond}, handler, nil)

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	after := ticks.Load()
	time.Sleep(50 * time.Millisecond)

	if got := ticks.Load(); got != after {
		t.Errorf("ticks advanced after Stop: %d -> %d", after, got)
	}
}

func TestPoller_StopTwice(t *testing.T) {
	p := New(Config{Interval: 10 * time.Millisecond}, TickHandlerFunc(func(context.Context) {}), nil)

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("first Stop failed: %v", err)
	}
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("second Stop failed: %v", err)
	}
}

func TestPoller_StopWithoutStart(t *testing.T) {
	p := New(DefaultConfig(), TickHandlerFunc(func(context.Context) {}), nil)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop without Start failed: %v", err)
	}
}
