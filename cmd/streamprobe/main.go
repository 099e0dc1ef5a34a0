// streamprobe connects to the fleet push channel and prints decoded
// update notifications to the console.
// Usage: go run ./cmd/streamprobe --config configs/console.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fastroute/console/internal/api"
	"github.com/fastroute/console/internal/config"
	"github.com/fastroute/console/internal/stream"
)

func main() {
	configPath := flag.String("config", "configs/console.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full message JSON")
	flag.Parse()

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Load config
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	// Sanity-check the REST side before streaming: a reachable backend
	// with zero bots means notifications will never arrive.
	apiClient := api.NewClient(cfg.API.BaseURL, api.WithLogger(logger), api.WithTimeout(cfg.API.Timeout))
	if bots, err := apiClient.GetBots(ctx); err != nil {
		logger.Warn("bot inventory unavailable", "error", err)
	} else {
		logger.Info("bot inventory", "bots", len(bots))
	}
	if restaurants, err := apiClient.GetRestaurants(ctx); err != nil {
		logger.Warn("restaurant inventory unavailable", "error", err)
	} else {
		logger.Info("restaurant inventory", "restaurants", len(restaurants))
	}

	mgr := stream.NewManager(stream.ManagerConfig{
		URL:                cfg.Stream.URL,
		ReconnectBaseDelay: cfg.Stream.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Stream.ReconnectMaxDelay,
		PingTimeout:        cfg.Stream.PingTimeout,
		BufferSize:         cfg.Stream.BufferSize,
	}, logger)

	logger.Info("connecting to push channel", "url", cfg.Stream.URL)
	if err := mgr.Start(ctx); err != nil {
		logger.Error("failed to start stream manager", "error", err)
		os.Exit(1)
	}

	received := 0

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				logger.Info("stats",
					"state", mgr.State(),
					"updates_received", received,
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop")

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()

			logger.Info("shutting down...")
			mgr.Stop(shutdownCtx)
			logger.Info("shutdown complete")
			return

		case s := <-mgr.States():
			fmt.Printf("[STATE] %s\n", s)

		case msg, ok := <-mgr.Updates():
			if !ok {
				return
			}
			received++
			if *verbose {
				data, _ := json.MarshalIndent(msg, "", "  ")
				fmt.Printf("[UPDATE] %s\n", data)
			} else {
				fmt.Printf("[UPDATE] ts=%s orders=%d bots=%d\n",
					msg.Timestamp, len(msg.Orders), len(msg.Bots))
			}
		}
	}
}
