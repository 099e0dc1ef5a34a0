package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fastroute/console/internal/api"
	"github.com/fastroute/console/internal/config"
	"github.com/fastroute/console/internal/dashboard"
	"github.com/fastroute/console/internal/metrics"
	"github.com/fastroute/console/internal/stream"
	"github.com/fastroute/console/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/console.yaml", "path to config file")
	flag.Parse()

	// Environment variables referenced by the config file may live in a
	// local .env during development. Missing file is fine.
	_ = godotenv.Load()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting console",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"api_url", cfg.API.BaseURL,
		"stream_url", cfg.Stream.URL,
		"poll_interval", cfg.Poller.Interval,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Create REST client
	apiClient := api.NewClient(
		cfg.API.BaseURL,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, time.Second),
	)

	// Create push channel manager
	streamMgr := stream.NewManager(stream.ManagerConfig{
		URL:                cfg.Stream.URL,
		ReconnectBaseDelay: cfg.Stream.ReconnectBaseDelay,
		ReconnectMaxDelay:  cfg.Stream.ReconnectMaxDelay,
		PingTimeout:        cfg.Stream.PingTimeout,
		BufferSize:         cfg.Stream.BufferSize,
	}, logger)

	met := metrics.New()

	controller := dashboard.New(
		apiClient,
		streamMgr,
		dashboard.Config{PollInterval: cfg.Poller.Interval},
		met,
		logger,
	)

	// Start metrics/health server early so startup is observable
	obsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: createObsHandler(cfg.Metrics.Path, met, controller),
	}
	go func() {
		logger.Info("starting observability server", "port", cfg.Metrics.Port, "path", cfg.Metrics.Path)
		if err := obsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("observability server error", "error", err)
		}
	}()

	if err := controller.Start(ctx); err != nil {
		logger.Error("failed to start controller", "error", err)
		os.Exit(1)
	}

	logger.Info("console running",
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := controller.Teardown(shutdownCtx); err != nil {
		logger.Warn("controller teardown incomplete", "error", err)
	}
	obsServer.Shutdown(shutdownCtx)

	logger.Info("console stopped")
}

// createObsHandler serves Prometheus metrics and the health endpoint.
func createObsHandler(metricsPath string, met *metrics.Metrics, controller *dashboard.Controller) http.Handler {
	mux := http.NewServeMux()

	mux.Handle(metricsPath, met.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		health.Components["stream"] = string(controller.StreamState())

		snap := controller.Snapshot()
		if snap == nil {
			health.Status = "degraded"
			health.Components["snapshot"] = "none"
		} else {
			health.Components["snapshot"] = map[string]interface{}{
				"orders": len(snap.Orders),
				"age":    time.Since(snap.Fetched).String(),
			}
		}

		if err := controller.LastError(); err != nil {
			health.Status = "degraded"
			health.Components["refresh"] = map[string]string{
				"status": "failing",
				"error":  err.Error(),
			}
		} else {
			health.Components["refresh"] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
