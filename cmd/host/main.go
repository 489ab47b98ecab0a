// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

// The host orchestrator resolves the rider and restaurant agents at
// startup and exposes a small HTTP API that relays text to either agent
// and requests structured order quotes.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jllopis/mealmesh/pkg/config"
	"github.com/jllopis/mealmesh/pkg/host"
	"github.com/jllopis/mealmesh/pkg/resilience"
	"github.com/jllopis/mealmesh/pkg/telemetry"
)

const version = "0.1.0"

func main() {
	var (
		configPath = flag.String("config", "", "Config file path")
		listen     = flag.String("listen", "", "Listen address override")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *listen != "" {
		cfg.Host.Listen = *listen
	}

	logger := telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, config.WithWatchLogger(logger))
		if err != nil {
			log.Fatalf("config watch: %v", err)
		}
		watcher.OnChange(func(updated *config.Config) {
			telemetry.SetLogLevel(updated.Log.Level)
		})
		watcher.Start(context.Background())
		defer watcher.Stop()
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig("host-orchestrator", version, telemetry.Config{
			Exporter:     cfg.Telemetry.Exporter,
			OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
			OTLPInsecure: true,
		})
		if err != nil {
			log.Fatalf("telemetry: %v", err)
		}
		defer func() {
			_ = shutdown(context.Background())
		}()
	}

	callTimeout := time.Duration(cfg.Host.CallTimeout) * time.Second
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	httpClient := &http.Client{Timeout: callTimeout}

	metrics, err := telemetry.NewMeshMetrics(context.Background())
	if err != nil {
		logger.Warn("metrics disabled", "error", err)
	}

	resolver := host.NewResolver(httpClient)

	// The three processes have no start ordering; retry startup
	// resolution while the agents come up. Unreachable endpoints are
	// recoverable, a bad address count or invalid card is not.
	var router *host.Router
	startupRetry := resilience.DefaultRetryConfig().
		WithMaxAttempts(5).
		WithInitialDelay(500 * time.Millisecond)
	err = startupRetry.Do(context.Background(), func() error {
		var routerErr error
		router, routerErr = host.NewRouter(context.Background(), resolver,
			[]string{cfg.Host.RiderURL, cfg.Host.RestaurantURL},
			host.WithMetrics(metrics),
			host.WithLogger(logger),
		)
		return routerErr
	})
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	api := host.NewAPI(router, host.DefaultDirectory(), logger)
	serve(logger, "host orchestrator", cfg.Host.Listen, api.Handler())
}

// serve runs the HTTP server until SIGINT/SIGTERM, then drains.
func serve(logger *slog.Logger, name, addr string, handler http.Handler) {
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(name+" listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("serve: %v", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
