// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

// The rider agent answers distance/ETA questions over A2A JSON-RPC by
// wrapping the Routes API, or exposes get_directions over MCP stdio
// with -mcp.
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

	"github.com/jllopis/mealmesh/pkg/a2a/agentcard"
	"github.com/jllopis/mealmesh/pkg/a2a/server"
	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
	"github.com/jllopis/mealmesh/pkg/config"
	"github.com/jllopis/mealmesh/pkg/rider"
	"github.com/jllopis/mealmesh/pkg/telemetry"
)

const version = "0.1.0"

func main() {
	var (
		configPath = flag.String("config", "", "Config file path")
		listen     = flag.String("listen", "", "Listen address override")
		mcpMode    = flag.Bool("mcp", false, "Serve tools over MCP stdio instead of A2A HTTP")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *listen != "" {
		cfg.Rider.Listen = *listen
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

	maps, err := rider.NewMaps(cfg.Rider.MapsAPIKey, rider.WithEndpoint(cfg.Rider.RoutesEndpoint))
	if err != nil {
		log.Fatalf("maps: %v", err)
	}

	if *mcpMode {
		if err := rider.NewMCPServer(maps, version).ServeStdio(); err != nil {
			log.Fatalf("mcp: %v", err)
		}
		return
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig("rider-agent", version, telemetry.Config{
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

	card := agentcard.Build(agentcard.Config{
		ProtocolVersion: "0.3.0",
		Name:            "rider_agent",
		Description:     "Computes travel distance and ETA between restaurant and customer.",
		Version:         version,
		Skills: []a2av1.AgentSkill{{
			ID:          "assign_and_eta",
			Name:        "Assign rider and compute ETA",
			Description: "Compute travel distance and ETA between restaurant and customer.",
			Tags:        []string{"rider", "eta", "route"},
		}},
	})

	handler := &server.SimpleHandler{
		Store:  server.NewMemoryTaskStore(),
		Exec:   rider.NewExecutor(maps, logger),
		Card:   card,
		Logger: logger,
	}

	mux := http.NewServeMux()
	mux.Handle(agentcard.WellKnownPath, agentcard.PublishHandler(card))
	mux.Handle("/", server.NewJSONRPC(handler))

	serve(logger, "rider agent", cfg.Rider.Listen, mux)
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
