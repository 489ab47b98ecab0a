// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

// The restaurant agent serves reference data (restaurants, menus) and
// deterministic quotes over A2A JSON-RPC, or exposes the same tools over
// MCP stdio with -mcp.
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
	"github.com/jllopis/mealmesh/pkg/restaurant"
	"github.com/jllopis/mealmesh/pkg/telemetry"
)

const version = "0.1.0"

func main() {
	var (
		configPath = flag.String("config", "", "Config file path")
		listen     = flag.String("listen", "", "Listen address override")
		dbPath     = flag.String("db", "", "SQLite database path override")
		mcpMode    = flag.Bool("mcp", false, "Serve tools over MCP stdio instead of A2A HTTP")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *listen != "" {
		cfg.Restaurant.Listen = *listen
	}
	if *dbPath != "" {
		cfg.Restaurant.DBPath = *dbPath
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

	store, err := restaurant.OpenStore(cfg.Restaurant.DBPath)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer store.Close()
	if err := store.Init(context.Background()); err != nil {
		log.Fatalf("store init: %v", err)
	}

	if *mcpMode {
		if err := restaurant.NewMCPServer(store, version).ServeStdio(); err != nil {
			log.Fatalf("mcp: %v", err)
		}
		return
	}

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitWithConfig("restaurant-agent", version, telemetry.Config{
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

	taskStore, err := server.NewSQLiteTaskStore(store.DB())
	if err != nil {
		log.Fatalf("task store: %v", err)
	}

	card := agentcard.Build(agentcard.Config{
		ProtocolVersion: "0.3.0",
		Name:            "restaurant_agent",
		Description:     "Answers menu and availability questions and quotes price and prep time for an order.",
		Version:         version,
		Skills: []a2av1.AgentSkill{{
			ID:          "restaurant_info",
			Name:        "Menus, availability and quotes",
			Description: "Search menus, list restaurants, and compute order totals with prep-time estimates.",
			Tags:        []string{"restaurant", "menu", "quote"},
		}},
	})

	handler := &server.SimpleHandler{
		Store:  taskStore,
		Exec:   restaurant.NewExecutor(store, logger),
		Card:   card,
		Logger: logger,
	}

	mux := http.NewServeMux()
	mux.Handle(agentcard.WellKnownPath, agentcard.PublishHandler(card))
	mux.Handle("/", server.NewJSONRPC(handler))

	serve(logger, "restaurant agent", cfg.Restaurant.Listen, mux)
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
