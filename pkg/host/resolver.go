// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package host implements the orchestrator core: resolving remote agent
// endpoints, dispatching A2A envelopes and normalizing whatever comes back
// into text the caller can always reason about.
package host

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/jllopis/mealmesh/pkg/a2a/agentcard"
	"github.com/jllopis/mealmesh/pkg/a2a/client"
	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
	"github.com/jllopis/mealmesh/pkg/errors"
)

// Connection binds a remote agent's card to a reusable RPC client.
// Read-only after creation.
type Connection struct {
	BaseURL string
	Card    *a2av1.AgentCard
	Client  *client.Client
}

// Resolver fetches agent cards and caches the resulting connections for
// the process lifetime. Resolving the same address twice returns the
// cached connection.
type Resolver struct {
	httpClient *http.Client

	mu    sync.RWMutex
	cache map[string]*Connection
}

// NewResolver creates a resolver. A nil httpClient falls back to
// http.DefaultClient. There is no retry at this layer; resolution
// failures propagate to startup, where the caller decides.
func NewResolver(httpClient *http.Client) *Resolver {
	return &Resolver{
		httpClient: httpClient,
		cache:      make(map[string]*Connection),
	}
}

// Resolve fetches the agent card published at baseURL and binds a client
// to its RPC endpoint.
func (r *Resolver) Resolve(ctx context.Context, baseURL string) (*Connection, error) {
	r.mu.RLock()
	cached, ok := r.cache[baseURL]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	card, err := agentcard.Fetch(ctx, r.httpClient, baseURL)
	if err != nil {
		return nil, errors.New(errors.CodeUnreachable, "failed to fetch agent card", err).
			WithRecoverable(true).
			WithContext("url", baseURL)
	}
	if err := agentcard.Validate(card); err != nil {
		return nil, errors.New(errors.CodeInvalidCard, "agent card is invalid", err).
			WithContext("url", baseURL)
	}

	// The card may advertise an RPC endpoint of its own; fall back to the
	// address the card was fetched from when it does not.
	endpoint := strings.TrimSpace(card.URL)
	if endpoint == "" {
		endpoint = baseURL
	}
	conn := &Connection{
		BaseURL: baseURL,
		Card:    card,
		Client:  client.New(endpoint, client.WithHTTPClient(r.httpClient)),
	}

	r.mu.Lock()
	// Another goroutine may have resolved concurrently; first one wins so
	// repeated resolution stays idempotent.
	if existing, ok := r.cache[baseURL]; ok {
		conn = existing
	} else {
		r.cache[baseURL] = conn
	}
	r.mu.Unlock()

	slog.Debug("resolved remote agent",
		"url", baseURL,
		"agent", card.Name,
		"version", card.Version,
	)
	return conn, nil
}
