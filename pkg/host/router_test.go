// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jllopis/mealmesh/pkg/a2a/agentcard"
	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
	"github.com/jllopis/mealmesh/pkg/errors"
	"github.com/jllopis/mealmesh/pkg/resilience"
)

// fakeAgent serves an agent card and answers SendMessage with a fixed
// task whose status message echoes the reply text.
func fakeAgent(t *testing.T, name, reply string) *httptest.Server {
	t.Helper()
	card := agentcard.Build(agentcard.Config{Name: name, Version: "0.1.0"})

	mux := http.NewServeMux()
	mux.Handle(agentcard.WellKnownPath, agentcard.PublishHandler(card))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID json.RawMessage `json:"id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		task := &a2av1.Task{
			ID: "task-1",
			Status: &a2av1.TaskStatus{
				State:   a2av1.TaskStateCompleted,
				Message: a2av1.NewTextMessage(a2av1.RoleAgent, reply, "", "task-1"),
			},
		}
		result, _ := json.Marshal(task)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  json.RawMessage(result),
		})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestNewRouterRequiresTwoEndpoints(t *testing.T) {
	resolver := NewResolver(nil)
	_, err := NewRouter(context.Background(), resolver, []string{"http://localhost:1"})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !errors.IsCode(err, errors.CodeConfiguration) {
		t.Errorf("expected CONFIGURATION code, got %v", err)
	}
}

func TestResolveUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	resolver := NewResolver(nil)
	_, err := resolver.Resolve(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected unreachable error")
	}
	if !errors.IsCode(err, errors.CodeUnreachable) {
		t.Errorf("expected ENDPOINT_UNREACHABLE code, got %v", err)
	}
}

func TestResolveInvalidCard(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(agentcard.WellKnownPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", agentcard.DefaultMediaType)
		_, _ = w.Write([]byte(`{"description": "card with no name"}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	resolver := NewResolver(nil)
	_, err := resolver.Resolve(context.Background(), server.URL)
	if err == nil {
		t.Fatal("expected invalid card error")
	}
	if !errors.IsCode(err, errors.CodeInvalidCard) {
		t.Errorf("expected INVALID_AGENT_CARD code, got %v", err)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	server := fakeAgent(t, "rider-agent", "ok")

	resolver := NewResolver(nil)
	first, err := resolver.Resolve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	second, err := resolver.Resolve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if first != second {
		t.Error("re-resolving the same address must return the cached connection")
	}
	if first.Card.Name != second.Card.Name || first.Card.Version != second.Card.Version {
		t.Error("capability descriptors must be identical across resolutions")
	}
}

func TestResolveBindsToCardEndpoint(t *testing.T) {
	// The card advertises an RPC endpoint distinct from the discovery
	// address; the client must bind to the advertised one.
	card := agentcard.Build(agentcard.Config{
		Name:    "rider-agent",
		Version: "0.1.0",
		URL:     "http://rpc.internal:9999/a2a",
	})
	mux := http.NewServeMux()
	mux.Handle(agentcard.WellKnownPath, agentcard.PublishHandler(card))
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	conn, err := NewResolver(nil).Resolve(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := conn.Client.Endpoint(); got != "http://rpc.internal:9999/a2a" {
		t.Errorf("expected client bound to advertised endpoint, got %q", got)
	}

	// Without an advertised endpoint the discovery address is used.
	plain := fakeAgent(t, "restaurant-agent", "ok")
	conn, err = NewResolver(nil).Resolve(context.Background(), plain.URL)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got := conn.Client.Endpoint(); got != plain.URL {
		t.Errorf("expected fallback to discovery address, got %q", got)
	}
}

func newTestRouter(t *testing.T, riderReply, restaurantReply string) *Router {
	t.Helper()
	rider := fakeAgent(t, "rider-agent", riderReply)
	restaurant := fakeAgent(t, "restaurant-agent", restaurantReply)

	router, err := NewRouter(context.Background(), NewResolver(nil), []string{rider.URL, restaurant.URL})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	return router
}

func TestRelayRoutesToSelectedAgent(t *testing.T) {
	router := newTestRouter(t, "eta is 12.2 minutes", "menu has 3 items")

	if got := router.Relay(context.Background(), AgentRider, "how far?"); got != "eta is 12.2 minutes" {
		t.Errorf("rider relay returned %q", got)
	}
	if got := router.Relay(context.Background(), AgentRestaurant, "what is on the menu?"); got != "menu has 3 items" {
		t.Errorf("restaurant relay returned %q", got)
	}
}

func TestQuoteOrderRelaysVerbatim(t *testing.T) {
	reply := `{"restaurant_id": 1, "restaurant_name": "Spice Hub", "item_ids": [1, 2], "total_price": 340.0, "estimated_prep_minutes": 25}`
	router := newTestRouter(t, "", reply)

	got := router.QuoteOrder(context.Background(), 1, []int{1, 2})
	if got != reply {
		t.Errorf("quote must be relayed verbatim, got %q", got)
	}
}

func TestQuoteOrderConvertsFailuresToErrorJSON(t *testing.T) {
	rider := fakeAgent(t, "rider-agent", "ok")
	restaurant := fakeAgent(t, "restaurant-agent", "ok")
	router, err := NewRouter(context.Background(), NewResolver(nil), []string{rider.URL, restaurant.URL})
	if err != nil {
		t.Fatalf("NewRouter failed: %v", err)
	}
	restaurant.Close()

	got := router.QuoteOrder(context.Background(), 1, []int{1, 2})

	var decoded struct {
		Error        string `json:"error"`
		RestaurantID int    `json:"restaurant_id"`
		ItemIDs      []int  `json:"item_ids"`
	}
	if err := json.Unmarshal([]byte(got), &decoded); err != nil {
		t.Fatalf("failure payload must be JSON: %v (%q)", err, got)
	}
	if decoded.Error == "" {
		t.Error("expected a non-empty error description")
	}
	if decoded.RestaurantID != 1 || len(decoded.ItemIDs) != 2 {
		t.Errorf("failure payload must echo the inputs: %+v", decoded)
	}
}

func TestQuoteInstructionCarriesContract(t *testing.T) {
	query := quoteInstruction(1, []int{1, 2})
	for _, want := range []string{"restaurant_id=1", "menu_item_ids=[1,2]", "Return ONLY a JSON object", `"error"`} {
		if !strings.Contains(query, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
}

func TestResolveRetriesUntilCardAvailable(t *testing.T) {
	card := agentcard.Build(agentcard.Config{Name: "rider_agent", Version: "0.1.0"})
	var requests int
	mux := http.NewServeMux()
	mux.HandleFunc(agentcard.WellKnownPath, func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", agentcard.DefaultMediaType)
		_ = json.NewEncoder(w).Encode(card)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	// Startup wiring retries resolution while agents come up; the
	// resolver itself stays retry-free.
	resolver := NewResolver(nil)
	var conn *Connection
	rc := resilience.DefaultRetryConfig().WithInitialDelay(time.Millisecond).WithMaxAttempts(5)
	err := rc.Do(context.Background(), func() error {
		resolved, resolveErr := resolver.Resolve(context.Background(), server.URL)
		if resolveErr != nil {
			return resolveErr
		}
		conn = resolved
		return nil
	})
	if err != nil {
		t.Fatalf("Resolve should succeed once the agent is up: %v", err)
	}
	if conn.Card.Name != "rider_agent" {
		t.Errorf("unexpected card %+v", conn.Card)
	}
	if requests != 3 {
		t.Errorf("expected 3 fetch attempts, got %d", requests)
	}
}
