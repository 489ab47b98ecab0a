// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

// API is the host's HTTP surface. It exposes the two façade operations
// plus a view of the resolved agents; all request parsing stops here and
// the Router's no-throw contract keeps handler bodies error-free.
type API struct {
	router    *Router
	directory *Directory
	logger    *slog.Logger
}

// NewAPI wires the HTTP surface over a router and a name directory.
func NewAPI(router *Router, directory *Directory, logger *slog.Logger) *API {
	if directory == nil {
		directory = DefaultDirectory()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &API{router: router, directory: directory, logger: logger}
}

// Handler returns the mux serving the host endpoints.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/v1/agents", a.handleAgents)
	mux.HandleFunc("/v1/relay", a.handleRelay)
	mux.HandleFunc("/v1/quote", a.handleQuote)
	return mux
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "GET only"})
		return
	}
	cards := map[string]*a2av1.AgentCard{}
	for _, agent := range []Agent{AgentRider, AgentRestaurant} {
		if conn := a.router.Connection(agent); conn != nil {
			cards[string(agent)] = conn.Card
		}
	}
	writeJSON(w, http.StatusOK, cards)
}

type relayRequest struct {
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

func (a *API) handleRelay(w http.ResponseWriter, r *http.Request) {
	var req relayRequest
	if !decodeBody(w, r, &req) {
		return
	}
	agent := Agent(strings.ToLower(strings.TrimSpace(req.Agent)))
	if agent != AgentRider && agent != AgentRestaurant {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown agent %q, want %q or %q", req.Agent, AgentRider, AgentRestaurant),
		})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	reply := a.router.Relay(r.Context(), agent, req.Text)
	writeJSON(w, http.StatusOK, map[string]string{"agent": string(agent), "reply": reply})
}

// quoteRequest accepts either numeric ids or names; names are resolved
// through the directory before the façade call.
type quoteRequest struct {
	RestaurantID int      `json:"restaurant_id"`
	Restaurant   string   `json:"restaurant"`
	ItemIDs      []int    `json:"item_ids"`
	Items        []string `json:"items"`
}

func (a *API) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	restaurantID := req.RestaurantID
	if restaurantID == 0 && req.Restaurant != "" {
		id, ok := a.directory.RestaurantID(req.Restaurant)
		if !ok {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("unknown restaurant %q", req.Restaurant),
			})
			return
		}
		restaurantID = id
	}
	if restaurantID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "restaurant or restaurant_id is required"})
		return
	}

	itemIDs := req.ItemIDs
	var unknown []string
	if len(itemIDs) == 0 && len(req.Items) > 0 {
		itemIDs, unknown = a.directory.ItemIDs(restaurantID, req.Items)
	}

	reply := a.router.QuoteOrder(r.Context(), restaurantID, itemIDs)

	response := map[string]any{
		"restaurant_id": restaurantID,
		"item_ids":      itemIDs,
		"quote":         json.RawMessage(quoteJSON(reply)),
	}
	if len(unknown) > 0 {
		response["unknown_items"] = unknown
	}
	writeJSON(w, http.StatusOK, response)
}

// quoteJSON keeps the quote field valid JSON even when the remote reply
// is free text rather than the requested JSON object.
func quoteJSON(reply string) []byte {
	trimmed := strings.TrimSpace(reply)
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed)
	}
	encoded, err := json.Marshal(map[string]string{"text": reply})
	if err != nil {
		return []byte(`{}`)
	}
	return encoded
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
