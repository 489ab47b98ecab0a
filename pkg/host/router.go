// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
	"github.com/jllopis/mealmesh/pkg/errors"
	"github.com/jllopis/mealmesh/pkg/telemetry"
)

// Agent selects one of the two bound remote agents.
type Agent string

const (
	AgentRider      Agent = "rider"
	AgentRestaurant Agent = "restaurant"
)

// Router is the orchestration façade over the two remote agents. It is
// the no-throw boundary: every public operation returns a string and
// converts internal failures into descriptive payloads.
//
// Connections are read-only after NewRouter, so a Router is safe for
// concurrent use.
type Router struct {
	rider      *Connection
	restaurant *Connection
	metrics    *telemetry.MeshMetrics
	logger     *slog.Logger
}

// RouterOption configures the router.
type RouterOption func(*Router)

// WithMetrics attaches call and normalization metrics.
func WithMetrics(metrics *telemetry.MeshMetrics) RouterOption {
	return func(r *Router) {
		r.metrics = metrics
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRouter resolves the remote agents and binds them. Exactly two
// addresses are required, in order: rider, restaurant.
func NewRouter(ctx context.Context, resolver *Resolver, addresses []string, opts ...RouterOption) (*Router, error) {
	if len(addresses) != 2 {
		return nil, errors.New(errors.CodeConfiguration,
			fmt.Sprintf("expected exactly 2 endpoints (rider, restaurant), got %d", len(addresses)), nil)
	}

	rider, err := resolver.Resolve(ctx, addresses[0])
	if err != nil {
		return nil, err
	}
	restaurant, err := resolver.Resolve(ctx, addresses[1])
	if err != nil {
		return nil, err
	}

	r := &Router{
		rider:      rider,
		restaurant: restaurant,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Connection returns the bound connection for the given agent.
func (r *Router) Connection(agent Agent) *Connection {
	if agent == AgentRider {
		return r.rider
	}
	return r.restaurant
}

// Relay sends free text to the selected agent and returns the
// normalized reply. It never returns an error: send failures come back
// as descriptive text the caller can inspect.
func (r *Router) Relay(ctx context.Context, agent Agent, text string) string {
	conn := r.Connection(agent)
	if conn == nil {
		return fmt.Sprintf("REMOTE_CALL_FAILED(%s): no connection bound", agent)
	}

	ctx, span := otel.Tracer("mealmesh/host").Start(ctx, "host.relay",
		trace.WithAttributes(telemetry.AgentAttributes(string(agent), conn.BaseURL)...))
	defer span.End()

	message := a2av1.NewTextMessage(a2av1.RoleUser, text, "", "")
	r.logger.Debug("a2a send", "agent", agent, "message_id", message.MessageID, "text", text)

	start := time.Now()
	resp, err := conn.Client.SendMessage(ctx, &a2av1.SendMessageRequest{
		Request:       message,
		Configuration: &a2av1.SendMessageConfiguration{Blocking: true},
	})
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0
	r.metrics.RecordCall(ctx, string(agent), "SendMessage", durationMs, err == nil)
	span.SetAttributes(telemetry.CallAttributes(string(agent), "SendMessage", durationMs, err == nil)...)

	if err != nil {
		r.metrics.RecordError(ctx, err, "host")
		span.RecordError(err)
		r.logger.Warn("a2a send failed", "agent", agent, "error", err)
		return fmt.Sprintf("REMOTE_CALL_FAILED(%s): %v", agent, err)
	}

	reply, tier := extractText(resp.Decode())
	r.metrics.RecordNormalizeTier(ctx, tier)
	span.SetAttributes(attribute.String(telemetry.AttrNormalizeTier, tier))
	r.logger.Debug("a2a recv", "agent", agent, "tier", tier, "text", reply)
	return reply
}

// QuoteOrder asks the restaurant agent for the total price and prep
// time of the given menu items. The reply is relayed verbatim; the
// router does not parse the returned JSON, error detection (an "error"
// key) belongs to the downstream consumer. Any internal failure is
// converted into an error JSON payload carrying the inputs.
func (r *Router) QuoteOrder(ctx context.Context, restaurantID int, itemIDs []int) string {
	query := quoteInstruction(restaurantID, itemIDs)
	reply := r.Relay(ctx, AgentRestaurant, query)

	// Relay folds transport failures into a diagnostic prefix rather
	// than an error value; re-shape those into the structured contract.
	if isRelayFailure(reply) {
		return quoteError(reply, restaurantID, itemIDs)
	}
	return reply
}

func quoteInstruction(restaurantID int, itemIDs []int) string {
	ids, _ := json.Marshal(itemIDs)
	return fmt.Sprintf(
		"You are the RestaurantAgent. "+
			"Given restaurant_id=%d and menu_item_ids=%s, "+
			"please use your tools (get_restaurant, get_menu, estimate_prep_time) to:\n"+
			"1. Validate the restaurant exists.\n"+
			"2. Fetch the menu items and their prices.\n"+
			"3. Compute the total price of the selected items.\n"+
			"4. Estimate the preparation time in minutes.\n\n"+
			"Return ONLY a JSON object with keys:\n"+
			"  restaurant_id, restaurant_name, item_ids, total_price, estimated_prep_minutes.\n"+
			"Do not include any additional commentary outside the JSON.\n"+
			"If there is any problem (e.g. restaurant not found, DB error), "+
			"return a JSON object with a top-level key \"error\" and a helpful "+
			"error message string.",
		restaurantID, ids)
}

func isRelayFailure(reply string) bool {
	return len(reply) >= len("REMOTE_CALL_FAILED") && reply[:len("REMOTE_CALL_FAILED")] == "REMOTE_CALL_FAILED"
}

func quoteError(description string, restaurantID int, itemIDs []int) string {
	payload := map[string]any{
		"error":         description,
		"restaurant_id": restaurantID,
		"item_ids":      itemIDs,
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, description)
	}
	return string(encoded)
}
