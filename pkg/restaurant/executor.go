// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package restaurant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

var (
	restaurantIDPattern = regexp.MustCompile(`restaurant_id\s*=\s*(\d+)`)
	itemIDsPattern      = regexp.MustCompile(`menu_item_ids\s*=\s*\[([\d,\s]*)\]`)
)

// Executor answers A2A messages for the restaurant agent. Structured
// quote requests (a data part, or the host's quote instruction text)
// run through the estimator; anything else is treated as a free-text
// menu search.
type Executor struct {
	store     *Store
	estimator *Estimator
	logger    *slog.Logger
}

// NewExecutor creates the restaurant executor.
func NewExecutor(store *Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		store:     store,
		estimator: NewEstimator(store),
		logger:    logger,
	}
}

// Run implements the A2A server executor contract.
func (e *Executor) Run(ctx context.Context, message *a2av1.Message) (any, []*a2av1.Artifact, error) {
	if restaurantID, itemIDs, ok := quoteRequest(message); ok {
		e.logger.Debug("quote request", "restaurant_id", restaurantID, "item_ids", itemIDs)
		quote, err := e.estimator.QuoteOrder(ctx, restaurantID, itemIDs)
		if err != nil {
			return map[string]any{
				"error":         fmt.Sprintf("quote failed: %v", err),
				"restaurant_id": restaurantID,
			}, nil, nil
		}
		return toMap(quote), nil, nil
	}

	text := strings.TrimSpace(message.TextContent())
	if text == "" {
		return "Ask about restaurants or menu items, or request a quote with restaurant_id and menu_item_ids.", nil, nil
	}

	hits, err := e.store.SearchMenuItems(ctx, text, 10)
	if err != nil {
		return nil, nil, err
	}
	if len(hits) > 0 {
		return map[string]any{"results": hits}, nil, nil
	}

	restaurants, err := e.store.ListRestaurants(ctx, "", true, 10)
	if err != nil {
		return nil, nil, err
	}
	return map[string]any{
		"results":     []SearchHit{},
		"restaurants": restaurants,
		"note":        "No menu items matched; here are the open restaurants.",
	}, nil, nil
}

// quoteRequest extracts a structured quote request from either a data
// part or the instruction text the host sends.
func quoteRequest(message *a2av1.Message) (restaurantID int, itemIDs []int, ok bool) {
	if message == nil {
		return 0, nil, false
	}

	for _, part := range message.Parts {
		if part.Kind != a2av1.PartKindData || part.Data == nil {
			continue
		}
		id, idOK := numberField(part.Data, "restaurant_id")
		if !idOK {
			continue
		}
		return id, numberListField(part.Data, "menu_item_ids"), true
	}

	text := message.TextContent()
	idMatch := restaurantIDPattern.FindStringSubmatch(text)
	idsMatch := itemIDsPattern.FindStringSubmatch(text)
	if idMatch == nil || idsMatch == nil {
		return 0, nil, false
	}

	restaurantID, err := strconv.Atoi(idMatch[1])
	if err != nil {
		return 0, nil, false
	}
	for _, field := range strings.Split(idsMatch[1], ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.Atoi(field)
		if err != nil {
			return 0, nil, false
		}
		itemIDs = append(itemIDs, id)
	}
	return restaurantID, itemIDs, true
}

func numberField(data map[string]any, key string) (int, bool) {
	switch value := data[key].(type) {
	case float64:
		return int(value), true
	case int:
		return value, true
	case json.Number:
		if parsed, err := value.Int64(); err == nil {
			return int(parsed), true
		}
	}
	return 0, false
}

func numberListField(data map[string]any, key string) []int {
	raw, ok := data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		if id, ok := numberField(map[string]any{"v": item}, "v"); ok {
			out = append(out, id)
		}
	}
	return out
}

func toMap(value any) map[string]any {
	encoded, err := json.Marshal(value)
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return map[string]any{"error": err.Error()}
	}
	return out
}
