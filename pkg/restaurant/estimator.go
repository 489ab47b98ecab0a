// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package restaurant

import (
	"context"

	"go.opentelemetry.io/otel"

	"github.com/jllopis/mealmesh/pkg/telemetry"
)

// EstimateItem is one matched menu item inside an estimate.
type EstimateItem struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	AvgPrepMinutes int    `json:"avg_prep_minutes"`
}

// Estimate is the prep-time result. Expected conditions (unknown
// restaurant, empty selection, no matches) come back with a Note and a
// degraded estimate instead of an error.
type Estimate struct {
	RestaurantID         int            `json:"restaurant_id"`
	RestaurantName       string         `json:"restaurant_name,omitempty"`
	Items                []EstimateItem `json:"items"`
	EstimatedPrepMinutes int            `json:"estimated_prep_minutes"`
	Note                 string         `json:"note,omitempty"`
}

// Quote is the combined price + prep-time result relayed to the host.
// Unmatched ids are excluded from the total and surfaced in
// MissingItemIDs so the consumer can spot partial matches.
type Quote struct {
	RestaurantID         int     `json:"restaurant_id"`
	RestaurantName       string  `json:"restaurant_name,omitempty"`
	ItemIDs              []int   `json:"item_ids"`
	TotalPrice           float64 `json:"total_price"`
	EstimatedPrepMinutes int     `json:"estimated_prep_minutes"`
	MissingItemIDs       []int   `json:"missing_item_ids,omitempty"`
	Note                 string  `json:"note,omitempty"`
}

// Estimator computes deterministic prep-time and price aggregates over
// the reference store.
type Estimator struct {
	store *Store
}

// NewEstimator creates an estimator over the given store.
func NewEstimator(store *Store) *Estimator {
	return &Estimator{store: store}
}

// EstimatePrepTime estimates kitchen time for the selected items.
//
// The heuristic assumes parallel preparation: the estimate is the prep
// time of the slowest item, floored by the restaurant baseline. A null
// baseline counts as 0; items with null prep fall back to the baseline.
// An error is returned only for store failures.
func (e *Estimator) EstimatePrepTime(ctx context.Context, restaurantID int, itemIDs []int) (*Estimate, error) {
	if len(itemIDs) == 0 {
		return &Estimate{
			RestaurantID:         restaurantID,
			Items:                []EstimateItem{},
			EstimatedPrepMinutes: 0,
			Note:                 "No menu_item_ids provided.",
		}, nil
	}

	rest, err := e.store.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if rest == nil {
		return &Estimate{
			RestaurantID:         restaurantID,
			Items:                []EstimateItem{},
			EstimatedPrepMinutes: 0,
			Note:                 "Restaurant not found.",
		}, nil
	}

	basePrep := 0
	if rest.AvgPrepMinutes != nil {
		basePrep = *rest.AvgPrepMinutes
	}

	matched, err := e.store.MenuItemsByIDs(ctx, restaurantID, itemIDs)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return &Estimate{
			RestaurantID:         restaurantID,
			RestaurantName:       rest.Name,
			Items:                []EstimateItem{},
			EstimatedPrepMinutes: basePrep,
			Note:                 "No matching menu items found.",
		}, nil
	}

	items := make([]EstimateItem, 0, len(matched))
	maxItemPrep := 0
	for _, m := range matched {
		prep := basePrep
		if m.AvgPrepMinutes != nil {
			prep = *m.AvgPrepMinutes
		}
		if prep > maxItemPrep {
			maxItemPrep = prep
		}
		items = append(items, EstimateItem{ID: m.ID, Name: m.Name, AvgPrepMinutes: prep})
	}

	est := basePrep
	if maxItemPrep > est {
		est = maxItemPrep
	}

	return &Estimate{
		RestaurantID:         restaurantID,
		RestaurantName:       rest.Name,
		Items:                items,
		EstimatedPrepMinutes: est,
	}, nil
}

// QuotePrice sums the prices of exactly the matched items. Order of
// itemIDs does not affect the total; ids with no matching row are
// excluded from the sum and reported separately.
func (e *Estimator) QuotePrice(ctx context.Context, restaurantID int, itemIDs []int) (total float64, missing []int, err error) {
	matched, err := e.store.MenuItemsByIDs(ctx, restaurantID, itemIDs)
	if err != nil {
		return 0, nil, err
	}

	found := make(map[int]bool, len(matched))
	for _, m := range matched {
		total += m.Price
		found[m.ID] = true
	}
	seen := make(map[int]bool, len(itemIDs))
	for _, id := range itemIDs {
		if !found[id] && !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	return total, missing, nil
}

// QuoteOrder combines QuotePrice and EstimatePrepTime into the payload
// the host relays verbatim.
func (e *Estimator) QuoteOrder(ctx context.Context, restaurantID int, itemIDs []int) (*Quote, error) {
	ctx, span := otel.Tracer("mealmesh/restaurant").Start(ctx, "restaurant.quote_order")
	defer span.End()

	estimate, err := e.EstimatePrepTime(ctx, restaurantID, itemIDs)
	if err != nil {
		return nil, err
	}
	total, missing, err := e.QuotePrice(ctx, restaurantID, itemIDs)
	if err != nil {
		return nil, err
	}

	ids := itemIDs
	if ids == nil {
		ids = []int{}
	}
	span.SetAttributes(telemetry.OrderAttributes(restaurantID, len(ids), estimate.EstimatedPrepMinutes)...)
	return &Quote{
		RestaurantID:         restaurantID,
		RestaurantName:       estimate.RestaurantName,
		ItemIDs:              ids,
		TotalPrice:           total,
		EstimatedPrepMinutes: estimate.EstimatedPrepMinutes,
		MissingItemIDs:       missing,
		Note:                 estimate.Note,
	}, nil
}
