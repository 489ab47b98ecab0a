// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package restaurant

import (
	"context"

	mcpsdk "github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/mealmesh/pkg/mcp"
)

// NewMCPServer exposes the reference store and estimator as MCP tools
// over stdio, mirroring the A2A executor's capabilities for local tool
// hosts.
func NewMCPServer(store *Store, version string) *mcp.Server {
	srv := mcp.NewServer("restaurant-agent", version)
	estimator := NewEstimator(store)

	srv.AddTool(mcpsdk.NewTool("list_restaurants",
		mcpsdk.WithDescription("List restaurants with optional cuisine filter."),
		mcpsdk.WithString("cuisine_filter", mcpsdk.Description("Filter by cuisine, case-insensitive.")),
		mcpsdk.WithBoolean("only_open", mcpsdk.Description("Only return open restaurants.")),
		mcpsdk.WithNumber("limit", mcpsdk.Description("Maximum number of rows.")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpsdk.CallToolResult, error) {
		rows, err := store.ListRestaurants(ctx,
			mcp.String(args, "cuisine_filter", ""),
			mcp.Bool(args, "only_open", true),
			mcp.Int(args, "limit", 10))
		if err != nil {
			return nil, err
		}
		return mcp.JSONResult(rows)
	})

	srv.AddTool(mcpsdk.NewTool("get_restaurant",
		mcpsdk.WithDescription("Get details of a single restaurant by id."),
		mcpsdk.WithNumber("restaurant_id", mcpsdk.Required()),
	), func(ctx context.Context, args map[string]interface{}) (*mcpsdk.CallToolResult, error) {
		row, err := store.GetRestaurant(ctx, mcp.Int(args, "restaurant_id", 0))
		if err != nil {
			return nil, err
		}
		return mcp.JSONResult(row)
	})

	srv.AddTool(mcpsdk.NewTool("get_menu",
		mcpsdk.WithDescription("Get the menu for a given restaurant."),
		mcpsdk.WithNumber("restaurant_id", mcpsdk.Required()),
		mcpsdk.WithBoolean("only_available", mcpsdk.Description("Only return available items.")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpsdk.CallToolResult, error) {
		rows, err := store.GetMenu(ctx,
			mcp.Int(args, "restaurant_id", 0),
			mcp.Bool(args, "only_available", true))
		if err != nil {
			return nil, err
		}
		return mcp.JSONResult(rows)
	})

	srv.AddTool(mcpsdk.NewTool("search_menu_items",
		mcpsdk.WithDescription("Text search over menu items by name and description."),
		mcpsdk.WithString("text", mcpsdk.Required()),
		mcpsdk.WithNumber("limit", mcpsdk.Description("Maximum number of rows.")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpsdk.CallToolResult, error) {
		rows, err := store.SearchMenuItems(ctx,
			mcp.String(args, "text", ""),
			mcp.Int(args, "limit", 10))
		if err != nil {
			return nil, err
		}
		return mcp.JSONResult(rows)
	})

	srv.AddTool(mcpsdk.NewTool("estimate_prep_time",
		mcpsdk.WithDescription("Estimate preparation time in minutes for selected menu items."),
		mcpsdk.WithNumber("restaurant_id", mcpsdk.Required()),
		mcpsdk.WithArray("menu_item_ids", mcpsdk.Required()),
	), func(ctx context.Context, args map[string]interface{}) (*mcpsdk.CallToolResult, error) {
		estimate, err := estimator.EstimatePrepTime(ctx,
			mcp.Int(args, "restaurant_id", 0),
			mcp.IntSlice(args, "menu_item_ids"))
		if err != nil {
			return nil, err
		}
		return mcp.JSONResult(estimate)
	})

	srv.AddTool(mcpsdk.NewTool("quote_order",
		mcpsdk.WithDescription("Compute total price and prep time for selected menu items."),
		mcpsdk.WithNumber("restaurant_id", mcpsdk.Required()),
		mcpsdk.WithArray("menu_item_ids", mcpsdk.Required()),
	), func(ctx context.Context, args map[string]interface{}) (*mcpsdk.CallToolResult, error) {
		quote, err := estimator.QuoteOrder(ctx,
			mcp.Int(args, "restaurant_id", 0),
			mcp.IntSlice(args, "menu_item_ids"))
		if err != nil {
			return nil, err
		}
		return mcp.JSONResult(quote)
	})

	return srv
}
