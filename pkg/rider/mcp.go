// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package rider

import (
	"context"

	mcpsdk "github.com/mark3labs/mcp-go/mcp"

	"github.com/jllopis/mealmesh/pkg/mcp"
)

// NewMCPServer exposes the Routes API wrapper as an MCP tool over
// stdio, mirroring the A2A executor's capability for local tool hosts.
func NewMCPServer(maps *Maps, version string) *mcp.Server {
	srv := mcp.NewServer("rider-agent", version)

	srv.AddTool(mcpsdk.NewTool("get_directions",
		mcpsdk.WithDescription("Compute driving distance and ETA between two addresses or lat,lng pairs."),
		mcpsdk.WithString("origin", mcpsdk.Required(), mcpsdk.Description("Start address or 'lat,lng'.")),
		mcpsdk.WithString("destination", mcpsdk.Required(), mcpsdk.Description("End address or 'lat,lng'.")),
	), func(ctx context.Context, args map[string]interface{}) (*mcpsdk.CallToolResult, error) {
		directions, err := maps.GetDirections(ctx,
			mcp.String(args, "origin", ""),
			mcp.String(args, "destination", ""))
		if err != nil {
			return nil, err
		}
		return mcp.JSONResult(directions)
	})

	return srv
}
