// Package mcp wraps the mcp-go server for the Mealmesh tool surfaces.
package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel"

	"github.com/jllopis/mealmesh/pkg/telemetry"
)

// Server wraps the mcp-go server to provide Mealmesh-specific helpers.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server.
func NewServer(name, version string) *Server {
	return &Server{
		mcpServer: server.NewMCPServer(name, version),
	}
}

// Handler receives the decoded tool arguments.
type Handler func(ctx context.Context, args map[string]interface{}) (*mcp.CallToolResult, error)

// AddTool registers a tool with the server. Every invocation gets a
// span carrying the tool name, duration and truncated arguments.
func (s *Server) AddTool(tool mcp.Tool, handler Handler) {
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := otel.Tracer("mealmesh/mcp").Start(ctx, "mcp.tool/"+tool.Name)
		defer span.End()

		args, _ := request.Params.Arguments.(map[string]interface{})
		if encoded, err := json.Marshal(args); err == nil {
			span.SetAttributes(telemetry.ToolCallArgsResult(string(encoded), "", 0)...)
		}

		start := time.Now()
		result, err := handler(ctx, args)
		durationMs := float64(time.Since(start).Microseconds()) / 1000.0
		span.SetAttributes(telemetry.ToolCallAttributes(tool.Name, durationMs, err == nil)...)
		if err != nil {
			span.RecordError(err)
		}
		return result, err
	})
}

// ServeStdio starts the server on Stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// JSONResult marshals a value into a text tool result.
func JSONResult(value any) (*mcp.CallToolResult, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(encoded)), nil
}
