// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration with rich attributes
// for delivery-mesh observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for Mealmesh telemetry.
// These follow OpenTelemetry naming conventions where applicable.
const (
	// Agent attributes
	AttrAgentName = "mealmesh.agent.name"
	AttrAgentURL  = "mealmesh.agent.url"

	// Remote call attributes
	AttrRPCMethod     = "mealmesh.rpc.method"
	AttrRPCDurationMs = "mealmesh.rpc.duration_ms"
	AttrRPCSuccess    = "mealmesh.rpc.success"

	// Task attributes
	AttrTaskID      = "mealmesh.task.id"
	AttrTaskState   = "mealmesh.task.state"
	AttrTaskContext = "mealmesh.task.context_id"

	// Tool attributes
	AttrToolName       = "mealmesh.tool.name"
	AttrToolArgs       = "mealmesh.tool.arguments"
	AttrToolResult     = "mealmesh.tool.result"
	AttrToolDurationMs = "mealmesh.tool.duration_ms"
	AttrToolSuccess    = "mealmesh.tool.success"

	// Order attributes
	AttrRestaurantID = "mealmesh.order.restaurant_id"
	AttrItemCount    = "mealmesh.order.item_count"
	AttrPrepMinutes  = "mealmesh.order.prep_minutes"

	// Route attributes
	AttrRouteOrigin      = "mealmesh.route.origin"
	AttrRouteDestination = "mealmesh.route.destination"
	AttrRouteDistanceKm  = "mealmesh.route.distance_km"
	AttrRouteEtaMinutes  = "mealmesh.route.eta_minutes"

	// Normalizer attributes
	AttrNormalizeTier = "mealmesh.normalize.tier"
)

// AgentAttributes returns common attributes for agent spans.
func AgentAttributes(name, url string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAgentName, name),
	}
	if url != "" {
		attrs = append(attrs, attribute.String(AttrAgentURL, url))
	}
	return attrs
}

// CallAttributes returns attributes for a remote A2A call span.
func CallAttributes(agent, method string, durationMs float64, success bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAgentName, agent),
		attribute.String(AttrRPCMethod, method),
		attribute.Float64(AttrRPCDurationMs, durationMs),
		attribute.Bool(AttrRPCSuccess, success),
	}
}

// TaskAttributes returns attributes for task tracking.
func TaskAttributes(taskID, contextID, state string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if taskID != "" {
		attrs = append(attrs, attribute.String(AttrTaskID, taskID))
	}
	if contextID != "" {
		attrs = append(attrs, attribute.String(AttrTaskContext, contextID))
	}
	if state != "" {
		attrs = append(attrs, attribute.String(AttrTaskState, state))
	}
	return attrs
}

// ToolCallAttributes returns attributes for a tool invocation span.
func ToolCallAttributes(name string, durationMs float64, success bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrToolName, name),
		attribute.Float64(AttrToolDurationMs, durationMs),
		attribute.Bool(AttrToolSuccess, success),
	}
}

// ToolCallArgsResult returns attributes with tool arguments and result (truncated for safety).
func ToolCallArgsResult(args, result string, maxLen int) []attribute.KeyValue {
	if maxLen <= 0 {
		maxLen = 500
	}
	attrs := []attribute.KeyValue{}
	if args != "" {
		if len(args) > maxLen {
			args = args[:maxLen] + "..."
		}
		attrs = append(attrs, attribute.String(AttrToolArgs, args))
	}
	if result != "" {
		if len(result) > maxLen {
			result = result[:maxLen] + "..."
		}
		attrs = append(attrs, attribute.String(AttrToolResult, result))
	}
	return attrs
}

// OrderAttributes returns attributes for quote and estimation spans.
func OrderAttributes(restaurantID int, itemCount int, prepMinutes int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrRestaurantID, restaurantID),
		attribute.Int(AttrItemCount, itemCount),
	}
	if prepMinutes > 0 {
		attrs = append(attrs, attribute.Int(AttrPrepMinutes, prepMinutes))
	}
	return attrs
}

// RouteAttributes returns attributes for route computation spans.
// Addresses are truncated to keep span payloads small.
func RouteAttributes(origin, destination string, distanceKm, etaMinutes float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{}
	if origin != "" {
		attrs = append(attrs, attribute.String(AttrRouteOrigin, truncate(origin, 120)))
	}
	if destination != "" {
		attrs = append(attrs, attribute.String(AttrRouteDestination, truncate(destination, 120)))
	}
	if distanceKm > 0 {
		attrs = append(attrs, attribute.Float64(AttrRouteDistanceKm, distanceKm))
	}
	if etaMinutes > 0 {
		attrs = append(attrs, attribute.Float64(AttrRouteEtaMinutes, etaMinutes))
	}
	return attrs
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}
