// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"strings"
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func hasAttr(attrs []attribute.KeyValue, key string) bool {
	for _, a := range attrs {
		if string(a.Key) == key {
			return true
		}
	}
	return false
}

func TestAgentAttributes(t *testing.T) {
	attrs := AgentAttributes("restaurant-agent", "http://localhost:8081")
	if !hasAttr(attrs, AttrAgentName) || !hasAttr(attrs, AttrAgentURL) {
		t.Errorf("missing agent attributes: %v", attrs)
	}

	attrs = AgentAttributes("rider-agent", "")
	if hasAttr(attrs, AttrAgentURL) {
		t.Error("empty url must be omitted")
	}
}

func TestCallAttributes(t *testing.T) {
	attrs := CallAttributes("rider-agent", "SendMessage", 42.0, true)
	for _, key := range []string{AttrAgentName, AttrRPCMethod, AttrRPCDurationMs, AttrRPCSuccess} {
		if !hasAttr(attrs, key) {
			t.Errorf("missing %s", key)
		}
	}
}

func TestTaskAttributesOmitsEmpty(t *testing.T) {
	attrs := TaskAttributes("", "", "")
	if len(attrs) != 0 {
		t.Errorf("expected no attributes, got %v", attrs)
	}

	attrs = TaskAttributes("t-1", "c-1", "completed")
	if len(attrs) != 3 {
		t.Errorf("expected 3 attributes, got %v", attrs)
	}
}

func TestToolCallArgsResultTruncates(t *testing.T) {
	long := strings.Repeat("x", 600)
	attrs := ToolCallArgsResult(long, long, 0)
	for _, a := range attrs {
		if len(a.Value.AsString()) > 503 {
			t.Errorf("attribute %s not truncated: %d chars", a.Key, len(a.Value.AsString()))
		}
	}
}

func TestRouteAttributes(t *testing.T) {
	attrs := RouteAttributes("1600 Amphitheatre Pkwy", "1 Market St", 12.34, 25.5)
	if len(attrs) != 4 {
		t.Errorf("expected 4 attributes, got %v", attrs)
	}

	// Zero metrics are omitted
	attrs = RouteAttributes("a", "b", 0, 0)
	if hasAttr(attrs, AttrRouteDistanceKm) || hasAttr(attrs, AttrRouteEtaMinutes) {
		t.Errorf("zero route metrics must be omitted: %v", attrs)
	}
}

func TestOrderAttributes(t *testing.T) {
	attrs := OrderAttributes(1, 3, 25)
	if len(attrs) != 3 {
		t.Errorf("expected 3 attributes, got %v", attrs)
	}
	attrs = OrderAttributes(2, 0, 0)
	if hasAttr(attrs, AttrPrepMinutes) {
		t.Error("zero prep minutes must be omitted")
	}
}
