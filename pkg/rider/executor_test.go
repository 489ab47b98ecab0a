// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package rider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

func TestRouteRequestFromDataPart(t *testing.T) {
	msg := a2av1.NewDataMessage(a2av1.RoleUser, map[string]any{
		"origin":      "MG Road, Bengaluru",
		"destination": "Indiranagar, Bengaluru",
	}, "", "")

	origin, destination, ok := routeRequest(msg)
	if !ok {
		t.Fatal("expected the data part to parse")
	}
	if origin != "MG Road, Bengaluru" || destination != "Indiranagar, Bengaluru" {
		t.Errorf("parsed origin=%q destination=%q", origin, destination)
	}
}

func TestRouteRequestFromText(t *testing.T) {
	cases := []struct {
		text                string
		origin, destination string
	}{
		{"Compute the route from MG Road, Bengaluru to Indiranagar, Bengaluru.",
			"MG Road, Bengaluru", "Indiranagar, Bengaluru"},
		{"origin: Brigade Road\ndestination: Koramangala",
			"Brigade Road", "Koramangala"},
		{`origin="12.97,77.60" destination="12.93,77.62"`,
			"12.97,77.60", "12.93,77.62"},
	}
	for _, tc := range cases {
		msg := a2av1.NewTextMessage(a2av1.RoleUser, tc.text, "", "")
		origin, destination, ok := routeRequest(msg)
		if !ok {
			t.Errorf("%q: expected parse", tc.text)
			continue
		}
		if origin != tc.origin || destination != tc.destination {
			t.Errorf("%q: parsed origin=%q destination=%q", tc.text, origin, destination)
		}
	}
}

func TestRouteRequestRejectsUnparseableText(t *testing.T) {
	for _, text := range []string{"", "how long is the ride?", "to Indiranagar"} {
		msg := a2av1.NewTextMessage(a2av1.RoleUser, text, "", "")
		if _, _, ok := routeRequest(msg); ok {
			t.Errorf("%q must not parse as a route request", text)
		}
	}
}

func TestExecutorAnswersDirections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"routes":[{"distanceMeters":5230,"duration":"900s"}]}`))
	}))
	defer srv.Close()

	maps, err := NewMaps("key-123", WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("NewMaps: %v", err)
	}
	exec := NewExecutor(maps, nil)

	msg := a2av1.NewTextMessage(a2av1.RoleUser,
		"Compute the route from MG Road to Indiranagar.", "", "")
	output, _, err := exec.Run(context.Background(), msg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	payload, ok := output.(map[string]any)
	if !ok {
		t.Fatalf("expected a map, got %T", output)
	}
	if payload["status"] != "ok" {
		t.Errorf("expected status ok, got %v", payload["status"])
	}
	if payload["eta_minutes"] != 15.0 {
		t.Errorf("expected eta 15.0, got %v", payload["eta_minutes"])
	}
	if payload["origin"] != "MG Road" || payload["destination"] != "Indiranagar" {
		t.Errorf("expected echoed endpoints, got %v / %v", payload["origin"], payload["destination"])
	}
}

func TestExecutorHelpOnMissingEndpoints(t *testing.T) {
	maps, _ := NewMaps("key-123")
	exec := NewExecutor(maps, nil)

	output, _, err := exec.Run(context.Background(),
		a2av1.NewTextMessage(a2av1.RoleUser, "hello", "", ""))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	help, ok := output.(string)
	if !ok || !strings.Contains(help, "origin") {
		t.Errorf("expected usage help, got %v", output)
	}
}
