// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

// Package rider implements the rider agent: a thin wrapper over the
// Google Routes API plus the tool surfaces (A2A executor, MCP) exposing
// distance and ETA computations.
package rider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/mealmesh/pkg/errors"
	"github.com/jllopis/mealmesh/pkg/telemetry"
)

// DefaultRoutesEndpoint is the Routes API computeRoutes endpoint.
const DefaultRoutesEndpoint = "https://routes.googleapis.com/directions/v2:computeRoutes"

// fieldMask keeps the response down to the two fields the ETA math needs.
const fieldMask = "routes.distanceMeters,routes.duration"

// Directions is the normalized route result. Status "error" marks an
// upstream provider problem (zero routes, typically key enablement or
// billing), distinct from transport failures which surface as errors.
type Directions struct {
	Status          string          `json:"status"`
	DistanceMeters  int             `json:"distance_meters,omitempty"`
	DistanceKm      float64         `json:"distance_km"`
	DurationSeconds float64         `json:"duration_seconds"`
	EtaMinutes      float64         `json:"eta_minutes"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

// Maps calls the Routes API.
type Maps struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// MapsOption configures the client.
type MapsOption func(*Maps)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) MapsOption {
	return func(m *Maps) {
		if httpClient != nil {
			m.httpClient = httpClient
		}
	}
}

// WithEndpoint overrides the Routes API endpoint.
func WithEndpoint(endpoint string) MapsOption {
	return func(m *Maps) {
		if endpoint != "" {
			m.endpoint = endpoint
		}
	}
}

// NewMaps creates a Routes API client. A missing API key is a hard
// configuration error, surfaced at startup rather than on first call.
func NewMaps(apiKey string, opts ...MapsOption) (*Maps, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New(errors.CodeConfiguration, "maps API key is required", nil)
	}
	m := &Maps{
		apiKey:     apiKey,
		endpoint:   DefaultRoutesEndpoint,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

type routesRequest struct {
	Origin            routeWaypoint `json:"origin"`
	Destination       routeWaypoint `json:"destination"`
	TravelMode        string        `json:"travelMode"`
	RoutingPreference string        `json:"routingPreference"`
}

type routeWaypoint struct {
	Address string `json:"address"`
}

type routesResponse struct {
	Routes []struct {
		DistanceMeters int    `json:"distanceMeters"`
		Duration       string `json:"duration"`
	} `json:"routes"`
}

// GetDirections computes the driving route between two addresses (or
// "lat,lng" pairs). Zero returned routes yield Status "error" with the
// raw payload attached; transport and HTTP failures return an error.
func (m *Maps) GetDirections(ctx context.Context, origin, destination string) (*Directions, error) {
	ctx, span := otel.Tracer("mealmesh/rider").Start(ctx, "rider.get_directions",
		trace.WithAttributes(telemetry.RouteAttributes(origin, destination, 0, 0)...))
	defer span.End()

	payload, err := json.Marshal(routesRequest{
		Origin:            routeWaypoint{Address: origin},
		Destination:       routeWaypoint{Address: destination},
		TravelMode:        "DRIVE",
		RoutingPreference: "TRAFFIC_AWARE",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", m.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, errors.New(errors.CodeTransport, "routes call failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New(errors.CodeTransport, "routes response read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(errors.CodeUpstreamProvider,
			fmt.Sprintf("routes call returned %s", resp.Status), nil).
			WithContext("body", string(body))
	}

	var decoded routesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, errors.New(errors.CodeUpstreamProvider, "routes response decode failed", err)
	}

	if len(decoded.Routes) == 0 {
		// Usually an API key, enablement or billing problem on the
		// provider side rather than a transport failure.
		return &Directions{Status: "error", Raw: body}, nil
	}

	route := decoded.Routes[0]
	seconds := parseDurationSeconds(route.Duration)

	directions := &Directions{
		Status:          "ok",
		DistanceMeters:  route.DistanceMeters,
		DistanceKm:      round2(float64(route.DistanceMeters) / 1000.0),
		DurationSeconds: seconds,
		EtaMinutes:      round1(seconds / 60.0),
		Raw:             body,
	}
	span.SetAttributes(telemetry.RouteAttributes("", "", directions.DistanceKm, directions.EtaMinutes)...)
	return directions, nil
}

// parseDurationSeconds converts Routes API durations ("1234s",
// "1234.5s") to float seconds. Malformed values parse to 0.0.
func parseDurationSeconds(duration string) float64 {
	s := strings.TrimSpace(duration)
	if s == "" {
		return 0.0
	}
	s = strings.TrimSuffix(s, "s")
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return value
}

func round1(value float64) float64 {
	return math.Round(value*10) / 10
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
