// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package rider

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

var (
	originPattern      = regexp.MustCompile(`(?i)origin\s*[:=]\s*"?([^"\n]+?)"?\s*(?:\n|$|destination)`)
	destinationPattern = regexp.MustCompile(`(?i)destination\s*[:=]\s*"?([^"\n]+?)"?\s*(?:\n|$)`)
	fromToPattern      = regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+?)\s*[.?!]?$`)
)

// Executor answers A2A messages for the rider agent. Requests carrying
// an origin and destination (a data part, or recognizable text) run
// through the Routes API wrapper; anything else gets usage help.
type Executor struct {
	maps   *Maps
	logger *slog.Logger
}

// NewExecutor creates the rider executor.
func NewExecutor(maps *Maps, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{maps: maps, logger: logger}
}

// Run implements the A2A server executor contract.
func (e *Executor) Run(ctx context.Context, message *a2av1.Message) (any, []*a2av1.Artifact, error) {
	origin, destination, ok := routeRequest(message)
	if !ok {
		return `Provide an origin and a destination, e.g. "from MG Road, Bengaluru to Indiranagar, Bengaluru" or a data part with {"origin": ..., "destination": ...}.`, nil, nil
	}

	e.logger.Debug("directions request", "origin", origin, "destination", destination)
	directions, err := e.maps.GetDirections(ctx, origin, destination)
	if err != nil {
		return nil, nil, err
	}

	out := directionsMap(directions)
	out["origin"] = origin
	out["destination"] = destination
	return out, nil, nil
}

// routeRequest extracts origin/destination from a data part or from the
// instruction text the host sends.
func routeRequest(message *a2av1.Message) (origin, destination string, ok bool) {
	if message == nil {
		return "", "", false
	}

	for _, part := range message.Parts {
		if part.Kind != a2av1.PartKindData || part.Data == nil {
			continue
		}
		origin, originOK := stringField(part.Data, "origin")
		destination, destinationOK := stringField(part.Data, "destination")
		if originOK && destinationOK {
			return origin, destination, true
		}
	}

	text := strings.TrimSpace(message.TextContent())
	if text == "" {
		return "", "", false
	}

	originMatch := originPattern.FindStringSubmatch(text)
	destinationMatch := destinationPattern.FindStringSubmatch(text)
	if originMatch != nil && destinationMatch != nil {
		return strings.TrimSpace(originMatch[1]), strings.TrimSpace(destinationMatch[1]), true
	}

	if match := fromToPattern.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1]), strings.TrimSpace(match[2]), true
	}
	return "", "", false
}

func stringField(data map[string]any, key string) (string, bool) {
	value, ok := data[key].(string)
	value = strings.TrimSpace(value)
	return value, ok && value != ""
}

func directionsMap(directions *Directions) map[string]any {
	encoded, err := json.Marshal(directions)
	if err != nil {
		return map[string]any{"status": "error", "error": err.Error()}
	}
	var out map[string]any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return map[string]any{"status": "error", "error": err.Error()}
	}
	return out
}
