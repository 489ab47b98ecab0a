// SPDX-License-Identifier: Apache-2.0
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jllopis/mealmesh/pkg/errors"
)

// MeshMetrics tracks remote-call outcomes and response normalization for
// production monitoring of the delivery mesh.
type MeshMetrics struct {
	// callCounter tracks A2A calls by agent, method and outcome
	callCounter metric.Int64Counter

	// callDuration tracks A2A call latency in milliseconds
	callDuration metric.Float64Histogram

	// errorCounter tracks errors by code and component
	errorCounter metric.Int64Counter

	// normalizeCounter tracks which fallback tier extracted agent output
	normalizeCounter metric.Int64Counter

	mu sync.RWMutex
}

// NewMeshMetrics creates a metrics tracker with OTEL meters.
func NewMeshMetrics(ctx context.Context) (*MeshMetrics, error) {
	meter := otel.Meter("mealmesh/host")

	callCounter, err := meter.Int64Counter(
		"mealmesh.calls.total",
		metric.WithDescription("A2A calls by agent, method and outcome"),
	)
	if err != nil {
		return nil, err
	}

	callDuration, err := meter.Float64Histogram(
		"mealmesh.calls.duration_ms",
		metric.WithDescription("A2A call latency in milliseconds"),
	)
	if err != nil {
		return nil, err
	}

	errorCounter, err := meter.Int64Counter(
		"mealmesh.errors.total",
		metric.WithDescription("Total errors by code and component"),
	)
	if err != nil {
		return nil, err
	}

	normalizeCounter, err := meter.Int64Counter(
		"mealmesh.normalize.tier",
		metric.WithDescription("Response normalization outcomes by fallback tier"),
	)
	if err != nil {
		return nil, err
	}

	return &MeshMetrics{
		callCounter:      callCounter,
		callDuration:     callDuration,
		errorCounter:     errorCounter,
		normalizeCounter: normalizeCounter,
	}, nil
}

// RecordCall tracks one A2A call with its latency and outcome.
func (mm *MeshMetrics) RecordCall(ctx context.Context, agent, method string, durationMs float64, success bool) {
	if mm == nil {
		return
	}

	mm.mu.RLock()
	defer mm.mu.RUnlock()

	attrs := metric.WithAttributes(
		attribute.String("agent", agent),
		attribute.String("method", method),
		attribute.Bool("success", success),
	)
	mm.callCounter.Add(ctx, 1, attrs)
	mm.callDuration.Record(ctx, durationMs, attrs)
}

// RecordError increments the error counter for the given error and component.
func (mm *MeshMetrics) RecordError(ctx context.Context, err error, component string) {
	if mm == nil || err == nil {
		return
	}

	mm.mu.RLock()
	defer mm.mu.RUnlock()

	code := "UNKNOWN"
	recoverable := "unknown"
	if me, ok := err.(*errors.MeshError); ok {
		code = string(me.Code)
		recoverable = me.RecoverableString()
	}
	mm.errorCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error.code", code),
			attribute.String("component", component),
			attribute.String("recoverable", recoverable),
		),
	)
}

// RecordNormalizeTier tracks which extraction tier produced the relayed
// text ("text", "output", "task", "diagnostic").
func (mm *MeshMetrics) RecordNormalizeTier(ctx context.Context, tier string) {
	if mm == nil {
		return
	}

	mm.mu.RLock()
	defer mm.mu.RUnlock()

	mm.normalizeCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("tier", tier),
		),
	)
}
