// SPDX-License-Identifier: Apache-2.0
package telemetry

import (
	"context"
	"testing"

	"github.com/jllopis/mealmesh/pkg/errors"
)

func TestNewMeshMetrics(t *testing.T) {
	mm, err := NewMeshMetrics(context.Background())
	if err != nil {
		t.Fatalf("failed to create mesh metrics: %v", err)
	}
	if mm == nil {
		t.Fatal("expected non-nil MeshMetrics")
	}
}

func TestRecordCall(t *testing.T) {
	mm, _ := NewMeshMetrics(context.Background())
	ctx := context.Background()

	mm.RecordCall(ctx, "restaurant-agent", "SendMessage", 12.5, true)
	mm.RecordCall(ctx, "rider-agent", "SendMessage", 250.0, false)

	var nilMetrics *MeshMetrics
	nilMetrics.RecordCall(ctx, "restaurant-agent", "SendMessage", 1.0, true)
}

func TestRecordError(t *testing.T) {
	mm, _ := NewMeshMetrics(context.Background())
	ctx := context.Background()

	me := errors.New(errors.CodeUnreachable, "agent offline", nil)
	mm.RecordError(ctx, me, "host")

	// Generic error falls back to UNKNOWN code
	mm.RecordError(ctx, context.DeadlineExceeded, "host")

	// Should not panic with nil error or metrics
	mm.RecordError(ctx, nil, "host")

	var nilMetrics *MeshMetrics
	nilMetrics.RecordError(ctx, me, "host")
}

func TestRecordNormalizeTier(t *testing.T) {
	mm, _ := NewMeshMetrics(context.Background())
	ctx := context.Background()

	for _, tier := range []string{"text", "output", "task", "diagnostic"} {
		mm.RecordNormalizeTier(ctx, tier)
	}

	var nilMetrics *MeshMetrics
	nilMetrics.RecordNormalizeTier(ctx, "text")
}
