// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package restaurant

import (
	"context"
	"reflect"
	"testing"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

func TestQuoteRequestFromInstructionText(t *testing.T) {
	msg := a2av1.NewTextMessage(a2av1.RoleUser,
		"Given restaurant_id=1 and menu_item_ids=[1, 2], compute the total.", "", "")

	id, ids, ok := quoteRequest(msg)
	if !ok {
		t.Fatal("expected the instruction to parse")
	}
	if id != 1 || !reflect.DeepEqual(ids, []int{1, 2}) {
		t.Errorf("parsed id=%d ids=%v", id, ids)
	}
}

func TestQuoteRequestFromDataPart(t *testing.T) {
	msg := a2av1.NewDataMessage(a2av1.RoleUser, map[string]any{
		"restaurant_id": float64(2),
		"menu_item_ids": []any{float64(3)},
	}, "", "")

	id, ids, ok := quoteRequest(msg)
	if !ok {
		t.Fatal("expected the data part to parse")
	}
	if id != 2 || !reflect.DeepEqual(ids, []int{3}) {
		t.Errorf("parsed id=%d ids=%v", id, ids)
	}
}

func TestQuoteRequestRejectsPlainText(t *testing.T) {
	msg := a2av1.NewTextMessage(a2av1.RoleUser, "what pizzas do you have?", "", "")
	if _, _, ok := quoteRequest(msg); ok {
		t.Fatal("plain text must not parse as a quote request")
	}
}

func TestExecutorAnswersQuote(t *testing.T) {
	exec := NewExecutor(openSeededStore(t), nil)

	msg := a2av1.NewTextMessage(a2av1.RoleUser,
		"Given restaurant_id=1 and menu_item_ids=[1, 2], return the quote.", "", "")
	output, _, err := exec.Run(context.Background(), msg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	payload, ok := output.(map[string]any)
	if !ok {
		t.Fatalf("expected structured output, got %T", output)
	}
	if payload["total_price"] != float64(340) {
		t.Errorf("expected total 340, got %v", payload["total_price"])
	}
	if payload["estimated_prep_minutes"] != float64(25) {
		t.Errorf("expected prep 25, got %v", payload["estimated_prep_minutes"])
	}
	if _, hasError := payload["error"]; hasError {
		t.Errorf("unexpected error key: %v", payload)
	}
}

func TestExecutorFreeTextSearch(t *testing.T) {
	exec := NewExecutor(openSeededStore(t), nil)

	output, _, err := exec.Run(context.Background(),
		a2av1.NewTextMessage(a2av1.RoleUser, "pizza", "", ""))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	payload, ok := output.(map[string]any)
	if !ok {
		t.Fatalf("expected structured output, got %T", output)
	}
	hits, ok := payload["results"].([]SearchHit)
	if !ok || len(hits) == 0 {
		t.Errorf("expected search hits, got %v", payload["results"])
	}
}

func TestExecutorFreeTextNoMatches(t *testing.T) {
	exec := NewExecutor(openSeededStore(t), nil)

	output, _, err := exec.Run(context.Background(),
		a2av1.NewTextMessage(a2av1.RoleUser, "sushi", "", ""))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	payload, ok := output.(map[string]any)
	if !ok {
		t.Fatalf("expected structured output, got %T", output)
	}
	if payload["note"] == "" {
		t.Error("no-match fallback should explain itself")
	}
	if _, ok := payload["restaurants"]; !ok {
		t.Error("no-match fallback should list open restaurants")
	}
}
