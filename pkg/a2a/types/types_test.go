package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPartUnmarshalCanonicalKind(t *testing.T) {
	var p Part
	if err := json.Unmarshal([]byte(`{"kind":"text","text":"hello"}`), &p); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if p.Kind != PartKindText || p.Text != "hello" {
		t.Errorf("unexpected part: %+v", p)
	}
}

func TestPartUnmarshalRejectsLegacyType(t *testing.T) {
	var p Part
	err := json.Unmarshal([]byte(`{"type":"text","text":"hello"}`), &p)
	if err == nil {
		t.Fatalf("expected legacy discriminator to be rejected")
	}
	if !strings.Contains(err.Error(), `"type"`) {
		t.Errorf("error should name the offending field, got %v", err)
	}
}

func TestPartUnmarshalRejectsMissingKind(t *testing.T) {
	var p Part
	if err := json.Unmarshal([]byte(`{"text":"hello"}`), &p); err == nil {
		t.Fatalf("expected missing kind to be rejected")
	}
}

func TestPartUnmarshalRejectsUnknownKind(t *testing.T) {
	var p Part
	if err := json.Unmarshal([]byte(`{"kind":"file","text":"x"}`), &p); err == nil {
		t.Fatalf("expected unknown part kind to be rejected")
	}
}

func TestDecodeTaskResult(t *testing.T) {
	raw := `{"id":"t-1","contextId":"c-1","status":{"state":"completed","message":{"messageId":"m-1","role":"agent","parts":[{"kind":"text","text":"done"}]}}}`
	resp := &SendMessageResponse{Raw: json.RawMessage(raw)}
	result := resp.Decode()
	if result.Task == nil {
		t.Fatalf("expected a task result")
	}
	if result.Message != nil {
		t.Errorf("did not expect a message result")
	}
	if got := result.Task.Status.Message.TextContent(); got != "done" {
		t.Errorf("expected text 'done', got %q", got)
	}
}

func TestDecodeMessageResult(t *testing.T) {
	raw := `{"messageId":"m-2","role":"agent","parts":[{"kind":"text","text":"hi"}]}`
	result := (&SendMessageResponse{Raw: json.RawMessage(raw)}).Decode()
	if result.Message == nil {
		t.Fatalf("expected a message result")
	}
	if result.Task != nil {
		t.Errorf("did not expect a task result")
	}
}

func TestDecodeUnknownResultIsTotal(t *testing.T) {
	cases := []string{
		`"just a string"`,
		`42`,
		`{"weird":"shape"}`,
		`{broken`,
		``,
	}
	for _, raw := range cases {
		result := (&SendMessageResponse{Raw: json.RawMessage(raw)}).Decode()
		if result.Task != nil || result.Message != nil {
			t.Errorf("raw %q: expected unknown result", raw)
		}
		if string(result.Raw) != raw {
			t.Errorf("raw %q: raw payload must be preserved", raw)
		}
	}
}

func TestDecodeTaskWithLegacyPartsFallsBackToRaw(t *testing.T) {
	// A well-formed envelope whose parts use the rejected discriminator
	// decodes to nothing; the raw payload stays available for diagnostics.
	raw := `{"id":"t-9","status":{"state":"completed","message":{"messageId":"m","role":"agent","parts":[{"type":"text","text":"x"}]}}}`
	result := (&SendMessageResponse{Raw: json.RawMessage(raw)}).Decode()
	if result.Task != nil {
		t.Fatalf("expected legacy parts to fail task decode")
	}
	if len(result.Raw) == 0 {
		t.Errorf("raw payload must be preserved")
	}
}

func TestTextContentJoinsInOrder(t *testing.T) {
	msg := &Message{
		MessageID: "m",
		Role:      RoleAgent,
		Parts: []Part{
			{Kind: PartKindText, Text: "first"},
			{Kind: PartKindData, Data: map[string]any{"skip": true}},
			{Kind: PartKindText, Text: ""},
			{Kind: PartKindText, Text: "second"},
		},
	}
	if got := msg.TextContent(); got != "first\nsecond" {
		t.Errorf("expected joined text, got %q", got)
	}
}

func TestNewTextMessageAssignsID(t *testing.T) {
	a := NewTextMessage(RoleUser, "hi", "", "")
	b := NewTextMessage(RoleUser, "hi", "", "")
	if a.MessageID == "" || a.MessageID == b.MessageID {
		t.Errorf("expected unique non-empty message ids")
	}
}

func TestTerminalStates(t *testing.T) {
	terminal := []TaskState{TaskStateCompleted, TaskStateFailed, TaskStateCancelled, TaskStateRejected}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []TaskState{TaskStateSubmitted, TaskStateWorking, TaskStateUnspecified} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
