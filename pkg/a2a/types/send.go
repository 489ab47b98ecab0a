package types

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// SendMessageRequest is the params payload for the SendMessage method.
type SendMessageRequest struct {
	Request       *Message                  `json:"request"`
	Configuration *SendMessageConfiguration `json:"configuration,omitempty"`
}

// SendMessageConfiguration tunes how the server answers a SendMessage call.
type SendMessageConfiguration struct {
	Blocking            bool     `json:"blocking,omitempty"`
	AcceptedOutputModes []string `json:"acceptedOutputModes,omitempty"`
}

// SendMessageResponse wraps the raw result of a SendMessage call. The payload
// is decoded exactly once, via Decode, into a tagged Result; callers never
// probe the raw JSON ad hoc.
type SendMessageResponse struct {
	Raw json.RawMessage
}

// Result is the decoded form of a SendMessage result. Exactly one of Task or
// Message is set when the payload matched a known shape; otherwise both are
// nil and Raw carries whatever the server sent.
type Result struct {
	Task    *Task
	Message *Message
	Raw     json.RawMessage
}

// Decode classifies the raw result payload. It is total: an unrecognized or
// unparseable payload yields a Result with only Raw set, never an error.
func (r *SendMessageResponse) Decode() Result {
	out := Result{Raw: r.Raw}
	trimmed := bytes.TrimSpace(r.Raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return out
	}

	var probe struct {
		ID        string          `json:"id"`
		Status    json.RawMessage `json:"status"`
		MessageID string          `json:"messageId"`
		Parts     json.RawMessage `json:"parts"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return out
	}

	switch {
	case probe.ID != "" || len(probe.Status) > 0:
		var task Task
		if err := json.Unmarshal(trimmed, &task); err == nil {
			out.Task = &task
		}
	case probe.MessageID != "" || len(probe.Parts) > 0:
		var msg Message
		if err := json.Unmarshal(trimmed, &msg); err == nil {
			out.Message = &msg
		}
	}
	return out
}

// NewTextMessage builds a minimal message with a single text part and a
// fresh message id.
func NewTextMessage(role Role, text, contextID, taskID string) *Message {
	return &Message{
		MessageID: uuid.NewString(),
		ContextID: contextID,
		TaskID:    taskID,
		Role:      role,
		Parts: []Part{
			{Kind: PartKindText, Text: text},
		},
	}
}

// NewDataMessage builds a message carrying a JSON-compatible data payload.
func NewDataMessage(role Role, data map[string]any, contextID, taskID string) *Message {
	return &Message{
		MessageID: uuid.NewString(),
		ContextID: contextID,
		TaskID:    taskID,
		Role:      role,
		Parts: []Part{
			{Kind: PartKindData, Data: data},
		},
	}
}

// TextContent joins the non-empty text parts of a message with newlines.
func (m *Message) TextContent() string {
	if m == nil {
		return ""
	}
	var buf bytes.Buffer
	for _, part := range m.Parts {
		if part.Kind != PartKindText || part.Text == "" {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(part.Text)
	}
	return buf.String()
}
