// Package types defines the wire types for the Mealmesh A2A JSON binding.
//
// The canonical part discriminator is "kind". Some A2A integrations in the
// wild use "type" for the same field; those payloads are rejected at decode
// time instead of being silently accepted.
package types

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Part kinds supported by this binding.
const (
	PartKindText = "text"
	PartKindData = "data"
)

// Part is a single message fragment, either free text or structured data.
type Part struct {
	Kind string         `json:"kind"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

type partWire struct {
	Kind   string          `json:"kind"`
	Legacy json.RawMessage `json:"type"`
	Text   string          `json:"text"`
	Data   map[string]any  `json:"data"`
}

// UnmarshalJSON enforces the canonical "kind" discriminator.
func (p *Part) UnmarshalJSON(data []byte) error {
	var wire partWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if len(wire.Legacy) > 0 {
		return fmt.Errorf(`part uses legacy "type" discriminator; this binding requires "kind"`)
	}
	switch wire.Kind {
	case PartKindText, PartKindData:
	case "":
		return fmt.Errorf(`part is missing the "kind" discriminator`)
	default:
		return fmt.Errorf("unsupported part kind %q", wire.Kind)
	}
	p.Kind = wire.Kind
	p.Text = wire.Text
	p.Data = wire.Data
	return nil
}

// Message is a single request or response unit exchanged with an agent.
type Message struct {
	MessageID string `json:"messageId"`
	ContextID string `json:"contextId,omitempty"`
	TaskID    string `json:"taskId,omitempty"`
	Role      Role   `json:"role"`
	Parts     []Part `json:"parts"`
}

// TaskState is the lifecycle state of a task.
type TaskState string

const (
	TaskStateUnspecified TaskState = ""
	TaskStateSubmitted   TaskState = "submitted"
	TaskStateWorking     TaskState = "working"
	TaskStateCompleted   TaskState = "completed"
	TaskStateFailed      TaskState = "failed"
	TaskStateCancelled   TaskState = "cancelled"
	TaskStateRejected    TaskState = "rejected"
)

// Terminal reports whether the state admits no further transitions.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateFailed, TaskStateCancelled, TaskStateRejected:
		return true
	default:
		return false
	}
}

// TaskStatus carries the current state of a task plus whatever the agent
// attached to it. Every field except State may be absent.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Output    any       `json:"output,omitempty"`
	Timestamp string    `json:"timestamp,omitempty"`
}

// Task is the unit of work tracked by an agent.
type Task struct {
	ID        string      `json:"id"`
	ContextID string      `json:"contextId,omitempty"`
	Status    *TaskStatus `json:"status,omitempty"`
	History   []*Message  `json:"history,omitempty"`
	Artifacts []*Artifact `json:"artifacts,omitempty"`
}

// Artifact is a named output attached to a task.
type Artifact struct {
	ArtifactID string `json:"artifactId"`
	Name       string `json:"name,omitempty"`
	Parts      []Part `json:"parts,omitempty"`
}
