package server

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

// ResponseMessage builds an agent message from an executor output.
func ResponseMessage(output any, contextID, taskID string) *a2av1.Message {
	switch v := output.(type) {
	case *a2av1.Message:
		return normalizeMessage(v, contextID, taskID, a2av1.RoleAgent)
	case string:
		return textMessage(v, contextID, taskID)
	case map[string]any:
		// Structured output travels both as a data part and as its JSON
		// text rendering so text-only consumers still get the payload.
		msg := textMessage(mustJSON(v), contextID, taskID)
		msg.Parts = append(msg.Parts, a2av1.Part{Kind: a2av1.PartKindData, Data: v})
		return msg
	default:
		return textMessage(fmt.Sprint(output), contextID, taskID)
	}
}

func textMessage(text, contextID, taskID string) *a2av1.Message {
	return &a2av1.Message{
		MessageID: uuid.NewString(),
		ContextID: contextID,
		TaskID:    taskID,
		Role:      a2av1.RoleAgent,
		Parts:     []a2av1.Part{{Kind: a2av1.PartKindText, Text: text}},
	}
}

// ValidateMessage ensures required fields are present.
func ValidateMessage(message *a2av1.Message) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}
	if message.MessageID == "" {
		return fmt.Errorf("messageId is required")
	}
	if len(message.Parts) == 0 {
		return fmt.Errorf("message parts are required")
	}
	return nil
}

func normalizeMessage(message *a2av1.Message, contextID, taskID string, role a2av1.Role) *a2av1.Message {
	if message.MessageID == "" {
		message.MessageID = uuid.NewString()
	}
	if contextID != "" {
		message.ContextID = contextID
	}
	if taskID != "" {
		message.TaskID = taskID
	}
	if message.Role == "" {
		message.Role = role
	}
	return message
}

func mustJSON(v any) string {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(payload)
}
