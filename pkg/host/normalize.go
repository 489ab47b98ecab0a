// Copyright 2026 © The Mealmesh Authors
// SPDX-License-Identifier: Apache-2.0

package host

import (
	"encoding/json"
	"fmt"

	a2av1 "github.com/jllopis/mealmesh/pkg/a2a/types"
)

// Normalization tiers, recorded as metric attributes.
const (
	TierText       = "text"
	TierOutput     = "output"
	TierTask       = "task"
	TierDiagnostic = "diagnostic"
)

// ExtractText turns a decoded RPC result into text. It is total: every
// shape, including garbage, yields a non-empty string and no branch can
// fail. The caller is typically an LLM-driven planner that must always
// receive something to reason about.
//
// Priority order:
//  1. results that are not a task yield a diagnostic string embedding
//     the raw payload
//  2. non-empty texts from status.message.parts, joined with newlines
//  3. status.output serialized as JSON
//  4. the whole task serialized as JSON
func ExtractText(result a2av1.Result) string {
	text, _ := extractText(result)
	return text
}

func extractText(result a2av1.Result) (string, string) {
	if result.Task == nil {
		return fmt.Sprintf("REMOTE_AGENT_NON_TASK_RESULT: %s", rawString(result.Raw)), TierDiagnostic
	}
	task := result.Task

	if task.Status != nil && task.Status.Message != nil {
		if joined := task.Status.Message.TextContent(); joined != "" {
			return joined, TierText
		}
	}

	if task.Status != nil && task.Status.Output != nil {
		if dumped, err := json.MarshalIndent(task.Status.Output, "", "  "); err == nil {
			return string(dumped), TierOutput
		}
		return fmt.Sprint(task.Status.Output), TierOutput
	}

	if dumped, err := json.MarshalIndent(task, "", "  "); err == nil {
		return string(dumped), TierTask
	}
	return fmt.Sprintf("REMOTE_AGENT_TASK_NO_TEXT_PARTS: %+v", task), TierDiagnostic
}

func rawString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "<empty>"
	}
	return string(raw)
}
