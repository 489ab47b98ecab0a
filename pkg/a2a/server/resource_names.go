package server

import (
	"fmt"
	"strings"
)

const taskNamePrefix = "tasks/"

// TaskName formats a task id as its resource name.
func TaskName(id string) string {
	return taskNamePrefix + id
}

// ParseTaskName extracts the task id from a resource name. A bare id is
// accepted for convenience.
func ParseTaskName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("task name is required")
	}
	id := strings.TrimPrefix(trimmed, taskNamePrefix)
	if id == "" || strings.Contains(id, "/") {
		return "", fmt.Errorf("invalid task name %q", name)
	}
	return id, nil
}
