package mcp

import "encoding/json"

// Argument extraction helpers. MCP arguments arrive as generic JSON, so
// numbers are float64 and arrays are []interface{}.

// String returns args[key] as a string, or fallback.
func String(args map[string]interface{}, key, fallback string) string {
	if value, ok := args[key].(string); ok {
		return value
	}
	return fallback
}

// Bool returns args[key] as a bool, or fallback.
func Bool(args map[string]interface{}, key string, fallback bool) bool {
	if value, ok := args[key].(bool); ok {
		return value
	}
	return fallback
}

// Int returns args[key] as an int, or fallback.
func Int(args map[string]interface{}, key string, fallback int) int {
	switch value := args[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case json.Number:
		if parsed, err := value.Int64(); err == nil {
			return int(parsed)
		}
	}
	return fallback
}

// IntSlice returns args[key] as a slice of ints. Elements that are not
// numeric are skipped.
func IntSlice(args map[string]interface{}, key string) []int {
	raw, ok := args[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		switch value := item.(type) {
		case float64:
			out = append(out, int(value))
		case int:
			out = append(out, value)
		case json.Number:
			if parsed, err := value.Int64(); err == nil {
				out = append(out, int(parsed))
			}
		}
	}
	return out
}
