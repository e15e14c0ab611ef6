// ABOUTME: Shared parameter accessors for tool implementations
// ABOUTME: JSON-decoded args arrive as map[string]any; these keep extraction type-safe

package tools

import (
	"fmt"
	"math"
)

// requireStringParam extracts a required string argument.
func requireStringParam(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string, got %T", key, v)
	}
	return s, nil
}

// stringParam extracts an optional string argument with a default.
func stringParam(args map[string]any, key, defaultVal string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return defaultVal
}

// intParam extracts an optional integer argument with a default.
// JSON numbers decode as float64.
func intParam(args map[string]any, key string, defaultVal int) int {
	switch n := args[key].(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n > float64(math.MaxInt) || n < float64(math.MinInt) {
			return defaultVal
		}
		return int(n)
	case int:
		return n
	default:
		return defaultVal
	}
}
