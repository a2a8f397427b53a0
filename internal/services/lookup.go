package services

import (
	"strconv"
	"strings"
)

// Provider payloads are loosely shaped: the same field can live at several
// nested locations depending on event type and API version. lookupString
// evaluates an ordered list of dot-separated paths against a decoded JSON
// tree and returns the first non-empty string found. Numeric path segments
// index into arrays. A missing segment never fails, it just moves on to the
// next candidate path.
func lookupString(node any, paths ...string) string {
	for _, path := range paths {
		if value, ok := walkPath(node, path).(string); ok && value != "" {
			return value
		}
	}
	return ""
}

// lookupMap returns the first candidate path that resolves to an object.
func lookupMap(node any, paths ...string) (map[string]any, bool) {
	for _, path := range paths {
		if value, ok := walkPath(node, path).(map[string]any); ok {
			return value, true
		}
	}
	return nil, false
}

func walkPath(node any, path string) any {
	current := node
	for _, segment := range strings.Split(path, ".") {
		switch typed := current.(type) {
		case map[string]any:
			current = typed[segment]
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(typed) {
				return nil
			}
			current = typed[idx]
		default:
			return nil
		}
	}
	return current
}

func containsAny(value string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(value, needle) {
			return true
		}
	}
	return false
}
