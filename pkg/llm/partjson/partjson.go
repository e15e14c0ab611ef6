// ABOUTME: Best-effort parser for truncated JSON objects
// ABOUTME: Repairs unclosed strings, objects, and arrays before decoding

package partjson

import (
	"encoding/json"
	"strings"
)

// Parse decodes s into a map, tolerating truncation. Well-formed input
// takes the fast path; otherwise the fragment is repaired by closing
// open strings and containers and dropping dangling keys. Returns an
// empty map when nothing salvageable remains.
func Parse(s string) map[string]any {
	out := map[string]any{}
	if s == "" {
		return out
	}
	if json.Unmarshal([]byte(s), &out) == nil {
		return out
	}
	if json.Unmarshal([]byte(repair(s)), &out) == nil {
		return out
	}
	return map[string]any{}
}

// repair closes whatever the truncation left open.
func repair(s string) string {
	var stack []byte
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	if inString {
		if escaped {
			s += `\`
		}
		s += `"`
	}

	s = dropDangling(s)

	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}

// dropDangling removes trailing tokens that cannot be completed: commas
// and colons, cut-short true/false/null literals, and a key left with
// no value after its literal was stripped.
func dropDangling(s string) string {
	s = trimPunct(s)

	stripped := false
	for _, lit := range []string{"fals", "fal", "fa", "tru", "tr", "nul", "nu"} {
		if strings.HasSuffix(s, lit) {
			s = s[:len(s)-len(lit)]
			stripped = true
			break
		}
	}
	if !stripped {
		return s
	}
	s = trimPunct(s)

	// The stripped literal may have been the value of "key": — the key
	// string is now dangling and must go too.
	if len(s) >= 2 && s[len(s)-1] == '"' {
		open := strings.LastIndex(s[:len(s)-1], `"`)
		if open > 0 && (s[open-1] == ',' || s[open-1] == '{') {
			s = strings.TrimSuffix(s[:open], ",")
		}
	}
	return s
}

func trimPunct(s string) string {
	return strings.TrimRight(s, ",:")
}
