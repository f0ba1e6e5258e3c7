// Package jsonx pulls JSON objects out of LLM reply content, tolerating code
// fences and surrounding prose.
package jsonx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DecodeObject parses reply content that should be a JSON object.
func DecodeObject(raw string) (map[string]any, error) {
	text := StripFences(raw)
	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err == nil {
		return m, nil
	}
	// Fall back to the first top-level {...} in the text.
	if obj := extractObject(text); obj != "" {
		if err := json.Unmarshal([]byte(obj), &m); err == nil {
			return m, nil
		}
	}
	return nil, fmt.Errorf("not a JSON object: %.200q", raw)
}

// StripFences removes a surrounding markdown code fence, if any.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```")
		if idx := strings.IndexByte(t, '\n'); idx != -1 {
			t = t[idx+1:]
		}
		if j := strings.LastIndex(t, "```"); j != -1 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	return t
}

func extractObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
