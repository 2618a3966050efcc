package model

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON value out of raw model output. Models wrap
// payloads in markdown fences or surround them with prose; this strips
// fences and trims to the outermost bracket pair. Returns nil when no
// JSON value can be located.
func ExtractJSON(content string) json.RawMessage {
	s := strings.TrimSpace(content)
	if s == "" {
		return nil
	}

	// Strip a markdown code fence if present.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Trim surrounding prose to the outermost bracket pair.
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return nil
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return nil
	}
	candidate := s[start : end+1]

	if !json.Valid([]byte(candidate)) {
		return nil
	}
	return json.RawMessage(candidate)
}

// ParseRecords decodes a list of records from a raw payload that is
// either an object wrapping the list under key, or the bare list
// itself. Malformed payloads yield nil rather than an error; the
// pipeline degrades instead of crashing on bad model output.
func ParseRecords[T any](raw json.RawMessage, key string) []T {
	if len(raw) == 0 {
		return nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err == nil {
		inner, ok := wrapper[key]
		if !ok {
			return nil
		}
		raw = inner
	}

	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil
	}
	return records
}
