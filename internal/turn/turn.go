package turn

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FallbackMessage replaces an empty assistant message so the history never
// shows an empty bubble.
const FallbackMessage = "I can help you continue with structured choices."

// Turn is the normalized assistant reply: the one contract object everything
// downstream of the model operates on.
type Turn struct {
	Message       string
	Choices       []string
	RequestedForm any
	Final         bool
}

// MessageOrFallback returns the assistant message, substituting the fixed
// fallback when it is empty after trimming.
func (t Turn) MessageOrFallback() string {
	if strings.TrimSpace(t.Message) == "" {
		return FallbackMessage
	}
	return t.Message
}

// Extract parses raw model output into a JSON object. It first tries the
// whole trimmed string; failing that it retries on the greedy span from the
// first "{" to the last "}", since models like to wrap valid JSON in prose
// or code fences. Returns false when no object can be recovered.
func Extract(raw string) (map[string]any, bool) {
	s := strings.TrimSpace(raw)
	if obj, ok := parseObject(s); ok {
		return obj, true
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		if obj, ok := parseObject(s[start : end+1]); ok {
			return obj, true
		}
	}
	return nil, false
}

func parseObject(s string) (map[string]any, bool) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	obj, ok := v.(map[string]any)
	return obj, ok
}

// Normalize coerces an extracted object into a fully-typed Turn. A nil obj
// means extraction failed: the raw text is surfaced verbatim as the message
// and the conversation stays open with no structured affordances. Missing or
// wrong-typed fields fall back to zero values; this function never fails.
func Normalize(obj map[string]any, raw string) Turn {
	if obj == nil {
		return Turn{Message: raw, Choices: []string{}}
	}
	t := Turn{
		Message:       coerceString(obj["assistant_message"]),
		Choices:       []string{},
		RequestedForm: obj["requested_form"],
		Final:         coerceBool(obj["final"]),
	}
	if items, ok := obj["next_choices"].([]any); ok {
		for _, item := range items {
			c := strings.TrimSpace(coerceString(item))
			if c != "" {
				t.Choices = append(t.Choices, c)
			}
		}
	}
	return t
}

// coerceString converts scalar JSON values to their text form. Composite
// values have no sensible single-line rendering and become "".
func coerceString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

func coerceBool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
