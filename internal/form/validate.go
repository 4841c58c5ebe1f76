package form

import (
	"encoding/json"
	"strings"
)

// Submission maps field keys to their coerced values: string, float64, bool,
// []string, or a date string.
type Submission map[string]any

// SubmissionPrefix tags a user history entry carrying an encoded submission
// so history rendering can special-case it.
const SubmissionPrefix = "[form-submission] "

// ValidationError rejects a submission with the labels of every required
// field left empty, in field order. The form stays open; inputs reset.
type ValidationError struct {
	MissingLabels []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.MissingLabels, ", ")
}

// Validate coerces submitted values against the spec and checks required
// fields. A field is missing when required and its coerced value is
// empty-equivalent (nil, empty string, empty list). Unknown keys in values
// are ignored; fields absent from values coerce from nil.
func (s *Spec) Validate(values map[string]any) (Submission, *ValidationError) {
	sub := make(Submission, len(s.Fields))
	var missing []string

	for _, f := range s.Fields {
		v := coerceValue(f, values[f.Key])
		if f.Required && emptyEquivalent(v) {
			missing = append(missing, f.Label)
			continue
		}
		sub[f.Key] = v
	}

	if len(missing) > 0 {
		return nil, &ValidationError{MissingLabels: missing}
	}
	return sub, nil
}

func coerceValue(f Field, v any) any {
	switch f.Type {
	case ShortText:
		s := strings.TrimSpace(str(v))
		if max := f.MaxLength; max > 0 {
			// cap counts runes, not bytes, so truncation never splits a
			// multi-byte character
			if r := []rune(s); len(r) > max {
				s = string(r[:max])
			}
		}
		return s
	case Number:
		if v == nil {
			if f.Min != nil {
				return *f.Min
			}
			return float64(0)
		}
		n := number(v)
		if f.Min != nil && n < *f.Min {
			n = *f.Min
		}
		if f.Max != nil && n > *f.Max {
			n = *f.Max
		}
		return n
	case Select:
		s := strings.TrimSpace(str(v))
		for _, o := range f.Options {
			if s == o {
				return s
			}
		}
		// anything outside the option set is the explicit "none chosen" state
		return ""
	case Multiselect:
		var picked []string
		for _, item := range anySlice(v) {
			s := strings.TrimSpace(str(item))
			for _, o := range f.Options {
				if s == o {
					picked = append(picked, s)
					break
				}
			}
		}
		if picked == nil {
			picked = []string{}
		}
		return picked
	case Boolean:
		return boolean(v)
	case Date:
		return parseDate(v)
	default:
		return nil
	}
}

func emptyEquivalent(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	default:
		return false
	}
}

// EncodeContent renders the submission as a synthetic user-turn content
// string: the fixed prefix followed by the JSON-encoded mapping.
func (s Submission) EncodeContent() string {
	b, err := json.Marshal(map[string]any(s))
	if err != nil {
		return SubmissionPrefix + "{}"
	}
	return SubmissionPrefix + string(b)
}

// DecodeSubmissionContent recognizes an encoded submission in a history
// entry. Returns false when the content is not tagged or the suffix fails to
// parse, in which case callers fall back to raw-text display.
func DecodeSubmissionContent(content string) (Submission, bool) {
	rest, ok := strings.CutPrefix(content, SubmissionPrefix)
	if !ok {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(rest), &m); err != nil {
		return nil, false
	}
	return Submission(m), true
}
