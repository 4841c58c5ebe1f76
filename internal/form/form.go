package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FieldType is a closed set of input kinds. Anything else is dropped at
// decode time rather than crashing the renderer.
type FieldType string

const (
	ShortText   FieldType = "short_text"
	Number      FieldType = "number"
	Select      FieldType = "select"
	Multiselect FieldType = "multiselect"
	Boolean     FieldType = "boolean"
	Date        FieldType = "date"
)

const (
	defaultMaxLength = 60
	hardMaxLength    = 120

	dateLayout = "2006-01-02"
)

type Field struct {
	Key         string    `json:"key"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required"`
	Help        string    `json:"help,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	MaxLength   int       `json:"max_length,omitempty"`
}

type Spec struct {
	Title       string  `json:"title"`
	SubmitLabel string  `json:"submit_label"`
	Fields      []Field `json:"fields"`
}

// Decode converts the untyped requested_form value from a model turn into a
// typed Spec. Fields with an empty key are dropped silently; fields with an
// unknown type, or choice fields with no options, are dropped with a
// warning. A form that ends up with zero usable fields is no form at all.
func Decode(v any) (*Spec, []string) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, nil
	}

	spec := &Spec{
		Title:       str(obj["title"]),
		SubmitLabel: str(obj["submit_label"]),
	}
	if spec.SubmitLabel == "" {
		spec.SubmitLabel = "Submit"
	}

	var warnings []string
	rawFields, _ := obj["fields"].([]any)
	for _, rf := range rawFields {
		fobj, ok := rf.(map[string]any)
		if !ok {
			continue
		}
		f, warn := decodeField(fobj)
		if warn != "" {
			warnings = append(warnings, warn)
		}
		if f != nil {
			spec.Fields = append(spec.Fields, *f)
		}
	}

	if len(spec.Fields) == 0 {
		return nil, warnings
	}
	return spec, warnings
}

func decodeField(obj map[string]any) (*Field, string) {
	key := strings.TrimSpace(str(obj["key"]))
	if key == "" {
		return nil, ""
	}

	f := Field{
		Key:         key,
		Label:       str(obj["label"]),
		Type:        FieldType(str(obj["type"])),
		Required:    boolean(obj["required"]),
		Help:        str(obj["help"]),
		Placeholder: str(obj["placeholder"]),
	}
	if f.Label == "" {
		f.Label = key
	}

	switch f.Type {
	case ShortText:
		f.MaxLength = clampLength(number(obj["max_length"]))
	case Number:
		f.Min = optNumber(obj["min"])
		f.Max = optNumber(obj["max"])
	case Select, Multiselect:
		for _, o := range anySlice(obj["options"]) {
			if s := strings.TrimSpace(str(o)); s != "" {
				f.Options = append(f.Options, s)
			}
		}
		if len(f.Options) == 0 {
			return nil, fmt.Sprintf("field %q: %s without options, dropped", key, f.Type)
		}
	case Boolean, Date:
	default:
		return nil, fmt.Sprintf("field %q: unsupported type %q, dropped", key, string(f.Type))
	}

	return &f, ""
}

func clampLength(n float64) int {
	v := int(n)
	if v < 1 {
		return defaultMaxLength
	}
	if v > hardMaxLength {
		return hardMaxLength
	}
	return v
}

// --- untyped JSON coercion helpers ---

func str(v any) string {
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

func boolean(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func optNumber(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func anySlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func parseDate(v any) string {
	s := strings.TrimSpace(str(v))
	if s == "" {
		return ""
	}
	if _, err := time.Parse(dateLayout, s); err != nil {
		return ""
	}
	return s
}
