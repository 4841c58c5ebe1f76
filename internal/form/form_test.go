package form

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

func sampleForm() map[string]any {
	return map[string]any{
		"title":        "Contact details",
		"submit_label": "Send",
		"fields": []any{
			map[string]any{"key": "name", "label": "Full name", "type": "short_text", "required": true, "max_length": 10.0},
			map[string]any{"key": "age", "label": "Age", "type": "number", "min": 18.0, "max": 99.0},
			map[string]any{"key": "channel", "label": "Preferred channel", "type": "select", "required": true, "options": []any{"email", "phone"}},
			map[string]any{"key": "topics", "label": "Topics", "type": "multiselect", "options": []any{"billing", "technical"}},
			map[string]any{"key": "urgent", "label": "Urgent", "type": "boolean"},
			map[string]any{"key": "since", "label": "Since", "type": "date"},
		},
	}
}

func TestDecode(t *testing.T) {
	spec, warnings := Decode(sampleForm())
	if spec == nil {
		t.Fatal("expected a usable spec")
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if spec.Title != "Contact details" || spec.SubmitLabel != "Send" {
		t.Errorf("title/submit = %q/%q", spec.Title, spec.SubmitLabel)
	}
	if len(spec.Fields) != 6 {
		t.Fatalf("fields = %d, want 6", len(spec.Fields))
	}
	if spec.Fields[0].MaxLength != 10 {
		t.Errorf("max_length = %d", spec.Fields[0].MaxLength)
	}
}

func TestDecodeDropsBadFields(t *testing.T) {
	spec, warnings := Decode(map[string]any{
		"title": "t",
		"fields": []any{
			map[string]any{"key": "  ", "label": "no key", "type": "short_text"},
			map[string]any{"key": "x", "label": "mystery", "type": "slider"},
			map[string]any{"key": "y", "label": "empty select", "type": "select", "options": []any{}},
			map[string]any{"key": "ok", "label": "OK", "type": "boolean"},
		},
	})
	if spec == nil {
		t.Fatal("expected spec to survive with one usable field")
	}
	if len(spec.Fields) != 1 || spec.Fields[0].Key != "ok" {
		t.Errorf("fields = %+v", spec.Fields)
	}
	// empty key drops silently, the other two warn
	if len(warnings) != 2 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestDecodeZeroUsableFieldsIsNoForm(t *testing.T) {
	spec, _ := Decode(map[string]any{
		"title":  "t",
		"fields": []any{map[string]any{"key": "", "type": "short_text"}},
	})
	if spec != nil {
		t.Errorf("spec = %+v, want nil", spec)
	}
	if spec, _ := Decode("not an object"); spec != nil {
		t.Errorf("non-object decoded to %+v", spec)
	}
	if spec, _ := Decode(nil); spec != nil {
		t.Errorf("nil decoded to %+v", spec)
	}
}

func TestDecodeMaxLengthClamp(t *testing.T) {
	spec, _ := Decode(map[string]any{
		"fields": []any{
			map[string]any{"key": "a", "type": "short_text", "max_length": 500.0},
			map[string]any{"key": "b", "type": "short_text"},
		},
	})
	if spec.Fields[0].MaxLength != hardMaxLength {
		t.Errorf("clamped max_length = %d, want %d", spec.Fields[0].MaxLength, hardMaxLength)
	}
	if spec.Fields[1].MaxLength != defaultMaxLength {
		t.Errorf("default max_length = %d, want %d", spec.Fields[1].MaxLength, defaultMaxLength)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	spec, _ := Decode(sampleForm())
	sub, verr := spec.Validate(map[string]any{"age": 30.0})
	if sub != nil {
		t.Errorf("submission = %v, want nil", sub)
	}
	if verr == nil {
		t.Fatal("expected validation error")
	}
	want := []string{"Full name", "Preferred channel"}
	if !reflect.DeepEqual(verr.MissingLabels, want) {
		t.Errorf("missing = %v, want %v", verr.MissingLabels, want)
	}
}

func TestValidateRequiredSelectNoneChosen(t *testing.T) {
	spec, _ := Decode(map[string]any{
		"fields": []any{
			map[string]any{"key": "channel", "label": "Preferred channel", "type": "select", "required": true, "options": []any{"email", "phone"}},
		},
	})
	_, verr := spec.Validate(map[string]any{"channel": "carrier pigeon"})
	if verr == nil {
		t.Fatal("expected rejection for off-options selection")
	}
	if !reflect.DeepEqual(verr.MissingLabels, []string{"Preferred channel"}) {
		t.Errorf("missing = %v", verr.MissingLabels)
	}
}

func TestValidateCoercion(t *testing.T) {
	spec, _ := Decode(sampleForm())
	sub, verr := spec.Validate(map[string]any{
		"name":    "  A very long name indeed  ",
		"age":     150.0,
		"channel": "email",
		"topics":  []any{"billing", "nonsense"},
		"urgent":  true,
		"since":   "2026-01-15",
	})
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if got := sub["name"]; got != "A very lon" {
		t.Errorf("name = %q", got)
	}
	if got := sub["age"]; got != 99.0 {
		t.Errorf("age = %v, want clamped 99", got)
	}
	if got := sub["topics"]; !reflect.DeepEqual(got, []string{"billing"}) {
		t.Errorf("topics = %v", got)
	}
	if got := sub["urgent"]; got != true {
		t.Errorf("urgent = %v", got)
	}
	if got := sub["since"]; got != "2026-01-15" {
		t.Errorf("since = %v", got)
	}
}

func TestValidateShortTextTruncatesByRunes(t *testing.T) {
	spec, _ := Decode(map[string]any{
		"fields": []any{
			map[string]any{"key": "name", "label": "Name", "type": "short_text", "max_length": 5.0},
		},
	})
	sub, verr := spec.Validate(map[string]any{"name": "héllo wörld"})
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	got, _ := sub["name"].(string)
	if got != "héllo" {
		t.Errorf("name = %q, want %q", got, "héllo")
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncation produced invalid UTF-8: %q", got)
	}
}

func TestValidateDefaults(t *testing.T) {
	spec, _ := Decode(map[string]any{
		"fields": []any{
			map[string]any{"key": "n", "label": "N", "type": "number", "min": 18.0},
			map[string]any{"key": "m", "label": "M", "type": "number"},
			map[string]any{"key": "b", "label": "B", "type": "boolean"},
			map[string]any{"key": "d", "label": "D", "type": "date"},
		},
	})
	sub, verr := spec.Validate(map[string]any{"d": "not-a-date"})
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr)
	}
	if sub["n"] != 18.0 {
		t.Errorf("n = %v, want min default", sub["n"])
	}
	if sub["m"] != 0.0 {
		t.Errorf("m = %v, want 0", sub["m"])
	}
	if sub["b"] != false {
		t.Errorf("b = %v, want false", sub["b"])
	}
	if sub["d"] != "" {
		t.Errorf("d = %v, want empty for invalid date", sub["d"])
	}
}

func TestSubmissionContentRoundTrip(t *testing.T) {
	sub := Submission{"name": "Ana", "age": 30.0}
	content := sub.EncodeContent()
	got, ok := DecodeSubmissionContent(content)
	if !ok {
		t.Fatal("decode failed")
	}
	if got["name"] != "Ana" || got["age"] != 30.0 {
		t.Errorf("decoded = %v", got)
	}

	if _, ok := DecodeSubmissionContent("plain message"); ok {
		t.Error("untagged content decoded")
	}
	if _, ok := DecodeSubmissionContent(SubmissionPrefix + "{broken"); ok {
		t.Error("broken suffix decoded")
	}
}
