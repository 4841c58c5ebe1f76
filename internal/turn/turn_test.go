package turn

import (
	"reflect"
	"testing"
)

func TestExtractStrictObject(t *testing.T) {
	raw := `{"assistant_message":"Hi","final":true}`
	obj, ok := Extract(raw)
	if !ok {
		t.Fatal("expected extraction to succeed")
	}
	if obj["assistant_message"] != "Hi" {
		t.Errorf("assistant_message = %v", obj["assistant_message"])
	}
	if obj["final"] != true {
		t.Errorf("final = %v", obj["final"])
	}
}

func TestExtractEmbeddedInProse(t *testing.T) {
	raw := "Sure! Here is the reply:\n```json\n{\"assistant_message\":\"Hi\",\n\"final\":false}\n```\nHope that helps."
	obj, ok := Extract(raw)
	if !ok {
		t.Fatal("expected embedded object to be recovered")
	}
	if obj["assistant_message"] != "Hi" {
		t.Errorf("assistant_message = %v", obj["assistant_message"])
	}
}

func TestExtractFailures(t *testing.T) {
	for _, raw := range []string{
		"",
		"just some prose with no braces",
		"[1,2,3]",
		`"a plain string"`,
		"{not json at all",
	} {
		if _, ok := Extract(raw); ok {
			t.Errorf("Extract(%q) unexpectedly succeeded", raw)
		}
	}
}

func TestExtractTopLevelArrayRejected(t *testing.T) {
	// An array wrapping an object: the greedy brace span recovers the
	// inner object.
	obj, ok := Extract(`[{"assistant_message":"Hi"}]`)
	if !ok {
		t.Fatal("expected inner object recovery")
	}
	if obj["assistant_message"] != "Hi" {
		t.Errorf("assistant_message = %v", obj["assistant_message"])
	}
}

func TestNormalizeExtractionFailure(t *testing.T) {
	raw := "The model said something unstructured."
	got := Normalize(nil, raw)
	if got.Message != raw {
		t.Errorf("Message = %q, want raw passthrough", got.Message)
	}
	if len(got.Choices) != 0 {
		t.Errorf("Choices = %v, want empty", got.Choices)
	}
	if got.RequestedForm != nil {
		t.Errorf("RequestedForm = %v, want nil", got.RequestedForm)
	}
	if got.Final {
		t.Error("Final = true, want false")
	}
}

func TestNormalizeDropsBlankChoices(t *testing.T) {
	raw := "Sure!\n{\"assistant_message\":\"Hi\",\"next_choices\":[\"A\",\" \",\"B\"],\"requested_form\":null,\"final\":false}"
	obj, ok := Extract(raw)
	if !ok {
		t.Fatal("extraction failed")
	}
	got := Normalize(obj, raw)
	want := []string{"A", "B"}
	if !reflect.DeepEqual(got.Choices, want) {
		t.Errorf("Choices = %v, want %v", got.Choices, want)
	}
	if got.Message != "Hi" {
		t.Errorf("Message = %q", got.Message)
	}
}

func TestNormalizeMissingAndWrongTypedFields(t *testing.T) {
	cases := []struct {
		name string
		obj  map[string]any
		want Turn
	}{
		{
			name: "all missing",
			obj:  map[string]any{},
			want: Turn{Message: "", Choices: []string{}},
		},
		{
			name: "next_choices not an array",
			obj:  map[string]any{"next_choices": "A"},
			want: Turn{Message: "", Choices: []string{}},
		},
		{
			name: "scalar choice items coerced",
			obj:  map[string]any{"next_choices": []any{"A", 2.0, true, map[string]any{"x": 1}}},
			want: Turn{Message: "", Choices: []string{"A", "2", "true"}},
		},
		{
			name: "message and final wrong types",
			obj:  map[string]any{"assistant_message": 42.0, "final": "yes"},
			want: Turn{Message: "42", Choices: []string{}},
		},
	}
	for _, tc := range cases {
		got := Normalize(tc.obj, "raw")
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("%s: Normalize = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestMessageOrFallback(t *testing.T) {
	if got := (Turn{Message: "  "}).MessageOrFallback(); got != FallbackMessage {
		t.Errorf("blank message: got %q", got)
	}
	if got := (Turn{Message: "Hi"}).MessageOrFallback(); got != "Hi" {
		t.Errorf("non-blank message: got %q", got)
	}
}
