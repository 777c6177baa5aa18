package llm

import (
	"encoding/json"
	"testing"
)

func TestExtractJSON_FencedJSONBlock(t *testing.T) {
	input := "Here you go:\n```json\n{\"entries\": []}\n```\nAnything else?"
	got := ExtractJSON(input)
	if got != `{"entries": []}` {
		t.Errorf("expected bare object, got %q", got)
	}
}

func TestExtractJSON_BareFence(t *testing.T) {
	input := "```\n{\"a\": 1}\n```"
	got := ExtractJSON(input)
	if got != `{"a": 1}` {
		t.Errorf("expected bare object, got %q", got)
	}
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	input := `Sure! The result is {"a": 1, "b": "x}y"} as requested.`
	got := ExtractJSON(input)
	if got != `{"a": 1, "b": "x}y"}` {
		t.Errorf("brace inside string mishandled, got %q", got)
	}
}

func TestExtractJSON_EscapedQuoteInString(t *testing.T) {
	input := `prefix {"msg": "say \"hi\" {now}"} suffix`
	got := ExtractJSON(input)
	if !json.Valid([]byte(got)) {
		t.Fatalf("extracted invalid JSON: %q", got)
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(got), &m); err != nil {
		t.Fatal(err)
	}
	if m["msg"] != `say "hi" {now}` {
		t.Errorf("unexpected msg: %q", m["msg"])
	}
}

func TestExtractJSON_PlainObject(t *testing.T) {
	input := `{"entries": [{"category": "Added", "description": "x"}]}`
	if got := ExtractJSON(input); got != input {
		t.Errorf("clean JSON should pass through, got %q", got)
	}
}

func TestExtractJSON_NoJSON(t *testing.T) {
	input := "  no json here  "
	if got := ExtractJSON(input); got != "no json here" {
		t.Errorf("expected trimmed input back, got %q", got)
	}
}

func TestExtractJSON_NestedObjects(t *testing.T) {
	input := "result: {\"outer\": {\"inner\": {\"deep\": true}}} done"
	got := ExtractJSON(input)
	if got != `{"outer": {"inner": {"deep": true}}}` {
		t.Errorf("nested braces mishandled, got %q", got)
	}
}
