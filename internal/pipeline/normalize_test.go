package pipeline

import (
	"testing"
)

func TestExtractJSONDirect(t *testing.T) {
	m := ExtractJSON(`{"title": "Cats", "story": ["A cat sat."]}`)
	if m["title"] != "Cats" {
		t.Errorf("Expected title %q, got %v", "Cats", m["title"])
	}
}

func TestExtractJSONWrappedInProse(t *testing.T) {
	raw := "Here is your worksheet: ```json {\"title\": \"Fox Run\", " +
		"\"story\": [\"A fox ran.\", \"It was fast.\", \"It went home.\"], " +
		"\"quiz\": {\"tf\": {\"q\": \"The fox is slow.\", \"answer\": false}}} ``` Hope this helps!"

	m := ExtractJSON(raw)
	if m["title"] != "Fox Run" {
		t.Fatalf("Expected title %q, got %v", "Fox Run", m["title"])
	}
	story, ok := m["story"].([]any)
	if !ok || len(story) != 3 {
		t.Errorf("Expected 3 story lines, got %v", m["story"])
	}
}

func TestExtractJSONCurlyQuotes(t *testing.T) {
	raw := "Sure! {“title”: “A Happy Star”}"
	m := ExtractJSON(raw)
	if m["title"] != "A Happy Star" {
		t.Errorf("Expected curly quotes to be repaired, got %v", m)
	}
}

func TestExtractJSONTrailingCommas(t *testing.T) {
	raw := `{"title": "Hi", "story": ["a", "b",],}`
	m := ExtractJSON(raw)
	if m["title"] != "Hi" {
		t.Errorf("Expected trailing commas to be stripped, got %v", m)
	}
}

func TestExtractJSONCombinedRepairs(t *testing.T) {
	raw := "output: {“title”: “Hi”, “story”: [“a”,],}"
	m := ExtractJSON(raw)
	if m["title"] != "Hi" {
		t.Errorf("Expected both repairs to apply, got %v", m)
	}
}

// ExtractJSON must return a usable (possibly empty) map for any input.
func TestExtractJSONNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"no json here at all",
		"{",
		"}{",
		`{"title":`,
		`{"a": }`,
		"[1, 2, 3]",
		"null",
		"42",
		"```json\n```",
		`{"nested": {"broken": }`,
	}
	for _, in := range inputs {
		m := ExtractJSON(in)
		if m == nil {
			t.Errorf("ExtractJSON(%q) returned nil map", in)
		}
		if len(m) != 0 {
			t.Errorf("ExtractJSON(%q) expected empty map, got %v", in, m)
		}
	}
}

func TestNormalizeQuotesRule(t *testing.T) {
	in := "“a” ‘b’"
	want := `"a" 'b'`
	if got := normalizeQuotes(in); got != want {
		t.Errorf("normalizeQuotes(%q) = %q, want %q", in, got, want)
	}
}

func TestStripTrailingCommasRule(t *testing.T) {
	in := `{"a": [1, 2, ], "b": 3, }`
	want := `{"a": [1, 2], "b": 3}`
	if got := stripTrailingCommas(in); got != want {
		t.Errorf("stripTrailingCommas(%q) = %q, want %q", in, got, want)
	}
}
