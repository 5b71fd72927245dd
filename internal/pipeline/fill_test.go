package pipeline

import (
	"reflect"
	"strings"
	"testing"
)

func TestFillEmptyInputEqualsDefault(t *testing.T) {
	seed := "Moon Landing"
	got := FillWorksheet(map[string]any{}, seed)
	want := DefaultWorksheet(seed)

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FillWorksheet({}) = %+v, want default worksheet %+v", got, want)
	}

	// Deterministic: calling again yields the same record
	again := FillWorksheet(map[string]any{}, seed)
	if !reflect.DeepEqual(got, again) {
		t.Error("FillWorksheet({}) is not deterministic")
	}
}

func TestDefaultSeedAppearsInParentNote(t *testing.T) {
	w := DefaultWorksheet("Moon Landing")
	if !strings.Contains(w.ParentNote, "Moon Landing") {
		t.Errorf("Expected seed in default parent note, got %q", w.ParentNote)
	}
}

// A valid field keeps the model value even when sibling fields fall back.
func TestFieldLevelFallback(t *testing.T) {
	parsed := map[string]any{
		"title": "Cats",
		"story": []any{},
	}
	w := FillWorksheet(parsed, "seed")
	def := DefaultWorksheet("seed")

	if w.Title != "Cats" {
		t.Errorf("Expected model title to be kept, got %q", w.Title)
	}
	if !reflect.DeepEqual(w.Story, def.Story) {
		t.Errorf("Expected default story for empty list, got %v", w.Story)
	}
}

func TestStoryDropsEmptiesAndTruncates(t *testing.T) {
	parsed := map[string]any{
		"story": []any{" one ", "", "two", 3, "three", "four", "five"},
	}
	w := FillWorksheet(parsed, "seed")
	want := []string{"one", "two", "three", "four"}
	if !reflect.DeepEqual(w.Story, want) {
		t.Errorf("Story = %v, want %v", w.Story, want)
	}
}

func TestWordsDropAndTruncate(t *testing.T) {
	parsed := map[string]any{
		"words": []any{
			map[string]any{"word": "fox", "ko": "여우"},
			map[string]any{"word": " "},           // empty word: dropped
			map[string]any{"ko": "고양이"},           // no word: dropped
			"junk",                                // not an object: dropped
			map[string]any{"word": "run", "en": "go fast"},
			map[string]any{"word": "sun"},
			map[string]any{"word": "sky"},
			map[string]any{"word": "sea"},
			map[string]any{"word": "dog"}, // sixth valid word: truncated
		},
	}
	w := FillWorksheet(parsed, "seed")

	if len(w.Words) != 5 {
		t.Fatalf("Expected 5 words after drop+truncate, got %d", len(w.Words))
	}
	if w.Words[0] != (WordEntry{Word: "fox", Translation: "여우"}) {
		t.Errorf("Words[0] = %+v", w.Words[0])
	}
	if w.Words[1] != (WordEntry{Word: "run", Gloss: "go fast"}) {
		t.Errorf("Words[1] = %+v (missing ko should stay empty)", w.Words[1])
	}
	if w.Words[4].Word != "sea" {
		t.Errorf("Expected truncation to first 5 valid words, got last=%q", w.Words[4].Word)
	}
}

func TestReadAloudDerivedFromStory(t *testing.T) {
	parsed := map[string]any{
		"story": []any{"A fox ran.", "It was fast."},
	}
	w := FillWorksheet(parsed, "seed")
	want := "A fox ran. / It was fast."
	if w.ReadAloud != want {
		t.Errorf("ReadAloud = %q, want derived %q", w.ReadAloud, want)
	}
}

func TestReadAloudKeptWhenPresent(t *testing.T) {
	parsed := map[string]any{
		"read_aloud": "Hello / world",
	}
	w := FillWorksheet(parsed, "seed")
	if w.ReadAloud != "Hello / world" {
		t.Errorf("ReadAloud = %q, want model value", w.ReadAloud)
	}
}

// Answer keys outside {A,B,C} fall back to the default key, but a valid
// question and choices from the model are kept.
func TestAnswerKeyDomain(t *testing.T) {
	for _, bad := range []any{"D", "", "x", 7, true} {
		parsed := map[string]any{
			"quiz": map[string]any{
				"mcq": map[string]any{
					"q":       "What color is the sky?",
					"choices": map[string]any{"A": "Red", "B": "Blue", "C": "Green"},
					"answer":  bad,
				},
			},
		}
		w := FillWorksheet(parsed, "seed")
		def := DefaultWorksheet("seed")

		if w.Quiz.MCQ.AnswerKey != def.Quiz.MCQ.AnswerKey {
			t.Errorf("answer=%v: AnswerKey = %q, want default %q", bad, w.Quiz.MCQ.AnswerKey, def.Quiz.MCQ.AnswerKey)
		}
		if w.Quiz.MCQ.Question != "What color is the sky?" {
			t.Errorf("answer=%v: question should be kept, got %q", bad, w.Quiz.MCQ.Question)
		}
		if w.Quiz.MCQ.Choices.B != "Blue" {
			t.Errorf("answer=%v: choices should be kept, got %+v", bad, w.Quiz.MCQ.Choices)
		}
	}
}

func TestAnswerKeyCaseNormalized(t *testing.T) {
	parsed := map[string]any{
		"quiz": map[string]any{
			"pic": map[string]any{"answer": "b"},
		},
	}
	w := FillWorksheet(parsed, "seed")
	if w.Quiz.Pic.AnswerKey != "B" {
		t.Errorf("AnswerKey = %q, want case-normalized B", w.Quiz.Pic.AnswerKey)
	}
}

func TestTFAnswerMustBeBool(t *testing.T) {
	// A string "true" is not a boolean and must not be accepted.
	parsed := map[string]any{
		"quiz": map[string]any{
			"tf": map[string]any{"q": "The sky is green.", "answer": "true"},
		},
	}
	w := FillWorksheet(parsed, "seed")
	if w.Quiz.TF.Answer != DefaultWorksheet("seed").Quiz.TF.Answer {
		t.Errorf("Expected default tf answer for string value, got %t", w.Quiz.TF.Answer)
	}
	if w.Quiz.TF.Question != "The sky is green." {
		t.Errorf("Question should be kept, got %q", w.Quiz.TF.Question)
	}

	// A genuine boolean is accepted.
	parsed["quiz"].(map[string]any)["tf"].(map[string]any)["answer"] = true
	w = FillWorksheet(parsed, "seed")
	if w.Quiz.TF.Answer != true {
		t.Error("Expected genuine boolean answer to be kept")
	}
}

func TestIncompleteChoicesRejected(t *testing.T) {
	parsed := map[string]any{
		"quiz": map[string]any{
			"mcq": map[string]any{
				"q":       "Pick one",
				"choices": map[string]any{"A": "Red", "B": "Blue"}, // no C
			},
		},
	}
	w := FillWorksheet(parsed, "seed")
	def := DefaultWorksheet("seed")
	if w.Quiz.MCQ.Choices != def.Quiz.MCQ.Choices {
		t.Errorf("Incomplete choices should fall back, got %+v", w.Quiz.MCQ.Choices)
	}
	if w.Quiz.MCQ.Question != "Pick one" {
		t.Errorf("Question should still be kept, got %q", w.Quiz.MCQ.Question)
	}
}

// End-to-end normalize + fill for a typical fenced model response.
func TestFillFromFencedResponse(t *testing.T) {
	raw := "Here is your worksheet: ```json {\"title\": \"Fox Run\", " +
		"\"story\": [\"A fox ran.\", \"It was fast.\", \"It went home.\"], " +
		"\"quiz\": {\"tf\": {\"q\": \"The fox is slow.\", \"answer\": false}}} ``` Hope this helps!"

	w := FillWorksheet(ExtractJSON(raw), "Fox Run")
	def := DefaultWorksheet("Fox Run")

	if w.Title != "Fox Run" {
		t.Errorf("Title = %q", w.Title)
	}
	if len(w.Story) != 3 {
		t.Errorf("Expected 3 story lines, got %v", w.Story)
	}
	if w.Quiz.TF.Question != "The fox is slow." || w.Quiz.TF.Answer != false {
		t.Errorf("TF = %+v", w.Quiz.TF)
	}
	if !reflect.DeepEqual(w.Words, def.Words) {
		t.Errorf("Expected default words, got %v", w.Words)
	}
	if !reflect.DeepEqual(w.Quiz.MCQ, def.Quiz.MCQ) {
		t.Errorf("Expected default mcq, got %+v", w.Quiz.MCQ)
	}
	if !reflect.DeepEqual(w.Quiz.Pic, def.Quiz.Pic) {
		t.Errorf("Expected default pic, got %+v", w.Quiz.Pic)
	}
	if w.ParentNote != def.ParentNote {
		t.Errorf("Expected default parent note, got %q", w.ParentNote)
	}
	if w.ReadAloud != "A fox ran. / It was fast. / It went home." {
		t.Errorf("ReadAloud = %q", w.ReadAloud)
	}
}
