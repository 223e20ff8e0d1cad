package corpus

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"
)

func TestBundledCorpusLoads(t *testing.T) {
	c, err := Bundled()
	if err != nil {
		t.Fatalf("Bundled() failed: %v", err)
	}
	if len(c.Vocabulary) == 0 {
		t.Fatal("expected bundled vocabulary")
	}
	if len(c.Texts) == 0 {
		t.Fatal("expected bundled texts")
	}

	w, ok := c.Word("sefer")
	if !ok {
		t.Fatal("expected word sefer")
	}
	if w.Hebrew != "ספר" {
		t.Errorf("expected headword ספר, got %q", w.Hebrew)
	}
	if got := w.PrimaryEnglish(); got != "book" {
		t.Errorf("PrimaryEnglish() = %q; want book", got)
	}

	if _, ok := c.Text("boy-and-book"); !ok {
		t.Error("expected text boy-and-book")
	}
	if _, ok := c.Word("no-such-word"); ok {
		t.Error("expected unknown word lookup to fail")
	}
}

func TestLoadMissingFilesYieldsEmptyCorpus(t *testing.T) {
	c, err := Load(fstest.MapFS{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(c.Vocabulary) != 0 || len(c.Texts) != 0 {
		t.Fatalf("expected empty corpus, got %d words and %d texts", len(c.Vocabulary), len(c.Texts))
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	fsys := fstest.MapFS{
		VocabularyFile: {Data: []byte(`[{"id": "a", "hebrew": `)},
	}
	if _, err := Load(fsys); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidationReportsEveryProblem(t *testing.T) {
	vocabulary := []VocabularyEntry{
		{ID: "a", Hebrew: "א"},
		{ID: "a", Hebrew: "ב"},
		{ID: "", Hebrew: "ג"},
		{ID: "d", Hebrew: " "},
	}
	texts := []Text{{ID: "t"}, {ID: "t"}}

	_, err := New(vocabulary, texts)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 4 {
		t.Fatalf("expected 4 problems, got %d: %v", len(verr.Problems), verr.Problems)
	}
	if !strings.Contains(err.Error(), `duplicate id "a"`) {
		t.Errorf("expected duplicate id in message, got %q", err.Error())
	}
}

func TestHasCategory(t *testing.T) {
	e := VocabularyEntry{Categories: []string{"Nouns", "Food"}}
	if !e.HasCategory("Food") {
		t.Error("expected Food")
	}
	if e.HasCategory("food") {
		t.Error("category match must be exact")
	}
}

func TestFirstMeaningAbsent(t *testing.T) {
	e := VocabularyEntry{ID: "x", Hebrew: "x"}
	if _, ok := e.FirstMeaning(); ok {
		t.Error("expected no meaning")
	}
	if e.PrimaryEnglish() != "" {
		t.Error("expected empty primary English")
	}
}
