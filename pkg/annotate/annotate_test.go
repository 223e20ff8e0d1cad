package annotate

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/japaniel/milim/pkg/corpus"
)

func testVocabulary() []corpus.VocabularyEntry {
	return []corpus.VocabularyEntry{
		{
			ID:     "sefer",
			Hebrew: "ספר",
			Forms:  []corpus.Form{{Type: "Plural", Text: "ספרים"}},
			Meanings: []corpus.Meaning{
				{English: []string{"book"}, Arabic: []string{"كتاب"}},
			},
		},
		{
			ID:     "gadol",
			Hebrew: "גדול",
			Forms:  []corpus.Form{{Type: "Feminine", Text: "גדולה"}},
			Meanings: []corpus.Meaning{
				{English: []string{"big", "large"}, Arabic: []string{"كبير"}},
			},
		},
		{ID: "yom", Hebrew: "יום"},
		{ID: "latin", Hebrew: "Shalom"},
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"ספר.", "ספר"},
		{"(גדולה)", "גדולה"},
		{`"שלום!"`, "שלום"},
		{"Hello,", "hello"},
		{"?!.,;:", ""},
		{"a-b", "a-b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.out {
			t.Errorf("Normalize(%q) = %q; want %q", tt.in, got, tt.out)
		}
	}
}

func TestTokenizePreservesSeparators(t *testing.T) {
	inputs := []string{
		"ילד קורא ספר גדול.",
		"  leading and trailing  ",
		"line one\nline two\t\ttab",
		"",
		"single",
	}
	for _, in := range inputs {
		tokens := Tokenize(in)
		if got := strings.Join(tokens, ""); got != in {
			t.Errorf("Tokenize(%q) joined = %q", in, got)
		}
		for i := 1; i < len(tokens); i++ {
			a := strings.TrimSpace(tokens[i-1]) == ""
			b := strings.TrimSpace(tokens[i]) == ""
			if a == b {
				t.Errorf("Tokenize(%q): adjacent tokens %q and %q of same class", in, tokens[i-1], tokens[i])
			}
		}
	}

	want := []string{"ילד", " ", "קורא", "  ", "ספר."}
	if diff := cmp.Diff(want, Tokenize("ילד קורא  ספר.")); diff != "" {
		t.Errorf("Tokenize mismatch (-want +got):\n%s", diff)
	}
}

func TestIndexLookup(t *testing.T) {
	idx := NewIndex(testVocabulary())

	tests := []struct {
		token string
		want  string
	}{
		{"ספר", "sefer"},
		{"ספרים,", "sefer"},
		{"גדולה.", "gadol"},
		{"shalom!", "latin"},
		{"הספר", ""},
		{"...", ""},
	}
	for _, tt := range tests {
		e, ok := idx.Lookup(tt.token)
		if tt.want == "" {
			if ok {
				t.Errorf("Lookup(%q) matched %s; want no match", tt.token, e.ID)
			}
			continue
		}
		if !ok || e.ID != tt.want {
			t.Errorf("Lookup(%q) = %v, %v; want %s", tt.token, e, ok, tt.want)
		}
	}
}

func TestIndexCollisionLaterWins(t *testing.T) {
	entries := []corpus.VocabularyEntry{
		{ID: "first", Hebrew: "אוכל"},
		{ID: "second", Hebrew: "לאכול", Forms: []corpus.Form{{Text: "אוכל"}}},
	}
	idx := NewIndex(entries)
	e, ok := idx.Lookup("אוכל")
	if !ok || e.ID != "second" {
		t.Fatalf("expected later mapping to win, got %v", e)
	}
	if idx.Len() != 2 {
		t.Errorf("expected 2 surfaces, got %d", idx.Len())
	}
}

func TestIndexSkipsEmptySurfaces(t *testing.T) {
	idx := NewIndex([]corpus.VocabularyEntry{
		{ID: "p", Hebrew: "...", Forms: []corpus.Form{{Text: ""}}},
	})
	if idx.Len() != 0 {
		t.Fatalf("expected no surfaces, got %d", idx.Len())
	}
	if _, ok := idx.Lookup("..."); ok {
		t.Fatal("punctuation-only token must never match")
	}
}

func TestAnalyzeMarksInteractiveTokens(t *testing.T) {
	a := NewAnalyzer(testVocabulary())
	spans := a.Analyze("ילד קורא ספר גדול.", "")

	var joined strings.Builder
	interactive := map[string]string{}
	for _, s := range spans {
		joined.WriteString(s.Text)
		if s.Space && s.Interactive {
			t.Errorf("whitespace span %q marked interactive", s.Text)
		}
		if s.Interactive {
			interactive[s.Text] = s.WordID
			if s.Entry == nil || s.Entry.ID != s.WordID {
				t.Errorf("span %q has inconsistent entry", s.Text)
			}
		}
	}
	if joined.String() != "ילד קורא ספר גדול." {
		t.Errorf("spans do not reproduce input: %q", joined.String())
	}

	want := map[string]string{"ספר": "sefer", "גדול.": "gadol"}
	if diff := cmp.Diff(want, interactive); diff != "" {
		t.Errorf("interactive spans mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeHighlight(t *testing.T) {
	a := NewAnalyzer(testVocabulary())

	spans := a.Analyze("הספר גדולה, גדולה!", "גדולה")
	var highlighted []string
	for _, s := range spans {
		if s.Highlighted {
			highlighted = append(highlighted, s.Text)
		}
	}
	if diff := cmp.Diff([]string{"גדולה,", "גדולה!"}, highlighted); diff != "" {
		t.Errorf("highlight mismatch (-want +got):\n%s", diff)
	}

	// Unknown words can be highlighted too.
	spans = a.Analyze("הספר יפה", "הספר")
	if !spans[0].Highlighted || spans[0].Interactive {
		t.Errorf("expected plain highlighted span, got %+v", spans[0])
	}

	// Punctuation-only highlight targets nothing.
	for _, s := range a.Analyze("ספר . ספר", "..") {
		if s.Highlighted {
			t.Errorf("span %q unexpectedly highlighted", s.Text)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := SplitSentences("א. ב! ג? ד׃ה\nו")
	want := []string{"א.", " ב!", " ג?", " ד׃", "ה\n", "ו"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SplitSentences mismatch (-want +got):\n%s", diff)
	}
}
