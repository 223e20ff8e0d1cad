package browse

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/japaniel/milim/pkg/corpus"
)

func sampleVocabulary() []corpus.VocabularyEntry {
	return []corpus.VocabularyEntry{
		{
			ID: "sefer", Hebrew: "ספר", PronunciationText: "sefer",
			Categories: []string{"Nouns", "Education"},
			Forms:      []corpus.Form{{Type: "Plural", Text: "ספרים"}},
			Meanings:   []corpus.Meaning{{English: []string{"book"}, Arabic: []string{"كتاب"}}},
		},
		{
			ID: "bayit", Hebrew: "בית", PronunciationText: "bayit",
			Categories: []string{"Nouns", "Home"},
			Meanings:   []corpus.Meaning{{English: []string{"House", "home"}, Arabic: []string{"بيت"}}},
		},
		{
			ID: "gadol", Hebrew: "גדול", PronunciationText: "gadol",
			Categories: []string{"Adjectives"},
			Forms:      []corpus.Form{{Type: "Feminine", Text: "גדולה"}},
			Meanings:   []corpus.Meaning{{English: []string{"big"}}},
		},
		{ID: "yom", Hebrew: "יום", Categories: []string{"Nouns", "Time"}},
	}
}

func ids(entries []corpus.VocabularyEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func TestVocabularyCategories(t *testing.T) {
	got := VocabularyCategories(sampleVocabulary())
	want := []string{"All", "Nouns", "Education", "Home", "Adjectives", "Time"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}

	if got := VocabularyCategories(nil); !cmp.Equal(got, []string{"All"}) {
		t.Errorf("empty vocabulary categories = %v", got)
	}
}

func TestFilterVocabulary(t *testing.T) {
	vocab := sampleVocabulary()

	tests := []struct {
		name string
		q    VocabularyQuery
		want []string
	}{
		{"all hebrew asc", VocabularyQuery{Category: "All"}, []string{"bayit", "gadol", "yom", "sefer"}},
		{"empty category is all", VocabularyQuery{}, []string{"bayit", "gadol", "yom", "sefer"}},
		{"hebrew desc", VocabularyQuery{Sort: HebrewDesc}, []string{"sefer", "yom", "gadol", "bayit"}},
		{"english asc empty first", VocabularyQuery{Sort: EnglishAsc}, []string{"yom", "gadol", "sefer", "bayit"}},
		{"english desc", VocabularyQuery{Sort: EnglishDesc}, []string{"bayit", "sefer", "gadol", "yom"}},
		{"category", VocabularyQuery{Category: "Nouns"}, []string{"bayit", "yom", "sefer"}},
		{"unknown category", VocabularyQuery{Category: "Verbs"}, []string{}},
		{"search english case-insensitive", VocabularyQuery{Search: "HOUSE"}, []string{"bayit"}},
		{"search arabic", VocabularyQuery{Search: "كتاب"}, []string{"sefer"}},
		{"search pronunciation", VocabularyQuery{Search: "gad"}, []string{"gadol"}},
		{"search form", VocabularyQuery{Search: "ספרים"}, []string{"sefer"}},
		{"search and category", VocabularyQuery{Category: "Home", Search: "ספר"}, []string{}},
		{"unknown sort falls back", VocabularyQuery{Sort: "bogus"}, []string{"bayit", "gadol", "yom", "sefer"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterVocabulary(vocab, tt.q))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if diff := cmp.Diff([]string{"sefer", "bayit", "gadol", "yom"}, ids(vocab)); diff != "" {
		t.Errorf("input reordered (-want +got):\n%s", diff)
	}
}

func sampleTexts() []corpus.Text {
	return []corpus.Text{
		{ID: "a", Title: "Boy", Category: "Stories", HebrewText: "ילד קורא ספר", EnglishTranslation: "A boy reads"},
		{ID: "b", Title: "City", Category: "Places", HebrewText: "עיר קטנה", ArabicTranslation: "مدينة صغيرة"},
		{ID: "c", Title: "Untitled", HebrewText: "שלום"},
		{ID: "d", Title: "Home", Category: "Stories", HebrewText: "בבית"},
	}
}

func TestTextCategories(t *testing.T) {
	got := TextCategories(sampleTexts())
	if diff := cmp.Diff([]string{"All", "Stories", "Places"}, got); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterTexts(t *testing.T) {
	tests := []struct {
		q    TextQuery
		want []string
	}{
		{TextQuery{}, []string{"a", "b", "c", "d"}},
		{TextQuery{Category: "Stories"}, []string{"a", "d"}},
		{TextQuery{Search: "reads"}, []string{"a"}},
		{TextQuery{Search: "صغيرة"}, []string{"b"}},
		{TextQuery{Search: "places"}, []string{"b"}},
		{TextQuery{Search: "city"}, []string{"b"}},
		{TextQuery{Search: "שלום"}, []string{"c"}},
		{TextQuery{Category: "Places", Search: "boy"}, []string{}},
	}
	for _, tt := range tests {
		var got []string
		for _, tx := range FilterTexts(sampleTexts(), tt.q) {
			got = append(got, tx.ID)
		}
		if got == nil {
			got = []string{}
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("FilterTexts(%+v) mismatch (-want +got):\n%s", tt.q, diff)
		}
	}
}

func TestWindow(t *testing.T) {
	w := NewWindow(0, 0)
	if w.Visible != 20 || w.Step != 10 {
		t.Fatalf("unexpected default window %+v", w)
	}
	if w.Shown(13) != 13 || w.HasMore(13) {
		t.Errorf("window over 13 items: shown=%d more=%v", w.Shown(13), w.HasMore(13))
	}
	if w.Shown(45) != 20 || !w.HasMore(45) {
		t.Errorf("window over 45 items: shown=%d more=%v", w.Shown(45), w.HasMore(45))
	}
	w = w.ShowMore().ShowMore()
	if w.Shown(45) != 40 || !w.HasMore(45) {
		t.Errorf("after two steps: shown=%d", w.Shown(45))
	}
	w = w.ShowMore()
	if w.Shown(45) != 45 || w.HasMore(45) {
		t.Errorf("after three steps: shown=%d more=%v", w.Shown(45), w.HasMore(45))
	}

	items := []int{1, 2, 3, 4, 5}
	if got := Slice(NewWindow(3, 1), items); !cmp.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Slice = %v", got)
	}
}

func TestSummaries(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{VocabularySummary(13, 13, VocabularyQuery{Category: "All"}), "Showing 13 of 13 words"},
		{VocabularySummary(1, 1, VocabularyQuery{Category: "Food", Search: "food"}), `Showing 1 of 1 word in category "Food" matching "food"`},
		{VocabularySummary(0, 0, VocabularyQuery{Search: "xyz"}), `Showing 0 of 0 words matching "xyz"`},
		{TextSummary(1, TextQuery{Category: "Places"}), `Showing 1 text in category "Places"`},
		{TextSummary(4, TextQuery{}), "Showing 4 texts"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q; want %q", tt.got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	short := "שלום עולם"
	if Preview(short) != short {
		t.Errorf("short text changed: %q", Preview(short))
	}
	exact := strings.Repeat("א", 100)
	if Preview(exact) != exact {
		t.Error("text of exactly 100 runes must not be cut")
	}
	long := strings.Repeat("ב", 150)
	got := Preview(long)
	if got != strings.Repeat("ב", 100)+"..." {
		t.Errorf("unexpected preview %q", got)
	}
}

func TestParseSortKey(t *testing.T) {
	for _, k := range SortKeys {
		if ParseSortKey(string(k)) != k {
			t.Errorf("ParseSortKey(%q) did not round trip", k)
		}
	}
	if ParseSortKey("") != HebrewAsc {
		t.Error("empty sort key must default to hebrew-asc")
	}
	if EnglishDesc.Label() != "English (Z-A)" {
		t.Errorf("label = %q", EnglishDesc.Label())
	}
}
