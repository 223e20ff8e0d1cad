// Package browse filters, searches, sorts and pages the vocabulary and text
// collections for the list views.
package browse

import (
	"fmt"
	"slices"
	"strings"

	"github.com/japaniel/milim/pkg/corpus"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AllCategories is the pseudo-category that disables category filtering.
const AllCategories = "All"

// SortKey selects the ordering of the vocabulary list.
type SortKey string

const (
	HebrewAsc   SortKey = "hebrew-asc"
	HebrewDesc  SortKey = "hebrew-desc"
	EnglishAsc  SortKey = "english-asc"
	EnglishDesc SortKey = "english-desc"
)

// SortKeys lists the accepted sort keys in display order.
var SortKeys = []SortKey{HebrewAsc, HebrewDesc, EnglishAsc, EnglishDesc}

// ParseSortKey maps s to a known key, falling back to HebrewAsc.
func ParseSortKey(s string) SortKey {
	for _, k := range SortKeys {
		if string(k) == s {
			return k
		}
	}
	return HebrewAsc
}

// Label is the human readable name of the ordering.
func (k SortKey) Label() string {
	switch k {
	case HebrewDesc:
		return "Hebrew (Z-A)"
	case EnglishAsc:
		return "English (A-Z)"
	case EnglishDesc:
		return "English (Z-A)"
	default:
		return "Hebrew (A-Z)"
	}
}

// VocabularyQuery is the state of the vocabulary list controls.
type VocabularyQuery struct {
	Category string
	Search   string
	Sort     SortKey
}

// TextQuery is the state of the text list controls.
type TextQuery struct {
	Category string
	Search   string
}

// VocabularyCategories returns "All" followed by every distinct category
// in first-seen order.
func VocabularyCategories(entries []corpus.VocabularyEntry) []string {
	var all []string
	for _, e := range entries {
		all = append(all, e.Categories...)
	}
	return withAll(all)
}

// TextCategories returns "All" followed by every distinct non-empty text
// category in first-seen order.
func TextCategories(texts []corpus.Text) []string {
	all := make([]string, 0, len(texts))
	for _, t := range texts {
		all = append(all, t.Category)
	}
	return withAll(all)
}

func withAll(categories []string) []string {
	out := []string{AllCategories}
	seen := map[string]bool{AllCategories: true}
	for _, c := range categories {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

func filtersCategory(category string) bool {
	return category != "" && category != AllCategories
}

// FilterVocabulary applies category, search and sort. The input slice is
// left untouched; a new slice is returned.
func FilterVocabulary(entries []corpus.VocabularyEntry, q VocabularyQuery) []corpus.VocabularyEntry {
	needle := strings.ToLower(q.Search)
	out := make([]corpus.VocabularyEntry, 0, len(entries))
	for _, e := range entries {
		if filtersCategory(q.Category) && !e.HasCategory(q.Category) {
			continue
		}
		if needle != "" && !matchesWord(e, needle) {
			continue
		}
		out = append(out, e)
	}
	sortVocabulary(out, ParseSortKey(string(q.Sort)))
	return out
}

func matchesWord(e corpus.VocabularyEntry, needle string) bool {
	if contains(e.Hebrew, needle) || contains(e.PronunciationText, needle) {
		return true
	}
	for _, m := range e.Meanings {
		for _, en := range m.English {
			if contains(en, needle) {
				return true
			}
		}
		for _, ar := range m.Arabic {
			if contains(ar, needle) {
				return true
			}
		}
	}
	for _, f := range e.Forms {
		if contains(f.Text, needle) {
			return true
		}
	}
	return false
}

func contains(haystack, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(haystack), lowerNeedle)
}

// sortVocabulary orders entries in place. Collators are not safe for
// concurrent use, so one is built per call.
func sortVocabulary(entries []corpus.VocabularyEntry, key SortKey) {
	var (
		c   *collate.Collator
		get func(corpus.VocabularyEntry) string
	)
	switch key {
	case EnglishAsc, EnglishDesc:
		c = collate.New(language.English)
		get = corpus.VocabularyEntry.PrimaryEnglish
	default:
		c = collate.New(language.Hebrew)
		get = func(e corpus.VocabularyEntry) string { return e.Hebrew }
	}
	desc := key == HebrewDesc || key == EnglishDesc

	slices.SortStableFunc(entries, func(a, b corpus.VocabularyEntry) int {
		cmp := c.CompareString(get(a), get(b))
		if desc {
			return -cmp
		}
		return cmp
	})
}

// FilterTexts applies category and search, preserving dataset order.
func FilterTexts(texts []corpus.Text, q TextQuery) []corpus.Text {
	needle := strings.ToLower(q.Search)
	out := make([]corpus.Text, 0, len(texts))
	for _, t := range texts {
		if filtersCategory(q.Category) && t.Category != q.Category {
			continue
		}
		if needle != "" && !matchesText(t, needle) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesText(t corpus.Text, needle string) bool {
	for _, field := range []string{t.Title, t.HebrewText, t.EnglishTranslation, t.ArabicTranslation, t.Category} {
		if contains(field, needle) {
			return true
		}
	}
	return false
}

// Default window sizes of the vocabulary list.
const (
	DefaultPageSize = 20
	DefaultPageStep = 10
)

// Window is the incrementally growing visible prefix of a result list.
type Window struct {
	Visible int
	Step    int
}

// NewWindow returns a window showing size items that grows by step.
// Non-positive arguments fall back to the defaults.
func NewWindow(size, step int) Window {
	if size <= 0 {
		size = DefaultPageSize
	}
	if step <= 0 {
		step = DefaultPageStep
	}
	return Window{Visible: size, Step: step}
}

// ShowMore grows the window by one step.
func (w Window) ShowMore() Window {
	w.Visible += w.Step
	return w
}

// Shown is the number of items displayed out of total.
func (w Window) Shown(total int) int {
	return min(w.Visible, total)
}

// HasMore reports whether items remain hidden.
func (w Window) HasMore(total int) bool {
	return w.Visible < total
}

// Slice returns the visible prefix of entries.
func Slice[T any](w Window, items []T) []T {
	return items[:w.Shown(len(items))]
}

// VocabularySummary renders the result counter of the vocabulary list.
func VocabularySummary(shown, total int, q VocabularyQuery) string {
	noun := "words"
	if total == 1 {
		noun = "word"
	}
	return fmt.Sprintf("Showing %d of %d %s", shown, total, noun) + qualifiers(q.Category, q.Search)
}

// TextSummary renders the result counter of the text list.
func TextSummary(total int, q TextQuery) string {
	noun := "texts"
	if total == 1 {
		noun = "text"
	}
	return fmt.Sprintf("Showing %d %s", total, noun) + qualifiers(q.Category, q.Search)
}

func qualifiers(category, search string) string {
	var b strings.Builder
	if filtersCategory(category) {
		fmt.Fprintf(&b, ` in category "%s"`, category)
	}
	if search != "" {
		fmt.Fprintf(&b, ` matching "%s"`, search)
	}
	return b.String()
}

// previewRunes is the length of a text card preview.
const previewRunes = 100

// Preview returns the first 100 characters of s, with "..." appended when
// s was cut.
func Preview(s string) string {
	r := []rune(s)
	if len(r) <= previewRunes {
		return s
	}
	return string(r[:previewRunes]) + "..."
}
