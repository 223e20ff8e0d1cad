package annotate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/japaniel/milim/pkg/corpus"
)

// punctuation is the set stripped by Normalize.
const punctuation = `.,!?;:"'()`

// Normalize strips basic punctuation and lowercases s.
// Punctuation-only input normalizes to "".
func Normalize(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(stripped)
}

// Index maps normalized surface forms (headwords and inflected forms) to entries.
// It is built once and only read afterwards, so it is safe for concurrent use.
type Index struct {
	entries []corpus.VocabularyEntry
	// Key: normalized surface, Value: position in entries
	surfaces map[string]int
}

// NewIndex builds the lookup table. Entries are inserted in order, headword
// first and then every form; when two surfaces collide the later insertion wins.
func NewIndex(entries []corpus.VocabularyEntry) *Index {
	idx := &Index{
		entries:  entries,
		surfaces: make(map[string]int, len(entries)*3),
	}
	for i, e := range entries {
		idx.put(e.Hebrew, i)
		for _, f := range e.Forms {
			idx.put(f.Text, i)
		}
	}
	return idx
}

func (idx *Index) put(surface string, i int) {
	key := Normalize(surface)
	if key == "" {
		return
	}
	idx.surfaces[key] = i
}

// Lookup finds the entry whose headword or form normalizes to the same key as token.
func (idx *Index) Lookup(token string) (*corpus.VocabularyEntry, bool) {
	key := Normalize(token)
	if key == "" {
		return nil, false
	}
	i, ok := idx.surfaces[key]
	if !ok {
		return nil, false
	}
	return &idx.entries[i], true
}

// Len returns the number of distinct surfaces in the index.
func (idx *Index) Len() int { return len(idx.surfaces) }

// Tokenize splits text into maximal runs of whitespace and non-whitespace.
// Joining the result reproduces text exactly.
func Tokenize(text string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range text {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			tokens = append(tokens, text[start:i])
			start = i
			inSpace = space
		}
	}
	if start < len(text) {
		tokens = append(tokens, text[start:])
	}
	return tokens
}

// Span is one rendered token of an annotated text.
type Span struct {
	Text        string `json:"text"`
	Normalized  string `json:"normalized,omitempty"`
	Space       bool   `json:"space,omitempty"`
	Interactive bool   `json:"interactive"`
	Highlighted bool   `json:"highlighted"`
	WordID      string `json:"word_id,omitempty"`

	Entry *corpus.VocabularyEntry `json:"-"`
}

// Analyzer annotates texts against a fixed vocabulary.
type Analyzer struct {
	index *Index
}

// NewAnalyzer builds the vocabulary index once for all subsequent calls.
func NewAnalyzer(entries []corpus.VocabularyEntry) *Analyzer {
	return &Analyzer{index: NewIndex(entries)}
}

// Index returns the analyzer's lookup table.
func (a *Analyzer) Index() *Index { return a.index }

// Analyze tokenizes text and marks tokens that match known vocabulary.
// A token is highlighted when highlight normalizes to a non-empty string
// equal to the token's normalized form.
func (a *Analyzer) Analyze(text, highlight string) []Span {
	target := Normalize(highlight)
	tokens := Tokenize(text)
	spans := make([]Span, 0, len(tokens))

	for _, tok := range tokens {
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.IsSpace(r) {
			spans = append(spans, Span{Text: tok, Space: true})
			continue
		}

		s := Span{Text: tok, Normalized: Normalize(tok)}
		s.Highlighted = target != "" && s.Normalized == target
		if e, ok := a.index.Lookup(tok); ok {
			s.Interactive = true
			s.WordID = e.ID
			s.Entry = e
		}
		spans = append(spans, s)
	}
	return spans
}

// SplitSentences splits on sentence-final punctuation and newlines, keeping
// the delimiter with the sentence it ends.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	for _, r := range text {
		current.WriteRune(r)
		// ׃ (05C3) is the Hebrew sof pasuq.
		if r == '.' || r == '!' || r == '?' || r == '׃' || r == '\n' {
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}
