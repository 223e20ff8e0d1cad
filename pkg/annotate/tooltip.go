package annotate

import (
	"strings"

	"github.com/japaniel/milim/pkg/corpus"
)

// Selection tracks the single active token of an interactive text.
// The zero value has nothing open.
type Selection struct {
	active string
}

// Click toggles wordID: clicking the open word closes it, any other word
// replaces it.
func (s *Selection) Click(wordID string) {
	if s.active == wordID {
		s.active = ""
		return
	}
	s.active = wordID
}

// ClickOutside closes any open token.
func (s *Selection) ClickOutside() { s.active = "" }

// Active returns the open word id and whether one is open.
func (s *Selection) Active() (string, bool) { return s.active, s.active != "" }

// IsActive reports whether wordID is the open token.
func (s *Selection) IsActive(wordID string) bool { return wordID != "" && s.active == wordID }

// TooltipContent is what the popup shows for a vocabulary entry.
type TooltipContent struct {
	Hebrew  string `json:"hebrew"`
	English string `json:"english,omitempty"`
	Arabic  string `json:"arabic,omitempty"`
	WordID  string `json:"word_id"`
	Link    string `json:"link"`
}

// Tooltip builds popup content from the entry's first meaning.
// It returns nil when the entry has no meanings.
func Tooltip(e *corpus.VocabularyEntry) *TooltipContent {
	if e == nil {
		return nil
	}
	m, ok := e.FirstMeaning()
	if !ok {
		return nil
	}
	return &TooltipContent{
		Hebrew:  e.Hebrew,
		English: strings.Join(m.English, ", "),
		Arabic:  strings.Join(m.Arabic, ", "),
		WordID:  e.ID,
		Link:    "/word/" + e.ID,
	}
}
