package corpus

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Translation languages accepted by the draft translation operations.
const (
	LangEnglish = "english"
	LangArabic  = "arabic"
)

// Example sentence fields accepted by SetSentence.
const (
	SentenceHebrew             = "hebrew"
	SentenceTranslationEnglish = "translation_english"
	SentenceTranslationArabic  = "translation_arabic"
	SentenceWordToHighlight    = "word_to_highlight"
)

// ErrEmptyHeadword is returned by Draft.Validate when no Hebrew word was entered.
var ErrEmptyHeadword = errors.New("hebrew word is required")

// Draft is a candidate vocabulary entry built by the add-word form.
// It is never merged into a Corpus. Index-based operations ignore
// out-of-range indexes.
type Draft struct {
	Entry VocabularyEntry
}

// NewDraft returns a draft with a fresh id and a single empty meaning.
func NewDraft() *Draft {
	return &Draft{Entry: VocabularyEntry{
		ID:         uuid.New().String(),
		Categories: []string{},
		Forms:      []Form{},
		Meanings:   []Meaning{emptyMeaning()},
	}}
}

func emptyMeaning() Meaning {
	return Meaning{English: []string{}, Arabic: []string{}, ExampleSentences: []ExampleSentence{}}
}

// Validate checks the draft is submittable.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Entry.Hebrew) == "" {
		return ErrEmptyHeadword
	}
	return nil
}

// AddCategory appends an empty category.
func (d *Draft) AddCategory() {
	d.Entry.Categories = append(d.Entry.Categories, "")
}

// SetCategory replaces category i.
func (d *Draft) SetCategory(i int, value string) {
	if i < 0 || i >= len(d.Entry.Categories) {
		return
	}
	d.Entry.Categories[i] = value
}

// RemoveCategory deletes category i.
func (d *Draft) RemoveCategory(i int) {
	d.Entry.Categories = removeAt(d.Entry.Categories, i)
}

// AddForm appends an empty form.
func (d *Draft) AddForm() {
	d.Entry.Forms = append(d.Entry.Forms, Form{})
}

// SetForm updates the type or text of a form. field is "type" or "text".
func (d *Draft) SetForm(i int, field, value string) {
	if i < 0 || i >= len(d.Entry.Forms) {
		return
	}
	switch field {
	case "type":
		d.Entry.Forms[i].Type = value
	case "text":
		d.Entry.Forms[i].Text = value
	}
}

// RemoveForm deletes form i.
func (d *Draft) RemoveForm(i int) {
	d.Entry.Forms = removeAt(d.Entry.Forms, i)
}

// AddMeaning appends a meaning with no translations or sentences.
func (d *Draft) AddMeaning() {
	d.Entry.Meanings = append(d.Entry.Meanings, emptyMeaning())
}

// RemoveMeaning deletes meaning i, leaving the others in order.
func (d *Draft) RemoveMeaning(i int) {
	d.Entry.Meanings = removeAt(d.Entry.Meanings, i)
}

func (d *Draft) meaning(i int) *Meaning {
	if i < 0 || i >= len(d.Entry.Meanings) {
		return nil
	}
	return &d.Entry.Meanings[i]
}

func (m *Meaning) translations(lang string) *[]string {
	switch lang {
	case LangEnglish:
		return &m.English
	case LangArabic:
		return &m.Arabic
	}
	return nil
}

// AddTranslation appends an empty translation in lang to meaning mi.
func (d *Draft) AddTranslation(mi int, lang string) {
	m := d.meaning(mi)
	if m == nil {
		return
	}
	if t := m.translations(lang); t != nil {
		*t = append(*t, "")
	}
}

// SetTranslation replaces translation ti in lang of meaning mi.
func (d *Draft) SetTranslation(mi int, lang string, ti int, value string) {
	m := d.meaning(mi)
	if m == nil {
		return
	}
	t := m.translations(lang)
	if t == nil || ti < 0 || ti >= len(*t) {
		return
	}
	(*t)[ti] = value
}

// RemoveTranslation deletes translation ti in lang from meaning mi.
func (d *Draft) RemoveTranslation(mi int, lang string, ti int) {
	m := d.meaning(mi)
	if m == nil {
		return
	}
	if t := m.translations(lang); t != nil {
		*t = removeAt(*t, ti)
	}
}

// AddSentence appends an empty example sentence to meaning mi.
func (d *Draft) AddSentence(mi int) {
	if m := d.meaning(mi); m != nil {
		m.ExampleSentences = append(m.ExampleSentences, ExampleSentence{})
	}
}

// SetSentence updates one field of example sentence si of meaning mi.
func (d *Draft) SetSentence(mi, si int, field, value string) {
	m := d.meaning(mi)
	if m == nil || si < 0 || si >= len(m.ExampleSentences) {
		return
	}
	s := &m.ExampleSentences[si]
	switch field {
	case SentenceHebrew:
		s.Hebrew = value
	case SentenceTranslationEnglish:
		s.TranslationEnglish = value
	case SentenceTranslationArabic:
		s.TranslationArabic = value
	case SentenceWordToHighlight:
		s.WordToHighlight = value
	}
}

// RemoveSentence deletes example sentence si from meaning mi.
func (d *Draft) RemoveSentence(mi, si int) {
	if m := d.meaning(mi); m != nil {
		m.ExampleSentences = removeAt(m.ExampleSentences, si)
	}
}

// removeAt returns a new slice without element i.
func removeAt[T any](s []T, i int) []T {
	if i < 0 || i >= len(s) {
		return s
	}
	out := make([]T, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}
