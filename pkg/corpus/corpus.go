package corpus

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Dataset file names, relative to the data directory.
const (
	VocabularyFile = "vocabulary.json"
	TextsFile      = "text.json"
)

//go:embed data/*.json
var bundled embed.FS

// Form is an inflected surface variant of a headword.
type Form struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ExampleSentence is a Hebrew sentence illustrating a meaning.
// WordToHighlight is the surface form of the headword as it appears in the sentence.
type ExampleSentence struct {
	Hebrew             string `json:"hebrew"`
	TranslationEnglish string `json:"translation_english,omitempty"`
	TranslationArabic  string `json:"translation_arabic,omitempty"`
	WordToHighlight    string `json:"word_to_highlight,omitempty"`
}

// Meaning is one sense of a word.
type Meaning struct {
	English          []string          `json:"english"`
	Arabic           []string          `json:"arabic"`
	ExampleSentences []ExampleSentence `json:"example_sentences"`
}

// VocabularyEntry is a dictionary entry keyed by a unique id.
type VocabularyEntry struct {
	ID                string    `json:"id"`
	Hebrew            string    `json:"hebrew"`
	PronunciationText string    `json:"pronunciation_text,omitempty"`
	AudioURL          string    `json:"audio_url,omitempty"`
	Note              string    `json:"note,omitempty"`
	Categories        []string  `json:"categories"`
	Forms             []Form    `json:"forms"`
	Meanings          []Meaning `json:"meanings"`
}

// FirstMeaning returns the first meaning, if any.
func (e VocabularyEntry) FirstMeaning() (Meaning, bool) {
	if len(e.Meanings) == 0 {
		return Meaning{}, false
	}
	return e.Meanings[0], true
}

// PrimaryEnglish is the first English translation of the first meaning, or "".
func (e VocabularyEntry) PrimaryEnglish() string {
	m, ok := e.FirstMeaning()
	if !ok || len(m.English) == 0 {
		return ""
	}
	return m.English[0]
}

// HasCategory reports whether the entry is labelled with category.
func (e VocabularyEntry) HasCategory(category string) bool {
	for _, c := range e.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// Text is a reading text with optional full translations.
type Text struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Category           string `json:"category"`
	HebrewText         string `json:"hebrew_text"`
	EnglishTranslation string `json:"english_translation,omitempty"`
	ArabicTranslation  string `json:"arabic_translation,omitempty"`
}

// Corpus holds the vocabulary and texts. It is read-only after Load.
type Corpus struct {
	Vocabulary []VocabularyEntry
	Texts      []Text

	words map[string]int
	texts map[string]int
}

// New builds a Corpus from already decoded collections and validates it.
func New(vocabulary []VocabularyEntry, texts []Text) (*Corpus, error) {
	c := &Corpus{
		Vocabulary: vocabulary,
		Texts:      texts,
		words:      make(map[string]int, len(vocabulary)),
		texts:      make(map[string]int, len(texts)),
	}

	var problems []string
	for i, w := range vocabulary {
		if strings.TrimSpace(w.ID) == "" {
			problems = append(problems, fmt.Sprintf("vocabulary[%d]: empty id", i))
			continue
		}
		if strings.TrimSpace(w.Hebrew) == "" {
			problems = append(problems, fmt.Sprintf("vocabulary[%d] (%s): empty headword", i, w.ID))
		}
		if _, dup := c.words[w.ID]; dup {
			problems = append(problems, fmt.Sprintf("vocabulary[%d]: duplicate id %q", i, w.ID))
			continue
		}
		c.words[w.ID] = i
	}
	for i, t := range texts {
		if strings.TrimSpace(t.ID) == "" {
			problems = append(problems, fmt.Sprintf("texts[%d]: empty id", i))
			continue
		}
		if _, dup := c.texts[t.ID]; dup {
			problems = append(problems, fmt.Sprintf("texts[%d]: duplicate id %q", i, t.ID))
			continue
		}
		c.texts[t.ID] = i
	}

	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}
	return c, nil
}

// Word returns the entry with the given id.
func (c *Corpus) Word(id string) (VocabularyEntry, bool) {
	i, ok := c.words[id]
	if !ok {
		return VocabularyEntry{}, false
	}
	return c.Vocabulary[i], true
}

// Text returns the text with the given id.
func (c *Corpus) Text(id string) (Text, bool) {
	i, ok := c.texts[id]
	if !ok {
		return Text{}, false
	}
	return c.Texts[i], true
}

// ValidationError lists every problem found in a dataset.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid corpus: %s", strings.Join(e.Problems, "; "))
}

// Bundled loads the dataset embedded in the binary.
func Bundled() (*Corpus, error) {
	sub, err := fs.Sub(bundled, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// LoadDir loads the dataset from a directory on disk.
func LoadDir(dir string) (*Corpus, error) {
	return Load(os.DirFS(dir))
}

// Load reads vocabulary.json and text.json from fsys.
// A missing file yields an empty collection.
func Load(fsys fs.FS) (*Corpus, error) {
	var vocabulary []VocabularyEntry
	if err := readJSON(fsys, VocabularyFile, &vocabulary); err != nil {
		return nil, err
	}
	var texts []Text
	if err := readJSON(fsys, TextsFile, &texts); err != nil {
		return nil, err
	}
	return New(vocabulary, texts)
}

func readJSON(fsys fs.FS, name string, v any) error {
	data, err := fs.ReadFile(fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
