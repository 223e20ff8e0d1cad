package db

import "time"

// Word mirrors a vocabulary entry that occurs in at least one text.
type Word struct {
	ID            int64
	EntryID       string
	Hebrew        string
	Pronunciation string
	English       string
}

// Text is a reading text tracked by the concordance.
type Text struct {
	ID                    int64
	TextID                string
	Title                 string
	Category              string
	LastProcessedSentence int
	AddedAt               time.Time
}

// WordCount is a word together with how often it occurs in one text.
type WordCount struct {
	Word
	Count int
}

// Occurrence describes where a word appears: the text, how many times, and
// up to MaxContexts sentences it was seen in.
type Occurrence struct {
	TextID   string   `json:"text_id"`
	Title    string   `json:"title"`
	Category string   `json:"category,omitempty"`
	Count    int      `json:"count"`
	Contexts []string `json:"contexts"`
}
