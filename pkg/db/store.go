package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxContexts is the number of context sentences kept per word and text.
const MaxContexts = 5

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// UpsertWord inserts or refreshes the row for a vocabulary entry and returns its id.
func UpsertWord(db DBExecutor, entryID, hebrew, pronunciation, english string) (int64, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return 0, fmt.Errorf("entryID must be non-empty")
	}

	var id int64
	err := db.QueryRow(`INSERT INTO words (entry_id, hebrew, pronunciation, english)
			  VALUES (?, ?, ?, ?)
			  ON CONFLICT(entry_id)
			  DO UPDATE SET
			    hebrew = excluded.hebrew,
			    pronunciation = COALESCE(NULLIF(excluded.pronunciation, ''), words.pronunciation),
			    english = COALESCE(NULLIF(excluded.english, ''), words.english)
			  RETURNING id`, entryID, hebrew, pronunciation, english).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert word %s: %w", entryID, err)
	}
	return id, nil
}

// UpsertText inserts or refreshes the row for a text and returns its id.
// Progress is preserved across upserts so an interrupted build can resume.
func UpsertText(db DBExecutor, textID, title, category string) (int64, error) {
	textID = strings.TrimSpace(textID)
	if textID == "" {
		return 0, fmt.Errorf("textID must be non-empty")
	}

	var id int64
	err := db.QueryRow(`INSERT INTO texts (text_id, title, category)
			  VALUES (?, ?, ?)
			  ON CONFLICT(text_id)
			  DO UPDATE SET title = excluded.title, category = excluded.category
			  RETURNING id`, textID, title, category).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert text %s: %w", textID, err)
	}
	return id, nil
}

func getOrCreateSentence(db DBExecutor, text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, nil
	}
	var id int64
	if err := db.QueryRow(`SELECT id FROM sentences WHERE text = ?`, trimmed).Scan(&id); err == nil {
		return id, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}
	if _, err := db.Exec(`INSERT OR IGNORE INTO sentences (text) VALUES (?)`, trimmed); err != nil {
		return 0, err
	}
	if err := db.QueryRow(`SELECT id FROM sentences WHERE text = ?`, trimmed).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// LinkWordToText records count occurrences of a word in a text, seen in the
// given context sentence. Occurrence counts accumulate; at most MaxContexts
// distinct context sentences are kept per pair.
func LinkWordToText(db DBExecutor, wordID, textID int64, context string, count int) error {
	if wordID <= 0 {
		return fmt.Errorf("wordID must be positive")
	}
	if textID <= 0 {
		return fmt.Errorf("textID must be positive")
	}
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	ctxID, err := getOrCreateSentence(db, context)
	if err != nil {
		return fmt.Errorf("get/create context sentence: %w", err)
	}

	var wordTextID int64
	err = db.QueryRow(`INSERT INTO word_texts (word_id, text_id, context_sentence_id, occurrence_count, first_seen_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(word_id, text_id) DO UPDATE SET
	  occurrence_count = word_texts.occurrence_count + excluded.occurrence_count,
	  context_sentence_id = COALESCE(excluded.context_sentence_id, word_texts.context_sentence_id)
	RETURNING id`, wordID, textID, nullableInt64(ctxID), count, time.Now()).Scan(&wordTextID)
	if err != nil {
		return fmt.Errorf("link word %d to text %d: %w", wordID, textID, err)
	}
	if ctxID == 0 {
		return nil
	}

	_, err = db.Exec(`
		INSERT INTO word_contexts (word_text_id, sentence_id)
		SELECT ?, ?
		WHERE (SELECT COUNT(*) FROM word_contexts WHERE word_text_id = ?) < ?
		ON CONFLICT DO NOTHING`,
		wordTextID, ctxID, wordTextID, MaxContexts)
	if err != nil {
		return fmt.Errorf("store context: %w", err)
	}
	return nil
}

// nullableInt64 returns nil for 0 (meaning no sentence) else the value.
func nullableInt64(v int64) interface{} {
	if v == 0 {
		return nil
	}
	return v
}

// GetWordsByText returns the words found in a text with their occurrence
// counts, most frequent first.
func GetWordsByText(db DBExecutor, textID string) ([]WordCount, error) {
	rows, err := db.Query(`SELECT w.id, w.entry_id, w.hebrew, w.pronunciation, w.english, wt.occurrence_count
		FROM words w
		JOIN word_texts wt ON wt.word_id = w.id
		JOIN texts t ON t.id = wt.text_id
		WHERE t.text_id = ?
		ORDER BY wt.occurrence_count DESC, wt.id`, textID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WordCount
	for rows.Next() {
		var wc WordCount
		var pron, eng sql.NullString
		if err := rows.Scan(&wc.ID, &wc.EntryID, &wc.Hebrew, &pron, &eng, &wc.Count); err != nil {
			return nil, err
		}
		wc.Pronunciation = pron.String
		wc.English = eng.String
		out = append(out, wc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTextsForWord returns every text a vocabulary entry occurs in, in text
// insertion order, with up to MaxContexts context sentences each.
func GetTextsForWord(db DBExecutor, entryID string) ([]Occurrence, error) {
	rows, err := db.Query(`SELECT wt.id, t.text_id, t.title, t.category, wt.occurrence_count
		FROM word_texts wt
		JOIN words w ON w.id = wt.word_id
		JOIN texts t ON t.id = wt.text_id
		WHERE w.entry_id = ?
		ORDER BY t.id`, entryID)
	if err != nil {
		return nil, err
	}

	var out []Occurrence
	var linkIDs []int64
	for rows.Next() {
		var o Occurrence
		var linkID int64
		var title, category sql.NullString
		if err := rows.Scan(&linkID, &o.TextID, &title, &category, &o.Count); err != nil {
			rows.Close()
			return nil, err
		}
		o.Title = title.String
		o.Category = category.String
		out = append(out, o)
		linkIDs = append(linkIDs, linkID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the connection before the per-link queries; the pool may
	// hold a single connection.
	rows.Close()

	for i, id := range linkIDs {
		contexts, err := contextsFor(db, id)
		if err != nil {
			return nil, fmt.Errorf("contexts for %s: %w", out[i].TextID, err)
		}
		out[i].Contexts = contexts
	}
	return out, nil
}

func contextsFor(db DBExecutor, wordTextID int64) ([]string, error) {
	rows, err := db.Query(`SELECT s.text FROM word_contexts wc
		JOIN sentences s ON s.id = wc.sentence_id
		WHERE wc.word_text_id = ?
		ORDER BY wc.rowid`, wordTextID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	contexts := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		contexts = append(contexts, s)
	}
	return contexts, rows.Err()
}

// GetTextProgress returns the last processed sentence index for a text,
// or -1 when nothing has been processed yet.
func GetTextProgress(db DBExecutor, textID int64) (int, error) {
	var index int
	err := db.QueryRow("SELECT last_processed_sentence FROM texts WHERE id = ?", textID).Scan(&index)
	if err != nil {
		return 0, err
	}
	return index, nil
}

// UpdateTextProgress updates the last processed sentence index.
func UpdateTextProgress(db DBExecutor, textID int64, index int) error {
	_, err := db.Exec("UPDATE texts SET last_processed_sentence = ? WHERE id = ?", index, textID)
	return err
}

// CountLinks returns the number of word/text pairs in the concordance.
func CountLinks(db DBExecutor) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM word_texts").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
