package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/japaniel/milim/pkg/annotate"
	"github.com/japaniel/milim/pkg/corpus"
	"github.com/japaniel/milim/pkg/db"
)

func decode(t *testing.T, w *httptest.ResponseRecorder, status int, v any) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("status = %d, want %d; body:\n%s", w.Code, status, w.Body.String())
	}
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

func TestAPIWords(t *testing.T) {
	h := newTestServer(t, testVocabulary(), nil, nil)

	var got struct {
		Total      int                      `json:"total"`
		Words      []corpus.VocabularyEntry `json:"words"`
		Categories []string                 `json:"categories"`
	}
	decode(t, get(t, h, "/api/words?limit=1&sort=english-asc"), http.StatusOK, &got)
	if got.Total != 3 || len(got.Words) != 1 {
		t.Fatalf("total=%d words=%d, want 3 and 1", got.Total, len(got.Words))
	}
	// Entries without an English translation sort first.
	if got.Words[0].ID != "kore" {
		t.Errorf("first word = %q, want kore", got.Words[0].ID)
	}
	if diff := cmp.Diff([]string{"All", "Nouns", "Adjectives", "Verbs"}, got.Categories); diff != "" {
		t.Errorf("categories (-want +got):\n%s", diff)
	}

	var entry corpus.VocabularyEntry
	decode(t, get(t, h, "/api/words/sefer"), http.StatusOK, &entry)
	if entry.Hebrew != "ספר" {
		t.Fatalf("hebrew = %q", entry.Hebrew)
	}

	var e struct{ Error string }
	decode(t, get(t, h, "/api/words/missing"), http.StatusNotFound, &e)
	if e.Error != "word not found" {
		t.Fatalf("error = %q", e.Error)
	}
}

func TestAPIOccurrences(t *testing.T) {
	h := newTestServer(t, testVocabulary(), testTexts(), indexedDB(t))

	var got struct {
		WordID      string          `json:"word_id"`
		Occurrences []db.Occurrence `json:"occurrences"`
	}
	decode(t, get(t, h, "/api/words/sefer/occurrences"), http.StatusOK, &got)
	if len(got.Occurrences) != 1 {
		t.Fatalf("expected one text, got %+v", got.Occurrences)
	}
	o := got.Occurrences[0]
	if o.TextID != "library" || o.Count != 2 {
		t.Errorf("occurrence = %+v, want library with 2 hits", o)
	}

	// Without a database the list is empty, not null.
	h = newTestServer(t, testVocabulary(), testTexts(), nil)
	w := get(t, h, "/api/words/sefer/occurrences")
	if !strings.Contains(w.Body.String(), `"occurrences":[]`) {
		t.Errorf("body = %s", w.Body.String())
	}
	decode(t, get(t, h, "/api/words/missing/occurrences"), http.StatusNotFound, &got)
}

func TestAPITexts(t *testing.T) {
	h := newTestServer(t, testVocabulary(), testTexts(), nil)

	var list struct {
		Total int           `json:"total"`
		Texts []corpus.Text `json:"texts"`
	}
	decode(t, get(t, h, "/api/texts?category=Stories"), http.StatusOK, &list)
	if list.Total != 1 || list.Texts[0].ID != "library" {
		t.Fatalf("unexpected texts %+v", list)
	}

	var detail struct {
		Text     corpus.Text               `json:"text"`
		Spans    []annotate.Span           `json:"spans"`
		Tooltips []annotate.TooltipContent `json:"tooltips"`
	}
	decode(t, get(t, h, "/api/texts/library"), http.StatusOK, &detail)
	var ids []string
	for _, sp := range detail.Spans {
		if sp.Interactive {
			ids = append(ids, sp.WordID)
		}
	}
	if diff := cmp.Diff([]string{"kore", "sefer", "gadol", "sefer"}, ids); diff != "" {
		t.Errorf("interactive words (-want +got):\n%s", diff)
	}
	if len(detail.Tooltips) != 2 {
		t.Errorf("expected tooltips for sefer and gadol, got %+v", detail.Tooltips)
	}

	w := get(t, h, "/api/texts/missing")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestAPIAnnotate(t *testing.T) {
	h := newTestServer(t, testVocabulary(), nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/annotate", strings.NewReader(`{"text":"ספר גדול","highlight":"גדול"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var got struct {
		Spans    []annotate.Span           `json:"spans"`
		Tooltips []annotate.TooltipContent `json:"tooltips"`
	}
	decode(t, w, http.StatusOK, &got)
	if len(got.Spans) != 3 {
		t.Fatalf("expected word, space, word; got %+v", got.Spans)
	}
	last := got.Spans[2]
	if !last.Highlighted || last.WordID != "gadol" {
		t.Errorf("last span = %+v, want highlighted gadol", last)
	}
	if len(got.Tooltips) != 2 || got.Tooltips[1].English != "big, large" {
		t.Errorf("tooltips = %+v", got.Tooltips)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/annotate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty request status = %d, want 400", w.Code)
	}
}
