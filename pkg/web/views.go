package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/japaniel/milim/pkg/annotate"
	"github.com/japaniel/milim/pkg/browse"
	"github.com/japaniel/milim/pkg/corpus"
	"github.com/japaniel/milim/pkg/db"
	"go.uber.org/zap"
)

// page carries what the shared layout needs.
type page struct {
	Title string
	Nav   string
}

// wordParam names the query parameter carrying the open tooltip's word id.
const wordParam = "word"

// interactiveView is an annotated Hebrew text with the tooltip content of
// every entry it mentions. Selection is the tooltip open when the page was
// requested; app.js takes over toggling once loaded.
type interactiveView struct {
	Spans     []annotate.Span
	Tooltips  []annotate.TooltipContent
	Selection annotate.Selection
}

func (s *Server) interactive(text, highlight string, sel annotate.Selection) interactiveView {
	spans := s.analyzer.Analyze(text, highlight)
	return interactiveView{Spans: spans, Tooltips: tooltips(spans), Selection: sel}
}

// selection reads the open tooltip from the request.
func selection(c *gin.Context) annotate.Selection {
	var sel annotate.Selection
	if id := c.Query(wordParam); id != "" {
		sel.Click(id)
	}
	return sel
}

// IsActive reports whether wordID's tooltip is open.
func (v interactiveView) IsActive(wordID string) bool { return v.Selection.IsActive(wordID) }

// ClickURL is the page state after clicking wordID: its tooltip opens, or
// closes if it was the open one.
func (v interactiveView) ClickURL(wordID string) string {
	next := v.Selection
	next.Click(wordID)
	return selectionURL(next)
}

// CloseURL is the page state after clicking outside any word.
func (v interactiveView) CloseURL() string {
	next := v.Selection
	next.ClickOutside()
	return selectionURL(next)
}

func selectionURL(sel annotate.Selection) string {
	id, open := sel.Active()
	if !open {
		return "?"
	}
	return "?" + url.Values{wordParam: {id}}.Encode()
}

// tooltips returns one tooltip per distinct entry in spans, in first-seen order.
func tooltips(spans []annotate.Span) []annotate.TooltipContent {
	var out []annotate.TooltipContent
	seen := map[string]bool{}
	for _, sp := range spans {
		if !sp.Interactive || seen[sp.WordID] {
			continue
		}
		seen[sp.WordID] = true
		if tip := annotate.Tooltip(sp.Entry); tip != nil {
			out = append(out, *tip)
		}
	}
	return out
}

type wordListView struct {
	page
	Loading    bool
	Categories []string
	SortKeys   []browse.SortKey
	Query      browse.VocabularyQuery
	Words      []corpus.VocabularyEntry
	Total      int
	Summary    string
	HasMore    bool
	MoreURL    string
}

func vocabularyQuery(c *gin.Context) browse.VocabularyQuery {
	return browse.VocabularyQuery{
		Category: c.DefaultQuery("category", browse.AllCategories),
		Search:   c.Query("q"),
		Sort:     browse.ParseSortKey(c.Query("sort")),
	}
}

// windowFor grows the default window to the "show" query parameter, so
// "Show More" links are plain GETs.
func (s *Server) windowFor(c *gin.Context) browse.Window {
	w := s.window
	if n, err := strconv.Atoi(c.Query("show")); err == nil && n > w.Visible {
		w.Visible = n
	}
	return w
}

func (s *Server) listWords(c *gin.Context) {
	view := wordListView{page: page{Title: "Vocabulary", Nav: "words"}}
	if len(s.corpus.Vocabulary) == 0 {
		view.Loading = true
		c.HTML(http.StatusOK, "words.tmpl", view)
		return
	}

	q := vocabularyQuery(c)
	w := s.windowFor(c)
	filtered := browse.FilterVocabulary(s.corpus.Vocabulary, q)

	view.Categories = browse.VocabularyCategories(s.corpus.Vocabulary)
	view.SortKeys = browse.SortKeys
	view.Query = q
	view.Words = browse.Slice(w, filtered)
	view.Total = len(filtered)
	view.Summary = browse.VocabularySummary(w.Shown(len(filtered)), len(filtered), q)
	if w.HasMore(len(filtered)) {
		view.HasMore = true
		more := url.Values{}
		more.Set("category", q.Category)
		more.Set("q", q.Search)
		more.Set("sort", string(q.Sort))
		more.Set("show", strconv.Itoa(w.ShowMore().Visible))
		view.MoreURL = "/?" + more.Encode()
	}
	c.HTML(http.StatusOK, "words.tmpl", view)
}

type exampleView struct {
	Text    interactiveView
	English string
	Arabic  string
}

type meaningView struct {
	Number   int
	English  []string
	Arabic   []string
	Examples []exampleView
}

type wordView struct {
	page
	Loading     bool
	Found       bool
	Entry       corpus.VocabularyEntry
	Meanings    []meaningView
	Occurrences []db.Occurrence
}

func (s *Server) showWord(c *gin.Context) {
	view := wordView{page: page{Title: "Word", Nav: "words"}}
	if len(s.corpus.Vocabulary) == 0 {
		view.Loading = true
		c.HTML(http.StatusOK, "word.tmpl", view)
		return
	}

	entry, ok := s.corpus.Word(c.Param("id"))
	if !ok {
		c.HTML(http.StatusNotFound, "word.tmpl", view)
		return
	}
	view.Found = true
	view.Entry = entry
	view.Title = entry.Hebrew
	sel := selection(c)
	for i, m := range entry.Meanings {
		mv := meaningView{Number: i + 1, English: m.English, Arabic: m.Arabic}
		for _, ex := range m.ExampleSentences {
			mv.Examples = append(mv.Examples, exampleView{
				Text:    s.interactive(ex.Hebrew, ex.WordToHighlight, sel),
				English: ex.TranslationEnglish,
				Arabic:  ex.TranslationArabic,
			})
		}
		view.Meanings = append(view.Meanings, mv)
	}
	view.Occurrences = s.occurrences(c, entry.ID)
	c.HTML(http.StatusOK, "word.tmpl", view)
}

// occurrences looks the word up in the concordance. Failures only cost the
// "appears in" section, so they are logged and swallowed.
func (s *Server) occurrences(c *gin.Context, entryID string) []db.Occurrence {
	if s.db == nil {
		return nil
	}
	occ, err := db.GetTextsForWord(s.db, entryID)
	if err != nil {
		s.log.Warn("occurrence lookup failed", zap.String("word", entryID), zap.Error(err))
		_ = c.Error(err)
		return nil
	}
	return occ
}

type textListView struct {
	page
	Loading    bool
	Categories []string
	Query      browse.TextQuery
	Texts      []corpus.Text
	Summary    string
}

func (s *Server) listTexts(c *gin.Context) {
	view := textListView{page: page{Title: "Texts", Nav: "texts"}}
	if len(s.corpus.Texts) == 0 {
		view.Loading = true
		c.HTML(http.StatusOK, "texts.tmpl", view)
		return
	}
	q := browse.TextQuery{
		Category: c.DefaultQuery("category", browse.AllCategories),
		Search:   c.Query("q"),
	}
	view.Categories = browse.TextCategories(s.corpus.Texts)
	view.Query = q
	view.Texts = browse.FilterTexts(s.corpus.Texts, q)
	view.Summary = browse.TextSummary(len(view.Texts), q)
	c.HTML(http.StatusOK, "texts.tmpl", view)
}

type textView struct {
	page
	Loading           bool
	Found             bool
	VocabularyLoading bool
	Text              corpus.Text
	Body              interactiveView
	Words             []db.WordCount
}

func (s *Server) showText(c *gin.Context) {
	view := textView{page: page{Title: "Text", Nav: "texts"}}
	if len(s.corpus.Texts) == 0 {
		view.Loading = true
		c.HTML(http.StatusOK, "text.tmpl", view)
		return
	}
	t, ok := s.corpus.Text(c.Param("id"))
	if !ok {
		c.HTML(http.StatusNotFound, "text.tmpl", view)
		return
	}
	view.Found = true
	view.Text = t
	view.Title = t.Title
	if len(s.corpus.Vocabulary) == 0 {
		view.VocabularyLoading = true
	} else {
		view.Body = s.interactive(t.HebrewText, "", selection(c))
	}
	if s.db != nil {
		words, err := db.GetWordsByText(s.db, t.ID)
		if err != nil {
			s.log.Warn("text vocabulary lookup failed", zap.String("text", t.ID), zap.Error(err))
			_ = c.Error(err)
		}
		view.Words = words
	}
	c.HTML(http.StatusOK, "text.tmpl", view)
}

type formView struct {
	page
	Draft *corpus.Draft
	Error string
}

func (s *Server) newWordForm(c *gin.Context) {
	c.HTML(http.StatusOK, "add_word.tmpl", formView{
		page:  page{Title: "Add word", Nav: "add"},
		Draft: corpus.NewDraft(),
	})
}

// submitWordForm applies the edit named by "op" to the posted draft. A
// successful submit only logs the candidate entry: drafts are never stored.
func (s *Server) submitWordForm(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, "invalid form: %v", err)
		return
	}
	draft := DecodeDraft(c.Request.PostForm)
	view := formView{page: page{Title: "Add word", Nav: "add"}, Draft: draft}

	op := c.PostForm("op")
	if op != OpSubmit {
		if err := ApplyOp(draft, op); err != nil {
			view.Error = err.Error()
			c.HTML(http.StatusBadRequest, "add_word.tmpl", view)
			return
		}
		c.HTML(http.StatusOK, "add_word.tmpl", view)
		return
	}

	if err := draft.Validate(); err != nil {
		view.Error = fmt.Sprintf("Cannot save: %v.", err)
		c.HTML(http.StatusUnprocessableEntity, "add_word.tmpl", view)
		return
	}
	s.log.Info("new word submitted", zap.String("id", draft.Entry.ID), zap.Any("entry", draft.Entry))
	c.Redirect(http.StatusSeeOther, "/")
}
