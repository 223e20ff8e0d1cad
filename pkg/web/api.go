package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/japaniel/milim/pkg/annotate"
	"github.com/japaniel/milim/pkg/browse"
	"github.com/japaniel/milim/pkg/db"
	"go.uber.org/zap"
)

// maxAnnotateBytes bounds the text accepted by POST /api/annotate.
const maxAnnotateBytes = 1 << 20

func (s *Server) apiWords(c *gin.Context) {
	filtered := browse.FilterVocabulary(s.corpus.Vocabulary, vocabularyQuery(c))
	total := len(filtered)
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit >= 0 && limit < total {
		filtered = filtered[:limit]
	}
	c.JSON(http.StatusOK, gin.H{
		"total":      total,
		"words":      filtered,
		"categories": browse.VocabularyCategories(s.corpus.Vocabulary),
	})
}

func (s *Server) apiWord(c *gin.Context) {
	entry, ok := s.corpus.Word(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "word not found"})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) apiOccurrences(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.corpus.Word(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "word not found"})
		return
	}
	occ := []db.Occurrence{}
	if s.db != nil {
		found, err := db.GetTextsForWord(s.db, id)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "occurrence lookup failed"})
			return
		}
		if found != nil {
			occ = found
		}
	}
	c.JSON(http.StatusOK, gin.H{"word_id": id, "occurrences": occ})
}

func (s *Server) apiTexts(c *gin.Context) {
	q := browse.TextQuery{
		Category: c.DefaultQuery("category", browse.AllCategories),
		Search:   c.Query("q"),
	}
	texts := browse.FilterTexts(s.corpus.Texts, q)
	c.JSON(http.StatusOK, gin.H{
		"total":      len(texts),
		"texts":      texts,
		"categories": browse.TextCategories(s.corpus.Texts),
	})
}

func (s *Server) apiText(c *gin.Context) {
	t, ok := s.corpus.Text(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "text not found"})
		return
	}
	body := s.interactive(t.HebrewText, "", annotate.Selection{})
	words := []db.WordCount{}
	if s.db != nil {
		found, err := db.GetWordsByText(s.db, t.ID)
		if err != nil {
			s.log.Warn("text vocabulary lookup failed", zap.String("text", t.ID), zap.Error(err))
			_ = c.Error(err)
		} else if found != nil {
			words = found
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"text":     t,
		"spans":    body.Spans,
		"tooltips": body.Tooltips,
		"words":    words,
	})
}

type annotateRequest struct {
	Text      string `json:"text" binding:"required"`
	Highlight string `json:"highlight"`
}

// apiAnnotate annotates arbitrary text against the vocabulary.
func (s *Server) apiAnnotate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAnnotateBytes)
	var req annotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view := s.interactive(req.Text, req.Highlight, annotate.Selection{})
	c.JSON(http.StatusOK, gin.H{"spans": view.Spans, "tooltips": view.Tooltips})
}
