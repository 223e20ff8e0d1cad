// Package web serves the vocabulary and text browser: HTML pages for people
// and a JSON API for scripts.
package web

import (
	"database/sql"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/japaniel/milim/pkg/annotate"
	"github.com/japaniel/milim/pkg/browse"
	"github.com/japaniel/milim/pkg/corpus"
	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Options configures a Server. The zero value is usable.
type Options struct {
	// DB holds the concordance. Nil disables occurrence lookups.
	DB       *sql.DB
	Logger   *zap.Logger
	PageSize int
	PageStep int
}

// Server renders the corpus. It is safe for concurrent use: the corpus and
// the analyzer are never modified after New.
type Server struct {
	corpus   *corpus.Corpus
	analyzer *annotate.Analyzer
	db       *sql.DB
	log      *zap.Logger
	window   browse.Window
}

// New prepares a server over c. The vocabulary index is built once here.
func New(c *corpus.Corpus, opts Options) *Server {
	if c == nil {
		c, _ = corpus.New(nil, nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		corpus:   c,
		analyzer: annotate.NewAnalyzer(c.Vocabulary),
		db:       opts.DB,
		log:      logger,
		window:   browse.NewWindow(opts.PageSize, opts.PageStep),
	}
}

// Analyzer returns the analyzer built for the server's vocabulary.
func (s *Server) Analyzer() *annotate.Analyzer { return s.analyzer }

var funcs = template.FuncMap{
	"join":         strings.Join,
	"preview":      browse.Preview,
	"add":          func(a, b int) int { return a + b },
	"firstMeaning": func(e corpus.VocabularyEntry) corpus.Meaning {
		m, _ := e.FirstMeaning()
		return m
	},
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	tmpl := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.StaticFS("/static", http.FS(static))

	r.GET("/", s.listWords)
	r.GET("/word/:id", s.showWord)
	r.GET("/add-word", s.newWordForm)
	r.POST("/add-word", s.submitWordForm)
	r.GET("/texts", s.listTexts)
	r.GET("/texts/:id", s.showText)

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.GET("/words", s.apiWords)
		api.GET("/words/:id", s.apiWord)
		api.GET("/words/:id/occurrences", s.apiOccurrences)
		api.GET("/texts", s.apiTexts)
		api.GET("/texts/:id", s.apiText)
		api.POST("/annotate", s.apiAnnotate)
	}

	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.HTML(http.StatusNotFound, "notfound.tmpl", page{Title: "Not found"})
	})
	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	status := gin.H{
		"status": "ok",
		"words":  len(s.corpus.Vocabulary),
		"texts":  len(s.corpus.Texts),
	}
	if s.db != nil {
		if err := s.db.PingContext(c.Request.Context()); err != nil {
			status["status"] = "degraded"
			status["db"] = err.Error()
		}
	}
	c.JSON(http.StatusOK, status)
}
