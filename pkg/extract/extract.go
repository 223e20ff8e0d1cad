// Package extract turns web articles into corpus texts.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"unicode"

	"github.com/go-shiori/go-readability"
	"github.com/google/uuid"
	"github.com/japaniel/milim/pkg/corpus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxBodySize caps the HTML read from a remote page.
const MaxBodySize = 10 * 1024 * 1024

// ErrTooLarge is returned when a page exceeds MaxBodySize.
var ErrTooLarge = errors.New("response body exceeds size limit")

// StatusError reports a non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Code)
}

// browserHeaders make the request look like an ordinary browser visit;
// some sites reject unknown clients.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language":           "he-IL,he;q=0.9,en-US;q=0.8,en;q=0.7",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Upgrade-Insecure-Requests": "1",
}

// Fetch downloads the page at rawURL.
func Fetch(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}
	if resp.ContentLength > MaxBodySize {
		return nil, ErrTooLarge
	}

	// Read one byte past the limit to tell a full-size page from a truncated one.
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, ErrTooLarge
	}
	return body, nil
}

// Extract parses the main article out of an HTML page.
func Extract(html []byte, pageURL string) (readability.Article, error) {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return readability.Article{}, fmt.Errorf("parse url: %w", err)
	}
	article, err := readability.FromReader(bytes.NewReader(html), parsed)
	if err != nil {
		return readability.Article{}, fmt.Errorf("extract article: %w", err)
	}
	return article, nil
}

// hebrewPoints holds the combining marks of the Hebrew block: cantillation,
// vowel points, dagesh and the shin/sin dots. Maqaf (05BE), paseq (05C0),
// sof pasuq (05C3) and nun hafukha (05C6) are punctuation and stay.
var hebrewPoints = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0591, Hi: 0x05bd, Stride: 1},
		{Lo: 0x05bf, Hi: 0x05bf, Stride: 1},
		{Lo: 0x05c1, Hi: 0x05c2, Stride: 1},
		{Lo: 0x05c4, Hi: 0x05c5, Stride: 1},
		{Lo: 0x05c7, Hi: 0x05c7, Stride: 1},
	},
}

// StripNiqqud removes Hebrew vowel points and cantillation marks so that
// pointed text matches unpointed vocabulary. Marks of other scripts, such as
// Latin accents or Arabic harakat, are left alone.
func StripNiqqud(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(hebrewPoints)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ToText builds a corpus text from an article. Runs of blank lines are
// collapsed so sentence splitting sees one newline per paragraph.
func ToText(article readability.Article, category string, stripNiqqud bool) corpus.Text {
	body := article.TextContent
	if stripNiqqud {
		body = StripNiqqud(body)
	}
	var paragraphs []string
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return corpus.Text{
		ID:         uuid.New().String(),
		Title:      strings.TrimSpace(article.Title),
		Category:   category,
		HebrewText: strings.Join(paragraphs, "\n"),
	}
}

// AppendText adds t to the JSON array of texts stored at path, creating
// the file when it does not exist.
func AppendText(path string, t corpus.Text) error {
	var texts []corpus.Text
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read %s: %w", path, err)
	default:
		if err := json.Unmarshal(data, &texts); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	for _, existing := range texts {
		if existing.ID == t.ID {
			return fmt.Errorf("text %s already exists in %s", t.ID, path)
		}
	}
	texts = append(texts, t)

	out, err := json.MarshalIndent(texts, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
