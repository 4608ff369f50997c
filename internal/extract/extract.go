// Package extract turns raw input sources (text, local files, URLs) into
// uniform content pieces for the pipeline's input stage.
package extract

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dusk-indust/contentstudio/internal/llm"
)

// ErrInvalidURL is returned for URLs that are not absolute http(s).
var ErrInvalidURL = errors.New("extract: invalid url")

const (
	maxContentChars = 5000
	fetchTimeout    = 10 * time.Second
	userAgent       = "Mozilla/5.0 (compatible; contentstudio/1.0)"
)

// Piece is one extracted input source.
type Piece struct {
	Kind    string   `json:"kind"` // text / file / url
	Origin  string   `json:"origin,omitempty"`
	Title   string   `json:"title,omitempty"`
	Content string   `json:"content"`
	Points  []string `json:"points,omitempty"`
}

// Block renders the piece as a tagged block for combined-content synthesis.
func (p *Piece) Block() string {
	var b strings.Builder
	switch p.Kind {
	case "text":
		b.WriteString("[TEXT INPUT]\n")
	case "file":
		fmt.Fprintf(&b, "[FILE: %s]\n", p.Origin)
	case "url":
		fmt.Fprintf(&b, "[URL: %s]\n", p.Origin)
	}
	if p.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", p.Title)
	}
	b.WriteString(p.Content)
	if len(p.Points) > 0 {
		b.WriteString("\nKey points:")
		for _, point := range p.Points {
			b.WriteString("\n  - " + point)
		}
	}
	return b.String()
}

// Extractor pulls content out of the supported source kinds. The inference
// client is optional and only used for key-point extraction.
type Extractor struct {
	client llm.Client
	http   *http.Client
}

func New(client llm.Client) *Extractor {
	return &Extractor{
		client: client,
		http:   &http.Client{Timeout: fetchTimeout},
	}
}

// FromText wraps raw text as a piece.
func (e *Extractor) FromText(text string) *Piece {
	return &Piece{Kind: "text", Content: clip(text, maxContentChars)}
}

// FromFile reads a local text document.
func (e *Extractor) FromFile(ctx context.Context, path string) (*Piece, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("extract: read file: %w", err)
	}
	piece := &Piece{
		Kind:    "file",
		Origin:  path,
		Title:   filepath.Base(path),
		Content: clip(string(data), maxContentChars),
	}
	piece.Points = e.keyPoints(ctx, piece.Content)
	return piece, nil
}

// FromURL fetches a page and extracts its title, description and visible
// text.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (*Piece, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("extract: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extract: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extract: fetch %s: status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("extract: read %s: %w", rawURL, err)
	}

	page := parsePage(string(body))
	piece := &Piece{
		Kind:    "url",
		Origin:  rawURL,
		Title:   page.title,
		Content: clip(page.text, maxContentChars),
	}
	if page.description != "" {
		piece.Content = page.description + "\n" + piece.Content
	}
	piece.Points = e.keyPoints(ctx, piece.Content)
	return piece, nil
}

// keyPoints asks the backend for article key points. Best effort: without a
// client or on error it returns nil.
func (e *Extractor) keyPoints(ctx context.Context, content string) []string {
	if e.client == nil || content == "" {
		return nil
	}
	result, err := e.client.Generate(ctx, llm.Request{
		Prompt:       "List 3-5 key points from this content for a LinkedIn post:\n\n" + clip(content, 3000),
		SystemPrompt: "Be concise and insightful.",
	})
	if err != nil {
		return nil
	}

	var points []string
	for _, line := range strings.Split(result.Content, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "•-0123456789. ")
		if line == "" {
			continue
		}
		points = append(points, line)
		if len(points) == 5 {
			break
		}
	}
	return points
}

type page struct {
	title       string
	description string
	text        string
}

var (
	titlePattern  = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaPattern   = regexp.MustCompile(`(?is)<meta[^>]+name=["']description["'][^>]*content=["']([^"']*)["']`)
	scriptPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	stylePattern  = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagPattern    = regexp.MustCompile(`<[^>]+>`)
	wsPattern     = regexp.MustCompile(`\s+`)
)

// parsePage extracts the title, meta description and visible text from HTML.
func parsePage(raw string) page {
	var p page
	if m := titlePattern.FindStringSubmatch(raw); m != nil {
		p.title = strings.TrimSpace(html.UnescapeString(m[1]))
	}
	if m := metaPattern.FindStringSubmatch(raw); m != nil {
		p.description = strings.TrimSpace(html.UnescapeString(m[1]))
	}

	stripped := scriptPattern.ReplaceAllString(raw, " ")
	stripped = stylePattern.ReplaceAllString(stripped, " ")
	stripped = tagPattern.ReplaceAllString(stripped, " ")
	p.text = strings.TrimSpace(wsPattern.ReplaceAllString(html.UnescapeString(stripped), " "))
	return p
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
