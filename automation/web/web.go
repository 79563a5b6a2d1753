// Package web provides the URL automation capability: fetch a page, extract
// its readable text, and summarize it through the assistant.
package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	quackquery "github.com/QuackQuery/QuackQuery"
)

// maxArticleChars caps how much extracted text is sent to the model.
const maxArticleChars = 30000

// Capability implements quackquery.Capability for URL summarization.
type Capability struct {
	assistant *quackquery.Assistant
	client    *http.Client
}

// Option configures a Capability.
type Option func(*Capability)

// WithHTTPClient replaces the HTTP client (useful for tests).
func WithHTTPClient(c *http.Client) Option {
	return func(w *Capability) { w.client = c }
}

// New creates the web capability. The assistant is required: summarization
// goes through the model.
func New(assistant *quackquery.Assistant, opts ...Option) (*Capability, error) {
	if assistant == nil {
		return nil, fmt.Errorf("web capability requires an assistant")
	}
	w := &Capability{
		assistant: assistant,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Name returns "web".
func (w *Capability) Name() string { return "web" }

// Parse recognizes URL summarization commands: "summarize <url>" (or
// "summarise"), or a bare URL on its own line.
func (w *Capability) Parse(text string) (quackquery.Intent, bool) {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)

	var target string
	switch {
	case strings.HasPrefix(lower, "summarize "):
		target = strings.TrimSpace(trimmed[len("summarize "):])
	case strings.HasPrefix(lower, "summarise "):
		target = strings.TrimSpace(trimmed[len("summarise "):])
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		target = trimmed
	default:
		return quackquery.Intent{}, false
	}

	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return quackquery.Intent{}, false
	}
	if strings.ContainsAny(target, " \t") {
		return quackquery.Intent{}, false
	}
	return quackquery.Intent{Operation: "summarize_url", Params: map[string]string{"url": target}}, true
}

// Execute fetches the URL, extracts readable text, and asks the assistant
// for a summary.
func (w *Capability) Execute(ctx context.Context, intent quackquery.Intent) quackquery.ExecResult {
	if intent.Operation != "summarize_url" {
		return quackquery.ExecResult{Error: "unknown web operation: " + intent.Operation}
	}
	target := intent.Param("url")

	content, err := w.fetch(ctx, target)
	if err != nil {
		return quackquery.ExecResult{Error: err.Error()}
	}
	if len(content) > maxArticleChars {
		content = content[:maxArticleChars]
	}

	prompt := fmt.Sprintf("Summarize the following page (%s) in a few short paragraphs:\n\n%s", target, content)
	summary, err := w.assistant.Answer(ctx, prompt, nil)
	if err != nil {
		return quackquery.ExecResult{Error: "summarize: " + err.Error()}
	}
	return quackquery.ExecResult{Content: summary}
}

// fetch downloads a URL and extracts readable text.
func (w *Capability) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; QuackQuery/1.0)")

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1MB limit
	if err != nil {
		return "", fmt.Errorf("read error: %w", err)
	}

	html := string(body)

	// Try readability extraction
	parsedURL, _ := url.Parse(rawURL)
	article, err := readability.FromReader(strings.NewReader(html), parsedURL)
	if err == nil && article.TextContent != "" {
		return strings.TrimSpace(article.TextContent), nil
	}

	// Fallback: simple HTML stripping
	return stripHTML(html), nil
}

var (
	tagPattern        = regexp.MustCompile(`(?s)<(script|style)[^>]*>.*?</(script|style)>`)
	markupPattern     = regexp.MustCompile(`<[^>]*>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// stripHTML removes script/style blocks and tags, collapsing whitespace.
func stripHTML(html string) string {
	text := tagPattern.ReplaceAllString(html, " ")
	text = markupPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

var _ quackquery.Capability = (*Capability)(nil)
