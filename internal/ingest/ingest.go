// Package ingest pulls job-posting pages and reduces them to the plain-text
// context a session is seeded with.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultTimeout bounds one posting fetch end to end.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is sent on posting fetches.
const DefaultUserAgent = "Mozilla/5.0 (compatible; InterviewCoach/1.0)"

// MaxContextLength caps the extracted text so a long posting does not crowd
// the interview prompt.
const MaxContextLength = 6000

// Error describes a failed posting fetch.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ingest error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("ingest error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures posting fetches.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// UseBrowser enables the headless-browser fallback for pages that render
	// their content with JavaScript.
	UseBrowser bool
}

func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// JobContext fetches a job posting and returns its description text, ready to
// seed a session's JobContext field.
func JobContext(ctx context.Context, postingURL string, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	html, err := fetchHTML(ctx, postingURL, opts)
	if err != nil {
		return "", err
	}

	text, err := ExtractPostingText(html)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "failed to extract posting text", Cause: err}
	}

	if opts.UseBrowser && needsBrowser(text) {
		rendered, err := renderWithBrowser(ctx, postingURL, opts.Timeout)
		if err != nil {
			return "", &Error{URL: postingURL, Message: "browser rendering failed", Cause: err}
		}
		if text, err = ExtractPostingText(rendered); err != nil {
			return "", &Error{URL: postingURL, Message: "failed to extract rendered text", Cause: err}
		}
	}

	return ClampContext(text), nil
}

func fetchHTML(ctx context.Context, postingURL string, opts *Options) (string, error) {
	parsed, err := url.Parse(postingURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", &Error{URL: postingURL, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: opts.Timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, postingURL, nil)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{URL: postingURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: postingURL, Message: "failed to read response body", Cause: err}
	}
	return string(body), nil
}

// postingSelectors are tried in order; the first match wins. Job boards vary,
// so the list runs from board-specific containers down to generic ones.
var postingSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// ExtractPostingText strips navigation and ad chrome from posting HTML and
// returns the description text. Falls back to the whole body when no known
// container matches.
func ExtractPostingText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup").Remove()

	var content *goquery.Selection
	for _, selector := range postingSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		content = doc.Find("body")
	}

	return collapseWhitespace(content.Text()), nil
}

// ClampContext truncates posting text to MaxContextLength on a line
// boundary where possible.
func ClampContext(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= MaxContextLength {
		return text
	}
	cut := text[:MaxContextLength]
	if i := strings.LastIndexByte(cut, '\n'); i > MaxContextLength/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut)
}

func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}
