package adapters

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/bot80-alt/certa/internal/fetch"
	"github.com/bot80-alt/certa/internal/model"
	"github.com/bot80-alt/certa/internal/textutil"
	"github.com/bot80-alt/certa/internal/util"
)

// Prober performs the reachability check before a fetch
type Prober interface {
	Probe(ctx context.Context, rawURL string) error
}

// URLAdapter fetches a web article and extracts its readable body
type URLAdapter struct {
	prober   Prober
	renderer fetch.Renderer
	robots   *util.RobotsChecker
	cfg      model.ContentConfig
	logger   *log.Logger
}

// NewURLAdapter creates a URL adapter. robots may be nil to skip robots.txt checks.
func NewURLAdapter(cfg model.ContentConfig, prober Prober, renderer fetch.Renderer, robots *util.RobotsChecker, logger *log.Logger) *URLAdapter {
	return &URLAdapter{
		prober:   prober,
		renderer: renderer,
		robots:   robots,
		cfg:      cfg,
		logger:   orDiscard(logger),
	}
}

// Name returns the adapter name
func (a *URLAdapter) Name() string {
	return "url"
}

// CanHandle matches the URL modality
func (a *URLAdapter) CanHandle(in Input) bool {
	return in.Modality == model.ModalityURL
}

// Normalize validates, probes, fetches, and extracts the article at in.URL
func (a *URLAdapter) Normalize(ctx context.Context, in Input) (*model.NormalizedContent, error) {
	const op = "url-adapter"

	parsed, err := ParseSourceURL(in.URL)
	if err != nil {
		return nil, model.NewError(model.KindInputValidation, op, err.Error(), nil)
	}
	rawURL := parsed.String()

	if a.robots != nil && !a.robots.IsAllowed(ctx, rawURL) {
		return nil, model.NewError(model.KindUnreachableSource, op, "fetching this page is disallowed by robots.txt", nil)
	}

	if err := a.prober.Probe(ctx, rawURL); err != nil {
		return nil, model.NewError(model.KindUnreachableSource, op, describeFetchError(err), err)
	}

	page, err := a.renderer.Render(ctx, rawURL)
	if err != nil {
		return nil, model.NewError(model.KindUnreachableSource, op, describeFetchError(err), err)
	}

	finalURL, err := url.Parse(page.FinalURL)
	if err != nil || page.FinalURL == "" {
		finalURL = parsed
	}

	title, text := extractArticle(page.HTML, finalURL)
	if text == "" {
		return nil, model.NewError(model.KindInsufficientContent, op, "no readable text found on the page", nil)
	}
	if err := CheckSufficient(op, text, a.cfg.MinChars); err != nil {
		return nil, err
	}

	content := &model.NormalizedContent{
		Text:      text,
		Title:     title,
		SourceURL: rawURL,
		Modality:  model.ModalityURL,
	}

	summary := textutil.Summarize(text, a.cfg.SummarySentences, a.cfg.Keywords)
	if summary.Degraded {
		a.logger.Printf("Warning: summary unavailable for %s: %s", rawURL, summary.Reason)
	}
	s := summary.Or(textutil.Summary{})
	content.Summary = s.Text
	content.Keywords = s.Keywords

	return content, nil
}

// ParseSourceURL accepts only absolute http(s) URLs with a host
func ParseSourceURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("URL is empty")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("URL is malformed: %v", err)
	}
	if !parsed.IsAbs() || parsed.Host == "" {
		return nil, fmt.Errorf("URL must be absolute with a scheme and host: %q", raw)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme %q", parsed.Scheme)
	}
	return parsed, nil
}

// extractArticle prefers readability's main-body detection and falls back to
// all visible text when it finds nothing
func extractArticle(html string, pageURL *url.URL) (title, text string) {
	article, err := readability.FromReader(strings.NewReader(html), pageURL)
	if err == nil {
		title = strings.TrimSpace(article.Title)
		text = textutil.CollapseSpace(article.TextContent)
	}
	if text != "" {
		return title, text
	}

	fbTitle, fbText, err := textutil.VisibleText(html)
	if err != nil {
		return title, ""
	}
	if title == "" {
		title = fbTitle
	}
	return title, fbText
}

func describeFetchError(err error) string {
	var statusErr *fetch.StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("source responded with HTTP %d", statusErr.Code)
	}
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
		return "source did not respond in time"
	}
	return "source is unreachable"
}
