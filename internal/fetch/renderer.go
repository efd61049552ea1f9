package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer turns a URL into page HTML
type Renderer interface {
	Render(ctx context.Context, rawURL string) (*Result, error)
}

// ChromeRenderer loads pages in headless Chrome so script-built articles
// have their body in the DOM before extraction.
type ChromeRenderer struct {
	timeout   time.Duration
	userAgent string
	maxBytes  int64
}

// NewChromeRenderer creates a headless-browser renderer
func NewChromeRenderer(timeout time.Duration, userAgent string, maxBytes int64) *ChromeRenderer {
	return &ChromeRenderer{timeout: timeout, userAgent: userAgent, maxBytes: maxBytes}
}

// Render navigates to the URL and returns the outer HTML of the document
func (r *ChromeRenderer) Render(ctx context.Context, rawURL string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.UserAgent(r.userAgent),
	)
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html, location string
	err := chromedp.Run(bctx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	if r.maxBytes > 0 && int64(len(html)) > r.maxBytes {
		html = html[:r.maxBytes]
	}
	if location == "" {
		location = rawURL
	}

	return &Result{
		HTML:        html,
		StatusCode:  200,
		ContentType: "text/html",
		FinalURL:    location,
	}, nil
}
