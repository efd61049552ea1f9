package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/bot80-alt/certa/internal/model"
)

// Checker fact-checks one URL (a *pipeline.Pipeline)
type Checker interface {
	CheckFromURL(ctx context.Context, rawURL string) *model.PipelineResult
}

// CheckJob checks one URL of a batch
type CheckJob struct {
	Index   int
	URL     string
	Checker Checker
	Limiter *Limiter
}

// Run waits for the URL's host to have capacity, then runs the check
func (j *CheckJob) Run(ctx context.Context) Outcome {
	out := &CheckOutcome{Index: j.Index, URL: j.URL}

	if j.Limiter != nil {
		if host, err := HostKey(j.URL); err == nil {
			if err := j.Limiter.Wait(ctx, host); err != nil {
				out.Error = fmt.Errorf("rate limit wait: %w", err)
				return out
			}
		}
	}

	out.Result = j.Checker.CheckFromURL(ctx, j.URL)
	return out
}

// CheckOutcome is the result of one CheckJob. Error is set only when the
// check never ran; pipeline failures are reported inside Result.
type CheckOutcome struct {
	Index  int
	URL    string
	Result *model.PipelineResult
	Error  error
}

// Err returns the scheduling error
func (o *CheckOutcome) Err() error {
	return o.Error
}

// OK reports whether the check ran and succeeded
func (o *CheckOutcome) OK() bool {
	return o.Error == nil && o.Result != nil && o.Result.OK()
}

// BatchProcessor checks many URLs concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
	limiter     *Limiter
	logger      *log.Logger
}

// NewBatchProcessor creates a processor. requestsPerSecond and burst limit
// each source host; a non-positive rate disables limiting.
func NewBatchProcessor(checker Checker, concurrency int, requestsPerSecond float64, burst int, logger *log.Logger) *BatchProcessor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
		limiter:     NewLimiter(requestsPerSecond, burst),
		logger:      logger,
	}
}

// ProcessURLs checks every URL and returns outcomes in input order
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*CheckOutcome {
	if len(urls) == 0 {
		return []*CheckOutcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Outcomes are drained while jobs are still being queued; both channels
	// are bounded, so submitting everything first would stall the workers.
	go func() {
		defer pool.Close()
		for i, u := range urls {
			if !pool.Submit(&CheckJob{Index: i, URL: u, Checker: b.checker, Limiter: b.limiter}) {
				b.logger.Printf("Warning: batch cancelled after %d of %d URLs", i, len(urls))
				return
			}
		}
	}()

	results := make([]*CheckOutcome, 0, len(urls))
	for o := range pool.Outcomes() {
		co := o.(*CheckOutcome)
		if co.OK() {
			b.logger.Printf("✓ %s", co.URL)
		} else {
			b.logger.Printf("✗ %s: %s", co.URL, failureText(co))
		}
		results = append(results, co)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	return results
}

// ProcessFile reads URLs from a file and checks them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*CheckOutcome, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// ProcessFeed checks the article links of an RSS or Atom feed
func (b *BatchProcessor) ProcessFeed(ctx context.Context, feedURL string, limit int, client *http.Client) ([]*CheckOutcome, error) {
	urls, err := ReadURLsFromFeed(ctx, feedURL, limit, client)
	if err != nil {
		return nil, err
	}
	b.logger.Printf("feed %s: %d articles", feedURL, len(urls))

	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file (one per line)
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadURLs(file)
}

// ReadURLs reads one URL per line, skipping blanks, # comments and duplicates
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	return urls, nil
}

// ReadURLsFromFeed returns up to limit distinct item links from a feed.
// limit <= 0 means all items.
func ReadURLsFromFeed(ctx context.Context, feedURL string, limit int, client *http.Client) ([]string, error) {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", feedURL, err)
	}

	var urls []string
	seen := make(map[string]bool)
	for _, item := range feed.Items {
		link := strings.TrimSpace(item.Link)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		urls = append(urls, link)
		if limit > 0 && len(urls) >= limit {
			break
		}
	}
	return urls, nil
}

// Tally counts succeeded and failed outcomes
func Tally(outcomes []*CheckOutcome) (succeeded, failed int) {
	for _, o := range outcomes {
		if o.OK() {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

func failureText(o *CheckOutcome) string {
	if o.Error != nil {
		return o.Error.Error()
	}
	if o.Result == nil {
		return "no result"
	}
	return o.Result.Message
}
