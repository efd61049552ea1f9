package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bot80-alt/certa/internal/pipeline"
	"github.com/bot80-alt/certa/internal/render"
	"github.com/bot80-alt/certa/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	feedURL      string
	feedLimit    int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Fact-check many URLs from a file or an RSS/Atom feed",
	Long: `Batch checks many articles concurrently:
- read URLs from a file (one per line, # comments allowed) or a feed
- check each one as an independent request
- limit requests per source host
- write a JSON and Markdown report per URL

Example:
  certa batch urls.txt
  certa batch urls.txt --concurrency 8 --output-dir ./reports
  certa batch --feed https://example.com/rss.xml --limit 10`,
	Args: func(cmd *cobra.Command, args []string) error {
		if feedURL == "" && len(args) != 1 {
			return fmt.Errorf("pass a URL file or --feed")
		}
		if feedURL != "" && len(args) > 0 {
			return fmt.Errorf("pass either a URL file or --feed, not both")
		}
		return nil
	},
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers (default from config when 0)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./certa-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	batchCmd.Flags().StringVar(&feedURL, "feed", "", "RSS or Atom feed whose item links are checked")
	batchCmd.Flags().IntVar(&feedLimit, "limit", 20, "max feed items to check (0 = all)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "omit the footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = cfg.Concurrency.Workers
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	source := feedURL
	if source == "" {
		source = args[0]
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  certa batch\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input:        %s\n", source)
	fmt.Fprintf(stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(stderr, "  Per host:     %.2f req/s (burst %d)\n", cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.BurstSize)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "  LLM:          %s/%s\n", cfg.Oracle.LLM.Provider, cfg.Oracle.LLM.Model)
	fmt.Fprintf(stderr, "\n")

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewFromConfig(ctx, cfg, logOutput(), nil)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, concurrency, cfg.Concurrency.RequestsPerSecond, cfg.Concurrency.BurstSize, newLogger(stderr, "batch"))

	fmt.Fprintf(stderr, "⚙️  Checking URLs with %d workers...\n\n", concurrency)

	var outcomes []*worker.CheckOutcome
	if feedURL != "" {
		client := &http.Client{Timeout: cfg.HTTP.Timeout}
		outcomes, err = processor.ProcessFeed(ctx, feedURL, feedLimit, client)
	} else {
		outcomes, err = processor.ProcessFile(ctx, args[0])
	}
	if err != nil {
		return err
	}

	renderer := render.NewRenderer(cfg.Output.IncludeFooter)
	written := 0
	for _, o := range outcomes {
		if o.Result == nil {
			continue
		}
		base := filepath.Join(outputDir, fmt.Sprintf("%03d-%s", o.Index+1, sanitizeFilename(o.URL)))
		if err := renderer.WriteFiles(o.Result, base+".json", base+".md"); err != nil {
			fmt.Fprintf(stderr, "✗ %s: %v\n", o.URL, err)
			continue
		}
		written++
	}

	ok, failed := worker.Tally(outcomes)

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d URLs\n", len(outcomes))
	fmt.Fprintf(stderr, "  Success:   %d\n", ok)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(stderr, "  Reports:   %d in %s\n", written, outputDir)
	fmt.Fprintf(stderr, "\n")

	return nil
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename turns a URL into a short, portable file stem
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")
	s = unsafeFilename.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	if len(s) > 80 {
		s = s[:80]
	}
	if s == "" {
		s = "report"
	}
	return s
}
