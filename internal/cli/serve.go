package cli

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bot80-alt/certa/internal/pipeline"
	"github.com/bot80-alt/certa/internal/server"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Serve exposes the pipeline over HTTP:

  POST /get-fc-url                 {"url": "..."}
  POST /get-fc-text                {"text": "..."}
  POST /get-fc-audio               multipart field "file"
  POST /api/fact-check             {"title", "content", "url"}
  POST /api/fact-check-transcript  {"transcript", "title", "source"}
  GET  /api/health                 ?deep=1 also probes the LLM backend
  GET  /metrics                    Prometheus metrics

Set server.jwt_secret (or JWT_SECRET) to require bearer tokens on check routes.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default from config, :8000)")
	_ = viper.BindPFlag("server.address", serveCmd.Flags().Lookup("addr"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	metrics := server.NewMetrics()

	// Server logs are always on; component logs follow --verbose
	p, err := pipeline.NewFromConfig(cmd.Context(), cfg, logOutput(), metrics)
	if err != nil {
		return fmt.Errorf("refusing to start: %w", err)
	}

	srv := server.New(p, cfg.Server, server.Options{
		Logger:  newLogger(cmd.ErrOrStderr(), "HTTP"),
		Metrics: metrics,
	})
	return srv.Run(cmd.Context())
}

func newLogger(w io.Writer, prefix string) *log.Logger {
	return log.New(w, "["+prefix+"] ", log.LstdFlags)
}
