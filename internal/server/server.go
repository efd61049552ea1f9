// Package server exposes the fact-check pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/bot80-alt/certa/internal/adapters"
	"github.com/bot80-alt/certa/internal/model"
	"github.com/bot80-alt/certa/internal/worker"
)

// Checker runs one request through the pipeline (a *pipeline.Pipeline)
type Checker interface {
	Check(ctx context.Context, in adapters.Input) *model.PipelineResult
	Ready(ctx context.Context) bool
}

// Options are the optional collaborators of a Server
type Options struct {
	Logger  *log.Logger
	Metrics *Metrics
}

// Server is the HTTP transport
type Server struct {
	echo    *echo.Echo
	checker Checker
	cfg     model.ServerConfig
	logger  *log.Logger
	metrics *Metrics
	limiter *worker.Limiter
}

// New builds the echo instance and registers every route
func New(checker Checker, cfg model.ServerConfig, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	s := &Server{
		echo:    echo.New(),
		checker: checker,
		cfg:     cfg,
		logger:  logger,
		metrics: opts.Metrics,
		limiter: worker.NewLimiter(cfg.RequestsPerSec, cfg.BurstSize),
	}
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.echo.Use(middleware.Recover())
	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/api/health", s.health)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	check := s.echo.Group("")
	if s.cfg.JWTSecret != "" {
		check.Use(RequireToken([]byte(s.cfg.JWTSecret)))
	}
	check.Use(s.rateLimit)

	check.POST("/get-fc-url", s.checkURL)
	check.POST("/get-fc-text", s.checkText)
	check.POST("/get-fc-audio", s.checkAudio)
	check.POST("/api/fact-check", s.extensionCheck)
	check.POST("/api/fact-check-transcript", s.extensionTranscript)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on cfg.Address until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("listening on %s", s.cfg.Address)
		errCh <- s.echo.Start(s.cfg.Address)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Printf("shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// handleError renders transport-level failures (bad body, auth, rate limit)
// in the same envelope as pipeline results
func (s *Server) handleError(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
	}

	req := c.Request()
	s.logger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
	if s.metrics != nil {
		s.metrics.ObserveHTTP(c.Path(), code)
	}

	if c.Response().Committed {
		return
	}
	if req.Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, model.Envelope{Status: model.StatusError, Message: msg})
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.limiter.Allow(c.RealIP()) {
			return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded, retry later")
		}
		return next(c)
	}
}
