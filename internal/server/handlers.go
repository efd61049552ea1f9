package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bot80-alt/certa/internal/adapters"
	"github.com/bot80-alt/certa/internal/model"
	"github.com/bot80-alt/certa/internal/pipeline"
)

// URLRequest is the body of POST /get-fc-url
type URLRequest struct {
	URL string `json:"url"`
}

// TextRequest is the body of POST /get-fc-text
type TextRequest struct {
	Text string `json:"text"`
}

// ExtensionRequest is the body of POST /api/fact-check
type ExtensionRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// TranscriptRequest is the body of POST /api/fact-check-transcript
type TranscriptRequest struct {
	Transcript string `json:"transcript"`
	Title      string `json:"title"`
	Source     string `json:"source"`
}

// HealthResponse is the body of GET /api/health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Oracle  string `json:"oracle,omitempty"`
}

func (s *Server) health(c echo.Context) error {
	resp := HealthResponse{Status: "healthy", Service: "fact-checker-api"}
	if c.QueryParam("deep") != "" {
		if s.checker.Ready(c.Request().Context()) {
			resp.Oracle = "available"
		} else {
			resp.Oracle = "unavailable"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) checkURL(c echo.Context) error {
	var req URLRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	return s.run(c, adapters.Input{Modality: model.ModalityURL, URL: req.URL})
}

func (s *Server) checkText(c echo.Context) error {
	var req TextRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	return s.run(c, adapters.Input{Modality: model.ModalityText, Text: req.Text})
}

func (s *Server) checkAudio(c echo.Context) error {
	header, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}

	limit := s.cfg.MaxUploadBytes
	if limit > 0 && header.Size > limit {
		return s.respond(c, rejected(fmt.Sprintf("audio file exceeds %d bytes", limit)))
	}

	f, err := header.Open()
	if err != nil {
		return badRequest(err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return badRequest(err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return s.respond(c, rejected(fmt.Sprintf("audio file exceeds %d bytes", limit)))
	}

	return s.run(c, adapters.Input{
		Modality:  model.ModalityAudio,
		Audio:     data,
		MediaType: uploadMediaType(header.Header.Get(echo.HeaderContentType), header.Filename),
		Filename:  header.Filename,
	})
}

func (s *Server) extensionCheck(c echo.Context) error {
	var req ExtensionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	return s.run(c, adapters.Input{
		Modality: model.ModalityText,
		Text:     req.Content,
		Title:    req.Title,
		Source:   req.URL,
	})
}

func (s *Server) extensionTranscript(c echo.Context) error {
	req := TranscriptRequest{Title: "Speech Transcript", Source: "Broadcast"}
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	return s.run(c, adapters.Input{
		Modality: model.ModalityText,
		Text:     req.Transcript,
		Title:    req.Title,
		Source:   req.Source,
	})
}

func (s *Server) run(c echo.Context, in adapters.Input) error {
	ctx := c.Request().Context()
	if s.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.RequestTimeout)
		defer cancel()
	}

	result := s.checker.Check(ctx, in)
	if result.OK() {
		s.logger.Printf("[%s] %s check succeeded", result.RequestID, in.Modality)
	}
	return s.respond(c, result)
}

func (s *Server) respond(c echo.Context, result *model.PipelineResult) error {
	code := StatusCode(result)
	if s.metrics != nil {
		s.metrics.ObserveHTTP(c.Path(), code)
	}
	return c.JSON(code, result.Envelope())
}

// StatusCode maps a pipeline result to its HTTP status
func StatusCode(result *model.PipelineResult) int {
	if result.OK() {
		return http.StatusOK
	}
	switch result.Stage {
	case model.StageOracle:
		return http.StatusBadGateway
	case model.StageAdapter:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func rejected(reason string) *model.PipelineResult {
	return &model.PipelineResult{
		Status:  model.StatusError,
		Stage:   model.StageAdapter,
		Kind:    model.KindInputValidation,
		Message: pipeline.SourceFailurePrefix + reason,
	}
}

func badRequest(err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, "malformed request: "+err.Error())
}

// uploadMediaType trusts the part's Content-Type unless it is generic, then
// falls back to the file extension
func uploadMediaType(declared, filename string) string {
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	if byExt := adapters.MediaTypeForFilename(filename); byExt != "" {
		return byExt
	}
	return declared
}
