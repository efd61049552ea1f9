package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/bot80-alt/certa/internal/adapters"
	"github.com/bot80-alt/certa/internal/explain"
	"github.com/bot80-alt/certa/internal/fetch"
	"github.com/bot80-alt/certa/internal/llm"
	"github.com/bot80-alt/certa/internal/model"
	"github.com/bot80-alt/certa/internal/oracle"
	"github.com/bot80-alt/certa/internal/speech"
	"github.com/bot80-alt/certa/internal/util"
)

// NewFromConfig wires every component from configuration. The oracle is
// built first so missing credentials fail before anything else is set up.
// Logs go to out with a per-component prefix; nil discards them.
func NewFromConfig(ctx context.Context, cfg *model.Config, out io.Writer, observer Observer) (*Pipeline, error) {
	if cfg == nil {
		return nil, model.ConfigError("pipeline", "configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if out == nil {
		out = io.Discard
	}
	logger := func(prefix string) *log.Logger {
		return log.New(out, "["+prefix+"] ", log.LstdFlags)
	}

	proxy := util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)

	oracleClient, err := oracle.NewFromConfig(cfg.Oracle, proxy, logger("oracle"))
	if err != nil {
		return nil, err
	}

	fetcher := fetch.NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, proxy)
	var renderer fetch.Renderer = fetcher
	if cfg.Content.Renderer == "chromedp" {
		renderer = fetch.NewChromeRenderer(cfg.HTTP.Timeout*3, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes)
	}
	var robots *util.RobotsChecker
	if cfg.Content.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout, proxy)
	}

	adapterLog := logger("adapter")
	recognizer, err := speech.NewRecognizer(ctx, cfg.Audio, speech.Options{
		FallbackKey:     whisperFallbackKey(cfg.Oracle.LLM),
		FallbackBaseURL: whisperFallbackBaseURL(cfg.Oracle.LLM),
		Proxy:           proxy,
	})
	if err != nil {
		adapterLog.Printf("Warning: audio recognizer unavailable: %v", err)
		recognizer = unavailableRecognizer{err: err}
	}
	var transcoder speech.Transcoder
	if cfg.Audio.Transcode {
		transcoder = speech.FFmpegTranscoder{}
	}

	registry := adapters.NewRegistry(
		adapters.NewURLAdapter(cfg.Content, fetcher, renderer, robots, adapterLog),
		adapters.NewTextAdapter(),
		adapters.NewAudioAdapter(cfg.Audio, cfg.Content.MinChars, recognizer, transcoder, adapterLog),
	)

	generator := explain.NewGenerator(cfg.Explain, oracleClient.Provider(), logger("explain"))

	return New(cfg, Deps{
		Adapters:  registry,
		Oracle:    oracleClient,
		Explainer: generator,
		Logger:    logger("pipeline"),
		Observer:  observer,
	})
}

// Whisper shares the LLM credential when the LLM runs on Groq or OpenAI
func whisperFallbackKey(c model.LLMConfig) string {
	switch strings.ToLower(c.Provider) {
	case "groq", "openai":
		return c.APIKey
	}
	return ""
}

func whisperFallbackBaseURL(c model.LLMConfig) string {
	switch strings.ToLower(c.Provider) {
	case "groq":
		if c.BaseURL != "" {
			return c.BaseURL
		}
		return llm.GroqBaseURL
	case "openai":
		return c.BaseURL
	}
	return ""
}

// unavailableRecognizer stands in when no recognizer could be configured,
// so audio requests fail with TRANSCRIPTION_FAILED instead of at startup
type unavailableRecognizer struct {
	err error
}

func (u unavailableRecognizer) Name() string {
	return "unavailable"
}

func (u unavailableRecognizer) Transcribe(context.Context, string) (*speech.Transcript, error) {
	return nil, fmt.Errorf("recognizer not configured: %w", u.err)
}
