// Package speech turns recorded audio into text for the audio adapter.
package speech

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/bot80-alt/certa/internal/model"
)

// Transcript is the output of one recognition attempt
type Transcript struct {
	Text string

	// Confidence in [0,1]; only meaningful when Scored is true
	Confidence float64
	Scored     bool
}

// Recognizer transcribes an audio file on disk
type Recognizer interface {
	Name() string
	Transcribe(ctx context.Context, path string) (*Transcript, error)
}

// Options carries what the factory needs beyond model.AudioConfig
type Options struct {
	// FallbackKey is used by the whisper recognizer when audio.api_key is empty
	// (the Groq/OpenAI LLM key serves both)
	FallbackKey     string
	FallbackBaseURL string
	Proxy           func(*http.Request) (*url.URL, error)
}

// NewRecognizer builds the recognizer selected by cfg.Recognizer
func NewRecognizer(ctx context.Context, cfg model.AudioConfig, opts Options) (Recognizer, error) {
	switch strings.ToLower(cfg.Recognizer) {
	case "", "whisper":
		if cfg.APIKey == "" {
			cfg.APIKey = opts.FallbackKey
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = opts.FallbackBaseURL
		}
		return NewWhisperRecognizer(cfg, opts.Proxy)
	case "google":
		return NewGoogleRecognizer(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown recognizer: %s (supported: whisper, google)", cfg.Recognizer)
	}
}
