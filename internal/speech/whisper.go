package speech

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bot80-alt/certa/internal/model"
)

// WhisperRecognizer calls an OpenAI-compatible /audio/transcriptions endpoint
// (OpenAI Whisper or Groq's hosted whisper-large-v3)
type WhisperRecognizer struct {
	client   *openai.Client
	model    string
	language string
}

// NewWhisperRecognizer creates a Whisper client
func NewWhisperRecognizer(cfg model.AudioConfig, proxy func(*http.Request) (*url.URL, error)) (*WhisperRecognizer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("whisper API key is required")
	}
	if proxy == nil {
		proxy = http.ProxyFromEnvironment
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{
		Transport: &http.Transport{Proxy: proxy},
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = openai.Whisper1
	}

	return &WhisperRecognizer{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    modelName,
		language: cfg.Language,
	}, nil
}

// Name returns the recognizer name
func (w *WhisperRecognizer) Name() string {
	return "whisper"
}

// Transcribe uploads the file and returns the transcript. Confidence is the
// mean per-segment probability derived from avg_logprob when segments are present.
func (w *WhisperRecognizer) Transcribe(ctx context.Context, path string) (*Transcript, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: path,
		Language: w.language,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}

	t := &Transcript{Text: strings.TrimSpace(resp.Text)}
	if len(resp.Segments) > 0 {
		var sum float64
		for _, seg := range resp.Segments {
			sum += math.Exp(seg.AvgLogprob)
		}
		t.Confidence = sum / float64(len(resp.Segments))
		t.Scored = true
	}
	return t, nil
}
