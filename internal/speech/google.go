package speech

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/api/option"
	speechapi "google.golang.org/api/speech/v1"

	"github.com/bot80-alt/certa/internal/model"
)

// GoogleRecognizer uses Cloud Speech-to-Text synchronous recognition
type GoogleRecognizer struct {
	svc      *speechapi.Service
	model    string
	language string
}

// NewGoogleRecognizer creates a Speech-to-Text client. Extra options are
// appended after the ones derived from cfg.
func NewGoogleRecognizer(ctx context.Context, cfg model.AudioConfig, extra ...option.ClientOption) (*GoogleRecognizer, error) {
	var opts []option.ClientOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	opts = append(opts, extra...)

	svc, err := speechapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create speech service: %w", err)
	}

	language := cfg.Language
	if language == "" {
		language = "en"
	}
	// Speech-to-Text wants BCP-47 with region
	if !strings.Contains(language, "-") {
		language = language + "-US"
	}

	modelName := cfg.Model
	if strings.HasPrefix(modelName, "whisper") {
		modelName = ""
	}

	return &GoogleRecognizer{svc: svc, model: modelName, language: language}, nil
}

// Name returns the recognizer name
func (g *GoogleRecognizer) Name() string {
	return "google"
}

// Transcribe sends the file inline and joins the top alternative of each result
func (g *GoogleRecognizer) Transcribe(ctx context.Context, path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	cfg := &speechapi.RecognitionConfig{
		LanguageCode:               g.language,
		Model:                      g.model,
		EnableAutomaticPunctuation: true,
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		cfg.Encoding = "FLAC"
	case ".ogg", ".opus":
		cfg.Encoding = "OGG_OPUS"
		cfg.SampleRateHertz = 48000
	case ".webm":
		cfg.Encoding = "WEBM_OPUS"
		cfg.SampleRateHertz = 48000
	}

	resp, err := g.svc.Speech.Recognize(&speechapi.RecognizeRequest{
		Config: cfg,
		Audio:  &speechapi.RecognitionAudio{Content: base64.StdEncoding.EncodeToString(data)},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("speech recognize: %w", err)
	}

	var parts []string
	var confSum float64
	var scored int
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		alt := result.Alternatives[0]
		if text := strings.TrimSpace(alt.Transcript); text != "" {
			parts = append(parts, text)
		}
		if alt.Confidence > 0 {
			confSum += alt.Confidence
			scored++
		}
	}

	t := &Transcript{Text: strings.Join(parts, " ")}
	if scored > 0 {
		t.Confidence = confSum / float64(scored)
		t.Scored = true
	}
	return t, nil
}
