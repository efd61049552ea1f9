package adapters

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bot80-alt/certa/internal/model"
	"github.com/bot80-alt/certa/internal/speech"
)

// TranscriptionFailedMessage is the stable message for every recognizer failure
const TranscriptionFailedMessage = "Could not transcribe audio"

// removeFile is swapped in tests to simulate cleanup failures
var removeFile = os.Remove

// AudioAdapter writes uploaded audio to a scoped temp file and transcribes it
type AudioAdapter struct {
	recognizer speech.Recognizer
	transcoder speech.Transcoder
	cfg        model.AudioConfig
	minChars   int
	logger     *log.Logger
}

// NewAudioAdapter creates an audio adapter. transcoder may be nil.
func NewAudioAdapter(cfg model.AudioConfig, minChars int, recognizer speech.Recognizer, transcoder speech.Transcoder, logger *log.Logger) *AudioAdapter {
	return &AudioAdapter{
		recognizer: recognizer,
		transcoder: transcoder,
		cfg:        cfg,
		minChars:   minChars,
		logger:     orDiscard(logger),
	}
}

// Name returns the adapter name
func (a *AudioAdapter) Name() string {
	return "audio"
}

// CanHandle matches the audio modality
func (a *AudioAdapter) CanHandle(in Input) bool {
	return in.Modality == model.ModalityAudio
}

// Normalize transcribes in.Audio with a single recognizer attempt.
// The temp files it creates are removed before it returns, whatever the outcome.
func (a *AudioAdapter) Normalize(ctx context.Context, in Input) (*model.NormalizedContent, error) {
	const op = "audio-adapter"

	mediaType, err := AudioMediaType(in.MediaType)
	if err != nil {
		return nil, model.NewError(model.KindInputValidation, op, err.Error(), nil)
	}
	if len(in.Audio) == 0 {
		return nil, model.NewError(model.KindInputValidation, op, "audio file is empty", nil)
	}
	if a.cfg.MaxBytes > 0 && int64(len(in.Audio)) > a.cfg.MaxBytes {
		return nil, model.NewError(model.KindInputValidation, op,
			fmt.Sprintf("audio file exceeds %d bytes", a.cfg.MaxBytes), nil)
	}

	path, err := a.writeTemp(in.Audio, audioExtension(in.Filename, mediaType))
	if err != nil {
		return nil, model.NewError(model.KindTranscriptionFailed, op, TranscriptionFailedMessage, err)
	}
	defer a.cleanup(path)

	if a.transcoder != nil {
		wavPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".16k.wav"
		defer a.cleanup(wavPath)
		if err := a.transcoder.Transcode(path, wavPath); err != nil {
			return nil, model.NewError(model.KindTranscriptionFailed, op, TranscriptionFailedMessage, err)
		}
		path = wavPath
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	transcript, err := a.recognizer.Transcribe(ctx, path)
	if err != nil {
		return nil, model.NewError(model.KindTranscriptionFailed, op, TranscriptionFailedMessage, err)
	}
	a.logger.Printf("transcribed %d bytes with %s in %s", len(in.Audio), a.recognizer.Name(), time.Since(start).Round(time.Millisecond))

	text := strings.TrimSpace(transcript.Text)
	if text == "" {
		return nil, model.NewError(model.KindTranscriptionFailed, op, TranscriptionFailedMessage,
			fmt.Errorf("recognizer returned an empty transcript"))
	}
	if transcript.Scored && transcript.Confidence < a.cfg.MinConfidence {
		return nil, model.NewError(model.KindTranscriptionFailed, op, TranscriptionFailedMessage,
			fmt.Errorf("confidence %.2f below %.2f", transcript.Confidence, a.cfg.MinConfidence))
	}

	if err := CheckSufficient(op, text, a.minChars); err != nil {
		return nil, err
	}

	return &model.NormalizedContent{
		Text:     text,
		Title:    strings.TrimSpace(in.Filename),
		Modality: model.ModalityAudio,
	}, nil
}

func (a *AudioAdapter) writeTemp(data []byte, ext string) (string, error) {
	f, err := os.CreateTemp(a.cfg.TempDir, "certa-audio-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		a.cleanup(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		a.cleanup(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}

// cleanup removes a temp file; failure is logged and never escalated
func (a *AudioAdapter) cleanup(path string) {
	if err := removeFile(path); err != nil && !os.IsNotExist(err) {
		a.logger.Printf("Warning: failed to remove temp file %s: %v", path, err)
	}
}

// AudioMediaType validates a declared media type and returns it without parameters
func AudioMediaType(declared string) (string, error) {
	if strings.TrimSpace(declared) == "" {
		return "", fmt.Errorf("media type is required for audio input")
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", fmt.Errorf("media type %q is malformed", declared)
	}
	if !strings.HasPrefix(mediaType, "audio/") {
		return "", fmt.Errorf("media type %q is not an audio format", mediaType)
	}
	return mediaType, nil
}

var audioExtensions = map[string]string{
	"audio/mpeg":   ".mp3",
	"audio/mp3":    ".mp3",
	"audio/wav":    ".wav",
	"audio/wave":   ".wav",
	"audio/x-wav":  ".wav",
	"audio/webm":   ".webm",
	"audio/ogg":    ".ogg",
	"audio/opus":   ".opus",
	"audio/flac":   ".flac",
	"audio/x-flac": ".flac",
	"audio/mp4":    ".m4a",
	"audio/m4a":    ".m4a",
	"audio/x-m4a":  ".m4a",
	"audio/aac":    ".aac",
}

// audioExtension keeps the upload's extension so recognizers can sniff the
// container, falling back to one derived from the media type
func audioExtension(filename, mediaType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && len(ext) <= 6 {
		return ext
	}
	if ext, ok := audioExtensions[mediaType]; ok {
		return ext
	}
	return ".audio"
}

var extensionMediaTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
}

// MediaTypeForFilename guesses an audio media type from a file extension,
// returning "" for unknown extensions
func MediaTypeForFilename(filename string) string {
	return extensionMediaTypes[strings.ToLower(filepath.Ext(filename))]
}
