package speech

import (
	"bytes"
	"fmt"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Transcoder normalizes audio to 16 kHz mono WAV before recognition
type Transcoder interface {
	Transcode(inPath, outPath string) error
}

// FFmpegTranscoder shells out to the ffmpeg binary
type FFmpegTranscoder struct{}

// Transcode converts inPath into a 16 kHz mono PCM WAV at outPath
func (FFmpegTranscoder) Transcode(inPath, outPath string) error {
	var stderr bytes.Buffer
	err := ffmpeg.Input(inPath).
		Output(outPath, ffmpeg.KwArgs{
			"ar":     16000,
			"ac":     1,
			"f":      "wav",
			"acodec": "pcm_s16le",
		}).
		OverWriteOutput().
		WithErrorOutput(&stderr).
		Run()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if i := strings.LastIndex(msg, "\n"); i >= 0 {
			msg = msg[i+1:]
		}
		return fmt.Errorf("ffmpeg failed: %w: %s", err, msg)
	}
	return nil
}
