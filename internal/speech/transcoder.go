// Package speech turns voice notes into text: transcode to WAV, then
// run them through a recognition service.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var ErrTranscoderMissing = errors.New("speech: ffmpeg not found")

// Transcoder converts compressed voice notes into 16 kHz mono PCM WAV,
// the format the recognition service handles best.
type Transcoder struct {
	binaryPath string
}

func NewTranscoder(binaryPath string) *Transcoder {
	if strings.TrimSpace(binaryPath) == "" {
		binaryPath = "ffmpeg"
	}
	return &Transcoder{binaryPath: binaryPath}
}

// ToWAV transcodes src into dst. dst is overwritten if it exists.
func (t *Transcoder) ToWAV(ctx context.Context, src, dst string) error {
	if _, err := exec.LookPath(t.binaryPath); err != nil {
		return ErrTranscoderMissing
	}

	cmd := exec.CommandContext(ctx, t.binaryPath, transcodeArgs(src, dst)...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, truncateOutput(out))
	}
	return nil
}

func transcodeArgs(src, dst string) []string {
	return []string{"-y", "-i", src, "-acodec", "pcm_s16le", "-ac", "1", "-ar", "16000", dst}
}

func truncateOutput(out []byte) string {
	const limit = 256
	s := strings.TrimSpace(string(out))
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
