// Package media shells out to ffmpeg for audio extraction. Grading works on
// the raw video too; extraction only shrinks the payload sent upstream.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExtractAudio writes a mono 16 kHz WAV track of src to dst. The caller owns
// dst and is responsible for cleaning it up.
func ExtractAudio(ctx context.Context, src, dst string) error {
	args := []string{"-y", "-i", src, "-vn", "-ac", "1", "-ar", "16000", "-f", "wav", dst}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg %s: %w: %s", src, err, tail(string(out), 300))
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
