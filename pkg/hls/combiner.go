package hls

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Muxer concatenates the segments listed in a concat manifest into a
// single output container without re-encoding.
type Muxer interface {
	Combine(listPath, outputPath string) error
}

// FFmpegMuxer remuxes segments with ffmpeg's concat demuxer. Path
// overrides the binary name; empty means "ffmpeg" from PATH.
type FFmpegMuxer struct {
	Path string
}

// Combine runs the stream copy. On failure the returned error carries
// ffmpeg's stderr so the actual cause (typically a missing segment file)
// reaches the user.
func (m FFmpegMuxer) Combine(listPath, outputPath string) error {
	bin := m.Path
	if bin == "" {
		bin = "ffmpeg"
	}

	var stderr bytes.Buffer
	cmd := exec.Command(bin, concatArgs(listPath, outputPath)...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return errors.Wrapf(err, "ffmpeg failed: %s", msg)
		}
		return errors.Wrap(err, "ffmpeg failed")
	}

	return nil
}

func concatArgs(listPath, outputPath string) []string {
	return []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outputPath,
	}
}
