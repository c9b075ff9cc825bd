package transcoder

import (
	"os/exec"
	"strconv"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/liveflow/hls-gateway/errors"
)

// Ffprobe wraps the ffprobe-compatible binary in a bounded backoff.Retry
// loop, the same shape the teacher uses for flaky uploads. Only output
// that does not parse as a duration is retried; a failing run of the
// binary, including one against an unreachable source, is not.
type Ffprobe struct {
	Path string
}

func NewFfprobe(path string) *Ffprobe {
	return &Ffprobe{Path: path}
}

// Probe returns the container's duration in seconds. Probe failures are
// retried with exponential backoff up to 3 attempts; an error from the
// binary itself (bad URL, no such container) is treated as permanent.
func (f *Ffprobe) Probe(sourceURL string) (float64, error) {
	var duration float64

	operation := func() error {
		out, err := exec.Command(
			f.Path,
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			sourceURL,
		).Output()
		if err != nil {
			return backoff.Permanent(errors.Unretriable(err))
		}

		d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
		if err != nil {
			return err
		}
		duration = d
		return nil
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
	if err := backoff.Retry(operation, b); err != nil {
		return 0, err
	}
	return duration, nil
}
