// Package poller implements the Segment Poller: a per-request state
// machine that waits for a transcoded segment file to appear, detects
// when the transcoder has fallen behind (a seek), and restarts it when
// needed. This is the hardest component in the system — see spec.md §4.4.
package poller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/liveflow/hls-gateway/log"
)

// Stream is the subset of *stream.Stream the Poller needs. Kept as an
// interface, like stream.Transcoder, so poller has no import-cycle
// dependency on package stream and can be driven by a fake in tests.
type Stream interface {
	Identifier() string
	Touch()
	HasTranscoder() bool
	SeekStartSegment() int
	Restart(newStartSegment int)
	Spawn(onSuccess func(), onError func(err error))
}

// Filesystem abstracts the segment-file checks so tests don't need a
// real disk layout or a real ffmpeg writing to it.
type Filesystem interface {
	Exists(path string) bool
	HighestSegmentIndex(transcodeDir, identifier string) (int, error)
}

// Poller is constructed fresh per /segment.ts request.
type Poller struct {
	fs                Filesystem
	transcodeDir      string
	maxGap            int
	pollInterval      time.Duration
	now               func() time.Time

	attempts              int
	maxAttempts           int
	transcodeStarting     bool
	newTranscoderStarted  bool
}

func New(fs Filesystem, transcodeDir string, maxGap int, maxAttempts int, pollInterval time.Duration) *Poller {
	return &Poller{
		fs:           fs,
		transcodeDir: transcodeDir,
		maxGap:       maxGap,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Attempts reports how many poll iterations Resolve has run so far,
// for callers that want to observe it (e.g. as a metric) regardless of
// whether Resolve succeeded or returned ErrExhausted.
func (p *Poller) Attempts() int {
	return p.attempts
}

// MaxAttempts implements spec.md §3's `max(10, 2 × segment_duration)`.
func MaxAttempts(segmentDurationSeconds float64, floor int) int {
	computed := int(2 * segmentDurationSeconds)
	if computed < floor {
		return floor
	}
	return computed
}

// ErrExhausted is returned once max_attempts polls have passed without
// the segment appearing.
var ErrExhausted = errors.New("poller exhausted max attempts")

// Resolve runs the algorithm in spec.md §4.4 to completion: it either
// returns an open *os.File for the requested segment, or ErrExhausted
// (or a spawn error surfaced along the way). s may be nil, representing
// a registry miss.
func (p *Poller) Resolve(ctx context.Context, s Stream, identifier string, segmentIndex int) (*os.File, error) {
	segmentPath := segmentFilePath(p.transcodeDir, identifier, segmentIndex)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if p.fs.Exists(segmentPath) {
			f, err := os.Open(segmentPath)
			if err != nil {
				// The file existed a moment ago; treat as a transient
				// miss rather than a hard failure and let the poll
				// loop retry, per spec.md §5's disk-race note.
				log.LogNoRequestID("segment existed but open failed, retrying", "path", segmentPath, "err", err)
			} else {
				return f, nil
			}
		}

		if s != nil {
			s.Touch()
		}

		p.attempts++
		if p.attempts > p.maxAttempts {
			return nil, ErrExhausted
		}

		shouldStart := p.shouldStartTranscode(s, identifier, segmentIndex)

		if shouldStart && !p.newTranscoderStarted {
			p.transcodeStarting = true
			p.newTranscoderStarted = true

			if s == nil {
				return nil, fmt.Errorf("no stream bound for identifier %s", identifier)
			}

			s.Restart(segmentIndex)

			spawned := make(chan error, 1)
			s.Spawn(func() {
				spawned <- nil
			}, func(err error) {
				spawned <- err
			})

			if err := <-spawned; err != nil {
				return nil, fmt.Errorf("respawning transcoder: %w", err)
			}
			p.transcodeStarting = false

			p.sleep(ctx)
			continue
		}

		p.sleep(ctx)
	}
}

func (p *Poller) sleep(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(p.pollInterval):
	}
}

// shouldStartTranscode implements spec.md §4.4 step 3.
func (p *Poller) shouldStartTranscode(s Stream, identifier string, segmentIndex int) bool {
	if s == nil {
		return true
	}
	if p.transcodeStarting {
		return false
	}
	if !s.HasTranscoder() {
		return true
	}
	if p.newTranscoderStarted {
		return false
	}

	current, err := p.fs.HighestSegmentIndex(p.transcodeDir, identifier)
	if err != nil {
		current = 0
	}
	return segmentIndex-current >= p.maxGap
}

func segmentFilePath(transcodeDir, identifier string, index int) string {
	return fmt.Sprintf("%s/%s%d.ts", transcodeDir, identifier, index)
}
