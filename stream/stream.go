// Package stream owns the lifecycle of one transcoding session per
// upstream source: spawning and killing the child transcoder, tracking
// activity, and tearing itself down on inactivity.
package stream

import (
	"sync"
	"time"

	"github.com/liveflow/hls-gateway/config"
)

// Transcoder is the subset of the Transcoder Driver's handle the Stream
// needs to supervise a running child: a way to stop it. Defined here
// (rather than imported from package transcoder) so stream has no
// dependency on how the child process is actually launched.
type Transcoder interface {
	Kill() error
}

// Stream is one active upstream session, per spec.md §3.
type Stream struct {
	mu sync.Mutex

	Identifier string
	SourceURL  string

	seekStartSegment int
	transcoder       Transcoder

	lastActivity time.Time
	clock        func() time.Time

	onFinish     func()
	finishedOnce sync.Once
}

// New constructs a Stream. clock defaults to config.Clock when nil, letting
// tests inject a fixed or steppable clock.
func New(identifier, sourceURL string, onFinish func(), clock func() time.Time) *Stream {
	if clock == nil {
		clock = config.Clock.GetTime
	}
	s := &Stream{
		Identifier: identifier,
		SourceURL:  sourceURL,
		onFinish:   onFinish,
		clock:      clock,
	}
	s.lastActivity = clock()
	return s
}

// Touch updates last_activity to now, per spec.md §4.3.
func (s *Stream) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.clock()
}

func (s *Stream) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// SeekStartSegment returns the segment index the current (or next)
// transcoder run was/will be started at.
func (s *Stream) SeekStartSegment() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seekStartSegment
}

func (s *Stream) SetSeekStartSegment(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekStartSegment = i
}

// GetTranscoder returns the live transcoder handle, or nil if the Stream is
// idle between runs.
func (s *Stream) GetTranscoder() Transcoder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcoder
}

func (s *Stream) SetTranscoder(t Transcoder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcoder = t
}

// KillTranscoder stops the live transcoder, if any, and clears the
// handle. Safe to call when no transcoder is running.
func (s *Stream) KillTranscoder() error {
	s.mu.Lock()
	t := s.transcoder
	s.transcoder = nil
	s.mu.Unlock()

	if t == nil {
		return nil
	}
	return t.Kill()
}

// FinishOnce invokes the on_finish callback exactly once across this
// Stream instance's lifetime, per spec.md §5's ordering guarantee.
func (s *Stream) FinishOnce() {
	s.finishedOnce.Do(func() {
		if s.onFinish != nil {
			s.onFinish()
		}
	})
}
