package gateway

import (
	"github.com/liveflow/hls-gateway/stream"
	"github.com/liveflow/hls-gateway/transcoder"
)

// streamAdapter bridges a *stream.Stream to the poller.Stream interface,
// translating the Poller's restart/spawn vocabulary into the concrete
// Supervisor and Transcoder Driver calls. It is the one place that knows
// about all three of stream, transcoder and poller, so none of those
// packages need to know about each other.
type streamAdapter struct {
	s          *stream.Stream
	supervisor *stream.Supervisor
	driver     *transcoder.Driver
	metrics    gatewayMetrics
}

type gatewayMetrics interface {
	IncRespawn()
}

func (a *streamAdapter) Identifier() string    { return a.s.Identifier }
func (a *streamAdapter) Touch()                { a.supervisor.Touch(a.s) }
func (a *streamAdapter) HasTranscoder() bool   { return a.s.GetTranscoder() != nil }
func (a *streamAdapter) SeekStartSegment() int { return a.s.SeekStartSegment() }

func (a *streamAdapter) Restart(newStartSegment int) {
	a.metrics.IncRespawn()
	a.supervisor.Restart(a.s, newStartSegment)
}

func (a *streamAdapter) Spawn(onSuccess func(), onError func(err error)) {
	a.driver.Spawn(a.s.Identifier, a.s.SourceURL, a.s.SeekStartSegment(), func(_ string, handle *transcoder.Handle) {
		a.s.SetTranscoder(handle)
		a.supervisor.StartSelfDestructor(a.s)
		onSuccess()
	}, onError, onTranscoderExit(a.s, a.supervisor))
}

// onTranscoderExit clears a Stream's transcoder handle once its child
// exits, per spec.md §4.1 step 4. A runtime crash (err != nil) only
// clears the handle, so the next segment request's gap analysis sees
// no transcoder and respawns; a clean exit (err == nil) means the
// upstream source itself ended, so the whole Stream is torn down.
func onTranscoderExit(s *stream.Stream, supervisor *stream.Supervisor) func(err error) {
	return func(err error) {
		s.SetTranscoder(nil)
		if err == nil {
			supervisor.Kill(s, true)
		}
	}
}
