package stream

import (
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/liveflow/hls-gateway/log"
)

// Supervisor owns the self-destruct timer and teardown logic for every
// Stream in one Registry. The timer is a single patrickmn/go-cache
// instance: arming a Stream is cache.Set with a TTL, touch() is
// cache.Replace resetting that TTL, and expiry's OnEvicted callback
// calls kill(true) — the same mechanism the teacher uses to expire
// logger identities in log/logger.go, repurposed here as the actual
// inactivity clock instead of a hand-rolled time.Ticker poll loop.
type Supervisor struct {
	registry     *Registry
	transcodeDir string
	timeout      time.Duration
	tickers      *gocache.Cache
	metrics      supervisorMetrics
}

// supervisorMetrics is the slice of GatewayMetrics the Supervisor
// touches; kept as an interface so stream doesn't import package
// metrics directly and tests can pass a no-op.
type supervisorMetrics interface {
	IncSelfDestruct()
}

type noopMetrics struct{}

func (noopMetrics) IncSelfDestruct() {}

func NewSupervisor(registry *Registry, transcodeDir string, selfDestructTimeout time.Duration, m supervisorMetrics) *Supervisor {
	if m == nil {
		m = noopMetrics{}
	}
	sup := &Supervisor{
		registry:     registry,
		transcodeDir: transcodeDir,
		timeout:      selfDestructTimeout,
		metrics:      m,
	}
	// Check interval shorter than the timeout so eviction fires close to
	// the configured deadline; spec.md §4.3 names a 5s check cadence.
	sup.tickers = gocache.New(selfDestructTimeout, 5*time.Second)
	sup.tickers.OnEvicted(func(identifier string, _ interface{}) {
		s := registry.Get(identifier)
		if s == nil {
			return
		}
		sup.metrics.IncSelfDestruct()
		sup.Kill(s, true)
	})
	return sup
}

// StartSelfDestructor arms s's inactivity timer. Calling it again before
// expiry is equivalent to Touch.
func (sup *Supervisor) StartSelfDestructor(s *Stream) {
	sup.tickers.Set(s.Identifier, struct{}{}, sup.timeout)
}

// Touch resets s's last_activity and its self-destruct deadline.
func (sup *Supervisor) Touch(s *Stream) {
	s.Touch()
	_ = sup.tickers.Replace(s.Identifier, struct{}{}, sup.timeout)
}

// StopSelfDestructor cancels s's inactivity timer. Kill calls it, and so
// does Restart: after a Poller-driven restart the timer stays cancelled
// until the next successful spawn arms it again via StartSelfDestructor.
func (sup *Supervisor) StopSelfDestructor(s *Stream) {
	sup.tickers.Delete(s.Identifier)
}

// Kill is the idempotent teardown described in spec.md §4.3: cancel the
// timer, kill the transcoder if any, optionally remove every file with
// this Stream's identifier prefix, and fire on_finish exactly once.
func (sup *Supervisor) Kill(s *Stream, removeFiles bool) {
	sup.StopSelfDestructor(s)

	if err := s.KillTranscoder(); err != nil {
		log.LogNoRequestID("error killing transcoder", "identifier", s.Identifier, "err", err)
	}

	if removeFiles {
		sup.removeFiles(s.Identifier)
	}

	s.FinishOnce()
}

func (sup *Supervisor) removeFiles(identifier string) {
	matches, err := filepath.Glob(filepath.Join(sup.transcodeDir, identifier+"*"))
	if err != nil {
		log.LogNoRequestID("error globbing stream files for cleanup", "identifier", identifier, "err", err)
		return
	}
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			log.LogNoRequestID("error removing stream file", "path", path, "err", err)
		}
	}
}

// Restart implements the Restarting state: cancel the timer, kill the
// current transcoder (files kept, per spec.md §4.3 "files are removed
// only ... not on transient restarts"), and set the new start segment.
// The caller still has to invoke the Transcoder Driver's spawn(), whose
// success arms the timer again.
func (sup *Supervisor) Restart(s *Stream, newStartSegment int) {
	sup.StopSelfDestructor(s)
	if err := s.KillTranscoder(); err != nil {
		log.LogNoRequestID("error killing transcoder before restart", "identifier", s.Identifier, "err", err)
	}
	s.SetSeekStartSegment(newStartSegment)
}
