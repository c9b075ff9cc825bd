package gateway

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/liveflow/hls-gateway/config"
	"github.com/liveflow/hls-gateway/errors"
	"github.com/liveflow/hls-gateway/metrics"
	"github.com/liveflow/hls-gateway/stream"
	"github.com/liveflow/hls-gateway/transcoder"
)

const playlistContentType = "application/vnd.apple.mpegurl"

// handleWatch implements GET /watch.m3u8?url=<upstream>, per spec.md §4.1
// and §6. Admission (registry capacity) has already been checked by the
// capacity middleware by the time this runs.
func (g *Gateway) handleWatch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sourceURL := r.URL.Query().Get("url")
	if sourceURL == "" {
		g.writeBadRequestError(w, "missing required query parameter: url", nil)
		return
	}

	identifier := g.newUniqueIdentifier()

	resultCh := make(chan watchResult, 1)
	s := stream.New(identifier, sourceURL, func() {
		g.registry.Remove(identifier, identifier)
		metrics.Metrics.ActiveStreams.Set(float64(g.registry.Len()))
	}, nil)

	if err := g.registry.Admit(s); err != nil {
		// The capacity middleware already guards this in the normal
		// request path; this is a defensive fallback against a race
		// between the check and this handler running.
		metrics.Metrics.AdmissionRejectedTotal.Inc()
		g.writeCapacityError(w, "max concurrent streams reached", err)
		return
	}

	g.driver.Spawn(identifier, sourceURL, 0, func(manifest string, handle *transcoder.Handle) {
		s.SetTranscoder(handle)
		g.supervisor.StartSelfDestructor(s)
		resultCh <- watchResult{manifest: manifest}
	}, func(err error) {
		resultCh <- watchResult{err: err}
	}, onTranscoderExit(s, g.supervisor))

	result := <-resultCh
	if result.err != nil {
		g.supervisor.Kill(s, true)
		metrics.Metrics.SpawnTotal.WithLabelValues("error").Inc()
		errors.WriteHTTPInternalServerError(w, "failed to start transcoder", result.err)
		return
	}

	metrics.Metrics.SpawnTotal.WithLabelValues("success").Inc()
	metrics.Metrics.ActiveStreams.Set(float64(g.registry.Len()))

	w.Header().Set("Content-Type", playlistContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.manifest))
}

type watchResult struct {
	manifest string
	err      error
}

// newUniqueIdentifier generates a Stream identifier and retries on the
// (astronomically unlikely) event of a collision with a live Stream, so
// the registry's identifier-uniqueness invariant (spec.md §3) always holds.
func (g *Gateway) newUniqueIdentifier() string {
	for {
		id := config.NewIdentifier()
		if g.registry.Get(id) == nil {
			return id
		}
	}
}
