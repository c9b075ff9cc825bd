package gateway

import (
	stderrors "errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/liveflow/hls-gateway/errors"
	"github.com/liveflow/hls-gateway/metrics"
	"github.com/liveflow/hls-gateway/poller"
)

var segmentFileRe = regexp.MustCompile(`^(.{8})(\d+)\.ts$`)

var errInvalidSegmentFilename = stderrors.New("segment filename must match <identifier><index>.ts")

// handleSegment implements GET /segment.ts?file=<identifier><index>.ts,
// driving a fresh Poller per request per spec.md §3/§4.4.
func (g *Gateway) handleSegment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filename := r.URL.Query().Get("file")
	identifier, index, err := parseSegmentFilename(filename)
	if err != nil {
		errors.WriteHTTPInternalServerError(w, "invalid segment file parameter", err)
		return
	}

	s := g.registry.Get(identifier)

	var adapter poller.Stream
	if s != nil {
		adapter = &streamAdapter{s: s, supervisor: g.supervisor, driver: g.driver, metrics: promMetrics{}}
	}

	maxAttempts := poller.MaxAttempts(g.cli.SegmentDuration.Seconds(), 10)
	if maxAttempts < g.cli.SegmentMaxGap {
		maxAttempts = g.cli.SegmentMaxGap
	}
	p := poller.New(g.fs, g.cli.TranscodeDir, g.cli.SegmentMaxGap, maxAttempts, time.Second)

	start := time.Now()
	f, err := p.Resolve(r.Context(), adapter, identifier, index)
	metrics.Metrics.SegmentRequestDuration.WithLabelValues(successLabel(err)).Observe(time.Since(start).Seconds())
	metrics.Metrics.PollerAttempts.Observe(float64(p.Attempts()))
	if err != nil {
		errors.WriteHTTPInternalServerError(w, "segment did not appear in time", err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "video/mp2t")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, f)
}

func successLabel(err error) string {
	if err != nil {
		return "false"
	}
	return "true"
}

func parseSegmentFilename(filename string) (identifier string, index int, err error) {
	matches := segmentFileRe.FindStringSubmatch(filename)
	if matches == nil {
		return "", 0, errInvalidSegmentFilename
	}
	idx, err := strconv.Atoi(matches[2])
	if err != nil {
		return "", 0, err
	}
	return matches[1], idx, nil
}
