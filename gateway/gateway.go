// Package gateway is the HTTP surface: /watch.m3u8 and /segment.ts, plus
// the supplemented /ok endpoint, wired to the Stream Supervisor,
// Transcoder Driver, Playlist Synthesizer and Segment Poller. /metrics is
// not on this router; package metrics serves it on its own port.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/liveflow/hls-gateway/config"
	"github.com/liveflow/hls-gateway/errors"
	"github.com/liveflow/hls-gateway/log"
	"github.com/liveflow/hls-gateway/metrics"
	"github.com/liveflow/hls-gateway/middleware"
	"github.com/liveflow/hls-gateway/poller"
	"github.com/liveflow/hls-gateway/stream"
	"github.com/liveflow/hls-gateway/transcoder"
)

// promMetrics adapts metrics.Metrics to the small interfaces adapter.go
// and the Supervisor need, so package stream doesn't import package
// metrics directly.
type promMetrics struct{}

func (promMetrics) IncRespawn() { metrics.Metrics.RespawnTotal.Inc() }
func (promMetrics) IncSelfDestruct() {
	metrics.Metrics.SelfDestructTotal.Inc()
}

// Gateway wires the Streams Registry, Supervisor, Transcoder Driver and
// Segment Poller behind the HTTP surface spec.md §6 names.
type Gateway struct {
	cli        config.Cli
	registry   *stream.Registry
	supervisor *stream.Supervisor
	driver     *transcoder.Driver
	fs         poller.Filesystem
}

func New(cli config.Cli) *Gateway {
	registry := stream.NewRegistry(cli.MaxConcurrentStreams)
	supervisor := stream.NewSupervisor(registry, cli.TranscodeDir, cli.SelfDestructDuration, promMetrics{})
	driver := transcoder.NewDriver(transcoder.Config{
		FfmpegPath:      cli.FfmpegPath,
		FfprobePath:     cli.FfprobePath,
		TranscodeDir:    cli.TranscodeDir,
		SegmentDuration: cli.SegmentDuration.Seconds(),
	})

	return &Gateway{
		cli:        cli,
		registry:   registry,
		supervisor: supervisor,
		driver:     driver,
		fs:         poller.DiskFilesystem{},
	}
}

// Router builds the httprouter.Router serving spec.md §6's HTTP surface.
func (g *Gateway) Router() *httprouter.Router {
	router := httprouter.New()

	withLogging := middleware.LogRequest()
	withCORS := middleware.AllowCORS()

	watch := middleware.HasCapacity(g.registry, g.cli.MaxConcurrentStreams, g.cli.StrictHTTPStatus, g.handleWatch)

	router.GET("/watch.m3u8", withLogging(withCORS(watch)))
	router.GET("/segment.ts", withLogging(withCORS(g.handleSegment)))
	router.GET("/ok", withLogging(withCORS(g.handleOK)))
	router.OPTIONS("/*path", withCORS(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {}))

	return router
}

// ListenAndServe starts the gateway's HTTP listener and blocks until ctx
// is cancelled, then performs a bounded graceful shutdown — killing
// every live Stream first so a restart doesn't orphan ffmpeg children
// or leave partial files behind, per SPEC_FULL.md's graceful-shutdown
// supplement.
func (g *Gateway) ListenAndServe(ctx context.Context) error {
	server := http.Server{Addr: fmt.Sprintf("0.0.0.0:%d", g.cli.ServerPort), Handler: g.Router()}
	ctx, cancel := context.WithCancel(ctx)

	log.LogNoRequestID("Starting HLS gateway", "version", config.Version, "port", g.cli.ServerPort)

	var serveErr error
	go func() {
		serveErr = server.ListenAndServe()
		cancel()
	}()

	<-ctx.Done()

	for _, s := range g.registry.All() {
		g.supervisor.Kill(s, true)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if serveErr != nil && serveErr != http.ErrServerClosed {
		return serveErr
	}
	return nil
}

func (g *Gateway) handleOK(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// writeBadRequestError reports a client-input problem (missing/invalid
// query parameter): 500 by default, 400 behind -strict-http-status, per
// spec.md §9's admission-HTTP-code note.
func (g *Gateway) writeBadRequestError(w http.ResponseWriter, msg string, err error) {
	if g.cli.StrictHTTPStatus {
		errors.WriteHTTPBadRequest(w, msg, err)
		return
	}
	errors.WriteHTTPInternalServerError(w, msg, err)
}

// writeCapacityError reports registry-full: 500 by default, 503 behind
// -strict-http-status, per spec.md §9's admission-HTTP-code note. Kept
// distinct from writeBadRequestError since the two literal codes differ.
func (g *Gateway) writeCapacityError(w http.ResponseWriter, msg string, err error) {
	if g.cli.StrictHTTPStatus {
		errors.WriteHTTPServiceUnavailable(w, msg, err)
		return
	}
	errors.WriteHTTPInternalServerError(w, msg, err)
}
