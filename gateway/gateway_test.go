package gateway

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/liveflow/hls-gateway/config"
	"github.com/liveflow/hls-gateway/stream"
	"github.com/liveflow/hls-gateway/transcoder"
)

func newTestGateway(t *testing.T, probeDuration float64, probeErr error) *Gateway {
	t.Helper()
	dir := t.TempDir()
	cli := config.Cli{
		ServerPort:           8000,
		TranscodeDir:         dir,
		SegmentDuration:      5 * time.Second,
		SegmentMaxGap:        3,
		SelfDestructDuration: time.Minute,
		MaxConcurrentStreams: 2,
		FfmpegPath:           "/bin/sleep",
	}
	g := New(cli)
	g.driver = transcoder.NewDriverWithProbe(transcoder.Config{
		FfmpegPath:      cli.FfmpegPath,
		TranscodeDir:    cli.TranscodeDir,
		SegmentDuration: cli.SegmentDuration.Seconds(),
	}, func(string) (float64, error) {
		return probeDuration, probeErr
	})
	return g
}

func TestHandleWatchMissingURL(t *testing.T) {
	g := newTestGateway(t, 10, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/watch.m3u8", nil)

	g.handleWatch(rec, req, nil)

	require.Equal(t, 500, rec.Code)
	require.Equal(t, 0, g.registry.Len())
}

func TestHandleWatchHappyPathReturnsManifest(t *testing.T) {
	g := newTestGateway(t, 12.5, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/watch.m3u8?url=rtsp://example.com/source", nil)

	g.handleWatch(rec, req, nil)

	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), "#EXTM3U")
	require.Contains(t, rec.Body.String(), "#EXT-X-ENDLIST")
	require.Equal(t, 1, g.registry.Len())
}

func TestHandleWatchProbeFailureDoesNotAdmit(t *testing.T) {
	g := newTestGateway(t, 0, os.ErrDeadlineExceeded)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/watch.m3u8?url=rtsp://example.com/source", nil)

	g.handleWatch(rec, req, nil)

	require.Equal(t, 500, rec.Code)
	require.Equal(t, 0, g.registry.Len())
}

func TestHandleSegmentServesExistingFile(t *testing.T) {
	g := newTestGateway(t, 12.5, nil)
	identifier := "abc12345"
	require.NoError(t, os.WriteFile(filepath.Join(g.cli.TranscodeDir, identifier+"0.ts"), []byte("ts-bytes"), 0o644))

	s := stream.New(identifier, "rtsp://example.com", func() {}, nil)
	require.NoError(t, g.registry.Admit(s))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/segment.ts?file="+identifier+"0.ts", nil)

	g.handleSegment(rec, req, nil)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, "ts-bytes", rec.Body.String())
}

func TestHandleSegmentInvalidFilename(t *testing.T) {
	g := newTestGateway(t, 12.5, nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/segment.ts?file=not-a-segment", nil)

	g.handleSegment(rec, req, nil)

	require.Equal(t, 500, rec.Code)
}
