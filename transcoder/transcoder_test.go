package transcoder

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildArgsFreshStartHasNoSeekOrOffset(t *testing.T) {
	cfg := Config{TranscodeDir: "/tmp/tc", SegmentDuration: 6}
	args := BuildArgs(cfg, "abc12345", "rtsp://example.com/source", 0)

	joined := strings.Join(args, " ")
	require.NotContains(t, joined, "-ss")
	require.NotContains(t, joined, "-initial_offset")
	require.Contains(t, joined, "-segment_start_number 0")
	require.Contains(t, joined, "/tmp/tc/abc12345%d.ts")
	require.Contains(t, joined, "-i rtsp://example.com/source")
}

func TestBuildArgsSeekAddsOffsetAndStartNumber(t *testing.T) {
	cfg := Config{TranscodeDir: "/tmp/tc", SegmentDuration: 5}
	args := BuildArgs(cfg, "abc12345", "rtsp://example.com/source", 10)

	joined := strings.Join(args, " ")
	require.Contains(t, joined, fmt.Sprintf("-ss %s", strconv.FormatFloat(50, 'f', -1, 64)))
	require.Contains(t, joined, fmt.Sprintf("-initial_offset %s", strconv.FormatFloat(50, 'f', -1, 64)))
	require.Contains(t, joined, "-segment_start_number 10")
}

func TestSpawnProbeFailureInvokesOnErrorOnly(t *testing.T) {
	cfg := Config{TranscodeDir: t.TempDir(), SegmentDuration: 6, FfmpegPath: "/bin/false"}
	driver := NewDriverWithProbe(cfg, func(string) (float64, error) {
		return 0, fmt.Errorf("connection refused")
	})

	var successCalled, errorCalled bool
	driver.Spawn("abc12345", "rtsp://example.com", 0, func(string, *Handle) {
		successCalled = true
	}, func(err error) {
		errorCalled = true
	}, nil)

	require.False(t, successCalled)
	require.True(t, errorCalled)
}

func TestSpawnSuccessWritesMasterManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{TranscodeDir: dir, SegmentDuration: 5, FfmpegPath: "/bin/sleep"}
	driver := NewDriverWithProbe(cfg, func(string) (float64, error) {
		return 10, nil
	})

	done := make(chan struct{})
	var handle *Handle
	driver.Spawn("abc12345", "rtsp://example.com", 0, func(manifest string, h *Handle) {
		handle = h
		close(done)
	}, func(err error) {
		close(done)
	}, nil)
	<-done

	require.NotNil(t, handle)
	require.FileExists(t, filepath.Join(dir, "abc12345_master.m3u8"))
	require.NoError(t, handle.Kill())
}

func TestSpawnOnExitFiresAfterChildExits(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{TranscodeDir: dir, SegmentDuration: 5, FfmpegPath: "/bin/true"}
	driver := NewDriverWithProbe(cfg, func(string) (float64, error) {
		return 10, nil
	})

	started := make(chan struct{})
	exited := make(chan error, 1)
	driver.Spawn("abc12345", "rtsp://example.com", 0, func(manifest string, h *Handle) {
		close(started)
	}, func(err error) {
		close(started)
	}, func(err error) {
		exited <- err
	})
	<-started

	require.NoError(t, <-exited)
}
