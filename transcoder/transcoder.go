// Package transcoder drives the external ffmpeg-compatible binary: it
// probes the upstream source, builds the argument vector spec.md §4.1
// prescribes, and supervises the resulting child process.
package transcoder

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/liveflow/hls-gateway/log"
	"github.com/liveflow/hls-gateway/playlist"
	"github.com/liveflow/hls-gateway/subprocess"
)

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}

// Config is the static, process-wide configuration shared by every
// spawn, grounded on the Cli options spec.md §6 names.
type Config struct {
	FfmpegPath      string
	FfprobePath     string
	TranscodeDir    string
	SegmentDuration float64
}

// Handle is the running child process a Stream holds while its
// transcoder is alive. It satisfies stream.Transcoder.
type Handle struct {
	cmd *exec.Cmd
}

func (h *Handle) Kill() error {
	if h.cmd == nil || h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}

// Driver is the Transcoder Driver: it exposes a single Spawn operation
// whose contract is "exactly one of onSuccess/onError fires, at most
// once", per spec.md §4.1.
type Driver struct {
	cfg    Config
	probe  ProbeFunc
}

// ProbeFunc extracts a container's duration in seconds; swappable in
// tests so they don't need a real ffprobe binary on PATH.
type ProbeFunc func(path string) (float64, error)

func NewDriver(cfg Config) *Driver {
	return &Driver{cfg: cfg, probe: NewFfprobe(cfg.FfprobePath).Probe}
}

// NewDriverWithProbe is used by tests to inject a fake probe.
func NewDriverWithProbe(cfg Config, probe ProbeFunc) *Driver {
	return &Driver{cfg: cfg, probe: probe}
}

// Spawn implements spec.md §4.1's protocol: probe, synthesize the
// manifest, launch the child, and observe it. onSuccess/onError are
// invoked through a sync.Once latch so a caller never sees both, and
// never sees either more than once, even if the child emits a
// start-then-error sequence. onExit, if non-nil, fires once after a
// successfully started child exits: err is nil on natural end-of-stream
// and non-nil on a runtime crash, letting the caller tell the two apart
// per spec.md §4.1 step 4.
func (d *Driver) Spawn(identifier, sourceURL string, seekStartSegment int, onSuccess func(manifest string, handle *Handle), onError func(err error), onExit func(err error)) {
	var once sync.Once
	succeed := func(manifest string, h *Handle) {
		once.Do(func() { onSuccess(manifest, h) })
	}
	fail := func(err error) {
		once.Do(func() { onError(err) })
	}

	duration, err := d.probe(sourceURL)
	if err != nil {
		fail(fmt.Errorf("probing %s: %w", log.RedactURL(sourceURL), err))
		return
	}

	manifest := playlist.Synthesize(duration, identifier, d.cfg.SegmentDuration)
	masterPath := filepath.Join(d.cfg.TranscodeDir, identifier+"_master.m3u8")
	if err := writeFile(masterPath, manifest); err != nil {
		fail(fmt.Errorf("writing master manifest: %w", err))
		return
	}

	args := BuildArgs(d.cfg, identifier, sourceURL, seekStartSegment)
	cmd := exec.Command(d.cfg.FfmpegPath, args...)
	if err := subprocess.LogOutputs(cmd); err != nil {
		fail(fmt.Errorf("wiring transcoder output: %w", err))
		return
	}

	if err := cmd.Start(); err != nil {
		fail(fmt.Errorf("starting transcoder: %w", err))
		return
	}

	handle := &Handle{cmd: cmd}
	succeed(manifest, handle)

	go func() {
		err := cmd.Wait()
		if err != nil {
			log.LogNoRequestID("transcoder exited with error", "identifier", identifier, "err", err)
		} else {
			log.LogNoRequestID("transcoder exited cleanly", "identifier", identifier)
		}
		if onExit != nil {
			onExit(err)
		}
	}()
}

// BuildArgs constructs the ffmpeg argument vector per spec.md §4.1:
// RTSP-over-UDP input, copy video / transcode audio to AAC output,
// segmented MPEG-TS muxing, and the seek/offset pair when resuming at a
// non-zero segment.
func BuildArgs(cfg Config, identifier, sourceURL string, seekStartSegment int) []string {
	args := []string{
		"-rtsp_transport", "udp",
		"-fflags", "+genpts",
		"-noaccurate_seek",
		"-max_delay", "0",
		"-user_agent", "hls-gateway",
	}

	if seekStartSegment > 0 {
		offset := float64(seekStartSegment) * cfg.SegmentDuration
		args = append(args, "-ss", strconv.FormatFloat(offset, 'f', -1, 64))
	}

	args = append(args, "-i", sourceURL)

	args = append(args,
		"-c:v", "copy",
		"-c:a", "aac",
		"-f", "segment",
		"-segment_time", strconv.FormatFloat(cfg.SegmentDuration, 'f', -1, 64),
		"-segment_start_number", strconv.Itoa(seekStartSegment),
		"-segment_list", filepath.Join(cfg.TranscodeDir, identifier+".m3u8"),
		"-segment_list_type", "m3u8",
		"-break_non_keyframes", "1",
		"-avoid_negative_ts", "make_zero",
		"-flags", "-global_header",
		"-vsync", "0",
	)

	if seekStartSegment > 0 {
		offset := float64(seekStartSegment) * cfg.SegmentDuration
		args = append(args, "-initial_offset", strconv.FormatFloat(offset, 'f', -1, 64))
	}

	args = append(args, filepath.Join(cfg.TranscodeDir, identifier+"%d.ts"))

	return args
}
