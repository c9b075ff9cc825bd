package config

import (
	"flag"
	"time"
)

// Cli holds every value recognized from flags, environment variables
// (GATEWAY_ prefixed) and an optional config file, layered via
// github.com/peterbourgon/ff/v3 in cmd/hls-gateway.
type Cli struct {
	ServerPort            int
	PromPort              int
	PprofPort             int
	TranscodeDir          string
	FfmpegPath            string
	FfprobePath           string
	SegmentDuration       time.Duration
	SegmentMaxGap         int
	SelfDestructDuration  time.Duration
	MaxConcurrentStreams  int
	DebugLogging          bool
	StrictHTTPStatus      bool
}

// RegisterFlags binds Cli's fields onto fs with the defaults spec.md §6
// prescribes. Kept separate from parsing so cmd/hls-gateway can layer
// ff.Parse (config file + env) on top of the same FlagSet.
func RegisterFlags(fs *flag.FlagSet, cli *Cli) {
	fs.IntVar(&cli.ServerPort, "server-port", 8000, "TCP port the gateway listens on")
	fs.IntVar(&cli.PromPort, "prom-port", 9090, "TCP port serving /metrics (0 disables)")
	fs.IntVar(&cli.PprofPort, "pprof-port", 0, "TCP port serving pprof debug endpoints (0 disables)")
	fs.StringVar(&cli.TranscodeDir, "transcode-dir", "transcoding-tmp", "working directory for manifests and segments")
	fs.StringVar(&cli.FfmpegPath, "ffmpeg-path", "ffmpeg_build/ffmpeg", "path to the ffmpeg-compatible transcoder binary")
	fs.StringVar(&cli.FfprobePath, "ffprobe-path", "ffmpeg_build/ffprobe", "path to the ffprobe-compatible probe binary")
	fs.DurationVar(&cli.SegmentDuration, "hls-segment-duration", DefaultSegmentDurationSecs*time.Second, "target segment length")
	fs.IntVar(&cli.SegmentMaxGap, "hls-segment-max-gap", 3, "minimum (requested-produced) segment gap that forces a restart")
	fs.DurationVar(&cli.SelfDestructDuration, "self-destruct-duration", DefaultSelfDestructTimeout, "idle duration before a Stream is torn down")
	fs.IntVar(&cli.MaxConcurrentStreams, "max-concurrent-streams", DefaultMaxConcurrentStreams, "admission limit on simultaneous live Streams")
	fs.BoolVar(&cli.DebugLogging, "debug-logging", false, "enable verbose logfmt output")
	fs.BoolVar(&cli.StrictHTTPStatus, "strict-http-status", false, "emit 503/400 instead of 500 for admission/validation failures")
}
