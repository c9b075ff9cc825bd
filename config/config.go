package config

import "time"

var Version string

// Used so that we can generate fixed timestamps in tests.
var Clock TimestampGenerator = RealTimestampGenerator{}

// Default segment length, in seconds, for the -hls-segment-duration flag.
const DefaultSegmentDurationSecs = 5

// Nominal upper bound on segment duration, in seconds. Nothing checks
// -hls-segment-duration against it.
const MaxSegmentDurationSecs = 30

// Conservative default for how many RTSP sources can be transcoding at once.
const DefaultMaxConcurrentStreams = 3

// How long a Stream may sit with no polling activity before the Supervisor
// tears it down.
const DefaultSelfDestructTimeout = 60 * time.Second

// Floor applied to (2 * segment duration) when computing a Poller's
// max_attempts, so short segment durations don't starve the retry budget.
const MinPollerAttempts = 10
