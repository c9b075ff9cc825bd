package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GatewayMetrics is the full set of Prometheus series the gateway exposes,
// named per SPEC_FULL.md's supplemented /metrics endpoint.
type GatewayMetrics struct {
	Version                 *prometheus.CounterVec
	ActiveStreams           prometheus.Gauge
	SpawnTotal              *prometheus.CounterVec
	RespawnTotal            prometheus.Counter
	PollerAttempts          prometheus.Histogram
	AdmissionRejectedTotal  prometheus.Counter
	SelfDestructTotal       prometheus.Counter
	SegmentRequestDuration  *prometheus.HistogramVec
}

func NewMetrics() *GatewayMetrics {
	m := &GatewayMetrics{
		Version: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hls_gateway_version",
			Help: "Current version that's running. Incremented once on app startup.",
		}, []string{"app", "version"}),

		ActiveStreams: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "hls_gateway_active_streams",
			Help: "Number of Streams currently held in the registry",
		}),

		SpawnTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "hls_gateway_spawn_total",
			Help: "Number of transcoder spawn attempts, by outcome",
		}, []string{"outcome"}),

		RespawnTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hls_gateway_respawn_total",
			Help: "Number of times the Poller restarted a transcoder mid-stream",
		}),

		PollerAttempts: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "hls_gateway_poller_attempts",
			Help:    "Number of poll attempts a segment request took before resolving",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 34},
		}),

		AdmissionRejectedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hls_gateway_admission_rejected_total",
			Help: "Number of /watch.m3u8 requests rejected because the registry was full",
		}),

		SelfDestructTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "hls_gateway_self_destruct_total",
			Help: "Number of Streams torn down by the inactivity timer",
		}),

		SegmentRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hls_gateway_segment_request_duration_seconds",
			Help:    "Time taken to resolve a /segment.ts request, including poll waits",
			Buckets: []float64{.1, .5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"success"}),
	}

	return m
}

var Metrics = NewMetrics()
