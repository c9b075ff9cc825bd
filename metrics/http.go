package metrics

import (
	"fmt"
	"net/http"

	"github.com/liveflow/hls-gateway/config"
	"github.com/liveflow/hls-gateway/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func ListenAndServe(promPort int) error {
	listen := fmt.Sprintf("0.0.0.0:%d", promPort)
	http.Handle("/metrics", promhttp.Handler())

	Metrics.Version.WithLabelValues("hls-gateway", config.Version).Inc()

	log.LogNoRequestID(
		"Starting Prometheus metrics",
		"version", config.Version,
		"host", listen,
	)
	return http.ListenAndServe(listen, nil)
}
