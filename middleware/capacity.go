package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/liveflow/hls-gateway/errors"
	"github.com/liveflow/hls-gateway/metrics"
)

// registry is the subset of *stream.Registry admission control needs.
type registry interface {
	Len() int
}

// HasCapacity rejects /watch.m3u8 once the registry holds
// max_concurrent_streams Streams, per spec.md §5. strictHTTPStatus
// selects between the spec's literal 500 and the 503 spec.md §9
// suggests as more accurate.
func HasCapacity(reg registry, maxConcurrentStreams int, strictHTTPStatus bool, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if reg.Len() >= maxConcurrentStreams {
			metrics.Metrics.AdmissionRejectedTotal.Inc()
			if strictHTTPStatus {
				errors.WriteHTTPServiceUnavailable(w, "max concurrent streams reached", nil)
			} else {
				errors.WriteHTTPInternalServerError(w, "max concurrent streams reached", nil)
			}
			return
		}

		next(w, r, ps)
	}
}
