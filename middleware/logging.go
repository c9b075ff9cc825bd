package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/liveflow/hls-gateway/errors"
	"github.com/liveflow/hls-gateway/log"
)

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}

	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

// LogRequest assigns a correlation ID to the request (distinct from any
// Stream identifier), logs its outcome, and recovers from handler panics
// so one bad request can't take the listener down.
func LogRequest() func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		fn := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)
			requestID := uuid.NewString()
			log.AddContext(requestID, "remote", r.RemoteAddr, "method", r.Method, "uri", r.URL.RequestURI())

			defer func() {
				if r := recover(); r != nil {
					errors.WriteHTTPInternalServerError(wrapped, "Internal Server Error", nil)
					log.LogError(requestID, "panic handling request", fmt.Errorf("%v", r), "trace", string(debug.Stack()))
				}
			}()

			next(wrapped, r, ps)
			log.Log(requestID, "request complete", "duration", time.Since(start), "status", wrapped.status)
		}

		return fn
	}
}
