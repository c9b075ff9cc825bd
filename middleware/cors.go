package middleware

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// AllowCORS wraps a handler so every response carries a wildcard
// Access-Control-Allow-Origin, and OPTIONS preflights are answered
// without reaching next, per spec.md §6.
func AllowCORS() func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		handler := func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Headers", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")

			if r.Method == http.MethodOptions {
				w.Header().Set("content-length", "0")
				w.WriteHeader(http.StatusOK)
				return
			}

			next(w, r, ps)
		}
		return handler
	}
}
