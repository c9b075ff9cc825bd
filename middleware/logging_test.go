package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

func TestLogRequestPassesThrough(t *testing.T) {
	handler := LogRequest()(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/ok", nil), nil)

	require.Equal(t, http.StatusTeapot, rec.Code)
}

func TestLogRequestRecoversFromPanic(t *testing.T) {
	handler := LogRequest()(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler(rec, httptest.NewRequest(http.MethodGet, "/ok", nil), nil)
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
