package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

func TestAllowCORSSetsWildcardOrigin(t *testing.T) {
	called := false
	handler := AllowCORS()(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		called = true
	})

	req := httptest.NewRequest(http.MethodGet, "/watch.m3u8", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()

	handler(rec, req, nil)

	require.True(t, called)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAllowCORSAnswersOptionsWithoutCallingNext(t *testing.T) {
	called := false
	handler := AllowCORS()(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodOptions, "/watch.m3u8", nil), nil)

	require.False(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
