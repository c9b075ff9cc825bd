package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct{ size int }

func (f fakeRegistry) Len() int { return f.size }

func TestHasCapacityAllowsUnderLimit(t *testing.T) {
	called := false
	handler := HasCapacity(fakeRegistry{size: 2}, 3, false, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/watch.m3u8", nil), nil)

	require.True(t, called)
}

func TestHasCapacityRejectsAtLimit(t *testing.T) {
	called := false
	handler := HasCapacity(fakeRegistry{size: 3}, 3, false, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/watch.m3u8", nil), nil)

	require.False(t, called)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHasCapacityStrictStatusReturns503(t *testing.T) {
	handler := HasCapacity(fakeRegistry{size: 3}, 3, true, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/watch.m3u8", nil), nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
