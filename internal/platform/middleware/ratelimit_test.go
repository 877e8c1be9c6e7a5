package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solarops/solarops/internal/platform/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fire(h http.Handler, remoteAddr, xff string) int {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = remoteAddr
	if xff != "" {
		req.Header.Set("X-Forwarded-For", xff)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_PerIP(t *testing.T) {
	// A negligible refill rate makes the burst the whole budget.
	handler := middleware.RateLimit(0.001, 2)(okHandler())

	assert.Equal(t, http.StatusOK, fire(handler, "10.0.0.1:1111", ""))
	assert.Equal(t, http.StatusOK, fire(handler, "10.0.0.1:2222", ""))
	assert.Equal(t, http.StatusTooManyRequests, fire(handler, "10.0.0.1:3333", ""))

	// Another client has its own bucket.
	assert.Equal(t, http.StatusOK, fire(handler, "10.0.0.2:1111", ""))
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	handler := middleware.RateLimit(0.001, 1)(okHandler())

	assert.Equal(t, http.StatusOK, fire(handler, "198.51.100.4:5000", "203.0.113.1"))
	// A fresh header value does not buy a fresh bucket.
	assert.Equal(t, http.StatusTooManyRequests, fire(handler, "198.51.100.4:5001", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, fire(handler, "198.51.100.4:5002", ""))
}

func TestRateLimit_TrustedProxy(t *testing.T) {
	trusted, err := middleware.ParseTrustedProxies([]string{"10.0.0.0/8", "192.168.1.1"})
	require.NoError(t, err)
	handler := middleware.RateLimit(0.001, 1, middleware.WithTrustedProxies(trusted))(okHandler())

	assert.Equal(t, http.StatusOK, fire(handler, "192.168.1.1:80", "203.0.113.7, 10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, fire(handler, "10.1.2.3:80", "203.0.113.7"))
	assert.Equal(t, http.StatusOK, fire(handler, "192.168.1.1:80", "203.0.113.8"))

	// Entries left of the first untrusted hop are client controlled.
	assert.Equal(t, http.StatusTooManyRequests, fire(handler, "192.168.1.1:80", "1.2.3.4, 203.0.113.8"))
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := middleware.ParseTrustedProxies([]string{"10.0.0.0/8", " 127.0.0.1 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "10.0.0.0/8", got[0].String())
	assert.Equal(t, "127.0.0.1/32", got[1].String())
	assert.Equal(t, "::1/128", got[2].String())

	_, err = middleware.ParseTrustedProxies([]string{"not-an-ip"})
	assert.Error(t, err)
}

func TestRateLimit_ResponseBody(t *testing.T) {
	handler := middleware.RateLimit(0.5, 1)(okHandler())
	fire(handler, "10.0.0.9:1", "")

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "10.0.0.9:1"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}
