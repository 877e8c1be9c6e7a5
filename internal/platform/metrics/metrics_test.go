package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/solarops/solarops/internal/platform/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestInstrument_UsesRoutePattern(t *testing.T) {
	m := metrics.New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := m.Instrument(mux)

	for _, id := range []string{"L1", "L2"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/leads/"+id, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}

	body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="GET /api/v1/leads/{id}",status="404"} 2`)
	assert.NotContains(t, body, "L1")
	assert.Contains(t, body, "http_in_flight_requests 0")
}

func TestInstrument_NestedMuxReportsInnermostPattern(t *testing.T) {
	m := metrics.New()

	inner := http.NewServeMux()
	inner.HandleFunc("GET /api/v1/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	// The context copy mimics the auth middleware between the two muxes.
	protected := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.Route(inner).ServeHTTP(w, r.WithContext(r.Context()))
	})

	outer := http.NewServeMux()
	outer.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {})
	outer.Handle("/", protected)
	handler := m.Instrument(metrics.Route(outer))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/projects/PJ-001", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	body := scrape(t, m)
	assert.Contains(t, body, `http_requests_total{method="GET",path="GET /api/v1/projects/{id}",status="200"} 1`)
	assert.Contains(t, body, `http_requests_total{method="GET",path="GET /healthz",status="200"} 1`)
	assert.NotContains(t, body, `path="/"`)
}

func TestInstrument_UnmatchedPath(t *testing.T) {
	m := metrics.New()
	handler := m.Instrument(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", nil))

	assert.Contains(t, scrape(t, m), `http_requests_total{method="GET",path="unmatched",status="200"} 1`)
}

func TestRecordLogin(t *testing.T) {
	m := metrics.New()
	m.RecordLogin("success")
	m.RecordLogin("success")
	m.RecordLogin("rejected")

	body := scrape(t, m)
	assert.Contains(t, body, `solarops_login_attempts_total{result="success"} 2`)
	assert.Contains(t, body, `solarops_login_attempts_total{result="rejected"} 1`)
}

func TestSetBuildInfo(t *testing.T) {
	m := metrics.New()
	m.SetBuildInfo("1.2.3")
	assert.Contains(t, scrape(t, m), `solarops_build_info{version="1.2.3"} 1`)
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = metrics.New()
		_ = metrics.New()
	})
}
