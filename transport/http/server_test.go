package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/webpush/transport/http/metrics"
)

func TestServerMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := metrics.New()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "webpush_test_total", Help: "test"})
	reg.Registry().MustRegister(counter)
	counter.Inc()

	s := NewServer(":0", gin.New(), WithMetricsOptions(MetricsOption{
		Enabled:            true,
		EnabledGoCollector: true,
		Registry:           reg,
	}))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "webpush_test_total 1"))
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))

	// collectors register once
	assert.NotPanics(t, reg.WithGoCollectorRuntimeMetrics)
}

func TestServerHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	healthy := true

	s := NewServer(":0", gin.New(), WithHealthOptions(HealthOption{
		Enabled: true,
		Checks: map[string]HealthCheck{
			"store": func(context.Context) error {
				if healthy {
					return nil
				}
				return errors.New("down")
			},
		},
	}))

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"store":"ok"}}`, w.Body.String())

	healthy = false
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","checks":{"store":"down"}}`, w.Body.String())
}

func TestServerDisabledRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := NewServer(":0", gin.New())

	for _, path := range []string{"/metrics", "/health"} {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestServerRunAfterShutdown(t *testing.T) {
	s := NewServer("127.0.0.1:18080", http.NotFoundHandler())

	require.NoError(t, s.Shutdown(context.Background()))
	assert.NoError(t, s.Run())
}
