package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Landscape/internal/application/analytics"
	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Landscape/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Landscape/internal/interfaces/http/middleware"
	"github.com/turtacn/KeyIP-Landscape/internal/testutil"
)

type routerFixture struct {
	handler   http.Handler
	collector prometheus.MetricsCollector
}

func newRouterFixture(t *testing.T, mutate func(*RouterConfig)) routerFixture {
	t.Helper()
	repo := testutil.NewStubAssetRepo(&asset.Asset{
		ID: 1, Type: "PATENT", Title: "Edge inference", ClassificationCodes: "G06N", Assignee: "Acme", Inventor: "Lee",
		FilingDate: testutil.Date(2023, 3, 1), Status: "ACTIVE", Jurisdiction: "US",
	})

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "test", Subsystem: "router"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)
	log := logging.NewNopLogger()

	svc := analytics.NewService(repo, nil, nil, metrics, log, analytics.ServiceConfig{DefaultTopN: 10, MaxTopN: 100})
	cfg := RouterConfig{
		AnalyticsHandler: handlers.NewAnalyticsHandler(svc, 100, log, metrics),
		DashboardHandler: handlers.NewDashboardHandler(svc, log, metrics),
		HealthHandler:    handlers.NewHealthHandler("test"),
		MetricsCollector: collector,
		Metrics:          metrics,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return routerFixture{handler: NewRouter(cfg), collector: collector}
}

func (f routerFixture) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestNewRouter_AnalyticsRoutesRegistered(t *testing.T) {
	f := newRouterFixture(t, nil)
	for _, p := range []string{
		"/api/v1/analytics/landscape/classifications",
		"/api/v1/analytics/landscape/convergence",
		"/api/v1/analytics/landscape/competitors",
		"/api/v1/analytics/landscape/innovation-trends",
		"/api/v1/analytics/landscape/top-inventors",
		"/api/v1/analytics/landscape/lifecycle",
		"/api/v1/analytics/landscape/overview",
		"/api/v1/analytics/summary",
		"/api/v1/analytics/status-distribution",
		"/api/v1/analytics/filings-trend",
		"/api/v1/analytics/jurisdiction-breakdown",
		"/api/v1/analytics/status-timeline",
		"/api/v1/dashboard/recent-activity",
		"/api/v1/dashboard/upcoming-deadlines",
		"/api/v1/dashboard/assets?category=edge",
	} {
		w := f.get(p)
		assert.Equal(t, http.StatusOK, w.Code, p)
	}
}

func TestNewRouter_UnknownRouteAndMethod(t *testing.T) {
	f := newRouterFixture(t, nil)
	assert.Equal(t, http.StatusNotFound, f.get("/api/v1/patents").Code)

	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/analytics/summary", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestNewRouter_ProbesAndMetrics(t *testing.T) {
	f := newRouterFixture(t, nil)

	assert.Equal(t, http.StatusOK, f.get("/healthz").Code)
	assert.Equal(t, http.StatusOK, f.get("/readyz").Code)

	f.get("/api/v1/analytics/landscape/convergence?topN=3")
	out := f.get("/metrics").Body.String()
	assert.Contains(t, out, `test_router_http_requests_total{method="GET",path="/api/v1/analytics/landscape/convergence",status_code="200"} 1`)
	assert.Contains(t, out, `test_router_analytics_compute_total{operation="convergence",status="success"} 1`)
}

func TestNewRouter_ReadinessFailsWithDependency(t *testing.T) {
	f := newRouterFixture(t, func(c *RouterConfig) {
		c.HealthHandler = handlers.NewHealthHandler("test",
			handlers.NamedCheck("postgres", func(context.Context) error { return nil }),
			handlers.NamedCheck("redis", func(context.Context) error { return errors.New("connection refused") }),
		)
	})

	w := f.get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"not_ready"`)
	assert.Contains(t, w.Body.String(), "connection refused")
	assert.Equal(t, http.StatusOK, f.get("/healthz").Code)
}

func TestNewRouter_RequestIDOnErrors(t *testing.T) {
	f := newRouterFixture(t, nil)
	w := f.get("/api/v1/analytics/landscape/competitors?topN=101")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"COMMON_010"`)
	assert.Contains(t, w.Body.String(), `"requestId":"`)
}

func TestNewRouter_OptionalMiddleware(t *testing.T) {
	f := newRouterFixture(t, func(c *RouterConfig) {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = []string{"https://dash.example.com"}
		c.CORSMiddleware = middleware.NewCORSMiddleware(cors)
		c.LoggingMiddleware = middleware.NewLoggingMiddleware(logging.NewNopLogger(), middleware.DefaultLoggingConfig())

		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = 0.001
		rl.Burst = 1
		c.RateLimitMiddleware = middleware.NewRateLimitMiddleware(rl)
	})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil)
	r.Header.Set("Origin", "https://dash.example.com")
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	assert.Equal(t, http.StatusTooManyRequests, f.get("/api/v1/analytics/summary").Code)
	assert.Equal(t, http.StatusOK, f.get("/healthz").Code)
}

func TestNewRouter_NilHandlersNoPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		h := NewRouter(RouterConfig{})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/summary", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

//Personal.AI order the ending
