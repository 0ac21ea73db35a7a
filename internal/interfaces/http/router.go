package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Landscape/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Landscape/internal/interfaces/http/middleware"
)

// RouterConfig aggregates handler and middleware dependencies. Nil entries
// are skipped.
type RouterConfig struct {
	AnalyticsHandler *handlers.AnalyticsHandler
	DashboardHandler *handlers.DashboardHandler
	HealthHandler    *handlers.HealthHandler

	CORSMiddleware      *middleware.CORSMiddleware
	LoggingMiddleware   *middleware.LoggingMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware

	MetricsCollector prometheus.MetricsCollector
	Metrics          *prometheus.AppMetrics
}

// NewRouter builds the route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics(cfg.Metrics))

	if cfg.CORSMiddleware != nil {
		r.Use(cfg.CORSMiddleware.Handler)
	}
	if cfg.LoggingMiddleware != nil {
		r.Use(cfg.LoggingMiddleware.Handler)
	}
	if cfg.RateLimitMiddleware != nil {
		r.Use(cfg.RateLimitMiddleware.Handler)
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerLandscapeRoutes(api, cfg.AnalyticsHandler)
		registerDashboardRoutes(api, cfg.DashboardHandler)
	})

	return r
}

func registerLandscapeRoutes(r chi.Router, h *handlers.AnalyticsHandler) {
	if h == nil {
		return
	}
	r.Route("/analytics/landscape", func(lr chi.Router) {
		lr.Get("/classifications", h.Classifications)
		lr.Get("/convergence", h.Convergence)
		lr.Get("/competitors", h.Competitors)
		lr.Get("/innovation-trends", h.InnovationTrends)
		lr.Get("/top-inventors", h.TopInventors)
		lr.Get("/lifecycle", h.Lifecycle)
		lr.Get("/overview", h.Overview)
	})
}

func registerDashboardRoutes(r chi.Router, h *handlers.DashboardHandler) {
	if h == nil {
		return
	}
	r.Get("/analytics/summary", h.Summary)
	r.Get("/analytics/status-distribution", h.StatusDistribution)
	r.Get("/analytics/filings-trend", h.FilingsTrend)
	r.Get("/analytics/jurisdiction-breakdown", h.JurisdictionBreakdown)
	r.Get("/analytics/status-timeline", h.StatusTimeline)

	r.Route("/dashboard", func(dr chi.Router) {
		dr.Get("/recent-activity", h.RecentActivity)
		dr.Get("/upcoming-deadlines", h.UpcomingDeadlines)
		dr.Get("/assets", h.Assets)
	})
}

//Personal.AI order the ending
