package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/KeyIP-Landscape/internal/application/analytics"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
)

// AnalyticsHandler serves the landscape aggregates under
// /api/v1/analytics/landscape.
type AnalyticsHandler struct {
	svc     analytics.Service
	maxTopN int
	errs    errorWriter
}

// NewAnalyticsHandler builds the handler. maxTopN <= 0 leaves the upper bound
// to the service.
func NewAnalyticsHandler(svc analytics.Service, maxTopN int, logger logging.Logger, metrics *prometheus.AppMetrics) *AnalyticsHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AnalyticsHandler{
		svc:     svc,
		maxTopN: maxTopN,
		errs:    errorWriter{logger: logger.Named("http"), metrics: metrics},
	}
}

func serveLandscape[T any](h *AnalyticsHandler, w http.ResponseWriter, r *http.Request, fn func(context.Context, analytics.Query) (T, error)) {
	var p landscapeParams
	if err := bindQuery(r, &p); err != nil {
		h.errs.write(w, r, err)
		return
	}
	if err := checkTopN(p, h.maxTopN); err != nil {
		h.errs.write(w, r, err)
		return
	}
	out, err := fn(r.Context(), p.query())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, out)
}

// Classifications handles GET /analytics/landscape/classifications.
func (h *AnalyticsHandler) Classifications(w http.ResponseWriter, r *http.Request) {
	serveLandscape(h, w, r, h.svc.ClassificationTrends)
}

// Convergence handles GET /analytics/landscape/convergence.
func (h *AnalyticsHandler) Convergence(w http.ResponseWriter, r *http.Request) {
	serveLandscape(h, w, r, h.svc.Convergence)
}

// Competitors handles GET /analytics/landscape/competitors.
func (h *AnalyticsHandler) Competitors(w http.ResponseWriter, r *http.Request) {
	serveLandscape(h, w, r, h.svc.Competitors)
}

// InnovationTrends handles GET /analytics/landscape/innovation-trends.
func (h *AnalyticsHandler) InnovationTrends(w http.ResponseWriter, r *http.Request) {
	serveLandscape(h, w, r, h.svc.InnovationTrends)
}

// TopInventors handles GET /analytics/landscape/top-inventors.
func (h *AnalyticsHandler) TopInventors(w http.ResponseWriter, r *http.Request) {
	serveLandscape(h, w, r, h.svc.TopInventors)
}

// Lifecycle handles GET /analytics/landscape/lifecycle.
func (h *AnalyticsHandler) Lifecycle(w http.ResponseWriter, r *http.Request) {
	serveLandscape(h, w, r, h.svc.Lifecycle)
}

// Overview handles GET /analytics/landscape/overview.
func (h *AnalyticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	serveLandscape(h, w, r, h.svc.Overview)
}

//Personal.AI order the ending
