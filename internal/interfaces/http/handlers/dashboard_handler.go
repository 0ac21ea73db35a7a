package handlers

import (
	"context"
	"net/http"

	"github.com/turtacn/KeyIP-Landscape/internal/application/analytics"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
)

// DashboardHandler serves the portfolio dashboard: the filtered summaries
// under /analytics and the lists under /dashboard.
type DashboardHandler struct {
	svc  analytics.Service
	errs errorWriter
}

// NewDashboardHandler builds the handler.
func NewDashboardHandler(svc analytics.Service, logger logging.Logger, metrics *prometheus.AppMetrics) *DashboardHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &DashboardHandler{svc: svc, errs: errorWriter{logger: logger.Named("http"), metrics: metrics}}
}

func serveFiltered[T any](h *DashboardHandler, w http.ResponseWriter, r *http.Request, fn func(context.Context, analytics.Filter) (T, error)) {
	var p filterParams
	if err := bindQuery(r, &p); err != nil {
		h.errs.write(w, r, err)
		return
	}
	out, err := fn(r.Context(), p.filter())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, out)
}

// Summary handles GET /analytics/summary.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h, w, r, h.svc.Summary)
}

// StatusDistribution handles GET /analytics/status-distribution.
func (h *DashboardHandler) StatusDistribution(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h, w, r, h.svc.StatusDistribution)
}

// FilingsTrend handles GET /analytics/filings-trend.
func (h *DashboardHandler) FilingsTrend(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h, w, r, h.svc.FilingsTrend)
}

// JurisdictionBreakdown handles GET /analytics/jurisdiction-breakdown.
func (h *DashboardHandler) JurisdictionBreakdown(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h, w, r, h.svc.JurisdictionBreakdown)
}

// StatusTimeline handles GET /analytics/status-timeline.
func (h *DashboardHandler) StatusTimeline(w http.ResponseWriter, r *http.Request) {
	serveFiltered(h, w, r, h.svc.StatusTimeline)
}

// RecentActivity handles GET /dashboard/recent-activity.
func (h *DashboardHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.RecentActivity(r.Context())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, out)
}

// UpcomingDeadlines handles GET /dashboard/upcoming-deadlines.
func (h *DashboardHandler) UpcomingDeadlines(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.UpcomingDeadlines(r.Context())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeData(w, out)
}

// Assets handles GET /dashboard/assets. The page is returned as is, since it
// already carries its own data and total.
func (h *DashboardHandler) Assets(w http.ResponseWriter, r *http.Request) {
	var p assetParams
	if err := bindQuery(r, &p); err != nil {
		h.errs.write(w, r, err)
		return
	}
	page, err := h.svc.AssetsByCategory(r.Context(), p.Category, p.filter())
	if err != nil {
		h.errs.write(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

//Personal.AI order the ending
