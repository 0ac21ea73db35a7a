package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppMetrics_AllRegistered(t *testing.T) {
	m := NewAppMetrics(newTestCollector(t))
	require.NotNil(t, m)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.AnalyticsComputeDuration)
	assert.NotNil(t, m.CorpusSize)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.EventsConsumedTotal)
	assert.NotNil(t, m.JobLastSuccess)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestAppMetrics_RecordHelpers(t *testing.T) {
	c := newTestCollector(t)
	m := NewAppMetrics(c)
	now := time.Unix(1700000000, 0)

	m.RecordHTTPRequest("GET", "/api/v1/analytics/landscape/convergence", 200, 15*time.Millisecond)
	m.RecordCompute("convergence", 2*time.Millisecond, 7, nil)
	m.RecordCompute("competitors", time.Millisecond, 0, errors.New("boom"))
	m.RecordCorpusLoad(1200, 40*time.Millisecond)
	m.RecordCacheResult("convergence", true)
	m.RecordCacheResult("convergence", false)
	m.RecordCacheError("convergence")
	m.RecordEventConsumed("ipi.asset.synced", time.Millisecond, nil)
	m.RecordEventPublished("ipi.analytics.refreshed", nil)
	m.RecordAssetUpsert("")
	m.RecordJobRun("refresh", time.Second, nil, now)
	m.RecordError("http", "COMMON_012")

	out := scrapeMetrics(t, c)
	for _, want := range []string{
		`test_unit_http_requests_total{method="GET",path="/api/v1/analytics/landscape/convergence",status_code="200"} 1`,
		`test_unit_analytics_compute_total{operation="convergence",status="success"} 1`,
		`test_unit_analytics_compute_total{operation="competitors",status="error"} 1`,
		`test_unit_analytics_result_size_count{operation="convergence"} 1`,
		`test_unit_corpus_assets 1200`,
		`test_unit_cache_hits_total{operation="convergence"} 1`,
		`test_unit_cache_misses_total{operation="convergence"} 1`,
		`test_unit_cache_errors_total{operation="convergence"} 1`,
		`test_unit_events_consumed_total{status="success",topic="ipi.asset.synced"} 1`,
		`test_unit_events_published_total{status="success",topic="ipi.analytics.refreshed"} 1`,
		`test_unit_assets_upserted_total{source="unknown"} 1`,
		`test_unit_job_runs_total{job="refresh",status="success"} 1`,
		`test_unit_job_last_success_timestamp_seconds{job="refresh"} 1.7e+09`,
		`test_unit_errors_total{code="COMMON_012",component="http"} 1`,
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, `test_unit_analytics_result_size_count{operation="competitors"}`)
}

func TestAppMetrics_NilReceiver(t *testing.T) {
	var m *AppMetrics
	assert.NotPanics(t, func() {
		m.RecordCompute("x", time.Millisecond, 1, nil)
		m.RecordCacheResult("x", true)
		m.RecordJobRun("x", time.Second, nil, time.Now())
	})
}

//Personal.AI order the ending
