package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service exports.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Analytics
	AnalyticsComputeTotal    CounterVec
	AnalyticsComputeDuration HistogramVec
	AnalyticsResultSize      HistogramVec
	CorpusSize               GaugeVec
	CorpusLoadDuration       HistogramVec

	// Cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	CacheErrorsTotal CounterVec

	// Sync / messaging
	EventsConsumedTotal  CounterVec
	EventProcessDuration HistogramVec
	EventsPublishedTotal CounterVec
	AssetsUpsertedTotal  CounterVec

	// Scheduled jobs
	JobRunsTotal   CounterVec
	JobDuration    HistogramVec
	JobLastSuccess GaugeVec

	ErrorsTotal CounterVec
}

var (
	DefaultHTTPDurationBuckets    = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultComputeDurationBuckets = []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5}
	DefaultResultSizeBuckets      = []float64{0, 1, 5, 10, 25, 50, 100, 500}
	DefaultJobDurationBuckets     = []float64{.1, .5, 1, 5, 10, 30, 60, 300}
)

// NewAppMetrics registers all metrics on collector. The Record helpers are
// no-ops on a nil *AppMetrics.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.AnalyticsComputeTotal = collector.RegisterCounter("analytics_compute_total", "Analytics computations", "operation", "status")
	m.AnalyticsComputeDuration = collector.RegisterHistogram("analytics_compute_duration_seconds", "Analytics computation duration", DefaultComputeDurationBuckets, "operation")
	m.AnalyticsResultSize = collector.RegisterHistogram("analytics_result_size", "Number of rows returned by an analytics operation", DefaultResultSizeBuckets, "operation")
	m.CorpusSize = collector.RegisterGauge("corpus_assets", "Assets in the most recently loaded corpus snapshot")
	m.CorpusLoadDuration = collector.RegisterHistogram("corpus_load_duration_seconds", "Corpus snapshot load duration", DefaultHTTPDurationBuckets)

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Result cache hits", "operation")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Result cache misses", "operation")
	m.CacheErrorsTotal = collector.RegisterCounter("cache_errors_total", "Result cache errors", "operation")

	m.EventsConsumedTotal = collector.RegisterCounter("events_consumed_total", "Events consumed", "topic", "status")
	m.EventProcessDuration = collector.RegisterHistogram("event_process_duration_seconds", "Event handling duration", DefaultHTTPDurationBuckets, "topic")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Events published", "topic", "status")
	m.AssetsUpsertedTotal = collector.RegisterCounter("assets_upserted_total", "Assets written by the sync path", "source")

	m.JobRunsTotal = collector.RegisterCounter("job_runs_total", "Scheduled job runs", "job", "status")
	m.JobDuration = collector.RegisterHistogram("job_duration_seconds", "Scheduled job duration", DefaultJobDurationBuckets, "job")
	m.JobLastSuccess = collector.RegisterGauge("job_last_success_timestamp_seconds", "Unix time of the last successful run", "job")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPRequest records one finished request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordCompute records one analytics computation and its result size.
func (m *AppMetrics) RecordCompute(operation string, d time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	m.AnalyticsComputeTotal.WithLabelValues(operation, statusLabel(err)).Inc()
	m.AnalyticsComputeDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err == nil {
		m.AnalyticsResultSize.WithLabelValues(operation).Observe(float64(rows))
	}
}

// RecordCorpusLoad records a corpus snapshot load.
func (m *AppMetrics) RecordCorpusLoad(size int, d time.Duration) {
	if m == nil {
		return
	}
	m.CorpusSize.WithLabelValues().Set(float64(size))
	m.CorpusLoadDuration.WithLabelValues().Observe(d.Seconds())
}

// RecordCacheResult records a cache lookup outcome.
func (m *AppMetrics) RecordCacheResult(operation string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.WithLabelValues(operation).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(operation).Inc()
}

// RecordCacheError counts a failed cache call.
func (m *AppMetrics) RecordCacheError(operation string) {
	if m == nil {
		return
	}
	m.CacheErrorsTotal.WithLabelValues(operation).Inc()
}

// RecordEventConsumed records the handling of one inbound event.
func (m *AppMetrics) RecordEventConsumed(topic string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.EventsConsumedTotal.WithLabelValues(topic, statusLabel(err)).Inc()
	m.EventProcessDuration.WithLabelValues(topic).Observe(d.Seconds())
}

// RecordEventPublished records one outbound event.
func (m *AppMetrics) RecordEventPublished(topic string, err error) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(topic, statusLabel(err)).Inc()
}

// RecordAssetUpsert counts an asset written by the sync path.
func (m *AppMetrics) RecordAssetUpsert(source string) {
	if m == nil {
		return
	}
	if source == "" {
		source = "unknown"
	}
	m.AssetsUpsertedTotal.WithLabelValues(source).Inc()
}

// RecordJobRun records a scheduled job execution finishing at now.
func (m *AppMetrics) RecordJobRun(job string, d time.Duration, err error, now time.Time) {
	if m == nil {
		return
	}
	m.JobRunsTotal.WithLabelValues(job, statusLabel(err)).Inc()
	m.JobDuration.WithLabelValues(job).Observe(d.Seconds())
	if err == nil {
		m.JobLastSuccess.WithLabelValues(job).Set(float64(now.Unix()))
	}
}

// RecordError counts an error by component and error code.
func (m *AppMetrics) RecordError(component, code string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
