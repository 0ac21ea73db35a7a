package analytics

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-Landscape/internal/config"
	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Landscape/pkg/errors"
)

// CacheKeyPrefix namespaces every cached analytics result.
const CacheKeyPrefix = "analytics:"

// Operation names used for cache keys and metrics labels.
const (
	OpClassifications   = "classifications"
	OpConvergence       = "convergence"
	OpCompetitors       = "competitors"
	OpInnovationTrends  = "innovation_trends"
	OpTopInventors      = "top_inventors"
	OpLifecycle         = "lifecycle"
	OpOverview          = "overview"
	OpSummary           = "summary"
	OpStatusDistrib     = "status_distribution"
	OpFilingsTrend      = "filings_trend"
	OpJurisdictions     = "jurisdiction_breakdown"
	OpStatusTimeline    = "status_timeline"
	OpRecentActivity    = "recent_activity"
	OpUpcomingDeadlines = "upcoming_deadlines"
	OpAssetsByCategory  = "assets_by_category"
)

// Query selects a landscape aggregate. TopN <= 0 means the configured default.
type Query struct {
	Filter Filter
	TopN   int
}

// RefreshResult reports a cache refresh.
type RefreshResult struct {
	CorpusSize  int           `json:"corpusSize"`
	Invalidated int64         `json:"invalidated"`
	Duration    time.Duration `json:"duration"`
	RefreshedAt time.Time     `json:"refreshedAt"`
}

// Service exposes the analytics engine over the live corpus.
type Service interface {
	ClassificationTrends(ctx context.Context, q Query) ([]ClassificationTrend, error)
	Convergence(ctx context.Context, q Query) ([]ConvergencePair, error)
	Competitors(ctx context.Context, q Query) ([]CompetitorProfile, error)
	InnovationTrends(ctx context.Context, q Query) ([]InnovationTrend, error)
	TopInventors(ctx context.Context, q Query) ([]InventorRank, error)
	Lifecycle(ctx context.Context, q Query) (*LifecycleStats, error)
	Overview(ctx context.Context, q Query) (*LandscapeOverview, error)

	Summary(ctx context.Context, f Filter) (*DashboardSummary, error)
	StatusDistribution(ctx context.Context, f Filter) ([]NameValue, error)
	FilingsTrend(ctx context.Context, f Filter) ([]MonthlyFilings, error)
	JurisdictionBreakdown(ctx context.Context, f Filter) ([]JurisdictionCount, error)
	StatusTimeline(ctx context.Context, f Filter) ([]QuarterStatus, error)
	RecentActivity(ctx context.Context) ([]ActivityItem, error)
	UpcomingDeadlines(ctx context.Context) ([]DeadlineItem, error)
	AssetsByCategory(ctx context.Context, category string, f Filter) (*AssetPage, error)

	// Refresh drops every cached result and recomputes the unfiltered
	// overview and summary.
	Refresh(ctx context.Context) (*RefreshResult, error)
	// Invalidate drops every cached result.
	Invalidate(ctx context.Context) (int64, error)
}

// ServiceConfig tunes the service.
type ServiceConfig struct {
	DefaultTopN  int
	MaxTopN      int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ServiceConfigFrom maps the analytics section of the application config.
func ServiceConfigFrom(c config.AnalyticsConfig) ServiceConfig {
	return ServiceConfig{
		DefaultTopN:  c.DefaultTopN,
		MaxTopN:      c.MaxTopN,
		CacheEnabled: c.CacheEnabled,
		CacheTTL:     c.CacheTTL,
	}
}

// EngineFrom builds an Engine with the term, horizon and list limits of c.
func EngineFrom(c config.AnalyticsConfig, opts ...EngineOption) *Engine {
	base := []EngineOption{
		WithPatentTerm(c.PatentTermYears),
		WithDeadlineHorizon(c.DeadlineHorizonMonths),
		WithListLimits(c.RecentActivityLimit, c.CategorySearchLimit),
	}
	return NewEngine(append(base, opts...)...)
}

type serviceImpl struct {
	repo    asset.Repository
	engine  *Engine
	cache   redis.Cache
	metrics *prometheus.AppMetrics
	logger  logging.Logger
	cfg     ServiceConfig
}

// NewService wires the service. cache and metrics may be nil.
func NewService(repo asset.Repository, engine *Engine, cache redis.Cache, metrics *prometheus.AppMetrics, logger logging.Logger, cfg ServiceConfig) Service {
	if engine == nil {
		engine = NewEngine()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = DefaultTopN
	}
	if cfg.MaxTopN < cfg.DefaultTopN {
		cfg.MaxTopN = cfg.DefaultTopN
	}
	return &serviceImpl{
		repo:    repo,
		engine:  engine,
		cache:   cache,
		metrics: metrics,
		logger:  logger.Named("analytics"),
		cfg:     cfg,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Plumbing
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) topN(n int) (int, error) {
	if n <= 0 {
		return s.cfg.DefaultTopN, nil
	}
	if n > s.cfg.MaxTopN {
		return 0, errors.New(errors.ErrCodeInvalidTopN,
			fmt.Sprintf("topN must be between 1 and %d", s.cfg.MaxTopN))
	}
	return n, nil
}

func (s *serviceImpl) loadCorpus(ctx context.Context) ([]*asset.Asset, error) {
	start := time.Now()
	assets, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("corpus load failed", logging.Err(err))
		s.metrics.RecordError("analytics", string(errors.GetCode(err)))
		if errors.GetCode(err) == errors.CodeUnknown {
			return nil, errors.Wrap(err, errors.ErrCodeCorpusLoadFailed, "failed to load asset corpus")
		}
		return nil, err
	}
	s.metrics.RecordCorpusLoad(len(assets), time.Since(start))
	return assets, nil
}

func (s *serviceImpl) filtered(ctx context.Context, f Filter) ([]*asset.Asset, error) {
	assets, err := s.loadCorpus(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Filter(assets, f), nil
}

func cacheKey(op string, f Filter, topN int) string {
	return fmt.Sprintf("%s%s:%s:n=%d", CacheKeyPrefix, op, f.CacheKey(), topN)
}

// cached serves op from the cache, computing and storing it on a miss. A
// failing cache is logged and bypassed; it never fails the request.
func cached[T any](ctx context.Context, s *serviceImpl, op, key string, compute func(context.Context) (T, error)) (T, error) {
	timed := func(ctx context.Context) (T, error) {
		start := time.Now()
		v, err := compute(ctx)
		s.metrics.RecordCompute(op, time.Since(start), resultSize(v), err)
		return v, err
	}

	if s.cache == nil || !s.cfg.CacheEnabled {
		return timed(ctx)
	}

	bypass := func(err error) (T, error) {
		s.logger.Warn("analytics cache unavailable, computing directly",
			logging.String("operation", op), logging.Err(err))
		s.metrics.RecordCacheError(op)
		return timed(ctx)
	}

	// Only a direct read counts as a hit. Callers that wait on another
	// caller's load below are misses.
	var out T
	switch err := s.cache.Get(ctx, key, &out); {
	case err == nil:
		s.metrics.RecordCacheResult(op, true)
		return out, nil
	case isCacheFailure(err):
		return bypass(err)
	}
	s.metrics.RecordCacheResult(op, false)

	loaded := false
	err := s.cache.GetOrSet(ctx, key, &out, s.cfg.CacheTTL, func(ctx context.Context) (interface{}, error) {
		loaded = true
		return timed(ctx)
	})
	switch {
	case err == nil:
		return out, nil
	case loaded && !isCacheFailure(err):
		return out, err
	case isCacheFailure(err) || err == redis.ErrCacheMiss:
		return bypass(err)
	default:
		return out, err
	}
}

func isCacheFailure(err error) bool {
	return errors.IsCode(err, errors.ErrCodeCacheError) || errors.IsCode(err, errors.ErrCodeSerialization)
}

func resultSize(v any) int {
	switch r := v.(type) {
	case []ClassificationTrend:
		return len(r)
	case []ConvergencePair:
		return len(r)
	case []CompetitorProfile:
		return len(r)
	case []InnovationTrend:
		return len(r)
	case []InventorRank:
		return len(r)
	case []NameValue:
		return len(r)
	case []MonthlyFilings:
		return len(r)
	case []JurisdictionCount:
		return len(r)
	case []QuarterStatus:
		return len(r)
	case []ActivityItem:
		return len(r)
	case []DeadlineItem:
		return len(r)
	case *AssetPage:
		if r != nil {
			return r.Total
		}
	case *LandscapeOverview:
		if r != nil {
			return r.CorpusSize
		}
	}
	return 1
}

// landscape runs one landscape aggregate through the cache.
func landscape[T any](ctx context.Context, s *serviceImpl, op string, q Query, agg func(assets []*asset.Asset, topN int) T) (T, error) {
	var zero T
	n, err := s.topN(q.TopN)
	if err != nil {
		return zero, err
	}
	return cached(ctx, s, op, cacheKey(op, q.Filter, n), func(ctx context.Context) (T, error) {
		assets, err := s.filtered(ctx, q.Filter)
		if err != nil {
			return zero, err
		}
		return agg(assets, n), nil
	})
}

// dashboard runs one filter-only aggregate through the cache.
func dashboard[T any](ctx context.Context, s *serviceImpl, op string, f Filter, agg func(assets []*asset.Asset) T) (T, error) {
	return cached(ctx, s, op, cacheKey(op, f, 0), func(ctx context.Context) (T, error) {
		assets, err := s.filtered(ctx, f)
		if err != nil {
			var zero T
			return zero, err
		}
		return agg(assets), nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Landscape
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) ClassificationTrends(ctx context.Context, q Query) ([]ClassificationTrend, error) {
	return landscape(ctx, s, OpClassifications, q, s.engine.ClassificationTrends)
}

func (s *serviceImpl) Convergence(ctx context.Context, q Query) ([]ConvergencePair, error) {
	return landscape(ctx, s, OpConvergence, q, s.engine.Convergence)
}

func (s *serviceImpl) Competitors(ctx context.Context, q Query) ([]CompetitorProfile, error) {
	return landscape(ctx, s, OpCompetitors, q, s.engine.Competitors)
}

func (s *serviceImpl) InnovationTrends(ctx context.Context, q Query) ([]InnovationTrend, error) {
	return landscape(ctx, s, OpInnovationTrends, q, s.engine.InnovationTrends)
}

func (s *serviceImpl) TopInventors(ctx context.Context, q Query) ([]InventorRank, error) {
	return landscape(ctx, s, OpTopInventors, q, s.engine.TopInventors)
}

func (s *serviceImpl) Lifecycle(ctx context.Context, q Query) (*LifecycleStats, error) {
	return landscape(ctx, s, OpLifecycle, q, func(assets []*asset.Asset, _ int) *LifecycleStats {
		st := s.engine.Lifecycle(assets)
		return &st
	})
}

// Overview computes all six landscape aggregates concurrently over one
// filtered snapshot. A cancelled context aborts the remaining aggregates.
func (s *serviceImpl) Overview(ctx context.Context, q Query) (*LandscapeOverview, error) {
	n, err := s.topN(q.TopN)
	if err != nil {
		return nil, err
	}
	return cached(ctx, s, OpOverview, cacheKey(OpOverview, q.Filter, n), func(ctx context.Context) (*LandscapeOverview, error) {
		assets, err := s.filtered(ctx, q.Filter)
		if err != nil {
			return nil, err
		}

		ov := &LandscapeOverview{CorpusSize: len(assets), GeneratedAt: s.engine.Now().UTC()}
		g, gctx := errgroup.WithContext(ctx)
		run := func(fn func()) {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				fn()
				return nil
			})
		}
		run(func() { ov.Classifications = s.engine.ClassificationTrends(assets, n) })
		run(func() { ov.Convergence = s.engine.Convergence(assets, n) })
		run(func() { ov.Competitors = s.engine.Competitors(assets, n) })
		run(func() { ov.InnovationTrends = s.engine.InnovationTrends(assets, n) })
		run(func() { ov.TopInventors = s.engine.TopInventors(assets, n) })
		run(func() { ov.Lifecycle = s.engine.Lifecycle(assets) })
		if err := g.Wait(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeTimeout, "landscape overview aborted")
		}
		return ov, nil
	})
}

// ─────────────────────────────────────────────────────────────────────────────
// Dashboard
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Summary(ctx context.Context, f Filter) (*DashboardSummary, error) {
	return dashboard(ctx, s, OpSummary, f, func(assets []*asset.Asset) *DashboardSummary {
		sum := s.engine.Summary(assets)
		return &sum
	})
}

func (s *serviceImpl) StatusDistribution(ctx context.Context, f Filter) ([]NameValue, error) {
	return dashboard(ctx, s, OpStatusDistrib, f, s.engine.StatusDistribution)
}

func (s *serviceImpl) FilingsTrend(ctx context.Context, f Filter) ([]MonthlyFilings, error) {
	return dashboard(ctx, s, OpFilingsTrend, f, s.engine.FilingsTrend)
}

func (s *serviceImpl) JurisdictionBreakdown(ctx context.Context, f Filter) ([]JurisdictionCount, error) {
	return dashboard(ctx, s, OpJurisdictions, f, s.engine.JurisdictionBreakdown)
}

func (s *serviceImpl) StatusTimeline(ctx context.Context, f Filter) ([]QuarterStatus, error) {
	return dashboard(ctx, s, OpStatusTimeline, f, s.engine.StatusTimeline)
}

func (s *serviceImpl) RecentActivity(ctx context.Context) ([]ActivityItem, error) {
	return dashboard(ctx, s, OpRecentActivity, Filter{}, s.engine.RecentActivity)
}

func (s *serviceImpl) UpcomingDeadlines(ctx context.Context) ([]DeadlineItem, error) {
	return dashboard(ctx, s, OpUpcomingDeadlines, Filter{}, s.engine.UpcomingDeadlines)
}

// AssetsByCategory is not cached: search terms are unbounded.
func (s *serviceImpl) AssetsByCategory(ctx context.Context, category string, f Filter) (*AssetPage, error) {
	start := time.Now()
	assets, err := s.filtered(ctx, Filter{DateRange: f.DateRange, Type: f.Type, Jurisdiction: f.Jurisdiction})
	if err != nil {
		return nil, err
	}
	page := s.engine.AssetsByCategory(assets, category)
	s.metrics.RecordCompute(OpAssetsByCategory, time.Since(start), page.Total, nil)
	return &page, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Cache maintenance
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Invalidate(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	n, err := s.cache.DeleteByPrefix(ctx, CacheKeyPrefix)
	if err != nil {
		s.metrics.RecordCacheError("invalidate")
		return n, err
	}
	s.logger.Debug("analytics cache invalidated", logging.Int64("keys", n))
	return n, nil
}

func (s *serviceImpl) Refresh(ctx context.Context) (*RefreshResult, error) {
	start := time.Now()

	invalidated, err := s.Invalidate(ctx)
	if err != nil {
		s.logger.Warn("cache invalidation failed during refresh", logging.Err(err))
	}

	ov, err := s.Overview(ctx, Query{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRefreshFailed, "failed to refresh landscape overview")
	}
	if _, err := s.Summary(ctx, Filter{}); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRefreshFailed, "failed to refresh dashboard summary")
	}

	res := &RefreshResult{
		CorpusSize:  ov.CorpusSize,
		Invalidated: invalidated,
		Duration:    time.Since(start),
		RefreshedAt: s.engine.Now().UTC(),
	}
	s.logger.Info("analytics cache refreshed",
		logging.Int("corpus_size", res.CorpusSize),
		logging.Int64("invalidated", invalidated),
		logging.Duration("duration", res.Duration))
	return res, nil
}

//Personal.AI order the ending
