package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/KeyIP-Landscape/internal/application/analytics"
	"github.com/turtacn/KeyIP-Landscape/internal/config"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
	httpapi "github.com/turtacn/KeyIP-Landscape/internal/interfaces/http"
	"github.com/turtacn/KeyIP-Landscape/internal/interfaces/http/handlers"
	"github.com/turtacn/KeyIP-Landscape/internal/interfaces/http/middleware"
)

// app holds the long-lived resources of the API server.
type app struct {
	pool   *pgxpool.Pool
	redis  *redis.Client
	server *httpapi.Server
	logger logging.Logger
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app, error) {
	a := &app{logger: logger}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "keyip",
		Subsystem:            "apiserver",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics collector: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	if cfg.Database.AutoMigrate {
		if err := postgres.MigrateUp(cfg.Database); err != nil {
			return nil, err
		}
		logger.Info("database migrations applied", logging.String("path", cfg.Database.MigrationPath))
	}

	a.pool, err = postgres.NewPool(ctx, cfg.Database, logger.Named("postgres"))
	if err != nil {
		return nil, err
	}
	repo := repositories.NewAssetRepository(a.pool, logger)
	checks := []handlers.HealthChecker{handlers.NamedCheck("postgres", a.pool.Ping)}

	// The cache is optional: without Redis every request computes from the corpus.
	var cache redis.Cache
	if cfg.Analytics.CacheEnabled {
		a.redis, err = redis.NewClient(redis.ConfigFrom(cfg.Redis), logger.Named("redis"))
		if err != nil {
			logger.Warn("redis unavailable, analytics cache disabled", logging.Err(err))
		} else {
			cache = redis.NewRedisCache(a.redis, logger,
				redis.WithPrefix(cfg.Redis.KeyPrefix),
				redis.WithDefaultTTL(cfg.Analytics.CacheTTL),
			)
			checks = append(checks, handlers.NamedCheck("redis", a.redis.Ping))
		}
	}

	svc := analytics.NewService(repo, analytics.EngineFrom(cfg.Analytics), cache, metrics, logger, analytics.ServiceConfigFrom(cfg.Analytics))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.Server.CORSOrigins
	corsCfg.AllowWildcard = true

	routerCfg := httpapi.RouterConfig{
		AnalyticsHandler:  handlers.NewAnalyticsHandler(svc, cfg.Analytics.MaxTopN, logger, metrics),
		DashboardHandler:  handlers.NewDashboardHandler(svc, logger, metrics),
		HealthHandler:     handlers.NewHealthHandler(version, checks...),
		CORSMiddleware:    middleware.NewCORSMiddleware(corsCfg),
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger.Named("access"), middleware.DefaultLoggingConfig()),
		MetricsCollector:  collector,
		Metrics:           metrics,
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		rlCfg := middleware.DefaultRateLimitConfig()
		rlCfg.RequestsPerSecond = rl.RPS
		rlCfg.Burst = rl.Burst
		routerCfg.RateLimitMiddleware = middleware.NewRateLimitMiddleware(rlCfg)
	}

	a.server = httpapi.NewServer(cfg.Server, httpapi.NewRouter(routerCfg), logger)
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

//Personal.AI order the ending
