package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/KeyIP-Landscape/internal/application/analytics"
	"github.com/turtacn/KeyIP-Landscape/internal/application/assetsync"
	"github.com/turtacn/KeyIP-Landscape/internal/application/jobs"
	"github.com/turtacn/KeyIP-Landscape/internal/config"
	"github.com/turtacn/KeyIP-Landscape/internal/domain/asset"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/postgres"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/database/redis"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Landscape/internal/interfaces/http/handlers"
)

// worker owns every resource of the background process.
type worker struct {
	cfg    *config.Config
	logger logging.Logger

	pool      *pgxpool.Pool
	admin     *postgres.Connection
	redis     *redis.Client
	producer  *kafka.Producer
	consumers []*kafka.Consumer
	scheduler *jobs.Scheduler
	health    *healthServer
}

func newWorker(ctx context.Context, cfg *config.Config, logger logging.Logger) (*worker, error) {
	w := &worker{cfg: cfg, logger: logger}
	ready := false
	defer func() {
		if !ready {
			w.Close()
		}
	}()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            "keyip",
		Subsystem:            "worker",
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics collector: %w", err)
	}
	metrics := prometheus.NewAppMetrics(collector)

	w.pool, err = postgres.NewPool(ctx, cfg.Database, logger.Named("postgres"))
	if err != nil {
		return nil, err
	}
	adminCfg := cfg.Database
	adminCfg.MaxConns, adminCfg.MinConns = 2, 1
	w.admin, err = postgres.NewConnection(adminCfg, logger.Named("postgres"))
	if err != nil {
		return nil, err
	}
	if v, err := w.admin.ServerVersion(ctx); err == nil {
		logger.Info("database server", logging.String("version", v))
	}
	checks := []handlers.HealthChecker{handlers.NamedCheck("postgres", w.admin.HealthCheck)}

	w.redis, err = redis.NewClient(redis.ConfigFrom(cfg.Redis), logger.Named("redis"))
	if err != nil {
		return nil, err
	}
	checks = append(checks, handlers.NamedCheck("redis", w.redis.Ping))

	repo := repositories.NewAssetRepository(w.pool, logger)
	var cache redis.Cache
	if cfg.Analytics.CacheEnabled {
		cache = redis.NewRedisCache(w.redis, logger,
			redis.WithPrefix(cfg.Redis.KeyPrefix),
			redis.WithDefaultTTL(cfg.Analytics.CacheTTL),
		)
	}
	svc := analytics.NewService(repo, analytics.EngineFrom(cfg.Analytics), cache, metrics, logger, analytics.ServiceConfigFrom(cfg.Analytics))

	var publisher kafka.Publisher
	if cfg.Kafka.Enabled {
		if err := w.setupKafka(ctx, repo, svc, metrics); err != nil {
			return nil, err
		}
		publisher = w.producer
	} else {
		logger.Warn("kafka disabled: asset sync consumer and refresh events are off")
	}

	w.scheduler = jobs.NewScheduler(logger.Named("scheduler"),
		jobs.WithLocks(redis.NewLockFactory(w.redis, cfg.Redis.KeyPrefix, logger), cfg.Worker.LockTTL),
		jobs.WithSchedulerMetrics(metrics),
	)
	if err := w.scheduler.Register(cfg.Worker.RefreshSchedule,
		jobs.NewRefreshJob(svc, publisher, cfg.Kafka.RefreshedTopic, logger)); err != nil {
		return nil, err
	}
	if err := w.scheduler.Register(cfg.Worker.CleanupSchedule,
		jobs.NewCleanupJob(repo, svc, cfg.Worker.StaleAfter, logger)); err != nil {
		return nil, err
	}

	w.health = newHealthServer(cfg.Worker.HealthPort, handlers.NewHealthHandler(version, checks...), collector.Handler(), w.scheduler)
	ready = true
	return w, nil
}

// setupKafka creates the topics, the producer shared by the dead-letter path
// and refresh events, and one consumer per configured slot of the group.
func (w *worker) setupKafka(ctx context.Context, repo asset.Repository, svc analytics.Service, metrics *prometheus.AppMetrics) error {
	kc := w.cfg.Kafka

	tm, err := kafka.NewTopicManager(kc.Brokers, w.logger)
	if err != nil {
		return err
	}
	err = tm.EnsureTopics(ctx, kafka.ServiceTopics(kc.AssetSyncedTopic, kc.RefreshedTopic, kc.DeadLetterTopic))
	_ = tm.Close()
	if err != nil {
		return err
	}

	w.producer, err = kafka.NewProducer(kafka.ProducerConfig{
		Brokers:    kc.Brokers,
		Acks:       "all",
		MaxRetries: kc.MaxRetries,
	}, w.logger.Named("producer"), kafka.WithProducerMetrics(metrics))
	if err != nil {
		return err
	}

	syncer := assetsync.NewService(repo, svc, w.logger.Named("assetsync"),
		assetsync.WithMetrics(metrics),
		assetsync.WithTopic(kc.AssetSyncedTopic),
	)
	for i := 0; i < w.cfg.Worker.Concurrency; i++ {
		c, err := kafka.NewConsumer(kafka.ConsumerConfig{
			Brokers:         kc.Brokers,
			GroupID:         kc.GroupID,
			Topics:          []string{syncer.Topic()},
			AutoOffsetReset: kc.AutoOffsetReset,
			RetryConfig: kafka.RetryConfig{
				MaxRetries:      w.cfg.Worker.MaxRetries,
				RetryBackoff:    time.Second,
				MaxRetryBackoff: 30 * time.Second,
				DeadLetterTopic: kc.DeadLetterTopic,
			},
		}, w.logger.Named("consumer"),
			kafka.WithDeadLetterPublisher(w.producer),
			kafka.WithConsumerMetrics(metrics),
		)
		if err != nil {
			return err
		}
		c.Subscribe(syncer.Topic(), syncer.AsHandler())
		w.consumers = append(w.consumers, c)
	}
	return nil
}

func (w *worker) start(ctx context.Context) error {
	for _, c := range w.consumers {
		if err := c.Start(ctx); err != nil {
			return err
		}
	}
	w.scheduler.Start()
	return nil
}

// stop drains consumers before the scheduler so an in-flight sync can still
// invalidate the cache.
func (w *worker) stop(ctx context.Context) error {
	var errs []error
	for _, c := range w.consumers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, w.scheduler.Stop(ctx), w.health.Shutdown(ctx))
	return errors.Join(errs...)
}

func (w *worker) Close() {
	if w.producer != nil {
		_ = w.producer.Close()
	}
	if w.redis != nil {
		_ = w.redis.Close()
	}
	if w.admin != nil {
		_ = w.admin.Close()
	}
	if w.pool != nil {
		w.pool.Close()
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Health server
// ─────────────────────────────────────────────────────────────────────────────

type healthServer struct {
	srv *http.Server
}

func newHealthServer(port int, health *handlers.HealthHandler, metrics http.Handler, sched *jobs.Scheduler) *healthServer {
	r := chi.NewRouter()
	r.Get("/healthz", health.Liveness)
	r.Get("/readyz", health.Readiness)
	r.Handle("/metrics", metrics)
	r.Get("/jobs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sched.Entries())
	})
	return &healthServer{srv: &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// ListenAndServe blocks until Shutdown; a clean shutdown returns nil.
func (h *healthServer) ListenAndServe() error {
	if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func (h *healthServer) Shutdown(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}

//Personal.AI order the ending
