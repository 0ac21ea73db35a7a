package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort            = 8080
	DefaultServerMode            = "release"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 30 * time.Second
	DefaultServerIdleTimeout     = 60 * time.Second
	DefaultServerShutdownTimeout = 15 * time.Second
	DefaultRateLimitRPS          = 20.0
	DefaultRateLimitBurst        = 40

	DefaultDBHost             = "localhost"
	DefaultDBPort             = 5432
	DefaultDBName             = "keyip"
	DefaultDBSSLMode          = "disable"
	DefaultDBMaxConns         = 25
	DefaultDBMinConns         = 2
	DefaultDBConnMaxLifetime  = time.Hour
	DefaultDBConnMaxIdleTime  = 10 * time.Minute
	DefaultDBStatementTimeout = 30 * time.Second
	DefaultDBMigrationPath    = "file://migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 20
	DefaultRedisKeyPrefix = "keyip:"

	DefaultKafkaBroker      = "localhost:9092"
	DefaultKafkaGroupID     = "keyip-landscape-worker"
	DefaultKafkaOffsetReset = "earliest"
	DefaultKafkaAssetSynced = "ipi.asset.synced"
	DefaultKafkaRefreshed   = "ipi.analytics.refreshed"
	DefaultKafkaDeadLetter  = "ipi.dlq"
	DefaultKafkaMaxRetries  = 3

	DefaultTopN                  = 10
	DefaultMaxTopN               = 1000
	DefaultCacheTTL              = 15 * time.Minute
	DefaultPatentTermYears       = 20
	DefaultDeadlineHorizonMonths = 6
	DefaultRecentActivityLimit   = 10
	DefaultCategorySearchLimit   = 100

	DefaultWorkerConcurrency = 4
	DefaultWorkerMaxRetries  = 3
	DefaultWorkerHealthPort  = 8081
	DefaultRefreshSchedule   = "0 0 * * *"
	DefaultCleanupSchedule   = "30 0 * * *"
	DefaultWorkerLockTTL     = 10 * time.Minute

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills zero-value fields of cfg. Explicit values win. Boolean
// switches cannot be told apart from "unset" here, so their defaults live in
// setViperDefaults only.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	setInt(&cfg.Server.Port, DefaultServerPort)
	setString(&cfg.Server.Mode, DefaultServerMode)
	setDuration(&cfg.Server.ReadTimeout, DefaultServerReadTimeout)
	setDuration(&cfg.Server.WriteTimeout, DefaultServerWriteTimeout)
	setDuration(&cfg.Server.IdleTimeout, DefaultServerIdleTimeout)
	setDuration(&cfg.Server.ShutdownTimeout, DefaultServerShutdownTimeout)
	if cfg.Server.RateLimit.RPS == 0 {
		cfg.Server.RateLimit.RPS = DefaultRateLimitRPS
	}
	setInt(&cfg.Server.RateLimit.Burst, DefaultRateLimitBurst)

	// ── Database ──────────────────────────────────────────────────────────────
	setString(&cfg.Database.Host, DefaultDBHost)
	setInt(&cfg.Database.Port, DefaultDBPort)
	setString(&cfg.Database.DBName, DefaultDBName)
	setString(&cfg.Database.SSLMode, DefaultDBSSLMode)
	setInt(&cfg.Database.MaxConns, DefaultDBMaxConns)
	setInt(&cfg.Database.MinConns, DefaultDBMinConns)
	setDuration(&cfg.Database.ConnMaxLifetime, DefaultDBConnMaxLifetime)
	setDuration(&cfg.Database.ConnMaxIdleTime, DefaultDBConnMaxIdleTime)
	setDuration(&cfg.Database.StatementTimeout, DefaultDBStatementTimeout)
	setString(&cfg.Database.MigrationPath, DefaultDBMigrationPath)

	// ── Redis ─────────────────────────────────────────────────────────────────
	setString(&cfg.Redis.Addr, DefaultRedisAddr)
	setInt(&cfg.Redis.PoolSize, DefaultRedisPoolSize)
	setString(&cfg.Redis.KeyPrefix, DefaultRedisKeyPrefix)

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	setString(&cfg.Kafka.GroupID, DefaultKafkaGroupID)
	setString(&cfg.Kafka.AutoOffsetReset, DefaultKafkaOffsetReset)
	setString(&cfg.Kafka.AssetSyncedTopic, DefaultKafkaAssetSynced)
	setString(&cfg.Kafka.RefreshedTopic, DefaultKafkaRefreshed)
	setString(&cfg.Kafka.DeadLetterTopic, DefaultKafkaDeadLetter)
	setInt(&cfg.Kafka.MaxRetries, DefaultKafkaMaxRetries)

	// ── Analytics ─────────────────────────────────────────────────────────────
	setInt(&cfg.Analytics.DefaultTopN, DefaultTopN)
	setInt(&cfg.Analytics.MaxTopN, DefaultMaxTopN)
	setDuration(&cfg.Analytics.CacheTTL, DefaultCacheTTL)
	setInt(&cfg.Analytics.PatentTermYears, DefaultPatentTermYears)
	setInt(&cfg.Analytics.DeadlineHorizonMonths, DefaultDeadlineHorizonMonths)
	setInt(&cfg.Analytics.RecentActivityLimit, DefaultRecentActivityLimit)
	setInt(&cfg.Analytics.CategorySearchLimit, DefaultCategorySearchLimit)

	// ── Worker ────────────────────────────────────────────────────────────────
	setInt(&cfg.Worker.Concurrency, DefaultWorkerConcurrency)
	setInt(&cfg.Worker.MaxRetries, DefaultWorkerMaxRetries)
	setInt(&cfg.Worker.HealthPort, DefaultWorkerHealthPort)
	setString(&cfg.Worker.RefreshSchedule, DefaultRefreshSchedule)
	setString(&cfg.Worker.CleanupSchedule, DefaultCleanupSchedule)
	setDuration(&cfg.Worker.LockTTL, DefaultWorkerLockTTL)

	// ── Log ───────────────────────────────────────────────────────────────────
	setString(&cfg.Log.Level, DefaultLogLevel)
	setString(&cfg.Log.Format, DefaultLogFormat)
}

// setViperDefaults registers every key with viper. Besides supplying boolean
// defaults this makes AutomaticEnv see keys that are absent from the file.
func setViperDefaults(v *viper.Viper) {
	var cfg Config
	ApplyDefaults(&cfg)

	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.mode", cfg.Server.Mode)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.idle_timeout", cfg.Server.IdleTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit.enabled", false)
	v.SetDefault("server.rate_limit.rps", cfg.Server.RateLimit.RPS)
	v.SetDefault("server.rate_limit.burst", cfg.Server.RateLimit.Burst)

	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", cfg.Database.DBName)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)
	v.SetDefault("database.max_conns", cfg.Database.MaxConns)
	v.SetDefault("database.min_conns", cfg.Database.MinConns)
	v.SetDefault("database.conn_max_lifetime", cfg.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", cfg.Database.ConnMaxIdleTime)
	v.SetDefault("database.statement_timeout", cfg.Database.StatementTimeout)
	v.SetDefault("database.migration_path", cfg.Database.MigrationPath)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", cfg.Redis.PoolSize)
	v.SetDefault("redis.min_idle_conns", 0)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.key_prefix", cfg.Redis.KeyPrefix)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", cfg.Kafka.Brokers)
	v.SetDefault("kafka.group_id", cfg.Kafka.GroupID)
	v.SetDefault("kafka.auto_offset_reset", cfg.Kafka.AutoOffsetReset)
	v.SetDefault("kafka.asset_synced_topic", cfg.Kafka.AssetSyncedTopic)
	v.SetDefault("kafka.refreshed_topic", cfg.Kafka.RefreshedTopic)
	v.SetDefault("kafka.dead_letter_topic", cfg.Kafka.DeadLetterTopic)
	v.SetDefault("kafka.max_retries", cfg.Kafka.MaxRetries)

	v.SetDefault("analytics.default_top_n", cfg.Analytics.DefaultTopN)
	v.SetDefault("analytics.max_top_n", cfg.Analytics.MaxTopN)
	v.SetDefault("analytics.cache_enabled", true)
	v.SetDefault("analytics.cache_ttl", cfg.Analytics.CacheTTL)
	v.SetDefault("analytics.patent_term_years", cfg.Analytics.PatentTermYears)
	v.SetDefault("analytics.deadline_horizon_months", cfg.Analytics.DeadlineHorizonMonths)
	v.SetDefault("analytics.recent_activity_limit", cfg.Analytics.RecentActivityLimit)
	v.SetDefault("analytics.category_search_limit", cfg.Analytics.CategorySearchLimit)

	v.SetDefault("worker.concurrency", cfg.Worker.Concurrency)
	v.SetDefault("worker.max_retries", cfg.Worker.MaxRetries)
	v.SetDefault("worker.health_port", cfg.Worker.HealthPort)
	v.SetDefault("worker.refresh_schedule", cfg.Worker.RefreshSchedule)
	v.SetDefault("worker.cleanup_schedule", cfg.Worker.CleanupSchedule)
	v.SetDefault("worker.lock_ttl", cfg.Worker.LockTTL)
	v.SetDefault("worker.stale_after", time.Duration(0))

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.output_paths", []string{"stdout"})
}

func setInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setDuration(dst *time.Duration, def time.Duration) {
	if *dst == 0 {
		*dst = def
	}
}

//Personal.AI order the ending
