// Package config defines the configuration of the KeyIP-Landscape binaries.
// This file holds plain data types and validation only.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/turtacn/KeyIP-Landscape/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	Mode            string          `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration   `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration   `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string        `mapstructure:"cors_origins"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds requests per client IP.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"db_name"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	MaxConns         int           `mapstructure:"max_conns"`
	MinConns         int           `mapstructure:"min_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	MigrationPath    string        `mapstructure:"migration_path"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds Kafka producer and consumer parameters.
type KafkaConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	Brokers          []string `mapstructure:"brokers"`
	GroupID          string   `mapstructure:"group_id"`
	AutoOffsetReset  string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	AssetSyncedTopic string   `mapstructure:"asset_synced_topic"`
	RefreshedTopic   string   `mapstructure:"refreshed_topic"`
	DeadLetterTopic  string   `mapstructure:"dead_letter_topic"`
	MaxRetries       int      `mapstructure:"max_retries"`
}

// AnalyticsConfig tunes the analytics service.
type AnalyticsConfig struct {
	DefaultTopN           int           `mapstructure:"default_top_n"`
	MaxTopN               int           `mapstructure:"max_top_n"`
	CacheEnabled          bool          `mapstructure:"cache_enabled"`
	CacheTTL              time.Duration `mapstructure:"cache_ttl"`
	PatentTermYears       int           `mapstructure:"patent_term_years"`
	DeadlineHorizonMonths int           `mapstructure:"deadline_horizon_months"`
	RecentActivityLimit   int           `mapstructure:"recent_activity_limit"`
	CategorySearchLimit   int           `mapstructure:"category_search_limit"`
}

// WorkerConfig holds background worker parameters.
type WorkerConfig struct {
	Concurrency     int           `mapstructure:"concurrency"`
	MaxRetries      int           `mapstructure:"max_retries"`
	HealthPort      int           `mapstructure:"health_port"`
	RefreshSchedule string        `mapstructure:"refresh_schedule"`
	CleanupSchedule string        `mapstructure:"cleanup_schedule"`
	LockTTL         time.Duration `mapstructure:"lock_ttl"`
	// StaleAfter purges assets not re-synced within the window; zero keeps all.
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// Logging converts the section into the logger's own config type.
func (l LogConfig) Logging() logging.LogConfig {
	return logging.LogConfig{Level: l.Level, Format: l.Format, OutputPaths: l.OutputPaths}
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration shared by apiserver, worker and CLI.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Log       LogConfig       `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate returns the first semantic error found in c.
func (c *Config) Validate() error {
	// Server
	if err := validPort("server.port", c.Server.Port); err != nil {
		return err
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RateLimit.Enabled && (c.Server.RateLimit.RPS <= 0 || c.Server.RateLimit.Burst < 1) {
		return fmt.Errorf("config: server.rate_limit requires rps > 0 and burst >= 1")
	}

	// Database
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if err := validPort("database.port", c.Database.Port); err != nil {
		return err
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("config: database.max_conns must be >= 1, got %d", c.Database.MaxConns)
	}
	if c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("config: database.min_conns must be within [0, max_conns], got %d", c.Database.MinConns)
	}

	// Redis
	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.GroupID == "" {
			return fmt.Errorf("config: kafka.group_id is required")
		}
		switch c.Kafka.AutoOffsetReset {
		case "earliest", "latest":
		default:
			return fmt.Errorf("config: kafka.auto_offset_reset %q is invalid; expected earliest|latest", c.Kafka.AutoOffsetReset)
		}
	}

	// Analytics
	if c.Analytics.DefaultTopN < 1 {
		return fmt.Errorf("config: analytics.default_top_n must be >= 1, got %d", c.Analytics.DefaultTopN)
	}
	if c.Analytics.MaxTopN < c.Analytics.DefaultTopN {
		return fmt.Errorf("config: analytics.max_top_n %d is below default_top_n %d", c.Analytics.MaxTopN, c.Analytics.DefaultTopN)
	}
	if c.Analytics.CacheEnabled && c.Analytics.CacheTTL <= 0 {
		return fmt.Errorf("config: analytics.cache_ttl must be positive when the cache is enabled")
	}
	if c.Analytics.PatentTermYears < 1 {
		return fmt.Errorf("config: analytics.patent_term_years must be >= 1, got %d", c.Analytics.PatentTermYears)
	}

	// Worker
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("config: worker.concurrency must be >= 1, got %d", c.Worker.Concurrency)
	}
	if err := validPort("worker.health_port", c.Worker.HealthPort); err != nil {
		return err
	}
	if err := validSchedule("worker.refresh_schedule", c.Worker.RefreshSchedule); err != nil {
		return err
	}
	if err := validSchedule("worker.cleanup_schedule", c.Worker.CleanupSchedule); err != nil {
		return err
	}
	if c.Worker.StaleAfter < 0 {
		return fmt.Errorf("config: worker.stale_after must not be negative")
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

func validPort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("config: %s %d is out of range [1, 65535]", key, port)
	}
	return nil
}

// validSchedule accepts the five-field cron syntax and descriptors like @daily.
func validSchedule(key, spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("config: %s %q is not a valid cron expression: %w", key, spec, err)
	}
	return nil
}

//Personal.AI order the ending
