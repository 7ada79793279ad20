package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Display   DisplayConfig   `mapstructure:"display"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// UpstreamConfig configures the Ergast-compatible results API
type UpstreamConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`     // per request
	MaxRetries int           `mapstructure:"max_retries"` // total attempts, including the first
	RetryDelay time.Duration `mapstructure:"retry_delay"` // multiplied by the attempt number
	PageSize   int           `mapstructure:"page_size"`
}

// CacheConfig configures the response cache
type CacheConfig struct {
	Backend         string        `mapstructure:"backend"` // memory, redis
	RedisURL        string        `mapstructure:"redis_url"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
	Compress        bool          `mapstructure:"compress"` // snappy-compress redis values
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`

	LiveTTL      time.Duration `mapstructure:"live_ttl"`      // standings, results
	ScheduleTTL  time.Duration `mapstructure:"schedule_ttl"`  // calendars, driver/constructor details
	HistoryTTL   time.Duration `mapstructure:"history_ttl"`   // career and circuit history
	AnalyticsTTL time.Duration `mapstructure:"analytics_ttl"` // derived metrics
}

// QueueConfig configures the cache invalidation broadcast
type QueueConfig struct {
	Type    string `mapstructure:"type"` // none, memory, redis, nats, kafka
	URL     string `mapstructure:"url"`  // nats://localhost:4222, redis://localhost:6379
	Subject string `mapstructure:"subject"`

	KafkaBrokers []string `mapstructure:"kafka_brokers"`
}

// AnalyticsConfig holds the thresholds handed to the analytics layer
type AnalyticsConfig struct {
	MinConsistencyRaces    int     `mapstructure:"min_consistency_races"`
	MinCorrelationRaces    int     `mapstructure:"min_correlation_races"`
	MinCircuitAppearances  int     `mapstructure:"min_circuit_appearances"`
	RollingWindow          int     `mapstructure:"rolling_window"`
	FormWindow             int     `mapstructure:"form_window"`
	TrendSlopeThreshold    float64 `mapstructure:"trend_slope_threshold"`
	ImbalanceThreshold     float64 `mapstructure:"imbalance_threshold"` // percent share, e.g. 70
	LowRemainingRaces      int     `mapstructure:"low_remaining_races"`
	ParticipationThreshold float64 `mapstructure:"participation_threshold"` // fraction of races, e.g. 0.5
	GridSize               int     `mapstructure:"grid_size"`
}

// MetricsConfig configures the prometheus endpoint
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

// DisplayConfig controls presentation of race times
type DisplayConfig struct {
	Timezone string `mapstructure:"timezone"` // IANA name or offset like "+09:00"
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Upstream.Validate(); err != nil {
		return fmt.Errorf("upstream config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates upstream configuration
func (c *UpstreamConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("upstream.timeout must be positive")
	}

	if c.MaxRetries < 1 {
		return fmt.Errorf("upstream.max_retries must be at least 1")
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("upstream.page_size must be between 1 and 100")
	}

	return nil
}

// Validate validates cache configuration
func (c *CacheConfig) Validate() error {
	switch c.Backend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be 'memory' or 'redis'")
	}

	for name, ttl := range map[string]time.Duration{
		"live_ttl":      c.LiveTTL,
		"schedule_ttl":  c.ScheduleTTL,
		"history_ttl":   c.HistoryTTL,
		"analytics_ttl": c.AnalyticsTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("cache.%s must be positive", name)
		}
	}

	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "", "none", "memory":
	case "nats", "redis":
		if c.URL == "" {
			return fmt.Errorf("queue.url is required for %s", c.Type)
		}
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("queue.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("unsupported queue.type: %s", c.Type)
	}
	return nil
}

// Validate validates analytics thresholds
func (c *AnalyticsConfig) Validate() error {
	if c.MinConsistencyRaces < 1 || c.MinCorrelationRaces < 1 || c.MinCircuitAppearances < 1 {
		return fmt.Errorf("minimum sample sizes must be at least 1")
	}

	if c.RollingWindow < 1 || c.FormWindow < 1 {
		return fmt.Errorf("window sizes must be at least 1")
	}

	if c.TrendSlopeThreshold < 0 {
		return fmt.Errorf("analytics.trend_slope_threshold cannot be negative")
	}

	if c.ImbalanceThreshold <= 50 || c.ImbalanceThreshold >= 100 {
		return fmt.Errorf("analytics.imbalance_threshold must be between 50 and 100")
	}

	if c.ParticipationThreshold < 0 || c.ParticipationThreshold > 1 {
		return fmt.Errorf("analytics.participation_threshold must be between 0 and 1")
	}

	if c.GridSize < 1 {
		return fmt.Errorf("analytics.grid_size must be at least 1")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	if c.Format != "json" && c.Format != "console" {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
