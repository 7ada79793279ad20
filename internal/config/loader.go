package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load loads configuration from file, environment and defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/gridstats")
	}

	setDefaults(v)

	// GRIDSTATS_CACHE_BACKEND overrides cache.backend
	v.SetEnvPrefix("GRIDSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return parseConfig(v)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return parseConfig(v)
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.http_port", d.Server.HTTPPort)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("upstream.base_url", d.Upstream.BaseURL)
	v.SetDefault("upstream.timeout", d.Upstream.Timeout)
	v.SetDefault("upstream.max_retries", d.Upstream.MaxRetries)
	v.SetDefault("upstream.retry_delay", d.Upstream.RetryDelay)
	v.SetDefault("upstream.page_size", d.Upstream.PageSize)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.key_prefix", d.Cache.KeyPrefix)
	v.SetDefault("cache.compress", d.Cache.Compress)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("cache.live_ttl", d.Cache.LiveTTL)
	v.SetDefault("cache.schedule_ttl", d.Cache.ScheduleTTL)
	v.SetDefault("cache.history_ttl", d.Cache.HistoryTTL)
	v.SetDefault("cache.analytics_ttl", d.Cache.AnalyticsTTL)

	v.SetDefault("queue.type", d.Queue.Type)
	v.SetDefault("queue.url", d.Queue.URL)
	v.SetDefault("queue.subject", d.Queue.Subject)

	v.SetDefault("analytics.min_consistency_races", d.Analytics.MinConsistencyRaces)
	v.SetDefault("analytics.min_correlation_races", d.Analytics.MinCorrelationRaces)
	v.SetDefault("analytics.min_circuit_appearances", d.Analytics.MinCircuitAppearances)
	v.SetDefault("analytics.rolling_window", d.Analytics.RollingWindow)
	v.SetDefault("analytics.form_window", d.Analytics.FormWindow)
	v.SetDefault("analytics.trend_slope_threshold", d.Analytics.TrendSlopeThreshold)
	v.SetDefault("analytics.imbalance_threshold", d.Analytics.ImbalanceThreshold)
	v.SetDefault("analytics.low_remaining_races", d.Analytics.LowRemainingRaces)
	v.SetDefault("analytics.participation_threshold", d.Analytics.ParticipationThreshold)
	v.SetDefault("analytics.grid_size", d.Analytics.GridSize)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetDefault("display.timezone", d.Display.Timezone)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.time_format", d.Logging.TimeFormat)
}

func parseConfig(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadOrDefault loads configuration from file or returns the defaults
func LoadOrDefault(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			HTTPPort:        8501,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Upstream: UpstreamConfig{
			BaseURL:    "https://api.jolpi.ca/ergast/f1",
			Timeout:    10 * time.Second,
			MaxRetries: 3,
			RetryDelay: time.Second,
			PageSize:   100,
		},
		Cache: CacheConfig{
			Backend:         "memory",
			KeyPrefix:       "gridstats",
			Compress:        true,
			CleanupInterval: time.Minute,
			LiveTTL:         5 * time.Minute,
			ScheduleTTL:     time.Hour,
			HistoryTTL:      24 * time.Hour,
			AnalyticsTTL:    5 * time.Minute,
		},
		Queue: QueueConfig{
			Type:    "none",
			Subject: "gridstats.cache.invalidate",
		},
		Analytics: AnalyticsConfig{
			MinConsistencyRaces:    5,
			MinCorrelationRaces:    5,
			MinCircuitAppearances:  3,
			RollingWindow:          3,
			FormWindow:             5,
			TrendSlopeThreshold:    0.3,
			ImbalanceThreshold:     70,
			LowRemainingRaces:      5,
			ParticipationThreshold: 0.5,
			GridSize:               20,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Path:      "/metrics",
			Namespace: "gridstats",
		},
		Display: DisplayConfig{
			Timezone: "UTC",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			TimeFormat: "RFC3339",
		},
	}
}
