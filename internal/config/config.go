package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"colprofile/domain/profiling"
	"colprofile/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Stats  StatsConfig
	Remote RemoteConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// StatsConfig holds the profiling engine settings
type StatsConfig struct {
	InferenceSample      int
	TopN                 int
	CategoryMaxUnique    int
	CategoryMaxRatio     float64
	OutlierFence         float64
	SignificanceMode     profiling.SignificanceMode
	MaxWorkers           int
	PreferUnixTimestamps bool
	ReservedFields       []string
}

// RemoteConfig points at a remote /data_stats service. An empty URL means the
// statistics are computed in process.
type RemoteConfig struct {
	URL     string
	Timeout time.Duration
}

// DefaultReservedFields are never touched by a bulk fill
var DefaultReservedFields = []string{"id", "rowId"}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: *loadServerConfig(),
		Remote: *loadRemoteConfig(),
	}

	statsConfig, err := loadStatsConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load statistics configuration")
	}
	config.Stats = *statsConfig

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// ProfilingConfig builds the engine config from the loaded settings
func (c *Config) ProfilingConfig() profiling.ProfilingConfig {
	cfg := profiling.DefaultProfilingConfig()
	cfg.InferenceSampleSize = c.Stats.InferenceSample
	cfg.TopN = c.Stats.TopN
	cfg.CategoryMaxUnique = c.Stats.CategoryMaxUnique
	cfg.CategoryMaxRatio = c.Stats.CategoryMaxRatio
	cfg.OutlierFence = c.Stats.OutlierFence
	cfg.Significance = c.Stats.SignificanceMode
	cfg.MaxWorkers = c.Stats.MaxWorkers
	cfg.PreferUnixTimestamps = c.Stats.PreferUnixTimestamps
	return cfg
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "debug"),
	}
}

func loadStatsConfig() (*StatsConfig, error) {
	defaults := profiling.DefaultProfilingConfig()

	mode := profiling.SignificanceMode(strings.ToLower(getEnvOrDefault("STATS_SIGNIFICANCE_MODE", string(defaults.Significance))))
	switch mode {
	case profiling.SignificanceLegacy, profiling.SignificanceStudentsT:
	default:
		return nil, errors.ConfigInvalid("STATS_SIGNIFICANCE_MODE must be legacy or students_t, got " + string(mode))
	}

	return &StatsConfig{
		InferenceSample:      getEnvIntOrDefault("STATS_INFERENCE_SAMPLE", defaults.InferenceSampleSize),
		TopN:                 getEnvIntOrDefault("STATS_TOP_N", defaults.TopN),
		CategoryMaxUnique:    getEnvIntOrDefault("STATS_CATEGORY_MAX_UNIQUE", defaults.CategoryMaxUnique),
		CategoryMaxRatio:     getEnvFloatOrDefault("STATS_CATEGORY_MAX_RATIO", defaults.CategoryMaxRatio),
		OutlierFence:         getEnvFloatOrDefault("STATS_OUTLIER_FENCE", defaults.OutlierFence),
		SignificanceMode:     mode,
		MaxWorkers:           getEnvIntOrDefault("STATS_MAX_WORKERS", defaults.MaxWorkers),
		PreferUnixTimestamps: getEnvBoolOrDefault("STATS_PREFER_UNIX_TIMESTAMPS", false),
		ReservedFields:       getEnvListOrDefault("STATS_RESERVED_FIELDS", DefaultReservedFields),
	}, nil
}

func loadRemoteConfig() *RemoteConfig {
	return &RemoteConfig{
		URL:     strings.TrimRight(getEnvOrDefault("STATS_REMOTE_URL", ""), "/"),
		Timeout: getEnvDurationOrDefault("STATS_REMOTE_TIMEOUT", 30*time.Second),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if err := config.ProfilingConfig().Validate(); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	if config.Remote.URL != "" && config.Remote.Timeout <= 0 {
		return errors.ConfigInvalid("STATS_REMOTE_TIMEOUT must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated value, dropping blanks
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
