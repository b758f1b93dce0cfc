package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"loanlens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Cache     CacheConfig
	Dashboard DashboardConfig
	Admin     AdminConfig
	Log       LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// DataConfig describes where the cleaned loan snapshot lives
type DataConfig struct {
	File          string
	Format        string
	Table         string
	DatabaseURL   string
	Watch         bool
	WatchDebounce time.Duration
	StrictStartup bool
}

// CacheConfig holds view memoization settings
type CacheConfig struct {
	MaxEntries int
	TTL        time.Duration
	RedisURL   string
}

// DashboardConfig holds presentation settings
type DashboardConfig struct {
	OverviewDistribution bool
	ContentFile          string
	EChartsAssetsHost    string
}

// AdminConfig holds health/profiling server settings
type AdminConfig struct {
	Host      string
	Port      string
	Enabled   bool
	Profiling bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string
}

// DefaultDataFile is the path the upstream cleaning job writes to
const DefaultDataFile = "data_input/loan_clean"

// Supported snapshot formats
var validFormats = []string{"auto", "xlsx", "csv", "json", "sqlite"}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Cache:     *loadCacheConfig(),
		Dashboard: *loadDashboardConfig(),
		Admin:     *loadAdminConfig(),
		Log:       *loadLogConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            getEnvOrDefault("PORT", "8080"),
		GinMode:         getEnvOrDefault("GIN_MODE", "release"),
		ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		File:          getEnvOrDefault("DATA_FILE", DefaultDataFile),
		Format:        strings.ToLower(getEnvOrDefault("DATA_FORMAT", "auto")),
		Table:         getEnvOrDefault("DATA_TABLE", "loan_clean"),
		DatabaseURL:   getEnvOrDefault("DATABASE_URL", ""),
		Watch:         getEnvBoolOrDefault("DATA_WATCH", false),
		WatchDebounce: getEnvDurationOrDefault("DATA_WATCH_DEBOUNCE", 500*time.Millisecond),
		StrictStartup: getEnvBoolOrDefault("STRICT_STARTUP", false),
	}
}

func loadCacheConfig() *CacheConfig {
	return &CacheConfig{
		MaxEntries: getEnvIntOrDefault("CACHE_MAX_ENTRIES", 256),
		TTL:        getEnvDurationOrDefault("CACHE_TTL", 10*time.Minute),
		RedisURL:   getEnvOrDefault("REDIS_URL", ""),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		OverviewDistribution: getEnvBoolOrDefault("DASHBOARD_OVERVIEW_DISTRIBUTION", false),
		ContentFile:          getEnvOrDefault("DASHBOARD_CONTENT_FILE", ""),
		EChartsAssetsHost:    getEnvOrDefault("ECHARTS_ASSETS_HOST", "https://go-echarts.github.io/go-echarts-assets/assets/"),
	}
}

func loadAdminConfig() *AdminConfig {
	return &AdminConfig{
		Host:      getEnvOrDefault("ADMIN_HOST", "127.0.0.1"),
		Port:      getEnvOrDefault("ADMIN_PORT", "6060"),
		Enabled:   getEnvBoolOrDefault("ADMIN_ENABLED", true),
		Profiling: getEnvBoolOrDefault("ADMIN_PPROF", false),
	}
}

func loadLogConfig() *LogConfig {
	return &LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
		Format: getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Data.DatabaseURL == "" && config.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE or DATABASE_URL is required")
	}
	if !isValidFormat(config.Data.Format) {
		return errors.ConfigInvalid("DATA_FORMAT must be one of " + strings.Join(validFormats, ", "))
	}
	if config.Data.Table == "" {
		return errors.ConfigInvalid("DATA_TABLE cannot be empty")
	}
	if config.Data.Watch && config.Data.DatabaseURL != "" {
		return errors.ConfigInvalid("DATA_WATCH only applies to file snapshots")
	}
	if config.Cache.MaxEntries < 0 {
		return errors.ConfigInvalid("CACHE_MAX_ENTRIES cannot be negative")
	}
	if config.Admin.Enabled && config.Admin.Port == config.Server.Port {
		return errors.ConfigInvalid("ADMIN_PORT must differ from PORT")
	}
	return nil
}

func isValidFormat(format string) bool {
	for _, f := range validFormats {
		if f == format {
			return true
		}
	}
	return false
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
