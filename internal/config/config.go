package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"parceldash/internal/errors"
)

// Server variants
const (
	VariantChi = "chi"
	VariantGin = "gin"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Dashboard DashboardConfig
	Reports   ReportsConfig
	LogLevel  string
}

// ServerConfig holds static file server settings
type ServerConfig struct {
	Port       string
	Variant    string
	StaticRoot string // empty serves the embedded assets
	GinMode    string
	// CORSEnabled adds Access-Control-Allow-Origin: * on the gin variant
	CORSEnabled bool
}

// DataConfig holds dataset source settings
type DataConfig struct {
	DatasetFile string // empty loads the bundled seed
}

// DashboardConfig holds view-model defaults
type DashboardConfig struct {
	DefaultTab       string
	DefaultMetric    string
	DefaultChartType string
	SearchDebounce   time.Duration
}

// ReportsConfig holds optional report history persistence
type ReportsConfig struct {
	Driver string // postgres or sqlite
	DSN    string
}

// Enabled reports whether report persistence is configured
func (r ReportsConfig) Enabled() bool {
	return r.DSN != ""
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Dashboard: *loadDashboardConfig(),
		Reports:   *loadReportsConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:        getEnvOrDefault("PORT", "3000"),
		Variant:     strings.ToLower(getEnvOrDefault("SERVER_VARIANT", VariantChi)),
		StaticRoot:  getEnvOrDefault("STATIC_ROOT", ""),
		GinMode:     getEnvOrDefault("GIN_MODE", "release"),
		CORSEnabled: getEnvBoolOrDefault("CORS_ENABLED", true),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		DatasetFile: getEnvOrDefault("DATASET_FILE", ""),
	}
}

func loadDashboardConfig() *DashboardConfig {
	return &DashboardConfig{
		DefaultTab:       strings.ToLower(getEnvOrDefault("DEFAULT_TAB", "overview")),
		DefaultMetric:    strings.ToLower(getEnvOrDefault("DEFAULT_METRIC", "individual")),
		DefaultChartType: strings.ToLower(getEnvOrDefault("DEFAULT_CHART_TYPE", "bar")),
		SearchDebounce:   getEnvDurationOrDefault("SEARCH_DEBOUNCE", 300*time.Millisecond),
	}
}

func loadReportsConfig() *ReportsConfig {
	return &ReportsConfig{
		Driver: strings.ToLower(getEnvOrDefault("REPORTS_DB_DRIVER", "sqlite")),
		DSN:    getEnvOrDefault("REPORTS_DB_DSN", ""),
	}
}

// Validate re-checks the configuration after flag overrides
func (c *Config) Validate() error {
	if err := validateConfig(c); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}
	return nil
}

func validateConfig(config *Config) error {
	port, err := strconv.Atoi(config.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return errors.ConfigInvalid("PORT must be a number between 1 and 65535")
	}
	switch config.Server.Variant {
	case VariantChi, VariantGin:
	default:
		return errors.ConfigInvalid("SERVER_VARIANT must be chi or gin")
	}
	if config.Dashboard.SearchDebounce < 0 {
		return errors.ConfigInvalid("SEARCH_DEBOUNCE cannot be negative")
	}
	if config.Reports.Enabled() {
		switch config.Reports.Driver {
		case "postgres", "sqlite":
		default:
			return errors.ConfigInvalid("REPORTS_DB_DRIVER must be postgres or sqlite")
		}
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
