package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the whole application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Provider  ProviderConfig  `mapstructure:"provider"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	Level string `mapstructure:"level"`
}

// ProviderConfig configures the Opendatasoft portal connection.
type ProviderConfig struct {
	// BaseURL is the portal root, without a trailing slash.
	BaseURL string `mapstructure:"base_url"`
	// Dataset is the dataset slug to query.
	Dataset string `mapstructure:"dataset"`
	// APIKey is optional; requests are anonymous when empty.
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// PreferExplore selects which dialect is tried first.
	PreferExplore bool `mapstructure:"prefer_explore"`
}

// CacheConfig configures the in-process caches.
type CacheConfig struct {
	ResultsTTLSeconds int `mapstructure:"results_ttl_seconds"`
	SchemaTTLSeconds  int `mapstructure:"schema_ttl_seconds"`
}

// TelemetryConfig configures tracing export.
type TelemetryConfig struct {
	TracingEndpoint string `mapstructure:"tracing_endpoint"`
	TracingInsecure bool   `mapstructure:"tracing_insecure"`
}

// Timeout returns the provider HTTP timeout as a duration.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// ResultsTTL returns the results cache TTL as a duration.
func (c CacheConfig) ResultsTTL() time.Duration {
	return time.Duration(c.ResultsTTLSeconds) * time.Second
}

// SchemaTTL returns the schema memo TTL as a duration.
func (c CacheConfig) SchemaTTL() time.Duration {
	return time.Duration(c.SchemaTTLSeconds) * time.Second
}

// Load reads the configuration from an optional config.yaml in path, with
// environment variables (prefix BOAMP, dots replaced by underscores) taking
// precedence over file values and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8000)
	v.SetDefault("logger.level", "info")
	v.SetDefault("provider.base_url", "https://boamp-datadila.opendatasoft.com")
	v.SetDefault("provider.dataset", "boamp")
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.timeout_seconds", 30)
	v.SetDefault("provider.prefer_explore", true)
	v.SetDefault("cache.results_ttl_seconds", 60)
	v.SetDefault("cache.schema_ttl_seconds", 600)
	v.SetDefault("telemetry.tracing_endpoint", "")
	v.SetDefault("telemetry.tracing_insecure", false)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("BOAMP")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Provider.BaseURL = strings.TrimRight(cfg.Provider.BaseURL, "/")

	return &cfg, nil
}
