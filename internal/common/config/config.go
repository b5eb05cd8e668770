// Package config provides configuration management for dirbridge
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Service identification
	ServiceName string `mapstructure:"service_name"`
	Environment string `mapstructure:"environment"`
	Port        int    `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`

	// Database connections. An empty database_url selects the in-memory
	// store, which is for development and tests only.
	DatabaseURL string `mapstructure:"database_url"`
	RedisURL    string `mapstructure:"redis_url"`

	// Shared secret presented by SCIM clients and the session layer
	SCIMToken string `mapstructure:"scim_token"`

	// Feature flags
	EnableRateLimit bool `mapstructure:"enable_rate_limit"`

	// Rate limiting (requests per window, window in seconds)
	RateLimitRequests      int `mapstructure:"rate_limit_requests"`
	RateLimitWindow        int `mapstructure:"rate_limit_window"`
	LoginRateLimitRequests int `mapstructure:"login_rate_limit_requests"`
	LoginRateLimitWindow   int `mapstructure:"login_rate_limit_window"`
}

// Load reads configuration from file and environment variables
func Load(serviceName string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("/etc/dirbridge")

	// Config file is optional
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Read from environment variables
	v.SetEnvPrefix("DIRBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Also support non-prefixed env vars for common settings
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.ServiceName = serviceName

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("port", 8003)

	v.SetDefault("database_url", "")
	v.SetDefault("redis_url", "")

	v.SetDefault("enable_rate_limit", true)
	v.SetDefault("rate_limit_requests", 100)
	v.SetDefault("rate_limit_window", 60)
	v.SetDefault("login_rate_limit_requests", 20)
	v.SetDefault("login_rate_limit_window", 60)
}

func bindEnvVars(v *viper.Viper) {
	envMappings := map[string]string{
		"database_url": "DATABASE_URL",
		"redis_url":    "REDIS_URL",
		"environment":  "APP_ENV",
		"log_level":    "LOG_LEVEL",
		"port":         "PORT",
		"scim_token":   "SCIM_TOKEN",
	}

	for key, env := range envMappings {
		v.BindEnv(key, env)
	}
}

func validate(cfg *Config) error {
	if cfg.SCIMToken == "" {
		return fmt.Errorf("scim_token is required")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.IsProduction() && cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url is required in production")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}
