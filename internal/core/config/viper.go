package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*EngineConfig, error) {
	v := viper.New()

	// Set defaults matching DefaultEngineConfig
	v.SetDefault("engine.database_url", "sqlite://wayfinder.db")
	v.SetDefault("engine.max_depth", 64)
	v.SetDefault("engine.max_nodes", 512)
	v.SetDefault("engine.error_policy", "log_and_skip")
	v.SetDefault("engine.event_timeout", "5s")
	v.SetDefault("engine.log_level", "info")
	v.SetDefault("engine.log_format", "text")

	// Bind environment variables with WF_ prefix
	v.SetEnvPrefix("WF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &EngineConfig{
		DatabaseURL:  v.GetString("engine.database_url"),
		MaxDepth:     v.GetInt("engine.max_depth"),
		MaxNodes:     v.GetInt("engine.max_nodes"),
		ErrorPolicy:  v.GetString("engine.error_policy"),
		EventTimeout: v.GetDuration("engine.event_timeout"),
		LogLevel:     v.GetString("engine.log_level"),
		LogFormat:    v.GetString("engine.log_format"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks limits are positive and enums are known.
func validateConfig(cfg *EngineConfig) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("database_url must not be empty")
	}
	if cfg.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", cfg.MaxDepth)
	}
	if cfg.MaxNodes <= 0 {
		return fmt.Errorf("max_nodes must be positive, got %d", cfg.MaxNodes)
	}
	switch cfg.ErrorPolicy {
	case "log_and_skip", "skip":
	default:
		return fmt.Errorf("error_policy must be log_and_skip or skip, got %q", cfg.ErrorPolicy)
	}
	if cfg.EventTimeout <= 0 {
		return fmt.Errorf("event_timeout must be positive, got %v", cfg.EventTimeout)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", cfg.LogFormat)
	}
	return nil
}
