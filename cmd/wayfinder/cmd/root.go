package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/solatis/wayfinder/internal/condition"
	"github.com/solatis/wayfinder/internal/core/config"
	"github.com/solatis/wayfinder/internal/router"
)

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "wayfinder",
	Short: "Wayfinder adaptive routing engine",
	Long:  `Wayfinder routes learners through branching content documents by evaluating authored pathway rules against session progress.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (text, json)")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadEngineConfig loads the config file and applies persistent flag
// overrides, preserving flags > env > file > defaults precedence.
func loadEngineConfig() (*config.EngineConfig, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

// newLogger builds the process logger from config.
func newLogger(cfg *config.EngineConfig) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// routerConfig translates engine config into router configuration.
func routerConfig(cfg *config.EngineConfig) router.Config {
	rc := router.Config{
		Limits: condition.Limits{MaxDepth: cfg.MaxDepth, MaxNodes: cfg.MaxNodes},
		Policy: router.LogAndSkip,
	}
	if cfg.ErrorPolicy == "skip" {
		rc.Policy = router.SkipSilently
	}
	return rc
}
