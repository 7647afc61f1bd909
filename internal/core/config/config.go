// Package config provides configuration management for the Wayfinder
// routing engine.
package config

import "time"

// EngineConfig holds configuration for the routing engine and its
// condition evaluator.
type EngineConfig struct {
	// DatabaseURL selects the backing store (sqlite:// or postgres://).
	DatabaseURL string

	// MaxDepth caps condition AST depth before evaluation.
	MaxDepth int

	// MaxNodes caps condition AST node count before evaluation.
	MaxNodes int

	// ErrorPolicy selects rule-error reporting: "log_and_skip" or "skip".
	ErrorPolicy string

	// EventTimeout bounds a single trigger dispatch, storage included.
	EventTimeout time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogFormat is "text" or "json".
	LogFormat string
}

// DefaultEngineConfig returns configuration with default values.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		DatabaseURL:  "sqlite://wayfinder.db",
		MaxDepth:     64,
		MaxNodes:     512,
		ErrorPolicy:  "log_and_skip",
		EventTimeout: 5 * time.Second,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}
