package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}

	def := DefaultEngineConfig()
	if cfg.DatabaseURL != def.DatabaseURL {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, def.DatabaseURL)
	}
	if cfg.MaxDepth != 64 {
		t.Errorf("MaxDepth = %d, want 64", cfg.MaxDepth)
	}
	if cfg.MaxNodes != 512 {
		t.Errorf("MaxNodes = %d, want 512", cfg.MaxNodes)
	}
	if cfg.ErrorPolicy != "log_and_skip" {
		t.Errorf("ErrorPolicy = %q, want log_and_skip", cfg.ErrorPolicy)
	}
	if cfg.EventTimeout != 5*time.Second {
		t.Errorf("EventTimeout = %v, want 5s", cfg.EventTimeout)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("WF_ENGINE_MAX_DEPTH", "32")
	t.Setenv("WF_ENGINE_ERROR_POLICY", "skip")
	t.Setenv("WF_ENGINE_LOG_FORMAT", "json")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.MaxDepth != 32 {
		t.Errorf("MaxDepth = %d, want 32", cfg.MaxDepth)
	}
	if cfg.ErrorPolicy != "skip" {
		t.Errorf("ErrorPolicy = %q, want skip", cfg.ErrorPolicy)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wayfinder.yaml")
	content := []byte(`
engine:
  database_url: postgres://wf@localhost/wayfinder?sslmode=disable
  max_nodes: 256
  event_timeout: 10s
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v, want nil", err)
	}
	if cfg.DatabaseURL != "postgres://wf@localhost/wayfinder?sslmode=disable" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.MaxNodes != 256 {
		t.Errorf("MaxNodes = %d, want 256", cfg.MaxNodes)
	}
	if cfg.EventTimeout != 10*time.Second {
		t.Errorf("EventTimeout = %v, want 10s", cfg.EventTimeout)
	}
	// Unset keys keep defaults.
	if cfg.MaxDepth != 64 {
		t.Errorf("MaxDepth = %d, want 64", cfg.MaxDepth)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/wayfinder.yaml"); err == nil {
		t.Errorf("LoadConfig() error = nil, want error")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*EngineConfig)
	}{
		{name: "empty database url", mutate: func(c *EngineConfig) { c.DatabaseURL = "" }},
		{name: "zero max depth", mutate: func(c *EngineConfig) { c.MaxDepth = 0 }},
		{name: "negative max nodes", mutate: func(c *EngineConfig) { c.MaxNodes = -1 }},
		{name: "unknown error policy", mutate: func(c *EngineConfig) { c.ErrorPolicy = "crash" }},
		{name: "zero event timeout", mutate: func(c *EngineConfig) { c.EventTimeout = 0 }},
		{name: "unknown log level", mutate: func(c *EngineConfig) { c.LogLevel = "trace" }},
		{name: "unknown log format", mutate: func(c *EngineConfig) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultEngineConfig()
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Errorf("validateConfig() error = nil, want error")
			}
		})
	}

	if err := validateConfig(DefaultEngineConfig()); err != nil {
		t.Errorf("validateConfig(defaults) error = %v, want nil", err)
	}
}
