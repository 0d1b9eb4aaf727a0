package gateway

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the gateway configuration. It is resolved once at startup
// (file, then environment, then flags) and never mutated afterwards.
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Auth         AuthConfig         `toml:"auth"`
	Upstream     UpstreamConfig     `toml:"upstream"`
	Augmentation AugmentationConfig `toml:"augmentation"`
	Logging      LoggingConfig      `toml:"logging"`
}

// ServerConfig holds the caller-facing listen address.
type ServerConfig struct {
	ListenAddr string `toml:"listen_addr"`
}

// AuthConfig holds the secret callers must present.
type AuthConfig struct {
	APIKey string `toml:"api_key"`
}

// UpstreamConfig points at the LLM backend.
type UpstreamConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

// AugmentationConfig controls the search augmentation pipeline.
type AugmentationConfig struct {
	Enabled bool   `toml:"enabled"`
	Trigger string `toml:"trigger"`
	// SearchURL overrides the arXiv endpoint; empty uses the public API.
	SearchURL string `toml:"search_url"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Debug      bool   `toml:"debug"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// LoadConfig reads a TOML config file (optional) and applies environment
// overrides. Validation is deferred to Validate so callers can layer flag
// overrides first.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			ListenAddr: ":8000",
		},
		Logging: LoggingConfig{
			MaxSizeMB:  50,
			MaxBackups: 3,
		},
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	return cfg, nil
}

// applyEnv layers RELAY_* environment variables over the file values.
// Secrets usually arrive this way rather than in the config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("RELAY_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("RELAY_FRONTEND_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("RELAY_LLM_SERVICE_URL"); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v := os.Getenv("RELAY_LLM_SERVICE_API_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}
}

// Validate checks that the resolved configuration can actually serve
// requests.
func (c *Config) Validate() error {
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required (or RELAY_FRONTEND_API_KEY)")
	}
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is required (or RELAY_LLM_SERVICE_URL)")
	}
	if c.Upstream.APIKey == "" {
		return fmt.Errorf("upstream.api_key is required (or RELAY_LLM_SERVICE_API_KEY)")
	}
	c.Upstream.BaseURL = strings.TrimRight(c.Upstream.BaseURL, "/")
	return nil
}
