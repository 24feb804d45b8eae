package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/CTAG07/coldframe/pkg/freeze"
	"github.com/CTAG07/coldframe/pkg/site"
	"github.com/CTAG07/coldframe/pkg/templating"
	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the HTTP server.
type ServerConfig struct {
	ServerAddr        string `json:"server_addr"`
	LogLevel          string `json:"log_level"`
	EnableStats       bool   `json:"enable_stats"`
	StatsDatabasePath string `json:"stats_database_path"`
	EnableMetrics     bool   `json:"enable_metrics"`
	WatchTemplates    bool   `json:"watch_templates"`
	ShutdownTimeoutMs int    `json:"shutdown_timeout_ms"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	Server    *ServerConfig              `json:"server_config"`
	Site      *site.Config               `json:"site_config"`
	Templates *templating.TemplateConfig `json:"template_config"`
	Freeze    *freeze.Config             `json:"freeze_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:        ":5000",
		LogLevel:          "info",
		EnableStats:       false,
		StatsDatabasePath: "./data/site_stats.db",
		EnableMetrics:     false,
		WatchTemplates:    false,
		ShutdownTimeoutMs: 10000,
	}
}

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	templates := templating.DefaultConfig()
	return &Config{
		Server:    DefaultServerConfig(),
		Site:      site.DefaultConfig(),
		Templates: &templates,
		Freeze:    freeze.DefaultConfig(),
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
// Environment overrides, including those from a .env file, are applied last.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		var data []byte
		data, err = json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal default config: %w", err)
		}
		if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
			// The site can still run with defaults.
			slog.Warn("Failed to write default config file", "path", path, "error", err)
		}
	} else if err = json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.fillDefaults()
	if err = config.applyEnv(".env"); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv loads envFile if it exists and applies SITE_* overrides.
func (c *Config) applyEnv(envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	if v := os.Getenv("SITE_ADDR"); v != "" {
		c.Server.ServerAddr = v
	}
	if v := os.Getenv("SITE_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("SITE_STATIC_DIR"); v != "" {
		c.Site.StaticDir = v
	}
	if v := os.Getenv("SITE_TEMPLATE_DIR"); v != "" {
		c.Site.TemplateDir = v
	}
	if v := os.Getenv("SITE_OUTPUT_DIR"); v != "" {
		c.Freeze.OutputDir = v
	}
	return nil
}

// fillDefaults replaces sections a partial config file left out.
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.Server == nil {
		c.Server = defaults.Server
	}
	if c.Site == nil {
		c.Site = defaults.Site
	}
	if c.Templates == nil {
		c.Templates = defaults.Templates
	}
	if c.Freeze == nil {
		c.Freeze = defaults.Freeze
	}
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
