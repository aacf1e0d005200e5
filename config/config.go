// Package config loads the themisd configuration file.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/blockberries/themis/catalog"
)

// Config holds all themisd configuration.
type Config struct {
	// Server settings
	Server ServerConfig `yaml:"server"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Sources overrides the data source id of an application, keyed
	// by application name. Applications not listed keep their default.
	Sources map[string]int64 `yaml:"sources"`
}

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	ListenAddress string `yaml:"listen_address"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress: "127.0.0.1:26680",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Sources: map[string]int64{},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if addr := os.Getenv("THEMIS_LISTEN_ADDRESS"); addr != "" {
		c.Server.ListenAddress = addr
	}
	if level := os.Getenv("THEMIS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address %q: %w", c.Server.ListenAddress, err)
	}
	if _, err := c.Logging.ZapLevel(); err != nil {
		return err
	}
	if _, err := c.Catalog(); err != nil {
		return err
	}
	return nil
}

// ZapLevel parses the configured log level.
func (l LoggingConfig) ZapLevel() (zapcore.Level, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

// Catalog returns the default source catalog with the configured
// overrides applied.
func (c *Config) Catalog() (*catalog.Catalog, error) {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]catalog.Entry, 0, len(names))
	for _, name := range names {
		app, err := catalog.ParseApplication(name)
		if err != nil {
			return nil, fmt.Errorf("sources: %w", err)
		}
		entries = append(entries, catalog.Entry{Application: app, SourceID: catalog.SourceID(c.Sources[name])})
	}

	cat, err := catalog.Default().Override(entries...)
	if err != nil {
		return nil, fmt.Errorf("sources: %w", err)
	}
	return cat, nil
}
