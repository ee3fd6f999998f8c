// Package config holds the relaterm client configuration.
// Configuration is read from ~/.relaterm/config.yaml with environment
// variable overrides; missing files fall back to defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all relaterm configuration.
type Config struct {
	// Server is the Relatorio backend the client talks to.
	Server ServerConfig `yaml:"server"`

	// Logging controls the client-side log output.
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the backend connection.
type ServerConfig struct {
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`
	RetryMax int    `yaml:"retry_max"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty = stderr
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:  "http://localhost:8000",
			Timeout:  "15s",
			RetryMax: 2,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(DefaultDir(), "relaterm.log"),
		},
	}
}

// DefaultDir returns the relaterm dot-directory under the user's home.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".relaterm"
	}
	return filepath.Join(home, ".relaterm")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.yaml")
}

// TokenPath returns the path of the persisted session token.
func TokenPath() string {
	return filepath.Join(DefaultDir(), "token")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
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
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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
	if url := os.Getenv("RELATERM_API_URL"); url != "" {
		c.Server.BaseURL = url
	}
	if timeout := os.Getenv("RELATERM_TIMEOUT"); timeout != "" {
		c.Server.Timeout = timeout
	}
	if level := os.Getenv("RELATERM_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetTimeout returns the request timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server base URL not configured (set server.base_url or RELATERM_API_URL)")
	}
	if c.Server.RetryMax < 0 {
		return fmt.Errorf("retry_max must not be negative")
	}
	return nil
}
