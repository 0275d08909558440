// Package config loads and validates the gateway's process configuration.
//
// Configuration is resolved in three layers: built-in defaults, an optional
// YAML file, and INSIGHTD_-prefixed environment variables, with later layers
// winning.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound = errors.New("configuration file not found")
	ErrInvalidYAML  = errors.New("invalid YAML syntax")
	ErrInvalid      = errors.New("invalid configuration")
)

// nameSegmentRe constrains the prefix and namespace so that every qualified
// metric name stays a valid Prometheus identifier.
var nameSegmentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// ReadTimeout and WriteTimeout are in seconds.
	ReadTimeout  int `yaml:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout"`
}

// MetricsConfig holds the settings of the metric registry.
type MetricsConfig struct {
	// Endpoint is the path the exposition snapshot is served on.
	Endpoint string `yaml:"endpoint"`

	// Prefix and Namespace qualify every pushed metric name as
	// <prefix>_<namespace>_<name>.
	Prefix    string `yaml:"prefix"`
	Namespace string `yaml:"namespace"`
}

// LoggingConfig holds log level and format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the root configuration for the gateway process.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Metrics: MetricsConfig{
			Endpoint:  "/metrics",
			Prefix:    "app",
			Namespace: "insightd",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load resolves the effective configuration. An empty path skips the file
// layer entirely; a non-empty path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays INSIGHTD_-prefixed environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("INSIGHTD_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("INSIGHTD_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("INSIGHTD_METRICS_ENDPOINT"); v != "" {
		c.Metrics.Endpoint = v
	}
	if v := os.Getenv("INSIGHTD_METRICS_PREFIX"); v != "" {
		c.Metrics.Prefix = v
	}
	if v := os.Getenv("INSIGHTD_METRICS_NAMESPACE"); v != "" {
		c.Metrics.Namespace = v
	}
	if v := os.Getenv("INSIGHTD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("INSIGHTD_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

// Validate checks that the resolved configuration is usable.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalid, c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return fmt.Errorf("%w: server timeouts cannot be negative", ErrInvalid)
	}
	if c.Metrics.Endpoint == "" || c.Metrics.Endpoint[0] != '/' {
		return fmt.Errorf("%w: metrics endpoint %q must start with /", ErrInvalid, c.Metrics.Endpoint)
	}
	if !nameSegmentRe.MatchString(c.Metrics.Prefix) {
		return fmt.Errorf("%w: metrics prefix %q must match [a-zA-Z_][a-zA-Z0-9_]*", ErrInvalid, c.Metrics.Prefix)
	}
	if !nameSegmentRe.MatchString(c.Metrics.Namespace) {
		return fmt.Errorf("%w: metrics namespace %q must match [a-zA-Z_][a-zA-Z0-9_]*", ErrInvalid, c.Metrics.Namespace)
	}
	return nil
}

// Addr returns the host:port address the server listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
