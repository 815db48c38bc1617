package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rronkkeli/md2htm/internal/logfields"
)

// DefaultPath is consulted when no configuration file is given explicitly.
const DefaultPath = "/etc/md2htm/config.yaml"

// DefaultSocketPath is where the render daemon listens unless configured
// otherwise.
const DefaultSocketPath = "/run/mdserv/mdserv.sock"

// DefaultMaxRequestBytes caps a single daemon request payload.
const DefaultMaxRequestBytes = 32 << 20

// Config represents the application configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Render  RenderConfig  `yaml:"render"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
	Events  EventsConfig  `yaml:"events"`
}

// RenderConfig tunes the conversion pipeline shared by the CLI and the
// daemon.
type RenderConfig struct {
	// MaxDepth bounds formatting nesting; zero keeps the built-in limit.
	MaxDepth int `yaml:"max_depth"`
	// StripFrontmatter removes a YAML/TOML frontmatter block before
	// conversion.
	StripFrontmatter bool `yaml:"strip_frontmatter"`
	// Sanitize runs the rendered fragment through the UGC sanitizer.
	Sanitize bool `yaml:"sanitize"`
}

// DaemonConfig configures the unix socket server.
type DaemonConfig struct {
	SocketPath      string `yaml:"socket_path"`
	MaxRequestBytes int64  `yaml:"max_request_bytes"`
	// Durations are strings in "30s" form, parsed during validation.
	RequestTimeout string `yaml:"request_timeout"`
	StopTimeout    string `yaml:"stop_timeout"`
}

// CacheConfig configures the content-addressed render cache.
type CacheConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	TTL           string `yaml:"ttl"`
	PruneInterval string `yaml:"prune_interval"`
}

// MetricsConfig configures the optional HTTP endpoint exposing Prometheus
// metrics and health.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// EventsConfig configures optional render-event publishing over NATS.
type EventsConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from the specified file. An empty path selects
// DefaultPath and tolerates its absence; an explicitly given path must
// exist. Environment variables referenced in the YAML are expanded, and a
// .env file in the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	loadEnvFile()

	explicit := configPath != ""
	if !explicit {
		configPath = DefaultPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env-style file it finds. Existing process
// environment variables are not overwritten.
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("could not load env file", logfields.Source(envPath), logfields.Error(err))
		}
		return
	}
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.Daemon.SocketPath == "" {
		c.Daemon.SocketPath = DefaultSocketPath
	}
	if c.Daemon.MaxRequestBytes == 0 {
		c.Daemon.MaxRequestBytes = DefaultMaxRequestBytes
	}
	if c.Daemon.RequestTimeout == "" {
		c.Daemon.RequestTimeout = "30s"
	}
	if c.Daemon.StopTimeout == "" {
		c.Daemon.StopTimeout = "30s"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = "md2htm-cache.db"
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "24h"
	}
	if c.Cache.PruneInterval == "" {
		c.Cache.PruneInterval = "1h"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = "127.0.0.1:9090"
	}
	if c.Events.URL == "" {
		c.Events.URL = "nats://127.0.0.1:4222"
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "md2htm.render"
	}
}

// Validate checks cross-field consistency and duration syntax.
func (c *Config) Validate() error {
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))

	if c.Render.MaxDepth < 0 {
		return fmt.Errorf("render.max_depth must not be negative, got %d", c.Render.MaxDepth)
	}
	if c.Daemon.MaxRequestBytes <= 0 {
		return fmt.Errorf("daemon.max_request_bytes must be positive, got %d", c.Daemon.MaxRequestBytes)
	}
	if _, err := time.ParseDuration(c.Daemon.RequestTimeout); err != nil {
		return fmt.Errorf("invalid daemon.request_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Daemon.StopTimeout); err != nil {
		return fmt.Errorf("invalid daemon.stop_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache.ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.Cache.PruneInterval); err != nil {
		return fmt.Errorf("invalid cache.prune_interval: %w", err)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics.addr is required when metrics are enabled")
	}
	if c.Events.Enabled && c.Events.URL == "" {
		return fmt.Errorf("events.url is required when events are enabled")
	}
	return nil
}

// RequestTimeoutDuration returns the parsed request timeout. Validate has
// already checked the syntax.
func (d DaemonConfig) RequestTimeoutDuration() time.Duration {
	return parseDuration(d.RequestTimeout, 30*time.Second)
}

// StopTimeoutDuration returns the parsed shutdown grace period.
func (d DaemonConfig) StopTimeoutDuration() time.Duration {
	return parseDuration(d.StopTimeout, 30*time.Second)
}

// TTLDuration returns the parsed cache entry lifetime.
func (c CacheConfig) TTLDuration() time.Duration {
	return parseDuration(c.TTL, 24*time.Hour)
}

// PruneIntervalDuration returns the parsed cadence of cache pruning.
func (c CacheConfig) PruneIntervalDuration() time.Duration {
	return parseDuration(c.PruneInterval, time.Hour)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
