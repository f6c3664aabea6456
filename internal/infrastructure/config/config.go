// Package config provides configuration management for progsync.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration for the progsync application.
type Config struct {
	Remote        RemoteConfig        `yaml:"remote"`
	Sync          SyncConfig          `yaml:"sync"`
	Database      DatabaseConfig      `yaml:"database"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// RemoteConfig holds connection settings for the remote workspace API.
type RemoteConfig struct {
	BaseURL         string        `yaml:"base_url"`
	APIToken        string        `yaml:"api_token"`
	WorkspaceID     string        `yaml:"workspace_id"`
	MinCallInterval time.Duration `yaml:"min_call_interval"`
	CallTimeout     time.Duration `yaml:"call_timeout"`
}

// SyncConfig controls queue draining and pull behavior.
type SyncConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	MaxRetries    int           `yaml:"max_retries"`
	RetryMode     string        `yaml:"retry_mode"`
	RetryBackoff  time.Duration `yaml:"retry_backoff"`
	DrainInterval time.Duration `yaml:"drain_interval"`
	PullInterval  time.Duration `yaml:"pull_interval"`
}

// DatabaseConfig holds the local SQLite database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ObservabilityConfig holds observability-related configuration.
type ObservabilityConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	ExporterType string  `yaml:"exporter_type"`
	OTLPEndpoint string  `yaml:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate"`
	ServiceName  string  `yaml:"service_name"`
}

// Default configuration values.
const (
	DefaultRemoteBaseURL   = "https://api.clickup.com/api/v2"
	DefaultMinCallInterval = 1000 * time.Millisecond
	DefaultCallTimeout     = 30 * time.Second

	DefaultBatchSize     = 25
	DefaultMaxRetries    = 3
	DefaultRetryMode     = "manual"
	DefaultRetryBackoff  = 30 * time.Second
	DefaultDrainInterval = 1 * time.Minute
	DefaultPullInterval  = 15 * time.Minute

	DefaultDatabasePath = "progsync.db"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"

	DefaultTracingEnabled      = false
	DefaultTracingExporterType = "stdout"
	DefaultTracingSampleRate   = 1.0
	DefaultTracingServiceName  = "progsync"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json": true,
	"text": true,
}

var validRetryModes = map[string]bool{
	"manual":  true,
	"requeue": true,
}

var validTracingExporterTypes = map[string]bool{
	"none":   true,
	"stdout": true,
	"otlp":   true,
}

// NewDefaultConfig creates a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Remote: RemoteConfig{
			BaseURL:         DefaultRemoteBaseURL,
			MinCallInterval: DefaultMinCallInterval,
			CallTimeout:     DefaultCallTimeout,
		},
		Sync: SyncConfig{
			BatchSize:     DefaultBatchSize,
			MaxRetries:    DefaultMaxRetries,
			RetryMode:     DefaultRetryMode,
			RetryBackoff:  DefaultRetryBackoff,
			DrainInterval: DefaultDrainInterval,
			PullInterval:  DefaultPullInterval,
		},
		Database: DatabaseConfig{
			Path: DefaultDatabasePath,
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Observability: ObservabilityConfig{
			Tracing: TracingConfig{
				Enabled:      DefaultTracingEnabled,
				ExporterType: DefaultTracingExporterType,
				SampleRate:   DefaultTracingSampleRate,
				ServiceName:  DefaultTracingServiceName,
			},
		},
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Remote.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("remote: %w", err))
	}

	if err := c.Sync.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("sync: %w", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("database: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Observability.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("observability: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the RemoteConfig is valid.
func (r *RemoteConfig) Validate() error {
	var errs []error

	if r.BaseURL == "" {
		errs = append(errs, errors.New("base_url is required"))
	} else {
		parsedURL, err := url.Parse(r.BaseURL)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid base_url: %w", err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errs = append(errs, errors.New("base_url must use http or https scheme"))
		}
	}

	if r.MinCallInterval < 0 {
		errs = append(errs, errors.New("min_call_interval must be non-negative"))
	}

	if r.CallTimeout <= 0 {
		errs = append(errs, errors.New("call_timeout must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the SyncConfig is valid.
func (s *SyncConfig) Validate() error {
	var errs []error

	if s.BatchSize <= 0 {
		errs = append(errs, errors.New("batch_size must be positive"))
	}

	if s.MaxRetries < 0 {
		errs = append(errs, errors.New("max_retries must be non-negative"))
	}

	if s.RetryMode != "" && !validRetryModes[s.RetryMode] {
		errs = append(errs, fmt.Errorf("invalid retry_mode %q: must be one of manual, requeue", s.RetryMode))
	}

	if s.RetryMode == "requeue" && s.RetryBackoff <= 0 {
		errs = append(errs, errors.New("retry_backoff must be positive when retry_mode is 'requeue'"))
	}

	if s.DrainInterval <= 0 {
		errs = append(errs, errors.New("drain_interval must be positive"))
	}

	if s.PullInterval <= 0 {
		errs = append(errs, errors.New("pull_interval must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the DatabaseConfig is valid.
func (d *DatabaseConfig) Validate() error {
	if d.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// Validate checks if the LoggingConfig is valid.
func (l *LoggingConfig) Validate() error {
	var errs []error

	if l.Level != "" && !validLogLevels[l.Level] {
		errs = append(errs, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", l.Level))
	}

	if l.Format != "" && !validLogFormats[l.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be one of json, text", l.Format))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Validate checks if the ObservabilityConfig is valid.
func (o *ObservabilityConfig) Validate() error {
	if err := o.Tracing.Validate(); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	return nil
}

// Validate checks if the TracingConfig is valid.
func (t *TracingConfig) Validate() error {
	var errs []error

	if t.Enabled {
		if t.ExporterType != "" && !validTracingExporterTypes[t.ExporterType] {
			errs = append(errs, fmt.Errorf("invalid exporter_type %q: must be one of none, stdout, otlp", t.ExporterType))
		}
		if t.ExporterType == "otlp" && t.OTLPEndpoint == "" {
			errs = append(errs, errors.New("otlp_endpoint is required when exporter_type is 'otlp'"))
		}
		if t.SampleRate < 0 || t.SampleRate > 1 {
			errs = append(errs, errors.New("sample_rate must be between 0.0 and 1.0"))
		}
		if t.ServiceName == "" {
			errs = append(errs, errors.New("service_name is required when tracing is enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
