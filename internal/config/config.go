package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/localrivet/configurator"

	"github.com/localrivet/notesmcp/internal/errortypes"
)

// Config represents the notesmcp configuration
type Config struct {
	// Server contains MCP server identity settings.
	Server struct {
		// Name is the server name advertised to MCP clients.
		Name string `json:"name" env:"SERVER_NAME" validate:"required"`
	} `json:"server"`

	// Store contains note storage configuration.
	Store struct {
		// Backend selects the note store ("memory", "sqlite").
		Backend string `json:"backend" env:"STORE_BACKEND" validate:"required"`
	} `json:"store"`

	// System contains configuration for the OS automation tools.
	System struct {
		// Enabled registers open_settings and set_brightness.
		Enabled bool `json:"enabled" env:"SYSTEM_ENABLED"`

		// TimeoutSeconds bounds each platform command.
		TimeoutSeconds int `json:"timeout_seconds" env:"SYSTEM_TIMEOUT_SECONDS" validate:"min:1"`
	} `json:"system"`

	// Metrics contains Prometheus exposition settings.
	Metrics struct {
		// Enabled starts an HTTP listener serving /metrics.
		Enabled bool `json:"enabled" env:"METRICS_ENABLED"`

		// Addr is the listen address of the metrics endpoint.
		Addr string `json:"addr" env:"METRICS_ADDR"`
	} `json:"metrics"`

	// Logging contains logging-related configuration.
	Logging struct {
		// Level is the minimum log level to display ("debug", "info", "warn", "error").
		Level string `json:"level" env:"LOG_LEVEL" validate:"required"`

		// Format is the log format to use ("text", "json").
		Format string `json:"format" env:"LOG_FORMAT"`
	} `json:"logging"`

	configPath string       `json:"-"`
	mutex      sync.RWMutex `json:"-"`
}

// Default configuration values
const (
	DefaultConfigFilename = ".notesmcpconfig"
	DefaultServerName     = "notesmcp"
	DefaultBackend        = BackendMemory
	DefaultSystemTimeout  = 10
	DefaultMetricsAddr    = "127.0.0.1:9464"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"

	// EnvPrefix prefixes every environment override, e.g. NOTESMCP_LOG_LEVEL.
	EnvPrefix = "NOTESMCP"
)

// Store backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// NewConfig creates a new Config instance with default values
func NewConfig() *Config {
	config := &Config{}
	config.Server.Name = DefaultServerName
	config.Store.Backend = DefaultBackend
	config.System.Enabled = true
	config.System.TimeoutSeconds = DefaultSystemTimeout
	config.Metrics.Addr = DefaultMetricsAddr
	config.Logging.Level = DefaultLogLevel
	config.Logging.Format = DefaultLogFormat
	return config
}

// LoadConfigWithPath loads the configuration from a specific path. A missing
// file yields the defaults. Environment variables override file values.
func LoadConfigWithPath(configPath string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cfg := NewConfig()

	if configPath == DefaultConfigFilename {
		foundPath, err := configurator.FindConfigFile(configPath)
		if err == nil {
			configPath = foundPath
			logger.Debug("Found config file", "path", foundPath)
		}
	}

	loader := configurator.New(logger).
		WithProvider(configurator.NewDefaultProvider())

	if _, err := os.Stat(configPath); err == nil {
		logger.Info("Loading configuration", "path", configPath)
		loader = loader.WithProvider(configurator.NewFileProvider(configPath))
	} else {
		logger.Info("Config file not found, using defaults and environment", "path", configPath)
	}

	loader = loader.
		WithProvider(configurator.NewEnvProvider(EnvPrefix)).
		WithValidator(configurator.NewDefaultValidator())

	if err := loader.Load(context.Background(), cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.configPath = configPath

	return cfg, nil
}

// Validate checks the values configurator's tag validator cannot express.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return errortypes.ValidationError(fmt.Errorf("unknown store backend %q", c.Store.Backend), "invalid store.backend").
			WithField("backend", c.Store.Backend)
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errortypes.ValidationError(errors.New("metrics.addr is empty"), "metrics.addr is required when metrics are enabled")
	}
	return nil
}

// SystemTimeout returns the per-command timeout of the OS automation tools.
func (c *Config) SystemTimeout() time.Duration {
	return time.Duration(c.System.TimeoutSeconds) * time.Second
}

// SaveToFile saves the configuration to the specified file
func (c *Config) SaveToFile(path string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := configurator.SaveToFile(c, path, configurator.FormatJSON); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	c.configPath = path

	return nil
}

// GetConfigPath returns the path of the currently loaded configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}
