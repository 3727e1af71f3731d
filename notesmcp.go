// Package notesmcp is a demonstration MCP server exposing an in-memory note
// store and best-effort OS automation tools.
package notesmcp

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/localrivet/notesmcp/internal/config"
	"github.com/localrivet/notesmcp/internal/errortypes"
	"github.com/localrivet/notesmcp/internal/notestore"
	"github.com/localrivet/notesmcp/internal/server"
	"github.com/localrivet/notesmcp/internal/system"
	"github.com/localrivet/notesmcp/internal/telemetry"
)

// Version is the notesmcp release version.
const Version = "0.1.0"

// Config represents the configuration for the notesmcp service.
type Config = config.Config

// Server represents the notesmcp service.
type Server struct {
	config     *config.Config
	store      notestore.Store
	controller system.Controller
	toolServer *server.NoteToolServer
	logger     *slog.Logger

	stopOnce sync.Once
	stopErr  error
}

// ServerOptions defines the options for creating a new Server.
type ServerOptions struct {
	Config     *Config      // Pre-filled config. If nil, ConfigPath is used.
	ConfigPath string       // Path to config file. Used if Config is nil. If both are empty, DefaultConfig() is used.
	Logger     *slog.Logger // External logger. If nil, slog.Default() is used.
}

// NewServer creates a new notesmcp Server with the given options.
func NewServer(opts ServerOptions) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var cfg *Config
	var err error

	if opts.Config != nil {
		cfg = opts.Config
		logger.Info("Using provided Config object for server initialization")
	} else if opts.ConfigPath != "" {
		logger.Info("Loading configuration for server initialization", "path", opts.ConfigPath)
		cfg, err = config.LoadConfigWithPath(opts.ConfigPath, logger)
		if err != nil {
			return nil, errortypes.ConfigError(err, "Failed to load configuration from path: "+opts.ConfigPath)
		}
	} else {
		logger.Warn("No Config object or ConfigPath provided, using default configuration")
		cfg = DefaultConfig()
	}

	store, controller, err := CreateComponents(cfg, logger)
	if err != nil {
		logger.Error("Failed to create components during server initialization", "error", err)
		return nil, err
	}

	metricsAddr := ""
	if cfg.Metrics.Enabled {
		metricsAddr = cfg.Metrics.Addr
	}

	toolServer := server.NewNoteToolServer(store, server.Options{
		Name:        cfg.Server.Name,
		Controller:  controller,
		Metrics:     telemetry.NewMetricsCollector(),
		MetricsAddr: metricsAddr,
		Logger:      logger,
	})
	if err := toolServer.Initialize(); err != nil {
		store.Close()
		return nil, errortypes.ConfigError(err, "Failed to initialize MCP note tool server")
	}

	logger.Info("notesmcp server successfully initialized", "backend", cfg.Store.Backend)
	return &Server{
		config:     cfg,
		store:      store,
		controller: controller,
		toolServer: toolServer,
		logger:     logger,
	}, nil
}

// DefaultConfig returns the default configuration for the notesmcp service.
func DefaultConfig() *Config {
	return config.NewConfig()
}

// Start serves MCP over stdio. It blocks until the client disconnects.
func (s *Server) Start() error {
	s.logger.Info("Starting notesmcp service")
	return s.toolServer.Start()
}

// Stop stops the service and discards the note store. Only the first call
// has any effect.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		s.stopErr = s.stop()
	})
	return s.stopErr
}

func (s *Server) stop() error {
	s.logger.Info("Stopping notesmcp service")
	if err := s.toolServer.Stop(); err != nil {
		s.logger.Error("Error stopping tool server", "error", err)
		return err
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("Failed to close store", "error", err)
		return err
	}

	s.logger.Info("notesmcp service stopped")
	return nil
}

// GetStore returns the note store used by the server.
func (s *Server) GetStore() notestore.Store {
	return s.store
}

// CreateComponents builds the note store and, when enabled, the OS
// automation controller for the host platform.
func CreateComponents(cfg *Config, logger *slog.Logger) (notestore.Store, system.Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := NewStore(cfg.Store.Backend)
	if err != nil {
		logger.Error("Failed to initialize note store", "backend", cfg.Store.Backend, "error", err)
		return nil, nil, err
	}
	logger.Info("Note store initialized", "backend", cfg.Store.Backend)

	var controller system.Controller
	if cfg.System.Enabled {
		controller = system.New(runtime.GOOS, system.NewExecRunner(cfg.SystemTimeout()), logger)
		logger.Info("OS automation enabled", "platform", controller.Platform())
	}

	return store, controller, nil
}

// NewStore creates the note store for backend ("memory" or "sqlite").
func NewStore(backend string) (notestore.Store, error) {
	switch backend {
	case config.BackendMemory, "":
		return notestore.NewMemoryStore(), nil
	case config.BackendSQLite:
		store := notestore.NewSQLiteStore()
		if err := store.Initialize(notestore.MemoryDSN); err != nil {
			return nil, errortypes.DatabaseError(err, "Failed to initialize SQLite note store")
		}
		return store, nil
	default:
		return nil, errortypes.ConfigError(nil, "unknown store backend").WithField("backend", backend)
	}
}
