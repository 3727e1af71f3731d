// Package server provides the MCP server implementation for the notesmcp service.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/localrivet/gomcp/server"

	"github.com/localrivet/notesmcp/internal/errortypes"
	"github.com/localrivet/notesmcp/internal/notestore"
	"github.com/localrivet/notesmcp/internal/system"
	"github.com/localrivet/notesmcp/internal/telemetry"
	"github.com/localrivet/notesmcp/internal/tools"
)

// Common server error types
var (
	ErrServerNotInitialized = errors.New("server not initialized")
	ErrMissingDependencies  = errors.New("one or more required dependencies are nil")
)

// DefaultName is the server name advertised when Options.Name is empty.
const DefaultName = "notesmcp"

// Options configures a NoteToolServer.
type Options struct {
	// Name is advertised to MCP clients.
	Name string

	// Controller backs open_settings and set_brightness. Nil leaves the
	// automation tools unregistered.
	Controller system.Controller

	// Metrics records tool calls. Nil creates a private collector.
	Metrics *telemetry.MetricsCollector

	// MetricsAddr, when set, serves Prometheus metrics over HTTP while running.
	MetricsAddr string

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

var _ ToolServer = (*NoteToolServer)(nil)

// NoteToolServer implements the ToolServer interface for the note store
// tools, the demo extras and the OS automation tools.
type NoteToolServer struct {
	store      notestore.Store
	controller system.Controller
	metrics    *telemetry.MetricsCollector
	logger     *slog.Logger
	name       string

	metricsAddr   string
	metricsServer *telemetry.MetricsServer

	// ctx bounds platform commands and is cancelled by Stop.
	ctx    context.Context
	cancel context.CancelFunc

	mcpServer server.Server
}

// NewNoteToolServer creates a new NoteToolServer instance.
func NewNoteToolServer(store notestore.Store, opts Options) *NoteToolServer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetricsCollector()
	}
	name := opts.Name
	if name == "" {
		name = DefaultName
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &NoteToolServer{
		store:       store,
		controller:  opts.Controller,
		metrics:     metrics,
		logger:      logger.With("component", "server"),
		name:        name,
		metricsAddr: opts.MetricsAddr,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Initialize builds the MCP server and registers every tool, the greeting
// resource and the greeting prompts.
func (s *NoteToolServer) Initialize() error {
	s.logger.Info("Initializing MCP note tool server", "name", s.name)

	if s.store == nil {
		return errortypes.ConfigError(ErrMissingDependencies, "server initialization failed")
	}

	srv := server.NewServer(s.name, server.WithLogger(s.logger))
	srv = s.Register(srv)

	s.mcpServer = srv
	s.logger.Info("MCP note tool server initialized", "automation", s.controller != nil)
	return nil
}

// Register adds the notesmcp tools, resource and prompts to srv. It lets
// other gomcp servers embed the note tools.
func (s *NoteToolServer) Register(srv server.Server) server.Server {
	srv = srv.Tool(tools.ToolCreateNote, "Create a new note with optional comma-separated tags",
		s.handleCreateNote)
	srv = srv.Tool(tools.ToolUpdateNote, "Update an existing note; omitted fields are left unchanged",
		s.handleUpdateNote)
	srv = srv.Tool(tools.ToolDeleteNote, "Delete a note by ID",
		s.handleDeleteNote)
	srv = srv.Tool(tools.ToolGetNote, "Retrieve a note by ID",
		s.handleGetNote)
	srv = srv.Tool(tools.ToolListNotes, "List all notes, optionally filtered by tag",
		s.handleListNotes)
	srv = srv.Tool(tools.ToolSearchNotes, "Search notes by title or content",
		s.handleSearchNotes)

	srv = srv.Tool(tools.ToolAdd, "Add two numbers", s.handleAdd)
	srv = srv.Resource(tools.ResourceGreeting, "Get a personalized greeting", s.handleGreeting)
	srv = srv.Prompt(tools.PromptGreetUser, "Generate a friendly greeting prompt",
		server.User(tools.GreetingPrompt("{{name}}", tools.StyleFriendly)))
	srv = srv.Prompt(tools.PromptGreetUser+"_"+tools.StyleFormal, "Generate a formal greeting prompt",
		server.User(tools.GreetingPrompt("{{name}}", tools.StyleFormal)))
	srv = srv.Prompt(tools.PromptGreetUser+"_"+tools.StyleCasual, "Generate a casual greeting prompt",
		server.User(tools.GreetingPrompt("{{name}}", tools.StyleCasual)))

	if s.controller != nil {
		srv = srv.Tool(tools.ToolOpenSettings, "Open system settings or control panel",
			s.handleOpenSettings)
		srv = srv.Tool(tools.ToolSetBrightness, "Set display brightness (best-effort per OS)",
			s.handleSetBrightness)
	}

	return srv
}

// Start starts the metrics listener, when configured, and then serves MCP
// over stdio until stdin closes.
func (s *NoteToolServer) Start() error {
	if s.mcpServer == nil {
		return errortypes.ConfigError(ErrServerNotInitialized, "cannot start server")
	}

	if s.metricsAddr != "" {
		ms, err := telemetry.StartMetricsServer(s.metricsAddr, s.metrics, s.logger)
		if err != nil {
			return errortypes.ConfigError(err, "failed to start metrics server").
				WithField("addr", s.metricsAddr)
		}
		s.metricsServer = ms
	}

	s.logger.Info("Starting MCP note tool server on stdio")
	return s.mcpServer.AsStdio().Run()
}

// Stop cancels in-flight platform commands and shuts down the metrics listener.
func (s *NoteToolServer) Stop() error {
	s.logger.Info("Stopping MCP note tool server")
	s.cancel()

	s.logger.Debug(s.metrics.GetReport())

	if s.metricsServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.metricsServer.Shutdown(ctx)
	s.metricsServer = nil
	return err
}

// Metrics returns the collector recording this server's tool calls.
func (s *NoteToolServer) Metrics() *telemetry.MetricsCollector {
	return s.metrics
}

// observe records a finished tool call.
func (s *NoteToolServer) observe(tool string, start time.Time, ok bool) {
	s.metrics.ObserveCall(tool, time.Since(start), ok)
}

// refreshNoteCount keeps the note gauge in step after a mutation.
func (s *NoteToolServer) refreshNoteCount() {
	count, err := s.store.Count()
	if err != nil {
		errortypes.LogError(s.logger, err)
		return
	}
	s.metrics.SetNoteCount(count)
}

// failureMessage turns a store error into the text returned to callers. A
// missing note yields "Note N not found"; other errors are logged.
func (s *NoteToolServer) failureMessage(err error) string {
	var appErr *errortypes.AppError
	if errortypes.IsNotFoundError(err) && errors.As(err, &appErr) {
		s.logger.Debug("Note not found", "error", appErr.Message)
		return appErr.Message
	}
	errortypes.LogError(s.logger, err)
	return err.Error()
}
