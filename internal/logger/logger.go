// Package logger builds the slog loggers used across notesmcp.
//
// Logs never go to stdout: the stdio transport owns it for MCP frames.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the slog handler.
type Format string

// Supported formats
const (
	TEXT Format = "text"
	JSON Format = "json"
)

// Config holds configuration options for the logger
type Config struct {
	Level  slog.Level
	Format Format
	Output io.Writer
	// Service is attached to every record as the "service" attribute.
	Service string
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() *Config {
	return &Config{
		Level:   slog.LevelInfo,
		Format:  TEXT,
		Output:  os.Stderr,
		Service: "notesmcp",
	}
}

// New creates a logger with the given configuration
func New(config *Config) *slog.Logger {
	if config == nil {
		config = DefaultConfig()
	}

	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: config.Level}

	var handler slog.Handler
	if config.Format == JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if config.Service != "" {
		logger = logger.With("service", config.Service)
	}
	return logger
}

// FromSettings builds a logger from the textual level and format found in
// configuration files and environment variables.
func FromSettings(level, format string, out io.Writer) *slog.Logger {
	config := DefaultConfig()
	config.Level = ParseLevel(level)
	config.Format = ParseFormat(format)
	if out != nil {
		config.Output = out
	}
	return New(config)
}

// ParseLevel converts a string level to a slog.Level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseFormat converts a string format to a Format, defaulting to text
func ParseFormat(format string) Format {
	if strings.EqualFold(strings.TrimSpace(format), string(JSON)) {
		return JSON
	}
	return TEXT
}
