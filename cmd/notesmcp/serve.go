package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/localrivet/notesmcp"
	"github.com/localrivet/notesmcp/internal/config"
	"github.com/localrivet/notesmcp/internal/errortypes"
	"github.com/localrivet/notesmcp/internal/logger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio",
	Long: `Start the MCP server on stdin/stdout. Configuration is read from
.notesmcpconfig (or --config) and NOTESMCP_* environment variables.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfigWithPath(configPath, slog.Default())
		if errortypes.IsValidationError(err) {
			fatal("Invalid configuration in "+configPath, err)
		}
		if err != nil {
			fatal("Failed to load configuration", err)
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		log := logger.FromSettings(level, cfg.Logging.Format, os.Stderr)
		slog.SetDefault(log)

		srv, err := notesmcp.NewServer(notesmcp.ServerOptions{Config: cfg, Logger: log})
		if err != nil {
			fatal("Failed to create server", err)
		}

		stopOnSignal(srv, log)

		log.Info("notesmcp MCP server starting", "version", notesmcp.Version)
		if err := srv.Start(); err != nil {
			_ = srv.Stop()
			fatal("MCP server failed", err)
		}
		if err := srv.Stop(); err != nil {
			fatal("Failed to stop server", err)
		}
	},
}

// stopOnSignal stops the server and exits on SIGINT or SIGTERM.
func stopOnSignal(srv *notesmcp.Server, log *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-c
		log.Info("Received shutdown signal, terminating gracefully...", "signal", sig.String())
		if err := srv.Stop(); err != nil {
			log.Error("Error during shutdown", "error", err)
			os.Exit(1)
		}
		log.Info("Shutdown complete")
		os.Exit(0)
	}()
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "Path to the configuration file")
	rootCmd.AddCommand(serveCmd)
}
