package telemetry

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsServer serves the collector's registry at /metrics.
type MetricsServer struct {
	srv      *http.Server
	listener net.Listener
	logger   *slog.Logger
	done     chan struct{}
}

// StartMetricsServer listens on addr and serves metrics in the background.
func StartMetricsServer(addr string, m *MetricsCollector, logger *slog.Logger) (*MetricsServer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))

	s := &MetricsServer{
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: ln,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server stopped", "error", err)
		}
	}()

	logger.Info("Metrics server listening", "addr", ln.Addr().String())
	return s, nil
}

// Addr returns the bound listen address.
func (s *MetricsServer) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server and waits for the serve loop to exit.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	err := s.srv.Shutdown(ctx)
	<-s.done
	return err
}
