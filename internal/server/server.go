// Package server exposes Prometheus metrics and health endpoints of a
// running game over HTTP.
//
//	GET /metrics   Prometheus exposition
//	GET /healthz   liveness, always 200
//	GET /readyz    readiness, 503 when unhealthy or shutting down
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/idleforge/internal/health"
	"github.com/felixgeelhaar/idleforge/internal/log"
	"github.com/felixgeelhaar/idleforge/internal/metrics"
)

// Server serves metrics and health endpoints.
type Server struct {
	httpServer      *http.Server
	reporter        *health.Reporter
	shutdownTimeout time.Duration
	logger          *log.Logger
}

// Config holds server configuration.
type Config struct {
	// Address is the listen address, e.g. ":9090" or "127.0.0.1:0".
	Address string

	// ShutdownTimeout bounds connection draining (default: 5s).
	ShutdownTimeout time.Duration

	// ReadTimeout defaults to 10s.
	ReadTimeout time.Duration

	// WriteTimeout defaults to 10s.
	WriteTimeout time.Duration

	Logger *log.Logger
}

// New creates a server for the health endpoints of reporter and the
// metrics in gatherer. A nil gatherer leaves /metrics unregistered.
func New(reporter *health.Reporter, gatherer prometheus.Gatherer, cfg Config) *Server {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	s := &Server{
		reporter:        reporter,
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          log.OrDiscard(cfg.Logger).WithComponent("server"),
	}

	mux := http.NewServeMux()
	if gatherer != nil {
		mux.Handle("/metrics", metrics.HandlerFor(gatherer))
	}
	mux.HandleFunc("/healthz", s.handleLiveness)
	mux.HandleFunc("/readyz", s.handleReadiness)

	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           mux,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return s
}

// Listen binds the address and serves in the background. It returns
// the bound address, which differs from the configured one for port 0.
func (s *Server) Listen() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.LogError("server stopped", err)
		}
	}()
	s.logger.Info("serving metrics and health endpoints", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// Shutdown fails readiness, then drains connections for up to the
// shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.reporter.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) writeReport(w http.ResponseWriter, rep *health.Report, unhealthyStatus int) {
	w.Header().Set("Content-Type", "application/json")
	if rep.Status == health.StatusUnhealthy {
		w.WriteHeader(unhealthyStatus)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		s.logger.Debug("failed to write health response", "error", err)
	}
}

// handleLiveness always answers 200, even while shutting down.
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeReport(w, s.reporter.Liveness(r.Context()), http.StatusOK)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeReport(w, s.reporter.Readiness(r.Context()), http.StatusServiceUnavailable)
}
