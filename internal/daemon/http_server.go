package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/wallhelper/internal/logfields"
	"git.home.luguber.info/inful/wallhelper/internal/metrics"
	"git.home.luguber.info/inful/wallhelper/internal/version"
)

// HTTPServer serves /metrics, /status and /healthz on the opt-in metrics address.
type HTTPServer struct {
	addr     string
	registry *prom.Registry
	status   *StatusTracker
	server   *http.Server
	listener net.Listener
}

// NewHTTPServer creates a server for addr. Nothing is bound until Start.
func NewHTTPServer(addr string, reg *prom.Registry, status *StatusTracker) *HTTPServer {
	return &HTTPServer{addr: addr, registry: reg, status: status}
}

// Handler returns the routing for the server.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(s.registry))
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start binds the listener and serves in the background. Bind failures are returned.
func (s *HTTPServer) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("metrics listener %s: %w", s.addr, err)
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server stopped", logfields.Error(err))
		}
	}()
	slog.Info("Metrics server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *HTTPServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *HTTPServer) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}

type healthResponse struct {
	Status  Status `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	snap := s.status.Snapshot()
	code := http.StatusOK
	if snap.Status != StatusRunning {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{Status: snap.Status, Version: version.Version, Uptime: snap.Uptime})
}

func (s *HTTPServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.status.Snapshot())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write JSON response", logfields.Error(err))
	}
}
