package daemon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sergiup592/event-automation/internal/config"
	"github.com/sergiup592/event-automation/internal/control"
	"github.com/sergiup592/event-automation/internal/history"
	"github.com/sergiup592/event-automation/internal/logger"
)

// Server is the daemon's HTTP surface: the command interface and the
// outward notification stream for external collaborators (CLI or any
// local client).
type Server struct {
	httpServer  *http.Server
	handlers    *Handlers
	broadcaster *SSEBroadcaster
	lifecycle   *Lifecycle
	port        int
}

// NewServer wires the controller and history store into an HTTP server
// listening on localhost.
func NewServer(cfg *config.Config, ctrl *control.Controller, broadcaster *SSEBroadcaster, store history.Store, version string) *Server {
	handlers := NewHandlers(ctrl, store, version)
	lifecycle := NewLifecycle(cfg.Settings.Daemon)

	port := cfg.Settings.Daemon.Port
	if port == 0 {
		port = config.DefaultPort
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handlers.Health)
	mux.HandleFunc("GET /api/status", handlers.Status)
	mux.HandleFunc("POST /api/record/start", handlers.StartRecording)
	mux.HandleFunc("POST /api/record/stop", handlers.StopRecording)
	mux.HandleFunc("POST /api/replay/start", handlers.StartPlayback)
	mux.HandleFunc("POST /api/replay/stop", handlers.StopPlayback)
	mux.HandleFunc("GET /api/sessions", handlers.Sessions)
	mux.HandleFunc("GET /api/stats", handlers.Stats)

	// SSE endpoint
	mux.HandleFunc("GET /sse/events", broadcaster.ServeHTTP)

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("127.0.0.1:%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		handlers:    handlers,
		broadcaster: broadcaster,
		lifecycle:   lifecycle,
		port:        port,
	}
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	if err := s.lifecycle.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}

	s.broadcaster.Start()

	logger.Info().
		Int("port", s.port).
		Str("url", fmt.Sprintf("http://127.0.0.1:%d", s.port)).
		Msg("Starting macrod daemon")

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("Server error")
		}
	}()

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info().Msg("Stopping macrod daemon")

	s.broadcaster.Stop()
	_ = s.lifecycle.RemovePID()

	return s.httpServer.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() int {
	return s.port
}

// Lifecycle returns the lifecycle manager
func (s *Server) Lifecycle() *Lifecycle {
	return s.lifecycle
}
