package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"trade-journal-go/internal/config"

	"go.uber.org/zap"
)

// Server wraps the HTTP listener of the journal API.
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer creates a Server listening on the configured port.
func NewServer(cfg *config.Server, handler http.Handler, logger *zap.Logger) *Server {
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		server: server,
		logger: logger.Named("api-server"),
	}
}

// Start runs the HTTP server in a new goroutine.
func (s *Server) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}
