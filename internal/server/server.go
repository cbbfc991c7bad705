package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pantrybook/backend/config"
)

// Server represents the HTTP server
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// New creates a new server instance
func New(cfg *config.Config, router *gin.Engine, logger *zap.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:    cfg.ServerHost + ":" + cfg.ServerPort,
			Handler: router,
		},
		logger: logger,
	}
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
