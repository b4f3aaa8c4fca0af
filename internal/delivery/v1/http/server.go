package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/circley-tech/storefront/internal/cfg"
	"github.com/circley-tech/storefront/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	logger     logger.Logger
}

func NewServer(handler http.Handler, cfg *cfg.HTTPConfig, logger logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: logger,
	}
}

// Run блокируется до остановки; штатный Shutdown не считается ошибкой.
func (s *Server) Run() error {
	s.logger.Infof("HTTP server listening on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Infof("HTTP server stopped")
	return nil
}
