// Package server cung cấp HTTP API cho dịch vụ tìm neighbour repository

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thep200/star-neighbours/cfg"
	"github.com/thep200/star-neighbours/pkg/log"
)

// Server là HTTP server bọc quanh NeighbourAPI
type Server struct {
	Logger  log.Logger
	Config  *cfg.Config
	Service Service
	server  *http.Server
}

func NewServer(logger log.Logger, config *cfg.Config, service Service) (*Server, error) {
	return &Server{
		Logger:  logger,
		Config:  config,
		Service: service,
	}, nil
}

// Start khởi động HTTP server, block cho đến khi server dừng
func (s *Server) Start() error {
	handler, err := NewHandler(s.Logger, s.Config, s.Service)
	if err != nil {
		return fmt.Errorf("failed to create api handler: %w", err)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Config.Api.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting API server on port %d", s.Config.Api.Port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop dừng HTTP server một cách graceful
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down API server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
