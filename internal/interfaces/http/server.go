// Package http provides the HTTP adapter of the glue service.
// It translates requests into calls on the fill client, the e-sign relay and
// the form projector.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger interface for logging operations, satisfied by *zap.SugaredLogger
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int64
	AppName        string
	Version        string
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           "0.0.0.0",
		Port:           4000,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   120 * time.Second,
		MaxUploadBytes: 50 << 20,
		AppName:        "Persona Juridica",
		Version:        "1.0.0",
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     Logger
}

// NewServer creates a new HTTP server over deps
func NewServer(config ServerConfig, deps Dependencies, logger Logger) *Server {
	router := gin.New()
	if config.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = config.MaxUploadBytes
	}

	server := &Server{
		config:   config,
		router:   router,
		handlers: NewHandlers(deps, config, logger),
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestIDMiddleware())
	s.router.Use(loggingMiddleware(s.logger))
	s.router.Use(corsMiddleware())
	if s.config.MaxUploadBytes > 0 {
		s.router.Use(bodyLimitMiddleware(s.config.MaxUploadBytes))
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	h := s.handlers

	api := s.router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		api.POST("/fill-pdf", h.FillPDF)
		api.POST("/sign", h.Sign)
		api.POST("/getSigningUrl", h.GetSigningURL)

		formAPI := api.Group("/form")
		{
			formAPI.GET("/schema", h.FormSchema)
			formAPI.GET("/defaults", h.FormDefaults)
			formAPI.POST("/edit", h.FormEdit)
			formAPI.POST("/project", h.FormProject)
			formAPI.POST("/import", h.FormImport)
			formAPI.POST("/visible", h.FormVisible)
			formAPI.POST("/validate", h.FormValidate)
			formAPI.POST("/review", h.FormReview)
			formAPI.POST("/review.xlsx", h.FormReviewXLSX)
		}

		api.POST("/wizard/sign", h.WizardSign)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := s.Address()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Infow("Starting HTTP server", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Infow("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Errorw("HTTP server error", "error", err)
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Errorw("HTTP server shutdown error", "error", err)
		return err
	}

	s.logger.Infow("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Address returns the server address
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}
