// Package api exposes the assessment engine over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/internal/middleware"
	"github.com/scid-pd-engine/internal/session"
)

// Dependencies are the components the HTTP server serves from.
type Dependencies struct {
	Catalog  domain.ModuleCatalog
	Sessions *session.Registry
	Profiles domain.ProfileStore
	Reports  domain.ReportRenderer
	Gatherer prometheus.Gatherer
	Logger   *logrus.Logger
	// Health reports backend readiness; nil means always healthy.
	Health func(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	config domain.ServerConfig
	deps   Dependencies
	router *gin.Engine
	server *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(cfg domain.ServerConfig, deps Dependencies) *Server {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger(deps.Logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	s := &Server{
		config: cfg,
		deps:   deps,
		router: router,
	}
	s.setupRoutes()
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	if s.deps.Gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := s.router.Group("/api/v1")
	v1.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
	{
		v1.GET("/modules", s.handleListModules)
		v1.GET("/modules/:id", s.handleGetModule)

		v1.POST("/assessments", s.handleStartAssessment)
		v1.GET("/assessments/:id", s.handleGetAssessment)
		v1.PUT("/assessments/:id/notes", s.handleSetNotes)
		v1.POST("/assessments/:id/modules/:module_id", s.handleAdministerModule)
		v1.POST("/assessments/:id/complete", s.handleCompleteAssessment)
		v1.DELETE("/assessments/:id", s.handleDiscardAssessment)

		v1.GET("/profiles", s.handleListProfiles)
		v1.GET("/profiles/:id", s.handleGetProfile)
		v1.GET("/profiles/:id/report", s.handleGetReport)
		v1.DELETE("/profiles/:id", s.handleDeleteProfile)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	body := gin.H{
		"timestamp":       time.Now().UTC(),
		"active_sessions": s.deps.Sessions.Len(),
	}
	if s.deps.Health != nil {
		if err := s.deps.Health(c.Request.Context()); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
			body["error"] = err.Error()
		}
	}
	body["status"] = status
	c.JSON(code, body)
}

// respondError maps engine errors onto HTTP statuses and the APIError envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := c.GetString(middleware.CorrelationIDKey)

	var validation *domain.ValidationFailedError
	var apiErr *domain.APIError
	var status int
	switch {
	case errors.As(err, &validation):
		status = http.StatusUnprocessableEntity
		apiErr = domain.NewAPIError(domain.CodeValidation, validation.Error(), validation.Errors, requestID)
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusUnprocessableEntity
		apiErr = domain.NewAPIError(domain.CodeValidation, err.Error(), nil, requestID)
	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
		apiErr = domain.NewAPIError(domain.CodeInvalidState, err.Error(), nil, requestID)
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		apiErr = domain.NewAPIError(domain.CodeNotFound, err.Error(), nil, requestID)
	case errors.Is(err, context.DeadlineExceeded), isUnavailable(err):
		status = http.StatusServiceUnavailable
		apiErr = domain.NewAPIError(domain.CodeStorageError, "storage temporarily unavailable", nil, requestID)
	default:
		status = http.StatusInternalServerError
		apiErr = domain.NewAPIError(domain.CodeInternalServer, "internal server error", nil, requestID)
	}

	if status >= http.StatusInternalServerError {
		s.deps.Logger.WithFields(logrus.Fields{
			"correlation_id": requestID,
			"error":          err.Error(),
		}).Error("Request failed")
	}
	c.AbortWithStatusJSON(status, apiErr)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, domain.NewAPIError(
		domain.CodeInvalidInput,
		message,
		nil,
		c.GetString(middleware.CorrelationIDKey),
	))
}
