// Package api is the HTTP adapter over the Session Service Façade: it
// turns facade.Service calls into a small JSON/SSE surface and maps the
// rerrors taxonomy onto HTTP status codes.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deepresearch-go/deepresearch/pkg/facade"
	"github.com/deepresearch-go/deepresearch/pkg/version"
)

// Server is the HTTP API server wrapping one Façade instance.
type Server struct {
	engine    *gin.Engine
	facade    *facade.Service
	authToken string // empty disables auth
	enabled   bool   // readiness reports "disabled" when false
}

// Config controls auth and readiness reporting.
type Config struct {
	AuthToken string // optional single bearer token, matched verbatim
	Enabled   bool
}

// NewServer builds the router and registers every route.
func NewServer(svc *facade.Service, cfg Config) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	s := &Server{
		engine:    engine,
		facade:    svc,
		authToken: cfg.AuthToken,
		enabled:   cfg.Enabled,
	}
	s.setupRoutes()
	return s
}

// Handler returns the underlying http.Handler for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) setupRoutes() {
	s.engine.GET("/health", s.healthHandler)
	s.engine.GET("/ready", s.readyHandler)

	v1 := s.engine.Group("/sessions")
	if s.authToken != "" {
		v1.Use(bearerAuth(s.authToken))
	}
	v1.POST("", s.createSessionHandler)
	v1.GET("", s.listSessionsHandler)
	v1.GET("/:id", s.getSessionHandler)
	v1.GET("/:id/trace", s.getTraceHandler)
	v1.GET("/:id/stream", s.streamHandler)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version.Full(),
	})
}

func (s *Server) readyHandler(c *gin.Context) {
	if !s.enabled {
		c.JSON(http.StatusOK, gin.H{"status": "disabled"})
		return
	}
	m := s.facade.Metrics()
	if m.AvailablePermits > 0 {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "available_permits": m.AvailablePermits})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "degraded", "available_permits": m.AvailablePermits})
}

// requestLogger is a minimal slog-based replacement for gin's default
// combined-log-format middleware, matching the structured style the
// rest of this codebase logs with.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logRequest(c, time.Since(start))
	}
}
