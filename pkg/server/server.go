// Package server exposes the engine over HTTP with gin.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parsdesk/dana"
	"github.com/parsdesk/dana/pkg/config"
	"github.com/parsdesk/dana/pkg/server/handlers"
	"github.com/parsdesk/dana/pkg/telemetry"
	"github.com/parsdesk/dana/pkg/types"
)

// Server represents the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	client *dana.Client
	bench  *telemetry.BenchmarkWriter
	server *http.Server
}

// New creates a new server instance. The benchmark writer may be nil.
func New(cfg *config.Config, client *dana.Client, bench *telemetry.BenchmarkWriter) *Server {
	return &Server{
		config: cfg,
		client: client,
		bench:  bench,
	}
}

// Setup sets up the server routes and middleware.
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes.
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.client)
	askHandler := handlers.NewAskHandler(s.client)
	ingestHandler := handlers.NewIngestHandler(s.client)
	evalHandler := handlers.NewEvalHandler(s.client, s.bench)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/ask", askHandler.Ask)

		ingest := v1.Group("/ingest")
		{
			ingest.POST("/passages", ingestHandler.AddPassages)
		}

		v1.POST("/benchmark", evalHandler.Benchmark)
		v1.POST("/tune", evalHandler.Tune)
	}
}

// Router returns the configured router, for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware extracts context information from headers.
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if userID := c.GetHeader("X-User-ID"); userID != "" {
			ctx = context.WithValue(ctx, types.ContextKeyUserID, userID)
		}
		if sessionID := c.GetHeader("X-Session-ID"); sessionID != "" {
			ctx = context.WithValue(ctx, types.ContextKeySessionID, sessionID)
		}
		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
