// Package api provides the HTTP server for the lifelog service. It wires
// routing, CORS, logging and metrics middleware around the event and blob
// stores.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/lifelog-api/lifelog/internal/api/handlers"
	"github.com/lifelog-api/lifelog/internal/api/middleware"
	"github.com/lifelog-api/lifelog/internal/blob"
	"github.com/lifelog-api/lifelog/internal/config"
	"github.com/lifelog-api/lifelog/internal/logging"
	"github.com/lifelog-api/lifelog/internal/store"
)

type serverOptionConfig struct {
	extraMiddleware []gin.HandlerFunc
}

// ServerOption customises HTTP server construction.
type ServerOption func(*serverOptionConfig)

// WithMiddleware appends additional Gin middleware during server construction.
func WithMiddleware(mw ...gin.HandlerFunc) ServerOption {
	return func(cfg *serverOptionConfig) {
		cfg.extraMiddleware = append(cfg.extraMiddleware, mw...)
	}
}

// Server represents the lifelog API server. It encapsulates the Gin engine,
// the underlying HTTP server, the handlers and the configuration.
type Server struct {
	// engine is the Gin web framework engine instance.
	engine *gin.Engine

	// server is the underlying HTTP server.
	server *http.Server

	// handler contains the API handlers for processing requests.
	handler *handlers.Handler

	// cfg holds the server configuration.
	cfg *config.Config
}

// NewServer creates and initializes a new API server instance over the given
// stores. It sets up the Gin engine, middleware and routes.
func NewServer(cfg *config.Config, events store.EventStore, blobs blob.Store, opts ...ServerOption) *Server {
	optionState := &serverOptionConfig{}
	for i := range opts {
		opts[i](optionState)
	}
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logging.GinLogrusLogger())
	engine.Use(logging.GinLogrusRecovery())
	engine.Use(middleware.PrometheusMiddleware())
	engine.Use(corsMiddleware(cfg))
	for _, mw := range optionState.extraMiddleware {
		engine.Use(mw)
	}

	s := &Server{
		engine:  engine,
		handler: handlers.New(events, blobs, cfg.Log.File),
		cfg:     cfg,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if len(cfg.CORS.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-Id")
	return cors.New(corsCfg)
}

// registerRoutes attaches all API routes. The static "/events/search" route
// takes priority over the parameterized "/events/:id" route, so a search is
// never parsed as an event id lookup.
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", middleware.MetricsHandler())

	s.engine.POST("/events", s.handler.CreateEvent)
	s.engine.GET("/events/search", s.handler.SearchEvents)
	s.engine.GET("/events/:id", s.handler.GetEvent)
	s.engine.POST("/events/:id/conversation", s.handler.AppendConversationTurn)

	s.engine.POST("/upload", s.handler.UploadImage)
	s.engine.GET("/image/:id", s.handler.GetImage)

	s.engine.GET("/logs", s.handler.GetLogs)
}

// Engine exposes the Gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until it stops. A closed-server
// shutdown is not reported as an error.
func (s *Server) Run() error {
	log.WithField("addr", s.server.Addr).Info("lifelog server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
