// Package server is the dictation gateway: an HTTP service that accepts
// recorded audio and raw section text from clients and forwards them to the
// configured speech-to-text and LLM providers.
package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alkime/scribe/internal/config"
	"github.com/alkime/scribe/internal/formatting"
	"github.com/alkime/scribe/internal/transcription"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// Server is the gateway HTTP server.
type Server struct {
	config      *config.Config
	logger      *slog.Logger
	router      *gin.Engine
	transcriber transcription.Transcriber
	formatter   formatting.Formatter
	metrics     *metrics
}

// New creates a Server. Both providers are required.
func New(cfg *config.Config, logger *slog.Logger, transcriber transcription.Transcriber, formatter formatting.Formatter) (*Server, error) {
	if transcriber == nil || formatter == nil {
		return nil, errors.New("transcriber and formatter are required")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Fly.io terminates TLS in front of production.
	if cfg.IsProduction() {
		router.TrustedPlatform = gin.PlatformFlyIO
		logger.Debug("Configured trusted platform", "platform", "fly.io")
	}

	s := &Server{
		config:      cfg,
		logger:      logger,
		router:      router,
		transcriber: transcriber,
		formatter:   formatter,
		metrics:     newMetrics(),
	}

	router.Use(requestLogger(logger), s.metrics.instrument())
	setupSecurityMiddleware(router, cfg, logger)
	s.setupRoutes()

	return s, nil
}

// Router exposes the handler, for tests and embedding.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run listens on the configured port.
func Run(s *Server) error {
	s.logger.Info("Server listening", "port", s.config.Port)
	return s.router.Run(":" + s.config.Port)
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", s.metrics.handler())

	api := s.router.Group("/", bearerAuth(s.config.AuthToken))
	api.POST(transcription.TranscribePath, s.handleTranscribe)
	api.POST(formatting.FormatPath, s.handleFormat)

	// Static files only for paths no route claimed.
	s.router.Use(static.Serve("/", static.LocalFile(s.config.PublicDir, false)))
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "scribe",
	})
}
