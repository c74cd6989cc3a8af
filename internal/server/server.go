// Package server exposes the aggregator over HTTP for UI collaborators and
// receives Telegram webhook updates.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ObiAU/syncview/internal/aggregator"
)

const (
	requestIDHeader = "X-Request-ID"
	shutdownTimeout = 5 * time.Second
)

// Webhook consumes Telegram updates posted to /webhook.
type Webhook interface {
	HandleWebhook(ctx context.Context, r *http.Request) error
}

type Server struct {
	agg     *aggregator.Aggregator
	webhook Webhook
	logger  zerolog.Logger
	addr    string
	router  *gin.Engine
}

type Option func(*Server)

func WithWebhook(webhook Webhook) Option {
	return func(s *Server) {
		s.webhook = webhook
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New builds the HTTP server for agg listening on port.
func New(agg *aggregator.Aggregator, port string, options ...Option) *Server {
	s := &Server{
		agg:    agg,
		logger: zerolog.Nop(),
		addr:   ":" + port,
	}
	for _, option := range options {
		option(s)
	}

	s.router = s.newRouter()
	return s
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	r.GET("/health", s.handleHealth)
	r.GET("/stats", s.handleStats)
	r.POST("/webhook", s.handleWebhook)

	api := r.Group("/api")
	api.GET("/news", s.handleNews)
	api.GET("/articles/enrich", s.handleEnrich)
	api.POST("/recommend", s.handleRecommend)
	api.GET("/topics", s.handleTopics)

	api.GET("/cache", s.handleGetCached)
	api.PUT("/cache", s.handleSetCached)
	api.DELETE("/cache", s.handleClearCache)
	api.DELETE("/cache/entry", s.handleDeleteCached)
	api.GET("/cache/size", s.handleCacheSize)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		s.logger.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
