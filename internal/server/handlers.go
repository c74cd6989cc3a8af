package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ObiAU/syncview/internal/aggregator"
	"github.com/ObiAU/syncview/internal/models"
	"github.com/ObiAU/syncview/internal/recommend"
	"github.com/ObiAU/syncview/internal/remote"
)

type recommendRequest struct {
	Topic    string                  `json:"topic" binding:"required"`
	Articles []models.ArticleSummary `json:"articles"`
	Limit    *int                    `json:"limit"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.agg.Stats())
}

func (s *Server) handleWebhook(c *gin.Context) {
	if s.webhook == nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "telegram is not configured"})
		return
	}

	if err := s.webhook.HandleWebhook(c.Request.Context(), c.Request); err != nil {
		s.logger.Warn().Err(err).Msg("invalid telegram update")
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid update"})
		return
	}

	c.Status(http.StatusOK)
}

func (s *Server) handleNews(c *gin.Context) {
	source := c.Query("source")

	articles, err := s.agg.FetchNews(c.Request.Context(), source)
	if err != nil {
		s.respondError(c, err)
		return
	}

	if lang := c.Query("translate"); lang != "" {
		articles = s.agg.TranslateTitles(c.Request.Context(), articles, lang)
	}

	if source == "" {
		source = remote.DefaultSource
	}
	c.JSON(http.StatusOK, gin.H{"source": source, "articles": articles})
}

func (s *Server) handleEnrich(c *gin.Context) {
	url := strings.TrimSpace(c.Query("url"))
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "url is required"})
		return
	}

	article, err := s.agg.Enrich(c.Request.Context(), url)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func (s *Server) handleRecommend(c *gin.Context) {
	var req recommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	if !s.agg.Index().Has(req.Topic) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unknown topic: " + req.Topic})
		return
	}

	limit := recommend.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	ranked := s.agg.RankByTopic(req.Articles, req.Topic, limit)
	c.JSON(http.StatusOK, gin.H{"topic": req.Topic, "articles": ranked})
}

func (s *Server) handleTopics(c *gin.Context) {
	index := s.agg.Index()

	topics := make([]recommend.Topic, 0, len(index.Topics()))
	for _, name := range index.Topics() {
		topics = append(topics, recommend.Topic{Name: name, Keywords: index.Keywords(name)})
	}

	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (s *Server) handleGetCached(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "key is required"})
		return
	}

	value, ok := s.agg.GetCached(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not cached"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (s *Server) handleSetCached(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "key is required"})
		return
	}

	ttl, err := time.ParseDuration(c.Query("ttl"))
	if err != nil || ttl <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "ttl must be a positive duration such as 5m"})
		return
	}

	var value any
	if err := c.ShouldBindJSON(&value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	s.agg.SetCached(key, value, ttl)
	c.JSON(http.StatusOK, gin.H{"key": key, "ttl": ttl.String()})
}

func (s *Server) handleDeleteCached(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "key is required"})
		return
	}

	s.agg.DeleteCached(key)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleClearCache(c *gin.Context) {
	s.agg.ClearCache()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCacheSize(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"size": s.agg.CacheSize()})
}

// respondError maps err to a status and a {"detail": ...} body. Client
// errors reported by the remote keep their status; other remote failures
// are a bad gateway.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	detail := err.Error()

	var remoteErr *remote.Error
	switch {
	case errors.Is(err, aggregator.ErrEmptyURL):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		detail = "remote call timed out"
	case errors.As(err, &remoteErr):
		detail = remoteErr.Message
		status = http.StatusBadGateway
		if remoteErr.Status >= 400 && remoteErr.Status < 500 {
			status = remoteErr.Status
		}
	}

	s.logger.Warn().Err(err).Int("status", status).Str("path", c.FullPath()).Msg("request failed")
	c.JSON(status, gin.H{"detail": detail})
}
