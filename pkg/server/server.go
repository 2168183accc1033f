package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cuemby/herald/pkg/config"
	"github.com/cuemby/herald/pkg/log"
	"github.com/cuemby/herald/pkg/metrics"
	"github.com/cuemby/herald/pkg/store"
	"github.com/cuemby/herald/pkg/types"
)

// Server is the reference server-of-record HTTP API. It serves records
// in the legacy snake_case wire shape and implements the four service
// contracts the sync engine consumes, plus a publish path for authors.
type Server struct {
	router  *gin.Engine
	store   *store.BoltStore
	secret  string
	httpSrv *http.Server
	logger  zerolog.Logger
}

// NewServer creates the reference API over a bbolt store
func NewServer(st *store.BoltStore, cfg config.ServerConfig) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestMetrics())

	s := &Server{
		router: router,
		store:  st,
		secret: cfg.AuthSecret,
		logger: log.WithComponent("server"),
	}
	s.setupRoutes()
	return s
}

// Start begins serving on addr and blocks until Stop or failure
func (s *Server) Start(addr string) error {
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	s.logger.Info().Str("addr", addr).Msg("server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop() {
	if s.httpSrv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpSrv.Shutdown(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("shutdown did not complete cleanly")
	}
}

// Router exposes the handler for tests
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "herald"})
	})
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := s.router.Group("/api/v1")
	api.Use(s.recipientAuth())
	{
		notifications := api.Group("/notifications")
		{
			notifications.GET("", s.handleList())
			notifications.GET("/unread-count", s.handleUnreadCount())
			notifications.POST("", s.handlePublish())
			notifications.PUT("/:id/read", s.handleMarkRead())
			notifications.PUT("/read-all", s.handleMarkAllRead())
			notifications.DELETE("/:id", s.handleDelete())
		}
	}
}

// handleList returns raw records, newest first. Targeting and release
// filtering are the client's responsibility; the server hands out
// records as stored.
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := config.DefaultFetchLimit
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
				return
			}
			limit = parsed
		}

		records, err := s.store.ListNotifications(limit)
		if err != nil {
			s.logger.Error().Err(err).Msg("list failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list notifications"})
			return
		}
		if records == nil {
			records = []*store.Record{}
		}
		c.JSON(http.StatusOK, gin.H{"notifications": records})
	}
}

func (s *Server) handleUnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipient := currentRecipient(c)
		count, err := s.store.UnreadCount(recipient.ID)
		if err != nil {
			s.logger.Error().Err(err).Msg("unread count failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count unread notifications"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// publishRequest accepts the camelCase shape; records are persisted
// and re-served in the legacy snake_case shape
type publishRequest struct {
	Title          string   `json:"title" binding:"required"`
	Message        string   `json:"message" binding:"required"`
	Type           string   `json:"type"`
	Status         string   `json:"status"`
	ScheduledAt    string   `json:"scheduledAt"`
	TargetUserIDs  []string `json:"targetUserIds"`
	TargetRoles    []string `json:"targetRoles"`
	TargetAudience string   `json:"targetAudience"`
}

func (s *Server) handlePublish() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req publishRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.ScheduledAt != "" {
			if _, err := time.Parse(time.RFC3339, req.ScheduledAt); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "scheduledAt must be RFC3339"})
				return
			}
		}

		recipient := currentRecipient(c)
		rec := &store.Record{
			Title:          req.Title,
			Message:        req.Message,
			Type:           string(types.ParseNotificationType(req.Type)),
			Status:         string(types.ParseNotificationStatus(req.Status)),
			ScheduledAt:    req.ScheduledAt,
			CreatedBy:      recipient.ID,
			TargetUserIDs:  req.TargetUserIDs,
			TargetRoles:    req.TargetRoles,
			TargetAudience: req.TargetAudience,
		}
		if err := s.store.CreateNotification(rec); err != nil {
			s.logger.Error().Err(err).Msg("publish failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to publish notification"})
			return
		}

		metrics.NotificationsPublished.Inc()
		s.logger.Info().
			Str("notification_id", rec.ID).
			Str("created_by", recipient.ID).
			Msg("notification published")
		c.JSON(http.StatusCreated, gin.H{"id": rec.ID})
	}
}

func (s *Server) handleMarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipient := currentRecipient(c)
		if err := s.store.MarkRead(c.Param("id"), recipient.ID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// handleMarkAllRead reports logical failure in the body rather than
// the status code, so clients can distinguish "the server said no"
// from "the server was unreachable" and trigger their per-item
// fallback in both cases.
func (s *Server) handleMarkAllRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		recipient := currentRecipient(c)
		marked, err := s.store.MarkAllRead(recipient.ID)
		if err != nil {
			s.logger.Error().Err(err).Msg("mark-all-read failed")
			c.JSON(http.StatusOK, gin.H{"success": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "marked": marked})
	}
}

func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.DeleteNotification(c.Param("id")); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notification"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
