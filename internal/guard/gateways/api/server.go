// Package api exposes the daemon's HTTP surface: the event intake used by
// the extension bridge and the read/replace endpoints behind the settings
// and history UI.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haukened/dlguard/internal/guard/common/log"
	"github.com/haukened/dlguard/internal/guard/domain"
	"github.com/haukened/dlguard/internal/guard/metrics"
	"github.com/haukened/dlguard/internal/guard/repos/history"
	"github.com/haukened/dlguard/internal/guard/repos/whitelist"
	"github.com/haukened/dlguard/internal/guard/services/interceptor"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	interceptor *interceptor.Interceptor
	whitelist   *whitelist.Repo
	history     *history.Log
	logger      log.Logger
	router      *gin.Engine
	httpSrv     *http.Server
}

// Options carries the Server's dependencies.
type Options struct {
	Interceptor *interceptor.Interceptor
	Whitelist   *whitelist.Repo
	History     *history.Log
	Logger      log.Logger
}

// New builds the server and registers all routes.
func New(opts Options) *Server {
	s := &Server{
		interceptor: opts.Interceptor,
		whitelist:   opts.Whitelist,
		history:     opts.History,
		logger:      opts.Logger,
	}

	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	{
		v1.POST("/events/download-created", s.downloadCreatedHandler)
		v1.POST("/events/action", s.actionSelectedHandler)
		v1.GET("/whitelist", s.getWhitelistHandler)
		v1.PUT("/whitelist", s.updateWhitelistHandler)
		v1.GET("/history", s.getHistoryHandler)
	}
	router.GET("/healthz", s.healthHandler)
	router.GET("/metrics", metrics.Handler())

	s.router = router
	return s
}

// Run starts serving on addr and blocks until the listener fails or
// Shutdown is called.
func (s *Server) Run(addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

type downloadCreatedRequest struct {
	ID       int64  `json:"id"`
	Filename string `json:"filename" binding:"required"`
	URL      string `json:"url" binding:"required"`
	FileSize int64  `json:"fileSize"`
}

// downloadCreatedHandler feeds one download event into the coordinator.
// Assessment outcomes (released, paused, unexamined) are not reported back:
// the bridge fires and forgets.
func (s *Server) downloadCreatedHandler(c *gin.Context) {
	var req downloadCreatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d, err := domain.NewDownload(domain.DownloadID(req.ID), req.Filename, req.URL, req.FileSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.interceptor.HandleDownloadCreated(c.Request.Context(), d)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

type actionSelectedRequest struct {
	AlertID string `json:"alertId" binding:"required"`
	// ButtonIndex is a pointer so index 0 survives required-field binding.
	ButtonIndex *int `json:"buttonIndex" binding:"required"`
}

// actionSelectedHandler routes a notification button press to the coordinator.
func (s *Server) actionSelectedHandler(c *gin.Context) {
	var req actionSelectedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.interceptor.HandleActionSelected(c.Request.Context(), req.AlertID, *req.ButtonIndex)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (s *Server) getWhitelistHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"domains": s.whitelist.Snapshot()})
}

type updateWhitelistRequest struct {
	Domains []string `json:"domains" binding:"required"`
}

// updateWhitelistHandler applies a wholesale whitelist replacement. The
// settings UI computes add/remove client-side and submits the full set.
func (s *Server) updateWhitelistHandler(c *gin.Context) {
	var req updateWhitelistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.whitelist.Replace(req.Domains); err != nil {
		s.logger.Error(map[string]any{"error": err}, "whitelist replace failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist whitelist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "Whitelist updated"})
}

func (s *Server) getHistoryHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": s.history.Snapshot()})
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"pending_alerts": s.interceptor.PendingAlerts(),
	})
}
