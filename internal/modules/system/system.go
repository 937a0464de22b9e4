// Package system exposes process health, the job scheduler and cache maintenance.
package system

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/folio-space/core/internal/database"
	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/pkg/cron"
	redispkg "github.com/folio-space/core/internal/pkg/redis"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const pingTimeout = 2 * time.Second

// Health is the body of GET /health.
type Health struct {
	Status   string `json:"status"`
	Database bool   `json:"database"`
	Redis    *bool  `json:"redis,omitempty"`
	Uptime   string `json:"uptime"`
	Version  string `json:"version,omitempty"`
}

type Handler struct {
	db      *gorm.DB
	rdb     *redispkg.Client
	sched   *cron.Scheduler
	started time.Time
	version string
}

// NewHandler wires the handler. rdb and sched may be nil.
func NewHandler(db *gorm.DB, rdb *redispkg.Client, sched *cron.Scheduler, version string) *Handler {
	return &Handler{db: db, rdb: rdb, sched: sched, started: time.Now(), version: version}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/health", h.health)

	a := rg.Group("", authMW)
	a.GET("/jobs", h.jobs)
	a.GET("/jobs/:name", h.job)
	a.POST("/jobs/:name/run", h.runJob)
	a.POST("/cache/purge", h.purgeCache)
}

// health reports 503 when the database is unreachable. Redis is optional so its
// failure only shows in the body.
func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	out := Health{
		Status:   "ok",
		Database: database.Ping(h.db) == nil,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Version:  h.version,
	}
	if h.rdb.Enabled() {
		ok := h.rdb.Ping(ctx) == nil
		out.Redis = &ok
	}
	if !out.Database {
		response.Fail(c, http.StatusServiceUnavailable, "Service Unavailable", "Database is unreachable")
		return
	}
	response.OK(c, out)
}

func (h *Handler) jobs(c *gin.Context) {
	if h.sched == nil {
		response.OK(c, []cron.ListItem{})
		return
	}
	response.OK(c, h.sched.List())
}

func (h *Handler) job(c *gin.Context) {
	if h.sched == nil {
		response.NotFound(c, "Job not found")
		return
	}
	item, err := h.sched.Get(c.Param("name"))
	if err != nil {
		response.NotFound(c, "Job not found")
		return
	}
	response.OK(c, item)
}

func (h *Handler) runJob(c *gin.Context) {
	if h.sched == nil {
		response.NotFound(c, "Job not found")
		return
	}
	err := h.sched.Run(c.Request.Context(), c.Param("name"))
	switch {
	case errors.Is(err, cron.ErrJobNotFound):
		response.NotFound(c, "Job not found")
	case errors.Is(err, cron.ErrJobRunning):
		response.Conflict(c, "Job is already running")
	case err != nil:
		response.Error(c, err)
	default:
		response.OKMsg(c, gin.H{"name": c.Param("name")}, "Job triggered")
	}
}

func (h *Handler) purgeCache(c *gin.Context) {
	n, err := middleware.PurgeHTTPCache(c.Request.Context(), h.rdb)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMsg(c, gin.H{"purged": n}, "Cache purged")
}
