package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/folio-space/core/internal/config"
	"github.com/folio-space/core/internal/database"
	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/modules/auth"
	pkgcron "github.com/folio-space/core/internal/pkg/cron"
	pkgredis "github.com/folio-space/core/internal/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rdb    *pkgredis.Client
	logger *zap.Logger
	sched  *pkgcron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

// New initializes the application: config → DB → Redis → admin bootstrap → routes → cron.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	db, err := database.Connect(cfg, true)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	var rdb *pkgredis.Client
	if cfg.Redis.URL != "" {
		rdb, err = pkgredis.Connect(context.Background(), cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
	} else {
		logger.Info("redis not configured; http cache, rate limit and idempotence guard are disabled")
	}

	if _, err := auth.NewService(db, logger).EnsureAdmin(cfg.Admin.Username, cfg.Admin.Password); err != nil {
		return nil, fmt.Errorf("admin bootstrap: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	a := build(logger, cfg, db, rdb)
	a.sched.Start(a.ctx)
	return a, nil
}

// build assembles the router and scheduler around ready connections.
func build(logger *zap.Logger, cfg *config.AppConfig, db *gorm.DB, rdb *pkgredis.Client) *App {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(newCORS(cfg))

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:    cfg,
		router: router,
		db:     db,
		rdb:    rdb,
		logger: logger,
		sched:  pkgcron.New(logger.Named("CronService")),
		ctx:    ctx,
		cancel: cancel,
	}
	a.registerRoutes()
	return a
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops the scheduler and waits up to timeout for running jobs before
// closing the connections.
func (a *App) Shutdown(timeout time.Duration) {
	a.cancel()
	done := make(chan struct{})
	go func() {
		a.sched.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		a.logger.Warn("cron jobs still running at shutdown")
	}
	if err := a.rdb.Close(); err != nil {
		a.logger.Warn("close redis", zap.Error(err))
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("close database", zap.Error(err))
	}
}
