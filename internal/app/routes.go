package app

import (
	"time"

	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/modules/auth"
	"github.com/folio-space/core/internal/modules/backup"
	"github.com/folio-space/core/internal/modules/blog"
	"github.com/folio-space/core/internal/modules/inbox/contact"
	"github.com/folio-space/core/internal/modules/inbox/newsletter"
	"github.com/folio-space/core/internal/modules/portfolio/education"
	"github.com/folio-space/core/internal/modules/portfolio/experience"
	"github.com/folio-space/core/internal/modules/portfolio/profile"
	"github.com/folio-space/core/internal/modules/portfolio/project"
	"github.com/folio-space/core/internal/modules/portfolio/recommendation"
	"github.com/folio-space/core/internal/modules/portfolio/skill"
	"github.com/folio-space/core/internal/modules/portfolio/sociallink"
	"github.com/folio-space/core/internal/modules/sitecontent"
	"github.com/folio-space/core/internal/modules/system"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// uncachedPaths are never served from the response cache. Single blog posts count a
// view on every read.
var uncachedPaths = []string{
	"/api/v1/health",
	"/api/v1/auth/*",
	"/api/v1/blogs/*",
	"/api/blogs/*",
	"/api/v1/newsletter*",
	"/api/v1/contact*",
	"/api/v1/backups*",
	"/api/v1/jobs*",
}

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	r.NoRoute(func(c *gin.Context) { response.NotFound(c, "Route not found") })
	r.NoMethod(func(c *gin.Context) { response.MethodNotAllowed(c) })

	r.Use(middleware.OptionalAuth(db))
	r.Use(middleware.HTTPCache(a.rdb, middleware.HTTPCacheOptions{
		TTL:       time.Duration(a.cfg.HTTPCache.TTLSeconds) * time.Second,
		Disable:   a.cfg.HTTPCache.Disable,
		SkipPaths: uncachedPaths,
	}))
	r.Use(middleware.PurgeOnWrite(a.rdb, a.logger))

	rateLimit := middleware.RateLimit(a.rdb, middleware.RateLimitOptions{
		Max:    a.cfg.RateLimit.Max,
		Window: time.Duration(a.cfg.RateLimit.WindowSeconds) * time.Second,
	}, a.logger)
	// Only contact submissions carry the resubmission guard.
	publicWrite := []gin.HandlerFunc{rateLimit, middleware.Idempotence(a.rdb)}

	v1 := r.Group("/api/v1")

	profile.NewHandler(profile.NewService(db)).RegisterRoutes(v1, authMW)
	sociallink.NewHandler(sociallink.NewService(db)).RegisterRoutes(v1, authMW)
	skill.NewHandler(skill.NewService(db)).RegisterRoutes(v1, authMW)
	experience.NewHandler(experience.NewService(db)).RegisterRoutes(v1, authMW)
	education.NewHandler(education.NewService(db)).RegisterRoutes(v1, authMW)
	project.NewHandler(project.NewService(db)).RegisterRoutes(v1, authMW)
	recommendation.NewHandler(recommendation.NewService(db)).RegisterRoutes(v1, authMW)
	sitecontent.NewHandler(sitecontent.NewService(db)).RegisterRoutes(v1, authMW)

	blogHandler := blog.NewHandler(blog.NewService(db, a.logger))
	blogHandler.RegisterRoutes(v1, authMW, rateLimit)
	blogHandler.RegisterLegacyRoutes(r.Group("/api"))

	newsletter.NewHandler(newsletter.NewService(db)).RegisterRoutes(v1, authMW, rateLimit)
	contact.NewHandler(contact.NewService(db)).RegisterRoutes(v1, authMW, publicWrite...)
	auth.NewHandler(auth.NewService(db, a.logger)).RegisterRoutes(v1, authMW, rateLimit)

	backups := backup.NewService(db, a.logger, a.backupOptions())
	backup.NewHandler(backups).RegisterRoutes(v1, authMW)
	a.registerCronJobs(backups)

	system.NewHandler(db, a.rdb, a.sched, Version).RegisterRoutes(v1, authMW)
}

func (a *App) backupOptions() backup.Options {
	opts := backup.Options{
		Dir:         a.cfg.BackupDir(),
		KeyTemplate: a.cfg.Backup.S3.KeyTemplate,
	}
	if !a.cfg.Backup.S3.Enable {
		return opts
	}
	uploader, err := backup.NewS3Uploader(a.cfg.Backup.S3)
	if err != nil {
		a.logger.Warn("backup upload disabled", zap.Error(err))
		return opts
	}
	opts.Uploader = uploader
	return opts
}
