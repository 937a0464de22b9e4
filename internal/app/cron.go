package app

import (
	"time"

	"github.com/folio-space/core/internal/modules/backup"
	"go.uber.org/zap"
)

// registerCronJobs registers the scheduled background jobs enabled by config.
func (a *App) registerCronJobs(backups *backup.Service) {
	if !a.cfg.Backup.Enable {
		return
	}
	interval := time.Duration(a.cfg.Backup.IntervalHours) * time.Hour
	if err := a.sched.Register(backups.Job(interval)); err != nil {
		a.logger.Warn("register cron job", zap.String("job", backup.JobName), zap.Error(err))
	}
}
