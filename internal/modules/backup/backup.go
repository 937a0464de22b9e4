// Package backup snapshots the content tables into zip archives and restores them.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/folio-space/core/internal/pkg/cron"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// JobName is the scheduler entry for periodic backups.
const JobName = "auto_backup"

const maxUploadBytes = 64 << 20

var (
	errInvalidFilename = apperr.Validation("Invalid backup filename")
	errBackupNotFound  = apperr.NotFound("Backup not found")
	errInvalidArchive  = apperr.Validation("Invalid backup archive")
)

// Item describes one archive on disk.
type Item struct {
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	SizeText  string    `json:"sizeText"`
	CreatedAt time.Time `json:"createdAt"`
	RemoteURL string    `json:"remoteUrl,omitempty"`
}

// RestoreResult counts the rows written per table.
type RestoreResult struct {
	Filename string         `json:"filename,omitempty"`
	Tables   map[string]int `json:"tables"`
}

type Options struct {
	Dir         string
	KeyTemplate string
	// Uploader is optional; when set every new archive is also pushed to it.
	Uploader Uploader
}

type Service struct {
	db       *gorm.DB
	logger   *zap.Logger
	dir      string
	keyTpl   string
	uploader Uploader
	now      func() time.Time
}

func NewService(db *gorm.DB, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		dir = "backups"
	}
	return &Service{
		db:       db,
		logger:   logger.Named("BackupService"),
		dir:      dir,
		keyTpl:   opts.KeyTemplate,
		uploader: opts.Uploader,
		now:      time.Now,
	}
}

func (s *Service) List() ([]Item, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Item{}, nil
	}
	if err != nil {
		return nil, err
	}
	items := make([]Item, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".zip") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		items = append(items, itemOf(info))
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Filename > items[j].Filename })
	return items, nil
}

func itemOf(info os.FileInfo) Item {
	return Item{
		Filename:  info.Name(),
		Size:      info.Size(),
		SizeText:  formatSize(info.Size()),
		CreatedAt: info.ModTime().UTC(),
	}
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%.2f MB", float64(size)/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%.2f KB", float64(size)/(1<<10))
	default:
		return fmt.Sprintf("%d B", size)
	}
}

// Create writes a new archive and uploads it when an uploader is configured. A failed
// upload keeps the local file and is reported as an error.
func (s *Service) Create(ctx context.Context) (*Item, error) {
	now := s.now()
	buf, err := writeArchive(s.db.WithContext(ctx), now)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, err
	}
	filename := fmt.Sprintf("backup-%s.zip", now.UTC().Format("2006-01-02T15-04-05"))
	target := filepath.Join(s.dir, filename)
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil, err
	}
	item := itemOf(info)
	s.logger.Info("backup created", zap.String("file", filename), zap.Int64("bytes", item.Size))

	if s.uploader != nil {
		key := renderObjectKey(s.keyTpl, filename, now)
		url, err := s.uploader.Upload(ctx, key, buf.Bytes(), "application/zip")
		if err != nil {
			s.logger.Error("backup upload failed", zap.String("key", key), zap.Error(err))
			return &item, err
		}
		item.RemoteURL = url
		s.logger.Info("backup uploaded", zap.String("url", url))
	}
	return &item, nil
}

// Path resolves filename inside the backup directory.
func (s *Service) Path(filename string) (string, error) {
	name := strings.TrimSpace(filename)
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".zip") {
		return "", errInvalidFilename
	}
	target := filepath.Join(s.dir, name)
	if _, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errBackupNotFound
		}
		return "", err
	}
	return target, nil
}

func (s *Service) Restore(filename string) (*RestoreResult, error) {
	target, err := s.Path(filename)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, err
	}
	out, err := s.RestoreArchive(data)
	if err != nil {
		return nil, err
	}
	out.Filename = filepath.Base(target)
	return out, nil
}

func (s *Service) RestoreArchive(data []byte) (*RestoreResult, error) {
	tables, err := restoreArchive(s.db, data)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("backup restored", zap.Any("tables", tables))
	return &RestoreResult{Tables: tables}, nil
}

func (s *Service) Delete(filename string) error {
	target, err := s.Path(filename)
	if err != nil {
		return err
	}
	return os.Remove(target)
}

// Job schedules Create every interval.
func (s *Service) Job(interval time.Duration) cron.Job {
	return cron.Job{
		Name:        JobName,
		Description: "Archive every content table and ship it to object storage when configured",
		Interval:    interval,
		Fn: func(ctx context.Context) error {
			_, err := s.Create(ctx)
			return err
		},
	}
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/backups", authMW)
	g.GET("", h.list)
	g.POST("", h.create)
	g.POST("/restore", h.upload)
	g.GET("/:filename", h.download)
	g.POST("/:filename/restore", h.restore)
	g.DELETE("/:filename", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.List()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

func (h *Handler) create(c *gin.Context) {
	item, err := h.svc.Create(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item, "Backup created successfully")
}

func (h *Handler) download(c *gin.Context) {
	target, err := h.svc.Path(c.Param("filename"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(target, filepath.Base(target))
}

func (h *Handler) restore(c *gin.Context) {
	out, err := h.svc.Restore(c.Param("filename"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMsg(c, out, "Backup restored successfully")
}

// upload restores from a multipart "file" field without keeping the archive.
func (h *Handler) upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "Missing backup file")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes))
	if err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.svc.RestoreArchive(data)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMsg(c, out, "Backup restored successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("filename")); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Backup deleted successfully")
}
