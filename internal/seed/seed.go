// Package seed fills an empty database with sample portfolio data and blog posts.
package seed

import (
	"fmt"
	"time"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/modules/blog"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Mode selects what Run writes.
type Mode string

const (
	ModeAll   Mode = "all"
	ModeBlogs Mode = "blogs"
)

// ParseMode accepts "all" or "blogs".
func ParseMode(raw string) (Mode, error) {
	switch Mode(raw) {
	case ModeAll, ModeBlogs:
		return Mode(raw), nil
	}
	return "", fmt.Errorf("unknown seed mode %q, expected all or blogs", raw)
}

// Result counts the rows written per table.
type Result map[string]int

type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

func New(db *gorm.DB, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{db: db, logger: logger.Named("Seeder")}
}

func (s *Seeder) Run(mode Mode) (Result, error) {
	out := Result{}
	if mode == ModeAll {
		if err := s.portfolio(out); err != nil {
			return nil, err
		}
	}
	if err := s.blogs(out); err != nil {
		return nil, err
	}
	return out, nil
}

// portfolio replaces every portfolio table. Blogs, inbox rows and admins are left alone.
func (s *Seeder) portfolio(out Result) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.Profile{}, &models.SocialLink{}, &models.Skill{}, &models.Experience{},
			&models.Education{}, &models.Project{}, &models.Recommendation{}, &models.Content{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}

		for _, step := range portfolioSteps() {
			if err := tx.Create(step.rows).Error; err != nil {
				return fmt.Errorf("seed %s: %w", step.table, err)
			}
			out[step.table] = step.n
			s.logger.Info("seeded", zap.String("table", step.table), zap.Int("rows", step.n))
		}
		return nil
	})
}

// blogs inserts the sample posts whose slug is not in use yet, so it can be re-run.
func (s *Seeder) blogs(out Result) error {
	svc := blog.NewService(s.db, s.logger)
	created := 0
	for _, post := range samplePosts() {
		existing, err := svc.GetBySlug(post.Slug)
		if err != nil {
			return err
		}
		if existing != nil {
			s.logger.Debug("blog exists, skipping", zap.String("slug", post.Slug))
			continue
		}
		dto := post
		if _, err := svc.Create(&dto); err != nil {
			return fmt.Errorf("seed blog %q: %w", post.Slug, err)
		}
		created++
	}
	out["blogs"] = created
	s.logger.Info("seeded", zap.String("table", "blogs"), zap.Int("rows", created))
	return nil
}

func date(year int, month time.Month) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month) *time.Time {
	t := date(year, month)
	return &t
}
