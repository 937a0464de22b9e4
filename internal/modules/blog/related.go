package blog

import (
	"github.com/folio-space/core/internal/database"
	"github.com/folio-space/core/internal/models"
	"gorm.io/gorm"
)

// ClampRelatedLimit applies the default of 3 and the ceiling of 20.
func ClampRelatedLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultRelatedLimit
	case limit > MaxRelatedLimit:
		return MaxRelatedLimit
	default:
		return limit
	}
}

// Related returns up to limit published posts for the post with the given id.
// Posts sharing at least one tag come first, ranked by featured, views, likes and
// recency. The rest is padded with the most recently published posts. The source
// post never appears and no post appears twice. A nil slice with nil error means
// the source post does not exist.
func (s *Service) Related(id string, limit int) ([]models.Blog, error) {
	limit = ClampRelatedLimit(limit)

	source, err := s.GetByID(id)
	if err != nil || source == nil {
		return nil, err
	}

	out := make([]models.Blog, 0, limit)
	seen := map[string]struct{}{source.ID: {}}

	if len(source.Tags) > 0 {
		var tagged []models.Blog
		err := s.published(source.ID).
			Scopes(database.HasAnyTag("tags", source.Tags...)).
			Order("featured DESC").
			Order("views DESC").
			Order("likes DESC").
			Order("COALESCE(published_at, created_at) DESC").
			Limit(limit).
			Find(&tagged).Error
		if err != nil {
			return nil, err
		}
		for _, b := range tagged {
			seen[b.ID] = struct{}{}
			out = append(out, b)
		}
	}

	if len(out) < limit {
		exclude := make([]string, 0, len(seen))
		for id := range seen {
			exclude = append(exclude, id)
		}
		var recent []models.Blog
		err := s.published("").
			Where("id NOT IN ?", exclude).
			Order("COALESCE(published_at, created_at) DESC").
			Limit(limit - len(out)).
			Find(&recent).Error
		if err != nil {
			return nil, err
		}
		for _, b := range recent {
			if _, dup := seen[b.ID]; dup {
				continue
			}
			seen[b.ID] = struct{}{}
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *Service) published(exceptID string) *gorm.DB {
	tx := s.db.Model(&models.Blog{}).Where("published = ?", true)
	if exceptID != "" {
		tx = tx.Where("id <> ?", exceptID)
	}
	return tx
}
