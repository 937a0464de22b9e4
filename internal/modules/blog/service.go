package blog

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/folio-space/core/internal/database"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/folio-space/core/internal/pkg/markdown"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/readtime"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/slug"
	"github.com/folio-space/core/internal/pkg/validate"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errSlugTaken        = apperr.Validation("A blog post with this slug already exists")
	errDraftPublishedAt = apperr.Validation("publishedAt can only be set on a published post")
)

var sortColumns = pagination.With(pagination.Columns{
	"publishedAt": "published_at",
	"views":       "views",
	"likes":       "likes",
	"title":       "title",
	"readTime":    "read_time",
})

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger.Named("BlogService"), now: time.Now}
}

func (s *Service) List(q pagination.Query, f Filter) ([]models.Blog, response.Meta, error) {
	tx := s.db.Model(&models.Blog{}).Scopes(
		database.HasTag("tags", f.Tag),
		database.EqualFold("author", f.Author),
		database.Search(f.Search, "title", "excerpt", "content"),
	)
	if f.Published != nil {
		tx = tx.Where("published = ?", *f.Published)
	}
	if f.Featured != nil {
		tx = tx.Where("featured = ?", *f.Featured)
	}
	var items []models.Blog
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.Blog, error) {
	return s.first("id = ?", id)
}

func (s *Service) GetBySlug(slugValue string) (*models.Blog, error) {
	return s.first("slug = ?", slugValue)
}

func (s *Service) first(query string, arg interface{}) (*models.Blog, error) {
	var b models.Blog
	if err := s.db.Where(query, arg).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

// View increments the view counter of the post matched by column and returns it.
// column is "id" or "slug".
func (s *Service) View(column, value string) (*models.Blog, error) {
	return s.bump(column, value, "views")
}

// Like increments the like counter and returns the post.
func (s *Service) Like(id string) (*models.Blog, error) {
	return s.bump("id", id, "likes")
}

func (s *Service) bump(column, value, counter string) (*models.Blog, error) {
	var b models.Blog
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Blog{}).Where(column+" = ?", value).
			UpdateColumn(counter, gorm.Expr(counter+" + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where(column+" = ?", value).First(&b).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func resolveContent(content, md string) (string, error) {
	if strings.TrimSpace(md) == "" {
		return content, nil
	}
	return markdown.ToHTML(md)
}

func resolveSlug(explicit, title string) (string, error) {
	source := explicit
	if strings.TrimSpace(source) == "" {
		source = title
	}
	out := slug.Make(source)
	if out == "" {
		return "", apperr.Validation("Could not derive a slug from %q", source)
	}
	return out, nil
}

func slugTaken(tx *gorm.DB, value, exceptID string) (bool, error) {
	q := tx.Model(&models.Blog{}).Where("slug = ?", value)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (s *Service) Create(dto *CreateBlogDTO) (*models.Blog, error) {
	var missing []string
	if strings.TrimSpace(dto.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(dto.Content) == "" && strings.TrimSpace(dto.Markdown) == "" {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return nil, apperr.MissingFields(missing)
	}

	content, err := resolveContent(dto.Content, dto.Markdown)
	if err != nil {
		return nil, err
	}
	slugValue, err := resolveSlug(dto.Slug, dto.Title)
	if err != nil {
		return nil, err
	}
	excerpt := strings.TrimSpace(dto.Excerpt)
	if excerpt == "" {
		excerpt = readtime.Excerpt(content, excerptLength)
	}

	b := models.Blog{
		Title:      strings.TrimSpace(dto.Title),
		Slug:       slugValue,
		Excerpt:    excerpt,
		Content:    content,
		CoverImage: dto.CoverImage,
		Tags:       models.CleanTags(dto.Tags),
		Author:     dto.Author,
		Published:  dto.Published,
		Featured:   dto.Featured,
		ReadTime:   estimateReadTime(content),
	}
	if dto.Published {
		at, err := s.publishTime(dto.PublishedAt)
		if err != nil {
			return nil, err
		}
		b.PublishedAt = &at
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := slugTaken(tx, b.Slug, "")
		if err != nil {
			return err
		}
		if taken {
			return errSlugTaken
		}
		return tx.Create(&b).Error
	})
	if database.IsUniqueViolation(err) {
		return nil, errSlugTaken
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("blog post created", zap.String("slug", b.Slug), zap.Bool("published", b.Published))
	return &b, nil
}

func (s *Service) Update(id string, dto *UpdateBlogDTO) (*models.Blog, error) {
	b, err := s.GetByID(id)
	if err != nil || b == nil {
		return b, err
	}
	if err := validate.NotBlank("title", dto.Title); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = strings.TrimSpace(*dto.Title)
	}
	if dto.Slug != nil {
		title := b.Title
		if dto.Title != nil {
			title = strings.TrimSpace(*dto.Title)
		}
		next, err := resolveSlug(*dto.Slug, title)
		if err != nil {
			return nil, err
		}
		if next != b.Slug {
			updates["slug"] = next
		}
	}

	content := b.Content
	if dto.Content != nil || dto.Markdown != nil {
		var raw, md string
		if dto.Content != nil {
			raw = *dto.Content
		}
		if dto.Markdown != nil {
			md = *dto.Markdown
		}
		if content, err = resolveContent(raw, md); err != nil {
			return nil, err
		}
		if strings.TrimSpace(content) == "" {
			return nil, apperr.Validation("content cannot be empty")
		}
		updates["content"] = content
		updates["read_time"] = estimateReadTime(content)
	}
	if dto.Excerpt != nil {
		excerpt := strings.TrimSpace(*dto.Excerpt)
		if excerpt == "" {
			excerpt = readtime.Excerpt(content, excerptLength)
		}
		updates["excerpt"] = excerpt
	}
	if dto.CoverImage != nil {
		updates["cover_image"] = *dto.CoverImage
	}
	if dto.Tags != nil {
		updates["tags"] = models.CleanTags(dto.Tags)
	}
	if dto.Author != nil {
		updates["author"] = *dto.Author
	}
	if dto.Featured != nil {
		updates["featured"] = *dto.Featured
	}
	if dto.Published != nil {
		updates["published"] = *dto.Published
		if *dto.Published && !b.Published {
			at, err := s.publishTime(dto.PublishedAt)
			if err != nil {
				return nil, err
			}
			updates["published_at"] = at
		}
	}
	if dto.PublishedAt != nil && updates["published_at"] == nil {
		published := b.Published
		if dto.Published != nil {
			published = *dto.Published
		}
		if !published {
			return nil, errDraftPublishedAt
		}
		at, err := validate.ParseOptionalDate("publishedAt", dto.PublishedAt)
		if err != nil {
			return nil, err
		}
		updates["published_at"] = at
	}
	if len(updates) == 0 {
		return b, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if next, ok := updates["slug"].(string); ok {
			taken, err := slugTaken(tx, next, id)
			if err != nil {
				return err
			}
			if taken {
				return errSlugTaken
			}
		}
		return tx.Model(b).Updates(updates).Error
	})
	if database.IsUniqueViolation(err) {
		return nil, errSlugTaken
	}
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) publishTime(raw *string) (time.Time, error) {
	at, err := validate.ParseOptionalDate("publishedAt", raw)
	if err != nil {
		return time.Time{}, err
	}
	if at == nil {
		return s.now().UTC(), nil
	}
	return *at, nil
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.Blog{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Tags counts the tags of published posts, most used first.
func (s *Service) Tags() ([]TagCount, error) {
	var posts []models.Blog
	if err := s.db.Select("id", "tags").Where("published = ?", true).Find(&posts).Error; err != nil {
		return nil, err
	}

	counts := map[string]*TagCount{}
	for _, p := range posts {
		for _, tag := range p.Tags {
			key := strings.ToLower(tag)
			if tc, ok := counts[key]; ok {
				tc.Count++
				continue
			}
			counts[key] = &TagCount{Tag: tag, Count: 1}
		}
	}
	out := make([]TagCount, 0, len(counts))
	for _, tc := range counts {
		out = append(out, *tc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Tag) < strings.ToLower(out[j].Tag)
	})
	return out, nil
}

// estimateReadTime is at least one minute for any non-empty post.
func estimateReadTime(content string) int {
	minutes := readtime.Minutes(content)
	if minutes < 1 && strings.TrimSpace(content) != "" {
		return 1
	}
	return minutes
}
