// Package sitecontent serves the key/value store behind static site copy.
package sitecontent

import (
	"errors"
	"strings"

	"github.com/folio-space/core/internal/database"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateContentDTO struct {
	Key   string `json:"key"   binding:"required"`
	Value string `json:"value" binding:"required"`
	Type  string `json:"type"`
}

type UpdateContentDTO struct {
	Key   *string `json:"key"`
	Value *string `json:"value"`
	Type  *string `json:"type"`
}

const defaultType = "text"

var errKeyTaken = apperr.Validation("Content with this key already exists")

var sortColumns = pagination.With(pagination.Columns{
	"key":  "content_key",
	"type": "content_type",
})

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query, typ, search string) ([]models.Content, response.Meta, error) {
	tx := s.db.Model(&models.Content{}).Scopes(
		database.EqualFold("content_type", typ),
		database.Search(search, "content_key", "value"),
	)
	var items []models.Content
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.Content, error) {
	return s.first(s.db, "id = ?", id)
}

func (s *Service) GetByKey(key string) (*models.Content, error) {
	return s.first(s.db, "content_key = ?", strings.TrimSpace(key))
}

func (s *Service) first(tx *gorm.DB, query string, arg interface{}) (*models.Content, error) {
	var m models.Content
	if err := tx.Where(query, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func keyTaken(tx *gorm.DB, key, exceptID string) (bool, error) {
	q := tx.Model(&models.Content{}).Where("content_key = ?", key)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (s *Service) Create(dto *CreateContentDTO) (*models.Content, error) {
	typ := strings.TrimSpace(dto.Type)
	if typ == "" {
		typ = defaultType
	}
	m := models.Content{Key: strings.TrimSpace(dto.Key), Value: dto.Value, Type: typ}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := keyTaken(tx, m.Key, "")
		if err != nil {
			return err
		}
		if taken {
			return errKeyTaken
		}
		return tx.Create(&m).Error
	})
	if database.IsUniqueViolation(err) {
		return nil, errKeyTaken
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) Update(id string, dto *UpdateContentDTO) (*models.Content, error) {
	m, err := s.GetByID(id)
	if err != nil || m == nil {
		return m, err
	}
	if err := validate.NotBlank("key", dto.Key); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Key != nil {
		if key := strings.TrimSpace(*dto.Key); key != m.Key {
			updates["content_key"] = key
		}
	}
	if dto.Value != nil {
		updates["value"] = *dto.Value
	}
	if dto.Type != nil {
		updates["content_type"] = strings.TrimSpace(*dto.Type)
	}
	if len(updates) == 0 {
		return m, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if key, ok := updates["content_key"].(string); ok {
			taken, err := keyTaken(tx, key, id)
			if err != nil {
				return err
			}
			if taken {
				return errKeyTaken
			}
		}
		return tx.Model(m).Updates(updates).Error
	})
	if database.IsUniqueViolation(err) {
		return nil, errKeyTaken
	}
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.Content{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/content")
	g.GET("", h.list)
	g.GET("/key/:key", h.getByKey)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, meta, err := h.svc.List(pagination.FromContext(c), c.Query("type"), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) get(c *gin.Context) {
	h.reply(c)(h.svc.GetByID(c.Param("id")))
}

func (h *Handler) getByKey(c *gin.Context) {
	h.reply(c)(h.svc.GetByKey(c.Param("key")))
}

func (h *Handler) reply(c *gin.Context) func(*models.Content, error) {
	return func(m *models.Content, err error) {
		if err != nil {
			response.Error(c, err)
			return
		}
		if m == nil {
			response.NotFound(c, "Content not found")
			return
		}
		response.OK(c, m)
	}
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateContentDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	m, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, m, "Content created successfully")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateContentDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	m, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if m == nil {
		response.NotFound(c, "Content not found")
		return
	}
	response.OKMsg(c, m, "Content updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Content not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Content deleted successfully")
}
