package skill

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

type CreateSkillDTO struct {
	Name     string `json:"name"     binding:"required"`
	Category string `json:"category" binding:"required"`
	Level    *int   `json:"level"    binding:"required,min=0,max=100"`
	Icon     string `json:"icon"`
	Order    int    `json:"order"`
}

type UpdateSkillDTO struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Level    *int    `json:"level" binding:"omitempty,min=0,max=100"`
	Icon     *string `json:"icon"`
	Order    *int    `json:"order"`
}

var errSkillExists = apperr.Validation("Skill already exists")

var sortColumns = pagination.With(pagination.Columns{
	"order":    "sort_order",
	"name":     "name",
	"level":    "level",
	"category": "category",
})

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query, category string) ([]models.Skill, response.Meta, error) {
	tx := s.db.Model(&models.Skill{}).Scopes(database.EqualFold("category", category))
	var items []models.Skill
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

// Categories returns the distinct categories in use, sorted.
func (s *Service) Categories() ([]string, error) {
	var out []string
	err := s.db.Model(&models.Skill{}).Distinct("category").Order("category ASC").Pluck("category", &out).Error
	if out == nil {
		out = []string{}
	}
	return out, err
}

func (s *Service) GetByID(id string) (*models.Skill, error) {
	var sk models.Skill
	if err := s.db.First(&sk, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sk, nil
}

func nameTaken(tx *gorm.DB, name, exceptID string) (bool, error) {
	q := tx.Model(&models.Skill{}).Where("LOWER(name) = ?", strings.ToLower(name))
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (s *Service) Create(dto *CreateSkillDTO) (*models.Skill, error) {
	sk := models.Skill{
		Name: strings.TrimSpace(dto.Name), Category: dto.Category,
		Level: *dto.Level, Icon: dto.Icon, Order: dto.Order,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, sk.Name, "")
		if err != nil {
			return err
		}
		if taken {
			return errSkillExists
		}
		return tx.Create(&sk).Error
	})
	if database.IsUniqueViolation(err) {
		return nil, errSkillExists
	}
	if err != nil {
		return nil, err
	}
	return &sk, nil
}

func (s *Service) Update(id string, dto *UpdateSkillDTO) (*models.Skill, error) {
	sk, err := s.GetByID(id)
	if err != nil || sk == nil {
		return sk, err
	}
	for field, v := range map[string]*string{"name": dto.Name, "category": dto.Category} {
		if err := validate.NotBlank(field, v); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Category != nil {
		updates["category"] = *dto.Category
	}
	if dto.Level != nil {
		updates["level"] = *dto.Level
	}
	if dto.Icon != nil {
		updates["icon"] = *dto.Icon
	}
	if dto.Order != nil {
		updates["sort_order"] = *dto.Order
	}
	if len(updates) == 0 {
		return sk, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if dto.Name != nil && !strings.EqualFold(updates["name"].(string), sk.Name) {
			taken, err := nameTaken(tx, updates["name"].(string), id)
			if err != nil {
				return err
			}
			if taken {
				return errSkillExists
			}
		}
		return tx.Model(sk).Updates(updates).Error
	})
	if database.IsUniqueViolation(err) {
		return nil, errSkillExists
	}
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.Skill{}, "id = ?", id)
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
	g := rg.Group("/skills")
	g.GET("", h.list)
	g.GET("/categories", h.categories)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, meta, err := h.svc.List(pagination.FromContext(c), c.Query("category"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) categories(c *gin.Context) {
	out, err := h.svc.Categories()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, out)
}

func (h *Handler) get(c *gin.Context) {
	sk, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if sk == nil {
		response.NotFound(c, "Skill not found")
		return
	}
	response.OK(c, sk)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSkillDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	sk, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sk, "Skill created successfully")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSkillDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	sk, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if sk == nil {
		response.NotFound(c, "Skill not found")
		return
	}
	response.OKMsg(c, sk, "Skill updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Skill not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Skill deleted successfully")
}
