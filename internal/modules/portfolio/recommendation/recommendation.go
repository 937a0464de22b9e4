package recommendation

import (
	"errors"

	"github.com/folio-space/core/internal/database"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateRecommendationDTO struct {
	Name     string `json:"name"     binding:"required"`
	Position string `json:"position" binding:"required"`
	Company  string `json:"company"  binding:"required"`
	Text     string `json:"text"     binding:"required"`
	Image    string `json:"image"`
	LinkedIn string `json:"linkedin"`
	Order    int    `json:"order"`
}

type UpdateRecommendationDTO struct {
	Name     *string `json:"name"`
	Position *string `json:"position"`
	Company  *string `json:"company"`
	Text     *string `json:"text"`
	Image    *string `json:"image"`
	LinkedIn *string `json:"linkedin"`
	Order    *int    `json:"order"`
}

var sortColumns = pagination.With(pagination.Columns{
	"order":   "sort_order",
	"name":    "name",
	"company": "company",
})

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query, company string) ([]models.Recommendation, response.Meta, error) {
	tx := s.db.Model(&models.Recommendation{}).Scopes(database.EqualFold("company", company))
	var items []models.Recommendation
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.Recommendation, error) {
	var r models.Recommendation
	if err := s.db.First(&r, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

func (s *Service) Create(dto *CreateRecommendationDTO) (*models.Recommendation, error) {
	r := models.Recommendation{
		Name: dto.Name, Position: dto.Position, Company: dto.Company, Text: dto.Text,
		Image: dto.Image, LinkedIn: dto.LinkedIn, Order: dto.Order,
	}
	return &r, s.db.Create(&r).Error
}

func (s *Service) Update(id string, dto *UpdateRecommendationDTO) (*models.Recommendation, error) {
	r, err := s.GetByID(id)
	if err != nil || r == nil {
		return r, err
	}
	for field, v := range map[string]*string{"name": dto.Name, "position": dto.Position, "company": dto.Company, "text": dto.Text} {
		if err := validate.NotBlank(field, v); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Position != nil {
		updates["position"] = *dto.Position
	}
	if dto.Company != nil {
		updates["company"] = *dto.Company
	}
	if dto.Text != nil {
		updates["text"] = *dto.Text
	}
	if dto.Image != nil {
		updates["image"] = *dto.Image
	}
	if dto.LinkedIn != nil {
		updates["linkedin"] = *dto.LinkedIn
	}
	if dto.Order != nil {
		updates["sort_order"] = *dto.Order
	}
	if len(updates) > 0 {
		if err := s.db.Model(r).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.Recommendation{}, "id = ?", id)
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
	g := rg.Group("/recommendations")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, meta, err := h.svc.List(pagination.FromContext(c), c.Query("company"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) get(c *gin.Context) {
	r, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if r == nil {
		response.NotFound(c, "Recommendation not found")
		return
	}
	response.OK(c, r)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateRecommendationDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	r, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, r, "Recommendation created successfully")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateRecommendationDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	r, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if r == nil {
		response.NotFound(c, "Recommendation not found")
		return
	}
	response.OKMsg(c, r, "Recommendation updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Recommendation not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Recommendation deleted successfully")
}
