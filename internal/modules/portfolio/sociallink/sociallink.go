package sociallink

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

type CreateSocialLinkDTO struct {
	Name     string `json:"name"     binding:"required"`
	Platform string `json:"platform" binding:"required"`
	URL      string `json:"url"      binding:"required"`
	Icon     string `json:"icon"`
	Order    int    `json:"order"`
	Visible  *bool  `json:"visible"`
}

type UpdateSocialLinkDTO struct {
	Name     *string `json:"name"`
	Platform *string `json:"platform"`
	URL      *string `json:"url"`
	Icon     *string `json:"icon"`
	Order    *int    `json:"order"`
	Visible  *bool   `json:"visible"`
}

// Filter narrows the list endpoint.
type Filter struct {
	Visible  *bool
	Platform string
}

var sortColumns = pagination.With(pagination.Columns{
	"order":    "sort_order",
	"name":     "name",
	"platform": "platform",
})

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query, f Filter) ([]models.SocialLink, response.Meta, error) {
	tx := s.db.Model(&models.SocialLink{}).Scopes(database.EqualFold("platform", f.Platform))
	if f.Visible != nil {
		tx = tx.Where("visible = ?", *f.Visible)
	}
	var items []models.SocialLink
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.SocialLink, error) {
	var l models.SocialLink
	if err := s.db.First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (s *Service) Create(dto *CreateSocialLinkDTO) (*models.SocialLink, error) {
	visible := true
	if dto.Visible != nil {
		visible = *dto.Visible
	}
	l := models.SocialLink{
		Name: dto.Name, Platform: dto.Platform, URL: dto.URL,
		Icon: dto.Icon, Order: dto.Order, Visible: visible,
	}
	return &l, s.db.Create(&l).Error
}

func (s *Service) Update(id string, dto *UpdateSocialLinkDTO) (*models.SocialLink, error) {
	l, err := s.GetByID(id)
	if err != nil || l == nil {
		return l, err
	}
	for field, v := range map[string]*string{"name": dto.Name, "platform": dto.Platform, "url": dto.URL} {
		if err := validate.NotBlank(field, v); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Platform != nil {
		updates["platform"] = *dto.Platform
	}
	if dto.URL != nil {
		updates["url"] = *dto.URL
	}
	if dto.Icon != nil {
		updates["icon"] = *dto.Icon
	}
	if dto.Order != nil {
		updates["sort_order"] = *dto.Order
	}
	if dto.Visible != nil {
		updates["visible"] = *dto.Visible
	}
	if len(updates) > 0 {
		if err := s.db.Model(l).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.SocialLink{}, "id = ?", id)
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
	g := rg.Group("/social-links")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Visible:  pagination.ParseBool(c.Query("visible")),
		Platform: c.Query("platform"),
	}
	items, meta, err := h.svc.List(pagination.FromContext(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) get(c *gin.Context) {
	l, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if l == nil {
		response.NotFound(c, "Social link not found")
		return
	}
	response.OK(c, l)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateSocialLinkDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	l, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, l, "Social link created successfully")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSocialLinkDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	l, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if l == nil {
		response.NotFound(c, "Social link not found")
		return
	}
	response.OKMsg(c, l, "Social link updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Social link not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Social link deleted successfully")
}
