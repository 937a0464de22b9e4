package project

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

type CreateProjectDTO struct {
	Title       string   `json:"title"       binding:"required"`
	Description string   `json:"description" binding:"required"`
	Image       string   `json:"image"`
	Link        string   `json:"link"`
	Github      string   `json:"github"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
	Order       int      `json:"order"`
}

type UpdateProjectDTO struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Link        *string  `json:"link"`
	Github      *string  `json:"github"`
	Tags        []string `json:"tags"`
	Featured    *bool    `json:"featured"`
	Order       *int     `json:"order"`
}

var sortColumns = pagination.With(pagination.Columns{
	"order": "sort_order",
	"title": "title",
})

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query, featured *bool, tag string) ([]models.Project, response.Meta, error) {
	tx := s.db.Model(&models.Project{}).Scopes(database.HasTag("tags", tag))
	if featured != nil {
		tx = tx.Where("featured = ?", *featured)
	}
	var items []models.Project
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.Project, error) {
	var p models.Project
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) Create(dto *CreateProjectDTO) (*models.Project, error) {
	p := models.Project{
		Title: dto.Title, Description: dto.Description,
		Image: dto.Image, Link: dto.Link, Github: dto.Github,
		Tags: models.CleanTags(dto.Tags), Featured: dto.Featured, Order: dto.Order,
	}
	return &p, s.db.Create(&p).Error
}

func (s *Service) Update(id string, dto *UpdateProjectDTO) (*models.Project, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}
	if err := validate.NotBlank("title", dto.Title); err != nil {
		return nil, err
	}
	if err := validate.NotBlank("description", dto.Description); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Image != nil {
		updates["image"] = *dto.Image
	}
	if dto.Link != nil {
		updates["link"] = *dto.Link
	}
	if dto.Github != nil {
		updates["github"] = *dto.Github
	}
	if dto.Tags != nil {
		updates["tags"] = models.CleanTags(dto.Tags)
	}
	if dto.Featured != nil {
		updates["featured"] = *dto.Featured
	}
	if dto.Order != nil {
		updates["sort_order"] = *dto.Order
	}
	if len(updates) > 0 {
		if err := s.db.Model(p).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.Project{}, "id = ?", id)
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
	g := rg.Group("/projects")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, meta, err := h.svc.List(pagination.FromContext(c), pagination.ParseBool(c.Query("featured")), c.Query("tag"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "Project not found")
		return
	}
	response.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateProjectDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p, "Project created successfully")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateProjectDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "Project not found")
		return
	}
	response.OKMsg(c, p, "Project updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Project not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Project deleted successfully")
}
