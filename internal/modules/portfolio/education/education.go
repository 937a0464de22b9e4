package education

import (
	"errors"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateEducationDTO struct {
	Institution string  `json:"institution" binding:"required"`
	Degree      string  `json:"degree"      binding:"required"`
	Field       string  `json:"field"       binding:"required"`
	StartDate   string  `json:"startDate"   binding:"required"`
	EndDate     *string `json:"endDate"`
	Current     bool    `json:"current"`
	Description string  `json:"description"`
	Grade       string  `json:"grade"`
	Order       int     `json:"order"`
}

type UpdateEducationDTO struct {
	Institution *string `json:"institution"`
	Degree      *string `json:"degree"`
	Field       *string `json:"field"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	Current     *bool   `json:"current"`
	Description *string `json:"description"`
	Grade       *string `json:"grade"`
	Order       *int    `json:"order"`
}

var sortColumns = pagination.With(pagination.Columns{
	"order":       "sort_order",
	"startDate":   "start_date",
	"endDate":     "end_date",
	"institution": "institution",
})

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query, current *bool) ([]models.Education, response.Meta, error) {
	tx := s.db.Model(&models.Education{})
	if current != nil {
		tx = tx.Where("is_current = ?", *current)
	}
	var items []models.Education
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.Education, error) {
	var e models.Education
	if err := s.db.First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (s *Service) Create(dto *CreateEducationDTO) (*models.Education, error) {
	start, err := validate.ParseDate("startDate", dto.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := validate.ParseOptionalDate("endDate", dto.EndDate)
	if err != nil {
		return nil, err
	}
	if dto.Current {
		end = nil
	} else if end != nil && end.Before(start) {
		return nil, apperr.Validation("endDate must not be before startDate")
	}

	e := models.Education{
		Institution: dto.Institution, Degree: dto.Degree, Field: dto.Field,
		Description: dto.Description, StartDate: start, EndDate: end,
		Current: dto.Current, Grade: dto.Grade, Order: dto.Order,
	}
	return &e, s.db.Create(&e).Error
}

func (s *Service) Update(id string, dto *UpdateEducationDTO) (*models.Education, error) {
	e, err := s.GetByID(id)
	if err != nil || e == nil {
		return e, err
	}
	for field, v := range map[string]*string{"institution": dto.Institution, "degree": dto.Degree, "field": dto.Field} {
		if err := validate.NotBlank(field, v); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if dto.Institution != nil {
		updates["institution"] = *dto.Institution
	}
	if dto.Degree != nil {
		updates["degree"] = *dto.Degree
	}
	if dto.Field != nil {
		updates["field"] = *dto.Field
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Grade != nil {
		updates["grade"] = *dto.Grade
	}
	if dto.Order != nil {
		updates["sort_order"] = *dto.Order
	}

	if dto.StartDate != nil || dto.EndDate != nil || dto.Current != nil {
		start, end, current := e.StartDate, e.EndDate, e.Current
		if dto.StartDate != nil {
			if start, err = validate.ParseDate("startDate", *dto.StartDate); err != nil {
				return nil, err
			}
		}
		if dto.EndDate != nil {
			if end, err = validate.ParseOptionalDate("endDate", dto.EndDate); err != nil {
				return nil, err
			}
		}
		if dto.Current != nil {
			current = *dto.Current
		}
		if current {
			end = nil
		} else if end != nil && end.Before(start) {
			return nil, apperr.Validation("endDate must not be before startDate")
		}
		updates["start_date"] = start
		updates["end_date"] = end
		updates["is_current"] = current
	}

	if len(updates) > 0 {
		if err := s.db.Model(e).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.Education{}, "id = ?", id)
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
	g := rg.Group("/education")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, meta, err := h.svc.List(pagination.FromContext(c), pagination.ParseBool(c.Query("current")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) get(c *gin.Context) {
	e, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if e == nil {
		response.NotFound(c, "Education not found")
		return
	}
	response.OK(c, e)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateEducationDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	e, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e, "Education created successfully")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateEducationDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	e, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if e == nil {
		response.NotFound(c, "Education not found")
		return
	}
	response.OKMsg(c, e, "Education updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Education not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Education deleted successfully")
}
