package experience

import (
	"errors"
	"time"

	"github.com/folio-space/core/internal/database"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateExperienceDTO struct {
	Company      string   `json:"company"     binding:"required"`
	Position     string   `json:"position"    binding:"required"`
	Description  string   `json:"description" binding:"required"`
	StartDate    string   `json:"startDate"   binding:"required"`
	EndDate      *string  `json:"endDate"`
	Current      bool     `json:"current"`
	Location     string   `json:"location"`
	Logo         string   `json:"logo"`
	Technologies []string `json:"technologies"`
	Order        int      `json:"order"`
}

type UpdateExperienceDTO struct {
	Company      *string  `json:"company"`
	Position     *string  `json:"position"`
	Description  *string  `json:"description"`
	StartDate    *string  `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	Current      *bool    `json:"current"`
	Location     *string  `json:"location"`
	Logo         *string  `json:"logo"`
	Technologies []string `json:"technologies"`
	Order        *int     `json:"order"`
}

var sortColumns = pagination.With(pagination.Columns{
	"order":     "sort_order",
	"startDate": "start_date",
	"endDate":   "end_date",
	"company":   "company",
})

// checkRange rejects an end date before the start date. A current position has no end date.
func checkRange(start time.Time, end *time.Time, current bool) (*time.Time, error) {
	if current {
		return nil, nil
	}
	if end != nil && end.Before(start) {
		return nil, apperr.Validation("endDate must not be before startDate")
	}
	return end, nil
}

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) List(q pagination.Query, current *bool, technology string) ([]models.Experience, response.Meta, error) {
	tx := s.db.Model(&models.Experience{}).Scopes(database.HasTag("technologies", technology))
	if current != nil {
		tx = tx.Where("is_current = ?", *current)
	}
	var items []models.Experience
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.Experience, error) {
	var e models.Experience
	if err := s.db.First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (s *Service) Create(dto *CreateExperienceDTO) (*models.Experience, error) {
	start, err := validate.ParseDate("startDate", dto.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := validate.ParseOptionalDate("endDate", dto.EndDate)
	if err != nil {
		return nil, err
	}
	if end, err = checkRange(start, end, dto.Current); err != nil {
		return nil, err
	}

	e := models.Experience{
		Company: dto.Company, Position: dto.Position, Description: dto.Description,
		StartDate: start, EndDate: end, Current: dto.Current,
		Location: dto.Location, Logo: dto.Logo,
		Technologies: models.CleanTags(dto.Technologies), Order: dto.Order,
	}
	return &e, s.db.Create(&e).Error
}

func (s *Service) Update(id string, dto *UpdateExperienceDTO) (*models.Experience, error) {
	e, err := s.GetByID(id)
	if err != nil || e == nil {
		return e, err
	}
	for field, v := range map[string]*string{"company": dto.Company, "position": dto.Position, "description": dto.Description} {
		if err := validate.NotBlank(field, v); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if dto.Company != nil {
		updates["company"] = *dto.Company
	}
	if dto.Position != nil {
		updates["position"] = *dto.Position
	}
	if dto.Description != nil {
		updates["description"] = *dto.Description
	}
	if dto.Location != nil {
		updates["location"] = *dto.Location
	}
	if dto.Logo != nil {
		updates["logo"] = *dto.Logo
	}
	if dto.Technologies != nil {
		updates["technologies"] = models.CleanTags(dto.Technologies)
	}
	if dto.Order != nil {
		updates["sort_order"] = *dto.Order
	}

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
	if dto.StartDate != nil || dto.EndDate != nil || dto.Current != nil {
		if end, err = checkRange(start, end, current); err != nil {
			return nil, err
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
	result := s.db.Delete(&models.Experience{}, "id = ?", id)
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
	g := rg.Group("/experiences")
	g.GET("", h.list)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, meta, err := h.svc.List(pagination.FromContext(c), pagination.ParseBool(c.Query("current")), c.Query("technology"))
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
		response.NotFound(c, "Experience not found")
		return
	}
	response.OK(c, e)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateExperienceDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	e, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, e, "Experience created successfully")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateExperienceDTO
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
		response.NotFound(c, "Experience not found")
		return
	}
	response.OKMsg(c, e, "Experience updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Experience not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Experience deleted successfully")
}
