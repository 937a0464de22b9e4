package profile

import (
	"errors"

	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateProfileDTO struct {
	Name              string `json:"name"              binding:"required"`
	Title             string `json:"title"             binding:"required"`
	Bio               string `json:"bio"               binding:"required"`
	Email             string `json:"email"             binding:"required"`
	Phone             string `json:"phone"`
	Location          string `json:"location"`
	Avatar            string `json:"avatar"`
	ResumeURL         string `json:"resumeUrl"`
	AvailableForWork  bool   `json:"availableForWork"`
	YearsOfExperience int    `json:"yearsOfExperience" binding:"min=0"`
}

type UpdateProfileDTO struct {
	Name              *string `json:"name"`
	Title             *string `json:"title"`
	Bio               *string `json:"bio"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	Location          *string `json:"location"`
	Avatar            *string `json:"avatar"`
	ResumeURL         *string `json:"resumeUrl"`
	AvailableForWork  *bool   `json:"availableForWork"`
	YearsOfExperience *int    `json:"yearsOfExperience" binding:"omitempty,min=0"`
}

var errProfileExists = apperr.Validation("Profile already exists. Use PUT to update.")

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Get returns the single profile, or nil when none has been created.
func (s *Service) Get() (*models.Profile, error) {
	var p models.Profile
	if err := s.db.Order("created_at ASC").First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) GetByID(id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts the profile unless one already exists.
func (s *Service) Create(dto *CreateProfileDTO) (*models.Profile, error) {
	p := models.Profile{
		Name: dto.Name, Title: dto.Title, Bio: dto.Bio, Email: dto.Email,
		Phone: dto.Phone, Location: dto.Location, Avatar: dto.Avatar, ResumeURL: dto.ResumeURL,
		AvailableForWork: dto.AvailableForWork, YearsOfExperience: dto.YearsOfExperience,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Profile{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errProfileExists
		}
		return tx.Create(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies a partial update. A nil result means the profile does not exist.
func (s *Service) Update(id string, dto *UpdateProfileDTO) (*models.Profile, error) {
	p, err := s.GetByID(id)
	if err != nil || p == nil {
		return p, err
	}
	for field, v := range map[string]*string{"name": dto.Name, "title": dto.Title, "bio": dto.Bio, "email": dto.Email} {
		if err := validate.NotBlank(field, v); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = *dto.Name
	}
	if dto.Title != nil {
		updates["title"] = *dto.Title
	}
	if dto.Bio != nil {
		updates["bio"] = *dto.Bio
	}
	if dto.Email != nil {
		updates["email"] = *dto.Email
	}
	if dto.Phone != nil {
		updates["phone"] = *dto.Phone
	}
	if dto.Location != nil {
		updates["location"] = *dto.Location
	}
	if dto.Avatar != nil {
		updates["avatar"] = *dto.Avatar
	}
	if dto.ResumeURL != nil {
		updates["resume_url"] = *dto.ResumeURL
	}
	if dto.AvailableForWork != nil {
		updates["available_for_work"] = *dto.AvailableForWork
	}
	if dto.YearsOfExperience != nil {
		updates["years_of_experience"] = *dto.YearsOfExperience
	}
	if len(updates) > 0 {
		if err := s.db.Model(p).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.Profile{}, "id = ?", id)
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
	g := rg.Group("/profile")
	g.GET("", h.current)
	g.GET("/:id", h.get)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PUT("", h.updateCurrent)
	a.PATCH("", h.updateCurrent)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) current(c *gin.Context) {
	p, err := h.svc.Get()
	if err != nil {
		response.Error(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "Profile not found")
		return
	}
	response.OK(c, p)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "Profile not found")
		return
	}
	response.OK(c, p)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateProfileDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p, "Profile created successfully")
}

func (h *Handler) updateCurrent(c *gin.Context) {
	p, err := h.svc.Get()
	if err != nil {
		response.Error(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "Profile not found")
		return
	}
	h.apply(c, p.ID)
}

func (h *Handler) update(c *gin.Context) {
	h.apply(c, c.Param("id"))
}

func (h *Handler) apply(c *gin.Context, id string) {
	var dto UpdateProfileDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.svc.Update(id, &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if p == nil {
		response.NotFound(c, "Profile not found")
		return
	}
	response.OKMsg(c, p, "Profile updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Profile not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Profile deleted successfully")
}
