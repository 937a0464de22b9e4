package contact

import (
	"errors"
	"strings"
	"time"

	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CreateContactDTO struct {
	Name    string `json:"name"    binding:"required"`
	Email   string `json:"email"   binding:"required"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
	Type    string `json:"type"`
}

type UpdateContactDTO struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Subject *string `json:"subject"`
	Message *string `json:"message"`
	Type    *string `json:"type"`
	Status  *string `json:"status" binding:"omitempty,oneof=pending replied archived"`
	Replied *bool   `json:"replied"`
}

// Filter narrows the inbox listing.
type Filter struct {
	Status  string
	Type    string
	Replied *bool
}

const defaultType = "general"

var sortColumns = pagination.With(pagination.Columns{
	"status":    "status",
	"type":      "type",
	"name":      "name",
	"repliedAt": "replied_at",
})

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service { return &Service{db: db, now: time.Now} }

func (s *Service) List(q pagination.Query, f Filter) ([]models.ContactRequest, response.Meta, error) {
	tx := s.db.Model(&models.ContactRequest{})
	if v := strings.TrimSpace(f.Status); v != "" {
		tx = tx.Where("status = ?", strings.ToLower(v))
	}
	if v := strings.TrimSpace(f.Type); v != "" {
		tx = tx.Where("LOWER(type) = ?", strings.ToLower(v))
	}
	if f.Replied != nil {
		tx = tx.Where("replied = ?", *f.Replied)
	}
	var items []models.ContactRequest
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.ContactRequest, error) {
	var m models.ContactRequest
	if err := s.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (s *Service) Create(dto *CreateContactDTO) (*models.ContactRequest, error) {
	email := strings.TrimSpace(dto.Email)
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	typ := strings.TrimSpace(dto.Type)
	if typ == "" {
		typ = defaultType
	}
	m := models.ContactRequest{
		Name:    strings.TrimSpace(dto.Name),
		Email:   email,
		Subject: strings.TrimSpace(dto.Subject),
		Message: dto.Message,
		Type:    typ,
		Status:  models.ContactPending,
	}
	return &m, s.db.Create(&m).Error
}

// Update applies a partial change. Marking a message replied stamps repliedAt once and,
// unless a status is given, moves it to the replied state.
func (s *Service) Update(id string, dto *UpdateContactDTO) (*models.ContactRequest, error) {
	m, err := s.GetByID(id)
	if err != nil || m == nil {
		return m, err
	}
	for field, v := range map[string]*string{"name": dto.Name, "email": dto.Email, "message": dto.Message} {
		if err := validate.NotBlank(field, v); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Email != nil {
		email := strings.TrimSpace(*dto.Email)
		if err := validate.Email(email); err != nil {
			return nil, err
		}
		updates["email"] = email
	}
	if dto.Subject != nil {
		updates["subject"] = strings.TrimSpace(*dto.Subject)
	}
	if dto.Message != nil {
		updates["message"] = *dto.Message
	}
	if dto.Type != nil {
		updates["type"] = strings.TrimSpace(*dto.Type)
	}
	if dto.Status != nil {
		updates["status"] = *dto.Status
	}
	if dto.Replied != nil {
		updates["replied"] = *dto.Replied
		if *dto.Replied && !m.Replied {
			updates["replied_at"] = s.now().UTC()
			if dto.Status == nil {
				updates["status"] = models.ContactReplied
			}
		}
	}
	if len(updates) > 0 {
		if err := s.db.Model(m).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.ContactRequest{}, "id = ?", id)
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

// RegisterRoutes mounts /contact. Only submitting a message is public.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, guard ...gin.HandlerFunc) {
	g := rg.Group("/contact")
	g.POST("", middleware.Guarded(h.create, guard...)...)

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.GET("/:id", h.get)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	f := Filter{
		Status:  c.Query("status"),
		Type:    c.Query("type"),
		Replied: pagination.ParseBool(c.Query("replied")),
	}
	items, meta, err := h.svc.List(pagination.FromContext(c), f)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) get(c *gin.Context) {
	m, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if m == nil {
		response.NotFound(c, "Contact request not found")
		return
	}
	response.OK(c, m)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateContactDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	m, err := h.svc.Create(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, m, "Message sent successfully")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateContactDTO
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
		response.NotFound(c, "Contact request not found")
		return
	}
	response.OKMsg(c, m, "Contact request updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Contact request not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Contact request deleted successfully")
}
