package newsletter

import (
	"errors"
	"strings"
	"time"

	"github.com/folio-space/core/internal/database"
	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/folio-space/core/internal/pkg/pagination"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SubscribeDTO struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name"`
}

type UnsubscribeDTO struct {
	Email string `json:"email" binding:"required"`
}

type UpdateSubscriberDTO struct {
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	Subscribed *bool   `json:"subscribed"`
}

var (
	errAlreadySubscribed = apperr.Validation("Email is already subscribed to the newsletter")
	errEmailTaken        = apperr.Validation("A subscriber with this email already exists")
)

var sortColumns = pagination.With(pagination.Columns{
	"email":       "email",
	"name":        "name",
	"confirmedAt": "confirmed_at",
})

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service { return &Service{db: db, now: time.Now} }

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *Service) List(q pagination.Query, subscribed *bool, search string) ([]models.NewsletterSubscriber, response.Meta, error) {
	tx := s.db.Model(&models.NewsletterSubscriber{}).Scopes(database.Search(search, "email", "name"))
	if subscribed != nil {
		tx = tx.Where("subscribed = ?", *subscribed)
	}
	var items []models.NewsletterSubscriber
	meta, err := pagination.Paginate(tx, q, sortColumns, &items)
	return items, meta, err
}

func (s *Service) GetByID(id string) (*models.NewsletterSubscriber, error) {
	return s.first(s.db, "id = ?", id)
}

func (s *Service) first(tx *gorm.DB, query string, arg interface{}) (*models.NewsletterSubscriber, error) {
	var sub models.NewsletterSubscriber
	if err := tx.Where(query, arg).First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// Subscribe registers email. An existing but unsubscribed address is flipped back on
// instead of inserting a second row; resubscribed reports that path.
func (s *Service) Subscribe(dto *SubscribeDTO) (sub *models.NewsletterSubscriber, resubscribed bool, err error) {
	email := normalizeEmail(dto.Email)
	if err := validate.Email(email); err != nil {
		return nil, false, err
	}
	now := s.now().UTC()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.first(tx, "email = ?", email)
		if err != nil {
			return err
		}
		if existing == nil {
			sub = &models.NewsletterSubscriber{
				Email: email, Name: strings.TrimSpace(dto.Name),
				Subscribed: true, ConfirmedAt: &now,
			}
			return tx.Create(sub).Error
		}
		if existing.Subscribed {
			return errAlreadySubscribed
		}
		updates := map[string]interface{}{"subscribed": true, "confirmed_at": now}
		if name := strings.TrimSpace(dto.Name); name != "" {
			updates["name"] = name
		}
		if err := tx.Model(existing).Updates(updates).Error; err != nil {
			return err
		}
		resubscribed = true
		sub, err = s.first(tx, "id = ?", existing.ID)
		return err
	})
	if database.IsUniqueViolation(err) {
		return nil, false, errAlreadySubscribed
	}
	if err != nil {
		return nil, false, err
	}
	return sub, resubscribed, nil
}

// Unsubscribe turns the subscription off. Unknown addresses are not found.
func (s *Service) Unsubscribe(email string) (*models.NewsletterSubscriber, error) {
	email = normalizeEmail(email)
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	result := s.db.Model(&models.NewsletterSubscriber{}).Where("email = ?", email).Update("subscribed", false)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return s.first(s.db, "email = ?", email)
}

func (s *Service) Update(id string, dto *UpdateSubscriberDTO) (*models.NewsletterSubscriber, error) {
	sub, err := s.GetByID(id)
	if err != nil || sub == nil {
		return sub, err
	}
	if err := validate.NotBlank("email", dto.Email); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if dto.Email != nil {
		email := normalizeEmail(*dto.Email)
		if err := validate.Email(email); err != nil {
			return nil, err
		}
		if email != sub.Email {
			updates["email"] = email
		}
	}
	if dto.Name != nil {
		updates["name"] = strings.TrimSpace(*dto.Name)
	}
	if dto.Subscribed != nil {
		updates["subscribed"] = *dto.Subscribed
		if *dto.Subscribed && !sub.Subscribed {
			updates["confirmed_at"] = s.now().UTC()
		}
	}
	if len(updates) == 0 {
		return sub, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if email, ok := updates["email"].(string); ok {
			taken, err := s.first(tx, "email = ?", email)
			if err != nil {
				return err
			}
			if taken != nil {
				return errEmailTaken
			}
		}
		return tx.Model(sub).Updates(updates).Error
	})
	if database.IsUniqueViolation(err) {
		return nil, errEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return s.GetByID(id)
}

func (s *Service) Delete(id string) error {
	result := s.db.Delete(&models.NewsletterSubscriber{}, "id = ?", id)
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

// RegisterRoutes mounts /newsletter. Signing up and leaving are public and run behind guard;
// reading the list is admin only.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, guard ...gin.HandlerFunc) {
	g := rg.Group("/newsletter")
	g.POST("", middleware.Guarded(h.subscribe, guard...)...)
	g.POST("/unsubscribe", middleware.Guarded(h.unsubscribe, guard...)...)

	a := g.Group("", authMW)
	a.GET("", h.list)
	a.GET("/:id", h.get)
	a.PUT("/:id", h.update)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	items, meta, err := h.svc.List(pagination.FromContext(c), pagination.ParseBool(c.Query("subscribed")), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, items, meta)
}

func (h *Handler) get(c *gin.Context) {
	sub, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if sub == nil {
		response.NotFound(c, "Subscriber not found")
		return
	}
	response.OK(c, sub)
}

func (h *Handler) subscribe(c *gin.Context) {
	var dto SubscribeDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	sub, resubscribed, err := h.svc.Subscribe(&dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if resubscribed {
		response.OKMsg(c, sub, "Successfully resubscribed to the newsletter")
		return
	}
	response.Created(c, sub, "Successfully subscribed to the newsletter")
}

func (h *Handler) unsubscribe(c *gin.Context) {
	var dto UnsubscribeDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	sub, err := h.svc.Unsubscribe(dto.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	if sub == nil {
		response.NotFound(c, "Subscriber not found")
		return
	}
	response.OKMsg(c, sub, "Successfully unsubscribed from the newsletter")
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateSubscriberDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	sub, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		response.Error(c, err)
		return
	}
	if sub == nil {
		response.NotFound(c, "Subscriber not found")
		return
	}
	response.OKMsg(c, sub, "Subscriber updated successfully")
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "Subscriber not found")
			return
		}
		response.Error(c, err)
		return
	}
	response.Deleted(c, "Subscriber deleted successfully")
}
