package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/folio-space/core/internal/middleware"
	"github.com/folio-space/core/internal/models"
	"github.com/folio-space/core/internal/pkg/apperr"
	jwtpkg "github.com/folio-space/core/internal/pkg/jwt"
	"github.com/folio-space/core/internal/pkg/response"
	"github.com/folio-space/core/internal/pkg/validate"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword"     binding:"required,min=8"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
	User      *models.AdminUser `json:"user"`
}

var errBadCredentials = apperr.Unauthorized("Invalid username or password")

// HashPassword returns the bcrypt hash stored for admin users.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, logger: logger.Named("AuthService"), ttl: jwtpkg.DefaultTTL, now: time.Now}
}

func (s *Service) Login(username, password string) (*LoginResult, error) {
	var u models.AdminUser
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errBadCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("failed login", zap.String("username", u.Username))
		return nil, errBadCredentials
	}

	token, expiresAt, err := jwtpkg.Sign(u.ID, u.Username, s.ttl)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	if err := s.db.Model(&u).UpdateColumn("last_login_at", now).Error; err != nil {
		return nil, err
	}
	u.LastLoginAt = &now
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: &u}, nil
}

func (s *Service) Me(userID string) (*models.AdminUser, error) {
	var u models.AdminUser
	if err := s.db.First(&u, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *Service) ChangePassword(userID string, dto *ChangePasswordDTO) error {
	u, err := s.Me(userID)
	if err != nil {
		return err
	}
	if u == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(dto.CurrentPassword)); err != nil {
		return apperr.Validation("Current password is incorrect")
	}
	hash, err := HashPassword(dto.NewPassword)
	if err != nil {
		return err
	}
	return s.db.Model(u).UpdateColumn("password_hash", hash).Error
}

// EnsureAdmin creates the admin account when it does not exist yet. An existing account
// keeps its password. created reports whether a row was inserted.
func (s *Service) EnsureAdmin(username, password string) (created bool, err error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, errors.New("admin username is empty")
	}
	var count int64
	if err := s.db.Model(&models.AdminUser{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if password == "" {
		s.logger.Warn("no admin account and no admin password configured; write endpoints stay locked",
			zap.String("username", username))
		return false, nil
	}
	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}
	if err := s.db.Create(&models.AdminUser{Username: username, PasswordHash: hash}).Error; err != nil {
		return false, err
	}
	s.logger.Info("admin account created", zap.String("username", username))
	return true, nil
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

// RegisterRoutes mounts /auth. guard throttles login attempts.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc, guard ...gin.HandlerFunc) {
	a := rg.Group("/auth")
	a.POST("/login", middleware.Guarded(h.login, guard...)...)
	a.GET("/me", authMW, h.me)
	a.PATCH("/password", authMW, h.changePassword)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.svc.Login(dto.Username, dto.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OKMsg(c, out, "Logged in successfully")
}

func (h *Handler) me(c *gin.Context) {
	u, err := h.svc.Me(middleware.CurrentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if u == nil {
		response.Unauthorized(c, "")
		return
	}
	response.OK(c, u)
}

func (h *Handler) changePassword(c *gin.Context) {
	var dto ChangePasswordDTO
	if err := validate.BindJSON(c, &dto); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.svc.ChangePassword(middleware.CurrentUserID(c), &dto); err != nil {
		response.Error(c, err)
		return
	}
	response.OKMsg(c, nil, "Password updated successfully")
}
