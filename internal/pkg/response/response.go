package response

import (
	"errors"
	"net/http"

	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Error categories carried in the "error" field of failure envelopes.
const (
	CategoryValidation      = "Validation Error"
	CategoryUnauthorized    = "Unauthorized"
	CategoryNotFound        = "Not Found"
	CategoryMethod          = "Method Not Allowed"
	CategoryConflict        = "Conflict"
	CategoryTooManyRequests = "Too Many Requests"
	CategoryInternal        = "Internal Server Error"
)

// Meta is the pagination block attached to list responses.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// NewMeta computes totalPages = ceil(total/limit) and hasMore = page < totalPages.
func NewMeta(total int64, page, limit int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Meta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// Envelope is the success body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Message string      `json:"message,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// ErrorEnvelope is the failure body.
type ErrorEnvelope struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Message    string `json:"message,omitempty"`
	StatusCode int    `json:"statusCode"`
}

// OK sends a 200 success envelope.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMsg sends a 200 success envelope with a message.
func OKMsg(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created sends a 201 success envelope.
func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Paged sends a list with its pagination meta.
func Paged(c *gin.Context, data interface{}, meta Meta) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Meta: &meta})
}

// Deleted sends the null-data success envelope used by DELETE routes.
func Deleted(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: nil, Message: message})
}

// Fail aborts with an error envelope.
func Fail(c *gin.Context, status int, category, message string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Success:    false,
		Error:      category,
		Message:    message,
		StatusCode: status,
	})
}

// BadRequest sends a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, CategoryValidation, message)
}

// Unauthorized sends a 401 error.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	Fail(c, http.StatusUnauthorized, CategoryUnauthorized, message)
}

// NotFound sends a 404 error.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	Fail(c, http.StatusNotFound, CategoryNotFound, message)
}

// MethodNotAllowed sends a 405 error.
func MethodNotAllowed(c *gin.Context) {
	Fail(c, http.StatusMethodNotAllowed, CategoryMethod, "Method not allowed")
}

// Conflict sends a 409 error.
func Conflict(c *gin.Context, message string) {
	Fail(c, http.StatusConflict, CategoryConflict, message)
}

// TooManyRequests sends a 429 error.
func TooManyRequests(c *gin.Context, message string) {
	Fail(c, http.StatusTooManyRequests, CategoryTooManyRequests, message)
}

// InternalError sends a 500 error.
func InternalError(c *gin.Context, err error) {
	message := "An unexpected error occurred"
	if err != nil {
		_ = c.Error(err)
		if gin.Mode() != gin.ReleaseMode {
			message = err.Error()
		}
	}
	Fail(c, http.StatusInternalServerError, CategoryInternal, message)
}

// Error maps a service error onto the taxonomy. gorm's record-not-found becomes a 404.
func Error(c *gin.Context, err error) {
	if e, ok := apperr.As(err); ok {
		switch e.Kind {
		case apperr.KindValidation:
			BadRequest(c, e.Message)
		case apperr.KindNotFound:
			NotFound(c, e.Message)
		case apperr.KindUnauthorized:
			Unauthorized(c, e.Message)
		case apperr.KindConflict:
			Conflict(c, e.Message)
		default:
			InternalError(c, err)
		}
		return
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		BadRequest(c, "Resource already exists")
	default:
		InternalError(c, err)
	}
}
