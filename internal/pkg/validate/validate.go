// Package validate binds request bodies and turns validator failures into API errors.
package validate

import (
	"errors"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/folio-space/core/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var setupOnce sync.Once

// Setup makes validator report JSON field names. Safe to call more than once.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// BindJSON decodes the body into dst and validates it. An empty body is treated
// as an empty object so required-field checks still report every missing field.
func BindJSON(c *gin.Context, dst interface{}) error {
	Setup()
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return Struct(dst)
		}
		return translate(err)
	}
	return nil
}

// Struct validates an already populated value.
func Struct(v interface{}) error {
	Setup()
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid request body")
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperr.MissingFields(missing)
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "oneof":
		return apperr.Validation("Invalid %s: must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		return apperr.Validation("Invalid %s: must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return apperr.Validation("Invalid %s: must be at most %s", fe.Field(), fe.Param())
	case "url":
		return apperr.Validation("Invalid %s: must be a URL", fe.Field())
	}
	return apperr.Validation("Invalid value for field %s", fe.Field())
}

// IsEmail applies the loose address check used for contact and newsletter forms.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Email returns a validation error when s is not an address.
func Email(s string) error {
	if !IsEmail(strings.TrimSpace(s)) {
		return apperr.Validation("Invalid email format")
	}
	return nil
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "2006-01"}

// ParseDate accepts RFC 3339 timestamps, bare dates and year-month values.
func ParseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("Invalid %s: expected a date such as 2024-01-31", field)
}

// ParseOptionalDate parses raw unless it is nil or blank.
func ParseOptionalDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := ParseDate(field, *raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Trim returns s without surrounding whitespace, or nil for nil.
func Trim(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// NotBlank reports an error when an update sets a required field to blank.
func NotBlank(field string, s *string) error {
	if s != nil && strings.TrimSpace(*s) == "" {
		return apperr.Validation("%s cannot be empty", field)
	}
	return nil
}
