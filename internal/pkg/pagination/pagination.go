package pagination

import (
	"strconv"
	"strings"

	"github.com/folio-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	DefaultPage      = 1
	DefaultLimit     = 10
	MaxLimit         = 100
	DefaultSortBy    = "createdAt"
	DefaultSortOrder = "desc"
)

// Query holds parsed pagination and sort parameters.
type Query struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Skip is the row offset for the page.
func (q Query) Skip() int { return (q.Page - 1) * q.Limit }

// FromContext extracts pagination params from the request query string.
func FromContext(c *gin.Context) Query {
	return Parse(c.Query)
}

// Parse reads page/limit/sortBy/sortOrder through get. page is floored at 1, limit is
// clamped to [1,100], and sortOrder is anything but "asc" → "desc".
func Parse(get func(string) string) Query {
	page := parseIntOr(get("page"), DefaultPage)
	if page < 1 {
		page = 1
	}
	limit := parseIntOr(get("limit"), DefaultLimit)
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	sortBy := strings.TrimSpace(get("sortBy"))
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	sortOrder := DefaultSortOrder
	if strings.EqualFold(strings.TrimSpace(get("sortOrder")), "asc") {
		sortOrder = "asc"
	}
	return Query{Page: page, Limit: limit, SortBy: sortBy, SortOrder: sortOrder}
}

// Columns maps API field names to database columns for sorting.
type Columns map[string]string

// BaseColumns are sortable on every table.
var BaseColumns = Columns{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// With returns a copy of BaseColumns extended with extra.
func With(extra Columns) Columns {
	out := make(Columns, len(BaseColumns)+len(extra))
	for k, v := range BaseColumns {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// OrderClause resolves SortBy against allowed; unknown fields fall back to created_at.
func (q Query) OrderClause(allowed Columns) string {
	column, ok := allowed[q.SortBy]
	if !ok {
		column = "created_at"
	}
	return column + " " + q.SortOrder + ", id " + q.SortOrder
}

// Paginate counts the filtered rows, then loads the requested page in the requested order.
func Paginate[T any](db *gorm.DB, q Query, allowed Columns, dest *[]T) (response.Meta, error) {
	var total int64
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return response.Meta{}, err
	}

	if err := db.Order(q.OrderClause(allowed)).Offset(q.Skip()).Limit(q.Limit).Find(dest).Error; err != nil {
		return response.Meta{}, err
	}
	if *dest == nil {
		*dest = []T{}
	}
	return response.NewMeta(total, q.Page, q.Limit), nil
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

// ParseBool reads an optional boolean filter. Empty or malformed values mean "no filter".
func ParseBool(raw string) *bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		v := true
		return &v
	case "false", "0", "no":
		v := false
		return &v
	}
	return nil
}
