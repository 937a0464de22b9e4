package database

import (
	"encoding/json"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// EscapeLike escapes LIKE wildcards with '!' so patterns behave the same on every dialect.
func EscapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

// HasTag filters rows whose JSON string-array column contains tag, ignoring case.
func HasTag(column, tag string) func(*gorm.DB) *gorm.DB {
	return HasAnyTag(column, tag)
}

// HasAnyTag filters rows whose JSON string-array column contains at least one of tags.
// Blank tags are ignored; with none left the scope is a no-op. SQLite's LOWER folds ASCII
// only, so the exact spelling is matched alongside the lowercased one.
func HasAnyTag(column string, tags ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		var (
			clauses []string
			args    []interface{}
		)
		for _, tag := range tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			folded, _ := json.Marshal(strings.ToLower(tag))
			exact, _ := json.Marshal(tag)
			clauses = append(clauses,
				"LOWER("+column+") LIKE ? ESCAPE '!'",
				column+" LIKE ? ESCAPE '!'",
			)
			args = append(args,
				"%"+EscapeLike(string(folded))+"%",
				"%"+EscapeLike(string(exact))+"%",
			)
		}
		if len(clauses) == 0 {
			return db
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// Search matches term case-insensitively against any of columns.
func Search(term string, columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		term = strings.TrimSpace(term)
		if term == "" || len(columns) == 0 {
			return db
		}
		pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"
		clauses := make([]string, len(columns))
		args := make([]interface{}, len(columns))
		for i, col := range columns {
			clauses[i] = "LOWER(" + col + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

// EqualFold filters column = value ignoring case.
func EqualFold(column, value string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		value = strings.TrimSpace(value)
		if value == "" {
			return db
		}
		return db.Where("LOWER("+column+") = ?", strings.ToLower(value))
	}
}

// IsUniqueViolation reports whether err came from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
