// Package dbtest provides an isolated in-memory database for package tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/folio-space/core/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// New opens a migrated in-memory SQLite database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	url := fmt.Sprintf("file:folio_test_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := database.Open(url, logger.Silent)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}
