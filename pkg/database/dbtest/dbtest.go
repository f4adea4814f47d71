// Package dbtest provides migrated in-memory SQLite databases for tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/AdrianSzacsko/mtaa-backend/pkg/database"
)

// New returns a fresh database with every table migrated and foreign keys
// enforced. It is closed when the test ends.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(database.SQLite(dsn), database.GormConfig(zerolog.Nop()))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get test database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// Seeded is New plus the reference professors and subjects.
func Seeded(t testing.TB) *gorm.DB {
	t.Helper()
	db := New(t)
	if err := database.Seed(db, zerolog.Nop()); err != nil {
		t.Fatalf("failed to seed test database: %v", err)
	}
	return db
}
