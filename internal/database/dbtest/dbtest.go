package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"pyme-backend/internal/database"

	"gorm.io/gorm"
)

// Open crea una base sqlite en memoria, propia de cada test, con el
// esquema migrado. La deja además en database.DB para los handlers.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := database.Open("sqlite", dsn, 1)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	database.DB = db
	return db
}
