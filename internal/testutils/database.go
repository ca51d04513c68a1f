// Package testutils holds helpers shared by package tests.
package testutils

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/sumire/saju-auth/internal/database"
)

// SetupTestDB opens a migrated SQLite database that lives for the duration of the test.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "users.db") + "?_pragma=busy_timeout(5000)"
	db, err := database.Open(database.DriverSQLite, dsn, database.DefaultPool)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db, database.DriverSQLite); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
