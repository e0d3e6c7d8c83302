// Package testhelper opens throwaway SQLite databases for tests.
package testhelper

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"modix/utils/database"
)

// SetupTestDB creates a fresh database in a temporary directory and closes
// it when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Init(filepath.Join(t.TempDir(), "modix_test.db"))
	if err != nil {
		t.Fatalf("SetupTestDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
