package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/iliyamo/grave-assignment/internal/config"
	"github.com/iliyamo/grave-assignment/internal/database"
)

// NewSQLiteDB opens a migrated SQLite database in t's temp dir and closes it
// when the test ends.
func NewSQLiteDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "graves.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(context.Background(), db, config.DriverSQLite); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return db
}
