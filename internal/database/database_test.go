package database_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/grave-assignment/internal/config"
	"github.com/iliyamo/grave-assignment/internal/database"
	"github.com/iliyamo/grave-assignment/internal/testutil"
)

func TestMigrate_Idempotent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))

	for _, table := range []string{"cemetery_sections", "graves", "deceased_persons", "grave_assignments"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestIsDuplicate_SQLiteUniqueViolation(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	const q = `INSERT INTO cemetery_sections (section_id, section_name, total_plots, available_plots) VALUES (?, ?, ?, ?)`

	_, err := db.Exec(q, "A-1", "North", 10, 10)
	require.NoError(t, err)
	_, err = db.Exec(q, "A-1", "North again", 10, 10)
	require.Error(t, err)

	assert.True(t, database.IsDuplicate(err))
	assert.True(t, database.IsDuplicateOn(err, "section_id"))
	assert.False(t, database.IsDuplicateOn(err, "deceased"))
	assert.False(t, database.IsForeignKeyViolation(err))
}

func TestIsForeignKeyViolation_SQLiteMissingParent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)

	_, err := db.Exec(`INSERT INTO graves (grave_id, section, grave_row, grave_plot) VALUES (?, ?, ?, ?)`, "X-01", "missing", 1, 1)
	require.Error(t, err)

	assert.True(t, database.IsForeignKeyViolation(err))
	assert.False(t, database.IsDuplicate(err))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, database.IsRetryable(context.DeadlineExceeded))
	assert.False(t, database.IsRetryable(errors.New("syntax error")))
}

func TestLockClause(t *testing.T) {
	assert.Equal(t, " FOR UPDATE", database.LockClause(config.DriverMySQL))
	assert.Equal(t, "", database.LockClause(config.DriverSQLite))
}
