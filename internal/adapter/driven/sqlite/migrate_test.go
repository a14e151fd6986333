package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)

	version, err := RunMigrations(db.Writer)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	var tables int
	err = db.Reader.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('orgs', 'sessions')`,
	).Scan(&tables)
	require.NoError(t, err)
	assert.Equal(t, 2, tables)
}

func TestRunMigrations_DirtySchema(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.Writer.ExecContext(context.Background(), `UPDATE schema_migrations SET dirty = 1`)
	require.NoError(t, err)

	_, err = RunMigrations(db.Writer)
	assert.ErrorIs(t, err, ErrDirtySchema)
}
