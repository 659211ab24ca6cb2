package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrationsOrdered(t *testing.T) {
	migrations, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].version)
	for i := 1; i < len(migrations); i++ {
		assert.Less(t, migrations[i-1].version, migrations[i].version)
	}
	assert.Contains(t, migrations[0].sql, "CREATE TABLE IF NOT EXISTS tickets")
}
