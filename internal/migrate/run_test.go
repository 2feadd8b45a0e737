package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilesSorted(t *testing.T) {
	files, err := migrationFiles()
	require.NoError(t, err)
	require.NotEmpty(t, files)

	assert.Equal(t, "0001_scheduled_jobs.sql", files[0])
	assert.Contains(t, files, "0002_settings.sql")
	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1], files[i])
	}
}

func TestMigrationsDefineTables(t *testing.T) {
	b, err := migrationsFS.ReadFile("migrations/0001_scheduled_jobs.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "scheduled_jobs_action_name_key")

	b, err = migrationsFS.ReadFile("migrations/0002_settings.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "CREATE TABLE IF NOT EXISTS settings")
}

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "0002_settings", versionOf("0002_settings.sql"))
}
