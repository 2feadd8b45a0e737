package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTestDBConfig(t *testing.T) {
	t.Run("defaults to local test database port 55432", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "")
		t.Setenv("TEST_DB_PORT", "")
		t.Setenv("TEST_DB_USER", "")
		t.Setenv("TEST_DB_PASSWORD", "")
		t.Setenv("TEST_DB_NAME", "")

		cfg := DefaultTestDBConfig()
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, "55432", cfg.Port)
		assert.Equal(t, "logmailer", cfg.User)
		assert.Equal(t, "logmailer", cfg.DBName)
	})

	t.Run("respects TEST_DB_PORT environment variable", func(t *testing.T) {
		t.Setenv("TEST_DB_HOST", "postgres")
		t.Setenv("TEST_DB_PORT", "5432")

		cfg := DefaultTestDBConfig()
		assert.Equal(t, "postgres", cfg.Host)
		assert.Equal(t, "5432", cfg.Port)
	})
}

func TestDSN(t *testing.T) {
	t.Setenv("DB_SSL_MODE", "")
	cfg := TestDBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", cfg.dsn())
}

func TestTaskBuilder(t *testing.T) {
	task := NewTask().WithID("abc").WithActiveFireKey("abc:1").Build()
	assert.Equal(t, "abc", task.ID)
	assert.Equal(t, TestTime(), task.NextRunAt)
	if assert.NotNil(t, task.ActiveFireKey) {
		assert.Equal(t, "abc:1", *task.ActiveFireKey)
	}
}
