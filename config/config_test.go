package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskore/taskore/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("reads module sections", func(t *testing.T) {
		path := writeConfig(t, `
queue:
  host: redis.internal
  port: "6380"
  prefix: "jobs:"
storage:
  host: pg.internal
  user: taskore
  dbname: tasks
`)
		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, "redis.internal", cfg.Queue.Host)
		assert.Equal(t, "6380", cfg.Queue.Port)
		assert.Equal(t, "jobs:", cfg.Queue.Prefix)
		assert.Equal(t, "pg.internal", cfg.Storage.Host)
		assert.Equal(t, "taskore", cfg.Storage.User)
		assert.Equal(t, "tasks", cfg.Storage.DBName)
	})

	t.Run("defaults fill the gaps", func(t *testing.T) {
		path := writeConfig(t, "queue:\n  host: redis.internal\n")
		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, "6379", cfg.Queue.Port)
		assert.Equal(t, "taskore:", cfg.Queue.Prefix)
		assert.Equal(t, "disable", cfg.Storage.SSLMode)
	})

	t.Run("environment overrides the file", func(t *testing.T) {
		t.Setenv("TASKORE_QUEUE_HOST", "redis.override")
		path := writeConfig(t, "queue:\n  host: redis.internal\n")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, "redis.override", cfg.Queue.Host)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
