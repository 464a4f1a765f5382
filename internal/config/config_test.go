package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaultsToPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskpad_config.yml")
	require.NoError(t, os.WriteFile(path, []byte("listen: \":9999\"\nremote:\n  limit: 10\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Listen)
	assert.Equal(t, 10, cfg.Remote.Limit)
	assert.Equal(t, "https://jsonplaceholder.typicode.com/todos", cfg.Remote.URL)
	assert.Equal(t, 9, cfg.View.PageSize)
	assert.Equal(t, "data", cfg.DataDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, ":8484", cfg.Listen)
	assert.Equal(t, 50, cfg.Remote.Limit)
}
