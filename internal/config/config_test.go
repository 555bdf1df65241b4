// SPDX-License-Identifier: Apache-2.0

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelclass/wheelclass-mcp/internal/config"
	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cols, err := cfg.ColumnSelector()
	require.NoError(t, err)
	assert.Equal(t, similarity.Columns(similarity.ColumnName, similarity.ColumnType), cols)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDelay())
	assert.Equal(t, 0.5, cfg.MinSimilarity)
	assert.True(t, cfg.RequireMarker)
	assert.Contains(t, cfg.Markers, "lombok.Data")
	assert.Len(t, cfg.CatalogOptions(), 5)
}

func TestLoad_NoFiles(t *testing.T) {
	cfg, err := config.Load(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, config.Default().Columns, cfg.Columns)
}

func TestLoad_File(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, config.FileName, `
min_similarity: 0.7
columns: [name, type, comment]
markers: [Data]
include_inherited: false
debounce: 1s
`)
	cfg, err := config.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.MinSimilarity)
	assert.Equal(t, []string{"Data"}, cfg.Markers)
	assert.False(t, cfg.IncludeInherited)
	assert.True(t, cfg.RequireMarker, "unset keys keep their defaults")
	assert.Equal(t, time.Second, cfg.DebounceDelay())

	settings, err := cfg.SearchSettings()
	require.NoError(t, err)
	assert.Equal(t, similarity.AllColumns, settings.Columns)
}

func TestLoad_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", "limit: 5\n")
	cfg, err := config.Load(t.TempDir(), path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Limit)

	_, err = config.Load(t.TempDir(), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, config.FileName, "min_similarity: 0.7\n")
	t.Setenv("WHEELCLASS_MIN_SIMILARITY", "0.9")
	t.Setenv("WHEELCLASS_COLUMNS", "name, comment")
	t.Setenv("WHEELCLASS_REQUIRE_MARKER", "false")
	t.Setenv("WHEELCLASS_WORKERS", "2")

	cfg, err := config.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.MinSimilarity)
	assert.Equal(t, []string{"name", "comment"}, cfg.Columns)
	assert.False(t, cfg.RequireMarker)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoad_DotEnv(t *testing.T) {
	const key = "WHEELCLASS_CACHE_SIZE"
	_, set := os.LookupEnv(key)
	require.False(t, set)
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	root := t.TempDir()
	writeFile(t, root, ".env", key+"=64\n")
	cfg, err := config.Load(root, "")
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.CacheSize)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		env         map[string]string
		errContains string
	}{
		{name: "threshold above one", file: "min_similarity: 2\n", errContains: "invalid configuration"},
		{name: "unknown column", file: "columns: [size]\n", errContains: "invalid configuration"},
		{name: "no include", file: "include: []\n", errContains: "invalid configuration"},
		{name: "bad debounce", file: "debounce: soon\n", errContains: "invalid configuration"},
		{name: "zero workers", file: "workers: 0\n", errContains: "invalid configuration"},
		{name: "unknown key", file: "colums: [name]\n", errContains: "failed to parse"},
		{name: "malformed yaml", file: "columns: [name\n", errContains: "failed to parse"},
		{name: "bad env bool", env: map[string]string{"WHEELCLASS_INCLUDE_INHERITED": "maybe"}, errContains: "WHEELCLASS_INCLUDE_INHERITED"},
		{name: "bad env number", env: map[string]string{"WHEELCLASS_MIN_SIMILARITY": "high"}, errContains: "WHEELCLASS_MIN_SIMILARITY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			if tt.file != "" {
				writeFile(t, root, config.FileName, tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(root, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}
