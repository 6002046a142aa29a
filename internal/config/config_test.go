package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, DefaultMenuFile, cfg.MenuFile)
	assert.Equal(t, DefaultGraphPath, cfg.GraphPath)
	assert.Zero(t, cfg.Concurrency)
}

func TestLoad_ReadsYAML(t *testing.T) {
	dir := t.TempDir()
	data := "menuFile: menus/physics.yml\nconcurrency: 3\nverbose: true\noutputDir: out\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chainmerge.yaml"), []byte(data), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "menus/physics.yml", cfg.MenuFile)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, DefaultGraphPath, cfg.GraphPath)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "chainmerge.yml"), []byte("concurrency: [1"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "chainmerge.yml"), []byte("concurrency: -2\n"), 0o644))
	_, err = Load(dir)
	assert.ErrorContains(t, err, "negative")
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("proj", "menu.yml"), Resolve("proj", "menu.yml"))
	assert.Equal(t, "/abs/menu.yml", Resolve("proj", "/abs/menu.yml"))
	assert.Equal(t, "", Resolve("proj", ""))
}
