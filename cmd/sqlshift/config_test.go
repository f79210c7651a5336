package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "sqlshift.yaml", []byte(`
stages:
  - presto
include:
  - "queries/**/*.sql"
out_dir: out
`), 0o644))

	cfg, err := loadConfig(fs, "sqlshift.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"presto"}, cfg.Stages)
	assert.Equal(t, []string{"queries/**/*.sql"}, cfg.Include)
	assert.Equal(t, "out", cfg.OutDir)
}

func TestLoadConfigHCL(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "sqlshift.hcl", []byte(`
stages  = ["presto"]
include = ["queries/**/*.sql"]
out_dir = "out"
`), 0o644))

	cfg, err := loadConfig(fs, "sqlshift.hcl")
	require.NoError(t, err)
	assert.Equal(t, []string{"presto"}, cfg.Stages)
	assert.Equal(t, []string{"queries/**/*.sql"}, cfg.Include)
	assert.Equal(t, "out", cfg.OutDir)
}

func TestLoadConfigDefaultsStages(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "sqlshift.yaml", []byte("include: [\"*.sql\"]\n"), 0o644))

	cfg, err := loadConfig(fs, "sqlshift.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"presto"}, cfg.Stages)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(afero.NewMemMapFs(), "nope.yaml")
	require.Error(t, err)
}

func TestFactoriesUnknownStage(t *testing.T) {
	cfg := &Config{Stages: []string{"presto", "bigquery"}}
	_, err := cfg.factories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bigquery")
}

func TestFactoriesCaseInsensitive(t *testing.T) {
	cfg := &Config{Stages: []string{"Presto"}}
	factories, err := cfg.factories()
	require.NoError(t, err)
	assert.Len(t, factories, 1)
}

func TestExpandGlobs(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, path := range []string{"q/a.sql", "q/sub/b.sql", "q/readme.md"} {
		require.NoError(t, afero.WriteFile(fs, path, []byte("SELECT 1"), 0o644))
	}

	paths, err := expandGlobs(fs, []string{"q/**/*.sql", "q/*.sql"})
	require.NoError(t, err)
	assert.Equal(t, []string{"q/a.sql", "q/sub/b.sql"}, paths)
}
