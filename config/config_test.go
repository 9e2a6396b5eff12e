package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rarefeed/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rares.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
top_limit = 25

[[buckets]]
name = "365+"
min_days = 365

[[buckets]]
name = "30+"
min_days = 30

[[feeds]]
id = "vaulted-year"
display_name = "Gone a year"
description = "Cosmetics not seen for a year or more."
min_days = 365
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.TopLimit)

	require.Len(t, cfg.Buckets, 2)
	assert.Equal(t, "365+", cfg.Buckets[0].Name)
	assert.Equal(t, 365, cfg.Buckets[0].MinDays)

	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "vaulted-year", cfg.Feeds[0].Id)
	assert.Equal(t, "Gone a year", cfg.Feeds[0].DisplayName)
	assert.Equal(t, 365, cfg.Feeds[0].MinDays)
}

func TestLoadConfigDefaultsTopLimit(t *testing.T) {
	path := writeConfig(t, `
[[feeds]]
id = "all"
display_name = "All rares"
min_days = 0
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.TopLimit)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
