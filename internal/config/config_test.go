package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "janitord.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
root: /var/spool/janitord
filter: "**/*.log"
protect:
  - important/
timestamp: atime
max_age: 240h
used_threshold: 0.85
remove_cleaned_dirs: true
schedule: "@every 5m"
listen: "127.0.0.1:9000"
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err, "Load should not return an error")

	assert.Equal(t, "/var/spool/janitord", cfg.Root)
	assert.Equal(t, "**/*.log", cfg.Filter)
	assert.Equal(t, []string{"important/"}, cfg.Protect)
	assert.Equal(t, "atime", cfg.Timestamp)
	assert.Equal(t, 240*time.Hour, cfg.MaxAge)
	assert.Equal(t, 0.85, cfg.UsedThreshold)
	assert.True(t, cfg.RemoveCleanedDirs)
	assert.False(t, cfg.RemoveEmptyDirs)
	assert.Equal(t, "@every 5m", cfg.Schedule)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "root: /srv/data\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "mtime", cfg.Timestamp)
	assert.Equal(t, time.Duration(0), cfg.MaxAge, "age policy disabled by default")
	assert.Equal(t, 1.0, cfg.UsedThreshold, "pressure policy disabled by default")
	assert.Equal(t, "@every 15m", cfg.Schedule)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "root: /srv/data\nmax_age: 24h\n")

	t.Setenv("JANITORD_MAX_AGE", "48h")
	t.Setenv("JANITORD_DRY_RUN", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 48*time.Hour, cfg.MaxAge)
	assert.True(t, cfg.DryRun)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Root:          "/srv/data",
			Timestamp:     "mtime",
			UsedThreshold: 1.0,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})
	t.Run("missing root", func(t *testing.T) {
		cfg := base()
		cfg.Root = ""
		assert.Error(t, cfg.Validate())
	})
	t.Run("relative root", func(t *testing.T) {
		cfg := base()
		cfg.Root = "srv/data"
		assert.Error(t, cfg.Validate())
	})
	t.Run("bad timestamp", func(t *testing.T) {
		cfg := base()
		cfg.Timestamp = "birthday"
		assert.Error(t, cfg.Validate())
	})
	t.Run("threshold out of range", func(t *testing.T) {
		cfg := base()
		cfg.UsedThreshold = 2
		assert.Error(t, cfg.Validate())
	})
	t.Run("negative max age", func(t *testing.T) {
		cfg := base()
		cfg.MaxAge = -time.Hour
		assert.Error(t, cfg.Validate())
	})
	t.Run("bad log format", func(t *testing.T) {
		cfg := base()
		cfg.LogFormat = "xml"
		assert.Error(t, cfg.Validate())
	})
}
