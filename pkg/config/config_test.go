package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.Download.Workers)
	assert.Equal(t, 100, cfg.Download.PageSize)
	assert.Equal(t, 10*time.Minute, cfg.Download.MaxVideoDuration)
	assert.Equal(t, "media", cfg.Download.MediaDir)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
telegram:
  api_id: 12345
  api_hash: abcdef
  phone: "+15550001111"
download:
  workers: 3
  page_size: 50
  media_dir: harvested
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.Telegram.APIID)
	assert.Equal(t, "abcdef", cfg.Telegram.APIHash)
	assert.Equal(t, "+15550001111", cfg.Telegram.Phone)
	assert.Equal(t, 3, cfg.Download.Workers)
	assert.Equal(t, 50, cfg.Download.PageSize)
	assert.Equal(t, "harvested", cfg.Download.MediaDir)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Untouched values keep their defaults.
	assert.Equal(t, 10*time.Minute, cfg.Download.MaxVideoDuration)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TGHARVEST_API_ID", "999")
	t.Setenv("TGHARVEST_API_HASH", "envhash")
	t.Setenv("TGHARVEST_WORKERS", "2")
	t.Setenv("TGHARVEST_LOG_LEVEL", "warn")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram:\n  api_id: 1\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 999, cfg.Telegram.APIID, "env should override file")
	assert.Equal(t, "envhash", cfg.Telegram.APIHash)
	assert.Equal(t, 2, cfg.Download.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"zero workers", func(c *Config) { c.Download.Workers = 0 }, true},
		{"zero page size", func(c *Config) { c.Download.PageSize = 0 }, true},
		{"negative video duration", func(c *Config) { c.Download.MaxVideoDuration = -time.Second }, true},
		{"empty media dir", func(c *Config) { c.Download.MediaDir = "" }, true},
		{"zero rate limit", func(c *Config) { c.RateLimit.RequestsPerMinute = 0 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
