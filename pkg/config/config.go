package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the harvester.
type Config struct {
	// Telegram API access
	Telegram TelegramConfig `yaml:"telegram" json:"telegram"`

	// Harvest/download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Rate limiting for history page fetches
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TelegramConfig holds MTProto connection parameters.
type TelegramConfig struct {
	APIID       int    `yaml:"api_id" json:"api_id"`
	APIHash     string `yaml:"api_hash" json:"api_hash"`
	Phone       string `yaml:"phone" json:"phone"`
	SessionFile string `yaml:"session_file" json:"session_file"`
}

// DownloadConfig holds harvest pipeline settings.
type DownloadConfig struct {
	Workers          int           `yaml:"workers" json:"workers"`
	PageSize         int           `yaml:"page_size" json:"page_size"`
	MaxVideoDuration time.Duration `yaml:"max_video_duration" json:"max_video_duration"`
	MediaDir         string        `yaml:"media_dir" json:"media_dir"`
}

// RateLimitConfig holds rate limiting configuration for API calls.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			SessionFile: "session.json",
		},
		Download: DownloadConfig{
			Workers:          5,
			PageSize:         100,
			MaxVideoDuration: 10 * time.Minute,
			MediaDir:         "media",
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment overrides, in that order of precedence (later wins).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// Load .env if present; errors are ignored because the file is optional.
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if data, err := os.ReadFile(defaultConfigPath()); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides configuration values from TGHARVEST_* variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("TGHARVEST_API_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.Telegram.APIID = id
		}
	}
	if v := os.Getenv("TGHARVEST_API_HASH"); v != "" {
		c.Telegram.APIHash = v
	}
	if v := os.Getenv("TGHARVEST_PHONE"); v != "" {
		c.Telegram.Phone = v
	}
	if v := os.Getenv("TGHARVEST_SESSION_FILE"); v != "" {
		c.Telegram.SessionFile = v
	}
	if v := os.Getenv("TGHARVEST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Download.Workers = n
		}
	}
	if v := os.Getenv("TGHARVEST_MEDIA_DIR"); v != "" {
		c.Download.MediaDir = v
	}
	if v := os.Getenv("TGHARVEST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Download.Workers < 1 {
		return fmt.Errorf("download.workers must be at least 1, got %d", c.Download.Workers)
	}
	if c.Download.PageSize < 1 {
		return fmt.Errorf("download.page_size must be at least 1, got %d", c.Download.PageSize)
	}
	if c.Download.MaxVideoDuration < 0 {
		return fmt.Errorf("download.max_video_duration must not be negative")
	}
	if c.Download.MediaDir == "" {
		return fmt.Errorf("download.media_dir must not be empty")
	}
	if c.RateLimit.RequestsPerMinute < 1 {
		return fmt.Errorf("rate_limit.requests_per_minute must be at least 1, got %d", c.RateLimit.RequestsPerMinute)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("logging.level %q is not valid", c.Logging.Level)
	}
	return nil
}

// SessionPath returns the absolute session file location, anchored in the
// config directory when the configured path is relative.
func (c *Config) SessionPath() string {
	if filepath.IsAbs(c.Telegram.SessionFile) {
		return c.Telegram.SessionFile
	}
	dir, err := ConfigDir()
	if err != nil {
		return c.Telegram.SessionFile
	}
	return filepath.Join(dir, c.Telegram.SessionFile)
}

// ConfigDir returns the per-user configuration directory, creating it if
// needed.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: %w", err)
	}
	dir := filepath.Join(base, "tgharvest")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tgharvest", "config.yaml")
}
