// Package config loads grindset configuration.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the full application configuration.
type Config struct {
	Env         string            `koanf:"env"`
	Server      ServerConfig      `koanf:"server"`
	Database    DatabaseConfig    `koanf:"database"`
	Completion  CompletionConfig  `koanf:"completion"`
	Email       EmailConfig       `koanf:"email"`
	Leaderboard LeaderboardConfig `koanf:"leaderboard"`
	Admin       AdminConfig       `koanf:"admin"`
	Log         LogConfig         `koanf:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	CSRFKey         string        `koanf:"csrf_key"` // 64 hex characters
	TrustedOrigins  []string      `koanf:"trusted_origins"`
	Timezone        string        `koanf:"timezone"` // decides which calendar day is "today"
	RateLimit       float64       `koanf:"rate_limit"`
	RateBurst       int           `koanf:"rate_burst"`
	SlowRequest     time.Duration `koanf:"slow_request"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path      string        `koanf:"path"`
	SlowQuery time.Duration `koanf:"slow_query"`
}

// CompletionConfig holds the text-completion service settings.
type CompletionConfig struct {
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// EmailConfig holds Resend settings. An empty API key logs emails instead of sending them.
type EmailConfig struct {
	ResendAPIKey           string `koanf:"resend_api_key"`
	From                   string `koanf:"from"`
	ReplyTo                string `koanf:"reply_to"`
	BroadcastAnnouncements bool   `koanf:"broadcast_announcements"`
}

// LeaderboardConfig holds leaderboard settings.
type LeaderboardConfig struct {
	Limit int `koanf:"limit"`
}

// AdminConfig holds the credentials of the admin created on first start.
type AdminConfig struct {
	Email    string `koanf:"email"`
	Password string `koanf:"password"`
}

// LogConfig holds slog settings.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Validate checks the configuration.
// PRE: Config is populated
// POST: Returns nil if valid, error otherwise
func (c *Config) Validate() error {
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		return fmt.Errorf("invalid env %q (must be %s or %s)", c.Env, EnvDevelopment, EnvProduction)
	}
	if c.Server.Addr == "" {
		return errors.New("server address is required")
	}
	if c.Server.CSRFKey == "" && c.IsProduction() {
		return errors.New("server.csrf_key is required in production")
	}
	if _, err := c.CSRFKey(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst < 1 {
		return errors.New("rate limit and burst must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.Completion.Timeout <= 0 {
		return errors.New("completion timeout must be positive")
	}
	if c.Email.ResendAPIKey != "" && c.Email.From == "" {
		return errors.New("email.from is required when a Resend API key is set")
	}
	if c.Leaderboard.Limit < 1 {
		return fmt.Errorf("invalid leaderboard limit: %d", c.Leaderboard.Limit)
	}
	if (c.Admin.Email == "") != (c.Admin.Password == "") {
		return errors.New("admin email and password must be set together")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format %q (must be text or json)", c.Log.Format)
	}
	return nil
}

// IsProduction reports whether the app runs in production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKey decodes the CSRF key. An empty key returns nil.
func (c *Config) CSRFKey() ([]byte, error) {
	if c.Server.CSRFKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.Server.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New("server.csrf_key must be 64 hex characters (32 bytes)")
	}
	return key, nil
}

// Location loads the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid server.timezone %q: %w", c.Server.Timezone, err)
	}
	return loc, nil
}

// SlogLevel maps the configured level name.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
}
