// Package config loads service configuration from YAML with MAT_* environment overrides.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// ValidDrivers lists the supported database/sql drivers.
var ValidDrivers = []string{"sqlite", "postgres"}

// Config holds all service configuration.
type Config struct {
	Env      string         `yaml:"env"`
	Timezone string         `yaml:"timezone"` // IANA zone that defines "today" for date keys
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Email    EmailConfig    `yaml:"email"`
	AI       AIConfig       `yaml:"ai"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Outbox   OutboxConfig   `yaml:"outbox"`
	Admin    AdminConfig    `yaml:"admin"`
	Cadence  []int          `yaml:"cadence"` // hot-lead follow-up day offsets, 9 entries
	Plans    map[string]int `yaml:"plans"`   // monthly generation limits; -1 is unlimited
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	CSRFKey         string   `yaml:"csrf_key"` // 64 hex chars
	TrustedOrigins  []string `yaml:"trusted_origins"`
	SecureCookies   bool     `yaml:"secure_cookies"`
	SlowRequestMS   int      `yaml:"slow_request_ms"`
	RateLimit       int      `yaml:"rate_limit"` // requests per second per IP
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
}

// DatabaseConfig selects the driver and DSN.
type DatabaseConfig struct {
	Driver      string `yaml:"driver"`
	DSN         string `yaml:"dsn"`
	SlowQueryMS int    `yaml:"slow_query_ms"`
	MaxOpen     int    `yaml:"max_open"`
}

// LogConfig configures slog output and file rotation.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// EmailConfig configures Resend delivery.
type EmailConfig struct {
	ResendKey string `yaml:"resend_key"`
	From      string `yaml:"from"`
	ReplyTo   string `yaml:"reply_to"`
}

// AIConfig configures the Gemini generator.
type AIConfig struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	Timeout     string  `yaml:"timeout"`
}

// WebhookConfig configures CRM webhook verification.
type WebhookConfig struct {
	Secret string `yaml:"secret"`
}

// OutboxConfig configures the retry worker.
type OutboxConfig struct {
	Interval         string `yaml:"interval"`
	BaseDelay        string `yaml:"base_delay"`
	MaxDelay         string `yaml:"max_delay"`
	ReminderInterval string `yaml:"reminder_interval"` // how often the follow-up digest pass runs
}

// AdminConfig is the account seeded when the database has none.
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Default returns a development configuration.
func Default() *Config {
	return &Config{
		Env:      EnvDevelopment,
		Timezone: "UTC",
		Server: ServerConfig{
			Addr:            ":8080",
			TrustedOrigins:  []string{"localhost:8080", "127.0.0.1:8080"},
			SlowRequestMS:   500,
			RateLimit:       20,
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "mat.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)",
			SlowQueryMS: 100,
			MaxOpen:     25,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Email: EmailConfig{
			From: "Massive Action Tracker <noreply@example.com>",
		},
		AI: AIConfig{
			Model:       "gemini-2.5-flash",
			Temperature: 0.8,
			Timeout:     "60s",
		},
		Outbox: OutboxConfig{
			Interval:         "1m",
			BaseDelay:        "30s",
			MaxDelay:         "1h",
			ReminderInterval: "1h",
		},
		Admin: AdminConfig{
			Email:    "admin@example.com",
			Password: "change me before launch",
		},
		Cadence: []int{0, 1, 3, 5, 7, 14, 21, 30, 45},
		Plans:   map[string]int{"free": 5, "pro": 100, "elite": -1},
	}
}

// Load reads path (if it exists) over the defaults, then applies environment overrides.
// POST: returned config has not been validated
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnvOverrides(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides(getenv func(string) string) error {
	str := map[string]*string{
		"MAT_ENV":            &c.Env,
		"MAT_ADDR":           &c.Server.Addr,
		"MAT_DB_DRIVER":      &c.Database.Driver,
		"MAT_DB_DSN":         &c.Database.DSN,
		"MAT_CSRF_KEY":       &c.Server.CSRFKey,
		"MAT_RESEND_KEY":     &c.Email.ResendKey,
		"MAT_EMAIL_FROM":     &c.Email.From,
		"MAT_GEMINI_API_KEY": &c.AI.APIKey,
		"MAT_GEMINI_MODEL":   &c.AI.Model,
		"MAT_WEBHOOK_SECRET": &c.Webhook.Secret,
		"MAT_TIMEZONE":       &c.Timezone,
		"MAT_LOG_LEVEL":      &c.Log.Level,
		"MAT_LOG_FILE":       &c.Log.File,
		"MAT_ADMIN_EMAIL":    &c.Admin.Email,
		"MAT_ADMIN_PASSWORD": &c.Admin.Password,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	ints := map[string]*int{
		"MAT_SLOW_QUERY_MS":   &c.Database.SlowQueryMS,
		"MAT_SLOW_REQUEST_MS": &c.Server.SlowRequestMS,
	}
	for key, dst := range ints {
		v := getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}
	return nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if !contains(ValidDrivers, c.Database.Driver) {
		return fmt.Errorf("invalid database driver %q (valid: %v)", c.Database.Driver, ValidDrivers)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.Server.CSRFKey != "" {
		if _, err := c.CSRFKeyBytes(); err != nil {
			return err
		}
	}
	if c.IsProduction() {
		if c.Server.CSRFKey == "" {
			return fmt.Errorf("MAT_CSRF_KEY is required in production")
		}
		if c.Webhook.Secret == "" {
			return fmt.Errorf("MAT_WEBHOOK_SECRET is required in production")
		}
	}
	if len(c.Cadence) != 9 {
		return fmt.Errorf("cadence must have 9 offsets, got %d", len(c.Cadence))
	}
	for _, d := range []string{c.Outbox.Interval, c.Outbox.BaseDelay, c.Outbox.MaxDelay, c.Outbox.ReminderInterval, c.AI.Timeout, c.Server.ShutdownTimeout} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid duration %q: %w", d, err)
		}
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return nil
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKeyBytes decodes the 32-byte CSRF key.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	key, err := hex.DecodeString(c.Server.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, fmt.Errorf("csrf key must be 64 hex characters")
	}
	return key, nil
}

// Location returns the configured time zone, or UTC if it does not load.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Duration parses s, returning fallback when s is empty or malformed.
func Duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// Millis converts a millisecond count to a Duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
