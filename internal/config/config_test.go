package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestLoad_FileAndEnv tests YAML loading with environment overrides on top.
func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mat.yaml")
	yml := `
env: development
timezone: Pacific/Auckland
server:
  addr: ":9090"
database:
  driver: sqlite
  dsn: "file::memory:"
plans:
  free: 3
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MAT_ADDR", ":7070")
	t.Setenv("MAT_SLOW_QUERY_MS", "250")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Timezone != "Pacific/Auckland" {
		t.Errorf("Timezone = %q", cfg.Timezone)
	}
	if cfg.Database.SlowQueryMS != 250 {
		t.Errorf("SlowQueryMS = %d", cfg.Database.SlowQueryMS)
	}
	if cfg.Plans["free"] != 3 {
		t.Errorf("free plan limit = %d", cfg.Plans["free"])
	}
	if len(cfg.Cadence) != 9 {
		t.Errorf("default cadence lost: %v", cfg.Cadence)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

// TestLoad_MissingFile tests that a missing file yields defaults.
func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q", cfg.Database.Driver)
	}
}

// TestLoad_BadEnvInt tests that a non-numeric override fails loudly.
func TestLoad_BadEnvInt(t *testing.T) {
	t.Setenv("MAT_SLOW_REQUEST_MS", "fast")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "MAT_SLOW_REQUEST_MS") {
		t.Errorf("err = %v", err)
	}
}

// TestValidate tests rejection rules.
func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"default ok", func(*Config) {}, ""},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }, "invalid database driver"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "invalid timezone"},
		{"short csrf", func(c *Config) { c.Server.CSRFKey = "abcd" }, "csrf key"},
		{"prod without csrf", func(c *Config) { c.Env = EnvProduction; c.Webhook.Secret = "s" }, "MAT_CSRF_KEY"},
		{"prod without secret", func(c *Config) {
			c.Env = EnvProduction
			c.Server.CSRFKey = strings.Repeat("ab", 32)
		}, "MAT_WEBHOOK_SECRET"},
		{"short cadence", func(c *Config) { c.Cadence = []int{0, 1} }, "cadence"},
		{"bad duration", func(c *Config) { c.Outbox.Interval = "soon" }, "invalid duration"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want containing %q", err, tt.want)
			}
		})
	}
}
