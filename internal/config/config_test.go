package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	keyA = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	keyB = "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"
)

// load runs Load with no .env file so the developer's environment does not leak in.
func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	return Load(append([]string{"--dotenv="}, args...))
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Env != Development || cfg.Nav.Strategy != "tabs" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.API.BaseURL != "http://localhost:8000" || cfg.DB.Path != "civicbriefs.db" {
		t.Errorf("api/db = %q %q", cfg.API.BaseURL, cfg.DB.Path)
	}
	if cfg.RateLimit != 10 || cfg.SlowUpstreamMs != 1000 {
		t.Errorf("limits = %d %d", cfg.RateLimit, cfg.SlowUpstreamMs)
	}
	if len(cfg.Generated) != 2 {
		t.Errorf("Generated = %v, want both secrets", cfg.Generated)
	}
	if len(cfg.SessionKey()) != 32 || len(cfg.CSRFKey()) != 32 {
		t.Error("generated keys must decode to 32 bytes")
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "civic.yaml")
	yaml := "addr: \":9000\"\napi:\n  base_url: https://file.example\nnav:\n  strategy: pages\nrate_limit: 3\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CIVIC_API_BASE_URL", "https://env.example")
	t.Setenv("CIVIC_RATE_LIMIT", "7")

	cfg, err := load(t, "--config", path, "--rate-limit", "9")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		name, got, want string
	}{
		{"addr from file", cfg.Addr, ":9000"},
		{"strategy from file", cfg.Nav.Strategy, "pages"},
		{"base url from env", cfg.API.BaseURL, "https://env.example"},
		{"log level default", cfg.Log.Level, "info"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
	if cfg.RateLimit != 9 {
		t.Errorf("rate limit = %d, want the flag's 9", cfg.RateLimit)
	}
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("db:\n  path: /tmp/civic.db\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CIVIC_CONFIG", path)
	cfg, err := load(t)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DB.Path != "/tmp/civic.db" {
		t.Errorf("db path = %q", cfg.DB.Path)
	}
}

func TestLoad_DotenvSeedsUnsetVars(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	body := "CIVIC_LOG_LEVEL=debug\nCIVIC_ADDR=:7000\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CIVIC_ADDR", ":6000")
	// Registered with t.Setenv so the variable the .env sets is restored afterwards.
	t.Setenv("CIVIC_LOG_LEVEL", "")
	os.Unsetenv("CIVIC_LOG_LEVEL")

	cfg, err := Load([]string{"--dotenv", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q, want debug from .env", cfg.Log.Level)
	}
	if cfg.Addr != ":6000" {
		t.Errorf("addr = %q, the real environment must win", cfg.Addr)
	}
}

func TestLoad_MissingDotenvIsFine(t *testing.T) {
	if _, err := Load([]string{"--dotenv", filepath.Join(t.TempDir(), "absent.env")}); err != nil {
		t.Errorf("Load: %v", err)
	}
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	_, err := load(t, "--env", Production)
	if err == nil || !strings.Contains(err.Error(), "Secret") {
		t.Fatalf("err = %v, want a missing secret error", err)
	}

	cfg, err := load(t, "--env", Production, "--session-secret", keyA, "--csrf-key", keyB)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Generated) != 0 || !cfg.IsProduction() {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"strategy", []string{"--nav", "sidebar"}},
		{"base url", []string{"--api-base-url", "ftp://nope"}},
		{"short key", []string{"--csrf-key", "abcd"}},
		{"non-hex key", []string{"--session-secret", strings.Repeat("z", 64)}},
		{"log level", []string{"--log-level", "loud"}},
		{"rate limit", []string{"--rate-limit", "-1"}},
		{"env", []string{"--env", "staging"}},
		{"from without sender", []string{"--resend-key", "re_123", "--email-from", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := load(t, tt.args...); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestLoad_Help(t *testing.T) {
	if _, err := load(t, "--help"); !errors.Is(err, ErrHelp) {
		t.Errorf("err = %v, want ErrHelp", err)
	}
}

func TestTrustedOrigins(t *testing.T) {
	var cfg Config
	cfg.CSRF.TrustedOrigins = " briefs.example.com, ,admin.example.com"
	got := cfg.TrustedOrigins()
	if len(got) != 2 || got[0] != "briefs.example.com" || got[1] != "admin.example.com" {
		t.Errorf("TrustedOrigins = %v", got)
	}
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]string{"debug": "DEBUG", "info": "INFO", "warn": "WARN", "error": "ERROR"} {
		var cfg Config
		cfg.Log.Level = level
		if got := cfg.SlogLevel().String(); got != want {
			t.Errorf("SlogLevel(%s) = %s", level, got)
		}
	}
}
