// Package config loads server settings from flags, the environment, an
// optional YAML file and an optional .env file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix namespaces environment overrides: CIVIC_API_BASE_URL sets api.base_url.
const EnvPrefix = "CIVIC_"

// Environments.
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// ErrHelp is returned when the command line asked for usage.
var ErrHelp = pflag.ErrHelp

// Config is the validated server configuration.
type Config struct {
	Addr string `koanf:"addr" validate:"required"`
	Env  string `koanf:"env" validate:"oneof=development production test"`

	API struct {
		BaseURL string `koanf:"base_url" validate:"required,http_url"`
	} `koanf:"api"`

	Nav struct {
		Strategy string `koanf:"strategy" validate:"oneof=tabs pages"`
	} `koanf:"nav"`

	DB struct {
		Path string `koanf:"path" validate:"required"`
	} `koanf:"db"`

	Session struct {
		Secret string `koanf:"secret" validate:"required,hexadecimal,len=64"`
	} `koanf:"session"`

	CSRF struct {
		Key            string `koanf:"key" validate:"required,hexadecimal,len=64"`
		TrustedOrigins string `koanf:"trusted_origins"`
	} `koanf:"csrf"`

	Email struct {
		ResendKey string `koanf:"resend_key"`
		From      string `koanf:"from" validate:"required_with=ResendKey"`
	} `koanf:"email"`

	Log struct {
		Level string `koanf:"level" validate:"oneof=debug info warn error"`
	} `koanf:"log"`

	RateLimit      int `koanf:"rate_limit" validate:"min=0"`
	SlowUpstreamMs int `koanf:"slow_upstream_ms" validate:"min=0"`
	SlowRequestMs  int `koanf:"slow_request_ms" validate:"min=0"`
	SlowQueryMs    int `koanf:"slow_query_ms" validate:"min=0"`

	// Generated lists the secrets that were missing and filled with random
	// values for this process only.
	Generated []string `koanf:"-"`
}

// flagKey maps each command-line flag to its configuration key.
var flagKey = map[string]string{
	"addr":             "addr",
	"env":              "env",
	"api-base-url":     "api.base_url",
	"nav":              "nav.strategy",
	"db":               "db.path",
	"session-secret":   "session.secret",
	"csrf-key":         "csrf.key",
	"trusted-origins":  "csrf.trusted_origins",
	"resend-key":       "email.resend_key",
	"email-from":       "email.from",
	"log-level":        "log.level",
	"rate-limit":       "rate_limit",
	"slow-upstream-ms": "slow_upstream_ms",
	"slow-request-ms":  "slow_request_ms",
	"slow-query-ms":    "slow_query_ms",
}

// envKey maps CIVIC_-prefixed variable names (prefix stripped) to keys.
var envKey = func() map[string]string {
	m := make(map[string]string, len(flagKey))
	for _, key := range flagKey {
		m[strings.ToUpper(strings.ReplaceAll(key, ".", "_"))] = key
	}
	return m
}()

// newFlagSet declares every flag with its default value.
func newFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.String("config", "", "Path to a YAML config file (or CIVIC_CONFIG)")
	flags.String("dotenv", ".env", "Path to a .env file loaded before the environment is read")

	flags.String("addr", ":8080", "Listen address")
	flags.String("env", Development, "Environment: development, production or test")
	flags.String("api-base-url", "http://localhost:8000", "Civic Briefs backend origin")
	flags.String("nav", "tabs", "Navigation strategy: tabs or pages")
	flags.String("db", "civicbriefs.db", "SQLite database path")
	flags.String("session-secret", "", "Hex-encoded 32-byte key sealing stored credentials")
	flags.String("csrf-key", "", "Hex-encoded 32-byte CSRF authentication key")
	flags.String("trusted-origins", "", "Comma-separated origins trusted for cross-origin form posts")
	flags.String("resend-key", "", "Resend API key; email is logged and dropped when empty")
	flags.String("email-from", "Civic Briefs <briefs@localhost>", "Sender address for outgoing email")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Int("rate-limit", 10, "Action posts per client IP per second (0 disables)")
	flags.Int("slow-upstream-ms", 1000, "Backend calls slower than this are logged")
	flags.Int("slow-request-ms", 500, "Page requests slower than this are logged")
	flags.Int("slow-query-ms", 50, "SQLite queries slower than this are logged")
	return flags
}

// Load resolves the configuration from args (without the program name).
// Precedence, lowest first: flag defaults, YAML file, environment, flags given on
// the command line. A .env file only seeds variables not already set.
// POST: The returned Config passed validation; missing secrets outside
// production are random and listed in Generated
func Load(args []string) (Config, error) {
	flags := newFlagSet("civicbriefs")
	if err := flags.Parse(args); err != nil {
		return Config{}, err
	}

	dotenv, _ := flags.GetString("dotenv")
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
		}
	}

	k := koanf.New(".")

	path, _ := flags.GetString("config")
	if path == "" {
		path = os.Getenv(EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return envKey[strings.TrimPrefix(s, EnvPrefix)]
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	// Unchanged flags only fill keys no earlier layer set.
	if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
		return flagKey[f.Name], posflag.FlagVal(flags, f)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.fillSecrets(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// fillSecrets generates missing secrets outside production.
func (c *Config) fillSecrets() error {
	if c.Env == Production {
		return nil
	}
	for _, s := range []struct {
		name string
		dst  *string
	}{
		{"session.secret", &c.Session.Secret},
		{"csrf.key", &c.CSRF.Key},
	} {
		if *s.dst != "" {
			continue
		}
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate %s: %w", s.name, err)
		}
		*s.dst = hex.EncodeToString(b)
		c.Generated = append(c.Generated, s.name)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsProduction reports whether the server runs in production.
func (c Config) IsProduction() bool {
	return c.Env == Production
}

// SessionKey is the decoded session.secret.
// PRE: Validate succeeded
func (c Config) SessionKey() []byte {
	b, _ := hex.DecodeString(c.Session.Secret)
	return b
}

// CSRFKey is the decoded csrf.key.
// PRE: Validate succeeded
func (c Config) CSRFKey() []byte {
	b, _ := hex.DecodeString(c.CSRF.Key)
	return b
}

// TrustedOrigins splits csrf.trusted_origins.
func (c Config) TrustedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CSRF.TrustedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel converts log.level.
func (c Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
