// Package config loads the portal configuration.
//
// Sources are layered, later ones winning: built-in defaults, an optional YAML
// file (--config or ORCS_CONFIG), ORCS_* environment variables, then flags
// explicitly set on the command line.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Set at build time with -ldflags "-X orcs/internal/platform/config.DefaultBackendURL=...".
var (
	DefaultBackendURL     = ""
	DefaultPublishableKey = ""
)

const (
	BackendREST   = "rest"
	BackendMemory = "memory"
)

type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the portal configuration.
type Config struct {
	Environment Environment `yaml:"environment"`
	Server      Server      `yaml:"server"`
	Backend     Backend     `yaml:"backend"`
	Session     Session     `yaml:"session"`
	Keys        Keys        `yaml:"keys"`
	Audit       Audit       `yaml:"audit"`
	SignIn      SignIn      `yaml:"sign_in"`
	// SiteURL is the public origin; sign-up confirmation mails redirect to SiteURL + "/".
	SiteURL  string `yaml:"site_url"`
	LogLevel string `yaml:"log_level"`
	// Timezone is the club's IANA zone; the calendar groups events by month in it.
	Timezone string `yaml:"timezone"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// TrustedProxies are CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

// Backend selects and configures the hosted data/auth API.
type Backend struct {
	Kind           string        `yaml:"kind"`
	URL            string        `yaml:"url"`
	PublishableKey string        `yaml:"publishable_key"`
	Timeout        time.Duration `yaml:"timeout"`
	// FixturesPath seeds the memory backend.
	FixturesPath string `yaml:"fixtures_path"`
	// BreakerFailures consecutive transport failures open the circuit.
	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

type Session struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	CookieSecure  bool          `yaml:"cookie_secure"`
}

type Keys struct {
	HistoryLimit int `yaml:"history_limit"`
	// AtomicConfirm routes confirmation through the confirm_key_transfer RPC.
	AtomicConfirm bool `yaml:"atomic_confirm"`
}

// SignIn bounds password guessing: Attempts failures within Window lock the
// email and client IP pair out for LockFor.
type SignIn struct {
	Attempts int           `yaml:"attempts"`
	Window   time.Duration `yaml:"window"`
	LockFor  time.Duration `yaml:"lock_for"`
}

type Audit struct {
	Buffer   int `yaml:"buffer"`
	Capacity int `yaml:"capacity"`
}

// Default returns the built-in configuration.
func Default() Config {
	kind := BackendREST
	if DefaultBackendURL == "" {
		kind = BackendMemory
	}
	return Config{
		Environment: Development,
		Server: Server{
			Addr:            ":8080",
			RequestTimeout:  15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Backend: Backend{
			Kind:            kind,
			URL:             DefaultBackendURL,
			PublishableKey:  DefaultPublishableKey,
			Timeout:         10 * time.Second,
			BreakerFailures: 5,
			BreakerCooldown: 10 * time.Second,
		},
		Session: Session{
			IdleTTL:       30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Keys:     Keys{HistoryLimit: 20},
		Audit:    Audit{Buffer: 256, Capacity: 500},
		SignIn:   SignIn{Attempts: 5, Window: 15 * time.Minute, LockFor: 15 * time.Minute},
		SiteURL:  "http://localhost:8080",
		LogLevel: "info",
		Timezone: "Europe/Paris",
	}
}

// Load builds the configuration from args (without the program name) and the
// environment lookup function.
func Load(args []string, getenv func(string) string) (*Config, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	cfg := Default()

	fs := pflag.NewFlagSet("orcs", pflag.ContinueOnError)
	var (
		configPath string
		flagged    = cfg
	)
	fs.StringVar(&configPath, "config", getenv("ORCS_CONFIG"), "path to a YAML config file")
	fs.StringVar((*string)(&flagged.Environment), "env", string(cfg.Environment), "development or production")
	fs.StringVar(&flagged.Server.Addr, "addr", cfg.Server.Addr, "HTTP listen address")
	fs.DurationVar(&flagged.Server.RequestTimeout, "request-timeout", cfg.Server.RequestTimeout, "per-request timeout")
	fs.StringVar(&flagged.Backend.Kind, "backend", cfg.Backend.Kind, "backend implementation: rest or memory")
	fs.StringVar(&flagged.Backend.URL, "backend-url", cfg.Backend.URL, "hosted backend base URL")
	fs.StringVar(&flagged.Backend.PublishableKey, "publishable-key", cfg.Backend.PublishableKey, "hosted backend publishable key")
	fs.StringVar(&flagged.Backend.FixturesPath, "fixtures", cfg.Backend.FixturesPath, "YAML fixtures for the memory backend")
	fs.StringVar(&flagged.SiteURL, "site-url", cfg.SiteURL, "public site origin")
	fs.DurationVar(&flagged.Session.IdleTTL, "session-idle-ttl", cfg.Session.IdleTTL, "evict visitor sessions idle longer than this")
	fs.DurationVar(&flagged.Session.SweepInterval, "session-sweep-interval", cfg.Session.SweepInterval, "idle session sweep period")
	fs.IntVar(&flagged.Keys.HistoryLimit, "keys-history-limit", cfg.Keys.HistoryLimit, "confirmed transfers shown in the key history")
	fs.BoolVar(&flagged.Keys.AtomicConfirm, "keys-atomic-confirm", cfg.Keys.AtomicConfirm, "confirm transfers through the confirm_key_transfer RPC")
	fs.StringVar(&flagged.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&flagged.Timezone, "timezone", cfg.Timezone, "club time zone for the calendar")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return nil, err
	}

	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "env":
			cfg.Environment = flagged.Environment
		case "addr":
			cfg.Server.Addr = flagged.Server.Addr
		case "request-timeout":
			cfg.Server.RequestTimeout = flagged.Server.RequestTimeout
		case "backend":
			cfg.Backend.Kind = flagged.Backend.Kind
		case "backend-url":
			cfg.Backend.URL = flagged.Backend.URL
		case "publishable-key":
			cfg.Backend.PublishableKey = flagged.Backend.PublishableKey
		case "fixtures":
			cfg.Backend.FixturesPath = flagged.Backend.FixturesPath
		case "site-url":
			cfg.SiteURL = flagged.SiteURL
		case "session-idle-ttl":
			cfg.Session.IdleTTL = flagged.Session.IdleTTL
		case "session-sweep-interval":
			cfg.Session.SweepInterval = flagged.Session.SweepInterval
		case "keys-history-limit":
			cfg.Keys.HistoryLimit = flagged.Keys.HistoryLimit
		case "keys-atomic-confirm":
			cfg.Keys.AtomicConfirm = flagged.Keys.AtomicConfirm
		case "log-level":
			cfg.LogLevel = flagged.LogLevel
		case "timezone":
			cfg.Timezone = flagged.Timezone
		}
	})

	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	cfg.Backend.URL = strings.TrimRight(cfg.Backend.URL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("ORCS_ENV", (*string)(&cfg.Environment))
	str("ORCS_ADDR", &cfg.Server.Addr)
	str("ORCS_BACKEND", &cfg.Backend.Kind)
	str("ORCS_BACKEND_URL", &cfg.Backend.URL)
	str("ORCS_PUBLISHABLE_KEY", &cfg.Backend.PublishableKey)
	str("ORCS_FIXTURES", &cfg.Backend.FixturesPath)
	str("ORCS_SITE_URL", &cfg.SiteURL)
	str("ORCS_LOG_LEVEL", &cfg.LogLevel)
	str("ORCS_TIMEZONE", &cfg.Timezone)
	if v := getenv("ORCS_TRUSTED_PROXIES"); v != "" {
		cfg.Server.TrustedProxies = strings.Split(v, ",")
	}

	if v := getenv("ORCS_SIGNIN_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ORCS_SIGNIN_ATTEMPTS: %w", err)
		}
		cfg.SignIn.Attempts = n
	}
	if v := getenv("ORCS_KEYS_HISTORY_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ORCS_KEYS_HISTORY_LIMIT: %w", err)
		}
		cfg.Keys.HistoryLimit = n
	}
	return errors.Join(
		dur("ORCS_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout),
		dur("ORCS_SESSION_IDLE_TTL", &cfg.Session.IdleTTL),
		dur("ORCS_SESSION_SWEEP_INTERVAL", &cfg.Session.SweepInterval),
		dur("ORCS_SIGNIN_WINDOW", &cfg.SignIn.Window),
		dur("ORCS_SIGNIN_LOCK_FOR", &cfg.SignIn.LockFor),
		boolean("ORCS_KEYS_ATOMIC_CONFIRM", &cfg.Keys.AtomicConfirm),
		boolean("ORCS_COOKIE_SECURE", &cfg.Session.CookieSecure),
	)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend.Kind {
	case BackendMemory:
	case BackendREST:
		if c.Backend.URL == "" {
			errs = append(errs, errors.New("backend url is required for the rest backend"))
		}
		if c.Backend.PublishableKey == "" {
			errs = append(errs, errors.New("publishable key is required for the rest backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown backend %q", c.Backend.Kind))
	}
	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("unknown environment %q", c.Environment))
	}
	if c.Environment == Production && c.Backend.Kind == BackendMemory {
		errs = append(errs, errors.New("the memory backend is not allowed in production"))
	}
	if c.Session.IdleTTL <= 0 || c.Session.SweepInterval <= 0 {
		errs = append(errs, errors.New("session idle ttl and sweep interval must be positive"))
	}
	if c.SignIn.Attempts <= 0 || c.SignIn.Window <= 0 || c.SignIn.LockFor <= 0 {
		errs = append(errs, errors.New("sign-in attempts, window and lock duration must be positive"))
	}
	if c.SiteURL == "" {
		errs = append(errs, errors.New("site url is required"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the club's time zone, UTC when it cannot be loaded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsProduction reports whether the portal runs in production.
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
