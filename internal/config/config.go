// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultServerAddr      = ":8080"
	defaultLogLevel        = "info"
	defaultRememberMeTTL   = 30 * 24 * time.Hour
	defaultBackendDelay    = 2 * time.Second
	defaultHashDelay       = 500 * time.Millisecond
	defaultLoginRate       = 0.7
	defaultSignupRate      = 0.8
	defaultSuccessRevert   = 2 * time.Second
	defaultFollowUpDelay   = 1500 * time.Millisecond
	defaultLoginPath       = "/login"
	defaultShutdownTimeout = 10 * time.Second
)

type Config struct {
	ServerAddr      string
	LogLevel        string
	ShutdownTimeout time.Duration

	// DatabaseURL selects the postgres registry; otherwise SQLitePath, otherwise memory.
	DatabaseURL string
	SQLitePath  string

	// RedisAddr selects the redis preference store; empty keeps preferences in memory.
	RedisAddr     string
	RedisPassword string
	RememberMeTTL time.Duration

	BackendDelay      time.Duration
	HashDelay         time.Duration
	LoginSuccessRate  float64
	SignupSuccessRate float64

	SuccessRevert time.Duration
	FollowUpDelay time.Duration
	LoginPath     string
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path. An empty path skips the file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.envFile = path }
}

// WithEnvMap injects values that take precedence over the process environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) { o.envMap = values }
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) { o.useSystemEnv = false }
}

// Load reads configuration with the precedence .env < process env < explicit map.
func Load(opts ...Option) (*Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	values := make(map[string]string)
	if options.envFile != "" {
		dot, err := godotenv.Read(options.envFile)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: read %s: %w", options.envFile, err)
		}
		for k, v := range dot {
			values[k] = v
		}
	}
	if options.useSystemEnv {
		for _, entry := range os.Environ() {
			if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
				values[k] = v
			}
		}
	}
	for k, v := range options.envMap {
		values[k] = v
	}

	p := parser{values: values}
	cfg := &Config{
		ServerAddr:        p.str("SERVER_ADDR", defaultServerAddr),
		LogLevel:          strings.ToLower(p.str("LOG_LEVEL", defaultLogLevel)),
		ShutdownTimeout:   p.duration("SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		DatabaseURL:       p.str("DATABASE_URL", ""),
		SQLitePath:        p.str("SQLITE_PATH", ""),
		RedisAddr:         p.str("REDIS_ADDR", ""),
		RedisPassword:     p.str("REDIS_PASSWORD", ""),
		RememberMeTTL:     p.duration("REMEMBER_ME_TTL", defaultRememberMeTTL),
		BackendDelay:      p.duration("BACKEND_DELAY", defaultBackendDelay),
		HashDelay:         p.duration("HASH_DELAY", defaultHashDelay),
		LoginSuccessRate:  p.float("LOGIN_SUCCESS_RATE", defaultLoginRate),
		SignupSuccessRate: p.float("SIGNUP_SUCCESS_RATE", defaultSignupRate),
		SuccessRevert:     p.duration("SUCCESS_REVERT", defaultSuccessRevert),
		FollowUpDelay:     p.duration("FOLLOW_UP_DELAY", defaultFollowUpDelay),
		LoginPath:         p.str("LOGIN_PATH", defaultLoginPath),
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("config: LOG_LEVEL %q is not one of debug, info, warn, error", c.LogLevel))
	}
	for key, rate := range map[string]float64{
		"LOGIN_SUCCESS_RATE":  c.LoginSuccessRate,
		"SIGNUP_SUCCESS_RATE": c.SignupSuccessRate,
	} {
		if rate < 0 || rate > 1 {
			errs = append(errs, fmt.Errorf("config: %s must be within [0,1], got %v", key, rate))
		}
	}
	for key, d := range map[string]time.Duration{
		"BACKEND_DELAY":    c.BackendDelay,
		"HASH_DELAY":       c.HashDelay,
		"SUCCESS_REVERT":   c.SuccessRevert,
		"FOLLOW_UP_DELAY":  c.FollowUpDelay,
		"REMEMBER_ME_TTL":  c.RememberMeTTL,
		"SHUTDOWN_TIMEOUT": c.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("config: %s must not be negative", key))
		}
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		errs = append(errs, fmt.Errorf("config: LOGIN_PATH must start with /"))
	}
	return errors.Join(errs...)
}

// parser collects malformed values instead of silently falling back.
type parser struct {
	values map[string]string
	errs   []error
}

func (p *parser) str(key, fallback string) string {
	if v := strings.TrimSpace(p.values[key]); v != "" {
		return v
	}
	return fallback
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(p.values[key])
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s: %w", key, err))
		return fallback
	}
	return d
}

func (p *parser) float(key string, fallback float64) float64 {
	v := strings.TrimSpace(p.values[key])
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("config: %s: %w", key, err))
		return fallback
	}
	return f
}
