// Package config provides configuration loading and validation for the service.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names accepted in APP_ENV.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const (
	defaultPort            = 3000
	defaultUpstreamTimeout = 10 * time.Second
	defaultAllowedOrigin   = "https://v25-prod.harx.ai"
)

// Config holds the service configuration read from the environment.
type Config struct {
	Port        int
	Environment string

	// External profile API
	ProfileAPIBaseURL string
	ProfileAPITimeout time.Duration

	CORSAllowedOrigins []string

	// ViewFieldRenames maps external top-level keys to view keys. Empty means pass-through.
	ViewFieldRenames map[string]string

	Log LogConfig
}

// LogConfig configures the service logger.
type LogConfig struct {
	Level   string   // debug, info, warn or error
	Format  string   // json or console
	Outputs []string // zap output paths such as stderr or a file path
}

// Load reads the configuration from environment variables.
// PROFILE_API_BASE_URL is required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		Port:               defaultPort,
		Environment:        getEnv("APP_ENV", EnvDevelopment),
		ProfileAPIBaseURL:  strings.TrimSpace(os.Getenv("PROFILE_API_BASE_URL")),
		ProfileAPITimeout:  defaultUpstreamTimeout,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultAllowedOrigin)),
		Log: LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  os.Getenv("LOG_FORMAT"),
			Outputs: splitList(getEnv("LOG_OUTPUT", "stderr")),
		},
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("PROFILE_API_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PROFILE_API_TIMEOUT: %v", err)
		}
		cfg.ProfileAPITimeout = timeout
	}

	renames, err := ParseRenames(os.Getenv("VIEW_FIELD_RENAMES"))
	if err != nil {
		return nil, err
	}
	cfg.ViewFieldRenames = renames

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the service runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// normalize fills derived defaults and validates the configuration.
func (c *Config) normalize() error {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("APP_ENV must be %q or %q, got: %q", EnvDevelopment, EnvProduction, c.Environment)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got: %d", c.Port)
	}

	if c.ProfileAPIBaseURL == "" {
		return fmt.Errorf("PROFILE_API_BASE_URL is required but not set")
	}
	u, err := url.Parse(c.ProfileAPIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("PROFILE_API_BASE_URL must be an absolute http(s) URL, got: %q", c.ProfileAPIBaseURL)
	}
	c.ProfileAPIBaseURL = strings.TrimRight(c.ProfileAPIBaseURL, "/")
	if c.ProfileAPITimeout <= 0 {
		return fmt.Errorf("PROFILE_API_TIMEOUT must be positive, got: %s", c.ProfileAPITimeout)
	}

	c.Log.Level = strings.ToLower(c.Log.Level)
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got: %q", c.Log.Level)
	}
	c.Log.Format = strings.ToLower(c.Log.Format)
	if c.Log.Format == "" {
		c.Log.Format = "console"
		if c.IsProduction() {
			c.Log.Format = "json"
		}
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %q", c.Log.Format)
	}
	if len(c.Log.Outputs) == 0 {
		c.Log.Outputs = []string{"stderr"}
	}
	return nil
}

// ParseRenames parses a comma-separated list of external=view key pairs.
func ParseRenames(s string) (map[string]string, error) {
	renames := map[string]string{}
	targets := map[string]string{}
	for _, pair := range splitList(s) {
		from, to, ok := strings.Cut(pair, "=")
		from, to = strings.TrimSpace(from), strings.TrimSpace(to)
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("invalid VIEW_FIELD_RENAMES entry %q: want external=view", pair)
		}
		if _, dup := renames[from]; dup {
			return nil, fmt.Errorf("invalid VIEW_FIELD_RENAMES: %q renamed twice", from)
		}
		if prev, taken := targets[to]; taken {
			return nil, fmt.Errorf("invalid VIEW_FIELD_RENAMES: %q and %q both renamed to %q", prev, from, to)
		}
		targets[to] = from
		renames[from] = to
	}
	return renames, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
