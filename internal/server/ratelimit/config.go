package ratelimit

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path; a trailing "/" makes it a prefix match
	Method string        // HTTP method (GET, PUT, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
	Bucket string        // Shared bucket name; entries with the same name draw from one bucket
}

// LoadConfig reads the rate limiting configuration from RATE_LIMIT_* environment
// variables. Malformed values are reported rather than silently defaulted.
func LoadConfig() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Enabled:         env.bool("RATE_LIMIT_ENABLED", true),
		DefaultLimit:    env.int("RATE_LIMIT_DEFAULT_LIMIT", 300),
		DefaultWindow:   env.duration("RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: env.duration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleTTL:         env.duration("RATE_LIMIT_IDLE_TTL", time.Hour),
		Whitelist:       clientSet(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       clientSet(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
	if env.err != nil {
		return nil, env.err
	}
	if !cfg.Enabled {
		return &Config{Enabled: false}, nil
	}
	if cfg.DefaultLimit < 1 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT_LIMIT must be at least 1, got: %d", cfg.DefaultLimit)
	}
	if cfg.DefaultWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_DEFAULT_WINDOW must be positive, got: %s", cfg.DefaultWindow)
	}
	return cfg, nil
}

// DefaultEndpointConfigs returns the limits for the profile API. Reads fall
// back to the default limit; health checks and preflight requests are unlimited.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Writes go through to the upstream API and are stricter than reads
		{Path: "/api/profiles", Method: http.MethodPut, Limit: 30, Window: time.Minute, Burst: 5, Bucket: "profile-writes"},
		{Path: "/api/profiles/", Method: http.MethodPut, Limit: 30, Window: time.Minute, Burst: 5, Bucket: "profile-writes"},

		// Development token issuing
		{Path: "/api/profiles/generate-test-token/", Method: http.MethodGet, Limit: 10, Window: time.Minute, Burst: 3},
	}
}

// envReader parses typed environment variables, keeping the first error.
type envReader struct {
	err error
}

func (e *envReader) lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != "" && e.err == nil
}

func (e *envReader) fail(key, value string, err error) {
	e.err = fmt.Errorf("invalid %s %q: %w", key, value, err)
}

func (e *envReader) int(key string, fallback int) int {
	v, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return n
}

func (e *envReader) bool(key string, fallback bool) bool {
	v, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return b
}

func (e *envReader) duration(key string, fallback time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, v, err)
		return fallback
	}
	return d
}

// clientSet turns a comma-separated list of client addresses into a set.
func clientSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, client := range strings.Split(list, ",") {
		if client = strings.TrimSpace(client); client != "" {
			set[client] = true
		}
	}
	return set
}
