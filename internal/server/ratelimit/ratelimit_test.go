package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (l *Limiter) bucketCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func TestTokenBucket_Take(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(10, 1.0, clock.Now())

	for i := 0; i < 10; i++ {
		allowed, remaining, _ := bucket.take(clock.Now())
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}

	allowed, remaining, reset := bucket.take(clock.Now())
	assert.False(t, allowed, "11th request should be denied")
	assert.Zero(t, remaining)
	assert.Equal(t, clock.Now().Add(10*time.Second), reset)
}

func TestTokenBucket_Refill(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(2, 0.5, clock.Now())
	bucket.take(clock.Now())
	bucket.take(clock.Now())

	allowed, _, _ := bucket.take(clock.Now())
	require.False(t, allowed)

	clock.Advance(2 * time.Second)
	allowed, _, _ = bucket.take(clock.Now())
	assert.True(t, allowed, "one token refills after 2s")

	allowed, _, _ = bucket.take(clock.Now())
	assert.False(t, allowed)

	clock.Advance(time.Hour)
	_, remaining, _ := bucket.take(clock.Now())
	assert.Equal(t, 1, remaining, "refill never exceeds capacity")
}

func TestLimiter_DefaultBucket(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 3, DefaultWindow: time.Minute}, WithClock(clock.Now))
	defer limiter.Stop()

	paths := []string{"/api/profiles", "/api/profiles/reps-score", "/api/profiles/user/u1"}
	for i, path := range paths {
		allowed, info := limiter.Allow("10.0.0.1", path, http.MethodGet)
		require.True(t, allowed, path)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := limiter.Allow("10.0.0.1", "/api/profiles/completion-status", http.MethodGet)
	assert.False(t, allowed, "reads share the client's default bucket")
	assert.InDelta(t, float64(20*time.Second), float64(info.RetryAfter), float64(time.Millisecond))

	allowed, _ = limiter.Allow("10.0.0.2", "/api/profiles", http.MethodGet)
	assert.True(t, allowed, "other clients are unaffected")
}

func TestLimiter_EndpointSpecific(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}, WithClock(clock.Now))
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		allowed, info := limiter.Allow("10.0.0.1", "/api/profiles/u1", http.MethodPut)
		require.True(t, allowed, "write %d", i+1)
		assert.Equal(t, 30, info.Limit)
	}

	allowed, info := limiter.Allow("10.0.0.1", "/api/profiles/u2", http.MethodPut)
	assert.False(t, allowed, "burst of 5 is shared across ids")
	assert.Equal(t, 2*time.Second, info.RetryAfter)

	allowed, _ = limiter.Allow("10.0.0.1", "/api/profiles", http.MethodPut)
	assert.False(t, allowed, "exact path draws from the same write bucket")

	allowed, info = limiter.Allow("10.0.0.1", "/api/profiles", http.MethodGet)
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_ProfileWritesShareBucket(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(),
	}, WithClock(clock.Now))
	defer limiter.Stop()

	paths := []string{"/api/profiles", "/api/profiles/u1", "/api/profiles", "/api/profiles/u2", "/api/profiles"}
	for i, path := range paths {
		allowed, _ := limiter.Allow("10.0.0.1", path, http.MethodPut)
		require.True(t, allowed, "write %d to %s", i+1, path)
	}

	allowed, _ := limiter.Allow("10.0.0.1", "/api/profiles/u1", http.MethodPut)
	assert.False(t, allowed, "sixth write exceeds the shared burst")
	allowed, _ = limiter.Allow("10.0.0.1", "/api/profiles", http.MethodPut)
	assert.False(t, allowed)
	assert.Equal(t, 1, limiter.bucketCount())

	allowed, _ = limiter.Allow("10.0.0.2", "/api/profiles", http.MethodPut)
	assert.True(t, allowed, "other clients keep their own bucket")
}

func TestLimiter_Whitelist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/api/profiles", http.MethodGet)
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_Blacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("192.168.1.1", "/api/profiles", http.MethodGet)
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/api/profiles", http.MethodPut)
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
}

func TestLimiter_HealthAndPreflightUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", http.MethodGet)
		require.True(t, allowed)
		allowed, _ = limiter.Allow("127.0.0.1", "/api/profiles", http.MethodOptions)
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Minute}, WithClock(clock.Now))
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/api/profiles", http.MethodGet); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  10,
		DefaultWindow: time.Minute,
		IdleTTL:       time.Hour,
	}, WithClock(clock.Now))
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i+1), "/api/profiles", http.MethodGet)
	}
	clock.Advance(50 * time.Minute)
	for i := 0; i < 4; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i+1), "/api/profiles", http.MethodGet)
	}
	clock.Advance(20 * time.Minute)

	limiter.cleanupBuckets()

	assert.Equal(t, 4, limiter.bucketCount())
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/api/profiles", http.MethodGet)
	assert.True(t, allowed)
	assert.Equal(t, 300, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/api/profiles", Method: http.MethodPut, Limit: 1},
		{Path: "/api/profiles/", Method: http.MethodPut, Limit: 2},
		{Path: "/api/profiles/generate-test-token/", Method: http.MethodGet, Limit: 3},
		{Path: "/api/", Method: http.MethodGet, Limit: 4},
	}

	tests := []struct {
		path      string
		method    string
		wantLimit int
		wantNil   bool
	}{
		{path: "/api/profiles", method: http.MethodPut, wantLimit: 1},
		{path: "/api/profiles/u1", method: http.MethodPut, wantLimit: 2},
		{path: "/api/profiles/generate-test-token/u1", method: http.MethodGet, wantLimit: 3},
		{path: "/api/profiles/reps-score", method: http.MethodGet, wantLimit: 4},
		{path: "/health", method: http.MethodGet, wantLimit: 0},
		{path: "/api/profiles", method: http.MethodOptions, wantLimit: 0},
		{path: "/other", method: http.MethodGet, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "true")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("RATE_LIMIT_CLEANUP_INTERVAL", "")
	t.Setenv("RATE_LIMIT_IDLE_TTL", "")
	t.Setenv("RATE_LIMIT_WHITELIST", "10.0.0.1, 10.0.0.2")
	t.Setenv("RATE_LIMIT_BLACKLIST", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval)
	assert.Equal(t, time.Hour, cfg.IdleTTL)
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.Empty(t, cfg.Blacklist)
	assert.Equal(t, DefaultEndpointConfigs(), cfg.EndpointConfigs)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value, wantErr string
	}{
		{key: "RATE_LIMIT_ENABLED", value: "sometimes", wantErr: "RATE_LIMIT_ENABLED"},
		{key: "RATE_LIMIT_DEFAULT_LIMIT", value: "lots", wantErr: "RATE_LIMIT_DEFAULT_LIMIT"},
		{key: "RATE_LIMIT_DEFAULT_LIMIT", value: "0", wantErr: "at least 1"},
		{key: "RATE_LIMIT_DEFAULT_WINDOW", value: "1 minute", wantErr: "RATE_LIMIT_DEFAULT_WINDOW"},
		{key: "RATE_LIMIT_DEFAULT_WINDOW", value: "-1s", wantErr: "must be positive"},
		{key: "RATE_LIMIT_IDLE_TTL", value: "forever", wantErr: "RATE_LIMIT_IDLE_TTL"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			for _, key := range []string{"RATE_LIMIT_ENABLED", "RATE_LIMIT_DEFAULT_LIMIT", "RATE_LIMIT_DEFAULT_WINDOW", "RATE_LIMIT_CLEANUP_INTERVAL", "RATE_LIMIT_IDLE_TTL"} {
				t.Setenv(key, "")
			}
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
