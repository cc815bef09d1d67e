// Package profileapi is the HTTP client for the external profile API.
package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/profile-bff/internal/types"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4096
)

// Client talks to GET/PUT {baseURL}/profiles/{id}. Every call forwards the
// caller's bearer token unchanged.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetProfile fetches a profile. It returns nil, nil when the API has no
// profile for userID.
func (c *Client) GetProfile(ctx context.Context, userID, token string) (*types.ExternalProfile, error) {
	return c.do(ctx, "get", http.MethodGet, userID, token, nil)
}

// UpdateProfile sends update (a full profile or a flattened dot-path object)
// and returns the stored profile. It returns nil, nil when the API has no
// profile for userID.
func (c *Client) UpdateProfile(ctx context.Context, userID string, update any, token string) (*types.ExternalProfile, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("marshaling update: %w", err)
	}
	return c.do(ctx, "update", http.MethodPut, userID, token, body)
}

func (c *Client) profileURL(userID string) string {
	return c.baseURL + "/profiles/" + url.PathEscape(userID)
}

func (c *Client) do(ctx context.Context, op, method, userID, token string, body []byte) (*types.ExternalProfile, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.profileURL(userID), reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("profile api request failed",
			zap.String("op", op),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, &UpstreamError{Op: op, Cause: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("profile api response",
		zap.String("op", op),
		zap.String("user_id", userID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("profile api returned error status",
			zap.String("op", op),
			zap.String("user_id", userID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Cause: fmt.Errorf("reading response: %w", err)}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	var profile types.ExternalProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode, Cause: fmt.Errorf("decoding profile: %w", err)}
	}
	return &profile, nil
}
