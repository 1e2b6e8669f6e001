package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/citedock/internal/core/domain"
	"github.com/custodia-labs/citedock/internal/core/ports/driven"
	"github.com/custodia-labs/citedock/internal/logger"
)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	DefaultBurst   = 5

	// maxErrorBody bounds the response body kept on an APIError.
	maxErrorBody = 512
)

// Config holds configuration for the API client.
type Config struct {
	// BaseURL is the API root, e.g. https://api.example.com (required).
	BaseURL string

	// Token is the bearer token. Empty sends unauthenticated requests.
	Token string

	// Timeout bounds each request (default: 30s).
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero disables throttling.
	RequestsPerSecond float64

	// Burst is the token bucket size (default: 5).
	Burst int

	// HTTPClient overrides the base transport. The bearer token is still added.
	HTTPClient *http.Client
}

// Client talks to the citedock API.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *RateLimiter
	metrics driven.MetricsRecorder
}

// NewClient creates an API client. metrics may be nil.
func NewClient(cfg Config, metrics driven.MetricsRecorder) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: base URL %w", domain.ErrNotConfigured)
	}
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid base URL: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Burst == 0 {
		cfg.Burst = DefaultBurst
	}

	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: cfg.Timeout}
	}

	httpClient := base
	if cfg.Token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.Token,
			TokenType:   "Bearer",
		}))
		httpClient.Timeout = cfg.Timeout
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		metrics: metrics,
	}, nil
}

// do sends one request and decodes a 2xx JSON body into out when out is
// not nil.
func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w: %w", operation, domain.ErrCancelled, err)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if c.metrics != nil {
		c.metrics.APIRequest(operation, time.Since(start))
	}
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w: %w", operation, domain.ErrCancelled, ctx.Err())
		}
		return fmt.Errorf("%s: %w: %w", operation, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	logger.Debug("api: %s %s -> %d", method, path, resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(operation, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: %w", operation, domain.NewValidationError("response", "is empty"))
		}
		return fmt.Errorf("%s: %w", operation, domain.NewValidationError("response", "is not valid JSON: "+err.Error()))
	}
	return nil
}

func (c *Client) statusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &domain.APIError{
		Operation:  operation,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(raw)),
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", domain.ErrNotFound, apiErr)
	case http.StatusTooManyRequests:
		c.limiter.RecordRateLimitError(retryAfter(resp.Header.Get("Retry-After")))
	}
	return apiErr
}

func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		return time.Until(t)
	}
	return 0
}

func escape(id string) string {
	return url.PathEscape(id)
}
