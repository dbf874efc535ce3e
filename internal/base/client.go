// Package base provides the HTTP client infrastructure for upstream REST calls.
package base

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"

	apierrors "github.com/olgasafonova/dnd5e-mcp-server/internal/errors"
	"github.com/olgasafonova/dnd5e-mcp-server/metrics"
	"github.com/olgasafonova/dnd5e-mcp-server/tracing"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent when a request does not set its own
	DefaultUserAgent = "dnd5e-mcp-server/1.0.0"

	// MaxResponseBytes caps how much of an upstream body is read
	MaxResponseBytes = 10 << 20
)

// Client performs single-attempt GET requests. It holds no per-request state
// and is safe for concurrent use.
type Client struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	MaxBody    int64
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithMaxResponseBytes caps the upstream body size. Larger bodies fail the
// request instead of being truncated.
func WithMaxResponseBytes(n int64) ClientOption {
	return func(client *Client) {
		client.MaxBody = n
	}
}

// WithTimeout replaces the HTTP client with one using the given timeout.
// A zero timeout means no client-side deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(client *Client) {
		client.HTTPClient = newHTTPClient(d)
	}
}

// NewClient creates a new base client with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient: newHTTPClient(DefaultTimeout),
		Logger:     slog.Default(),
		MaxBody:    MaxResponseBytes,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close releases idle connections held by the transport
func (c *Client) Close() {
	c.HTTPClient.CloseIdleConnections()
}

// RequestConfig configures a single HTTP request
type RequestConfig struct {
	URL       string
	UserAgent string
	Category  string // metrics/tracing label, e.g. "spells"
}

// DoRequest performs exactly one GET. It returns the body and status code for
// any response the server sent; the caller decides what a non-2xx means.
// Failures to obtain a response are returned as *errors.TransportError.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	ctx, span := tracing.StartSpan(ctx, "dnd5e.api.get")
	defer span.End()
	tracing.AddAPIAttributes(span, cfg.Category, cfg.URL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	} else {
		req.Header.Set("User-Agent", DefaultUserAgent)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		duration := time.Since(start).Seconds()
		tErr := apierrors.NewTransportError(err)
		metrics.RecordAPICall(cfg.Category, duration, false, apierrors.Code(tErr))
		tracing.RecordError(span, err)
		c.Logger.Warn("API request failed",
			"url", cfg.URL,
			"error", err)
		return nil, 0, tErr
	}

	body, err := readAndClose(resp, c.MaxBody)
	duration := time.Since(start).Seconds()
	if err != nil {
		tErr := apierrors.NewTransportError(fmt.Errorf("failed to read response: %w", err))
		metrics.RecordAPICall(cfg.Category, duration, false, apierrors.Code(tErr))
		tracing.RecordError(span, err)
		return nil, resp.StatusCode, tErr
	}

	span.SetAttributes(
		attribute.Int("http.status_code", resp.StatusCode),
		attribute.Int("http.response_size", len(body)),
	)
	metrics.RecordResponseSize(cfg.Category, len(body))

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	errorCode := ""
	if !success {
		errorCode = fmt.Sprintf("http_%d", resp.StatusCode)
	}
	metrics.RecordAPICall(cfg.Category, duration, success, errorCode)

	c.Logger.Debug("API request completed",
		"url", cfg.URL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_seconds", duration)

	return body, resp.StatusCode, nil
}

// readAndClose reads the response body and closes it. A body longer than
// limit is an error.
func readAndClose(resp *http.Response, limit int64) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("response exceeds %d bytes", limit)
	}
	return body, nil
}

// newHTTPClient creates an HTTP client with optimized transport settings
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
