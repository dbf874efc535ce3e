package dnd5e

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olgasafonova/dnd5e-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/dnd5e-mcp-server/internal/errors"
)

const (
	// BaseURL is the D&D 5e SRD API root. Every request path is appended to it.
	BaseURL = "https://www.dnd5eapi.co/api"

	// DefaultUserAgent is the default user agent for D&D 5e API requests
	DefaultUserAgent = "dnd5e-mcp-server/1.0.0 (github.com/olgasafonova/dnd5e-mcp-server)"
)

// Client provides access to the D&D 5e API
type Client struct {
	*base.Client
	baseURL   string
	userAgent string
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		base.WithHTTPClient(h)(c.Client)
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		base.WithLogger(l)(c.Client)
	}
}

// WithTimeout bounds every upstream request; zero disables the bound
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		base.WithTimeout(d)(c.Client)
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithBaseURL points the client at a different API root. It exists for
// tests and is not exposed through configuration.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// NewClient creates a new D&D 5e API client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		Client:    base.NewClient(),
		baseURL:   BaseURL,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches path (e.g. "/spells/fireball") with a single GET and returns the
// raw body of a 2xx response. Non-2xx responses become *errors.APIError and
// failures to get any response become *errors.TransportError.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	body, status, err := c.DoRequest(ctx, base.RequestConfig{
		URL:       c.baseURL + path,
		UserAgent: c.userAgent,
		Category:  categoryOf(path),
	})
	if err != nil {
		if apierrors.IsTransport(err) {
			return nil, err
		}
		return nil, apierrors.NewTransportError(err)
	}

	if status < 200 || status >= 300 {
		return nil, apierrors.NewAPIError(status, body)
	}
	return body, nil
}
