package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rollcall/internal/services"
)

const (
	component = "source"
	userAgent = "rollcall/0.1"
)

// Client fetches the full raw attendance log from the record source.
type Client struct {
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithClock overrides the time source used for cache busting (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a record source client for the given endpoint.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := &Client{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Fetch retrieves the complete attendance log as tabular text. The upstream
// store may cache aggressively, so every request carries a cache-busting
// query parameter. Non-success responses and network failures surface as
// transport errors; the caller decides whether to re-trigger.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	if c.endpoint == "" {
		return "", services.Wrap(services.ErrConfiguration, component, "fetch", "record source URL not configured", nil)
	}

	target, err := c.bustedURL()
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, component, "fetch", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, component, "fetch", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Classify(component, "fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", services.Wrap(services.ErrTransport, component, "fetch",
			fmt.Sprintf("record source returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransport, component, "fetch", "read response", err)
	}
	return string(body), nil
}

func (c *Client) bustedURL() (string, error) {
	parsed, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
