package writeback

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"rollcall/internal/ledger"
	"rollcall/internal/services"
)

const (
	component = "writeback"
	userAgent = "rollcall/0.1"

	// DefaultTimeout bounds one append call. Expiry surfaces as a timeout
	// error so the operator message can be more specific than a generic
	// transport failure.
	DefaultTimeout = 15 * time.Second
)

// row is the wire shape of one appended record: the ledger fields plus a
// display timestamp the log renders as-is.
type row struct {
	Name        string `json:"name"`
	Spouse      string `json:"spouse,omitempty"`
	SessionDate string `json:"session_date,omitempty"`
	Round       int    `json:"round"`
	Residence   string `json:"residence,omitempty"`
	Preference  string `json:"preference,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Author      string `json:"author,omitempty"`
	SubmittedAt string `json:"submitted_at,omitempty"`
}

// Client appends new rows to the external log. Delivery is fire-and-forget:
// the append endpoint exposes no usable response body, so success is assumed
// unless the call itself faults.
type Client struct {
	endpoint   string
	timeout    time.Duration
	httpClient *http.Client
	activity   *Activity
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

// WithTimeout overrides the fixed append deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewClient constructs a write-back client for the given append endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	client := &Client{
		endpoint: strings.TrimSpace(endpoint),
		timeout:  DefaultTimeout,
		activity: NewActivity(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{}
	}
	return client
}

// Activity exposes the recent-activity buffer fed by this client.
func (c *Client) Activity() *Activity {
	return c.activity
}

// Append posts the records to the append endpoint. The body is a JSON array
// framed as plain text so the call needs no preflight negotiation with the
// external store. Each record is echoed onto the activity buffer at
// submission time, before the outcome is known; the buffer is informational
// only and is superseded by the next aggregation cycle.
func (c *Client) Append(ctx context.Context, records []ledger.Record) error {
	if c.endpoint == "" {
		return services.Wrap(services.ErrConfiguration, component, "append", "append endpoint URL not configured", nil)
	}
	if len(records) == 0 {
		return services.Wrap(services.ErrValidation, component, "append", "no records to append", nil)
	}

	rows := make([]row, len(records))
	for i, record := range records {
		rows[i] = toRow(record)
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return services.Wrap(services.ErrValidation, component, "append", "encode rows", err)
	}

	for _, record := range records {
		c.activity.Push(record)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return services.Wrap(services.ErrTransport, component, "append", "build request", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Classify(component, "append", err)
	}
	defer resp.Body.Close()

	// The response body carries no usable contract; drain and move on.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func toRow(record ledger.Record) row {
	r := row{
		Name:        record.Name,
		Spouse:      record.Spouse,
		SessionDate: record.SessionDate,
		Round:       record.Round,
		Residence:   record.Residence,
		Preference:  record.Preference,
		Notes:       record.Notes,
		Author:      record.Author,
	}
	if !record.SubmittedAt.IsZero() {
		r.SubmittedAt = record.SubmittedAt.UTC().Format(time.RFC3339)
	}
	return r
}
