// Package openfda fetches and normalizes drug adverse-event records from the
// openFDA event feed.
package openfda

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/logger"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

const (
	// DefaultBaseURL is the public adverse-event endpoint.
	DefaultBaseURL = "https://api.fda.gov/drug/event.json"

	// MaxLimit is the largest page the feed serves.
	MaxLimit = 1000

	// maxBodySize bounds how much of a response is read.
	maxBodySize = 32 << 20
)

var (
	// ErrTransport marks any failure to obtain a usable response.
	ErrTransport = errors.New("openfda: transport failure")

	// ErrInvalidQuery is returned before any request for unusable arguments.
	ErrInvalidQuery = errors.New("openfda: invalid query")
)

// TransportError describes a failed fetch. StatusCode is zero when no
// response was received.
type TransportError struct {
	Err        error
	Query      Query
	StatusCode int
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("openfda: %s failed (status %d): %v", e.Query, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("openfda: %s failed: %v", e.Query, e.Err)
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// Query is one request against the feed.
type Query struct {
	Drug  string
	Mode  models.QueryMode
	Limit int
}

// Recent returns a query for the most recent limit events.
func Recent(limit int) Query {
	return Query{Mode: models.QueryRecent, Limit: limit}
}

// Search returns a query for events whose drug name matches drug exactly.
func Search(drug string, limit int) Query {
	return Query{Mode: models.QuerySearch, Drug: strings.TrimSpace(drug), Limit: limit}
}

// Key returns the cache key for the query.
func (q Query) Key() models.QueryKey {
	if q.Mode == models.QuerySearch {
		return models.SearchKey(q.Drug, q.Limit)
	}
	return models.RecentKey(q.Limit)
}

func (q Query) String() string {
	return q.Key().String()
}

// Validate checks the query arguments.
func (q Query) Validate() error {
	if q.Limit < 1 || q.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be between 1 and %d, got %d", ErrInvalidQuery, MaxLimit, q.Limit)
	}
	switch q.Mode {
	case models.QueryRecent:
	case models.QuerySearch:
		if strings.TrimSpace(q.Drug) == "" {
			return fmt.Errorf("%w: drug name is empty", ErrInvalidQuery)
		}
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidQuery, q.Mode)
	}
	return nil
}

// Observer is notified after every fetch, successful or not.
type Observer interface {
	ObserveFetch(call models.FetchCall)
}

// Options configures a Client.
type Options struct {
	HTTPClient *http.Client
	Observer   Observer
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Retries    int
}

// Client fetches raw events from the feed.
type Client struct {
	httpClient *http.Client
	observer   Observer
	baseURL    string
	apiKey     string
	retries    int
	backoff    time.Duration
	maxBackoff time.Duration
}

// NewClient creates a feed client.
func NewClient(opts Options) *Client {
	c := &Client{
		httpClient: opts.HTTPClient,
		observer:   opts.Observer,
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		retries:    opts.Retries,
		backoff:    500 * time.Millisecond,
		maxBackoff: 8 * time.Second,
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.retries < 1 {
		c.retries = 1
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.httpClient = newHTTPClient(timeout)
	}
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// URL builds the request URL for q.
func (c *Client) URL(q Query) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	params := u.Query()
	params.Set("limit", fmt.Sprintf("%d", q.Limit))
	if q.Mode == models.QuerySearch {
		params.Set("search", fmt.Sprintf("patient.drug.medicinalproduct:%q", q.Drug))
	}
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

type eventResponse struct {
	Results []models.RawEvent `json:"results"`
}

// Fetch runs q against the feed. A not-found response yields an empty
// result and a nil error. Any other failure is a *TransportError.
func (c *Client) Fetch(ctx context.Context, q Query) ([]models.RawEvent, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	reqURL, err := c.URL(q)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		events []models.RawEvent
		status int
	)

	err = retry(ctx, c.retries, c.backoff, c.maxBackoff, func() error {
		var ferr error
		events, status, ferr = c.fetchOnce(ctx, reqURL)
		if ferr != nil {
			logger.Debug("fetch attempt failed", "query", q.String(), "status", status, "error", ferr)
		}
		return ferr
	})

	c.observe(q, start, status, len(events), err)

	if err != nil {
		var te *TransportError
		if errors.As(err, &te) {
			te.Query = q
			return nil, te
		}
		return nil, &TransportError{Query: q, StatusCode: status, Err: err}
	}
	return events, nil
}

func (c *Client) fetchOnce(ctx context.Context, reqURL string) ([]models.RawEvent, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, permanent(ctx.Err())
		}
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, resp.StatusCode, &TransportError{StatusCode: resp.StatusCode, Err: errors.New(snippet(body))}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, resp.StatusCode, permanent(&TransportError{StatusCode: resp.StatusCode, Err: errors.New(snippet(body))})
	}

	var payload eventResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, resp.StatusCode, permanent(fmt.Errorf("failed to parse response: %w", err))
	}
	return payload.Results, resp.StatusCode, nil
}

func (c *Client) observe(q Query, start time.Time, status, results int, err error) {
	if c.observer == nil {
		return
	}
	call := models.FetchCall{
		Timestamp:  start,
		RequestID:  uuid.NewString(),
		Mode:       q.Mode.String(),
		Drug:       q.Drug,
		Limit:      q.Limit,
		StatusCode: status,
		Results:    results,
		DurationMs: int(time.Since(start).Milliseconds()),
	}
	if err != nil {
		call.Error = err.Error()
	}
	c.observer.ObserveFetch(call)
}

// snippet trims an error body for messages.
func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "empty response"
	}
	return s
}
