// Package ergast is a client for the Jolpica mirror of the Ergast Formula 1
// API. Responses are decoded into models at this boundary.
package ergast

import (
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

	"github.com/cenkalti/backoff/v4"
	"github.com/gridstats/gridstats/internal/config"
	"github.com/gridstats/gridstats/internal/logging"
	"github.com/gridstats/gridstats/internal/metrics"
	"github.com/gridstats/gridstats/internal/utils"
)

// DefaultBaseURL is the public Jolpica endpoint
const DefaultBaseURL = "https://api.jolpi.ca/ergast/f1"

// Upstream request outcomes reported to metrics
const (
	OutcomeOK          = "ok"
	OutcomeClientError = "client_error"
	OutcomeUnavailable = "unavailable"
	OutcomeDecodeError = "decode_error"
)

// ErrUnavailable wraps failures that remained after every retry
var ErrUnavailable = errors.New("ergast: upstream unavailable")

// APIError is a non-2xx response from the upstream API
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ergast: %s returned %d", e.URL, e.StatusCode)
}

// NotFound reports whether the upstream had no such resource
func (e *APIError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Temporary reports whether the request is worth retrying
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client fetches and decodes upstream data
type Client struct {
	baseURL     string
	http        *http.Client
	maxAttempts int
	retryStep   time.Duration
	pageSize    int
	metrics     *metrics.Manager
	logger      *logging.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMetrics reports request outcomes and retries to m
func WithMetrics(m *metrics.Manager) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client from upstream configuration. Zero values fall back
// to the package defaults.
func New(cfg config.UpstreamConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxAttempts: cfg.MaxRetries,
		retryStep:   cfg.RetryDelay,
		pageSize:    cfg.PageSize,
		logger:      logging.Global().Component("ergast"),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = utils.DefaultMaxAttempts
	}
	if c.retryStep <= 0 {
		c.retryStep = utils.DefaultRetryStep
	}
	if c.pageSize < 1 || c.pageSize > utils.MaxPageSize {
		c.pageSize = utils.MaxPageSize
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = utils.DefaultRequestTimeout
	}
	c.http = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// linearBackOff waits step, 2*step, 3*step... between attempts
type linearBackOff struct {
	step    time.Duration
	attempt int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.attempt++
	return b.step * time.Duration(b.attempt)
}

func (b *linearBackOff) Reset() { b.attempt = 0 }

// get fetches path with query and decodes the envelope. Timeouts, transport
// errors and 5xx responses are retried; 4xx and malformed JSON are not.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*mrData, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/") + ".json"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	logger := c.logger.WithContext(ctx)
	start := time.Now()
	attempt := 0

	var out response
	operation := func() error {
		attempt++
		err := c.do(ctx, endpoint, &out)
		if err == nil {
			return nil
		}

		switch {
		case isClientError(err), isDecodeError(err):
			return backoff.Permanent(err)
		case ctx.Err() != nil:
			return backoff.Permanent(ctx.Err())
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		c.metrics.RecordUpstreamRetry()
		logger.Warn("Upstream request failed, retrying",
			"url", endpoint, "attempt", attempt, "wait", wait.String(), "error", err)
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{step: c.retryStep}, uint64(c.maxAttempts-1)), ctx)
	err := backoff.RetryNotify(operation, b, notify)

	c.metrics.RecordUpstreamRequest(outcomeOf(err), time.Since(start))
	if err != nil {
		switch {
		case isClientError(err):
			return nil, err
		case isDecodeError(err):
			return nil, fmt.Errorf("ergast: decode %s: %w", endpoint, err)
		case errors.Is(err, context.Canceled):
			return nil, err
		}

		logger.Error("Upstream request gave up", "url", endpoint, "attempts", attempt, "error", err)
		return nil, fmt.Errorf("%w: %s after %d attempts: %v", ErrUnavailable, endpoint, attempt, err)
	}

	logger.Debug("Upstream request", "url", endpoint, "attempts", attempt, "duration_ms", time.Since(start).Milliseconds())
	return &out.MRData, nil
}

func (c *Client) do(ctx context.Context, endpoint string, out *response) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gridstats")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{StatusCode: resp.StatusCode, URL: endpoint, Body: string(body)}
	}

	*out = response{}
	return json.NewDecoder(resp.Body).Decode(out)
}

func isClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && !apiErr.Temporary()
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case isClientError(err):
		return OutcomeClientError
	case isDecodeError(err):
		return OutcomeDecodeError
	default:
		return OutcomeUnavailable
	}
}

// pageQuery builds limit/offset parameters
func (c *Client) pageQuery(offset int) url.Values {
	return url.Values{
		"limit":  []string{strconv.Itoa(c.pageSize)},
		"offset": []string{strconv.Itoa(offset)},
	}
}
