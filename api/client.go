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
	"path"
	"strings"
	"time"

	"github.com/cloudlint/go-common/logger"
	"github.com/cloudlint/go-common/retry"
)

// Credentials adds authentication to an outgoing request's headers.
type Credentials interface {
	UpdateHeaders(headers http.Header) error
}

// StaticToken is a Credentials implementation for a fixed bearer token.
type StaticToken string

var _ Credentials = StaticToken("")

func (t StaticToken) UpdateHeaders(headers http.Header) error {
	if t != "" {
		headers.Set("Authorization", "Bearer "+string(t))
	}
	return nil
}

// ErrRetriesExhausted is wrapped by the error returned when every attempt of
// a call failed with a retryable status.
var ErrRetriesExhausted = errors.New("api: failed to get a response")

// Error is a failed API call. It is the recoverable error class the cache
// layer recognizes: a cached *Error is replayed to later callers of the same
// query instead of re-issuing the call.
type Error struct {
	Method string `json:"method" msgpack:"method"`
	URL    string `json:"url" msgpack:"url"`
	Status int    `json:"status" msgpack:"status"`
	Body   string `json:"body" msgpack:"body"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s %s: status %d", e.Method, e.URL, e.Status)
}

// Client issues JSON REST calls with credential injection and a retry loop
// driven by a retry.Strategy.
type Client struct {
	baseURL  string
	creds    Credentials
	client   *http.Client
	strategy retry.Strategy
	sleeper  retry.Sleeper
	logger   logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport. Tests point this at an
// httptest server's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithStrategy replaces the retry strategy.
func WithStrategy(s retry.Strategy) Option {
	return func(c *Client) { c.strategy = s }
}

// WithSleeper replaces the sleeper used between attempts.
func WithSleeper(s retry.Sleeper) Option {
	return func(c *Client) { c.sleeper = s }
}

// New returns a Client for the given base URL. Defaults: the shared
// http.DefaultClient, exponential backoff with jitter, blocking sleeps.
func New(log logger.Logger, baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		creds:   creds,
		client:  http.DefaultClient,
		strategy: retry.ExponentialJitter{
			Retries:    5,
			Multiplier: 1.4,
			RandomPct:  0.2,
		},
		sleeper: retry.SystemSleeper(),
		logger:  log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// retryable reports whether a status is worth another attempt: rate limiting
// and server-side failures are, every other non-success status is permanent.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func (c *Client) resolve(pathParam string) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("api: error parsing base url: %w", err)
	}
	if i := strings.Index(pathParam, "?"); i != -1 {
		u.RawQuery = pathParam[i+1:]
		pathParam = pathParam[:i]
	}
	switch {
	case pathParam == "":
	case u.Path == "" || u.Path == "/":
		u.Path = pathParam
	default:
		u.Path = path.Join(u.Path, pathParam)
	}
	return u.String(), nil
}

// Do performs one logical call: marshal payload (if any) as JSON, add
// credentials, retry per the strategy, and unmarshal a 200 body into
// response (if non-nil). A non-429 4xx returns a *Error immediately without
// consuming retries; exhausting the strategy returns an error wrapping
// ErrRetriesExhausted that names the method and URL.
func (c *Client) Do(ctx context.Context, method, pathParam string, payload any, response any) error {
	target, err := c.resolve(pathParam)
	if err != nil {
		return err
	}

	var body []byte
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("api: error marshalling payload: %w", err)
		}
	}

	for attempt, interval := range c.strategy.Intervals() {
		status, respBody, err := c.attempt(ctx, method, target, body)
		if err != nil {
			return err
		}
		if status == http.StatusOK {
			if response != nil {
				if err := json.Unmarshal(respBody, response); err != nil {
					return fmt.Errorf("api: error decoding response from %s: %w", target, err)
				}
			}
			return nil
		}
		if !retryable(status) {
			return &Error{
				Method: method,
				URL:    target,
				Status: status,
				Body:   strings.TrimSpace(string(respBody)),
			}
		}
		c.logger.Debug("retryable status %d from %s %s, attempt %d, sleeping %s", status, method, target, attempt+1, interval)
		if err := c.sleeper.Sleep(ctx, interval); err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: %s %s", ErrRetriesExhausted, method, target)
}

// attempt issues a single HTTP request and returns the status and body. A
// returned error means the request could not be performed at all; HTTP-level
// failures are reported through the status code.
func (c *Client) attempt(ctx context.Context, method, target string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("api: error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.creds != nil {
		if err := c.creds.UpdateHeaders(req.Header); err != nil {
			return 0, nil, fmt.Errorf("api: error adding credentials: %w", err)
		}
	}
	c.logger.Trace("sending request: %s %s", method, target)
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("api: error sending request: %w", err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("api: error reading response body: %w", err)
	}
	c.logger.Trace("response status %d from %s %s in %s", resp.StatusCode, method, target, time.Since(start))
	return resp.StatusCode, respBody, nil
}
