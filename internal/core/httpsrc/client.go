// Package httpsrc implements the engine's remote fetch collaborator over HTTP.
//
// A request is a GET of the table URL with the wire params appended as the
// query string; slice values repeat the key. The JSON body is returned
// undecoded in shape for the response extractor to walk.
package httpsrc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/solatis/sttable/internal/grid"
)

// maxErrorBody caps how much of a failed response is quoted in the error.
const maxErrorBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.Code, e.Body)
}

// Client is a rate-limited grid.Fetcher.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	token   string
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimit limits requests to perSecond with the given burst.
// perSecond <= 0 leaves the client unlimited.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
		}
	}
}

// WithToken sends token as a bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client with the given per-request timeout.
func New(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:    20,
				MaxConnsPerHost: 10,
				IdleConnTimeout: 20 * time.Second,
			},
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch GETs rawURL with params and decodes the JSON body.
func (c *Client) Fetch(ctx context.Context, rawURL string, params map[string]any) (any, error) {
	target, err := withQuery(rawURL, params)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	c.log.Debug().Str("url", target).Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("http fetch")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{URL: target, Code: resp.StatusCode, Body: string(body)}
	}

	var raw any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", target, err)
	}
	return raw, nil
}

// withQuery appends params to rawURL, keeping any query it already has.
// Keys are encoded in sorted order.
func withQuery(rawURL string, params map[string]any) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	q := u.Query()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
		case []string:
			for _, s := range v {
				q.Add(k, s)
			}
		case []any:
			for _, item := range v {
				q.Add(k, grid.ToText(item))
			}
		default:
			q.Set(k, grid.ToText(v))
		}
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}
