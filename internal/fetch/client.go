// Package fetch issues upstream HTTP GETs for the token tools and maps
// failures onto the domain error taxonomy.
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"token-risk-agent/internal/domain"
	"token-risk-agent/internal/observability"
)

// Default configuration values.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxFailures  = 5
	DefaultOpenTimeout  = 30 * time.Second
	DefaultUserAgent    = "token-risk-agent/1.0"
	maxBodyBytes        = 8 << 20
	errorBodyPreviewLen = 200
)

// Client performs bounded GET requests with one circuit breaker per source.
type Client struct {
	http        *http.Client
	timeout     time.Duration
	userAgent   string
	maxFailures uint32
	openTimeout time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithBreaker sets consecutive failures before a source trips and how long it stays open.
// maxFailures of zero disables breaking.
func WithBreaker(maxFailures uint32, openTimeout time.Duration) Option {
	return func(c *Client) {
		c.maxFailures = maxFailures
		if openTimeout > 0 {
			c.openTimeout = openTimeout
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new upstream client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{},
		timeout:     DefaultTimeout,
		userAgent:   DefaultUserAgent,
		maxFailures: DefaultMaxFailures,
		openTimeout: DefaultOpenTimeout,
		logger:      zap.NewNop(),
		breakers:    make(map[string]*gobreaker.CircuitBreaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("fetch")
	return c
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// response is what a breaker-protected call hands back.
type response struct {
	status int
	body   []byte
}

// Get issues a GET to url and returns the body of a 2xx response.
// A 404 returns domain.ErrNotFound; other failures return domain.ErrNetwork.
func (c *Client) Get(ctx context.Context, source, url string, header http.Header) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		// 5xx trips the breaker, 4xx is the caller's problem.
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, preview(body))
		}
		return &response{status: resp.StatusCode, body: body}, nil
	}

	var (
		out interface{}
		err error
	)
	if cb := c.breaker(source); cb != nil {
		out, err = cb.Execute(call)
	} else {
		out, err = call()
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s unavailable: %v", domain.ErrNetwork, source, err)
		}
		if ctx.Err() != nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s timed out after %s", domain.ErrNetwork, source, c.timeout)
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNetwork, source, err)
	}

	resp := out.(*response)
	switch {
	case resp.status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s returned 404", domain.ErrNotFound, source)
	case resp.status < 200 || resp.status > 299:
		return nil, fmt.Errorf("%w: %s status %d: %s", domain.ErrNetwork, source, resp.status, preview(resp.body))
	}
	return resp.body, nil
}

// GetJSON issues a GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, source, url string, header http.Header, out any) error {
	body, err := c.Get(ctx, source, url, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrMalformedResponse, source, err)
	}
	return nil
}

// breaker returns the circuit breaker for source, creating it on first use.
func (c *Client) breaker(source string) *gobreaker.CircuitBreaker {
	if c.maxFailures == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[source]; ok {
		return cb
	}

	maxFailures := c.maxFailures
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        source,
		MaxRequests: 1,
		Timeout:     c.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.SetBreakerState(name, int(to))
			c.logger.Warn("circuit breaker state changed",
				zap.String("source", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	c.breakers[source] = cb
	return cb
}

func preview(body []byte) string {
	if len(body) > errorBodyPreviewLen {
		return string(body[:errorBodyPreviewLen])
	}
	return string(body)
}
