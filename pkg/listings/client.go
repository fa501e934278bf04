package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"sync/atomic"
	"time"
)

var (
	ErrCircuitOpen = errors.New("listings circuit open")
	ErrNoAPIKey    = errors.New("listings api key not configured")
)

// maxBody bounds how much of an upstream response is read.
const maxBody = 16 << 20

// Client fetches postings from the aggregator. It never retries: a failed
// call counts toward the circuit breaker and is returned to the caller.
type Client struct {
	cfg    Config
	client *http.Client
	now    func() time.Time

	// simple circuit breaker state
	failures  int32
	openUntil int64 // unix nano
	closed    int32 // atomic flag for Close()
}

// NewClient creates a new listings client.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	cfg = cfg.WithDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	c := &Client{cfg: cfg, client: httpClient, now: time.Now}
	logger.Info("listings: client created", slog.String("base_url", cfg.BaseURL), slog.Duration("timeout", cfg.Timeout))
	return c, nil
}

func NewDefaultClient(cfg Config) (*Client, error) {
	defaultClient := &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 15 * time.Second,
			}).DialContext,
			ForceAttemptHTTP2:     true,
			MaxIdleConns:          20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return NewClient(cfg, defaultClient)
}

// package-level logger for pkg/listings; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/listings. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.failures) < int32(c.cfg.CircuitFailureThreshold) {
		return false
	}

	if time.Now().UnixNano() < atomic.LoadInt64(&c.openUntil) {
		return true
	}

	// attempt half-open: reset failures and allow a request
	atomic.StoreInt32(&c.failures, 0)
	return false
}

func (c *Client) recordFailure() {
	v := atomic.AddInt32(&c.failures, 1)
	if v >= int32(c.cfg.CircuitFailureThreshold) {
		atomic.StoreInt64(&c.openUntil, time.Now().Add(c.cfg.CircuitReset).UnixNano())
		logger.Warn("listings: circuit opened", slog.Int("failures", int(v)), slog.Duration("reset", c.cfg.CircuitReset))
	}
}

// Close releases idle connections held by the underlying transport. Close is
// idempotent and safe to call multiple times.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	if c.client != nil && c.client.Transport != nil {
		if tr, ok := c.client.Transport.(interface{ CloseIdleConnections() }); ok {
			tr.CloseIdleConnections()
		}
	}
	return nil
}

// Fetch calls the configured endpoint and returns the normalized postings.
// A payload without a job array is logged and yields an empty list.
func (c *Client) Fetch(ctx context.Context) ([]Job, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if c.isCircuitOpen() {
		return nil, ErrCircuitOpen
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	base, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	u := base.ResolveReference(&url.URL{Path: c.cfg.Endpoint})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-rapidapi-key", c.cfg.APIKey)
	req.Header.Set("x-rapidapi-host", c.cfg.APIHost)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("listings request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.recordFailure()
		return nil, fmt.Errorf("listings endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		c.recordFailure()
		return nil, fmt.Errorf("read listings body: %w", err)
	}
	atomic.StoreInt32(&c.failures, 0)

	items, err := ParsePayload(body)
	if err != nil {
		logger.Warn("listings: unexpected payload shape", slog.String("error", err.Error()))
		return []Job{}, nil
	}

	jobs := TransformAll(items, c.now())
	logger.Info("listings: fetched", slog.Int("count", len(jobs)), slog.Duration("latency", time.Since(start)))
	return jobs, nil
}

// Recommended fetches postings and applies Recommend.
func (c *Client) Recommended(ctx context.Context, skills []string, location string) ([]Job, error) {
	jobs, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return Recommend(jobs, skills, location), nil
}
