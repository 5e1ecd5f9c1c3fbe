package rest

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const defaultRetryAfter = 60 * time.Second

// Options configures a Client.
type Options struct {
	// BaseURL is the endpoint root, without a trailing slash.
	BaseURL string
	// Headers are static session headers, typically authentication.
	Headers map[string]string
	// Timeout bounds every single request attempt.
	Timeout time.Duration
	// MaxConcurrentRequests sizes the admission gate.
	MaxConcurrentRequests int
	// Retry is the backoff policy.
	Retry RetryConfig
	// Stats receives the per-connector request counters. Optional.
	Stats *FetchStats
	// Logger is used for retry and failure logging. Optional.
	Logger *zap.Logger
	// HTTPClient overrides the underlying transport. Used by tests.
	HTTPClient *http.Client
}

// Client issues requests against one API with bounded retries and a shared
// concurrency gate. One Client is owned by one connector session.
type Client struct {
	baseURL       string
	headers       map[string]string
	http          *http.Client
	retry         RetryConfig
	gate          *semaphore.Weighted
	maxConcurrent int
	stats         *FetchStats
	log           *zap.Logger

	// sleep suspends only the calling goroutine. Overridable in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client from the given options, filling defaults for
// anything unset.
func NewClient(opts Options) *Client {
	if opts.MaxConcurrentRequests <= 0 {
		opts.MaxConcurrentRequests = 10
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 3
	}
	if opts.Retry.BackoffMultiplier <= 0 {
		opts.Retry.BackoffMultiplier = 2
	}
	if opts.Stats == nil {
		opts.Stats = NewFetchStats()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:       opts.BaseURL,
		headers:       opts.Headers,
		http:          opts.HTTPClient,
		retry:         opts.Retry,
		gate:          semaphore.NewWeighted(int64(opts.MaxConcurrentRequests)),
		maxConcurrent: opts.MaxConcurrentRequests,
		stats:         opts.Stats,
		log:           opts.Logger,
		sleep:         sleepCtx,
	}
}

// Stats returns the counter set owned by this client.
func (c *Client) Stats() *FetchStats {
	return c.stats
}

// Execute performs one logical request with bounded retries.
//
// Rate-limit waits honor the server-specified duration and do not advance the
// exponential backoff schedule, but they do consume an attempt. Auth failures
// and non-retryable client errors terminate immediately.
func (c *Client) Execute(ctx context.Context, method, endpoint string, query url.Values) Outcome {
	delay := c.retry.InitialDelay()
	maxDelay := c.retry.MaxDelay()

	var last Outcome
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		out := c.attempt(ctx, method, endpoint, query)

		switch out.Kind {
		case KindSuccess:
			return out

		case KindAuthFailed:
			c.stats.requestsFailed.Add(1)
			c.log.Error("authentication failed",
				zap.String("endpoint", endpoint),
				zap.Int("status", out.StatusCode))
			return out

		case KindClientError:
			c.stats.requestsFailed.Add(1)
			c.log.Error("request rejected",
				zap.String("endpoint", endpoint),
				zap.Int("status", out.StatusCode),
				zap.String("body", out.Body))
			return out

		case KindRateLimited:
			c.stats.retries.Add(1)
			c.log.Warn("rate limited",
				zap.String("endpoint", endpoint),
				zap.Duration("retry_after", out.RetryAfter))
			last = out
			if err := c.sleep(ctx, out.RetryAfter); err != nil {
				return out
			}

		default:
			c.stats.retries.Add(1)
			c.log.Warn("request failed",
				zap.String("endpoint", endpoint),
				zap.String("outcome", out.Kind.String()),
				zap.Int("attempt", attempt+1),
				zap.Int("max_attempts", c.retry.MaxAttempts))
			last = out
			if attempt < c.retry.MaxAttempts-1 {
				if err := c.sleep(ctx, delay); err != nil {
					return last
				}
				delay = min(time.Duration(float64(delay)*c.retry.BackoffMultiplier), maxDelay)
			}
		}
	}

	c.stats.requestsFailed.Add(1)
	c.log.Error("all retry attempts failed",
		zap.String("endpoint", endpoint),
		zap.Int("attempts", c.retry.MaxAttempts))
	return last
}

// attempt performs a single HTTP request under the admission gate and
// classifies the response.
func (c *Client) attempt(ctx context.Context, method, endpoint string, query url.Values) Outcome {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return Outcome{Kind: KindTransportError, Err: err}
	}
	defer c.gate.Release(1)

	c.stats.requestsMade.Add(1)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, nil)
	if err != nil {
		return Outcome{Kind: KindTransportError, Err: err}
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Outcome{Kind: KindTimeout, Err: err}
		}
		return Outcome{Kind: KindTransportError, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return Outcome{Kind: KindTransportError, Err: err}
		}
		c.stats.requestsSuccessful.Add(1)
		return Outcome{Kind: KindSuccess, StatusCode: resp.StatusCode, Payload: payload}

	case resp.StatusCode == http.StatusTooManyRequests:
		return Outcome{
			Kind:       KindRateLimited,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Outcome{Kind: KindAuthFailed, StatusCode: resp.StatusCode}

	case resp.StatusCode >= http.StatusInternalServerError:
		return Outcome{Kind: KindServerError, StatusCode: resp.StatusCode}

	default:
		return Outcome{
			Kind:       KindClientError,
			StatusCode: resp.StatusCode,
			Body:       readSnippet(resp.Body, 200),
		}
	}
}

// parseRetryAfter reads a Retry-After header expressed in seconds.
func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// readSnippet reads at most n bytes of the body for error reporting.
func readSnippet(r io.Reader, n int64) string {
	b, _ := io.ReadAll(io.LimitReader(r, n))
	return string(b)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// sleepCtx sleeps for d, waking early if the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
