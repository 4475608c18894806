package fetch

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"time"

	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/jsvanda/infoboard/internal/platform/logging"
	"github.com/jsvanda/infoboard/internal/platform/resilience"
)

const maxBodyBytes = 6 << 20

// errTransient marks failures the retry loop may act on: transport errors,
// attempt timeouts and 5xx responses. 2xx/4xx outcomes are terminal.
var errTransient = crerr.New("transient upstream failure")

// StatusError is returned for non-2xx responses once retries are exhausted
// or the status is terminal.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status=%d body=%s", e.StatusCode, e.Body)
}

// IsRetryable reports whether err represents a transient upstream failure.
func IsRetryable(err error) bool {
	return stderrors.Is(err, errTransient) || stderrors.Is(err, resilience.ErrAttemptTimeout)
}

// ClientConfig configures one upstream profile. Zero retry options fall back
// to the Stable profile.
type ClientConfig struct {
	HTTPClient *http.Client
	UserAgent  string
	Retry      resilience.RetryOptions
	// RequestsPerSecond throttles outbound calls; zero disables throttling.
	// Used by scraper profiles to stay polite against third-party pages.
	RequestsPerSecond float64
	Breaker           resilience.CircuitBreakerConfig
	Logger            *logging.Logger
}

// Client wraps HTTP GET/HEAD in the retry executor with retryability
// classification, per-attempt deadlines, an optional politeness limiter and
// an optional circuit breaker.
type Client struct {
	httpClient     *http.Client
	userAgent      string
	retry          resilience.RetryOptions
	limiter        *rate.Limiter
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	logger         *logging.Logger
}

// StableProfile suits government/open-data APIs: few retries, short deadline.
func StableProfile() resilience.RetryOptions {
	opts := resilience.DefaultRetryOptions()
	opts.MaxRetries = 2
	opts.AttemptTimeout = 8 * time.Second
	return opts
}

// ScraperProfile suits fragile HTML upstreams: more retries, longer deadline.
func ScraperProfile() resilience.RetryOptions {
	opts := resilience.DefaultRetryOptions()
	opts.MaxRetries = 3
	opts.AttemptTimeout = 15 * time.Second
	return opts
}

// CriticalProfile is the most aggressive policy for must-serve paths.
func CriticalProfile() resilience.RetryOptions {
	opts := resilience.DefaultRetryOptions()
	opts.MaxRetries = 4
	opts.AttemptTimeout = 20 * time.Second
	return opts
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	retry := cfg.Retry
	if retry.MaxRetries == 0 && retry.AttemptTimeout == 0 {
		retry = StableProfile()
	}
	if retry.IsRetryable == nil {
		retry.IsRetryable = IsRetryable
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		httpClient:     httpClient,
		userAgent:      cfg.UserAgent,
		retry:          retry,
		limiter:        limiter,
		breaker:        resilience.NewCircuitBreaker(cfg.Breaker),
		circuitEnabled: cfg.Breaker.Enabled,
		logger:         logger,
	}
}

// Get fetches url and returns the response body. On exhaustion the error from
// the final attempt propagates; IsRetryable distinguishes transient failures
// so callers can decide on a stale-cache fallback.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, headers)
}

// Head issues a HEAD request, returning an empty body on success.
func (c *Client) Head(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	return c.do(ctx, http.MethodHead, url, headers)
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "circuit breaker rejected upstream call", "url", url, "state", c.breaker.State())
			return nil, err
		}
	}

	retry := c.retry
	retry.OnRetry = func(attempt int, err error, nextDelay time.Duration) {
		c.logger.WarnContext(ctx, "upstream call retrying",
			"url", url,
			"attempt", attempt,
			"next_delay_ms", nextDelay.Milliseconds(),
			"error", err,
		)
	}

	body, err := resilience.Retry(ctx, retry, func(attemptCtx context.Context) ([]byte, error) {
		return c.attempt(attemptCtx, method, url, headers)
	})
	if c.circuitEnabled {
		if err != nil && IsRetryable(err) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return body, err
}

func (c *Client) attempt(ctx context.Context, method, url string, headers map[string]string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(errTransient, "send request: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.Wrapf(errTransient, "read response body: %v", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return raw, nil
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode, Body: abbreviate(raw)}
	if resp.StatusCode >= 500 {
		return nil, crerr.Wrapf(errTransient, "%v", statusErr)
	}
	return nil, statusErr
}

func abbreviate(raw []byte) string {
	const limit = 256
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
