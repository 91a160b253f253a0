package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"campaign-radar/internal/resilience/circuitbreaker"
	"campaign-radar/internal/resilience/retry"
)

// HTTPFetcher downloads raw source documents (HTML pages, RSS feeds,
// JSON APIs) over HTTP with retry, circuit breaker, SSRF validation,
// size limiting, and per-host request pacing.
//
// Thread safety: HTTPFetcher is safe for concurrent use.
type HTTPFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates an HTTPFetcher with the given configuration.
// The underlying HTTP client enforces TLS 1.2+ and validates every
// redirect target against the same SSRF rules as the initial URL.
func NewHTTPFetcher(config Config) *HTTPFetcher {
	f := &HTTPFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.SourceFetchConfig()),
		retryConfig:    retry.SourceFetchConfig(),
		config:         config,
		limiters:       make(map[string]*rate.Limiter),
	}

	f.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return f
}

// Fetch downloads the document at the given endpoint and returns its
// raw bytes. The request is validated for SSRF, paced per host, retried
// with backoff on transient failures, and executed through the circuit
// breaker.
func (f *HTTPFetcher) Fetch(ctx context.Context, endpoint string) ([]byte, error) {
	if err := validateURL(endpoint, f.config.DenyPrivateIPs); err != nil {
		return nil, err
	}

	if err := f.waitForHost(ctx, endpoint); err != nil {
		return nil, err
	}

	var body []byte

	retryErr := retry.WithBackoff(ctx, f.retryConfig, func() error {
		cbResult, err := f.circuitBreaker.Execute(func() (interface{}, error) {
			return f.doFetch(ctx, endpoint)
		})

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("source fetch circuit breaker open, request rejected",
					slog.String("service", "source-fetch"),
					slog.String("url", endpoint),
					slog.String("state", f.circuitBreaker.State().String()))
			}
			return err
		}

		body = cbResult.([]byte)
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	return body, nil
}

// doFetch performs a single HTTP request without retry or breaker.
func (f *HTTPFetcher) doFetch(ctx context.Context, endpoint string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if reqCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("%w: request exceeded %v", ErrTimeout, f.config.Timeout)
		}
		// Unwrap redirect validation errors so callers see the sentinel.
		if urlErr, ok := err.(*url.Error); ok && urlErr.Err != nil {
			return nil, urlErr.Err
		}
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	// Read one byte past the limit so over-limit responses are
	// distinguishable from exactly-at-limit ones.
	limitedReader := io.LimitReader(resp.Body, f.config.MaxBodySize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if int64(len(body)) > f.config.MaxBodySize {
		return nil, fmt.Errorf("%w: response size %d bytes exceeds limit %d bytes",
			ErrBodyTooLarge, len(body), f.config.MaxBodySize)
	}

	return body, nil
}

// waitForHost blocks until the per-host limiter permits another request
// to the endpoint's host. Pacing is disabled when PerHostDelay is zero.
func (f *HTTPFetcher) waitForHost(ctx context.Context, endpoint string) error {
	if f.config.PerHostDelay <= 0 {
		return nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", ErrInvalidURL, err)
	}

	f.mu.Lock()
	limiter, ok := f.limiters[u.Host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(f.config.PerHostDelay), 1)
		f.limiters[u.Host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}
