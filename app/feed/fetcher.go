package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// RetryStatuses are the HTTP statuses treated as transient.
var RetryStatuses = map[int]bool{
	http.StatusForbidden:           true,
	http.StatusNotFound:            true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// BodyCache stores raw feed bodies between runs.
type BodyCache interface {
	GetFeedData(ctx context.Context, feedURL string) ([]byte, bool, error)
	SetFeedData(ctx context.Context, feedURL string, data []byte) error
}

type FetcherOptions struct {
	Timeout       time.Duration // per attempt
	MaxAttempts   int
	Backoff       time.Duration // delay before retry n is Backoff * 2^(n-1)
	UserAgent     string
	RatePerSecond float64 // 0 disables pacing
}

type FetchResult struct {
	URL       string
	Body      []byte
	Attempts  int
	FromCache bool
}

type Fetcher struct {
	client  *http.Client
	opts    FetcherOptions
	limiter *rate.Limiter
	cache   BodyCache
}

func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func NewFetcher(client *http.Client, opts FetcherOptions) *Fetcher {
	if client == nil {
		client = NewHTTPClient()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}

	return &Fetcher{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// WithCache enables serving and storing bodies through cache.
func (f *Fetcher) WithCache(cache BodyCache) *Fetcher {
	f.cache = cache
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*FetchResult, error) {
	if f.cache != nil {
		data, ok, err := f.cache.GetFeedData(ctx, feedURL)
		if err != nil {
			slog.Warn("Feed cache lookup failed", "feed", feedURL, "error", err)
		} else if ok {
			slog.Debug("Feed served from cache", "feed", feedURL, "bytes", len(data))
			return &FetchResult{URL: feedURL, Body: data, FromCache: true}, nil
		}
	}

	var lastErr error
	var lastStatus int

	for attempt := 1; attempt <= f.opts.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := f.backoff(attempt - 1)
			slog.Debug("Retrying feed fetch", "feed", feedURL, "attempt", attempt, "delay", delay.String(), "error", lastErr)
			if err := sleep(ctx, delay); err != nil {
				return nil, &FetchError{URL: feedURL, Attempts: attempt - 1, StatusCode: lastStatus, Err: err}
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: feedURL, Attempts: attempt - 1, StatusCode: lastStatus, Err: err}
		}

		body, status, err := f.do(ctx, feedURL)
		if err == nil {
			f.store(ctx, feedURL, body)
			return &FetchResult{URL: feedURL, Body: body, Attempts: attempt}, nil
		}

		lastErr, lastStatus = err, status
		if !f.retryable(ctx, status) {
			return nil, &FetchError{URL: feedURL, Attempts: attempt, StatusCode: status, Err: err}
		}
	}

	return nil, &FetchError{URL: feedURL, Attempts: f.opts.MaxAttempts, StatusCode: lastStatus, Err: lastErr}
}

func (f *Fetcher) do(ctx context.Context, feedURL string) ([]byte, int, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, resp.StatusCode, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, resp.StatusCode, nil
}

// retryable reports whether a failed attempt may be repeated. Transport
// failures (status 0) are retried unless the caller's context is done.
func (f *Fetcher) retryable(ctx context.Context, status int) bool {
	if ctx.Err() != nil {
		return false
	}
	if status == 0 {
		return true
	}
	return RetryStatuses[status]
}

func (f *Fetcher) backoff(retry int) time.Duration {
	return f.opts.Backoff * time.Duration(1<<uint(retry-1))
}

func (f *Fetcher) store(ctx context.Context, feedURL string, body []byte) {
	if f.cache == nil {
		return
	}
	if err := f.cache.SetFeedData(ctx, feedURL, body); err != nil {
		slog.Warn("Failed to cache feed body", "feed", feedURL, "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
