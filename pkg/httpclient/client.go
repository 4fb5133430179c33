package httpclient

import (
	"context"
	"net/http"
	"time"
)

// HttpClient is a thin wrapper around http.Client that stamps every request
// with the headers the hh.ru API expects.
type HttpClient struct {
	client    *http.Client
	userAgent string
	limiter   *RateLimiter
}

func NewHttpClient(timeout time.Duration, userAgent string) *HttpClient {
	return &HttpClient{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// WithRateLimit paces requests to requestsPerMinute. Zero or less leaves the
// client unlimited.
func (h *HttpClient) WithRateLimit(requestsPerMinute int) *HttpClient {
	if h.limiter != nil {
		h.limiter.Stop()
		h.limiter = nil
	}
	if requestsPerMinute > 0 {
		h.limiter = NewRateLimiter(requestsPerMinute)
	}
	return h
}

// Close releases the rate limiter, if any.
func (h *HttpClient) Close() {
	if h.limiter != nil {
		h.limiter.Stop()
	}
}

// Get issues a GET request bound to ctx. The caller owns the response body.
func (h *HttpClient) Get(ctx context.Context, url string) (*http.Response, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if h.userAgent != "" {
		// hh.ru reads HH-User-Agent first and falls back to User-Agent
		req.Header.Set("User-Agent", h.userAgent)
		req.Header.Set("HH-User-Agent", h.userAgent)
	}
	return h.client.Do(req)
}
