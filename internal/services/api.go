package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/desertthunder/guitartube/internal/shared"
	"golang.org/x/time/rate"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

// APIClient makes raw HTTP requests against a base URL. Paths are appended to the base;
// with an empty base the path is the full URL.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// ClientOption configures an [APIClient].
type ClientOption func(*APIClient)

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(a *APIClient) { a.userAgent = ua }
}

// WithRateLimit limits requests to perSecond with a burst of one. Non-positive values disable limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(a *APIClient) {
		if perSecond > 0 {
			a.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewAPIClient creates a new API client. A nil client uses [http.DefaultClient].
func NewAPIClient(baseURL string, client *http.Client, opts ...ClientOption) *APIClient {
	if client == nil {
		client = http.DefaultClient
	}

	a := &APIClient{baseURL: baseURL, httpClient: client}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the response has a 2xx status.
func (r *APIResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Get performs a GET request to the specified path and returns the raw response.
func (a *APIClient) Get(ctx context.Context, path string, header http.Header) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return a.do(req, header)
}

// Post performs a POST request with the given body and returns the raw response.
func (a *APIClient) Post(ctx context.Context, path, contentType string, data []byte, header http.Header) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	return a.do(req, header)
}

func (a *APIClient) do(req *http.Request, header http.Header) (*APIResponse, error) {
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %s %s: %w", shared.ErrTimeout, req.Method, req.URL.Redacted(), err)
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: %s %s: response body exceeds %d bytes", shared.ErrInvalidInput, req.Method, req.URL.Redacted(), maxBodyBytes)
	}

	return &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// snippet trims a response body for error messages.
func snippet(body []byte) string {
	const n = 200
	if len(body) > n {
		return string(body[:n]) + "..."
	}
	return string(body)
}
