package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/guitartube/internal/shared"
)

const defaultSourceTimeout = 15 * time.Second

// HTTPTabSource implements [TabSource] over HTTP.
type HTTPTabSource struct {
	client *APIClient
}

// NewHTTPTabSource builds a rate limited tab source from cfg. A nil client gets one
// with the configured timeout.
func NewHTTPTabSource(cfg shared.SourcesConfig, client *http.Client) *HTTPTabSource {
	if client == nil {
		timeout := defaultSourceTimeout
		if cfg.TimeoutSeconds > 0 {
			timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPTabSource{
		client: NewAPIClient("", client, WithUserAgent(cfg.UserAgent), WithRateLimit(cfg.RateLimit)),
	}
}

// Fetch implements [TabSource].
func (s *HTTPTabSource) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: not an http(s) url: %q", shared.ErrInvalidInput, pageURL)
	}

	resp, err := s.client.Get(ctx, u.String(), http.Header{"Accept": {"text/html,application/xhtml+xml"}})
	if err != nil {
		if errors.Is(err, shared.ErrTimeout) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrSourceRequest, err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("%w: GET %s returned %d", shared.ErrSourceRequest, u.Redacted(), resp.StatusCode)
	}
	return resp.Body, nil
}

// FileTabSource implements [TabSource] for pages saved to disk. It accepts plain paths
// and file:// URLs.
type FileTabSource struct{}

// Fetch implements [TabSource].
func (FileTabSource) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := strings.TrimPrefix(strings.TrimSpace(pageURL), "file://")
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", shared.ErrInvalidInput)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSourceRequest, err)
	}
	return data, nil
}

// IsRemote reports whether ref names an http(s) page rather than a local file.
func IsRemote(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}
