package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/guitartube/internal/shared"
	"golang.org/x/oauth2"
)

// NewStore returns the [Store] selected by cfg.Driver.
func NewStore(cfg shared.StorageConfig, client *http.Client) (Store, error) {
	switch cfg.Driver {
	case shared.StorageFile, "":
		return NewFileStore(cfg.Dir), nil
	case shared.StorageHTTP:
		if cfg.BaseURL == "" || cfg.Bucket == "" {
			return nil, fmt.Errorf("%w: http storage needs base_url and bucket", shared.ErrInvalidConfig)
		}
		return NewHTTPStore(cfg, client), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

func checkKey(key string) error {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return fmt.Errorf("%w: bad object key %q", shared.ErrInvalidInput, key)
	}
	return nil
}

// FileStore implements [Store] on a local directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on first write.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "."
	}
	return &FileStore{dir: dir}
}

// Name implements [Store].
func (s *FileStore) Name() string { return shared.StorageFile }

// URL implements [Store].
func (s *FileStore) URL(key string) string {
	return filepath.Join(s.dir, key)
}

// Put implements [Store]. The object is written to a temporary file and renamed into
// place so readers never see a partial diagram.
func (s *FileStore) Put(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: failed to create %s: %w", shared.ErrStoreRequest, s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, "."+key+".*")
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrStoreRequest, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("%w: failed to write %s: %w", shared.ErrStoreRequest, key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrStoreRequest, err)
	}

	path := s.URL(key)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("%w: failed to move %s into place: %w", shared.ErrStoreRequest, key, err)
	}
	return path, nil
}

// Get implements [Store].
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.URL(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecordNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStoreRequest, err)
	}
	return data, nil
}

// HTTPStore implements [Store] against a Supabase-style storage API.
type HTTPStore struct {
	client  *APIClient
	baseURL string
	bucket  string
}

// NewHTTPStore creates an HTTP store. When cfg.ServiceKey is set, requests carry it as a
// bearer token. A nil client uses [http.DefaultClient] as the transport.
func NewHTTPStore(cfg shared.StorageConfig, client *http.Client) *HTTPStore {
	if cfg.ServiceKey != "" {
		ctx := context.Background()
		if client != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, client)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.ServiceKey, TokenType: "Bearer"})
		client = oauth2.NewClient(ctx, ts)
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPStore{
		client:  NewAPIClient(base, client),
		baseURL: base,
		bucket:  cfg.Bucket,
	}
}

// Name implements [Store].
func (s *HTTPStore) Name() string { return shared.StorageHTTP }

func (s *HTTPStore) objectPath(key string) string {
	return "/object/" + url.PathEscape(s.bucket) + "/" + url.PathEscape(key)
}

func (s *HTTPStore) publicPath(key string) string {
	return "/object/public/" + url.PathEscape(s.bucket) + "/" + url.PathEscape(key)
}

// URL implements [Store].
func (s *HTTPStore) URL(key string) string {
	return s.baseURL + s.publicPath(key)
}

// Put implements [Store]. Existing objects are overwritten.
func (s *HTTPStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if err := checkKey(key); err != nil {
		return "", err
	}

	header := http.Header{
		"X-Upsert":      {"true"},
		"Cache-Control": {"max-age=31536000"},
	}
	resp, err := s.client.Post(ctx, s.objectPath(key), contentType, data, header)
	if err != nil {
		if errors.Is(err, shared.ErrTimeout) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", shared.ErrStoreRequest, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: upload %s returned %d: %s", shared.ErrStoreRequest, key, resp.StatusCode, snippet(resp.Body))
	}
	return s.URL(key), nil
}

// Get implements [Store].
func (s *HTTPStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}

	resp, err := s.client.Get(ctx, s.publicPath(key), nil)
	if err != nil {
		if errors.Is(err, shared.ErrTimeout) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrStoreRequest, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", shared.ErrRecordNotFound, key)
	case !resp.OK():
		return nil, fmt.Errorf("%w: download %s returned %d: %s", shared.ErrStoreRequest, key, resp.StatusCode, snippet(resp.Body))
	}
	return resp.Body, nil
}
