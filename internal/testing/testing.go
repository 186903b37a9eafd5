// Package testing contains shared test doubles and helpers
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/guitartube/internal/shared"
)

// MockTabSource is a test double for [services.TabSource] serving canned pages by URL
type MockTabSource struct {
	mu    sync.Mutex
	Pages map[string][]byte
	Err   error
	Calls []string
}

// NewMockTabSource creates a source serving pages
func NewMockTabSource(pages map[string]string) *MockTabSource {
	m := &MockTabSource{Pages: make(map[string][]byte, len(pages))}
	for url, body := range pages {
		m.Pages[url] = []byte(body)
	}
	return m
}

func (m *MockTabSource) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, pageURL)
	if m.Err != nil {
		return nil, m.Err
	}
	page, ok := m.Pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("%w: no page for %s", shared.ErrSourceRequest, pageURL)
	}
	return page, nil
}

// MockStore is an in-memory test double for [services.Store]
type MockStore struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
	PutErr  error
	Puts    int
}

func NewMockStore() *MockStore {
	return &MockStore{Objects: map[string][]byte{}, Types: map[string]string{}}
}

func (m *MockStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return "", m.PutErr
	}
	m.Puts++
	m.Objects[key] = append([]byte(nil), data...)
	m.Types[key] = contentType
	return m.URL(key), nil
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecordNotFound, key)
	}
	return data, nil
}

func (m *MockStore) URL(key string) string { return "mem://" + key }
func (m *MockStore) Name() string          { return "mock" }

// Len returns the number of stored objects
func (m *MockStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Objects)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
