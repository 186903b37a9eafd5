package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/guitartube/internal/shared"
	tu "github.com/desertthunder/guitartube/internal/testing"
)

func TestAPIClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom Client", func(t *testing.T) {
			custom := &http.Client{}
			c := NewAPIClient("http://example.com", custom)

			if c.baseURL != "http://example.com" {
				t.Errorf("expected baseURL 'http://example.com', got %s", c.baseURL)
			}
			if c.httpClient != custom {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			c := NewAPIClient("http://example.com", nil)

			if c.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Rate Limit Option", func(t *testing.T) {
			if c := NewAPIClient("", nil, WithRateLimit(0)); c.limiter != nil {
				t.Error("a zero rate should not install a limiter")
			}
			if c := NewAPIClient("", nil, WithRateLimit(2)); c.limiter == nil {
				t.Error("expected a limiter")
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}
				if r.Header.Get("User-Agent") != "gtx-test" {
					t.Errorf("expected user agent 'gtx-test', got %s", r.Header.Get("User-Agent"))
				}
				if r.Header.Get("Accept") != "text/html" {
					t.Errorf("expected Accept header, got %s", r.Header.Get("Accept"))
				}
				w.Header().Set("X-Custom-Header", "test-value")
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			c := NewAPIClient(server.URL, nil, WithUserAgent("gtx-test"))
			resp, err := c.Get(context.Background(), "/test", http.Header{"Accept": {"text/html"}})

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !resp.OK() {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if string(resp.Body) != "plain text response" {
				t.Errorf("expected body 'plain text response', got %s", string(resp.Body))
			}
			if resp.Headers.Get("X-Custom-Header") != "test-value" {
				t.Errorf("expected custom header 'test-value', got %s", resp.Headers.Get("X-Custom-Header"))
			}
		})

		t.Run("Non-2xx Is Not An Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTeapot)
			}))
			defer server.Close()

			resp, err := NewAPIClient(server.URL, nil).Get(context.Background(), "/", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.OK() || resp.StatusCode != http.StatusTeapot {
				t.Errorf("expected status 418, got %d", resp.StatusCode)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			_, err := NewAPIClient("http://example.com", nil).Get(context.Background(), "/test\x00invalid", nil)

			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			_, err := NewAPIClient("http://example.com", client).Get(context.Background(), "/test", nil)
			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewAPIClient("http://example.com", client).Get(context.Background(), "/test", nil)
			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})

		t.Run("Oversized Body", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewReader(make([]byte, maxBodyBytes+1))),
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewAPIClient("http://example.com", client).Get(context.Background(), "/song", nil)
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput for an oversized body, got %v", err)
			}
		})

		t.Run("Body At Limit", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       io.NopCloser(bytes.NewReader(make([]byte, maxBodyBytes))),
					Header:     http.Header{},
				}, nil),
			}

			resp, err := NewAPIClient("http://example.com", client).Get(context.Background(), "/song", nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(resp.Body) != maxBodyBytes {
				t.Errorf("expected %d bytes, got %d", maxBodyBytes, len(resp.Body))
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			}))
			defer server.Close()

			client := &http.Client{Timeout: 20 * time.Millisecond}
			_, err := NewAPIClient(server.URL, client).Get(context.Background(), "/", nil)
			if !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected ErrTimeout, got %v", err)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST method, got %s", r.Method)
			}
			if r.Header.Get("Content-Type") != "image/svg+xml" {
				t.Errorf("expected Content-Type 'image/svg+xml', got %s", r.Header.Get("Content-Type"))
			}
			body, _ := io.ReadAll(r.Body)
			if string(body) != "<svg/>" {
				t.Errorf("unexpected request body %q", body)
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"Key":"diagrams/a.svg"}`))
		}))
		defer server.Close()

		resp, err := NewAPIClient(server.URL, nil).Post(context.Background(), "/upload", "image/svg+xml", []byte("<svg/>"), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("expected status 201, got %d", resp.StatusCode)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := NewAPIClient(server.URL, nil, WithRateLimit(1)).Get(ctx, "/", nil); err == nil {
			t.Error("expected error for canceled context")
		}
	})
}

func TestSnippet(t *testing.T) {
	if got := snippet([]byte("short")); got != "short" {
		t.Errorf("expected unchanged body, got %q", got)
	}
	long := strings.Repeat("a", 300)
	if got := snippet([]byte(long)); len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("expected truncated body, got %d bytes", len(got))
	}
}
