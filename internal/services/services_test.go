package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/guitartube/internal/shared"
)

func TestHTTPTabSource(t *testing.T) {
	cfg := shared.SourcesConfig{UserAgent: "gtx-test/1.0", TimeoutSeconds: 5}

	t.Run("Fetch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("User-Agent") != "gtx-test/1.0" {
				t.Errorf("expected configured user agent, got %s", r.Header.Get("User-Agent"))
			}
			w.Write([]byte("<html>Am x02210</html>"))
		}))
		defer server.Close()

		page, err := NewHTTPTabSource(cfg, nil).Fetch(context.Background(), server.URL+"/tab/123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(page) != "<html>Am x02210</html>" {
			t.Errorf("unexpected page %q", page)
		}
	})

	t.Run("Non-2xx", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer server.Close()

		_, err := NewHTTPTabSource(cfg, server.Client()).Fetch(context.Background(), server.URL)
		if !errors.Is(err, shared.ErrSourceRequest) {
			t.Errorf("expected ErrSourceRequest, got %v", err)
		}
	})

	t.Run("Bad URLs", func(t *testing.T) {
		src := NewHTTPTabSource(cfg, nil)
		for _, u := range []string{"", "ftp://example.com/tab", "not a url", "https://"} {
			if _, err := src.Fetch(context.Background(), u); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("Fetch(%q): expected ErrInvalidInput, got %v", u, err)
			}
		}
	})
}

func TestFileTabSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte("<html/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, ref := range []string{path, "file://" + path} {
		page, err := FileTabSource{}.Fetch(context.Background(), ref)
		if err != nil || string(page) != "<html/>" {
			t.Errorf("Fetch(%q) = %q, %v", ref, page, err)
		}
	}

	if _, err := (FileTabSource{}).Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.html")); !errors.Is(err, shared.ErrSourceRequest) {
		t.Errorf("expected ErrSourceRequest, got %v", err)
	}
	if !IsRemote("HTTPS://tabs.example.com") || IsRemote(path) {
		t.Error("IsRemote misclassified a reference")
	}
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "diagrams")
	store := NewFileStore(dir)
	ctx := context.Background()

	t.Run("Put and Get", func(t *testing.T) {
		locator, err := store.Put(ctx, "C%23m_barre_4_dark.svg", []byte("<svg/>"), "image/svg+xml")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if locator != filepath.Join(dir, "C%23m_barre_4_dark.svg") {
			t.Errorf("unexpected locator %s", locator)
		}

		data, err := store.Get(ctx, "C%23m_barre_4_dark.svg")
		if err != nil || string(data) != "<svg/>" {
			t.Errorf("Get = %q, %v", data, err)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		for _, body := range []string{"first", "second"} {
			if _, err := store.Put(ctx, "Am_open_0_light.svg", []byte(body), "image/svg+xml"); err != nil {
				t.Fatal(err)
			}
		}
		data, _ := store.Get(ctx, "Am_open_0_light.svg")
		if string(data) != "second" {
			t.Errorf("expected overwritten object, got %q", data)
		}

		entries, _ := os.ReadDir(dir)
		for _, e := range entries {
			if e.Name()[0] == '.' {
				t.Errorf("temporary file left behind: %s", e.Name())
			}
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := store.Get(ctx, "nope.svg"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("Bad Keys", func(t *testing.T) {
		for _, key := range []string{"", "..", "a/b.svg", `a\b.svg`} {
			if _, err := store.Put(ctx, key, nil, ""); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("Put(%q): expected ErrInvalidInput, got %v", key, err)
			}
		}
	})
}

func TestHTTPStore(t *testing.T) {
	objects := map[string][]byte{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			if r.Header.Get("Authorization") != "Bearer service-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if r.Header.Get("X-Upsert") != "true" {
				t.Errorf("expected x-upsert header")
			}
			body, _ := io.ReadAll(r.Body)
			objects[r.URL.EscapedPath()] = body
			w.Write([]byte(`{"Key":"ok"}`))
		case http.MethodGet:
			body, ok := objects["/object/diagrams/"+r.URL.EscapedPath()[len("/object/public/diagrams/"):]]
			if !ok {
				http.NotFound(w, r)
				return
			}
			w.Write(body)
		}
	}))
	defer server.Close()

	cfg := shared.StorageConfig{Driver: shared.StorageHTTP, BaseURL: server.URL + "/", Bucket: "diagrams", ServiceKey: "service-key"}
	ctx := context.Background()

	t.Run("Put and Get", func(t *testing.T) {
		store := NewHTTPStore(cfg, server.Client())
		locator, err := store.Put(ctx, "C%23m_barre_4_dark.svg", []byte("<svg/>"), "image/svg+xml")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if want := server.URL + "/object/public/diagrams/C%2523m_barre_4_dark.svg"; locator != want {
			t.Errorf("expected locator %s, got %s", want, locator)
		}

		data, err := store.Get(ctx, "C%23m_barre_4_dark.svg")
		if err != nil || string(data) != "<svg/>" {
			t.Errorf("Get = %q, %v", data, err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		if _, err := NewHTTPStore(cfg, nil).Get(ctx, "nope.svg"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		noKey := cfg
		noKey.ServiceKey = ""
		if _, err := NewHTTPStore(noKey, nil).Put(ctx, "a.svg", nil, "image/svg+xml"); !errors.Is(err, shared.ErrStoreRequest) {
			t.Errorf("expected ErrStoreRequest, got %v", err)
		}
	})
}

func TestNewStore(t *testing.T) {
	tc := []struct {
		name    string
		cfg     shared.StorageConfig
		want    string
		wantErr bool
	}{
		{name: "file", cfg: shared.StorageConfig{Driver: shared.StorageFile, Dir: t.TempDir()}, want: shared.StorageFile},
		{name: "default", cfg: shared.StorageConfig{}, want: shared.StorageFile},
		{name: "http", cfg: shared.StorageConfig{Driver: shared.StorageHTTP, BaseURL: "http://localhost", Bucket: "b"}, want: shared.StorageHTTP},
		{name: "http without bucket", cfg: shared.StorageConfig{Driver: shared.StorageHTTP, BaseURL: "http://localhost"}, wantErr: true},
		{name: "unknown", cfg: shared.StorageConfig{Driver: "s3"}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(tt.cfg, nil)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store.Name() != tt.want {
				t.Errorf("expected %s store, got %s", tt.want, store.Name())
			}
		})
	}
}
