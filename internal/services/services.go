package services

import (
	"context"
)

// TabSource fetches the raw HTML of an external tab page.
type TabSource interface {
	// Fetch returns the page body at pageURL. Failures wrap [shared.ErrSourceRequest].
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// Store persists rendered diagram bytes under a variant key.
type Store interface {
	// Put writes data under key, replacing any previous object, and returns its locator.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)

	// Get reads the object stored under key.
	// Returns [shared.ErrRecordNotFound] when nothing is stored there.
	Get(ctx context.Context, key string) ([]byte, error)

	// URL returns the locator of key without touching the store.
	URL(key string) string

	// Name identifies the store driver in logs.
	Name() string
}
