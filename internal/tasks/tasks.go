package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/guitartube/internal/chords"
	"github.com/desertthunder/guitartube/internal/diagram"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/services"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/desertthunder/guitartube/internal/variants"
)

// ContentType is the media type of rendered diagrams.
const ContentType = "image/svg+xml"

// DiagramRecorder persists the record of a rendered variant.
//
// Implemented by repositories.DiagramRepository.
type DiagramRecorder interface {
	Upsert(d *models.PersistedDiagram) error
}

// ShapeCacher persists shapes ingested from tab pages, reporting whether a row was written.
//
// Implemented by repositories.ShapeCacheAdapter.
type ShapeCacher interface {
	CacheShape(shape models.ChordShape, sourceURL string) (bool, error)
}

// Status is the outcome of rendering one variant.
type Status string

const (
	StatusRendered Status = "rendered"
	StatusSkipped  Status = "skipped" // no voicing for the variant
	StatusFailed   Status = "failed"
)

// RenderResult is the outcome of rendering a single variant.
type RenderResult struct {
	Key      string
	Variant  models.VariantKey
	Shape    models.ChordShape
	Locator  string
	Checksum string
	Size     int
	Status   Status
	Error    error
}

// RenderEngine resolves, renders and publishes chord diagrams.
type RenderEngine struct {
	resolver *chords.Resolver
	store    services.Store
	recorder DiagramRecorder
}

// NewRenderEngine creates a RenderEngine. The store and recorder may be nil for engines
// that only draw; a nil resolver uses the built-in chord table.
func NewRenderEngine(resolver *chords.Resolver, store services.Store, recorder DiagramRecorder) *RenderEngine {
	if resolver == nil {
		resolver = chords.NewResolver()
	}
	return &RenderEngine{resolver: resolver, store: store, recorder: recorder}
}

// Resolver returns the engine's chord resolver.
func (e *RenderEngine) Resolver() *chords.Resolver { return e.resolver }

// sendProgress sends a progress update through the channel without blocking.
func (e *RenderEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Draw resolves the voicing selected by v and renders it, without touching the store.
//
// Errors are [shared.ErrInvalidKeyComponent] for a bad variant and [shared.ErrNotFound]
// when no voicing matches.
func (e *RenderEngine) Draw(v models.VariantKey) (models.ChordShape, string, error) {
	if _, err := variants.Key(v); err != nil {
		return models.ChordShape{}, "", err
	}

	shape, err := e.resolver.ResolveVariant(v.ChordName, v.PositionType, v.FretPosition)
	if err != nil {
		return models.ChordShape{}, "", err
	}

	svg, err := diagram.Render(shape, v.Theme)
	if err != nil {
		return models.ChordShape{}, "", fmt.Errorf("failed to render %s: %w", shape, err)
	}
	return shape, svg, nil
}

// DrawKey parses key and draws the variant it names.
func (e *RenderEngine) DrawKey(key string) (models.VariantKey, string, error) {
	v, err := variants.ParseKey(key)
	if err != nil {
		return models.VariantKey{}, "", err
	}
	_, svg, err := e.Draw(v)
	return v, svg, err
}

// RenderVariant draws v, writes it to the store under its key and records it.
func (e *RenderEngine) RenderVariant(ctx context.Context, v models.VariantKey) (*RenderResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}

	res := e.render(ctx, v, nil)
	if res.Error != nil {
		return res, res.Error
	}
	return res, nil
}

// RenderKey parses key and renders the variant it names.
func (e *RenderEngine) RenderKey(ctx context.Context, key string) (*RenderResult, error) {
	v, err := variants.ParseKey(key)
	if err != nil {
		return nil, err
	}
	return e.RenderVariant(ctx, v)
}

// render runs the full pipeline for v. wait, when non-nil, gates the store write.
func (e *RenderEngine) render(ctx context.Context, v models.VariantKey, wait func(context.Context) error) *RenderResult {
	res := &RenderResult{Variant: v, Status: StatusFailed}

	key, err := variants.Key(v)
	if err != nil {
		res.Error = err
		return res
	}
	res.Key = key

	shape, svg, err := e.Draw(v)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			res.Status = StatusSkipped
		}
		res.Error = err
		return res
	}
	res.Shape = shape

	if wait != nil {
		if err := wait(ctx); err != nil {
			res.Error = fmt.Errorf("rate limiter: %w", err)
			return res
		}
	}

	data := []byte(svg)
	locator, err := e.store.Put(ctx, key+variants.Extension, data, ContentType)
	if err != nil {
		res.Error = fmt.Errorf("failed to store %s: %w", key, err)
		return res
	}
	res.Locator = locator
	res.Checksum = shared.Checksum(data)
	res.Size = len(data)

	if e.recorder != nil {
		record := models.NewPersistedDiagram(0, key, v, locator, res.Checksum, res.Size)
		if err := e.recorder.Upsert(record); err != nil {
			res.Error = fmt.Errorf("failed to record %s: %w", key, err)
			return res
		}
	}

	res.Status = StatusRendered
	return res
}
