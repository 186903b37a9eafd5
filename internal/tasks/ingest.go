package tasks

import (
	"context"
	"fmt"
	"sort"

	"github.com/desertthunder/guitartube/internal/chords"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/services"
	"github.com/desertthunder/guitartube/internal/shared"
)

// IngestResult summarizes the shapes found on one tab page.
type IngestResult struct {
	Source string              // Page URL or path
	Chords []string            // Chord names found, sorted
	Shapes []models.ChordShape // Every voicing found, grouped by chord
	Cached int                 // Rows written by the cacher
	Errors []error             // Per-shape cache failures
}

// Ingest fetches a tab page, extracts its chord voicings and hands each to cacher.
//
// Voicings keep whatever fingering the page supplied; the resolver completes missing
// fingering when a cached shape is used. A nil cacher only parses. Cache failures are
// collected instead of aborting the ingest.
func (e *RenderEngine) Ingest(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	src services.TabSource,
	cacher ShapeCacher,
	pageURL string,
) (*IngestResult, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: tab source not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(prog, fetchPageUpdate(pageURL))
	page, err := src.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	e.sendProgress(prog, parsePageUpdate(len(page)))
	found, err := chords.ParseTabPage(page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageURL, err)
	}

	result := &IngestResult{Source: pageURL}
	for name := range found {
		result.Chords = append(result.Chords, name)
	}
	sort.Strings(result.Chords)
	for _, name := range result.Chords {
		result.Shapes = append(result.Shapes, found[name]...)
	}

	if cacher == nil {
		return result, nil
	}

	for i, shape := range result.Shapes {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		wrote, err := cacher.CacheShape(shape, pageURL)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", shape, err))
			continue
		}
		if wrote {
			result.Cached++
		}
		e.sendProgress(prog, cacheShapeUpdate(i+1, len(result.Shapes), shape, wrote))
	}
	return result, nil
}
