package repositories

import (
	"errors"
	"fmt"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
)

// ShapeCacheAdapter implements tasks.ShapeCacher using ShapeRepository.
//
// Shapes are deduplicated on name and frets. A cached shape without fingering is upgraded
// when a later page supplies one; otherwise re-ingesting a shape is a no-op.
type ShapeCacheAdapter struct {
	repo *ShapeRepository
}

// NewShapeCacheAdapter creates a new ShapeCacheAdapter with the given repository
func NewShapeCacheAdapter(repo *ShapeRepository) *ShapeCacheAdapter {
	return &ShapeCacheAdapter{repo: repo}
}

// CacheShape stores shape found at sourceURL. It reports whether a row was written.
func (a *ShapeCacheAdapter) CacheShape(shape models.ChordShape, sourceURL string) (bool, error) {
	existing, err := a.repo.GetByFrets(shape.Name(), models.FormatSymbols(shape.Frets()))
	switch {
	case err == nil:
		if existing.Shape().HasFingering() || !shape.HasFingering() {
			return false, nil
		}
		existing.SetShape(shape)
		existing.SetSourceURL(sourceURL)
		if err := a.repo.Update(existing); err != nil {
			return false, fmt.Errorf("failed to update cached shape: %w", err)
		}
		return true, nil
	case !errors.Is(err, shared.ErrRecordNotFound):
		return false, fmt.Errorf("failed to look up cached shape: %w", err)
	}

	if err := a.repo.Create(models.NewPersistedShape(0, shape, sourceURL)); err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("failed to cache shape: %w", err)
	}
	return true, nil
}
