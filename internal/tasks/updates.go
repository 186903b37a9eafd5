package tasks

import (
	"fmt"

	"github.com/desertthunder/guitartube/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPage Phase = iota
	ParsePage
	CacheShapes
	EnumerateVariants
	RenderVariants
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchPage:
		return "fetch_page"
	case ParsePage:
		return "parse_page"
	case CacheShapes:
		return "cache_shapes"
	case EnumerateVariants:
		return "enumerate_variants"
	case RenderVariants:
		return "render_variants"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchPageUpdate(url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching %s...", url),
	}
}

func parsePageUpdate(size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ParsePage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Parsing page (%d bytes)...", size),
	}
}

func cacheShapeUpdate(step, total int, shape models.ChordShape, wrote bool) ProgressUpdate {
	mark := "="
	if wrote {
		mark = "+"
	}
	return ProgressUpdate{
		Phase:   CacheShapes,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, shape),
		Data:    shape,
	}
}

func enumerateUpdate(chords, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnumerateVariants,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Rendering %d variants of %d chords...", total, chords),
	}
}

func renderCompletedUpdate(step, total int, res *RenderResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderVariants,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d bytes)", step, total, res.Key, res.Size),
		Data:    res,
	}
}

func renderSkippedUpdate(step, total int, res *RenderResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderVariants,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s: no voicing", step, total, res.Variant),
		Data:    res,
	}
}

func renderFailedUpdate(step, total int, res *RenderResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RenderVariants,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Variant, res.Error),
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest to %s...", path),
	}
}
