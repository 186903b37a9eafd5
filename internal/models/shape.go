package models

import (
	"fmt"
)

var _ Model = (*PersistedShape)(nil)

// PersistedShape caches a chord shape ingested from an external tab page.
type PersistedShape struct {
	timestamps
	shape     ChordShape
	sourceURL string
}

// NewPersistedShape wraps a validated shape for persistence.
func NewPersistedShape(sequence int, shape ChordShape, sourceURL string) *PersistedShape {
	return &PersistedShape{
		timestamps: newTimestamps(sequence),
		shape:      shape,
		sourceURL:  sourceURL,
	}
}

func (p *PersistedShape) Shape() ChordShape { return p.shape }
func (p *PersistedShape) SourceURL() string { return p.sourceURL }

// SetShape replaces the wrapped shape, e.g. when a later ingest supplies fingering.
func (p *PersistedShape) SetShape(shape ChordShape) { p.shape = shape }

// SetSourceURL records the page the shape was last ingested from.
func (p *PersistedShape) SetSourceURL(url string) { p.sourceURL = url }

// FretsCompact returns the frets in compact notation for storage.
func (p *PersistedShape) FretsCompact() string {
	return FormatSymbols(p.shape.Frets())
}

// FingeringCompact returns the fingering in compact notation, or "" when absent.
func (p *PersistedShape) FingeringCompact() string {
	if !p.shape.HasFingering() {
		return ""
	}
	return FormatSymbols(p.shape.Fingering())
}

// Validate checks the wrapped shape.
func (p *PersistedShape) Validate() error {
	if p.shape.IsZero() {
		return fmt.Errorf("shape is required")
	}
	return p.shape.Validate()
}

// RestoreShape rebuilds a [ChordShape] from its stored compact columns.
func RestoreShape(name, positionType string, baseFret int, frets, fingering string) (ChordShape, error) {
	f, err := ParseFrets(frets)
	if err != nil {
		return ChordShape{}, err
	}
	opts := ShapeOpts{PositionType: positionType, BaseFret: baseFret}
	if fingering != "" {
		fg, err := ParseFingering(fingering)
		if err != nil {
			return ChordShape{}, err
		}
		opts.Fingering = &fg
	}
	return NewChordShape(name, f, opts)
}
