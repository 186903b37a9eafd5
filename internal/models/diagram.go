package models

import (
	"fmt"
)

var _ Model = (*PersistedDiagram)(nil)

// PersistedDiagram records a rendered variant written to an object store.
type PersistedDiagram struct {
	timestamps
	key      string
	variant  VariantKey
	locator  string
	checksum string
	size     int
}

// NewPersistedDiagram creates a diagram record for a rendered variant.
func NewPersistedDiagram(sequence int, key string, variant VariantKey, locator, checksum string, size int) *PersistedDiagram {
	return &PersistedDiagram{
		timestamps: newTimestamps(sequence),
		key:        key,
		variant:    variant,
		locator:    locator,
		checksum:   checksum,
		size:       size,
	}
}

func (d *PersistedDiagram) Key() string         { return d.key }
func (d *PersistedDiagram) Variant() VariantKey { return d.variant }
func (d *PersistedDiagram) Locator() string     { return d.locator }
func (d *PersistedDiagram) Checksum() string    { return d.checksum }
func (d *PersistedDiagram) Size() int           { return d.size }

// SetRender replaces the stored render details after a re-render.
func (d *PersistedDiagram) SetRender(locator, checksum string, size int) {
	d.locator = locator
	d.checksum = checksum
	d.size = size
}

// Validate checks required fields.
func (d *PersistedDiagram) Validate() error {
	if d.key == "" {
		return fmt.Errorf("variant key is required")
	}
	if d.variant.ChordName == "" {
		return fmt.Errorf("chord name is required")
	}
	if !d.variant.Theme.Valid() {
		return fmt.Errorf("invalid theme: %s", d.variant.Theme)
	}
	if d.variant.FretPosition < 0 {
		return fmt.Errorf("fret position must be non-negative")
	}
	if d.locator == "" {
		return fmt.Errorf("locator is required")
	}
	if d.checksum == "" {
		return fmt.Errorf("checksum is required")
	}
	return nil
}
