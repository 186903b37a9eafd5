// Package variants builds and parses the canonical keys that address rendered chord diagrams.
//
// A key joins four components with the reserved [Delimiter]:
//
//	<escaped chord name>_<position type>_<fret position>_<theme>
//
// The chord name is path-escaped so that "/", "#", "%" and spaces are safe in object
// storage keys and URLs. No component may contain the delimiter, which makes keys
// injective over valid tuples and lets [ParseKey] recover the tuple exactly.
package variants

import (
	"fmt"
	"iter"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
)

// Delimiter separates key components and is rejected inside any of them.
const Delimiter = "_"

// Extension is appended to keys by [Locator].
const Extension = ".svg"

// BuildKey returns the canonical key for a variant.
func BuildKey(chordName, positionType string, fretPosition int, theme models.Theme) (string, error) {
	if err := validateName(chordName); err != nil {
		return "", err
	}
	if err := validatePositionType(positionType); err != nil {
		return "", err
	}
	if fretPosition < 0 {
		return "", fmt.Errorf("%w: fret position %d is negative", shared.ErrInvalidKeyComponent, fretPosition)
	}
	if !theme.Valid() {
		return "", fmt.Errorf("%w: theme %q", shared.ErrInvalidKeyComponent, theme)
	}

	return strings.Join([]string{
		url.PathEscape(chordName),
		positionType,
		strconv.Itoa(fretPosition),
		string(theme),
	}, Delimiter), nil
}

// Key returns the canonical key for k.
func Key(k models.VariantKey) (string, error) {
	return BuildKey(k.ChordName, k.PositionType, k.FretPosition, k.Theme)
}

// ParseKey recovers the variant tuple from a key built by [BuildKey].
//
// Only canonical encodings are accepted, so ParseKey(key) followed by [Key] returns key.
func ParseKey(key string) (models.VariantKey, error) {
	parts := strings.Split(key, Delimiter)
	if len(parts) != 4 {
		return models.VariantKey{}, fmt.Errorf("%w: key %q has %d components, want 4", shared.ErrInvalidKeyComponent, key, len(parts))
	}

	name, err := url.PathUnescape(parts[0])
	if err != nil {
		return models.VariantKey{}, fmt.Errorf("%w: chord name %q: %v", shared.ErrInvalidKeyComponent, parts[0], err)
	}
	if url.PathEscape(name) != parts[0] {
		return models.VariantKey{}, fmt.Errorf("%w: chord name %q is not canonically escaped", shared.ErrInvalidKeyComponent, parts[0])
	}

	fret, err := strconv.Atoi(parts[2])
	if err != nil || strconv.Itoa(fret) != parts[2] {
		return models.VariantKey{}, fmt.Errorf("%w: fret position %q", shared.ErrInvalidKeyComponent, parts[2])
	}

	k := models.VariantKey{
		ChordName:    name,
		PositionType: parts[1],
		FretPosition: fret,
		Theme:        models.Theme(parts[3]),
	}
	if _, err := Key(k); err != nil {
		return models.VariantKey{}, err
	}
	return k, nil
}

// Locator returns the fully-qualified retrieval location for key under base, which may
// be a URL or a directory.
func Locator(base, key string) (string, error) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return "", fmt.Errorf("%w: base location is empty", shared.ErrInvalidKeyComponent)
	}
	if _, err := ParseKey(key); err != nil {
		return "", err
	}
	return base + "/" + key + Extension, nil
}

// Enumerate yields every variant of chordName over positionTypes and frets.
//
// Position types form the outer loop in the order given, frets the middle loop and themes
// the inner loop, light before dark. The sequence is finite and may be ranged over any
// number of times; the input slices are copied.
func Enumerate(chordName string, positionTypes []string, frets []int) iter.Seq[models.VariantKey] {
	types := slices.Clone(positionTypes)
	positions := slices.Clone(frets)
	themes := models.Themes()

	return func(yield func(models.VariantKey) bool) {
		for _, pt := range types {
			for _, fret := range positions {
				for _, theme := range themes {
					k := models.VariantKey{ChordName: chordName, PositionType: pt, FretPosition: fret, Theme: theme}
					if !yield(k) {
						return
					}
				}
			}
		}
	}
}

// Count returns the number of variants [Enumerate] yields.
func Count(positionTypes []string, frets []int) int {
	return len(positionTypes) * len(frets) * len(models.Themes())
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: chord name is empty", shared.ErrInvalidKeyComponent)
	case strings.Contains(name, Delimiter):
		return fmt.Errorf("%w: chord name %q contains %q", shared.ErrInvalidKeyComponent, name, Delimiter)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: chord name %q has surrounding whitespace", shared.ErrInvalidKeyComponent, name)
	}
	return nil
}

func validatePositionType(pt string) error {
	switch {
	case pt == "":
		return fmt.Errorf("%w: position type is empty", shared.ErrInvalidKeyComponent)
	case strings.Contains(pt, Delimiter):
		return fmt.Errorf("%w: position type %q contains %q", shared.ErrInvalidKeyComponent, pt, Delimiter)
	case !models.ValidPositionType(pt):
		return fmt.Errorf("%w: position type %q must be a lowercase slug", shared.ErrInvalidKeyComponent, pt)
	}
	return nil
}
