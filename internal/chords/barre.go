package chords

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
)

// muted marks a template string that is not played.
const muted = -1

// template is a movable shape relative to its barre fret. Offsets of [muted] mute the string.
type template struct {
	name    string
	root    int // string index carrying the root
	offsets [models.StringCount]int
	fingers [models.StringCount]int
}

// Standard tuning pitch classes of the strings that carry a barre root.
const (
	lowEPitch = 4
	aPitch    = 9
)

var eShapes = map[string]template{
	"":     {name: "E-shape", root: 0, offsets: [6]int{0, 2, 2, 1, 0, 0}, fingers: [6]int{1, 3, 4, 2, 1, 1}},
	"m":    {name: "E-shape", root: 0, offsets: [6]int{0, 2, 2, 0, 0, 0}, fingers: [6]int{1, 3, 4, 1, 1, 1}},
	"7":    {name: "E-shape", root: 0, offsets: [6]int{0, 2, 0, 1, 0, 0}, fingers: [6]int{1, 3, 1, 2, 1, 1}},
	"m7":   {name: "E-shape", root: 0, offsets: [6]int{0, 2, 0, 0, 0, 0}, fingers: [6]int{1, 3, 1, 1, 1, 1}},
	"maj7": {name: "E-shape", root: 0, offsets: [6]int{0, 2, 1, 1, 0, 0}, fingers: [6]int{1, 4, 2, 3, 1, 1}},
}

var aShapes = map[string]template{
	"":     {name: "A-shape", root: 1, offsets: [6]int{muted, 0, 2, 2, 2, 0}, fingers: [6]int{0, 1, 3, 3, 3, 1}},
	"m":    {name: "A-shape", root: 1, offsets: [6]int{muted, 0, 2, 2, 1, 0}, fingers: [6]int{0, 1, 3, 4, 2, 1}},
	"7":    {name: "A-shape", root: 1, offsets: [6]int{muted, 0, 2, 0, 2, 0}, fingers: [6]int{0, 1, 3, 1, 4, 1}},
	"m7":   {name: "A-shape", root: 1, offsets: [6]int{muted, 0, 2, 0, 1, 0}, fingers: [6]int{0, 1, 3, 1, 2, 1}},
	"maj7": {name: "A-shape", root: 1, offsets: [6]int{muted, 0, 2, 1, 2, 0}, fingers: [6]int{0, 1, 3, 2, 4, 1}},
}

var qualityAliases = map[string]string{
	"":     "",
	"M":    "",
	"maj":  "",
	"m":    "m",
	"min":  "m",
	"-":    "m",
	"7":    "7",
	"dom7": "7",
	"m7":   "m7",
	"min7": "m7",
	"-7":   "m7",
	"maj7": "maj7",
	"M7":   "maj7",
}

var naturals = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// Symbol is a parsed chord symbol: a root pitch class and a normalized quality.
type Symbol struct {
	Root    int    // Pitch class, C = 0
	Quality string // "", "m", "7", "m7" or "maj7"
}

// ParseSymbol splits a chord name such as "F#m7" into its root and quality. Only the
// qualities movable barre shapes exist for are recognized.
func ParseSymbol(name string) (Symbol, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Symbol{}, fmt.Errorf("%w: empty chord symbol", shared.ErrNotFound)
	}

	root, ok := naturals[name[0]]
	if !ok {
		return Symbol{}, fmt.Errorf("%w: unknown root in %q", shared.ErrNotFound, name)
	}
	rest := name[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		root, rest = (root+1)%12, rest[1:]
	case strings.HasPrefix(rest, "b"):
		root, rest = (root+11)%12, rest[1:]
	}

	quality, ok := qualityAliases[rest]
	if !ok {
		return Symbol{}, fmt.Errorf("%w: no barre shape for quality %q", shared.ErrNotFound, rest)
	}
	return Symbol{Root: root, Quality: quality}, nil
}

// DeriveBarre builds a movable barre voicing of name with its barre at fret. The E-shape is
// used when the root sits at fret on the low E string and the A-shape when it sits there on
// the A string.
func DeriveBarre(name string, fret int) (models.ChordShape, error) {
	if fret < 1 {
		return models.ChordShape{}, fmt.Errorf("%w: barre fret must be at least 1, got %d", shared.ErrNotFound, fret)
	}
	sym, err := ParseSymbol(name)
	if err != nil {
		return models.ChordShape{}, err
	}

	var tmpl template
	switch {
	case fret%12 == (sym.Root-lowEPitch+12)%12:
		tmpl = eShapes[sym.Quality]
	case fret%12 == (sym.Root-aPitch+12)%12:
		tmpl = aShapes[sym.Quality]
	default:
		return models.ChordShape{}, fmt.Errorf("%w: %s has no barre root at fret %d", shared.ErrNotFound, name, fret)
	}
	if top := fret + tmpl.reach(); top > models.MaxFret {
		return models.ChordShape{}, fmt.Errorf("%w: %s %s at fret %d reaches fret %d", shared.ErrNotFound, name, tmpl.name, fret, top)
	}
	return tmpl.at(strings.TrimSpace(name), fret)
}

// reach is the largest offset above the barre fret.
func (t template) reach() int {
	return slices.Max(t.offsets[:])
}

// at transposes the template to fret.
func (t template) at(name string, fret int) (models.ChordShape, error) {
	var frets, fingers [models.StringCount]models.Symbol
	for i, off := range t.offsets {
		if off == muted {
			frets[i] = models.Mute
		} else {
			frets[i] = models.FretSymbol(fret + off)
		}
		fingers[i] = models.FingerSymbol(t.fingers[i])
	}

	shape, err := models.NewChordShape(name, frets, models.ShapeOpts{
		PositionType: models.PositionBarre,
		BaseFret:     fret,
		Fingering:    &fingers,
	})
	if err != nil {
		return models.ChordShape{}, fmt.Errorf("%s at fret %d: %w", t.name, fret, err)
	}
	return shape, nil
}
