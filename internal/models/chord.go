package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/guitartube/internal/shared"
)

// StringCount is the number of strings on a standard guitar.
const StringCount = 6

const (
	MaxFret   = 24
	MaxFinger = 4
)

// Symbol is a single fret or finger token: the mute marker, the open marker (frets only),
// a fret number, or a finger number.
type Symbol string

const (
	Mute Symbol = "x"
	Open Symbol = "0"
)

// Position types with special handling. The set is open; any lowercase slug is accepted.
const (
	PositionOpen    = "open"
	PositionBarre   = "barre"
	PositionComplex = "complex"
)

// StandardTuning lists string names low to high. Index 0 is always the low E string.
var StandardTuning = [StringCount]string{"E", "A", "D", "G", "B", "e"}

var positionTypePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidPositionType reports whether pt is a lowercase slug usable as a position type.
func ValidPositionType(pt string) bool {
	return positionTypePattern.MatchString(pt)
}

// IsMute reports whether the symbol is the mute marker.
func (s Symbol) IsMute() bool { return s == Mute }

// IsOpen reports whether the symbol is the open-string marker.
func (s Symbol) IsOpen() bool { return s == Open }

// Fret returns the fret number of a fretted symbol.
func (s Symbol) Fret() (int, bool) {
	n, err := strconv.Atoi(string(s))
	if err != nil || n < 1 || n > MaxFret || strconv.Itoa(n) != string(s) {
		return 0, false
	}
	return n, true
}

// Finger returns the finger number of a finger symbol.
func (s Symbol) Finger() (int, bool) {
	n, err := strconv.Atoi(string(s))
	if err != nil || n < 1 || n > MaxFinger || strconv.Itoa(n) != string(s) {
		return 0, false
	}
	return n, true
}

// FretSymbol returns the canonical symbol for fret n, where n < 0 mutes the string.
func FretSymbol(n int) Symbol {
	switch {
	case n < 0:
		return Mute
	case n == 0:
		return Open
	default:
		return Symbol(strconv.Itoa(n))
	}
}

// FingerSymbol returns the canonical symbol for finger n, capped at [MaxFinger].
// Non-positive values produce the mute marker.
func FingerSymbol(n int) Symbol {
	if n <= 0 {
		return Mute
	}
	if n > MaxFinger {
		n = MaxFinger
	}
	return Symbol(strconv.Itoa(n))
}

// NormalizeFret converts a raw token into a fret symbol.
//
// Accepted mute markers are "x", "X", "-1", "m" and "mute".
func NormalizeFret(tok string) (Symbol, error) {
	tok = strings.TrimSpace(tok)
	switch strings.ToLower(tok) {
	case "x", "-1", "m", "mute":
		return Mute, nil
	case "0", "o":
		return Open, nil
	}
	s := Symbol(tok)
	if _, ok := s.Fret(); !ok {
		return "", fmt.Errorf("%w: bad fret token %q", shared.ErrInvalidShape, tok)
	}
	return s, nil
}

// NormalizeFinger converts a raw token into a finger symbol. "0" and mute markers map to [Mute].
func NormalizeFinger(tok string) (Symbol, error) {
	tok = strings.TrimSpace(tok)
	switch strings.ToLower(tok) {
	case "x", "-1", "0", "m", "mute":
		return Mute, nil
	}
	s := Symbol(tok)
	if _, ok := s.Finger(); !ok {
		return "", fmt.Errorf("%w: bad finger token %q", shared.ErrInvalidShape, tok)
	}
	return s, nil
}

// ParseFrets parses compact notation ("x02210", "x-0-2-2-1-0", "x 0 2 2 1 0")
// into six fret symbols ordered low to high.
func ParseFrets(s string) ([StringCount]Symbol, error) {
	return parseSymbols(s, NormalizeFret)
}

// ParseFingering parses compact finger notation ("x0231x" or "x-x-2-3-1-x").
func ParseFingering(s string) ([StringCount]Symbol, error) {
	return parseSymbols(s, NormalizeFinger)
}

func parseSymbols(s string, normalize func(string) (Symbol, error)) ([StringCount]Symbol, error) {
	var out [StringCount]Symbol
	tokens := splitTokens(s)
	if len(tokens) != StringCount {
		return out, fmt.Errorf("%w: expected %d positions, got %d in %q", shared.ErrInvalidShape, StringCount, len(tokens), s)
	}
	for i, tok := range tokens {
		sym, err := normalize(tok)
		if err != nil {
			return out, err
		}
		out[i] = sym
	}
	return out, nil
}

func splitTokens(s string) []string {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, " -,") {
		return strings.FieldsFunc(s, func(r rune) bool {
			return r == ' ' || r == '-' || r == ',' || r == '\t'
		})
	}
	tokens := make([]string, 0, len(s))
	for _, r := range s {
		tokens = append(tokens, string(r))
	}
	return tokens
}

// FormatSymbols renders symbols in compact notation. Single-character symbols are
// concatenated; anything wider is joined with "-".
func FormatSymbols(syms [StringCount]Symbol) string {
	parts := make([]string, StringCount)
	wide := false
	for i, s := range syms {
		parts[i] = string(s)
		if len(s) > 1 {
			wide = true
		}
	}
	if wide {
		return strings.Join(parts, "-")
	}
	return strings.Join(parts, "")
}

// ShapeOpts carries optional [ChordShape] fields.
type ShapeOpts struct {
	PositionType string               // Classified from the frets when empty
	BaseFret     int                  // Derived with the position type when PositionType is empty
	Fingering    *[StringCount]Symbol // Absent when nil
}

// ChordShape is one fingering of one chord. It is an immutable value: accessors
// return copies and modifiers return new shapes.
type ChordShape struct {
	name         string
	positionType string
	baseFret     int
	frets        [StringCount]Symbol
	fingering    [StringCount]Symbol
	fingered     bool
}

// NewChordShape validates and constructs a [ChordShape].
func NewChordShape(name string, frets [StringCount]Symbol, opts ShapeOpts) (ChordShape, error) {
	shape := ChordShape{
		name:         strings.TrimSpace(name),
		positionType: opts.PositionType,
		baseFret:     opts.BaseFret,
		frets:        frets,
	}
	if shape.positionType == "" {
		shape.positionType, shape.baseFret = Classify(frets)
	}
	if opts.Fingering != nil {
		shape.fingering = *opts.Fingering
		shape.fingered = true
	}
	if err := shape.Validate(); err != nil {
		return ChordShape{}, err
	}
	return shape, nil
}

// Classify derives a position type and base fret from frets.
//
// Shapes with an open string and nothing above fret 4 are "open" at fret 0. Shapes whose
// lowest fret is shared by two or more strings with no open strings are "barre" at that
// fret. Everything else is "complex" at its lowest fret.
func Classify(frets [StringCount]Symbol) (string, int) {
	lowest, highest, lowestCount, hasOpen := 0, 0, 0, false
	for _, f := range frets {
		if f.IsOpen() {
			hasOpen = true
			continue
		}
		n, ok := f.Fret()
		if !ok {
			continue
		}
		switch {
		case lowest == 0 || n < lowest:
			lowest, lowestCount = n, 1
		case n == lowest:
			lowestCount++
		}
		if n > highest {
			highest = n
		}
	}
	switch {
	case lowest == 0 || (hasOpen && highest <= 4):
		return PositionOpen, 0
	case !hasOpen && lowestCount >= 2:
		return PositionBarre, lowest
	default:
		return PositionComplex, lowest
	}
}

// Validate checks the shape invariants: known fret and finger tokens, muted fingering on
// muted or open strings, a finger on every fretted string when fingering is present, and
// at least one sounding string.
func (c ChordShape) Validate() error {
	if c.name == "" {
		return fmt.Errorf("%w: chord name is required", shared.ErrInvalidShape)
	}
	if !ValidPositionType(c.positionType) {
		return fmt.Errorf("%w: bad position type %q", shared.ErrInvalidShape, c.positionType)
	}
	if c.baseFret < 0 || c.baseFret > MaxFret {
		return fmt.Errorf("%w: base fret %d out of range", shared.ErrInvalidShape, c.baseFret)
	}

	sounding := 0
	for i, f := range c.frets {
		_, fretted := f.Fret()
		if !fretted && !f.IsMute() && !f.IsOpen() {
			return fmt.Errorf("%w: string %d has bad fret %q", shared.ErrInvalidShape, i, f)
		}
		if !f.IsMute() {
			sounding++
		}
		if !c.fingered {
			continue
		}

		finger := c.fingering[i]
		if !fretted {
			if !finger.IsMute() {
				return fmt.Errorf("%w: string %d is not fretted but has finger %q", shared.ErrInvalidShape, i, finger)
			}
			continue
		}
		if _, ok := finger.Finger(); !ok {
			return fmt.Errorf("%w: string %d has bad finger %q", shared.ErrInvalidShape, i, finger)
		}
	}
	if sounding == 0 {
		return fmt.Errorf("%w: every string is muted", shared.ErrInvalidShape)
	}
	return nil
}

func (c ChordShape) Name() string                   { return c.name }
func (c ChordShape) PositionType() string           { return c.positionType }
func (c ChordShape) BaseFret() int                  { return c.baseFret }
func (c ChordShape) Strings() [StringCount]string   { return StandardTuning }
func (c ChordShape) Frets() [StringCount]Symbol     { return c.frets }
func (c ChordShape) Fingering() [StringCount]Symbol { return c.fingering }
func (c ChordShape) HasFingering() bool             { return c.fingered }

// IsZero reports whether c is the zero value (never a valid shape).
func (c ChordShape) IsZero() bool { return c.name == "" }

// WithFingering returns a copy of the shape carrying the given fingering.
func (c ChordShape) WithFingering(fingering [StringCount]Symbol) (ChordShape, error) {
	next := c
	next.fingering = fingering
	next.fingered = true
	if err := next.Validate(); err != nil {
		return ChordShape{}, err
	}
	return next, nil
}

// WithName returns a copy of the shape under another chord name.
func (c ChordShape) WithName(name string) ChordShape {
	next := c
	next.name = name
	return next
}

// String returns "<name> <frets>" in compact notation.
func (c ChordShape) String() string {
	return fmt.Sprintf("%s %s", c.name, FormatSymbols(c.frets))
}

type chordShapeJSON struct {
	Name         string   `json:"name"`
	PositionType string   `json:"position_type"`
	BaseFret     int      `json:"base_fret"`
	Strings      []string `json:"strings"`
	Frets        []Symbol `json:"frets"`
	Fingering    []Symbol `json:"fingering,omitempty"`
}

// MarshalJSON implements [json.Marshaler].
func (c ChordShape) MarshalJSON() ([]byte, error) {
	out := chordShapeJSON{
		Name:         c.name,
		PositionType: c.positionType,
		BaseFret:     c.baseFret,
		Strings:      StandardTuning[:],
		Frets:        c.frets[:],
	}
	if c.fingered {
		out.Fingering = c.fingering[:]
	}
	return json.Marshal(out)
}
