package chords

import (
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/guitartube/internal/models"
)

// Table maps chord names to their known voicings, primary voicing first.
//
// A Table is immutable once built. Lookups return copies.
type Table struct {
	voicings map[string][]models.ChordShape
	names    []string
}

// NewTable builds a table from shapes. Voicings keep their input order per name and
// duplicate frets under one name are dropped.
func NewTable(shapes ...models.ChordShape) Table {
	t := Table{voicings: make(map[string][]models.ChordShape)}
	for _, s := range shapes {
		if s.IsZero() {
			continue
		}
		existing := t.voicings[s.Name()]
		if slices.ContainsFunc(existing, func(e models.ChordShape) bool { return e.Frets() == s.Frets() }) {
			continue
		}
		if len(existing) == 0 {
			t.names = append(t.names, s.Name())
		}
		t.voicings[s.Name()] = append(existing, s)
	}
	slices.Sort(t.names)
	return t
}

// Merge returns a new table holding t's voicings followed by the given shapes.
func (t Table) Merge(shapes ...models.ChordShape) Table {
	all := make([]models.ChordShape, 0, t.Len()+len(shapes))
	for _, name := range t.names {
		all = append(all, t.voicings[name]...)
	}
	return NewTable(append(all, shapes...)...)
}

// Lookup returns the voicings of name.
func (t Table) Lookup(name string) []models.ChordShape {
	return slices.Clone(t.voicings[strings.TrimSpace(name)])
}

// Names returns the sorted chord names in the table.
func (t Table) Names() []string { return slices.Clone(t.names) }

// Len returns the number of voicings in the table.
func (t Table) Len() int {
	n := 0
	for _, v := range t.voicings {
		n += len(v)
	}
	return n
}

type entry struct {
	name      string
	frets     string
	fingering string // empty when the assigner's result is the usual fingering
}

// builtin lists common voicings low E to high e.
var builtin = []entry{
	// Major
	{"A", "x02220", ""},
	{"A", "577655", "134211"},
	{"B", "x24442", "x13331"},
	{"C", "x32010", ""},
	{"C", "x35553", "x13331"},
	{"D", "xx0232", ""},
	{"D", "x57775", "x13331"},
	{"E", "022100", ""},
	{"F", "133211", "134211"},
	{"G", "320003", "21xxx3"},
	{"G", "355433", "134211"},

	// Minor
	{"Am", "x02210", ""},
	{"Am", "577555", "134111"},
	{"Bm", "x24432", "x13421"},
	{"Cm", "x35543", "x13421"},
	{"Dm", "xx0231", ""},
	{"Em", "022000", ""},
	{"Fm", "133111", "134111"},
	{"Gm", "355333", "134111"},

	// Dominant seventh
	{"A7", "x02020", ""},
	{"B7", "x21202", "x213x4"},
	{"C7", "x32310", "x3241x"},
	{"D7", "xx0212", ""},
	{"E7", "020100", ""},
	{"G7", "320001", ""},

	// Minor seventh
	{"Am7", "x02010", ""},
	{"Bm7", "x24232", "x13121"},
	{"Dm7", "xx0211", "xxx211"},
	{"Em7", "020000", ""},
	{"Em7", "022030", ""},

	// Major seventh
	{"Amaj7", "x02120", ""},
	{"Cmaj7", "x32000", ""},
	{"Dmaj7", "xx0222", "xxx111"},
	{"Fmaj7", "xx3210", ""},
	{"Gmaj7", "320002", ""},

	// Suspended, added and slash chords
	{"Asus2", "x02200", ""},
	{"Asus4", "x02230", ""},
	{"Cadd9", "x32030", ""},
	{"Dsus2", "xx0230", ""},
	{"Dsus4", "xx0233", ""},
	{"Esus4", "022200", ""},
	{"D/F#", "200232", ""},
	{"G/B", "x20003", ""},

	// Power chords
	{"A5", "x022xx", ""},
	{"E5", "022xxx", ""},
}

// DefaultTable returns the built-in table of open and common voicings.
func DefaultTable() Table {
	shapes := make([]models.ChordShape, 0, len(builtin))
	for _, e := range builtin {
		shapes = append(shapes, mustShape(e))
	}
	return NewTable(shapes...)
}

func mustShape(e entry) models.ChordShape {
	frets, err := models.ParseFrets(e.frets)
	if err != nil {
		panic(fmt.Sprintf("chords: built-in %s: %v", e.name, err))
	}

	var opts models.ShapeOpts
	if e.fingering != "" {
		fingering, err := models.ParseFingering(e.fingering)
		if err != nil {
			panic(fmt.Sprintf("chords: built-in %s: %v", e.name, err))
		}
		opts.Fingering = &fingering
	}

	s, err := models.NewChordShape(e.name, frets, opts)
	if err != nil {
		panic(fmt.Sprintf("chords: built-in %s: %v", e.name, err))
	}
	return s
}
