// Package fingering assigns ergonomic finger numbers to fretted positions.
//
// Assignment is driven by an ordered rule table. The first rule whose pattern matches the
// fret layout produces the fingering; the last rule always matches.
//
// Frets closer to the nut and lower-numbered strings take lower-numbered fingers. Finger
// numbers never exceed 4, so shapes with more than four fretted notes share finger 4.
package fingering

import (
	"sort"

	"github.com/desertthunder/guitartube/internal/models"
)

// fretGroup holds the string indices fretted at one fret, ascending.
type fretGroup struct {
	fret    int
	strings []int
}

type rule struct {
	name   string
	match  func(groups []fretGroup) bool
	assign func(groups []fretGroup) []int // string indices in finger order
}

var rules = []rule{
	{name: "single-bass-note", match: singleBassNote, assign: singleBassNoteOrder},
	{name: "ascending", match: func([]fretGroup) bool { return true }, assign: ascendingOrder},
}

// Assign computes the fingering for six fret symbols. Muted and open strings, and every
// string when nothing is fretted, receive the mute marker.
func Assign(frets [models.StringCount]models.Symbol) [models.StringCount]models.Symbol {
	out := muted()
	groups := group(frets)
	if len(groups) == 0 {
		return out
	}

	r := match(groups)
	for i, idx := range r.assign(groups) {
		out[idx] = models.FingerSymbol(i + 1)
	}
	return out
}

// Rule returns the name of the rule that [Assign] applies to frets, or "" when nothing is fretted.
func Rule(frets [models.StringCount]models.Symbol) string {
	groups := group(frets)
	if len(groups) == 0 {
		return ""
	}
	return match(groups).name
}

// Complete returns shape unchanged when it already carries fingering, and otherwise a
// copy with the assigned fingering.
func Complete(shape models.ChordShape) (models.ChordShape, error) {
	if shape.HasFingering() {
		return shape, nil
	}
	return shape.WithFingering(Assign(shape.Frets()))
}

func match(groups []fretGroup) rule {
	for _, r := range rules {
		if r.match(groups) {
			return r
		}
	}
	return rules[len(rules)-1]
}

func muted() [models.StringCount]models.Symbol {
	var out [models.StringCount]models.Symbol
	for i := range out {
		out[i] = models.Mute
	}
	return out
}

// group collects fretted string indices by fret, frets ascending.
func group(frets [models.StringCount]models.Symbol) []fretGroup {
	byFret := map[int][]int{}
	for i, f := range frets {
		if n, ok := f.Fret(); ok {
			byFret[n] = append(byFret[n], i)
		}
	}

	groups := make([]fretGroup, 0, len(byFret))
	for fret, strs := range byFret {
		groups = append(groups, fretGroup{fret: fret, strings: strs})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].fret < groups[j].fret })
	return groups
}

// singleBassNote matches a lone note on the lowest fret with two or more notes on the next
// fret up, as in the open A minor shape.
func singleBassNote(groups []fretGroup) bool {
	return len(groups) >= 2 && len(groups[0].strings) == 1 && len(groups[1].strings) >= 2
}

// singleBassNoteOrder gives finger 1 to the bass note and 2 and 3 to the two lowest strings
// of the next fret. Everything else follows in fret order, then string order.
func singleBassNoteOrder(groups []fretGroup) []int {
	order := []int{groups[0].strings[0], groups[1].strings[0], groups[1].strings[1]}
	order = append(order, groups[1].strings[2:]...)
	for _, g := range groups[2:] {
		order = append(order, g.strings...)
	}
	return order
}

// ascendingOrder sorts fretted strings by fret, then string index.
func ascendingOrder(groups []fretGroup) []int {
	var order []int
	for _, g := range groups {
		order = append(order, g.strings...)
	}
	return order
}
