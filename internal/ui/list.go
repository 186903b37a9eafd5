package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/guitartube/internal/formatter"
	"github.com/desertthunder/guitartube/internal/models"
)

var (
	_ list.Item = chordItem{}
	_ list.Item = voicingItem{}
)

// chordItem is a chord name in the table, implementing [list.Item].
type chordItem struct {
	name     string
	voicings int
}

func (i chordItem) FilterValue() string { return i.name }
func (i chordItem) Title() string       { return i.name }
func (i chordItem) Description() string {
	if i.voicings == 1 {
		return "1 voicing"
	}
	return fmt.Sprintf("%d voicings", i.voicings)
}

// voicingItem wraps [models.ChordShape] to implement [list.Item].
type voicingItem struct {
	shape models.ChordShape
}

func (i voicingItem) FilterValue() string { return models.FormatSymbols(i.shape.Frets()) }
func (i voicingItem) Title() string {
	return fmt.Sprintf("%s @ %d", formatter.PositionLabel(i.shape.PositionType()), i.shape.BaseFret())
}
func (i voicingItem) Description() string {
	desc := models.FormatSymbols(i.shape.Frets())
	if i.shape.HasFingering() {
		desc = fmt.Sprintf("%s • %s", desc, models.FormatSymbols(i.shape.Fingering()))
	}
	return desc
}
