package diagram

import (
	"fmt"
	"strings"

	"github.com/desertthunder/guitartube/internal/models"
)

const (
	gutter = "     "
	cell   = "  "
)

// RenderText draws shape as a plain-text chord box for terminals.
//
//	Am
//	     x  o           o
//	     ================
//	     |  |  |  |  1  |
//	     |  |  2  3  |  |
//
// Fretted strings show their finger number, or "*" when the shape has no fingering.
func RenderText(shape models.ChordShape) (string, error) {
	if err := shape.Validate(); err != nil {
		return "", err
	}
	win, err := fretWindow(shape.Frets())
	if err != nil {
		return "", err
	}

	frets := shape.Frets()
	fingers := shape.Fingering()

	var b strings.Builder
	b.WriteString(shape.Name())
	b.WriteString("\n")

	markers := make([]string, models.StringCount)
	for i, f := range frets {
		switch {
		case f.IsMute():
			markers[i] = "x"
		case f.IsOpen():
			markers[i] = "o"
		default:
			markers[i] = " "
		}
	}
	b.WriteString(strings.TrimRight(gutter+strings.Join(markers, cell), " "))
	b.WriteString("\n")

	lineWidth := models.StringCount + len(cell)*(models.StringCount-1)
	if win.atNut() {
		b.WriteString(gutter + strings.Repeat("=", lineWidth) + "\n")
	} else {
		b.WriteString(gutter + strings.Repeat("-", lineWidth) + "\n")
	}

	for row := 1; row <= Rows; row++ {
		prefix := gutter
		if row == 1 && !win.atNut() {
			prefix = fmt.Sprintf("%-5s", fmt.Sprintf("%dfr", win.start))
		}

		cells := make([]string, models.StringCount)
		for i, f := range frets {
			cells[i] = "|"
			n, ok := f.Fret()
			if !ok || win.row(n) != row {
				continue
			}
			if shape.HasFingering() {
				cells[i] = string(fingers[i])
			} else {
				cells[i] = "*"
			}
		}
		b.WriteString(prefix + strings.Join(cells, cell) + "\n")
	}

	return b.String(), nil
}
