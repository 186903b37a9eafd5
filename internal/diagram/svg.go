package diagram

import (
	"bytes"
	"fmt"
	"html"
	"sort"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
)

// Rows is the number of fret rows drawn below the nut.
const Rows = 5

const (
	width       = 140
	height      = 170
	stringLeft  = 30
	stringGap   = 18
	titleY      = 18
	markerY     = 36
	nutY        = 46
	fretGap     = 22
	dotRadius   = 7
	openRadius  = 4
	muteHalf    = 4
	nutHeight   = 4
	labelX      = 2
	centerX     = stringLeft + stringGap*(models.StringCount-1)/2
	stringRight = stringLeft + stringGap*(models.StringCount-1)
	bottomY     = nutY + fretGap*Rows
)

// window is the range of frets a diagram displays.
type window struct {
	start int // first displayed fret, 1 at the nut
}

func (w window) atNut() bool { return w.start == 1 }

// row returns the 1-based row of fret within the window.
func (w window) row(fret int) int { return fret - w.start + 1 }

// bar is a single finger pressing strings from..to at one fret.
type bar struct {
	finger int
	fret   int
	from   int
	to     int
}

// Render draws shape as a fixed-size SVG chord box in the given theme.
//
// The shape is revalidated and must carry fingering. Output depends only on the shape and
// theme; the two themes differ only in their palette tokens.
func Render(shape models.ChordShape, theme models.Theme) (string, error) {
	palette, err := PaletteFor(theme)
	if err != nil {
		return "", err
	}
	win, err := check(shape)
	if err != nil {
		return "", err
	}

	frets := shape.Frets()
	fingers := shape.Fingering()
	name := html.EscapeString(shape.Name())
	bg, fg := palette.Background, palette.Foreground

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" role="img" aria-label="%s chord diagram">`,
		width, height, width, height, name)
	fmt.Fprintf(&buf, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, width, height, bg)
	fmt.Fprintf(&buf, `<text x="%d" y="%d" font-family="sans-serif" font-size="14" font-weight="bold" text-anchor="middle" fill="%s">%s</text>`,
		centerX, titleY, fg, name)

	if win.atNut() {
		fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`,
			stringLeft, nutY-nutHeight, stringRight-stringLeft, nutHeight, fg)
	} else {
		fmt.Fprintf(&buf, `<text x="%d" y="%d" font-family="sans-serif" font-size="10" text-anchor="start" fill="%s">%dfr</text>`,
			labelX, nutY+fretGap/2+4, fg, win.start)
	}

	for row := 0; row <= Rows; row++ {
		y := nutY + row*fretGap
		fmt.Fprintf(&buf, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`, stringLeft, y, stringRight, y, fg)
	}
	for i := range models.StringCount {
		x := stringX(i)
		fmt.Fprintf(&buf, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="1"/>`, x, nutY, x, bottomY, fg)
	}

	for i, f := range frets {
		x := stringX(i)
		switch {
		case f.IsMute():
			fmt.Fprintf(&buf, `<path d="M%d %dL%d %dM%d %dL%d %d" stroke="%s" stroke-width="1.5"/>`,
				x-muteHalf, markerY-muteHalf, x+muteHalf, markerY+muteHalf,
				x-muteHalf, markerY+muteHalf, x+muteHalf, markerY-muteHalf, fg)
		case f.IsOpen():
			fmt.Fprintf(&buf, `<circle cx="%d" cy="%d" r="%d" fill="none" stroke="%s" stroke-width="1.5"/>`, x, markerY, openRadius, fg)
		}
	}

	for _, b := range barres(frets, fingers) {
		y := rowCenter(win.row(b.fret))
		fmt.Fprintf(&buf, `<rect x="%d" y="%d" width="%d" height="%d" rx="%d" fill="%s"/>`,
			stringX(b.from)-dotRadius, y-dotRadius, stringX(b.to)-stringX(b.from)+2*dotRadius, 2*dotRadius, dotRadius, fg)
	}

	for i, f := range frets {
		n, ok := f.Fret()
		if !ok {
			continue
		}
		x, y := stringX(i), rowCenter(win.row(n))
		fmt.Fprintf(&buf, `<circle cx="%d" cy="%d" r="%d" fill="%s"/>`, x, y, dotRadius, fg)
		fmt.Fprintf(&buf, `<text x="%d" y="%d" font-family="sans-serif" font-size="9" text-anchor="middle" fill="%s">%s</text>`,
			x, y+3, bg, fingers[i])
	}

	buf.WriteString(`</svg>`)
	return buf.String(), nil
}

// check revalidates shape and computes its fret window.
func check(shape models.ChordShape) (window, error) {
	if err := shape.Validate(); err != nil {
		return window{}, err
	}
	if !shape.HasFingering() {
		return window{}, fmt.Errorf("%w: %s has no fingering", shared.ErrInvalidShape, shape.Name())
	}
	return fretWindow(shape.Frets())
}

// fretWindow starts at the nut when every fret fits in [Rows] rows; otherwise it starts at
// the lowest fretted fret.
func fretWindow(frets [models.StringCount]models.Symbol) (window, error) {
	lowest, highest := 0, 0
	for _, f := range frets {
		n, ok := f.Fret()
		if !ok {
			continue
		}
		if lowest == 0 || n < lowest {
			lowest = n
		}
		if n > highest {
			highest = n
		}
	}
	if highest <= Rows {
		return window{start: 1}, nil
	}
	if highest-lowest+1 > Rows {
		return window{}, fmt.Errorf("%w: frets %d-%d span more than %d rows", shared.ErrInvalidShape, lowest, highest, Rows)
	}
	return window{start: lowest}, nil
}

// barres finds fingers covering two or more strings at one fret, at least two of them
// adjacent. Each bar spans the lowest to highest string of its group.
func barres(frets, fingers [models.StringCount]models.Symbol) []bar {
	type groupKey struct{ finger, fret int }
	groups := map[groupKey][]int{}
	for i, f := range frets {
		fret, ok := f.Fret()
		if !ok {
			continue
		}
		finger, ok := fingers[i].Finger()
		if !ok {
			continue
		}
		k := groupKey{finger, fret}
		groups[k] = append(groups[k], i)
	}

	var bars []bar
	for k, idx := range groups {
		if len(idx) < 2 || !hasAdjacent(idx) {
			continue
		}
		bars = append(bars, bar{finger: k.finger, fret: k.fret, from: idx[0], to: idx[len(idx)-1]})
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].fret != bars[j].fret {
			return bars[i].fret < bars[j].fret
		}
		return bars[i].finger < bars[j].finger
	})
	return bars
}

func hasAdjacent(idx []int) bool {
	for i := 1; i < len(idx); i++ {
		if idx[i]-idx[i-1] == 1 {
			return true
		}
	}
	return false
}

func stringX(i int) int { return stringLeft + i*stringGap }

func rowCenter(row int) int { return nutY + row*fretGap - fretGap/2 }
