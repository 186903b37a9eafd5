package chords

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"regexp"
	"slices"
	"strings"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
)

var (
	storeTag    = regexp.MustCompile(`<div[^>]*\bclass="js-store"[^>]*>`)
	dataContent = regexp.MustCompile(`\bdata-content="([^"]*)"`)
	markupTag   = regexp.MustCompile(`<[^>]*>`)
	chordLine   = regexp.MustCompile(`^\s*([A-G][^\s:]*)\s*:?\s+([xX0-9](?:[xX0-9 -]*[xX0-9])?)\s*$`)
)

// ugStore is the subset of an Ultimate Guitar js-store payload carrying chord voicings.
type ugStore struct {
	Store struct {
		Page struct {
			Data struct {
				TabView struct {
					Applicature json.RawMessage `json:"applicature"`
				} `json:"tab_view"`
			} `json:"data"`
		} `json:"page"`
	} `json:"store"`
}

// ugVoicing lists frets and fingers high e to low E. A fret of -1 mutes the string and a
// finger of 0 means no finger.
type ugVoicing struct {
	Frets   []int `json:"frets"`
	Fingers []int `json:"fingers"`
}

// pageResult holds the usable voicings of a page and, per chord name, why any voicing was
// rejected.
type pageResult struct {
	shapes   map[string][]models.ChordShape
	rejected map[string]error
}

func (r *pageResult) add(shape models.ChordShape) {
	existing := r.shapes[shape.Name()]
	if slices.ContainsFunc(existing, func(e models.ChordShape) bool { return e.Frets() == shape.Frets() }) {
		return
	}
	r.shapes[shape.Name()] = append(existing, shape)
}

func (r *pageResult) reject(name string, err error) {
	if _, seen := r.rejected[name]; !seen {
		r.rejected[name] = err
	}
}

// ParseTabPage extracts chord voicings from a tab page.
//
// Pages carrying an Ultimate Guitar js-store payload are read from its applicature section
// only. Other pages are scanned as text for lines such as "Am: x02210" or "Am x-0-2-2-1-0".
// Voicings that do not form a valid shape are skipped. A page without any usable voicing
// returns [shared.ErrNotFound].
func ParseTabPage(page []byte) (map[string][]models.ChordShape, error) {
	res, err := parsePage(page)
	if err != nil {
		return nil, err
	}
	if len(res.shapes) == 0 {
		return nil, fmt.Errorf("%w: no chord voicings in page", shared.ErrNotFound)
	}
	return res.shapes, nil
}

func parsePage(page []byte) (pageResult, error) {
	res := pageResult{
		shapes:   make(map[string][]models.ChordShape),
		rejected: make(map[string]error),
	}
	if len(bytes.TrimSpace(page)) == 0 {
		return res, fmt.Errorf("%w: empty page", shared.ErrNotFound)
	}

	if tag := storeTag.Find(page); tag != nil {
		return res, parseStore(tag, &res)
	}
	parseText(page, &res)
	return res, nil
}

func parseStore(tag []byte, res *pageResult) error {
	m := dataContent.FindSubmatch(tag)
	if m == nil {
		return fmt.Errorf("%w: js-store has no data-content", shared.ErrNotFound)
	}

	var store ugStore
	if err := json.Unmarshal([]byte(html.UnescapeString(string(m[1]))), &store); err != nil {
		return fmt.Errorf("%w: unreadable js-store payload: %v", shared.ErrNotFound, err)
	}

	raw := bytes.TrimSpace(store.Store.Page.Data.TabView.Applicature)
	if len(raw) == 0 || raw[0] != '{' {
		// Pages without chords carry an empty list here.
		return nil
	}

	var applicature map[string][]ugVoicing
	if err := json.Unmarshal(raw, &applicature); err != nil {
		return fmt.Errorf("%w: unreadable applicature: %v", shared.ErrNotFound, err)
	}

	names := make([]string, 0, len(applicature))
	for name := range applicature {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		for _, v := range applicature[name] {
			shape, err := v.shape(name)
			if err != nil {
				res.reject(strings.TrimSpace(name), err)
				continue
			}
			res.add(shape)
		}
	}
	return nil
}

// shape reverses the voicing to low-to-high order and validates it.
func (v ugVoicing) shape(name string) (models.ChordShape, error) {
	if len(v.Frets) != models.StringCount {
		return models.ChordShape{}, fmt.Errorf("%w: %s has %d frets", shared.ErrInvalidShape, name, len(v.Frets))
	}

	var frets [models.StringCount]models.Symbol
	for i, f := range v.Frets {
		if f < -1 || f > models.MaxFret {
			return models.ChordShape{}, fmt.Errorf("%w: %s has fret %d", shared.ErrInvalidShape, name, f)
		}
		frets[models.StringCount-1-i] = models.FretSymbol(f)
	}

	var opts models.ShapeOpts
	fingering, ok, err := v.fingering(name, frets)
	if err != nil {
		return models.ChordShape{}, err
	}
	if ok {
		opts.Fingering = &fingering
	}
	return models.NewChordShape(name, frets, opts)
}

// fingering reports the voicing's fingering when it is complete. All-zero fingers, or no
// finger on a fretted string, leave the fingering to be assigned.
func (v ugVoicing) fingering(name string, frets [models.StringCount]models.Symbol) ([models.StringCount]models.Symbol, bool, error) {
	var out [models.StringCount]models.Symbol
	if len(v.Fingers) != models.StringCount {
		return out, false, nil
	}

	complete := true
	for i, f := range v.Fingers {
		idx := models.StringCount - 1 - i
		_, fretted := frets[idx].Fret()
		switch {
		case f < 0 || f > models.MaxFinger:
			return out, false, fmt.Errorf("%w: %s has finger %d", shared.ErrInvalidShape, name, f)
		case f == 0:
			complete = complete && !fretted
		case !fretted:
			return out, false, fmt.Errorf("%w: %s has finger %d on an unfretted string", shared.ErrInvalidShape, name, f)
		}
		out[idx] = models.FingerSymbol(f)
	}
	return out, complete, nil
}

func parseText(page []byte, res *pageResult) {
	text := html.UnescapeString(markupTag.ReplaceAllString(string(page), "\n"))

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), len(text)+1)
	for sc.Scan() {
		m := chordLine.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		name := m[1]
		frets, err := models.ParseFrets(m[2])
		if err != nil {
			res.reject(name, err)
			continue
		}
		shape, err := models.NewChordShape(name, frets, models.ShapeOpts{})
		if err != nil {
			res.reject(name, err)
			continue
		}
		res.add(shape)
	}
}

// rejection returns why name had no usable voicing on the page, if any voicing was seen.
func (r *pageResult) rejection(name string) error {
	err, ok := r.rejected[name]
	if !ok {
		return nil
	}
	if !errors.Is(err, shared.ErrInvalidShape) {
		return fmt.Errorf("%w: %v", shared.ErrInvalidShape, err)
	}
	return err
}
