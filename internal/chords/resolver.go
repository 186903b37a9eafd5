package chords

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/guitartube/internal/fingering"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/sahilm/fuzzy"
)

// Resolver looks up chord shapes in an immutable table and in already-fetched tab pages.
// It is safe for concurrent use.
type Resolver struct {
	table Table
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithTable replaces the built-in table.
func WithTable(t Table) Option {
	return func(r *Resolver) { r.table = t }
}

// WithShapes adds voicings after those already in the table, e.g. shapes restored from the
// shape cache.
func WithShapes(shapes ...models.ChordShape) Option {
	return func(r *Resolver) { r.table = r.table.Merge(shapes...) }
}

// NewResolver creates a resolver over the built-in table unless options say otherwise.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{table: DefaultTable()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the primary voicing of symbol from the table, with fingering.
func (r *Resolver) Resolve(symbol string) (models.ChordShape, error) {
	voicings := r.table.Lookup(symbol)
	if len(voicings) == 0 {
		return models.ChordShape{}, fmt.Errorf("%w: %q", shared.ErrNotFound, strings.TrimSpace(symbol))
	}
	return fingering.Complete(voicings[0])
}

// ResolveFrom resolves symbol from the table, falling back to the voicings found in page.
//
// It returns [shared.ErrInvalidShape] when the page only carries unusable voicings of
// symbol, and [shared.ErrNotFound] when neither source knows it.
func (r *Resolver) ResolveFrom(symbol string, page []byte) (models.ChordShape, error) {
	shape, err := r.Resolve(symbol)
	if !errors.Is(err, shared.ErrNotFound) || len(page) == 0 {
		return shape, err
	}

	name := strings.TrimSpace(symbol)
	res, err := parsePage(page)
	if err != nil {
		return models.ChordShape{}, fmt.Errorf("%q: %w", name, err)
	}
	if voicings := res.shapes[name]; len(voicings) > 0 {
		return fingering.Complete(voicings[0])
	}
	if err := res.rejection(name); err != nil {
		return models.ChordShape{}, err
	}
	return models.ChordShape{}, fmt.Errorf("%w: %q in table or page", shared.ErrNotFound, name)
}

// ResolveVariant returns the voicing of name with the given position type and base fret.
// Barre variants missing from the table are derived from the movable E and A shapes.
func (r *Resolver) ResolveVariant(name, positionType string, fret int) (models.ChordShape, error) {
	for _, v := range r.table.Lookup(name) {
		if v.PositionType() == positionType && v.BaseFret() == fret {
			return fingering.Complete(v)
		}
	}

	if positionType == models.PositionBarre {
		return DeriveBarre(name, fret)
	}
	return models.ChordShape{}, fmt.Errorf("%w: %s %s at fret %d", shared.ErrNotFound, strings.TrimSpace(name), positionType, fret)
}

// Voicings returns every table voicing of name, with fingering.
func (r *Resolver) Voicings(name string) ([]models.ChordShape, error) {
	voicings := r.table.Lookup(name)
	if len(voicings) == 0 {
		return nil, fmt.Errorf("%w: %q", shared.ErrNotFound, strings.TrimSpace(name))
	}
	for i, v := range voicings {
		completed, err := fingering.Complete(v)
		if err != nil {
			return nil, err
		}
		voicings[i] = completed
	}
	return voicings, nil
}

// Names returns the sorted names of the chords in the table.
func (r *Resolver) Names() []string { return r.table.Names() }

// Suggest returns up to n table names that fuzzily match query, best match first.
func (r *Resolver) Suggest(query string, n int) []string {
	query = strings.TrimSpace(query)
	if query == "" || n <= 0 {
		return nil
	}

	names := r.table.Names()
	matches := fuzzy.Find(query, names)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	out := make([]string, 0, min(n, len(matches)))
	for _, m := range matches {
		if len(out) == n {
			break
		}
		out = append(out, names[m.Index])
	}
	return out
}
