package chords

import (
	"encoding/json"
	"html"
	"sync"
	"testing"

	"github.com/desertthunder/guitartube/internal/diagram"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compact(s models.ChordShape) (string, string) {
	return models.FormatSymbols(s.Frets()), models.FormatSymbols(s.Fingering())
}

func ugPage(t *testing.T, applicature any) []byte {
	t.Helper()
	payload := map[string]any{
		"store": map[string]any{
			"page": map[string]any{
				"data": map[string]any{
					"tab_view": map[string]any{"applicature": applicature},
				},
			},
		},
	}
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return []byte(`<html><body><div class="js-store" data-content="` + html.EscapeString(string(data)) + `"></div></body></html>`)
}

func TestResolve(t *testing.T) {
	r := NewResolver()

	t.Run("table voicing with assigned fingering", func(t *testing.T) {
		s, err := r.Resolve("Am")
		require.NoError(t, err)
		frets, fingers := compact(s)
		assert.Equal(t, "x02210", frets)
		assert.Equal(t, "xx231x", fingers)
		assert.Equal(t, models.PositionOpen, s.PositionType())
		assert.Equal(t, 0, s.BaseFret())
	})

	t.Run("explicit table fingering", func(t *testing.T) {
		s, err := r.Resolve("G")
		require.NoError(t, err)
		_, fingers := compact(s)
		assert.Equal(t, "21xxx3", fingers)
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		s, err := r.Resolve("  C ")
		require.NoError(t, err)
		assert.Equal(t, "C", s.Name())
	})

	t.Run("unknown symbol", func(t *testing.T) {
		s, err := r.Resolve("H#13")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.True(t, s.IsZero())
	})
}

func TestResolveFrom(t *testing.T) {
	r := NewResolver()

	t.Run("table wins over page", func(t *testing.T) {
		page := []byte("<pre>Am: 577555</pre>")
		s, err := r.ResolveFrom("Am", page)
		require.NoError(t, err)
		frets, _ := compact(s)
		assert.Equal(t, "x02210", frets)
	})

	t.Run("ultimate guitar store", func(t *testing.T) {
		page := ugPage(t, map[string]any{
			"E7sus4": []map[string]any{
				{"frets": []int{0, 0, 2, 0, 2, 0}, "fingers": []int{0, 0, 3, 0, 2, 0}},
			},
			"Fadd9": []map[string]any{
				{"frets": []int{3, 1, 2, 3, -1, -1}, "fingers": []int{0, 0, 0, 0, 0, 0}},
			},
		})

		s, err := r.ResolveFrom("E7sus4", page)
		require.NoError(t, err)
		frets, fingers := compact(s)
		assert.Equal(t, "020200", frets, "strings are reversed to low-to-high")
		assert.Equal(t, "x2x3xx", fingers)

		s, err = r.ResolveFrom("Fadd9", page)
		require.NoError(t, err)
		frets, fingers = compact(s)
		assert.Equal(t, "xx3213", frets, "-1 mutes the string")
		assert.Equal(t, "xx3214", fingers, "all-zero fingers are assigned")
	})

	t.Run("zero finger on fretted string is assigned", func(t *testing.T) {
		page := ugPage(t, map[string]any{
			"Fadd9": []map[string]any{
				{"frets": []int{3, 1, 2, 3, -1, -1}, "fingers": []int{4, 1, 0, 3, 0, 0}},
			},
		})
		s, err := r.ResolveFrom("Fadd9", page)
		require.NoError(t, err)
		_, fingers := compact(s)
		assert.Equal(t, "xx3214", fingers)
	})

	t.Run("only invalid voicings", func(t *testing.T) {
		page := ugPage(t, map[string]any{
			"E7sus4": []map[string]any{
				{"frets": []int{0, 0, 2, 0, 2}, "fingers": []int{0, 0, 0, 0, 0}},
				{"frets": []int{-1, -1, -1, -1, -1, -1}, "fingers": []int{0, 0, 0, 0, 0, 0}},
			},
		})
		s, err := r.ResolveFrom("E7sus4", page)
		assert.ErrorIs(t, err, shared.ErrInvalidShape)
		assert.True(t, s.IsZero())
	})

	t.Run("finger on open string is invalid", func(t *testing.T) {
		page := ugPage(t, map[string]any{
			"E7sus4": []map[string]any{
				{"frets": []int{0, 0, 2, 0, 2, 0}, "fingers": []int{1, 0, 3, 0, 2, 0}},
			},
		})
		_, err := r.ResolveFrom("E7sus4", page)
		assert.ErrorIs(t, err, shared.ErrInvalidShape)
	})

	t.Run("chordless page", func(t *testing.T) {
		_, err := r.ResolveFrom("E7sus4", ugPage(t, []any{}))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("garbled store fails closed", func(t *testing.T) {
		page := []byte(`<div class="js-store" data-content="{&quot;store&quot;: [oops"></div><pre>E7sus4: 020200</pre>`)
		_, err := r.ResolveFrom("E7sus4", page)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("plain text lines", func(t *testing.T) {
		page := []byte("<html><pre>E7sus4: 020200\nFadd9 x-x-3-2-1-3</pre><p>Dadd11 X-X-0-2-3-3</p></html>")

		s, err := r.ResolveFrom("Fadd9", page)
		require.NoError(t, err)
		frets, _ := compact(s)
		assert.Equal(t, "xx3213", frets)

		s, err = r.ResolveFrom("Dadd11", page)
		require.NoError(t, err)
		frets, _ = compact(s)
		assert.Equal(t, "xx0233", frets)
	})

	t.Run("symbol missing from page", func(t *testing.T) {
		s, err := r.ResolveFrom("Gbm7b5", []byte("<pre>Fadd9: xx3213</pre>"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.True(t, s.IsZero())
	})

	t.Run("no page", func(t *testing.T) {
		_, err := r.ResolveFrom("Gbm7b5", nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestParseTabPage(t *testing.T) {
	t.Run("collects every usable voicing", func(t *testing.T) {
		page := ugPage(t, map[string]any{
			"Am": []map[string]any{
				{"frets": []int{0, 1, 2, 2, 0, -1}, "fingers": []int{0, 1, 3, 2, 0, 0}},
				{"frets": []int{5, 5, 5, 7, 7, 5}, "fingers": []int{1, 1, 1, 4, 3, 1}},
				{"frets": []int{5, 5, 5, 7, 7, 5}, "fingers": []int{1, 1, 1, 4, 3, 1}},
				{"frets": []int{0, 1}},
			},
		})
		shapes, err := ParseTabPage(page)
		require.NoError(t, err)
		require.Len(t, shapes["Am"], 2, "duplicates and invalid voicings are dropped")

		frets, fingers := compact(shapes["Am"][0])
		assert.Equal(t, "x02210", frets)
		assert.True(t, shapes["Am"][0].HasFingering())
		assert.Equal(t, "xx231x", fingers)

		frets, _ = compact(shapes["Am"][1])
		assert.Equal(t, "577555", frets)
		assert.Equal(t, models.PositionBarre, shapes["Am"][1].PositionType())
		assert.Equal(t, 5, shapes["Am"][1].BaseFret())
	})

	t.Run("empty page", func(t *testing.T) {
		_, err := ParseTabPage([]byte("   "))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("text without chords", func(t *testing.T) {
		_, err := ParseTabPage([]byte("<p>just lyrics here</p>"))
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestResolveVariant(t *testing.T) {
	r := NewResolver()

	tc := []struct {
		name    string
		chord   string
		pt      string
		fret    int
		frets   string
		fingers string
	}{
		{name: "open from table", chord: "Am", pt: models.PositionOpen, fret: 0, frets: "x02210", fingers: "xx231x"},
		{name: "barre from table", chord: "Am", pt: models.PositionBarre, fret: 5, frets: "577555", fingers: "134111"},
		{name: "E-shape major", chord: "F#", pt: models.PositionBarre, fret: 2, frets: "244322", fingers: "134211"},
		{name: "A-shape minor", chord: "C#m", pt: models.PositionBarre, fret: 4, frets: "x46654", fingers: "x13421"},
		{name: "E-shape seventh", chord: "G7", pt: models.PositionBarre, fret: 3, frets: "353433", fingers: "131211"},
		{name: "A-shape major seventh", chord: "Bbmaj7", pt: models.PositionBarre, fret: 1, frets: "x13231", fingers: "x13241"},
		{name: "E-shape at twelve", chord: "E", pt: models.PositionBarre, fret: 12, frets: "12-14-14-13-12-12", fingers: "134211"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			s, err := r.ResolveVariant(tt.chord, tt.pt, tt.fret)
			require.NoError(t, err)
			frets, fingers := compact(s)
			assert.Equal(t, tt.frets, frets)
			assert.Equal(t, tt.fingers, fingers)
			assert.Equal(t, tt.pt, s.PositionType())
			assert.Equal(t, tt.fret, s.BaseFret())
			assert.Equal(t, tt.chord, s.Name())
		})
	}

	t.Run("not found", func(t *testing.T) {
		for _, args := range []struct {
			chord string
			pt    string
			fret  int
		}{
			{"Am", models.PositionComplex, 9},
			{"Am", models.PositionBarre, 3},
			{"Fsus4", models.PositionBarre, 1},
			{"F", models.PositionBarre, 0},
			{"Zm", models.PositionBarre, 1},
		} {
			_, err := r.ResolveVariant(args.chord, args.pt, args.fret)
			assert.ErrorIs(t, err, shared.ErrNotFound, "%s %s %d", args.chord, args.pt, args.fret)
		}
	})

	t.Run("derived shape past the last fret", func(t *testing.T) {
		_, err := r.ResolveVariant("E", models.PositionBarre, 24)
		assert.ErrorIs(t, err, shared.ErrInvalidShape)
	})
}

func TestDeriveBarre(t *testing.T) {
	s, err := DeriveBarre("F", 1)
	require.NoError(t, err)
	frets, fingers := compact(s)
	assert.Equal(t, "133211", frets)
	assert.Equal(t, "134211", fingers)

	s, err = DeriveBarre("Bm", 2)
	require.NoError(t, err)
	frets, fingers = compact(s)
	assert.Equal(t, "x24432", frets)
	assert.Equal(t, "x13421", fingers)

	s, err = DeriveBarre("E", 12)
	require.NoError(t, err)
	assert.Equal(t, 12, s.BaseFret())
	assert.Equal(t, models.PositionBarre, s.PositionType())

	_, err = DeriveBarre("E", 24)
	assert.ErrorIs(t, err, shared.ErrNotFound, "shape would run past the last fret")
	_, err = DeriveBarre("A", 24)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestParseSymbol(t *testing.T) {
	tc := []struct {
		in   string
		want Symbol
	}{
		{"F#m7", Symbol{Root: 6, Quality: "m7"}},
		{"Bb", Symbol{Root: 10, Quality: ""}},
		{"Cmaj7", Symbol{Root: 0, Quality: "maj7"}},
		{"EbM7", Symbol{Root: 3, Quality: "maj7"}},
		{"Amin", Symbol{Root: 9, Quality: "m"}},
		{"Cb", Symbol{Root: 11, Quality: ""}},
	}
	for _, tt := range tc {
		got, err := ParseSymbol(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "H", "am", "Csus2", "C9"} {
		_, err := ParseSymbol(bad)
		assert.ErrorIs(t, err, shared.ErrNotFound, bad)
	}
}

func TestResolverOptions(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		r := NewResolver(WithTable(NewTable()))
		_, err := r.Resolve("Am")
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, r.Names())
	})

	t.Run("extra shapes", func(t *testing.T) {
		frets, err := models.ParseFrets("x13331")
		require.NoError(t, err)
		extra, err := models.NewChordShape("Bbadd9", frets, models.ShapeOpts{})
		require.NoError(t, err)
		dup, err := models.NewChordShape("Am", mustFrets(t, "x02210"), models.ShapeOpts{})
		require.NoError(t, err)

		r := NewResolver(WithShapes(extra, dup))
		s, err := r.Resolve("Bbadd9")
		require.NoError(t, err)
		assert.True(t, s.HasFingering())

		voicings, err := r.Voicings("Am")
		require.NoError(t, err)
		assert.Len(t, voicings, 2, "duplicate frets are dropped")
		assert.Contains(t, r.Names(), "Bbadd9")
	})
}

func mustFrets(t *testing.T, s string) [models.StringCount]models.Symbol {
	t.Helper()
	f, err := models.ParseFrets(s)
	require.NoError(t, err)
	return f
}

func TestVoicingsAndNames(t *testing.T) {
	r := NewResolver()

	voicings, err := r.Voicings("C")
	require.NoError(t, err)
	require.Len(t, voicings, 2)
	for _, v := range voicings {
		assert.True(t, v.HasFingering())
	}

	_, err = r.Voicings("Xyz")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	names := r.Names()
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "Am")
	assert.Contains(t, names, "D/F#")
}

func TestSuggest(t *testing.T) {
	r := NewResolver()

	got := r.Suggest("Am", 3)
	require.NotEmpty(t, got)
	assert.LessOrEqual(t, len(got), 3)
	assert.Equal(t, "Am", got[0])

	assert.Nil(t, r.Suggest("", 3))
	assert.Nil(t, r.Suggest("Am", 0))
	assert.Empty(t, r.Suggest("zzz", 3))
}

func TestDefaultTableRenders(t *testing.T) {
	r := NewResolver()
	for _, name := range r.Names() {
		voicings, err := r.Voicings(name)
		require.NoError(t, err, name)
		for _, v := range voicings {
			for _, theme := range models.Themes() {
				_, err := diagram.Render(v, theme)
				assert.NoError(t, err, "%s %s", v, theme)
			}
		}
	}
}

func TestResolverConcurrent(t *testing.T) {
	r := NewResolver()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, name := range r.Names() {
				_, err := r.Resolve(name)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}
