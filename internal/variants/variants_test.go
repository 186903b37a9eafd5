package variants

import (
	"fmt"
	"testing"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKey(t *testing.T) {
	tc := []struct {
		name  string
		chord string
		pt    string
		fret  int
		theme models.Theme
		want  string
	}{
		{name: "plain", chord: "Am", pt: "open", fret: 0, theme: models.ThemeLight, want: "Am_open_0_light"},
		{name: "sharp", chord: "C#m7", pt: "barre", fret: 4, theme: models.ThemeDark, want: "C%23m7_barre_4_dark"},
		{name: "slash chord", chord: "G/B", pt: "open", fret: 0, theme: models.ThemeDark, want: "G%2FB_open_0_dark"},
		{name: "augmented", chord: "C+", pt: "complex", fret: 12, theme: models.ThemeLight, want: "C+_complex_12_light"},
		{name: "hyphenated type", chord: "B6add9", pt: "drop-2", fret: 7, theme: models.ThemeLight, want: "B6add9_drop-2_7_light"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildKey(tt.chord, tt.pt, tt.fret, tt.theme)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			parsed, err := ParseKey(got)
			require.NoError(t, err)
			assert.Equal(t, models.VariantKey{ChordName: tt.chord, PositionType: tt.pt, FretPosition: tt.fret, Theme: tt.theme}, parsed)
		})
	}

	t.Run("rejects invalid components", func(t *testing.T) {
		bad := []struct {
			name  string
			chord string
			pt    string
			fret  int
			theme models.Theme
		}{
			{name: "empty chord", chord: "", pt: "open", theme: models.ThemeLight},
			{name: "delimiter in chord", chord: "A_m", pt: "open", theme: models.ThemeLight},
			{name: "padded chord", chord: " Am", pt: "open", theme: models.ThemeLight},
			{name: "empty position", chord: "Am", pt: "", theme: models.ThemeLight},
			{name: "delimiter in position", chord: "Am", pt: "open_x", theme: models.ThemeLight},
			{name: "uppercase position", chord: "Am", pt: "Open", theme: models.ThemeLight},
			{name: "negative fret", chord: "Am", pt: "open", fret: -1, theme: models.ThemeLight},
			{name: "unknown theme", chord: "Am", pt: "open", theme: "sepia"},
			{name: "empty theme", chord: "Am", pt: "open", theme: ""},
		}
		for _, b := range bad {
			_, err := BuildKey(b.chord, b.pt, b.fret, b.theme)
			assert.ErrorIs(t, err, shared.ErrInvalidKeyComponent, b.name)
		}
	})
}

func TestBuildKeyInjective(t *testing.T) {
	chords := []string{"A", "Am", "A m", "A/m", "A%2Fm", "A#", "A%23", "Bb7", "C+", "D-"}
	types := []string{"open", "barre", "complex", "barre-2"}
	frets := []int{0, 1, 2, 10, 12}

	seen := map[string]models.VariantKey{}
	for _, c := range chords {
		for _, pt := range types {
			for _, f := range frets {
				for _, th := range models.Themes() {
					tuple := models.VariantKey{ChordName: c, PositionType: pt, FretPosition: f, Theme: th}
					key, err := Key(tuple)
					require.NoError(t, err, tuple.String())

					if prev, dup := seen[key]; dup {
						t.Fatalf("key %q produced by %v and %v", key, prev, tuple)
					}
					seen[key] = tuple

					back, err := ParseKey(key)
					require.NoError(t, err)
					require.Equal(t, tuple, back)
				}
			}
		}
	}
	assert.Len(t, seen, len(chords)*len(types)*len(frets)*2)
}

func TestParseKey(t *testing.T) {
	bad := []string{
		"",
		"Am",
		"Am_open_0",
		"Am_open_0_light_extra",
		"Am_open_00_light",
		"Am_open_+1_light",
		"Am_open_-1_light",
		"Am_open_0_Light",
		"Am_Open_0_light",
		"_open_0_light",
		"A%ZZ_open_0_light",
		"G/B_open_0_light",
		"C%2fm_open_0_light",
	}
	for _, key := range bad {
		t.Run(fmt.Sprintf("rejects %q", key), func(t *testing.T) {
			_, err := ParseKey(key)
			assert.ErrorIs(t, err, shared.ErrInvalidKeyComponent)
		})
	}
}

func TestLocator(t *testing.T) {
	t.Run("joins base and key", func(t *testing.T) {
		got, err := Locator("https://cdn.example.com/storage/v1/object/public/diagrams/", "Am_open_0_light")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/storage/v1/object/public/diagrams/Am_open_0_light.svg", got)
	})

	t.Run("directory base", func(t *testing.T) {
		got, err := Locator("./out", "C%23_barre_4_dark")
		require.NoError(t, err)
		assert.Equal(t, "./out/C%23_barre_4_dark.svg", got)
	})

	t.Run("empty base", func(t *testing.T) {
		_, err := Locator("  ", "Am_open_0_light")
		assert.ErrorIs(t, err, shared.ErrInvalidKeyComponent)
	})

	t.Run("invalid key", func(t *testing.T) {
		_, err := Locator("./out", "not-a-key")
		assert.ErrorIs(t, err, shared.ErrInvalidKeyComponent)
	})
}

func TestEnumerate(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		var got []string
		for k := range Enumerate("Am", []string{"open", "barre"}, []int{0, 1}) {
			got = append(got, fmt.Sprintf("%s,%d,%s", k.PositionType, k.FretPosition, k.Theme))
			assert.Equal(t, "Am", k.ChordName)
		}
		assert.Equal(t, []string{
			"open,0,light", "open,0,dark",
			"open,1,light", "open,1,dark",
			"barre,0,light", "barre,0,dark",
			"barre,1,light", "barre,1,dark",
		}, got)
		assert.Equal(t, len(got), Count([]string{"open", "barre"}, []int{0, 1}))
	})

	t.Run("restartable", func(t *testing.T) {
		seq := Enumerate("C", []string{"open"}, []int{0, 3})
		collect := func() []models.VariantKey {
			var out []models.VariantKey
			for k := range seq {
				out = append(out, k)
			}
			return out
		}
		first := collect()
		assert.Len(t, first, 4)
		assert.Equal(t, first, collect())
	})

	t.Run("inputs are copied", func(t *testing.T) {
		types := []string{"open"}
		seq := Enumerate("C", types, []int{0})
		types[0] = "barre"
		for k := range seq {
			assert.Equal(t, "open", k.PositionType)
		}
	})

	t.Run("early stop", func(t *testing.T) {
		n := 0
		for range Enumerate("C", []string{"open", "barre"}, []int{0, 1, 2}) {
			n++
			if n == 3 {
				break
			}
		}
		assert.Equal(t, 3, n)
	})

	t.Run("empty inputs", func(t *testing.T) {
		for range Enumerate("C", nil, []int{0}) {
			t.Fatal("expected no variants")
		}
	})
}
