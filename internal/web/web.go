// Package web serves a browsable HTML gallery of chord diagrams.
//
// The gallery lists each chord in the table with an <img> per voicing pointing at the
// diagram endpoint of the server package, so every image is drawn on demand from its
// variant key. ?q= narrows the list with fuzzy suggestions and ?theme= picks the palette.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/guitartube/internal/chords"
	"github.com/desertthunder/guitartube/internal/formatter"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/variants"
)

//go:embed templates/*.html
var templates embed.FS

var galleryTmpl = template.Must(template.ParseFS(templates, "templates/gallery.html"))

const searchLimit = 24

// Card is one voicing in the gallery.
type Card struct {
	Key   string
	Label string
}

// ChordCards groups the voicings of one chord.
type ChordCards struct {
	Name  string
	Cards []Card
}

// Page is the template data for the gallery.
type Page struct {
	Title  string
	Query  string
	Theme  models.Theme
	Themes []models.Theme
	Chords []ChordCards
}

// Gallery renders the chord gallery at GET /.
type Gallery struct {
	resolver *chords.Resolver
	logger   *log.Logger
	title    string
}

// NewGallery creates a Gallery over resolver.
func NewGallery(resolver *chords.Resolver, logger *log.Logger) *Gallery {
	return &Gallery{resolver: resolver, logger: logger, title: "GuitarTube Chords"}
}

// Routes returns the patterns the gallery serves.
func (g *Gallery) Routes() []string { return []string{"GET /{$}"} }

// ServeHTTP implements [http.Handler].
func (g *Gallery) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	theme := models.ThemeLight
	if q := r.URL.Query().Get("theme"); q != "" {
		t, err := models.ParseTheme(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		theme = t
	}

	query := r.URL.Query().Get("q")
	page, err := g.page(query, theme)
	if err != nil {
		g.logger.Error("failed to build gallery", "query", query, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := galleryTmpl.Execute(&buf, page); err != nil {
		g.logger.Error("failed to render gallery", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (g *Gallery) page(query string, theme models.Theme) (Page, error) {
	names := g.resolver.Names()
	if query != "" {
		names = g.resolver.Suggest(query, searchLimit)
	}

	p := Page{Title: g.title, Query: query, Theme: theme, Themes: models.Themes()}
	for _, name := range names {
		voicings, err := g.resolver.Voicings(name)
		if err != nil {
			return Page{}, err
		}

		group := ChordCards{Name: name}
		for _, v := range voicings {
			key, err := variants.BuildKey(name, v.PositionType(), v.BaseFret(), theme)
			if err != nil {
				return Page{}, err
			}
			group.Cards = append(group.Cards, Card{Key: key, Label: label(v)})
		}
		p.Chords = append(p.Chords, group)
	}
	return p, nil
}

func label(s models.ChordShape) string {
	if s.PositionType() == models.PositionOpen {
		return fmt.Sprintf("%s %s", s.Name(), formatter.PositionLabel(s.PositionType()))
	}
	return fmt.Sprintf("%s %s @ %d", s.Name(), formatter.PositionLabel(s.PositionType()), s.BaseFret())
}
