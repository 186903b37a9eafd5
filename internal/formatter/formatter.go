// Package formatter exports chord shapes to various formats (CSV, JSON, Markdown, plain
// text) and writes bulk render manifests.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/guitartube/internal/diagram"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Export formats accepted by [Export].
const (
	FormatCSV      = "csv"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists the supported export formats.
func Formats() []string {
	return []string{FormatCSV, FormatJSON, FormatMarkdown, FormatText}
}

// PositionLabel returns a display label for a position type, e.g. "Barre" or "E-Shape".
func PositionLabel(positionType string) string {
	return cases.Title(language.English).String(positionType)
}

func fingeringColumn(s models.ChordShape) string {
	if !s.HasFingering() {
		return ""
	}
	return models.FormatSymbols(s.Fingering())
}

// ShapesToCSV converts shapes to CSV with columns: Name, Position, Base Fret, Frets, Fingering
func ShapesToCSV(shapes []models.ChordShape) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Position", "Base Fret", "Frets", "Fingering"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range shapes {
		record := []string{
			s.Name(),
			s.PositionType(),
			strconv.Itoa(s.BaseFret()),
			models.FormatSymbols(s.Frets()),
			fingeringColumn(s),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ShapesToJSON converts shapes to an indented JSON array.
func ShapesToJSON(shapes []models.ChordShape) ([]byte, error) {
	if shapes == nil {
		shapes = []models.ChordShape{}
	}
	data, err := json.MarshalIndent(shapes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shapes: %w", err)
	}
	return append(data, '\n'), nil
}

// ShapesToMarkdown converts shapes to a Markdown chord sheet: a summary table followed by
// a text diagram of each shape.
func ShapesToMarkdown(title string, shapes []models.ChordShape) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "chord sheet"
	}
	fmt.Fprintf(&buf, "# %s\n\n", cases.Title(language.English).String(title))
	fmt.Fprintf(&buf, "**Shapes**: %d\n\n", len(shapes))

	buf.WriteString("| Chord | Position | Base Fret | Frets | Fingering |\n")
	buf.WriteString("|---|---|---|---|---|\n")
	for _, s := range shapes {
		fmt.Fprintf(&buf, "| %s | %s | %d | `%s` | `%s` |\n",
			s.Name(), PositionLabel(s.PositionType()), s.BaseFret(),
			models.FormatSymbols(s.Frets()), fingeringColumn(s))
	}

	if len(shapes) > 0 {
		buf.WriteString("\n## Diagrams\n")
	}
	for _, s := range shapes {
		text, err := diagram.RenderText(s)
		if err != nil {
			return nil, fmt.Errorf("failed to draw %s: %w", s, err)
		}
		fmt.Fprintf(&buf, "\n```text\n%s```\n", text)
	}
	return buf.Bytes(), nil
}

// ShapesToText converts shapes to plain-text chord boxes separated by blank lines.
func ShapesToText(shapes []models.ChordShape) ([]byte, error) {
	var buf bytes.Buffer
	for i, s := range shapes {
		text, err := diagram.RenderText(s)
		if err != nil {
			return nil, fmt.Errorf("failed to draw %s: %w", s, err)
		}
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(text)
	}
	return buf.Bytes(), nil
}

// Export converts shapes to format. Markdown output uses title as its heading.
func Export(shapes []models.ChordShape, format, title string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ShapesToCSV(shapes)
	case FormatJSON, "":
		return ShapesToJSON(shapes)
	case FormatMarkdown, "md":
		return ShapesToMarkdown(title, shapes)
	case FormatText, "text":
		return ShapesToText(shapes)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport exports shapes and writes them to path, creating parent directories.
func WriteExport(shapes []models.ChordShape, format, title, path string) error {
	data, err := Export(shapes, format, title)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// Manifest summarizes a bulk render run.
type Manifest struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Total       int             `json:"total"`
	Rendered    int             `json:"rendered"`
	Skipped     int             `json:"skipped"`
	Failed      int             `json:"failed"`
	Entries     []ManifestEntry `json:"entries"`
}

// ManifestEntry records one variant of a bulk render.
type ManifestEntry struct {
	Key          string `json:"key"`
	Chord        string `json:"chord"`
	PositionType string `json:"position_type"`
	Fret         int    `json:"fret"`
	Theme        string `json:"theme"`
	Status       string `json:"status"`
	Locator      string `json:"locator,omitempty"`
	Checksum     string `json:"checksum,omitempty"`
	Size         int    `json:"size,omitempty"`
	Error        string `json:"error,omitempty"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	if m == nil {
		return fmt.Errorf("%w: manifest is nil", shared.ErrInvalidArgument)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// ReadManifest parses a manifest written by [WriteManifest].
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

func writeFile(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: output path is empty", shared.ErrMissingArgument)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
