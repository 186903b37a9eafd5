package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/guitartube/internal/diagram"
	"github.com/desertthunder/guitartube/internal/fingering"
	"github.com/desertthunder/guitartube/internal/formatter"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/desertthunder/guitartube/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ChordsList lists every chord in the table with its voicings.
func (r *Runner) ChordsList(ctx context.Context, cmd *cli.Command) error {
	resolver := r.resolver()
	names := resolver.Names()

	if cmd.Bool("json") {
		return r.writeJSON(names, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		voicings, err := resolver.Voicings(name)
		if err != nil {
			return err
		}
		positions := make([]string, len(voicings))
		for i, v := range voicings {
			positions[i] = fmt.Sprintf("%s@%d %s", v.PositionType(), v.BaseFret(), models.FormatSymbols(v.Frets()))
		}
		rows = append(rows, []string{name, strconv.Itoa(len(voicings)), strings.Join(positions, ", ")})
	}
	return r.writeTable([]string{"Chord", "Voicings", "Shapes"}, rows, alignLeft, alignRight)
}

// ChordsShow prints every voicing of a chord. With --page the tab page is consulted when
// the table lacks the chord.
func (r *Runner) ChordsShow(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: chord name is required", shared.ErrMissingArgument)
	}

	resolver := r.resolver()
	voicings, err := resolver.Voicings(name)
	if page := cmd.String("page"); err != nil && page != "" {
		r.logger.Info("chord not in table, checking tab page", "chord", name, "page", page)
		data, ferr := r.tabSource(page).Fetch(ctx, page)
		if ferr != nil {
			return ferr
		}
		shape, rerr := resolver.ResolveFrom(name, data)
		if rerr != nil {
			return rerr
		}
		voicings, err = []models.ChordShape{shape}, nil
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(voicings, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d voicings)", name, len(voicings)))
	for _, v := range voicings {
		box, err := diagram.RenderText(v)
		if err != nil {
			return err
		}
		r.writePlainln("%s @ %d", formatter.PositionLabel(v.PositionType()), v.BaseFret())
		r.writePlain("%s", box)
	}
	return nil
}

// ChordsFingering assigns fingers to a fret pattern.
func (r *Runner) ChordsFingering(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("frets")
	if raw == "" {
		return fmt.Errorf("%w: fret pattern is required", shared.ErrMissingArgument)
	}

	frets, err := models.ParseFrets(raw)
	if err != nil {
		return err
	}

	fingers := fingering.Assign(frets)
	rule := fingering.Rule(frets)
	if rule == "" {
		rule = "none"
	}

	return r.writeTable(
		[]string{"Frets", "Fingering", "Rule"},
		[][]string{{models.FormatSymbols(frets), models.FormatSymbols(fingers), rule}},
	)
}

// ChordsRender renders a single variant as SVG to stdout, a file, or the store.
func (r *Runner) ChordsRender(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: chord name is required", shared.ErrMissingArgument)
	}
	theme, err := models.ParseTheme(cmd.String("theme"))
	if err != nil {
		return err
	}
	v := models.VariantKey{
		ChordName:    name,
		PositionType: cmd.String("position"),
		FretPosition: cmd.Int("fret"),
		Theme:        theme,
	}

	if cmd.Bool("store") {
		engine, err := r.renderEngine()
		if err != nil {
			return err
		}
		res, err := engine.RenderVariant(ctx, v)
		if err != nil {
			return err
		}
		r.logger.Info("diagram published", "key", res.Key, "locator", res.Locator, "size", res.Size)
		return r.writePlain("%s\n", res.Locator)
	}

	shape, svg, err := r.drawEngine().Draw(v)
	if err != nil {
		return err
	}
	r.logger.Debug("rendered diagram", "shape", shape.String(), "theme", theme)

	if out := cmd.String("output"); out != "" {
		if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		r.logger.Info("diagram written", "path", out, "content_type", tasks.ContentType)
		if cmd.Bool("open") {
			if err := shared.OpenBrowser(out); err != nil {
				r.logger.Warn("could not open diagram", "path", out, "error", err)
			}
		}
		return nil
	}
	return r.writePlain("%s", svg)
}

// ChordsExport exports the voicings of the named chords, or of the whole table.
func (r *Runner) ChordsExport(ctx context.Context, cmd *cli.Command) error {
	resolver := r.resolver()
	names := cmd.Args().Slice()
	if len(names) == 0 {
		names = resolver.Names()
	}

	var shapes []models.ChordShape
	for _, name := range names {
		voicings, err := resolver.Voicings(name)
		if err != nil {
			return err
		}
		shapes = append(shapes, voicings...)
	}

	format, title := cmd.String("format"), cmd.String("title")
	if out := cmd.String("output"); out != "" {
		if err := formatter.WriteExport(shapes, format, title, out); err != nil {
			return err
		}
		r.logger.Info("exported shapes", "count", len(shapes), "format", format, "path", out)
		return nil
	}

	data, err := formatter.Export(shapes, format, title)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// ChordsSuggest prints chord names that fuzzily match a query.
func (r *Runner) ChordsSuggest(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}

	suggestions := r.resolver().Suggest(query, cmd.Int("limit"))
	if len(suggestions) == 0 {
		return fmt.Errorf("%w: no chords match %q", shared.ErrNotFound, query)
	}
	for _, s := range suggestions {
		r.writePlain("%s\n", s)
	}
	return nil
}
