package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/guitartube/internal/formatter"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/repositories"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/desertthunder/guitartube/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Ingest fetches a tab page, parses its chord shapes and caches them.
func (r *Runner) Ingest(ctx context.Context, cmd *cli.Command) error {
	ref := cmd.StringArg("source")
	if ref == "" {
		return fmt.Errorf("%w: tab page URL or path is required", shared.ErrMissingArgument)
	}

	var cacher tasks.ShapeCacher
	if !cmd.Bool("dry-run") {
		db, err := r.database()
		if err != nil {
			return err
		}
		cacher = repositories.NewShapeCacheAdapter(repositories.NewShapeRepository(db))
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPage, tasks.ParsePage:
				r.logger.Info(update.Message)
			case tasks.CacheShapes:
				r.logger.Debug(update.Message)
			}
		}
	}()

	engine := tasks.NewRenderEngine(nil, nil, nil)
	result, err := engine.Ingest(ctx, progressCh, r.tabSource(ref), cacher, ref)
	close(progressCh)
	<-printed
	if err != nil {
		return err
	}

	for _, e := range result.Errors {
		r.logger.Warn("failed to cache shape", "error", e)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result.Shapes, cmd.Bool("pretty"))
	}

	rows := make([][]string, 0, len(result.Shapes))
	for _, s := range result.Shapes {
		rows = append(rows, shapeRow(s))
	}
	r.writeTable([]string{"Chord", "Position", "Base Fret", "Frets", "Fingering"}, rows)
	if cacher != nil {
		r.writePlain("✓ %d chords, %d shapes, %d newly cached\n", len(result.Chords), len(result.Shapes), result.Cached)
	}
	return nil
}

func shapeRow(s models.ChordShape) []string {
	fingers := ""
	if s.HasFingering() {
		fingers = models.FormatSymbols(s.Fingering())
	}
	return []string{
		s.Name(),
		formatter.PositionLabel(s.PositionType()),
		fmt.Sprint(s.BaseFret()),
		models.FormatSymbols(s.Frets()),
		fingers,
	}
}
