package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/guitartube/internal/tasks"
	"github.com/urfave/cli/v3"
)

// RenderBulk renders every variant of the given chords to the store and records them.
func (r *Runner) RenderBulk(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.renderEngine()
	if err != nil {
		return err
	}

	opts := tasks.BulkRenderOpts{
		PositionTypes: cmd.StringSlice("position"),
		Frets:         cmd.IntSlice("fret"),
		NumWorkers:    cmd.Int("workers"),
		RateLimit:     cmd.Float("rate"),
		ManifestPath:  cmd.String("manifest"),
	}
	if opts.ManifestPath == "" && !cmd.Bool("no-manifest") {
		opts.ManifestPath = filepath.Join(r.config.Render.OutputDir, "manifest.json")
	}
	if cmd.Bool("no-manifest") {
		opts.ManifestPath = ""
	}

	names := cmd.Args().Slice()
	r.logger.Info("starting bulk render", "chords", len(names), "workers", opts.NumWorkers, "store", r.store.Name())

	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			switch update.Phase {
			case tasks.EnumerateVariants:
				r.writePlain("🎸 %s\n\n", update.Message)
			case tasks.RenderVariants:
				r.writePlain("   %s\n", update.Message)
			case tasks.WriteManifest:
				r.writePlain("\n📝 %s\n", update.Message)
			}
		}
	}()

	result, err := engine.BulkRender(ctx, progressCh, names, opts)
	close(progressCh)
	<-printed

	if result != nil {
		r.writePlain("\n")
		r.writePlainHeader("Render Complete!")
		r.writeTable(
			[]string{"Variants", "Rendered", "Skipped", "Failed"},
			[][]string{{
				strconv.Itoa(result.TotalVariants),
				strconv.Itoa(result.Rendered),
				strconv.Itoa(result.Skipped),
				strconv.Itoa(result.Failed),
			}},
			alignRight, alignRight, alignRight, alignRight,
		)
		if result.ManifestPath != "" {
			r.writePlain("Manifest: %s\n", result.ManifestPath)
		}
		if result.Failed > 0 {
			r.writePlain("\nFailed to render %d variants:\n", result.Failed)
			for _, res := range result.Results {
				if res.Status == tasks.StatusFailed {
					r.writePlain("  - %s: %v\n", res.Variant, res.Error)
				}
			}
		}
	}

	if err != nil {
		return fmt.Errorf("bulk render: %w", err)
	}
	return nil
}
