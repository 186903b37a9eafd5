package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/desertthunder/guitartube/internal/tasks"
	"github.com/desertthunder/guitartube/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive chord browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	engine, err := r.renderEngine()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	opts := tasks.BulkRenderOpts{
		PositionTypes: r.config.Render.PositionTypes,
		Frets:         r.config.Render.Frets,
		NumWorkers:    r.config.Render.Workers,
		RateLimit:     r.config.Render.RateLimit,
	}
	return ui.Run(ctx, engine, opts, fileLogger)
}
