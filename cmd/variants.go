package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/desertthunder/guitartube/internal/variants"
	"github.com/urfave/cli/v3"
)

// VariantsKey builds a variant key from its four components.
func (r *Runner) VariantsKey(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() != 4 {
		return fmt.Errorf("%w: want <name> <position> <fret> <theme>, got %d arguments", shared.ErrMissingArgument, args.Len())
	}

	fret, err := strconv.Atoi(args.Get(2))
	if err != nil {
		return fmt.Errorf("%w: fret %q is not a number", shared.ErrInvalidArgument, args.Get(2))
	}
	key, err := variants.BuildKey(args.Get(0), args.Get(1), fret, models.Theme(args.Get(3)))
	if err != nil {
		return err
	}

	if base := cmd.String("base"); base != "" {
		locator, err := variants.Locator(base, key)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n%s\n", key, locator)
	}
	return r.writePlain("%s\n", key)
}

// VariantsParse recovers the variant tuple from a key.
func (r *Runner) VariantsParse(ctx context.Context, cmd *cli.Command) error {
	key := cmd.StringArg("key")
	if key == "" {
		return fmt.Errorf("%w: key is required", shared.ErrMissingArgument)
	}

	v, err := variants.ParseKey(key)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(v, cmd.Bool("pretty"))
	}
	return r.writeTable(
		[]string{"Chord", "Position", "Fret", "Theme"},
		[][]string{{v.ChordName, v.PositionType, strconv.Itoa(v.FretPosition), string(v.Theme)}},
	)
}

// VariantsList enumerates every variant key of a chord.
func (r *Runner) VariantsList(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: chord name is required", shared.ErrMissingArgument)
	}

	positions, frets := cmd.StringSlice("position"), cmd.IntSlice("fret")
	r.logger.Debug("enumerating variants", "chord", name, "count", variants.Count(positions, frets))

	for v := range variants.Enumerate(name, positions, frets) {
		key, err := variants.Key(v)
		if err != nil {
			return err
		}
		r.writePlain("%s\n", key)
	}
	return nil
}
