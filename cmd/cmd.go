// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// setupCommand handles database and configuration setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.SetupStatus,
			},
			{
				Name:  "config",
				Usage: "Write the example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the new configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// chordsCommand handles chord table lookups and single diagram renders
func chordsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "chords",
		Aliases: []string{"chord", "c"},
		Usage:   "Look up, draw and export chord shapes",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List chords in the table",
				Flags:  jsonFlags(),
				Action: r.ChordsList,
			},
			{
				Name:  "show",
				Usage: "Show every voicing of a chord as a text diagram",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: append(jsonFlags(),
					&cli.StringFlag{
						Name:  "page",
						Usage: "Tab page URL or file to fall back to when the chord is not in the table",
					},
				),
				Action: r.ChordsShow,
			},
			{
				Name:  "fingering",
				Usage: "Assign fingers to a fret pattern such as x32010",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "frets"},
				},
				Action: r.ChordsFingering,
			},
			{
				Name:  "render",
				Usage: "Render one chord diagram as SVG",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "position",
						Aliases: []string{"p"},
						Usage:   "Position type (open, barre, ...)",
						Value:   "open",
					},
					&cli.IntFlag{
						Name:    "fret",
						Aliases: []string{"f"},
						Usage:   "Base fret of the voicing",
					},
					&cli.StringFlag{
						Name:    "theme",
						Aliases: []string{"t"},
						Usage:   "Diagram theme (light or dark)",
						Value:   "light",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the SVG here instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "store",
						Usage: "Publish to the configured store and record it",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the written file in the default viewer",
					},
				},
				Action: r.ChordsRender,
			},
			{
				Name:      "export",
				Usage:     "Export chord shapes (all when no names are given)",
				ArgsUsage: "[names...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"F"},
						Usage:   "Export format (csv, json, markdown, txt)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
					&cli.StringFlag{
						Name:  "title",
						Usage: "Markdown heading",
						Value: "chord sheet",
					},
				},
				Action: r.ChordsExport,
			},
			{
				Name:  "suggest",
				Usage: "Suggest chord names matching a query",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of suggestions",
						Value:   5,
					},
				},
				Action: r.ChordsSuggest,
			},
		},
	}
}

// variantsCommand handles variant key operations
func variantsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "variants",
		Aliases: []string{"variant", "v"},
		Usage:   "Build, parse and enumerate variant keys",
		Commands: []*cli.Command{
			{
				Name:      "key",
				Usage:     "Build the key of a variant",
				ArgsUsage: "<name> <position> <fret> <theme>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "base",
						Usage: "Also print the locator under this base URL or directory",
					},
				},
				Action: r.VariantsKey,
			},
			{
				Name:  "parse",
				Usage: "Parse a key back into its variant",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "key"},
				},
				Flags:  jsonFlags(),
				Action: r.VariantsParse,
			},
			{
				Name:  "list",
				Usage: "Enumerate the variants of a chord",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags:  positionFlags(r),
				Action: r.VariantsList,
			},
		},
	}
}

func positionFlags(r *Runner) []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "position",
			Aliases: []string{"p"},
			Usage:   "Position types to enumerate (repeatable)",
			Value:   r.config.Render.PositionTypes,
		},
		&cli.IntSliceFlag{
			Name:    "fret",
			Aliases: []string{"f"},
			Usage:   "Fret positions to enumerate (repeatable)",
			Value:   r.config.Render.Frets,
		},
	}
}

// renderCommand handles bulk diagram renders
func renderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render diagrams to the configured store",
		Commands: []*cli.Command{
			{
				Name:      "bulk",
				Usage:     "Render every variant of the given chords (all when none are given)",
				ArgsUsage: "[names...]",
				Flags: append(positionFlags(r),
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent workers",
						Value:   r.config.Render.Workers,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Store writes per second",
						Value: r.config.Render.RateLimit,
					},
					&cli.StringFlag{
						Name:  "manifest",
						Usage: "Manifest path (default: <output_dir>/manifest.json)",
					},
					&cli.BoolFlag{
						Name:  "no-manifest",
						Usage: "Skip writing the manifest",
					},
				),
				Action: r.RenderBulk,
			},
		},
	}
}

// ingestCommand handles tab page ingestion
func ingestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "ingest",
		Usage: "Parse chord shapes from a tab page URL or file into the shape cache",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "source"},
		},
		Flags: append(jsonFlags(),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Parse without caching",
			},
		),
		Action: r.Ingest,
	}
}

// serveCommand starts the diagram web service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve diagrams, chord JSON and the gallery over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host",
				Value: r.config.Server.Host,
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port",
				Value: r.config.Server.Port,
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the gallery in a browser once listening",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive chord browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive chord browser",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file used while the TUI owns the terminal",
				Value: "./tmp/gtx-tui.log",
			},
		},
		Action: r.TUI,
	}
}
