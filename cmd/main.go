package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/urfave/cli/v3"
)

const (
	version           = "0.1.0"
	defaultConfigPath = "config.toml"
)

func main() {
	logger := shared.NewLogger(nil)
	if err := shared.LoadEnv(); err != nil {
		logger.Warn("ignoring .env", "error", err)
	}

	config, err := loadConfig(defaultConfigPath)
	if err != nil {
		logger.Fatalf("configuration error: %v", err)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: defaultConfigPath,
		Logger:     logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:     "gtx",
		Usage:    "Render, browse and serve guitar chord diagrams",
		Version:  version,
		Commands: runner.register(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				shared.SetLogLevel(logger, log.DebugLevel)
			}
			return ctx, nil
		},
	}

	err = app.Run(ctx, os.Args)
	stop()
	runner.Close()

	if err != nil {
		if errors.Is(errors.Unwrap(err), shared.ErrNotImplemented) || errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// loadConfig reads path when it exists and otherwise starts from the embedded defaults.
// GTX_* environment overrides apply either way.
func loadConfig(path string) (*shared.Config, error) {
	config, err := shared.LoadConfig(path)
	if err == nil {
		return config, nil
	}
	if !errors.Is(err, shared.ErrMissingConfig) {
		return nil, err
	}

	config = shared.DefaultConfig()
	if err := shared.ApplyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	return config, nil
}
