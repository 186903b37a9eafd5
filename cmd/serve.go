package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/desertthunder/guitartube/internal/server"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/desertthunder/guitartube/internal/tasks"
	"github.com/desertthunder/guitartube/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the diagram web service until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	port := cmd.Int("port")
	if port < 0 || port > 65535 {
		return fmt.Errorf("%w: port %d", shared.ErrInvalidArgument, port)
	}
	addr := net.JoinHostPort(cmd.String("host"), strconv.Itoa(port))

	logger := shared.WithLogger(r.logger, "component", "server")
	resolver := r.resolver()
	engine := tasks.NewRenderEngine(resolver, nil, nil)
	router := server.New(engine, logger, version, web.NewGallery(resolver, logger))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: failed to listen on %s: %v", shared.ErrServiceUnavailable, addr, err)
	}
	logger.Info("starting diagram server", "addr", ln.Addr().String(), "chords", len(resolver.Names()))
	for _, route := range router.Routes() {
		logger.Debug("route", "pattern", route)
	}

	if cmd.Bool("open") {
		gallery := "http://" + ln.Addr().String() + "/"
		if err := shared.OpenBrowser(gallery); err != nil {
			logger.Warn("could not open gallery", "url", gallery, "error", err)
		}
	}
	return server.ServeListener(ctx, ln, router, logger)
}
