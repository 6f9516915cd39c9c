package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/hxstate/internal/errors"
	"github.com/vango-dev/hxstate/pkg/server"
	"github.com/vango-dev/hxstate/pkg/telemetry"
)

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve [document]",
		Short: "Serve a document with live server-side bindings",
		Long: `Serve a document over HTTP. GET / renders a fresh copy with every effect
applied; /ws opens a live session that accepts state writes as JSON and
replies with the re-rendered page.

The document defaults to server.document from the config file.

Examples:
  hxstate serve index.html
  hxstate serve --addr=:9000 s3://pages/index.html`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uri := a.cfg.Server.Document
			if len(args) == 1 {
				uri = args[0]
			}
			if uri == "" {
				return errArgs("no document given and server.document is not set")
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.serve(ctx, uri)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}

func (a *app) serve(ctx context.Context, uri string) error {
	page, err := a.cfg.Loader().Read(ctx, uri)
	if err != nil {
		return err
	}
	opts, err := a.bindingOptions()
	if err != nil {
		return err
	}

	sc := server.DefaultServerConfig()
	sc.Address = a.cfg.Server.Addr
	sc.ShutdownTimeout = a.cfg.ShutdownTimeout()
	sc.MetricsPath = a.cfg.Metrics.Path
	if len(a.cfg.Server.AllowedOrigins) > 0 {
		sc.CheckOrigin = server.AllowOrigins(a.cfg.Server.AllowedOrigins...)
	}

	so := server.Options{
		Page:    page,
		Binding: opts,
		Tracer:  telemetry.NewTracer(""),
	}
	if a.cfg.Metrics.Enabled {
		so.Metrics = telemetry.NewMetrics()
	}

	a.logger.Info("serving document", "document", uri, "address", sc.Address, "engine", a.cfg.Effects.Engine)
	if err := server.New(sc, so).Run(ctx); err != nil {
		return errors.New("H140").Wrap(err)
	}
	return nil
}
