package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sidediff/internal/fold"
	"github.com/zjrosen/sidediff/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the diff engine over HTTP",
		Long: `Serve the diff engine over HTTP until interrupted.

Endpoints:
  POST /v1/diff      {"old": "...", "new": "...", "method": "words", "fold": {"context_lines": 2}}
  GET  /v1/methods
  GET  /healthz
  GET  /metrics      Prometheus metrics

Add ?format=yaml to /v1 endpoints for YAML responses.

Example:
  sidediff serve --addr :8417
  curl -s localhost:8417/v1/diff -d '{"old":"a\nb","new":"a\nc"}' | jq .summary`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := server.Config{
				Addr:         a.cfg.Server.Addr,
				MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
				Defaults:     a.options(),
				Fold:         fold.Options{ContextLines: a.cfg.Fold.ContextLines},
				Tracer:       a.tracing.Tracer(),
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cmd.Printf("sidediff listening on %s\n", cfg.Addr)
			return server.New(a.engine, cfg).ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (default from config)")
	return cmd
}
