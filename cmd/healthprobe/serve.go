package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthprobe/config"
	"github.com/jonwraymond/healthprobe/observe"
	"github.com/jonwraymond/healthprobe/probe"
	"github.com/jonwraymond/healthprobe/server"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve /health, /healthz and /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			path, _ := cmd.Flags().GetString("config")
			s, err := config.Load(ctx, path)
			if err != nil {
				return err
			}

			a, err := newApp(ctx, s, probe.DefaultFactory(s), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
				defer cancel()
				if err := a.close(closeCtx); err != nil {
					a.logger.Warn(closeCtx, "shutdown incomplete", observe.Field{Key: "error", Value: err.Error()})
				}
			}()

			if addr == "" {
				addr = s.String(config.KeyHTTPAddr, config.DefaultHTTPAddr)
			}
			return server.New(a.agg, a.obs.Gatherer(), a.logger).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default $HTTP_ADDR or :8000)")
	return cmd
}
