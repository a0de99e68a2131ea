package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthprobe/config"
	"github.com/jonwraymond/healthprobe/health"
	"github.com/jonwraymond/healthprobe/observe"
	"github.com/jonwraymond/healthprobe/probe"
)

func newCheckCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run every check once and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			path, _ := cmd.Flags().GetString("config")
			s, err := config.Load(ctx, path)
			if err != nil {
				return err
			}
			return runCheck(ctx, s, probe.DefaultFactory(s), cmd.OutOrStdout(), cmd.ErrOrStderr(), strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit 1 when any check is unhealthy")
	return cmd
}

func runCheck(ctx context.Context, s *config.Settings, factory probe.Factory, out, logs io.Writer, strict bool) (err error) {
	a, err := newApp(ctx, s, factory, logs)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(context.WithoutCancel(ctx)); err == nil {
			err = cerr
		}
	}()

	results := a.agg.CheckAll(ctx)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return err
	}

	if unhealthy := results.Unhealthy(); strict && len(unhealthy) > 0 {
		slices.Sort(unhealthy)
		a.logger.Warn(ctx, "unhealthy checks", observe.Field{Key: "checks", Value: unhealthy})
		return fmt.Errorf("%w: %s", health.ErrCheckFailed, strings.Join(unhealthy, ", "))
	}
	return nil
}
