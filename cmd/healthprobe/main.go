// Command healthprobe serves the aggregated health of configured
// dependencies, or prints it once.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthprobe/health"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "healthprobe",
		Short:         "Aggregated health checks for service dependencies",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML settings file (default $HEALTHPROBE_CONFIG)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// check --strict already logged the unhealthy checks.
		if !errors.Is(err, health.ErrCheckFailed) {
			fmt.Fprintln(os.Stderr, "healthprobe:", err)
		}
		os.Exit(1)
	}
}
