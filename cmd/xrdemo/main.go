// Command xrdemo drives an XR session through its whole lifecycle against
// the simulated OpenXR runtime and prints what the runtime saw.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o runOptions
	root := &cobra.Command{
		Use:   "xrdemo",
		Short: "Run an XR session against a simulated runtime",
		Long: `xrdemo creates, begins, renders, ends and destroys one XR session
using the in-process OpenXR runtime. Settings come from an optional YAML
file; see the config package for the format.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), o)
		},
	}
	f := root.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML configuration file")
	f.IntVar(&o.ticks, "ticks", 120, "ticks to render while the session runs")
	f.BoolVar(&o.pipelined, "pipelined", false, "run the render world one tick behind the main world")
	f.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.BoolVar(&o.noPassthrough, "no-passthrough", false, "simulate a runtime without passthrough")

	root.AddCommand(newConfigCmd())
	return root
}

func newConfigCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := effectiveConfig(path)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "", "YAML configuration file")
	return cmd
}
