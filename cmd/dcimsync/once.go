package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dcimsync/internal/presentation"

	"github.com/spf13/cobra"
)

func newOnceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "once",
		Short: "Run a single poll cycle and print what happened",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg)
			logRunningUser(logger)

			d, err := build(cfg, logger, false)
			if err != nil {
				return err
			}
			defer d.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, ok := d.orch.RunOnce(ctx)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "No camera found.")
				return nil
			}
			presentation.Printer{Writer: cmd.OutOrStdout(), Verbose: cfg.Verbose}.PrintReport(report)
			return report.Err
		},
	}
}
