package main

import (
	"dcimsync/internal/app"
	"dcimsync/internal/infra/fs"
	"dcimsync/internal/presentation"

	"github.com/spf13/cobra"
)

func newStagingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "staging",
		Short: "List files that are staged and waiting for upload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			staging := app.Staging{Root: cfg.StagingDir, FS: fs.OSFS{}, Logger: newLogger(cfg)}
			groups, err := staging.Groups()
			if err != nil {
				return err
			}
			presentation.Printer{Writer: cmd.OutOrStdout(), Verbose: cfg.Verbose}.PrintStaging(staging.Root, groups)
			return nil
		},
	}
}
