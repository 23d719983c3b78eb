package main

import (
	"context"
	"fmt"
	"slices"

	"dcimsync/internal/history"
	"dcimsync/internal/presentation"

	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "history [source]",
		Short: "Show which files were already uploaded, per source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.History, newLogger(cfg))
			if err != nil {
				return err
			}
			defer store.Close()

			histories, sources, err := loadHistories(cmd.Context(), store, args)
			if err != nil {
				return err
			}

			printer := presentation.Printer{Writer: cmd.OutOrStdout(), Verbose: cfg.Verbose}
			if asYAML {
				return printer.PrintHistoryYAML(histories)
			}
			if len(sources) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
			}
			for _, source := range sources {
				printer.PrintHistory(source, histories[source])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print YAML instead of a summary")
	return cmd
}

// loadHistories reads the histories of the requested sources, or of every
// known source when none are named. Unknown sources come back empty and are
// never loaded, since loading a missing text history creates it.
func loadHistories(ctx context.Context, store history.Store, requested []string) (map[string][]string, []string, error) {
	known, err := store.Sources(ctx)
	if err != nil {
		return nil, nil, err
	}
	sources := requested
	if len(sources) == 0 {
		sources = known
	}

	histories := make(map[string][]string, len(sources))
	for _, source := range sources {
		if !slices.Contains(known, source) {
			histories[source] = nil
			continue
		}
		names, err := store.Load(ctx, source)
		if err != nil {
			return nil, nil, err
		}
		histories[source] = names
	}
	return histories, sources, nil
}
