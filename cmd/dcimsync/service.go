package main

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

func serviceConfig(opts *rootOptions) *service.Config {
	arguments := []string{"run"}
	if opts.cfgFile != "" {
		arguments = append(arguments, "--config", opts.cfgFile)
	}
	return &service.Config{
		Name:        "dcimsync",
		DisplayName: "dcimsync camera offloader",
		Description: "Copies new pictures from ez Share cards and USB drives to the photo uploader",
		Arguments:   arguments,
	}
}

func newServiceCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "service install|uninstall|start|stop|restart",
		Short:     "Manage dcimsync as a system service",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: service.ControlAction[:],
		RunE: func(cmd *cobra.Command, args []string) error {
			action := args[0]
			if action == "install" {
				// fail before installing a service that cannot start
				if _, err := opts.load(); err != nil {
					return err
				}
			}
			s, err := service.New(&program{}, serviceConfig(opts))
			if err != nil {
				return err
			}
			if err := service.Control(s, action); err != nil {
				return fmt.Errorf("failed to %s service: %w", action, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Service action '%s' completed successfully.\n", action)
			return nil
		},
	}
}
