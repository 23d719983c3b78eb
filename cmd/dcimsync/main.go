package main

import (
	"fmt"
	"os"

	"dcimsync/internal/config"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	cfgFile string
	v       *viper.Viper
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitWithError(err)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:           "dcimsync",
		Short:         "Offload new pictures from Wi-Fi SD cards and USB drives to a photo uploader",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is $HOME/.dcimsync.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
	root.PersistentFlags().String("staging-dir", "", "directory holding files waiting for upload")
	_ = opts.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))
	_ = opts.v.BindPFlag("staging_dir", root.PersistentFlags().Lookup("staging-dir"))

	root.AddCommand(
		newRunCmd(opts),
		newOnceCmd(opts),
		newHistoryCmd(opts),
		newStagingCmd(opts),
		newServiceCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.v, o.cfgFile)
	if err != nil {
		return config.Config{}, appErrors.Wrap(appErrors.InvalidConfig, "config", o.cfgFile, err)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) logging.Logger {
	return logging.New(os.Stderr, cfg.Verbose, cfg.Log.Format, cfg.Log.Level)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, appErrors.UserMessage(err))
	os.Exit(1)
}
