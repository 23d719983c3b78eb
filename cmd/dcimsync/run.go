package main

import (
	"context"
	"os/user"
	"time"

	"dcimsync/internal/config"
	"dcimsync/internal/logging"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"
)

const stopTimeout = 45 * time.Second

func newRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Poll for cameras until stopped",
		Long: `Polls for ez Share Wi-Fi cards and marked USB drives, copies new pictures
into staging, runs the uploader and records what was uploaded.

This is also what the installed system service runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			prg := &program{cfg: cfg, logger: newLogger(cfg)}
			s, err := service.New(prg, serviceConfig(opts))
			if err != nil {
				return err
			}
			return s.Run()
		},
	}
	cmd.Flags().Duration("poll-interval", 0, "time between polls")
	_ = opts.v.BindPFlag("poll_interval", cmd.Flags().Lookup("poll-interval"))
	return cmd
}

// program adapts the poll loop to the service manager. Start must not
// block, so the loop runs on its own goroutine until Stop cancels it.
type program struct {
	cfg    config.Config
	logger logging.Logger

	d      *daemon
	cancel context.CancelFunc
	done   chan struct{}
}

func (p *program) Start(s service.Service) error {
	logRunningUser(p.logger)

	d, err := build(p.cfg, p.logger, true)
	if err != nil {
		return err
	}
	p.d = d
	if d.metrics != nil {
		d.metrics.Start()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go func() {
		defer close(p.done)
		if err := d.orch.Run(ctx); err != nil {
			p.logger.Errorf("Poll loop stopped: %v", err)
		}
	}()
	return nil
}

func (p *program) Stop(s service.Service) error {
	p.logger.Infof("Stopping...")
	if p.cancel != nil {
		p.cancel()
	}
	if p.done != nil {
		select {
		case <-p.done:
		case <-time.After(stopTimeout):
			p.logger.Warnf("Poll loop did not stop within %s", stopTimeout)
		}
	}
	if p.d == nil {
		return nil
	}
	if p.d.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.d.metrics.Shutdown(ctx); err != nil {
			p.logger.Warnf("Metrics server forced to shut down: %v", err)
		}
	}
	return p.d.Close()
}

func logRunningUser(logger logging.Logger) {
	u, err := user.Current()
	if err != nil {
		logger.Warnf("Could not determine the running user: %v", err)
		return
	}
	logger.Infof("Running as %q", u.Username)
}
