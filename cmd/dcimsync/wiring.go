package main

import (
	"errors"

	"dcimsync/internal/app"
	"dcimsync/internal/config"
	"dcimsync/internal/domain"
	"dcimsync/internal/history"
	"dcimsync/internal/infra/exif"
	"dcimsync/internal/infra/ezshare"
	"dcimsync/internal/infra/fs"
	"dcimsync/internal/infra/nmcli"
	"dcimsync/internal/infra/uploader"
	"dcimsync/internal/infra/usb"
	"dcimsync/internal/logging"
	"dcimsync/internal/metrics"
)

// daemon is everything "run" and "once" need, assembled from config.
type daemon struct {
	orch    *app.Orchestrator
	history history.Store
	watcher *usb.MountWatcher
	metrics *metrics.Server
}

func (d *daemon) Close() error {
	var errs []error
	if d.watcher != nil {
		errs = append(errs, d.watcher.Close())
	}
	if d.history != nil {
		errs = append(errs, d.history.Close())
	}
	return errors.Join(errs...)
}

func build(cfg config.Config, logger logging.Logger, withWatcher bool) (*daemon, error) {
	store, err := history.Open(cfg.History, logger)
	if err != nil {
		return nil, err
	}
	d := &daemon{history: store}

	filesystem := fs.OSFS{}
	clock := app.SystemClock{}
	network := nmcli.Client{Logger: logger.With("component", "nmcli")}

	var recorder app.Recorder
	if cfg.Metrics.Addr != "" {
		rec := metrics.NewRecorder()
		recorder = rec
		d.metrics = metrics.NewServer(cfg.Metrics.Addr, rec, logger)
	}

	listers := map[domain.AccessMode]app.Lister{}
	transports := map[domain.AccessMode]app.Transport{}
	finders := app.Finders{Logger: logger}

	if cfg.EzShare.Enabled {
		card, err := ezshare.New(cfg.EzShare.BaseURL, cfg.EzShare.ListingPath, cfg.Fetch.Timeout, logger.With("component", "ezshare"))
		if err != nil {
			d.Close()
			return nil, err
		}
		listers[domain.ModeNetwork] = card
		transports[domain.ModeNetwork] = card
		finders.List = append(finders.List, ezshare.Finder{
			Scanner:     network,
			Prefix:      cfg.EzShare.SSIDPrefix,
			Password:    cfg.EzShare.Password,
			DefaultName: cfg.EzShare.DefaultName,
			Logger:      logger,
		})
	}

	if cfg.USB.Enabled {
		drive := usb.Drive{Extensions: cfg.USB.Extensions, Logger: logger.With("component", "usb")}
		listers[domain.ModeFilesystem] = drive
		transports[domain.ModeFilesystem] = drive
		finders.List = append(finders.List, usb.Finder{
			MediaRoot:    cfg.USB.MediaRoot,
			MarkerPrefix: cfg.USB.MarkerPrefix,
			DefaultName:  cfg.USB.DefaultName,
			Logger:       logger,
		})
	}

	staging := app.Staging{Root: cfg.StagingDir, FS: filesystem, Logger: logger}
	fetcher := &app.Fetcher{
		Transports: transports,
		FS:         filesystem,
		Staging:    staging,
		Resolver: app.DateResolver{
			Exif:   exif.Reader{},
			Offset: cfg.EzShare.TimeOffset,
			Clock:  clock,
			Logger: logger,
		},
		ScratchDir:  cfg.ScratchDir,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		BackoffBase: cfg.Fetch.BackoffBase,
		Clock:       clock,
		Recorder:    recorder,
		Logger:      logger,
	}

	d.orch = &app.Orchestrator{
		Finder:   finders,
		Listers:  listers,
		Planner:  app.Planner{Logger: logger},
		Executor: &app.Executor{Fetcher: fetcher, Recorder: recorder, Logger: logger},
		History:  store,
		Staging:  staging,
		Uploader: uploader.Process{
			Command:       cfg.Uploader.Command,
			Args:          cfg.Uploader.Args,
			SuccessPhrase: cfg.Uploader.SuccessPhrase,
			Logger:        logger.With("component", "uploader"),
		},
		Network: network,
		Unmounter: usb.Unmounter{
			Command: cfg.USB.UnmountCommand,
			Logger:  logger,
		},
		Clock:        clock,
		Recorder:     recorder,
		Logger:       logger,
		PollInterval: cfg.PollInterval,
	}

	if withWatcher && cfg.USB.Enabled && cfg.USB.Watch {
		watcher, err := usb.Watch(cfg.USB.MediaRoot, logger)
		if err != nil {
			logger.Warnf("Not watching %q for new drives: %v", cfg.USB.MediaRoot, err)
		} else {
			d.watcher = watcher
			d.orch.Wake = watcher.Wake()
		}
	}
	return d, nil
}
