package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dcimsync/internal/domain"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"

	"github.com/google/uuid"
)

const (
	DefaultPollInterval = 10 * time.Second

	// restoreTimeout bounds the network restore that runs after the cycle's
	// own context has been cancelled.
	restoreTimeout = 30 * time.Second
)

// Orchestrator runs the poll loop: find a camera, list it, fetch what is new,
// hand the link back, upload, and commit history once the upload succeeded.
// It processes one source at a time on the calling goroutine.
type Orchestrator struct {
	Finder    SourceFinder
	Listers   map[domain.AccessMode]Lister
	Planner   Planner
	Executor  *Executor
	History   HistoryStore
	Staging   Staging
	Uploader  Uploader
	Network   Network
	Unmounter Unmounter
	Clock     Clock
	Recorder  Recorder
	Logger    logging.Logger

	PollInterval time.Duration
	// Wake, when set, ends an idle wait early (e.g. a drive was mounted).
	Wake <-chan struct{}
	// OnTransition is called on every state change.
	OnTransition func(from, to State)
	NewID        func() string

	state State
}

func (o *Orchestrator) State() State {
	return o.state
}

// Run polls until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.validate(); err != nil {
		return err
	}
	o.Logger.Infof("Polling for cameras every %s", o.interval())
	for {
		if ctx.Err() != nil {
			o.Logger.Infof("Bye!")
			return nil
		}
		if report, ok := o.RunOnce(ctx); ok && report.Err == nil {
			o.Logger.Verbosef("Cycle %s finished in %s", report.ID, report.Finished.Sub(report.Started).Round(time.Millisecond))
		}
		if err := o.idle(ctx); err != nil {
			o.Logger.Infof("Bye!")
			return nil
		}
	}
}

// RunOnce performs a single poll. ok is false when no source was found.
func (o *Orchestrator) RunOnce(ctx context.Context) (report domain.CycleReport, ok bool) {
	src, err := o.Finder.Find(ctx)
	if err != nil {
		o.Logger.Warnf("Looking for cameras failed: %v", appErrors.Wrap(appErrors.Discovery, "find", "", err))
		return domain.CycleReport{}, false
	}
	if src == nil {
		o.Logger.Verbosef("No camera found")
		return domain.CycleReport{}, false
	}
	return o.cycle(ctx, *src), true
}

func (o *Orchestrator) cycle(ctx context.Context, src domain.Source) (report domain.CycleReport) {
	rc := &RecoveryContext{CycleID: o.newID(), Source: src}
	log := o.Logger.With("cycle", rc.CycleID, "source", src.Name, "mode", src.Mode.String())
	report = domain.CycleReport{ID: rc.CycleID, Source: src, Started: o.Clock.Now()}

	log.Infof("%q is available", src.Identifier)
	o.enter(log, StateSourceFound)

	defer func() {
		if r := recover(); r != nil {
			report.Err = appErrors.Wrap(appErrors.Internal, "cycle", src.Name, fmt.Errorf("panic: %v", r))
		}
		if report.Err == nil && ctx.Err() != nil {
			report.Err = ctx.Err()
		}
		if report.Err != nil && (ctx.Err() != nil || !appErrors.Is(report.Err, appErrors.Upload)) {
			o.recoverCycle(ctx, log, rc, report.Err)
		}
		report.State = o.state.String()
		report.Finished = o.Clock.Now()
		o.enter(log, StateIdle)
		if o.Recorder != nil {
			o.Recorder.CycleFinished(report)
		}
	}()

	report.Err = o.process(ctx, log, rc, &report)
	return report
}

func (o *Orchestrator) process(ctx context.Context, log logging.Logger, rc *RecoveryContext, report *domain.CycleReport) error {
	src := rc.Source
	lister, ok := o.Listers[src.Mode]
	if !ok {
		return appErrors.New(appErrors.Internal, "list", src.Name, "no lister for "+src.Mode.String()+" sources")
	}

	if err := o.connect(ctx, log, rc); err != nil {
		return err
	}

	o.enter(log, StateListing)
	listed, err := o.list(ctx, log, lister, src)
	if err != nil {
		return err
	}
	report.Listed = len(listed)

	o.enter(log, StateDiffing)
	history, err := o.History.Load(ctx, src.Name)
	if err != nil {
		return err
	}
	plan := o.Planner.Plan(src, listed, history)
	report.New = len(plan.Items)

	o.enter(log, StateFetching)
	result, err := o.Executor.Execute(ctx, plan)
	report.Fetched = len(result.Staged)
	report.Failed = len(result.Failed)
	if err != nil {
		return err
	}

	o.enter(log, StateHandoff)
	o.handoff(ctx, log, rc)

	o.enter(log, StateUploading)
	groups, err := o.Staging.Groups()
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		log.Infof("No pictures to upload")
		return nil
	}
	if err := o.upload(ctx, log); err != nil {
		return err
	}
	report.Uploaded = true

	o.enter(log, StateCommitting)
	committed, err := o.commit(ctx, log, groups)
	report.Committed = committed
	return err
}

// connect joins the camera's network. The active connection is captured
// first so every exit path can restore it.
func (o *Orchestrator) connect(ctx context.Context, log logging.Logger, rc *RecoveryContext) error {
	if rc.Source.Mode != domain.ModeNetwork {
		return nil
	}
	if o.Network == nil {
		return appErrors.New(appErrors.Network, "connect", rc.Source.SSID, "no network manager configured")
	}

	prior, err := o.Network.ActiveConnection(ctx)
	switch {
	case err != nil:
		log.Errorf("There seems to be no active network connection: %v", err)
	case prior == "":
		log.Warnf("There seems to be no active network connection")
	default:
		rc.PriorConnection = prior
		log.Infof("%q is the current network connection", prior)
	}

	log.Infof("Going to connect to %q", rc.Source.SSID)
	if err := o.Network.Connect(ctx, rc.Source.SSID, rc.Source.Password); err != nil {
		return appErrors.Wrap(appErrors.Network, "connect", rc.Source.SSID, err)
	}
	log.Infof("Connected to %q", rc.Source.SSID)
	return nil
}

func (o *Orchestrator) list(ctx context.Context, log logging.Logger, lister Lister, src domain.Source) ([]domain.RemoteFile, error) {
	stop := log.Measure("Listing")
	defer stop()

	var listed []domain.RemoteFile
	for file, err := range lister.List(ctx, src) {
		if err != nil {
			if appErrors.Is(err, appErrors.Listing) {
				return nil, err
			}
			return nil, appErrors.Wrap(appErrors.Listing, "list", src.Name, err)
		}
		log.Verbosef("File on card: %s/%s", file.Dir, file.Name)
		listed = append(listed, file)
	}
	log.Infof("Retrieved a list of %d files that are on the card", len(listed))
	return listed, nil
}

// handoff releases the camera before talking to the uploader. Failures are
// logged; the upload decides on its own whether the link works.
func (o *Orchestrator) handoff(ctx context.Context, log logging.Logger, rc *RecoveryContext) {
	switch rc.Source.Mode {
	case domain.ModeNetwork:
		if err := o.restore(ctx, log, rc); err != nil {
			log.Errorf("Error reconnecting to home network %q: %v", rc.PriorConnection, err)
		}
	case domain.ModeFilesystem:
		if o.Unmounter == nil {
			return
		}
		if err := o.Unmounter.Unmount(ctx, rc.Source.MountPath); err != nil {
			log.Errorf("Error unmounting %q: %v", rc.Source.MountPath, err)
			return
		}
		log.Infof("Unmounted %q", rc.Source.MountPath)
	}
}

func (o *Orchestrator) upload(ctx context.Context, log logging.Logger) error {
	stop := log.Measure("Uploading")
	defer stop()

	log.Infof("Launching uploader on %q", o.Staging.Root)
	result, err := o.Uploader.Upload(ctx, o.Staging.Root)
	if err == nil && !result.OK {
		err = errors.New("uploader did not report success")
	}
	if o.Recorder != nil {
		o.Recorder.UploadFinished(err == nil)
	}
	if err != nil {
		log.Errorf("Error uploading pictures: %v; here's the uploader's output:", err)
		for _, line := range result.Output {
			log.Errorf("%s", line)
		}
		log.Warnf("Failure! Keeping staged files for the next attempt")
		return appErrors.Wrap(appErrors.Upload, "upload", o.Staging.Root, err)
	}
	log.Infof("Pictures successfully uploaded")
	return nil
}

// commit records every staged file under its group's source and clears
// staging. Staging is kept when any history write fails so that the files
// are not lost to dedup tracking.
func (o *Orchestrator) commit(ctx context.Context, log logging.Logger, groups []domain.StagedGroup) (int, error) {
	var order []string
	bySource := map[string][]string{}
	for _, group := range groups {
		if _, seen := bySource[group.Source]; !seen {
			order = append(order, group.Source)
		}
		bySource[group.Source] = append(bySource[group.Source], group.Files...)
	}

	committed := 0
	var failed error
	for _, source := range order {
		names := bySource[source]
		if err := o.History.Append(ctx, source, names); err != nil {
			log.Errorf("Error adding %d names to history of %q: %v", len(names), source, err)
			failed = errors.Join(failed, err)
			continue
		}
		committed += len(names)
		if o.Recorder != nil {
			o.Recorder.Committed(source, len(names))
		}
	}
	if failed != nil {
		log.Warnf("Keeping staged files until history can be updated")
		return committed, appErrors.Wrap(appErrors.Commit, "commit", "", failed)
	}

	if _, err := o.Staging.Clear(); err != nil {
		return committed, err
	}
	log.Infof("Success! Committed %d files", committed)
	return committed, nil
}

func (o *Orchestrator) recoverCycle(ctx context.Context, log logging.Logger, rc *RecoveryContext, cause error) {
	o.enter(log, StateErrorRecovery)

	restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
	defer cancel()
	if err := o.restore(restoreCtx, log, rc); err != nil {
		log.Errorf("Error reconnecting to home network %q: %v", rc.PriorConnection, err)
	}

	if errors.Is(cause, context.Canceled) {
		log.Warnf("Interrupted while processing %q", rc.Source.Identifier)
		return
	}
	log.Errorf("There's a problem processing %q: %v", rc.Source.Identifier, cause)
}

// restore brings the captured connection back up, at most once per cycle.
func (o *Orchestrator) restore(ctx context.Context, log logging.Logger, rc *RecoveryContext) error {
	if !rc.NeedsRestore() || o.Network == nil {
		return nil
	}
	if err := o.Network.Up(ctx, rc.PriorConnection); err != nil {
		return appErrors.Wrap(appErrors.Network, "restore", rc.PriorConnection, err)
	}
	rc.markRestored()
	log.Infof("Reconnected to home network %q", rc.PriorConnection)
	return nil
}

func (o *Orchestrator) idle(ctx context.Context) error {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if o.Wake != nil {
		go func() {
			select {
			case <-o.Wake:
				o.Logger.Verbosef("Woken up early")
				cancel()
			case <-waitCtx.Done():
			}
		}()
	}

	o.Logger.Verbosef("Sleeping")
	_ = o.Clock.Sleep(waitCtx, o.interval())
	return ctx.Err()
}

func (o *Orchestrator) enter(log logging.Logger, to State) {
	from := o.state
	if from == to {
		return
	}
	if !CanTransition(from, to) {
		log.Warnf("Unexpected state change %s -> %s", from, to)
	}
	o.state = to
	log.Verbosef("State %s -> %s", from, to)
	if o.Recorder != nil {
		o.Recorder.StateChanged(to)
	}
	if o.OnTransition != nil {
		o.OnTransition(from, to)
	}
}

func (o *Orchestrator) interval() time.Duration {
	if o.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return o.PollInterval
}

func (o *Orchestrator) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return uuid.NewString()
}

func (o *Orchestrator) validate() error {
	if o.Finder == nil || o.Executor == nil || o.History == nil || o.Uploader == nil || o.Clock == nil {
		return errors.New("orchestrator requires Finder, Executor, History, Uploader and Clock")
	}
	return nil
}
