package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"dcimsync/internal/domain"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"
)

const (
	DefaultMaxAttempts = 10
	DefaultBackoffBase = time.Second
)

// Fetcher brings one remote file into staging. Bytes land in ScratchDir first
// and are renamed into their group only once complete.
type Fetcher struct {
	Transports  map[domain.AccessMode]Transport
	FS          FileSystem
	Staging     Staging
	Resolver    DateResolver
	ScratchDir  string
	MaxAttempts int
	BackoffBase time.Duration
	Clock       Clock
	Recorder    Recorder
	Logger      logging.Logger
}

func (f *Fetcher) Fetch(ctx context.Context, src domain.Source, file domain.RemoteFile) (string, error) {
	if staged, ok, err := f.Staging.Find(src.Name, file.Name); err != nil {
		f.Logger.Warnf("Could not check staging for %s: %v", file.Name, err)
	} else if ok {
		f.Logger.Infof("%s is already staged at %q, not downloading again", file.Name, staged)
		return staged, nil
	}

	transport, ok := f.Transports[src.Mode]
	if !ok {
		return "", appErrors.New(appErrors.Fetch, "fetch", file.Name, "no transport for "+src.Mode.String()+" sources")
	}

	scratch := filepath.Join(f.ScratchDir, file.Name)
	if err := f.transfer(ctx, transport, src, file, scratch); err != nil {
		return "", err
	}

	date := f.Resolver.Resolve(ctx, file, scratch)
	final, err := f.Staging.Place(scratch, date, src.Name, file.Name)
	if err != nil {
		if rmErr := f.FS.Remove(scratch); rmErr != nil {
			f.Logger.Warnf("Could not remove %q: %v", scratch, rmErr)
		}
		return "", appErrors.Wrap(appErrors.Fetch, "stage", file.Name, err)
	}
	return final, nil
}

func (f *Fetcher) transfer(ctx context.Context, transport Transport, src domain.Source, file domain.RemoteFile, scratch string) error {
	attempts := f.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	wait := f.BackoffBase
	if wait <= 0 {
		wait = DefaultBackoffBase
	}
	label := file.Dir + "/" + file.Name

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		f.Logger.Infof("Downloading %s (attempt %d of %d)", label, attempt, attempts)
		lastErr = f.attempt(ctx, transport, src, file, scratch)
		if lastErr == nil {
			f.Logger.Infof("Downloaded %q", scratch)
			return nil
		}
		if ctx.Err() != nil {
			f.discard(scratch)
			return appErrors.Wrap(appErrors.Fetch, "download", file.Name, ctx.Err())
		}
		if f.Recorder != nil {
			f.Recorder.FetchAttemptFailed(src.Name)
		}
		if attempt == attempts {
			break
		}
		f.Logger.Warnf("Sleeping %s because of error trying to download %s (%v)", wait, label, lastErr)
		if err := f.Clock.Sleep(ctx, wait); err != nil {
			f.discard(scratch)
			return appErrors.Wrap(appErrors.Fetch, "download", file.Name, err)
		}
		wait *= 2
	}

	f.discard(scratch)
	f.Logger.Criticalf("Retried %d times downloading %s: %v", attempts, label, lastErr)
	return appErrors.Wrap(appErrors.Fetch, "download", file.Name,
		fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr))
}

func (f *Fetcher) attempt(ctx context.Context, transport Transport, src domain.Source, file domain.RemoteFile, scratch string) error {
	w, err := f.FS.Create(scratch)
	if err != nil {
		return err
	}
	if err := transport.Retrieve(ctx, src, file, w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (f *Fetcher) discard(scratch string) {
	if err := f.FS.Remove(scratch); err != nil {
		f.Logger.Warnf("Could not remove %q: %v", scratch, err)
	}
}
