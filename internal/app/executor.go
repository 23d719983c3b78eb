package app

import (
	"context"
	"errors"

	"dcimsync/internal/domain"
	"dcimsync/internal/logging"
)

// ProgressFunc is called after each planned file is handled
type ProgressFunc func(current, total int)

// ExecutionResult lists what happened to each planned file.
type ExecutionResult struct {
	Staged []string
	Failed []string
}

// Executor fetches every planned file in order. A failed file is logged and
// skipped; only cancellation stops the batch.
type Executor struct {
	Fetcher    *Fetcher
	Recorder   Recorder
	Logger     logging.Logger
	OnProgress ProgressFunc
}

func (e *Executor) Execute(ctx context.Context, plan domain.FetchPlan) (ExecutionResult, error) {
	var result ExecutionResult
	if e.Fetcher == nil {
		return result, errors.New("executor requires a Fetcher")
	}

	stop := e.Logger.Measure("Fetching")
	defer stop()

	total := len(plan.Items)
	for i, file := range plan.Items {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		e.Logger.Infof("Progress %d of %d", i+1, total)
		path, err := e.Fetcher.Fetch(ctx, plan.Source, file)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			e.Logger.Errorf("Error downloading %q: %v", file.Name, err)
			result.Failed = append(result.Failed, file.Name)
			if e.Recorder != nil {
				e.Recorder.FileSkipped(plan.Source.Name)
			}
		} else {
			result.Staged = append(result.Staged, path)
			if e.Recorder != nil {
				e.Recorder.FileFetched(plan.Source.Name)
			}
		}

		if e.OnProgress != nil {
			e.OnProgress(i+1, total)
		}
	}
	return result, nil
}
