// Package uploader hands the staging tree to the external photo uploader.
package uploader

import (
	"context"
	"strings"

	"dcimsync/internal/app"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/infra/command"
	"dcimsync/internal/logging"
)

// Process runs Command with Args followed by the staging root. The upload
// counts as successful only if a line of output contains SuccessPhrase; the
// exit status alone is not trusted.
type Process struct {
	Command       string
	Args          []string
	SuccessPhrase string
	Run           command.Runner
	Logger        logging.Logger
}

func (p Process) Upload(ctx context.Context, root string) (app.UploadResult, error) {
	run := p.Run
	if run == nil {
		run = command.Exec
	}
	args := append(append([]string{}, p.Args...), root)

	stop := p.Logger.Measure("upload")
	out, runErr := run(ctx, p.Command, args...)
	stop()

	result := app.UploadResult{Output: command.Lines(out)}
	for _, line := range result.Output {
		p.Logger.Verbosef("uploader: %s", line)
		if strings.Contains(line, p.SuccessPhrase) {
			result.OK = true
		}
	}
	if runErr != nil && ctx.Err() != nil {
		return result, appErrors.Wrap(appErrors.Upload, "run uploader", p.Command, ctx.Err())
	}
	if runErr != nil && !result.OK {
		p.Logger.Warnf("Uploader exited with %v", runErr)
	}
	return result, nil
}
