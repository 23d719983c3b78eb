package usb

import (
	"context"
	"strings"

	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/infra/command"
	"dcimsync/internal/logging"
)

// Unmounter releases a mounted card with an external command (pumount by
// default) so the card can be pulled safely.
type Unmounter struct {
	Command string
	Run     command.Runner
	Logger  logging.Logger
}

func (u Unmounter) Unmount(ctx context.Context, mountPath string) error {
	run := u.Run
	if run == nil {
		run = command.Exec
	}
	out, err := run(ctx, u.Command, mountPath)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			u.Logger.Warnf("%s: %s", u.Command, msg)
		}
		return appErrors.Wrap(appErrors.IOFailure, "unmount", mountPath, err)
	}
	u.Logger.Infof("Unmounted %q", mountPath)
	return nil
}
