package usb

import (
	"context"
	"path/filepath"
	"sort"

	"dcimsync/internal/domain"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"
)

// Finder looks for a mounted drive under MediaRoot that carries a marker
// entry at its root, e.g. /media/sda1/ez Share X100S. The drive is the mount,
// the marker names the camera.
type Finder struct {
	MediaRoot    string
	MarkerPrefix string
	DefaultName  string
	Logger       logging.Logger
}

func (f Finder) Find(ctx context.Context) (*domain.Source, error) {
	pattern := filepath.Join(f.MediaRoot, "*", f.MarkerPrefix+"*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.Discovery, "glob", pattern, err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Strings(matches)

	marker := matches[0]
	mount := filepath.Dir(marker)
	identifier := filepath.Base(marker)
	name := domain.DisplayName(identifier, f.MarkerPrefix, f.DefaultName)
	if name == f.DefaultName {
		f.Logger.Warnf("No camera name in %q, using default: %q", identifier, name)
	}
	f.Logger.Infof("%q is mounted at %q", identifier, mount)
	return &domain.Source{
		Name:       name,
		Identifier: identifier,
		Mode:       domain.ModeFilesystem,
		MountPath:  mount,
	}, nil
}
