package app

import (
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"dcimsync/internal/domain"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"
)

// Staging is the "<YYYYMMDD> <source>/<file>" tree waiting for upload.
type Staging struct {
	Root   string
	FS     FileSystem
	Logger logging.Logger
}

func (s Staging) GroupDir(date, source string) string {
	return filepath.Join(s.Root, date+" "+source)
}

// parseGroupName splits "20240102 X100S" into date and source.
func parseGroupName(name string) (date, source string, ok bool) {
	date, source, ok = strings.Cut(name, " ")
	if !ok || len(date) != len(DateLayout) || source == "" {
		return "", "", false
	}
	for _, r := range date {
		if r < '0' || r > '9' {
			return "", "", false
		}
	}
	return date, source, true
}

// Groups lists every staged group with its files. A missing root is empty.
func (s Staging) Groups() ([]domain.StagedGroup, error) {
	entries, err := s.FS.ReadDir(s.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "readdir", s.Root, err)
	}

	var groups []domain.StagedGroup
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		date, source, ok := parseGroupName(entry.Name())
		if !ok {
			s.Logger.Warnf("Ignoring unexpected staging entry %q", entry.Name())
			continue
		}
		dir := filepath.Join(s.Root, entry.Name())
		children, err := s.FS.ReadDir(dir)
		if err != nil {
			return nil, appErrors.Wrap(appErrors.IOFailure, "readdir", dir, err)
		}
		group := domain.StagedGroup{Dir: dir, Date: date, Source: source}
		for _, child := range children {
			if !child.IsDir() {
				group.Files = append(group.Files, child.Name())
			}
		}
		sort.Strings(group.Files)
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Dir < groups[j].Dir })
	return groups, nil
}

// Find returns the staged path of name for source if any group holds it.
func (s Staging) Find(source, name string) (string, bool, error) {
	entries, err := s.FS.ReadDir(s.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, appErrors.Wrap(appErrors.IOFailure, "readdir", s.Root, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, groupSource, ok := parseGroupName(entry.Name()); !ok || groupSource != source {
			continue
		}
		path := filepath.Join(s.Root, entry.Name(), name)
		exists, err := s.FS.Exists(path)
		if err != nil {
			return "", false, appErrors.Wrap(appErrors.IOFailure, "stat", path, err)
		}
		if exists {
			return path, true, nil
		}
	}
	return "", false, nil
}

// Place moves a fully written scratch file into its group.
func (s Staging) Place(scratchPath, date, source, name string) (string, error) {
	dir := s.GroupDir(date, source)
	if err := s.FS.MkdirAll(dir, 0o755); err != nil {
		return "", appErrors.Wrap(appErrors.IOFailure, "mkdir", dir, err)
	}
	final := filepath.Join(dir, name)
	if err := s.FS.Rename(scratchPath, final); err != nil {
		return "", appErrors.Wrap(appErrors.IOFailure, "rename", final, err)
	}
	s.Logger.Infof("Moved %q to %q", scratchPath, final)
	return final, nil
}

// Clear removes everything under the root, keeping the root itself.
func (s Staging) Clear() (int, error) {
	entries, err := s.FS.ReadDir(s.Root)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, appErrors.Wrap(appErrors.IOFailure, "readdir", s.Root, err)
	}
	for _, entry := range entries {
		path := filepath.Join(s.Root, entry.Name())
		if err := s.FS.RemoveAll(path); err != nil {
			return 0, appErrors.Wrap(appErrors.IOFailure, "remove", path, err)
		}
	}
	s.Logger.Infof("Deleted %d directories in %q", len(entries), s.Root)
	return len(entries), nil
}
