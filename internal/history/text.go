package history

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"
)

const textExt = ".txt"

// TextStore keeps one file per source, one filename per line, append-only.
type TextStore struct {
	Dir    string
	Logger logging.Logger
}

func NewTextStore(dir string, logger logging.Logger) (*TextStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "mkdir", dir, err)
	}
	return &TextStore{Dir: dir, Logger: logger}, nil
}

func (s *TextStore) path(source string) string {
	return filepath.Join(s.Dir, fileName(source)+textExt)
}

// Load returns every filename recorded for source. A missing history file is
// created empty.
func (s *TextStore) Load(ctx context.Context, source string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.path(source)
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		created, createErr := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if createErr != nil {
			return nil, appErrors.Wrap(appErrors.IOFailure, "create history", path, createErr)
		}
		created.Close()
		s.Logger.Warnf("Created empty history file %q", path)
		return nil, nil
	}
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "open history", path, err)
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "read history", path, err)
	}
	s.Logger.Infof("Number of images ever downloaded from %q: %d", source, len(names))
	return names, nil
}

// Append records names for source, skipping names that are already present.
func (s *TextStore) Append(ctx context.Context, source string, names []string) error {
	existing, err := s.Load(ctx, source)
	if err != nil {
		return appErrors.Wrap(appErrors.Commit, "append", s.path(source), err)
	}
	known := make(map[string]bool, len(existing))
	for _, name := range existing {
		known[name] = true
	}

	path := s.path(source)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return appErrors.Wrap(appErrors.Commit, "append", path, err)
	}

	w := bufio.NewWriter(file)
	added := 0
	for _, name := range names {
		if known[name] {
			continue
		}
		known[name] = true
		if _, err := w.WriteString(name + "\n"); err != nil {
			file.Close()
			return appErrors.Wrap(appErrors.Commit, "append", path, err)
		}
		added++
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return appErrors.Wrap(appErrors.Commit, "append", path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return appErrors.Wrap(appErrors.Commit, "sync", path, err)
	}
	if err := file.Close(); err != nil {
		return appErrors.Wrap(appErrors.Commit, "close", path, err)
	}
	s.Logger.Infof("Added %d names to %q", added, path)
	return nil
}

// Sources lists every source that has a history file.
func (s *TextStore) Sources(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "readdir", s.Dir, err)
	}
	var sources []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != textExt {
			continue
		}
		sources = append(sources, strings.TrimSuffix(entry.Name(), textExt))
	}
	sort.Strings(sources)
	return sources, nil
}

func (s *TextStore) Close() error {
	return nil
}

// fileName keeps a display name usable as a single path element.
func fileName(source string) string {
	return strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(source)
}
