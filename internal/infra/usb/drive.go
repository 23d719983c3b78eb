package usb

import (
	"context"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dcimsync/internal/domain"
	appErrors "dcimsync/internal/errors"
	"dcimsync/internal/logging"
)

// Drive reads pictures straight off a mounted card.
type Drive struct {
	Extensions []string
	Logger     logging.Logger
}

// List globs <mount>/DCIM/*/*.<EXT> for every configured extension. Like the
// network listing the sequence is single-use.
func (d Drive) List(ctx context.Context, src domain.Source) iter.Seq2[domain.RemoteFile, error] {
	consumed := false
	return func(yield func(domain.RemoteFile, error) bool) {
		if consumed {
			yield(domain.RemoteFile{}, appErrors.New(appErrors.Listing, "list", src.MountPath, "listing already consumed"))
			return
		}
		consumed = true

		for _, ext := range d.Extensions {
			if err := ctx.Err(); err != nil {
				yield(domain.RemoteFile{}, appErrors.Wrap(appErrors.Listing, "list", src.MountPath, err))
				return
			}
			pattern := filepath.Join(src.MountPath, "DCIM", "*", "*."+strings.TrimPrefix(ext, "."))
			matches, err := filepath.Glob(pattern)
			if err != nil {
				yield(domain.RemoteFile{}, appErrors.Wrap(appErrors.Listing, "glob", pattern, err))
				return
			}
			sort.Strings(matches)
			d.Logger.Verbosef("%d matches for %q", len(matches), pattern)

			for _, match := range matches {
				file := domain.RemoteFile{
					Dir:  filepath.Base(filepath.Dir(match)),
					Name: filepath.Base(match),
				}
				if !yield(file, nil) {
					return
				}
			}
		}
	}
}

func (d Drive) Path(src domain.Source, file domain.RemoteFile) string {
	return filepath.Join(src.MountPath, "DCIM", file.Dir, file.Name)
}

// Retrieve copies one file from the drive into w.
func (d Drive) Retrieve(ctx context.Context, src domain.Source, file domain.RemoteFile, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := d.Path(src, file)
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("copy %s: %w", path, err)
	}
	return nil
}
