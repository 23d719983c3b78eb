package app

import (
	"context"

	"dcimsync/internal/domain"
	"dcimsync/internal/logging"
)

// Finders asks each finder in turn and returns the first source found. A
// failing finder is logged and skipped so that one broken discovery path
// does not hide the other.
type Finders struct {
	List   []SourceFinder
	Logger logging.Logger
}

func (f Finders) Find(ctx context.Context) (*domain.Source, error) {
	var firstErr error
	for _, finder := range f.List {
		src, err := finder.Find(ctx)
		if err != nil {
			f.Logger.Warnf("Source discovery failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if src != nil {
			return src, nil
		}
	}
	return nil, firstErr
}
