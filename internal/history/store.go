package history

import (
	"context"
	"fmt"

	"dcimsync/internal/config"
	"dcimsync/internal/logging"
)

// Store is a per-source set of filenames that only ever grows.
type Store interface {
	Load(ctx context.Context, source string) ([]string, error)
	Append(ctx context.Context, source string, names []string) error
	Sources(ctx context.Context) ([]string, error)
	Close() error
}

// Open returns the backend selected by cfg.
func Open(cfg config.HistoryConfig, logger logging.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendText, "":
		return NewTextStore(cfg.Dir, logger)
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}
