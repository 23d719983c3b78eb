package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	appErrors "dcimsync/internal/errors"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps history in a single SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path and runs the schema
// migration.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "mkdir", filepath.Dir(path), err)
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS downloads (
    source TEXT NOT NULL,
    filename TEXT NOT NULL,
    committed_at INTEGER NOT NULL,
    PRIMARY KEY (source, filename)
);`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context, source string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename FROM downloads WHERE source = ? ORDER BY committed_at, filename`, source)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "load history", source, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, appErrors.Wrap(appErrors.IOFailure, "load history", source, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "load history", source, err)
	}
	return names, nil
}

// Append inserts names in a single transaction; names already recorded are
// ignored.
func (s *SQLiteStore) Append(ctx context.Context, source string, names []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(appErrors.Commit, "begin", source, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO downloads (source, filename, committed_at) VALUES (?, ?, ?)`)
	if err != nil {
		return appErrors.Wrap(appErrors.Commit, "prepare", source, err)
	}
	defer stmt.Close()

	committedAt := s.now().Unix()
	for _, name := range names {
		if _, err := stmt.ExecContext(ctx, source, name, committedAt); err != nil {
			return appErrors.Wrap(appErrors.Commit, "insert", source, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return appErrors.Wrap(appErrors.Commit, "commit", source, err)
	}
	return nil
}

func (s *SQLiteStore) Sources(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT source FROM downloads ORDER BY source`)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "list sources", "", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, appErrors.Wrap(appErrors.IOFailure, "list sources", "", err)
		}
		sources = append(sources, source)
	}
	return sources, rows.Err()
}
