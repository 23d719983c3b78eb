package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dcimsync/internal/config"
	"dcimsync/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	text, err := Open(config.HistoryConfig{Backend: config.BackendText, Dir: filepath.Join(dir, "text")}, logging.Logger{})
	require.NoError(t, err)
	db, err := Open(config.HistoryConfig{Backend: config.BackendSQLite, SQLitePath: filepath.Join(dir, "db", "history.db")}, logging.Logger{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Store{"text": text, "sqlite": db}
}

func TestStoreMissingHistoryIsEmpty(t *testing.T) {
	for name, store := range backends(t) {
		names, err := store.Load(context.Background(), "X100S")
		require.NoError(t, err, name)
		assert.Empty(t, names, name)
	}
}

func TestStoreAppendOnlyGrows(t *testing.T) {
	ctx := context.Background()
	for name, store := range backends(t) {
		require.NoError(t, store.Append(ctx, "X100S", []string{"IMG_1.JPG"}), name)
		require.NoError(t, store.Append(ctx, "X100S", []string{"IMG_1.JPG", "IMG_2.JPG"}), name)
		require.NoError(t, store.Append(ctx, "GR", []string{"R0000001.DNG"}), name)

		names, err := store.Load(ctx, "X100S")
		require.NoError(t, err, name)
		assert.ElementsMatch(t, []string{"IMG_1.JPG", "IMG_2.JPG"}, names, name)

		sources, err := store.Sources(ctx)
		require.NoError(t, err, name)
		assert.Equal(t, []string{"GR", "X100S"}, sources, name)
	}
}

func TestTextStoreFormat(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTextStore(dir, logging.Logger{})
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "X100S")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "X100S.txt"))
	require.NoError(t, err, "loading a missing history creates the file")

	require.NoError(t, store.Append(context.Background(), "X100S", []string{"IMG_1.JPG", "IMG_2.JPG"}))
	data, err := os.ReadFile(filepath.Join(dir, "X100S.txt"))
	require.NoError(t, err)
	assert.Equal(t, "IMG_1.JPG\nIMG_2.JPG\n", string(data))
}

func TestTextStoreAppendFailureIsCommitError(t *testing.T) {
	dir := t.TempDir()
	store, err := NewTextStore(dir, logging.Logger{})
	require.NoError(t, err)
	// A directory where the history file should be makes every open fail.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "X100S.txt"), 0o755))

	err = store.Append(context.Background(), "X100S", []string{"IMG_1.JPG"})
	require.Error(t, err)
}
