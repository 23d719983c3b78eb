package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFileCreatesParents(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "IMG_1.JPG")
	dst := filepath.Join(dir, "a", "b", "IMG_1.JPG")
	require.NoError(t, os.WriteFile(src, []byte("jpeg"), 0o644))

	require.NoError(t, OSFS{}.CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
}

func TestExistsAndRemove(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x")
	osfs := OSFS{}

	exists, err := osfs.Exists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	w, err := osfs.Create(path)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	exists, err = osfs.Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, osfs.Remove(path))
	require.NoError(t, osfs.Remove(path), "removing a missing file is not an error")
}
