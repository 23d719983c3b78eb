package app

import (
	"os"
	"path/filepath"
	"testing"

	osfs "dcimsync/internal/infra/fs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStaging(t *testing.T) Staging {
	t.Helper()
	return Staging{Root: filepath.Join(t.TempDir(), "staging"), FS: osfs.OSFS{}}
}

func stageFile(t *testing.T, s Staging, date, source, name, content string) string {
	t.Helper()
	path := filepath.Join(s.GroupDir(date, source), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseGroupName(t *testing.T) {
	date, source, ok := parseGroupName("20240102 X100S")
	assert.True(t, ok)
	assert.Equal(t, "20240102", date)
	assert.Equal(t, "X100S", source)

	date, source, ok = parseGroupName("20240102 ez Share X100S")
	assert.True(t, ok)
	assert.Equal(t, "ez Share X100S", source)

	for _, bad := range []string{"20240102", "2024010 X", "2024010a X", "20240102 ", "notes"} {
		_, _, ok := parseGroupName(bad)
		assert.False(t, ok, bad)
	}
}

func TestStagingGroupsOnMissingRoot(t *testing.T) {
	groups, err := newStaging(t).Groups()
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestStagingGroups(t *testing.T) {
	s := newStaging(t)
	stageFile(t, s, "20240102", "X100S", "B.JPG", "b")
	stageFile(t, s, "20240102", "X100S", "A.JPG", "a")
	stageFile(t, s, "20231231", "usbdcim", "C.JPG", "c")
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root, "lost+found"), 0o755))

	groups, err := s.Groups()
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "20231231", groups[0].Date)
	assert.Equal(t, "usbdcim", groups[0].Source)
	assert.Equal(t, []string{"A.JPG", "B.JPG"}, groups[1].Files)
}

func TestStagingFindIsPerSource(t *testing.T) {
	s := newStaging(t)
	staged := stageFile(t, s, "20240102", "X100S", "A.JPG", "a")

	path, ok, err := s.Find("X100S", "A.JPG")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, staged, path)

	_, ok, err = s.Find("usbdcim", "A.JPG")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStagingPlaceAndClear(t *testing.T) {
	s := newStaging(t)
	scratch := filepath.Join(t.TempDir(), "A.JPG")
	require.NoError(t, os.WriteFile(scratch, []byte("a"), 0o644))

	final, err := s.Place(scratch, "20240102", "X100S", "A.JPG")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Root, "20240102 X100S", "A.JPG"), final)
	assert.NoFileExists(t, scratch)
	assert.FileExists(t, final)

	removed, err := s.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.DirExists(t, s.Root)

	groups, err := s.Groups()
	require.NoError(t, err)
	assert.Empty(t, groups)
}
