package dirindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbatimLayout(t *testing.T) {
	idx, err := NewVerbatim(t.TempDir())
	require.NoError(t, err)

	m, err := idx.Add("record-7")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(idx.Base(), "record-7"), m.Path)
}

func TestVerbatimIterateSkipsNonMappings(t *testing.T) {
	idx, err := NewVerbatim(t.TempDir())
	require.NoError(t, err)
	_, err = idx.Add("kept")
	require.NoError(t, err)

	// a regular file and a symlink are not mappings
	require.NoError(t, os.WriteFile(filepath.Join(idx.Base(), "file"), nil, 0o644))
	outside := t.TempDir()
	if err := os.Symlink(outside, filepath.Join(idx.Base(), "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	assert.Equal(t, []string{"kept"}, ids(t, idx))

	_, ok, err := idx.Get("link")
	require.NoError(t, err)
	assert.False(t, ok, "a symlink must not resolve as a mapping")

	_, err = idx.Add("link")
	assert.ErrorIs(t, err, ErrStorage)

	require.NoError(t, idx.Delete("link"))
	assert.DirExists(t, outside, "delete must never follow a symlink out of the base")
}

func TestVerbatimDeleteAllLeavesReservedEntries(t *testing.T) {
	idx, err := NewVerbatim(t.TempDir())
	require.NoError(t, err)
	for _, id := range []string{"a", "b"} {
		_, err := idx.Add(id)
		require.NoError(t, err)
	}
	require.NoError(t, idx.DeleteAll())

	entries, err := os.ReadDir(idx.Base())
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.NotContains(t, names, "a")
	assert.NotContains(t, names, "b")
	assert.Contains(t, names, ".dirindex.json")
}
