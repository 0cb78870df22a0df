package dirindex

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/dendrascience/dendra-dirindex/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableLayout(t *testing.T) {
	idx, err := NewTable(t.TempDir())
	require.NoError(t, err)

	_, err = idx.Add("../not/a/path/once/stored")
	assert.ErrorIs(t, err, ErrInvalidID, "ids are validated even though they never become paths")

	m, err := idx.Add("customer:17")
	require.NoError(t, err)
	assert.Equal(t, idx.Base(), filepath.Dir(m.Path))
	_, err = uuid.Parse(filepath.Base(m.Path))
	assert.NoError(t, err, "directory names are uuids")

	lt, err := util.LoadLookupTable(filepath.Join(idx.Base(), TableFile))
	require.NoError(t, err)
	require.Equal(t, 1, lt.Len())
	assert.Equal(t, "customer:17", lt.Get(0).ID)
	assert.Equal(t, filepath.Base(m.Path), lt.Get(0).Dir)
	assert.False(t, lt.Get(0).Created.IsZero())
}

func TestTableDeletePersists(t *testing.T) {
	base := t.TempDir()
	idx, err := NewTable(base)
	require.NoError(t, err)
	for _, id := range []string{"a", "b"} {
		_, err := idx.Add(id)
		require.NoError(t, err)
	}
	require.NoError(t, idx.Delete("a"))
	assert.Equal(t, 1, idx.Len())

	reopened, err := NewTable(base)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
	assert.Equal(t, []string{"b"}, ids(t, reopened))
}

func TestTableMissingDirectory(t *testing.T) {
	idx, err := NewTable(t.TempDir())
	require.NoError(t, err)
	m, err := idx.Add("fragile")
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(m.Path))

	_, ok, err := idx.Get("fragile")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, ids(t, idx))

	again, err := idx.Add("fragile")
	require.NoError(t, err)
	assert.Equal(t, m.Path, again.Path, "re-adding repairs the same directory")
	assert.DirExists(t, again.Path)
}

func TestTableWalkPrefix(t *testing.T) {
	idx, err := NewTable(t.TempDir())
	require.NoError(t, err)
	for _, id := range []string{"user:1", "user:2", "order:1", "user:3"} {
		_, err := idx.Add(id)
		require.NoError(t, err)
	}

	var got []string
	require.NoError(t, idx.WalkPrefix("user:", func(m Mapping) bool {
		got = append(got, m.ID)
		return true
	}))
	assert.Equal(t, []string{"user:1", "user:2", "user:3"}, got)

	got = got[:0]
	require.NoError(t, idx.WalkPrefix("user:", func(m Mapping) bool {
		got = append(got, m.ID)
		return false
	}))
	assert.Equal(t, []string{"user:1"}, got)
}

func TestTableCorruptFile(t *testing.T) {
	base := t.TempDir()
	_, err := NewTable(base)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(base, TableFile), []byte("{not json"), 0o644))
	_, err = NewTable(base)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestTableUnsafeEntry(t *testing.T) {
	base := t.TempDir()
	_, err := NewTable(base)
	require.NoError(t, err)

	var lt util.LookupTable
	lt.Add(util.LookupEntry{ID: "evil", Dir: "../outside"})
	require.NoError(t, lt.Save(filepath.Join(base, TableFile)))

	_, err = NewTable(base)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestTableDeleteAllClearsTable(t *testing.T) {
	base := t.TempDir()
	idx, err := NewTable(base)
	require.NoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		_, err := idx.Add(id)
		require.NoError(t, err)
	}
	require.NoError(t, idx.DeleteAll())
	assert.Equal(t, 0, idx.Len())

	reopened, err := NewTable(base)
	require.NoError(t, err)
	assert.Equal(t, 0, reopened.Len())
}

func TestTableUnreadableBase(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	idx, err := NewTable(t.TempDir())
	require.NoError(t, err)
	_, err = idx.Add("hidden")
	require.NoError(t, err)

	// without search permission every stat below the base fails
	require.NoError(t, os.Chmod(idx.Base(), 0o000))
	t.Cleanup(func() { os.Chmod(idx.Base(), 0o755) })

	ms, err := Collect(idx.Iterate())
	assert.ErrorIs(t, err, ErrStorage)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Empty(t, ms, "a failed stat must not be reported as an absent mapping")

	called := false
	err = idx.WalkPrefix("", func(Mapping) bool {
		called = true
		return true
	})
	assert.ErrorIs(t, err, ErrStorage)
	assert.False(t, called)
}
