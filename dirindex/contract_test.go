package dirindex

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"testing"

	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type factory func(t *testing.T, base string) Index

var factories = map[Strategy]factory{
	StrategyVerbatim: func(t *testing.T, base string) Index {
		idx, err := NewVerbatim(base)
		require.NoError(t, err)
		return idx
	},
	StrategyHashed: func(t *testing.T, base string) Index {
		idx, err := NewHashed(base, WithBuckets(16))
		require.NoError(t, err)
		return idx
	},
	StrategyTable: func(t *testing.T, base string) Index {
		idx, err := NewTable(base)
		require.NoError(t, err)
		return idx
	},
}

// TestContract runs the behaviour every strategy must share.
func TestContract(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T, newIndex func() Index)
	}{
		{"AddThenGet", testAddThenGet},
		{"AddIdempotent", testAddIdempotent},
		{"GetAbsent", testGetAbsent},
		{"DeleteIdempotent", testDeleteIdempotent},
		{"DeleteRemovesContents", testDeleteRemovesContents},
		{"DeleteAllKeepsBase", testDeleteAllKeepsBase},
		{"InvalidIDsTouchNothing", testInvalidIDsTouchNothing},
		{"IterateSnapshot", testIterateSnapshot},
		{"IterateIndependent", testIterateIndependent},
		{"ConcurrentAdd", testConcurrentAdd},
		{"PathsInsideBase", testPathsInsideBase},
		{"AddOverFileFails", testAddOverFileFails},
		{"Reopen", testReopen},
	}

	for _, st := range Strategies {
		t.Run(string(st), func(t *testing.T) {
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					base := t.TempDir()
					tt.test(t, func() Index { return factories[st](t, base) })
				})
			}
		})
	}
}

func ids(t *testing.T, idx Index) []string {
	t.Helper()
	ms, err := Collect(idx.Iterate())
	require.NoError(t, err)
	out := make([]string, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.ID)
	}
	sort.Strings(out)
	return out
}

// listing returns every path below base, for before/after comparisons.
func listing(t *testing.T, base string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		out = append(out, path)
		return nil
	})
	require.NoError(t, err)
	return out
}

func testAddThenGet(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	added, err := idx.Add("record-1")
	require.NoError(t, err)
	assert.Equal(t, "record-1", added.ID)
	assert.DirExists(t, added.Path)

	got, ok, err := idx.Get("record-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, added, got)
}

func testAddIdempotent(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	first, err := idx.Add("x")
	require.NoError(t, err)
	marker := filepath.Join(first.Path, "record.json")
	require.NoError(t, os.WriteFile(marker, []byte("{}"), 0o644))

	second, err := idx.Add("x")
	require.NoError(t, err)
	assert.Equal(t, first.Path, second.Path)
	assert.FileExists(t, marker, "second add must not disturb contents")
	assert.Equal(t, []string{"x"}, ids(t, idx))
}

func testGetAbsent(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	before := listing(t, idx.Base())
	m, ok, err := idx.Get("never-added")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, m)
	assert.Equal(t, before, listing(t, idx.Base()), "get must not create anything")
}

func testDeleteIdempotent(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	require.NoError(t, idx.Delete("never-added"))

	_, err := idx.Add("gone")
	require.NoError(t, err)
	require.NoError(t, idx.Delete("gone"))
	require.NoError(t, idx.Delete("gone"))

	_, ok, err := idx.Get("gone")
	require.NoError(t, err)
	assert.False(t, ok)
}

func testDeleteRemovesContents(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	m, err := idx.Add("deep")
	require.NoError(t, err)
	nested := filepath.Join(m.Path, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(nested, "f"), []byte("data"), 0o644))

	require.NoError(t, idx.Delete("deep"))
	assert.NoDirExists(t, m.Path)

	entries, err := os.ReadDir(filepath.Join(idx.Base(), trashDir))
	require.NoError(t, err)
	assert.Empty(t, entries, "trash should be purged")
}

func testDeleteAllKeepsBase(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	for _, id := range []string{"a", "b", "c"} {
		_, err := idx.Add(id)
		require.NoError(t, err)
	}

	require.NoError(t, idx.DeleteAll())
	assert.DirExists(t, idx.Base())
	assert.Empty(t, ids(t, idx))

	m, err := idx.Add("d")
	require.NoError(t, err)
	assert.DirExists(t, m.Path)
	assert.Equal(t, []string{"d"}, ids(t, idx))
}

func testInvalidIDsTouchNothing(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	outside := filepath.Join(filepath.Dir(idx.Base()), "escape")

	bad := []string{
		"",
		"..",
		".",
		"../escape",
		"a/../../escape",
		"a/b",
		`a\b`,
		".hidden",
		"nul\x00byte",
		string([]byte{0xff, 0xfe}),
		string(make([]byte, MaxIDLen+1)),
	}
	before := listing(t, idx.Base())
	for _, id := range bad {
		_, _, err := idx.Get(id)
		assert.ErrorIs(t, err, ErrInvalidID, "get %q", id)

		_, err = idx.Add(id)
		assert.ErrorIs(t, err, ErrInvalidID, "add %q", id)

		err = idx.Delete(id)
		assert.ErrorIs(t, err, ErrInvalidID, "delete %q", id)
	}
	assert.Equal(t, before, listing(t, idx.Base()))
	assert.NoDirExists(t, outside)
}

func testIterateSnapshot(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	for _, id := range []string{"a", "b", "c"} {
		_, err := idx.Add(id)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids(t, idx))

	require.NoError(t, idx.Delete("b"))
	assert.Equal(t, []string{"a", "c"}, ids(t, idx))

	// an iterator snapshots on first Next; later additions are not seen
	it := idx.Iterate()
	first, ok := it.Next()
	require.True(t, ok)
	_, err := idx.Add("late")
	require.NoError(t, err)
	seen := []string{first.ID}
	for m := range it.All() {
		seen = append(seen, m.ID)
	}
	require.NoError(t, it.Err())
	sort.Strings(seen)
	assert.Equal(t, []string{"a", "c"}, seen)

	// exhausted iterators stay exhausted
	_, ok = it.Next()
	assert.False(t, ok)
}

func testIterateIndependent(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	for _, id := range []string{"a", "b"} {
		_, err := idx.Add(id)
		require.NoError(t, err)
	}

	one := idx.Iterate()
	_, ok := one.Next()
	require.True(t, ok)

	two, err := Collect(idx.Iterate())
	require.NoError(t, err)
	assert.Len(t, two, 2, "a second iterator must not resume the first one's cursor")

	rest, err := Collect(one)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func testConcurrentAdd(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	const callers = 16

	paths := make([]string, callers)
	errs := make([]error, callers)
	var wg conc.WaitGroup
	for i := range callers {
		wg.Go(func() {
			m, err := idx.Add("x")
			paths[i], errs[i] = m.Path, err
		})
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Equal(t, paths[0], paths[i])
	}
	assert.Equal(t, []string{"x"}, ids(t, idx))
	assert.DirExists(t, paths[0])
}

func testPathsInsideBase(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	for _, id := range []string{"plain", "with space", "ünïcödé", "a..b", "-dash", "UPPER"} {
		m, err := idx.Add(id)
		require.NoError(t, err, id)
		assert.True(t, within(idx.Base(), m.Path), "%s escaped base: %s", id, m.Path)
		assert.True(t, filepath.IsAbs(m.Path))
	}
	got := ids(t, idx)
	want := []string{"-dash", "UPPER", "a..b", "plain", "with space", "ünïcödé"}
	sort.Strings(want)
	if !slices.Equal(got, want) {
		// case-insensitive filesystems fold UPPER for the verbatim strategy only
		assert.Len(t, got, len(want))
	}
}

func testAddOverFileFails(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	m, err := idx.Add("victim")
	require.NoError(t, err)
	require.NoError(t, idx.Delete("victim"))
	require.NoError(t, os.MkdirAll(filepath.Dir(m.Path), 0o755))
	require.NoError(t, os.WriteFile(m.Path, []byte("not a dir"), 0o644))

	_, ok, err := idx.Get("victim")
	require.NoError(t, err)
	assert.False(t, ok, "a regular file is not a mapping")

	// table strategy draws a fresh name for a deleted id, so it is unaffected
	if _, isTable := idx.(*Table); isTable {
		return
	}
	_, err = idx.Add("victim")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)
	assert.False(t, errors.Is(err, ErrInvalidID))
}

func testReopen(t *testing.T, newIndex func() Index) {
	idx := newIndex()
	m, err := idx.Add("persisted")
	require.NoError(t, err)

	again := newIndex()
	got, ok, err := again.Get("persisted")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, m.Path, got.Path)
	assert.Equal(t, []string{"persisted"}, ids(t, again))
}
