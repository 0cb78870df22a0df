package dirindex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratorSnapshotsOnFirstNext(t *testing.T) {
	calls := 0
	it := newIterator(func() ([]Mapping, error) {
		calls++
		return []Mapping{{ID: "a", Path: "/b/a"}, {ID: "b", Path: "/b/b"}}, nil
	})
	assert.Equal(t, 0, calls, "creating an iterator must not scan")

	m, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, "a", m.ID)
	m, ok = it.Next()
	require.True(t, ok)
	assert.Equal(t, "b", m.ID)
	_, ok = it.Next()
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok)

	assert.Equal(t, 1, calls, "an iterator scans exactly once")
	assert.NoError(t, it.Err())
}

func TestIteratorScanError(t *testing.T) {
	boom := errors.New("boom")
	it := newIterator(func() ([]Mapping, error) { return nil, boom })
	_, ok := it.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, it.Err(), boom)
	assert.ErrorIs(t, it.Err(), ErrStorage, "scan failures are storage errors")

	ms, err := Collect(newIterator(func() ([]Mapping, error) { return nil, boom }))
	assert.Empty(t, ms)
	assert.ErrorIs(t, err, boom)
}

func TestIteratorAllResumes(t *testing.T) {
	it := newIterator(func() ([]Mapping, error) {
		return []Mapping{{ID: "a"}, {ID: "b"}, {ID: "c"}}, nil
	})
	for m := range it.All() {
		assert.Equal(t, "a", m.ID)
		break
	}
	rest, err := Collect(it)
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "b", rest[0].ID)
	assert.Equal(t, "c", rest[1].ID)
}
