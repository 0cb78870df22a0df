package dirindex

import (
	"errors"
	"iter"
)

// Iterator walks a snapshot of the mappings that existed when it was first
// advanced. It holds its own snapshot and cursor; two iterators obtained from
// the same index never share state.
//
// The snapshot is taken on the first call to Next (or the first step of All),
// not when the Iterator is created. Mappings added afterwards are not seen.
// Mappings removed afterwards may still be yielded, so consumers must tolerate
// a Path that no longer exists. Order is unspecified.
//
// An Iterator is not safe for concurrent use.
type Iterator struct {
	scan    func() ([]Mapping, error)
	entries []Mapping
	pos     int
	scanned bool
	err     error
}

func newIterator(scan func() ([]Mapping, error)) *Iterator {
	return &Iterator{scan: scan}
}

// Next returns the next mapping of the snapshot. The second result is false
// once the snapshot is exhausted or could not be taken; check Err then.
func (it *Iterator) Next() (Mapping, bool) {
	if !it.scanned {
		it.scanned = true
		it.entries, it.err = it.scan()
		it.scan = nil
		var e *Error
		if it.err != nil && !errors.As(it.err, &e) {
			it.err = storageError("iterate", "", "", it.err)
		}
	}
	if it.pos >= len(it.entries) {
		return Mapping{}, false
	}
	m := it.entries[it.pos]
	it.entries[it.pos] = Mapping{}
	it.pos++
	return m, true
}

// Err returns the error that prevented the snapshot from being taken, if any.
// It always wraps ErrStorage.
func (it *Iterator) Err() error {
	return it.err
}

// All adapts the iterator to a range-over-func sequence. It shares the
// iterator's cursor: breaking out of the loop and ranging again resumes
// where the loop stopped.
func (it *Iterator) All() iter.Seq[Mapping] {
	return func(yield func(Mapping) bool) {
		for {
			m, ok := it.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

// Collect drains the iterator into a slice.
func Collect(it *Iterator) ([]Mapping, error) {
	var out []Mapping
	for m := range it.All() {
		out = append(out, m)
	}
	return out, it.Err()
}
