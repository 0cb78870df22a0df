package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"
)

type (
	LookupEntry struct {
		ID      string    `json:"id"`      // identifier as supplied by the caller
		Dir     string    `json:"dir"`     // directory name relative to the index base
		Created time.Time `json:"created"` // when the mapping was first added
	}
	LookupTable struct {
		entries []LookupEntry
		sorted  bool
	}
)

func (e *LookupTable) UnmarshalJSON(data []byte) error {
	var aux struct {
		Entries []LookupEntry `json:"entries"`
		Sorted  bool          `json:"sorted"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.entries = aux.Entries
	e.sorted = aux.Sorted
	return nil
}

func (e LookupTable) MarshalJSON() ([]byte, error) {
	entries := e.entries
	if entries == nil {
		entries = []LookupEntry{}
	}
	return json.Marshal(struct {
		Entries []LookupEntry `json:"entries"`
		Sorted  bool          `json:"sorted"`
	}{
		Entries: entries,
		Sorted:  e.sorted,
	})
}

func (e LookupTable) Iterate(yield func(LookupEntry) bool) {
	for _, entry := range e.entries {
		if !yield(entry) {
			return
		}
	}
}

func (e *LookupTable) Add(le LookupEntry) {
	e.sorted = false
	e.entries = append(e.entries, le)
}

func (e *LookupTable) Remove(index int) error {
	if index < 0 || index >= len(e.entries) {
		return ErrIndexOutOfRange
	}
	e.entries = slices.Delete(e.entries, index, index+1)
	return nil
}

func (e LookupTable) Get(index int) LookupEntry {
	if index < 0 || index >= len(e.entries) {
		return LookupEntry{}
	}
	return e.entries[index]
}

func (e *LookupTable) Sort() {
	sort.Sort(e)
	e.sorted = true
}

func (e LookupTable) Len() int {
	return len(e.entries)
}

func (e LookupTable) Swap(i, j int) {
	e.entries[i], e.entries[j] = e.entries[j], e.entries[i]
}

func (e LookupTable) Less(i, j int) bool {
	return e.entries[i].ID < e.entries[j].ID
}

// Validate checks that every id and every directory appears only once.
// Two ids sharing a directory would make deleting one destroy the other.
func (e LookupTable) Validate() error {
	ids := make(map[string]struct{}, len(e.entries))
	dirs := make(map[string]struct{}, len(e.entries))
	for entry := range e.Iterate {
		if _, ok := ids[entry.ID]; ok {
			return fmt.Errorf("%w: id %q", ErrDuplicateID, entry.ID)
		}
		if _, ok := dirs[entry.Dir]; ok {
			return fmt.Errorf("%w: directory %q", ErrDuplicateID, entry.Dir)
		}
		ids[entry.ID] = struct{}{}
		dirs[entry.Dir] = struct{}{}
	}
	return nil
}

// Save writes the table as JSON to path. The file is written to a temporary
// sibling and renamed into place, so readers never observe a partial table.
func (l LookupTable) Save(path string) error {
	return WriteJSONFileAtomic(path, l)
}

// LoadLookupTable reads a table written by Save. A missing file yields an
// empty table.
func LoadLookupTable(path string) (LookupTable, error) {
	var lt LookupTable
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return lt, nil
	}
	if err != nil {
		return lt, err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&lt); err != nil {
		return LookupTable{}, fmt.Errorf("decoding lookup table %s: %w", path, err)
	}
	if err := lt.Validate(); err != nil {
		return LookupTable{}, fmt.Errorf("lookup table %s: %w", path, err)
	}
	return lt, nil
}

// WriteJSONFileAtomic encodes v as JSON into a temporary file next to path,
// syncs it and renames it over path.
func WriteJSONFileAtomic(path string, v any) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := json.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
