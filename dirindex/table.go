package dirindex

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/armon/go-radix"
	"github.com/dendrascience/dendra-dirindex/util"
	"github.com/google/uuid"
)

// TableFile is the name of the persisted lookup table inside the base.
const TableFile = ".dirindex-table.json"

// uuidAttempts bounds how often Add draws a fresh directory name when the
// drawn one is already taken.
const uuidAttempts = 8

// Table maps ids to directories through an explicit, persisted lookup table.
// Directories are named with random UUIDs directly under the base, so ids
// never influence paths at all. The table is kept in memory as a radix tree
// and written to TableFile after every mutation.
//
// A table entry whose directory has gone missing is reported absent by Get
// and Iterate; adding the id again recreates the directory under the same
// name.
type Table struct {
	*layout

	mu      sync.RWMutex
	tree    *radix.Tree // id -> *util.LookupEntry
	dirs    map[string]string
	tblPath string
}

// NewTable opens a table index rooted at baseDir, loading an existing table
// if one is present.
func NewTable(baseDir string, opts ...Option) (*Table, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	l, err := newLayout(StrategyTable, baseDir, o)
	if err != nil {
		return nil, err
	}

	t := &Table{
		layout:  l,
		tree:    radix.New(),
		dirs:    make(map[string]string),
		tblPath: filepath.Join(l.base, TableFile),
	}
	lt, err := util.LoadLookupTable(t.tblPath)
	if err != nil {
		return nil, configError("open", t.tblPath, err)
	}
	for e := range lt.Iterate {
		if ValidateID(e.ID) != nil || ValidateID(e.Dir) != nil {
			return nil, configError("open", t.tblPath, fmt.Errorf("entry %q has unsafe directory %q", e.ID, e.Dir))
		}
		entry := e
		t.tree.Insert(e.ID, &entry)
		t.dirs[e.Dir] = e.ID
	}
	t.log.Debug().Int("entries", t.tree.Len()).Msg("lookup table loaded")
	return t, nil
}

func (t *Table) validate(op, id string) error {
	if err := ValidateID(id); err != nil {
		return invalidID(op, id, err)
	}
	return nil
}

func (t *Table) entry(id string) (*util.LookupEntry, bool) {
	v, ok := t.tree.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*util.LookupEntry), true
}

func (t *Table) Get(id string) (Mapping, bool, error) {
	if err := t.validate("get", id); err != nil {
		return Mapping{}, false, err
	}
	t.mu.RLock()
	e, ok := t.entry(id)
	t.mu.RUnlock()
	if !ok {
		return Mapping{}, false, nil
	}
	path, err := t.join("get", id, e.Dir)
	if err != nil {
		return Mapping{}, false, err
	}
	ok, err = t.isDir("get", id, path)
	if err != nil || !ok {
		return Mapping{}, false, err
	}
	return Mapping{ID: id, Path: path}, true, nil
}

func (t *Table) Add(id string) (Mapping, error) {
	if err := t.validate("add", id); err != nil {
		return Mapping{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entry(id); ok {
		path, err := t.join("add", id, e.Dir)
		if err != nil {
			return Mapping{}, err
		}
		if err := t.mkdir("add", id, path); err != nil {
			return Mapping{}, err
		}
		return Mapping{ID: id, Path: path}, nil
	}

	name, path, err := t.freshDir(id)
	if err != nil {
		return Mapping{}, err
	}
	if err := t.mkdir("add", id, path); err != nil {
		return Mapping{}, err
	}

	e := &util.LookupEntry{ID: id, Dir: name, Created: time.Now().UTC()}
	t.tree.Insert(id, e)
	t.dirs[name] = id
	if err := t.persist(); err != nil {
		t.tree.Delete(id)
		delete(t.dirs, name)
		if _, rerr := t.remove("add", id, path); rerr != nil {
			t.log.Warn().Err(rerr).Str("id", id).Str("path", path).Msg("could not roll back directory after table write failed")
		}
		return Mapping{}, storageError("add", id, t.tblPath, err)
	}
	return Mapping{ID: id, Path: path}, nil
}

// freshDir picks an unused directory name. Callers hold t.mu.
func (t *Table) freshDir(id string) (string, string, error) {
	for range uuidAttempts {
		name := uuid.NewString()
		if _, taken := t.dirs[name]; taken {
			continue
		}
		path, err := t.join("add", id, name)
		if err != nil {
			return "", "", err
		}
		exists, err := t.isDir("add", id, path)
		if err != nil {
			return "", "", err
		}
		if !exists {
			return name, path, nil
		}
	}
	return "", "", storageError("add", id, t.base, errNoFreshDir)
}

func (t *Table) Delete(id string) error {
	if err := t.validate("delete", id); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entry(id)
	if !ok {
		return nil
	}
	path, err := t.join("delete", id, e.Dir)
	if err != nil {
		return err
	}
	if _, err := t.remove("delete", id, path); err != nil {
		return err
	}
	t.tree.Delete(id)
	delete(t.dirs, e.Dir)
	if err := t.persist(); err != nil {
		return storageError("delete", id, t.tblPath, err)
	}
	return nil
}

func (t *Table) DeleteAll() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// entries whose directory is already missing count as removed
	all, err := t.snapshot(false)
	if err != nil {
		return err
	}
	removed, rmErr := t.removeAll("delete_all", all)
	for _, m := range removed {
		if e, ok := t.entry(m.ID); ok {
			delete(t.dirs, e.Dir)
		}
		t.tree.Delete(m.ID)
	}
	if err := t.persist(); err != nil {
		return storageError("delete_all", "", t.tblPath, err)
	}
	return rmErr
}

func (t *Table) Iterate() *Iterator {
	return newIterator(func() ([]Mapping, error) {
		t.mu.RLock()
		defer t.mu.RUnlock()
		return t.snapshot(true)
	})
}

// WalkPrefix calls fn for every mapped id starting with prefix, in
// lexical order, stopping early when fn returns false. The walk runs on a
// snapshot, so fn may call back into the index. If the snapshot cannot be
// taken fn is never called.
func (t *Table) WalkPrefix(prefix string, fn func(Mapping) bool) error {
	t.mu.RLock()
	var (
		ms  []Mapping
		err error
	)
	t.tree.WalkPrefix(prefix, func(id string, v interface{}) bool {
		var m Mapping
		var ok bool
		m, ok, err = t.mapping(id, v.(*util.LookupEntry), true)
		if ok {
			ms = append(ms, m)
		}
		return err != nil
	})
	t.mu.RUnlock()
	if err != nil {
		return err
	}
	for _, m := range ms {
		if !fn(m) {
			break
		}
	}
	return nil
}

// Len returns the number of entries in the table, including entries whose
// directory is missing.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tree.Len()
}

// snapshot returns every table entry as a mapping. With existing set, only
// entries whose directory is present are returned. Callers hold t.mu.
func (t *Table) snapshot(existing bool) ([]Mapping, error) {
	out := make([]Mapping, 0, t.tree.Len())
	var err error
	t.tree.Walk(func(id string, v interface{}) bool {
		var m Mapping
		var ok bool
		m, ok, err = t.mapping(id, v.(*util.LookupEntry), existing)
		if ok {
			out = append(out, m)
		}
		return err != nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// mapping resolves a table entry. An entry whose directory is missing is
// reported absent when existing is set; a failed stat is an error.
func (t *Table) mapping(id string, e *util.LookupEntry, existing bool) (Mapping, bool, error) {
	path, err := t.join("iterate", id, e.Dir)
	if err != nil {
		return Mapping{}, false, err
	}
	if existing {
		ok, err := t.isDir("iterate", id, path)
		if err != nil || !ok {
			return Mapping{}, false, err
		}
	}
	return Mapping{ID: id, Path: path}, true, nil
}

// persist writes the in-memory tree to TableFile. Callers hold t.mu.
func (t *Table) persist() error {
	var lt util.LookupTable
	t.tree.Walk(func(_ string, v interface{}) bool {
		lt.Add(*v.(*util.LookupEntry))
		return false
	})
	lt.Sort()
	return lt.Save(t.tblPath)
}
