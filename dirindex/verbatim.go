package dirindex

import (
	"os"
)

// Verbatim maps each id to the directory of the same name directly under the
// base: id "a" lives in base/a. It is the reference strategy.
//
// On case-insensitive filesystems ids that differ only in case share a
// directory. Use Hashed when ids are not already case-normalised.
type Verbatim struct {
	*layout
}

// NewVerbatim opens a verbatim index rooted at baseDir, creating it if needed.
func NewVerbatim(baseDir string, opts ...Option) (*Verbatim, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	l, err := newLayout(StrategyVerbatim, baseDir, o)
	if err != nil {
		return nil, err
	}
	return &Verbatim{layout: l}, nil
}

func (v *Verbatim) resolve(op, id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", invalidID(op, id, err)
	}
	return v.join(op, id, id)
}

func (v *Verbatim) Get(id string) (Mapping, bool, error) {
	path, err := v.resolve("get", id)
	if err != nil {
		return Mapping{}, false, err
	}
	ok, err := v.isDir("get", id, path)
	if err != nil || !ok {
		return Mapping{}, false, err
	}
	return Mapping{ID: id, Path: path}, true, nil
}

func (v *Verbatim) Add(id string) (Mapping, error) {
	path, err := v.resolve("add", id)
	if err != nil {
		return Mapping{}, err
	}
	if err := v.mkdir("add", id, path); err != nil {
		return Mapping{}, err
	}
	return Mapping{ID: id, Path: path}, nil
}

func (v *Verbatim) Delete(id string) error {
	path, err := v.resolve("delete", id)
	if err != nil {
		return err
	}
	_, err = v.remove("delete", id, path)
	return err
}

func (v *Verbatim) DeleteAll() error {
	mappings, err := v.scan()
	if err != nil {
		return storageError("delete_all", "", v.base, err)
	}
	_, err = v.removeAll("delete_all", mappings)
	return err
}

func (v *Verbatim) Iterate() *Iterator {
	return newIterator(v.scan)
}

// scan lists the directories directly under the base whose names are valid ids.
func (v *Verbatim) scan() ([]Mapping, error) {
	entries, err := os.ReadDir(v.base)
	if err != nil {
		return nil, err
	}
	out := make([]Mapping, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || reserved(name) || ValidateID(name) != nil {
			continue
		}
		path, err := v.join("iterate", name, name)
		if err != nil {
			continue
		}
		out = append(out, Mapping{ID: name, Path: path})
	}
	return out, nil
}
