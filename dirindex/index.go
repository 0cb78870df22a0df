package dirindex

import (
	"fmt"
	"strings"
)

// Mapping associates one identifier with the directory it resolves to.
// Path is absolute and always inside the index's base directory.
type Mapping struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// Index maps opaque identifiers to directories under a single base directory.
// Implementations are safe for concurrent use.
type Index interface {
	// Base returns the canonical absolute base directory.
	Base() string

	// Get resolves id without touching the filesystem beyond a stat. The
	// boolean is false when no directory exists for id; that is not an error.
	Get(id string) (Mapping, bool, error)

	// Add returns the mapping for id, creating its directory and any missing
	// parents first. Adding an existing id returns the same mapping.
	Add(id string) (Mapping, error)

	// Delete removes the directory for id and everything in it. Deleting an
	// id that has no directory is a no-op.
	Delete(id string) error

	// DeleteAll removes every mapped directory and keeps the base directory.
	DeleteAll() error

	// Iterate returns a fresh iterator over a snapshot of all mappings.
	Iterate() *Iterator
}

// Strategy names a way of deriving a directory from an identifier.
type Strategy string

const (
	StrategyVerbatim Strategy = "verbatim"
	StrategyHashed   Strategy = "hashed"
	StrategyTable    Strategy = "table"
)

// Strategies lists every supported strategy.
var Strategies = []Strategy{StrategyVerbatim, StrategyHashed, StrategyTable}

// ParseStrategy converts a configuration value to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", configError("open", "", fmt.Errorf("unknown strategy %q", s))
}

// Open constructs an index of the given strategy rooted at baseDir.
func Open(strategy Strategy, baseDir string, opts ...Option) (Index, error) {
	var (
		idx Index
		err error
	)
	switch strategy {
	case StrategyVerbatim:
		idx, err = nonNil(NewVerbatim(baseDir, opts...))
	case StrategyHashed:
		idx, err = nonNil(NewHashed(baseDir, opts...))
	case StrategyTable:
		idx, err = nonNil(NewTable(baseDir, opts...))
	default:
		err = configError("open", baseDir, fmt.Errorf("unknown strategy %q", strategy))
	}
	return idx, err
}

// nonNil keeps a typed nil pointer from becoming a non-nil Index.
func nonNil[T Index](idx T, err error) (Index, error) {
	if err != nil {
		return nil, err
	}
	return idx, nil
}

var (
	_ Index = (*Verbatim)(nil)
	_ Index = (*Hashed)(nil)
	_ Index = (*Table)(nil)
)
