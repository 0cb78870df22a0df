package dirindex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dendrascience/dendra-dirindex/util"
)

// MaxIDLen is the longest identifier, in bytes, accepted by any strategy.
const MaxIDLen = util.MaxNameLen

var (
	errEmptyID      = errors.New("id is empty")
	errIDTooLong    = errors.New("id is too long")
	errIDNotUTF8    = errors.New("id is not valid UTF-8")
	errIDNul        = errors.New("id contains a NUL byte")
	errIDSeparator  = errors.New("id contains a path separator")
	errIDReserved   = errors.New("id starts with '.', which is reserved")
	errEscapesBase  = errors.New("path escapes the base directory")
	errNotDirectory = errors.New("not a directory")
	errNoFreshDir   = errors.New("could not allocate an unused directory name")
)

// ValidateID checks id against the rules shared by every strategy. A valid id
// is a single path element that can never name the base directory, its
// parent, or one of the index's own reserved entries.
func ValidateID(id string) error {
	switch {
	case id == "":
		return errEmptyID
	case len(id) > MaxIDLen:
		return fmt.Errorf("%w (%d bytes, max %d)", errIDTooLong, len(id), MaxIDLen)
	case !utf8.ValidString(id):
		return errIDNotUTF8
	case strings.IndexByte(id, 0) >= 0:
		return errIDNul
	case strings.ContainsAny(id, `/\`):
		return errIDSeparator
	case id[0] == '.':
		return errIDReserved
	}
	return nil
}

// canonicalBase resolves dir to an absolute path with every symlink and
// relative segment removed, creating it first if it does not exist.
func canonicalBase(dir string, perm os.FileMode) (string, error) {
	if dir == "" {
		return "", configError("open", dir, errors.New("base directory is required"))
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", configError("open", dir, err)
	}
	if err := os.MkdirAll(abs, perm); err != nil {
		return "", configError("open", abs, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", configError("open", abs, err)
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return "", configError("open", resolved, err)
	}
	if !info.IsDir() {
		return "", configError("open", resolved, errNotDirectory)
	}
	return resolved, nil
}

// within reports whether path is strictly inside base. Both must be clean
// absolute paths.
func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	if rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
