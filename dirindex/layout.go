package dirindex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/dendrascience/dendra-dirindex/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// trashDir holds directories that were unlinked from their id but not yet
// purged. It lives under the base so the rename into it stays on one device.
const trashDir = ".trash"

// mkdirAttempts bounds retries when a parent directory vanishes between the
// steps of MkdirAll, which happens when DeleteAll prunes an empty bucket.
const mkdirAttempts = 3

// layout carries the filesystem plumbing shared by every strategy.
type layout struct {
	base     string
	strategy Strategy
	perm     os.FileMode
	workers  int
	log      zerolog.Logger
}

func newLayout(strategy Strategy, dir string, o options) (*layout, error) {
	base, err := canonicalBase(dir, o.perm)
	if err != nil {
		return nil, err
	}

	buckets := 0
	if strategy == StrategyHashed {
		buckets = o.buckets
	}
	metaPath := filepath.Join(base, util.MetadataFile)
	if _, err := util.EnsureMetadata(metaPath, util.NewMetadata(string(strategy), buckets)); err != nil {
		return nil, configError("open", metaPath, err)
	}

	l := &layout{
		base:     base,
		strategy: strategy,
		perm:     o.perm,
		workers:  o.workers,
		log:      o.log.With().Str("strategy", string(strategy)).Str("base", base).Logger(),
	}
	if err := l.purgeTrash(); err != nil {
		l.log.Warn().Err(err).Msg("could not purge trash left by an earlier delete")
	}
	return l, nil
}

// Base returns the canonical base directory.
func (l *layout) Base() string {
	return l.base
}

// join builds a path under the base and rejects anything that would land on
// or outside it.
func (l *layout) join(op, id string, elem ...string) (string, error) {
	p := filepath.Join(append([]string{l.base}, elem...)...)
	if !within(l.base, p) {
		return "", invalidID(op, id, errEscapesBase)
	}
	return p, nil
}

// isDir reports whether path is a real directory. Symlinks, regular files
// and missing entries all report false.
func (l *layout) isDir(op, id, path string) (bool, error) {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
		return false, nil
	}
	if err != nil {
		return false, storageError(op, id, path, err)
	}
	return info.IsDir(), nil
}

// mkdir creates path and any missing parents. An existing directory is
// success. Nothing is rolled back on failure: parents that were created stay,
// and calling mkdir again finishes the job.
func (l *layout) mkdir(op, id, path string) error {
	var err error
	for range mkdirAttempts {
		err = os.MkdirAll(path, l.perm)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	if err != nil {
		return storageError(op, id, path, err)
	}
	ok, err := l.isDir(op, id, path)
	if err != nil {
		return err
	}
	if !ok {
		return storageError(op, id, path, errNotDirectory)
	}
	l.log.Debug().Str("id", id).Str("path", path).Msg("directory ready")
	return nil
}

// remove unlinks the directory at path from its id by renaming it into the
// trash, then purges it. The rename is atomic, so the directory is either
// still fully in place (and an error is returned) or gone. It reports whether
// a directory was removed.
func (l *layout) remove(op, id, path string) (bool, error) {
	ok, err := l.isDir(op, id, path)
	if err != nil || !ok {
		return false, err
	}

	trash := filepath.Join(l.base, trashDir)
	if err := os.MkdirAll(trash, l.perm); err != nil {
		return false, storageError(op, id, trash, err)
	}
	tomb := filepath.Join(trash, uuid.NewString())
	if err := os.Rename(path, tomb); err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// lost a race with another delete
			return false, nil
		case errors.Is(err, syscall.EXDEV):
			// a mount point inside the base; fall back to removing in place
			if err := os.RemoveAll(path); err != nil {
				return false, storageError(op, id, path, err)
			}
			return true, nil
		default:
			return false, storageError(op, id, path, err)
		}
	}

	if err := os.RemoveAll(tomb); err != nil {
		l.log.Warn().Err(err).Str("id", id).Str("trash", tomb).Msg("directory unlinked but not fully purged")
	}
	l.log.Debug().Str("id", id).Str("path", path).Msg("directory removed")
	return true, nil
}

// removeAll removes every mapping on a bounded worker pool and returns the
// ones that were actually removed. Failures do not stop the other removals.
func (l *layout) removeAll(op string, mappings []Mapping) ([]Mapping, error) {
	var (
		mu      sync.Mutex
		removed = make([]Mapping, 0, len(mappings))
		failed  int
	)

	p := pool.New().WithErrors().WithMaxGoroutines(l.workers)
	for _, m := range mappings {
		p.Go(func() error {
			_, err := l.remove(op, m.ID, m.Path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				return err
			}
			removed = append(removed, m)
			return nil
		})
	}
	err := p.Wait()

	if perr := l.purgeTrash(); perr != nil {
		l.log.Warn().Err(perr).Msg("could not purge trash")
	}
	if err != nil {
		return removed, storageError(op, "", l.base,
			fmt.Errorf("%d of %d entries could not be removed: %w", failed, len(mappings), err))
	}
	l.log.Debug().Int("removed", len(removed)).Msg("all mappings removed")
	return removed, nil
}

// purgeTrash removes whatever earlier deletes left in the trash. The trash
// directory itself stays, since a concurrent delete may be renaming into it.
func (l *layout) purgeTrash() error {
	trash := filepath.Join(l.base, trashDir)
	entries, err := os.ReadDir(trash)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(trash, e.Name())); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// reserved reports whether a base entry belongs to the index itself.
func reserved(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
