package dirindex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/dendrascience/dendra-dirindex/util"
)

// MaxHashedIDLen is the longest id the hashed strategy accepts: its encoded
// form must still fit in a single directory entry name.
const MaxHashedIDLen = util.MaxNameLen * 5 / 8

// Hashed spreads ids over a two-level bucket tree:
//
//	base/<bucket>/<sub>/<name>
//
// bucket is a color hash of the id modulo the bucket count, printed with
// three digits; sub is the first byte of the id's SHA-256 digest in hex; name
// is the id in lowercase base32hex, which is reversible and distinct even on
// case-insensitive filesystems. No directory holds more than 256 subbuckets,
// keeping per-directory entry counts low for large indexes.
type Hashed struct {
	*layout
	buckets int
}

// NewHashed opens a hashed index rooted at baseDir, creating it if needed.
// The bucket count (WithBuckets) is recorded on first open and must match on
// every later open.
func NewHashed(baseDir string, opts ...Option) (*Hashed, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, err
	}
	l, err := newLayout(StrategyHashed, baseDir, o)
	if err != nil {
		return nil, err
	}
	return &Hashed{layout: l, buckets: o.buckets}, nil
}

// Buckets returns the top-level fan-out.
func (h *Hashed) Buckets() int {
	return h.buckets
}

func (h *Hashed) resolve(op, id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", invalidID(op, id, err)
	}
	if len(id) > MaxHashedIDLen {
		return "", invalidID(op, id, fmt.Errorf("%w (%d bytes, max %d)", errIDTooLong, len(id), MaxHashedIDLen))
	}
	return h.join(op, id, h.location(id)...)
}

// location returns the path elements below the base for id.
func (h *Hashed) location(id string) []string {
	return []string{
		util.BucketName(util.Bucket(id, h.buckets)),
		util.Subbucket(id),
		util.EncodeName(id),
	}
}

func (h *Hashed) Get(id string) (Mapping, bool, error) {
	path, err := h.resolve("get", id)
	if err != nil {
		return Mapping{}, false, err
	}
	ok, err := h.isDir("get", id, path)
	if err != nil || !ok {
		return Mapping{}, false, err
	}
	return Mapping{ID: id, Path: path}, true, nil
}

func (h *Hashed) Add(id string) (Mapping, error) {
	path, err := h.resolve("add", id)
	if err != nil {
		return Mapping{}, err
	}
	if err := h.mkdir("add", id, path); err != nil {
		return Mapping{}, err
	}
	return Mapping{ID: id, Path: path}, nil
}

// Delete removes the id's directory. Empty bucket directories are left in
// place; DeleteAll prunes them.
func (h *Hashed) Delete(id string) error {
	path, err := h.resolve("delete", id)
	if err != nil {
		return err
	}
	_, err = h.remove("delete", id, path)
	return err
}

func (h *Hashed) DeleteAll() error {
	mappings, err := h.scan()
	if err != nil {
		return storageError("delete_all", "", h.base, err)
	}
	if _, err := h.removeAll("delete_all", mappings); err != nil {
		return err
	}
	h.pruneBuckets()
	return nil
}

func (h *Hashed) Iterate() *Iterator {
	return newIterator(h.scan)
}

// scan walks bucket, subbucket and leaf levels. Entries that do not decode,
// or whose id would hash to a different location, were not created by this
// index and are skipped.
func (h *Hashed) scan() ([]Mapping, error) {
	var out []Mapping
	buckets, err := readDirs(h.base, util.IsBucketName)
	if err != nil {
		return nil, err
	}
	for _, b := range buckets {
		bucketPath := filepath.Join(h.base, b)
		subs, err := readDirs(bucketPath, util.IsSubbucketName)
		if err != nil {
			return nil, err
		}
		for _, s := range subs {
			subPath := filepath.Join(bucketPath, s)
			leaves, err := readDirs(subPath, nil)
			if err != nil {
				return nil, err
			}
			for _, name := range leaves {
				id, err := util.DecodeName(name)
				if err != nil || ValidateID(id) != nil {
					continue
				}
				if util.EncodeName(id) != name || util.Subbucket(id) != s ||
					util.BucketName(util.Bucket(id, h.buckets)) != b {
					continue
				}
				out = append(out, Mapping{ID: id, Path: filepath.Join(subPath, name)})
			}
		}
	}
	return out, nil
}

// pruneBuckets removes empty subbucket and bucket directories. A directory
// that gained an entry in the meantime simply fails to be removed.
func (h *Hashed) pruneBuckets() {
	buckets, err := readDirs(h.base, util.IsBucketName)
	if err != nil {
		h.log.Warn().Err(err).Msg("could not list buckets for pruning")
		return
	}
	for _, b := range buckets {
		bucketPath := filepath.Join(h.base, b)
		subs, err := readDirs(bucketPath, util.IsSubbucketName)
		if err != nil {
			h.log.Debug().Err(err).Str("path", bucketPath).Msg("could not list bucket for pruning")
		}
		for _, s := range subs {
			h.prune(filepath.Join(bucketPath, s))
		}
		h.prune(bucketPath)
	}
}

// prune removes dir if it is empty. A directory that is not empty or is
// already gone is left alone silently.
func (h *Hashed) prune(dir string) {
	err := os.Remove(dir)
	if err == nil || errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) {
		return
	}
	h.log.Debug().Err(err).Str("path", dir).Msg("could not prune bucket directory")
}

// readDirs returns the names of the real subdirectories of dir accepted by
// keep (all of them when keep is nil). A directory that vanished is empty.
func readDirs(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || reserved(e.Name()) {
			continue
		}
		if keep != nil && !keep(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
