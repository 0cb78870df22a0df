package indexfs

import (
	"context"
	"os"
	"syscall"
	"time"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/dendra-dirindex/dirindex"
	"github.com/dendrascience/dendra-dirindex/util"
	"github.com/rs/zerolog"
)

// FS implements a read-only FUSE view of a directory index
type FS struct {
	Index   dirindex.Index   // Index being exposed
	Inodes  *util.InodeTable // Stable inode numbers per id
	Log     zerolog.Logger   // Lookup and listing diagnostics
	Mounted time.Time        // Reported as the root's times
}

// NewFS creates a new view over idx
func NewFS(idx dirindex.Index, log zerolog.Logger) *FS {
	return &FS{
		Index:   idx,
		Inodes:  util.NewInodeTable(),
		Log:     log,
		Mounted: time.Now(),
	}
}

// Root returns the root directory node
func (f *FS) Root() (fs.Node, error) {
	return &Dir{fs: f}, nil
}

// Dir is the root directory: one symlink per mapping
type Dir struct {
	fs *FS
}

// Attr returns directory attributes
func (d *Dir) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = 1 // Root directory gets inode 1
	a.Mode = os.ModeDir | 0o555
	a.Mtime = d.fs.Mounted
	a.Ctime = d.fs.Mounted
	a.Atime = d.fs.Mounted
	return nil
}

// Lookup resolves an id to a symlink pointing at its directory
func (d *Dir) Lookup(ctx context.Context, name string) (fs.Node, error) {
	m, ok, err := d.fs.Index.Get(name)
	switch {
	case err != nil:
		d.fs.Log.Debug().Err(err).Str("name", name).Msg("lookup failed")
		return nil, syscall.ENOENT
	case !ok:
		d.fs.Inodes.Forget(name)
		return nil, syscall.ENOENT
	}
	return &Link{fs: d.fs, mapping: m}, nil
}

// ReadDirAll lists every mapping of a fresh snapshot
func (d *Dir) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	it := d.fs.Index.Iterate()
	var dirents []fuse.Dirent
	for m := range it.All() {
		dirents = append(dirents, fuse.Dirent{
			Inode: d.fs.Inodes.Get(m.ID),
			Type:  fuse.DT_Link,
			Name:  m.ID,
		})
	}
	if err := it.Err(); err != nil {
		d.fs.Log.Error().Err(err).Msg("listing index failed")
		return nil, syscall.EIO
	}
	return dirents, nil
}

// Link is a symlink from an id to its mapped directory
type Link struct {
	fs      *FS
	mapping dirindex.Mapping
}

// Attr returns symlink attributes
func (l *Link) Attr(ctx context.Context, a *fuse.Attr) error {
	a.Inode = l.fs.Inodes.Get(l.mapping.ID)
	a.Mode = os.ModeSymlink | 0o777
	a.Size = uint64(len(l.mapping.Path))
	if info, err := os.Stat(l.mapping.Path); err == nil {
		a.Mtime = info.ModTime()
		a.Ctime = info.ModTime()
		a.Atime = info.ModTime()
	}
	return nil
}

// Readlink returns the mapped directory
func (l *Link) Readlink(ctx context.Context, req *fuse.ReadlinkRequest) (string, error) {
	return l.mapping.Path, nil
}

var (
	_ fs.FS                 = (*FS)(nil)
	_ fs.Node               = (*Dir)(nil)
	_ fs.NodeStringLookuper = (*Dir)(nil)
	_ fs.HandleReadDirAller = (*Dir)(nil)
	_ fs.Node               = (*Link)(nil)
	_ fs.NodeReadlinker     = (*Link)(nil)
)
