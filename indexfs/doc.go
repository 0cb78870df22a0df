// Package indexfs implements a read-only FUSE view of a directory index.
//
// The mounted root contains one symlink per mapping: the link's name is the
// id and its target is the mapped directory. This makes indexes whose paths
// are not human-readable (hashed, table) browsable by id:
//
//	$ ls -l /mnt/records
//	customer:17 -> /srv/records/3f2b8c1e-9d4a-4c55-8f0e-2a1b3c4d5e6f
//
// Listing takes a fresh snapshot through Index.Iterate each time; lookups go
// through Index.Get, so ids that fail validation simply do not exist. Inode
// numbers are stable per id for the life of the mount.
//
// The main entry point is NewFS() which creates a filesystem instance that
// can be mounted using the bazil.org/fuse library.
package indexfs
