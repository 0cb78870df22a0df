// Package main provides the dirindex command-line interface.
//
// dirindex maps opaque record ids to directories under a base directory, using
// one of three layouts chosen once per base: verbatim, hashed or table. The
// binary exposes the index for inspection and maintenance:
//   - get, add, delete: resolve, create and remove single mappings
//   - reset: remove every mapping and keep the base directory
//   - list: print a snapshot of every mapping
//   - mount: browse the index read-only through FUSE
//   - seed: populate an index with random ids
//   - version: print build information
package main
