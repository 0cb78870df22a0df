// Package util provides the on-disk building blocks shared by the dirindex
// strategies and the indexfs view.
//
// Key Components:
//
// Bucketing and Names:
//   - Bucket derives a top-level bucket from a color hash of the id (at most MaxBuckets)
//   - Subbucket adds a second level from the first byte of the id's SHA-256 digest
//   - EncodeName/DecodeName map ids to reversible, case-insensitive-safe names
//
// Lookup Tables:
//   - LookupTable and LookupEntry persist explicit id to directory associations
//   - Tables are written atomically (temp file, then rename)
//
// Metadata:
//   - Metadata records the strategy and bucket count a base directory was
//     initialised with, so a base is never reopened with a different layout
//
// Inodes:
//   - InodeTable hands out stable inode numbers for the FUSE view
package util
