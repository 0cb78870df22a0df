// Package dirindex maps opaque string identifiers to directories under a
// single base directory. It is the storage-location layer underneath a record
// store: the store asks where an id lives, and never learns how the answer
// was derived.
//
// Every strategy implements Index:
//   - Verbatim: base/<id>, the reference strategy
//   - Hashed: base/<bucket>/<sub>/<encoded id>, for very large id sets
//   - Table: base/<uuid>, associated through a persisted lookup table
//
// Invariants shared by all strategies:
//   - Paths always lie strictly inside the canonical base directory. Ids are
//     validated before any filesystem access (see ValidateID) and the joined
//     path is checked again.
//   - Add is idempotent and safe under concurrent callers; an existing
//     directory is success.
//   - Delete is idempotent and atomic as seen by Get: the directory is first
//     renamed into base/.trash, then purged.
//   - Iterate returns an independent snapshot per call.
//
// Entries of the base whose names begin with '.' belong to the index itself:
//   - .dirindex.json: strategy and bucket count, checked on every open
//   - .dirindex-table.json: the Table strategy's lookup table
//   - .trash/: directories unlinked by Delete and awaiting purge
//
// Errors wrap one of ErrConfiguration, ErrInvalidID or ErrStorage. A missing
// mapping is reported through Get's boolean result, not an error.
package dirindex
