package util

import "errors"

// Sentinel errors for package util.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Name encoding errors
	ErrInvalidName = errors.New("invalid encoded name")

	// Metadata errors
	ErrMetadataNotFound = errors.New("index metadata not found")
	ErrLayoutMismatch   = errors.New("index metadata does not match requested layout")

	// Lookup table errors
	ErrDuplicateID     = errors.New("duplicate id in lookup table")
	ErrIndexOutOfRange = errors.New("index out of range")
)
