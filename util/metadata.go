package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dendrascience/dendra-dirindex/version"
)

// MetadataFile is the name of the marker recording how a base directory is laid out.
const MetadataFile = ".dirindex.json"

type Metadata struct {
	Strategy string    `json:"strategy"`
	Buckets  int       `json:"buckets,omitempty"`
	Version  string    `json:"version"`
	Created  time.Time `json:"created"`
}

// GetVersion returns the current dirindex version string.
// It delegates to the version package to get the version information.
func GetVersion() string {
	return version.GetVersion()
}

// NewMetadata returns metadata for a freshly initialised base directory.
func NewMetadata(strategy string, buckets int) Metadata {
	return Metadata{
		Strategy: strategy,
		Buckets:  buckets,
		Version:  GetVersion(),
		Created:  time.Now().UTC(),
	}
}

// Compatible reports whether an index described by other may operate on a
// base directory described by m. Only the layout matters; versions may differ.
func (m Metadata) Compatible(other Metadata) error {
	if m.Strategy != other.Strategy {
		return fmt.Errorf("%w: base uses strategy %q, requested %q", ErrLayoutMismatch, m.Strategy, other.Strategy)
	}
	if m.Buckets != other.Buckets {
		return fmt.Errorf("%w: base uses %d buckets, requested %d", ErrLayoutMismatch, m.Buckets, other.Buckets)
	}
	return nil
}

func (m Metadata) Save(path string) error {
	return WriteJSONFileAtomic(path, m)
}

// LoadMetadata reads the marker at path. ErrMetadataNotFound is returned when
// the base directory has not been initialised yet.
func LoadMetadata(path string) (Metadata, error) {
	var m Metadata
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, ErrMetadataNotFound
	}
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("decoding metadata %s: %w", path, err)
	}
	return m, nil
}

// EnsureMetadata initialises the marker at path with want, or checks that an
// existing marker is compatible with it.
func EnsureMetadata(path string, want Metadata) (Metadata, error) {
	have, err := LoadMetadata(path)
	switch {
	case errors.Is(err, ErrMetadataNotFound):
		return want, want.Save(path)
	case err != nil:
		return have, err
	}
	return have, have.Compatible(want)
}
