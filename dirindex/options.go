package dirindex

import (
	"fmt"
	"os"
	"runtime"

	"github.com/dendrascience/dendra-dirindex/util"
	"github.com/rs/zerolog"
)

// DefaultPerm is the mode used for directories the index creates.
const DefaultPerm os.FileMode = 0o755

// DefaultBuckets is the top-level fan-out of the hashed strategy.
const DefaultBuckets = util.MaxBuckets

type options struct {
	log     zerolog.Logger
	perm    os.FileMode
	buckets int
	workers int
}

// Option configures an index at construction.
type Option func(*options)

// WithLogger sets the logger used for debug and warning output.
// The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithPerm sets the permission bits of created directories.
func WithPerm(perm os.FileMode) Option {
	return func(o *options) { o.perm = perm }
}

// WithBuckets sets the number of top-level buckets of the hashed strategy.
// It is recorded in the base directory and must match on every reopen.
// Other strategies ignore it.
func WithBuckets(n int) Option {
	return func(o *options) { o.buckets = n }
}

// WithWorkers bounds the number of concurrent removals in DeleteAll.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func buildOptions(opts []Option) (options, error) {
	o := options{
		log:     zerolog.Nop(),
		perm:    DefaultPerm,
		buckets: DefaultBuckets,
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.perm&0o700 != 0o700 {
		return o, configError("open", "", fmt.Errorf("directory mode %v must be owner-accessible", o.perm))
	}
	if o.buckets < 1 || o.buckets > util.MaxBuckets {
		return o, configError("open", "", fmt.Errorf("buckets must be between 1 and %d, got %d", util.MaxBuckets, o.buckets))
	}
	if o.workers < 1 {
		o.workers = 1
	}
	return o, nil
}
