package cmd

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates and returns the seed subcommand for the dirindex CLI.
// It populates an index with random ids for testing and benchmarking.
func NewSeedCmd(a *app) *cobra.Command {
	var (
		count   int
		prefix  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the index with random ids",
		Long: `Populate the index with COUNT random UUID ids for testing.

Each id is prefixed with PREFIX. Directories are created concurrently using
the configured number of workers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return errors.New("--count must not be negative")
			}
			idx, err := a.index(cmd)
			if err != nil {
				return err
			}

			var created atomic.Int64
			p := pool.New().WithErrors().WithMaxGoroutines(max(a.cfg.Index.Workers, 1))
			for range count {
				id := prefix + uuid.NewString()
				p.Go(func() error {
					if _, err := idx.Add(id); err != nil {
						return err
					}
					if n := created.Add(1); verbose && n%1000 == 0 {
						a.log.Info().Int64("created", n).Int("total", count).Msg("seeding")
					}
					return nil
				})
			}
			err = p.Wait()

			fmt.Fprintf(cmd.OutOrStdout(), "Created %d of %d directories under %s\n", created.Load(), count, idx.Base())
			return err
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1000, "Number of ids to add")
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "Prefix for every generated id")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log progress every 1000 ids")

	return cmd
}
