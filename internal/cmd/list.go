package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCmd creates and returns the list subcommand for the dirindex CLI.
// It enumerates a snapshot of every mapping.
func NewListCmd(a *app) *cobra.Command {
	var (
		asJSON    bool
		countOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every id and its directory",
		Long: `List every mapping of the index, one per line as "ID<TAB>PATH".

The listing is a snapshot taken when the first entry is read; mappings added
while it runs may be missing. Order is unspecified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			count := 0
			it := idx.Iterate()
			for m := range it.All() {
				count++
				switch {
				case countOnly:
				case asJSON:
					if err := enc.Encode(m); err != nil {
						return err
					}
				default:
					fmt.Fprintf(out, "%s\t%s\n", m.ID, m.Path)
				}
			}
			if err := it.Err(); err != nil {
				return err
			}
			if countOnly {
				fmt.Fprintln(out, count)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per mapping")
	cmd.Flags().BoolVar(&countOnly, "count", false, "Only print the number of mappings")

	return cmd
}
