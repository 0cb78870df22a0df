package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAddCmd creates and returns the add subcommand for the dirindex CLI.
func NewAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add ID...",
		Short: "Create directories for ids and print their paths",
		Long: `Create the directory mapped to each ID, including missing parents, and
print one path per line. Adding an id that already has a directory prints
the existing path and changes nothing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(cmd)
			if err != nil {
				return err
			}
			for _, id := range args {
				m, err := idx.Add(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), m.Path)
			}
			return nil
		},
	}
}
