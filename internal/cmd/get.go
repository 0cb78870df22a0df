package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewGetCmd creates and returns the get subcommand for the dirindex CLI.
// It prints the directory mapped to an id without creating anything.
func NewGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Print the directory mapped to an id",
		Long: `Print the directory mapped to ID.

Exits with an error when no directory exists for ID. Nothing is created.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(cmd)
			if err != nil {
				return err
			}
			m, ok, err := idx.Get(args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s: %w", args[0], errNotFound)
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.Path)
			return nil
		},
	}
}
