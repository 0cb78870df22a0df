package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// NewDeleteCmd creates and returns the delete subcommand for the dirindex CLI.
func NewDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Remove the directories of ids and everything in them",
		Long: `Remove the directory mapped to each ID, recursively.

Ids without a directory are skipped silently.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.index(cmd)
			if err != nil {
				return err
			}
			for _, id := range args {
				if err := idx.Delete(id); err != nil {
					return err
				}
				a.log.Info().Str("id", id).Msg("deleted")
			}
			return nil
		},
	}
}

// NewResetCmd creates and returns the reset subcommand for the dirindex CLI.
// It removes every mapped directory and keeps the base directory.
func NewResetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every mapped directory",
		Long: `Remove every mapped directory under the base directory.

The base directory itself and the index metadata are kept, so the index is
immediately usable again. On partial failure the entries already removed
stay removed; run reset again to retry the rest.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to remove every mapping without --yes")
			}
			idx, err := a.index(cmd)
			if err != nil {
				return err
			}
			if err := idx.DeleteAll(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed all mappings under %s\n", idx.Base())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm removal of every mapping")

	return cmd
}
