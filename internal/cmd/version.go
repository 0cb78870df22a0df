package cmd

import (
	"encoding/json"

	"github.com/dendrascience/dendra-dirindex/version"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates and returns the version subcommand for the dirindex CLI.
func NewVersionCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(version.GetInfo())
			}
			version.PrintVersion(cmd.OutOrStdout(), "dirindex")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")

	return cmd
}
