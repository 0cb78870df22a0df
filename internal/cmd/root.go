package cmd

import (
	"errors"

	"github.com/dendrascience/dendra-dirindex/dirindex"
	"github.com/dendrascience/dendra-dirindex/internal/config"
	"github.com/dendrascience/dendra-dirindex/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var errNotFound = errors.New("no directory mapped")

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	log        zerolog.Logger
}

// index loads the configuration for cmd and opens the configured index.
func (a *app) index(cmd *cobra.Command) (dirindex.Index, error) {
	cfg, err := config.LoadConfig(a.configPath, cmd.Flags())
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	a.log = cfg.Log.Logger(cmd.ErrOrStderr())
	return cfg.OpenIndex(a.log)
}

// NewRootCmd creates and returns the root cobra command for the dirindex CLI.
// It sets up all subcommands, command groups, and persistent flags.
func NewRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "dirindex",
		Short: "dirindex - map record ids to directories",
		Long: `dirindex maps opaque record ids to directories under a base directory.

It is the storage-location layer underneath a record store. The layout is
chosen once per base directory:
  - verbatim: base/<id>
  - hashed:   base/<bucket>/<sub>/<encoded id>
  - table:    base/<uuid>, associated through a persisted lookup table

Every command reads its settings from flags, DIRINDEX_* environment variables
or a config.yaml file, in that order of precedence.`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to a config file (default ./config.yaml or ~/.config/dirindex/config.yaml)")
	flags.StringP("base", "b", "", "Base directory of the index")
	flags.StringP("strategy", "s", string(dirindex.StrategyVerbatim), "Layout strategy: verbatim, hashed or table")
	flags.Int("buckets", dirindex.DefaultBuckets, "Top-level buckets of the hashed strategy (fixed once the base is initialised)")
	flags.Int("workers", 0, "Concurrent removals during reset and additions during seed (default number of CPUs)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.Bool("log-json", false, "Log as JSON instead of console text")

	groupMappings := "mappings"
	groupUtilities := "utilities"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupMappings,
		Title: "Mapping Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	getCmd := NewGetCmd(a)
	addCmd := NewAddCmd(a)
	deleteCmd := NewDeleteCmd(a)
	resetCmd := NewResetCmd(a)
	listCmd := NewListCmd(a)
	mountCmd := NewMountCmd(a)
	seedCmd := NewSeedCmd(a)
	versionCmd := NewVersionCmd()

	getCmd.GroupID = groupMappings
	addCmd.GroupID = groupMappings
	deleteCmd.GroupID = groupMappings
	resetCmd.GroupID = groupMappings
	listCmd.GroupID = groupMappings
	mountCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities
	versionCmd.GroupID = groupUtilities

	// Add subcommands
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}
