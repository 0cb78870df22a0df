// Package cmd provides the command-line interface implementation for dirindex.
//
// It uses the Cobra library for command structure and Fang for styling. Every
// subcommand opens the index described by the persistent flags, DIRINDEX_*
// environment variables or a config file, as resolved by the config package.
//
// The package is organized into the following commands:
//   - root: persistent flags and command groups
//   - get, add, delete, reset, list: the mapping operations
//   - mount: read-only FUSE view of the index
//   - seed: bulk population with random ids
//   - version: build information
//
// Each command is implemented as a separate file with its own constructor
// function that returns a *cobra.Command.
package cmd
