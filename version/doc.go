// Package version reports build information for dirindex.
//
// Values come from link-time variables when set:
//
//	-ldflags "-X github.com/dendrascience/dendra-dirindex/version.Version=v1.0.0 -X github.com/dendrascience/dendra-dirindex/version.Commit=abc123 -X github.com/dendrascience/dendra-dirindex/version.Date=2023-01-01T00:00:00Z"
//
// and otherwise from the module and VCS stamps in debug.ReadBuildInfo.
// GetInfo returns everything as a struct; GetFullVersion and PrintVersion
// format it for people.
package version
