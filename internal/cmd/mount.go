package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"
	"github.com/dendrascience/dendra-dirindex/indexfs"
	"github.com/dendrascience/dendra-dirindex/version"
	"github.com/spf13/cobra"
)

// NewMountCmd creates and returns the mount subcommand for the dirindex CLI.
// It exposes the index as a read-only FUSE directory of symlinks.
func NewMountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mount MOUNTPOINT",
		Short: "Mount a read-only view of the index",
		Long: `Mount a read-only view of the index at MOUNTPOINT.

Every mapping appears as a symlink named after its id, pointing at the
mapped directory. The mountpoint must not overlap the base directory.
Interrupt to unmount.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMount(cmd, a, args[0])
		},
	}
}

func runMount(cmd *cobra.Command, a *app, mountpoint string) error {
	idx, err := a.index(cmd)
	if err != nil {
		return err
	}
	if pathsOverlap(idx.Base(), mountpoint) {
		return fmt.Errorf("mountpoint %s overlaps base directory %s", mountpoint, idx.Base())
	}

	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName("dirindex"),
		fuse.Subtype("dirindex"),
		fuse.ReadOnly(),
	)
	if err != nil {
		return fmt.Errorf("failed to mount %s: %w", mountpoint, err)
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		a.log.Info().Msg("Received interrupt signal, shutting down...")
		if err := fuse.Unmount(mountpoint); err != nil {
			a.log.Warn().Err(err).Str("mountpoint", mountpoint).Msg("unmount failed")
		}
	}()

	a.log.Info().
		Str("version", version.GetVersion()).
		Str("mountpoint", mountpoint).
		Str("base", idx.Base()).
		Msg("dirindex mounted")

	if err := fs.Serve(c, indexfs.NewFS(idx, a.log)); err != nil {
		return err
	}
	a.log.Info().Msg("Shutdown complete")
	return nil
}

// pathsOverlap reports whether one path is the other or lies beneath it.
// Paths are compared after resolving symlinks; a path that cannot be resolved
// (it does not exist yet) is made absolute instead.
func pathsOverlap(path1, path2 string) bool {
	abs1, abs2 := resolvePath(path1), resolvePath(path2)
	return within(abs1, abs2) || within(abs2, abs1)
}

func resolvePath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		if abs, err := filepath.Abs(resolved); err == nil {
			return abs
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func within(parent, child string) bool {
	if parent == child {
		return true
	}
	return strings.HasPrefix(child, strings.TrimSuffix(parent, string(filepath.Separator))+string(filepath.Separator))
}
