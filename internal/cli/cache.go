package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pointlayer/pkg/cache"
)

// cacheCommand groups the subcommands that inspect and reset the on-disk
// artifact store used by encode.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset rendered layer artifacts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Delete every cached SVG, JSON, PNG and PDF artifact",
			Args:  cobra.NoArgs,
			RunE:  func(cmd *cobra.Command, _ []string) error { return clearArtifacts() },
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show where encoded artifacts are stored",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				dir, err := cacheDir()
				if err != nil {
					return fmt.Errorf("resolve artifact dir: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
				return err
			},
		},
	)
	return cmd
}

func clearArtifacts() error {
	dir, err := cacheDir()
	if err != nil {
		return fmt.Errorf("resolve artifact dir: %w", err)
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		printInfo("No artifacts stored under %s", dir)
		return nil
	}

	store, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	removed, err := store.Clear()
	if err != nil {
		return err
	}
	printSuccess("Removed %d artifacts", removed)
	printDetail("%s", dir)
	return nil
}
