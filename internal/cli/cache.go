package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/svgcrop/pkg/cache"
	"github.com/matzehuels/svgcrop/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the crop result cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached crop results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context(), c.Config.Cache)
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context, cfg config.Cache) error {
	if cfg.Backend != config.BackendFile {
		printWarning("Only the file cache can be cleared from the CLI (backend: %s)", cfg.Backend)
		return nil
	}

	store, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	fc, ok := store.(*cache.FileCache)
	if !ok {
		printInfo("Cache is disabled")
		return nil
	}

	count, err := fc.Clear()
	if err != nil {
		return err
	}
	if count == 0 {
		printInfo("Cache is empty")
	} else {
		printSuccess("Cleared %d cached entries", count)
	}
	printDetail("Directory: %s", fc.Dir())
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cachePath(c.Config.Cache)
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// cachePath returns the file cache directory for cfg.
func cachePath(cfg config.Cache) (string, error) {
	if cfg.Dir != "" {
		return cfg.Dir, nil
	}
	return cacheDir()
}
