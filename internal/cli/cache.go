package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/upset/pkg/cache"
	"github.com/matzehuels/upset/pkg/httputil"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached layouts, renders and downloads",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCacheClear(cmd.Context())
		},
	}
}

func (c *CLI) runCacheClear(ctx context.Context) error {
	dir, err := cacheDir()
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}

	ch, err := c.openCache(ctx, false)
	if err != nil {
		return err
	}
	defer ch.Close()

	clearer, ok := ch.(cache.Clearer)
	if !ok {
		printInfo("Cache backend %q cannot be cleared", c.Config.Cache.Backend)
		return nil
	}
	if err := clearer.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	remote := filepath.Join(dir, "remote")
	if _, err := os.Stat(remote); err == nil {
		hc, err := httputil.NewCache(remote, remoteTTL)
		if err != nil {
			return err
		}
		if err := hc.Clear(); err != nil {
			return fmt.Errorf("clear downloads: %w", err)
		}
	}

	printSuccess("Cleared cache")
	if fc, ok := ch.(*cache.FileCache); ok {
		printDetail("Directory: %s", fc.Dir())
	}
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(out, c.Config.CacheOptions(dir).Dir)
			return nil
		},
	}
}
