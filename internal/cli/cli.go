// Package cli implements the upset command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/upset/pkg/buildinfo"
	"github.com/matzehuels/upset/pkg/cache"
	"github.com/matzehuels/upset/pkg/config"
	"github.com/matzehuels/upset/pkg/httputil"
	"github.com/matzehuels/upset/pkg/observability"
	"github.com/matzehuels/upset/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "upset"

	// remoteTTL is how long downloaded inputs are reused.
	remoteTTL = time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "upset renders upset plots of set intersections",
		Long:         `upset reads tab-separated intersection counts and renders them as upset plots: a dot matrix of set membership next to a bar chart of intersection sizes.`,
		Version:      buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				hooks := observability.NewLogHooks(c.Logger)
				observability.SetPipelineHooks(hooks)
				observability.SetCacheHooks(hooks)
				observability.SetServerHooks(hooks)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/upset/config.toml)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.overlapCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	switch c.Config.Cache.Backend {
	case cache.BackendRedis, cache.BackendMongo:
		// Shared backends may hold entries from other tools.
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), appName+":")
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.ArtifactTTL = c.Config.Cache.TTL
	r.Fetcher = c.newFetcher(noCache)
	return r, nil
}

// openCache opens the configured backend, or the file cache under
// cacheDir when none is configured.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		dir = ""
	}
	opts := c.Config.CacheOptions(dir)
	if (opts.Backend == "" || opts.Backend == cache.BackendFile) && opts.Dir == "" {
		return cache.NewNullCache(), nil
	}
	return cache.Open(ctx, opts)
}

// newFetcher returns a fetcher for http(s) inputs, caching downloads
// unless noCache is set.
func (c *CLI) newFetcher(noCache bool) *httputil.Fetcher {
	if noCache {
		return httputil.NewFetcher(nil, c.Logger)
	}
	dir, err := cacheDir()
	if err != nil {
		return httputil.NewFetcher(nil, c.Logger)
	}
	hc, err := httputil.NewCache(filepath.Join(dir, "remote"), remoteTTL)
	if err != nil {
		c.Logger.Debug("remote cache disabled", "err", err)
		return httputil.NewFetcher(nil, c.Logger)
	}
	return httputil.NewFetcher(hc, c.Logger)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/upset/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// setCLIDefaults fills options the flags left unset from the config file,
// then applies pipeline defaults.
func (c *CLI) setCLIDefaults(opts *pipeline.Options) {
	cc := c.Config.Chart
	if opts.Width == 0 {
		opts.Width = cc.Width
	}
	if opts.Height == 0 {
		opts.Height = cc.Height
	}
	if opts.FontSize == 0 {
		opts.FontSize = cc.FontSize
	}
	if len(opts.Formats) == 0 {
		opts.Formats = cc.Formats
	}
	if opts.Scale == 0 {
		opts.Scale = cc.Scale
	}
	opts.Palette = c.Config.Palette
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
}

// parseFormats parses a comma-separated format string into a slice.
// An empty string yields nil so the config or pipeline default applies.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
