// Package cli implements the crimescope command-line interface.
//
// # Commands
//
//   - render: Compute a chart and write SVG, JSON or XLSX artifacts
//   - serve: Serve the chart pages and artifacts over HTTP
//   - explore: Drive a chart's selection from the terminal
//   - charts: List the chart catalog
//   - taxonomy: Draw the offence taxonomy with graphviz
//   - cache: Manage the artifact cache
//
// # Configuration
//
// Every command reads crimescope.toml from the working directory, or the
// file named by --config (TOML or YAML). Flags override the file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crimescope/pkg/buildinfo"
	"github.com/matzehuels/crimescope/pkg/cache"
	"github.com/matzehuels/crimescope/pkg/catalog"
	"github.com/matzehuels/crimescope/pkg/config"
	"github.com/matzehuels/crimescope/pkg/dataset"
	"github.com/matzehuels/crimescope/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "crimescope"

	// defaultDatasetTTL is how long fetched resources stay memoized when the
	// config gives no TTL.
	defaultDatasetTTL = 10 * time.Minute
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogError = log.ErrorLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Crimescope charts historical crime statistics",
		Long:         `Crimescope turns Old Bailey crime datasets into interactive charts: stacked trends, conviction rates, policy periods and drill-down breakdowns, rendered as SVG, JSON or XLSX and served over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			if cfg.Path != "" {
				c.Logger.Debug("loaded config", "path", cfg.Path)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+config.DefaultFile+" if present)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.chartsCommand())
	root.AddCommand(c.taxonomyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// dataOverrides carries the --data and --data-url flags.
type dataOverrides struct {
	dir string
	url string
}

func (d dataOverrides) apply(cfg *config.Config) {
	if d.url != "" {
		cfg.Data.BaseURL = d.url
		cfg.Data.MongoURI = ""
	} else if d.dir != "" {
		cfg.Data.Dir = d.dir
		cfg.Data.BaseURL = ""
		cfg.Data.MongoURI = ""
	}
}

// newRunner opens the configured source and cache and returns a pipeline
// runner over them. The returned cleanup closes both.
func (c *CLI) newRunner(ctx context.Context, data dataOverrides, noCache bool) (*pipeline.Runner, func(), error) {
	cfg := c.cfg
	data.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, func() {}, err
	}

	src, closeSource, err := cfg.OpenSource(ctx)
	if err != nil {
		return nil, func() {}, err
	}

	var artifacts cache.Cache = cache.NewNullCache()
	if !noCache {
		if artifacts, err = cfg.OpenCache(ctx); err != nil {
			closeSource()
			return nil, func() {}, err
		}
	}

	ttl := cfg.Cache.TTL.Std()
	if ttl == 0 {
		ttl = defaultDatasetTTL
	}
	loader := dataset.NewLoader(src,
		dataset.WithMemo(cache.NewMemoryCache()),
		dataset.WithTTL(ttl),
		dataset.WithLogger(c.Logger))

	runner := pipeline.NewRunner(catalog.Default(), loader, artifacts, nil, c.Logger)
	c.Logger.Debug("opened runner", "source", src.Name(), "cache", cfg.Cache.Backend, "no_cache", noCache)

	cleanup := func() {
		_ = runner.Close()
		closeSource()
	}
	return runner, cleanup, nil
}
