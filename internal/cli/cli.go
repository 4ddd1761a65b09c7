// Package cli implements the layoutmetrics command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutmetrics/pkg/buildinfo"
	"github.com/matzehuels/layoutmetrics/pkg/cache"
	"github.com/matzehuels/layoutmetrics/pkg/config"
	"github.com/matzehuels/layoutmetrics/pkg/pipeline"
	"github.com/matzehuels/layoutmetrics/pkg/store"
	"github.com/matzehuels/layoutmetrics/pkg/store/mongo"
	"github.com/matzehuels/layoutmetrics/pkg/store/postgres"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

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

	configPath string
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
		Short:        "Layoutmetrics scores the layout quality of process diagrams",
		Long:         `Layoutmetrics computes layout-quality metrics for process diagrams: the number of crossing flow segments, the total segment count, and the longest simple path from a start node.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/layoutmetrics/config.toml)")

	root.AddCommand(c.metricsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.reportsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOpts selects which backends newRunner wires up.
type runnerOpts struct {
	noCache bool
	store   bool
}

// newRunner creates a pipeline runner from the configuration.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, opts runnerOpts) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, err
	}

	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.Cache.Prefix)
	}

	var st store.Store
	if opts.store {
		st, err = openStore(ctx, cfg)
		if err != nil {
			_ = ch.Close()
			return nil, err
		}
	}
	return pipeline.NewRunner(ch, keyer, st, c.Logger), nil
}

// newCache picks redis when an address is configured, the file cache
// otherwise. A redis server that cannot be reached degrades to the file
// cache with a warning.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			Prefix:   appName + ":",
		})
		if err == nil {
			c.Logger.Debug("using redis cache", "addr", cfg.Cache.RedisAddr)
			return rc, nil
		}
		c.Logger.Warn("redis unavailable, using file cache", "addr", cfg.Cache.RedisAddr, "err", err)
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// openStore opens the configured report store.
func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch sc := cfg.Store; sc.Backend {
	case config.BackendFile, "":
		dir, err := cfg.ReportsDir()
		if err != nil {
			return nil, err
		}
		s, err := store.NewFileStore(dir)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMongo:
		s, err := mongo.New(ctx, mongo.Config{URI: sc.MongoURI, Database: sc.MongoDatabase})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendPostgres:
		s, err := postgres.Connect(ctx, sc.PostgresURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}
