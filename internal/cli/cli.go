// Package cli implements the papersync command-line interface.
//
// The commands drive the scroll-sync engine over a layout document: frame
// and replay render the image pane to PNG, serve exposes sessions over
// HTTP and WebSocket, inspect steps through blocks in a terminal UI.
//
// # Configuration
//
// Settings come from $XDG_CONFIG_HOME/papersync/config.toml (or --config)
// with PAPERSYNC_* environment overrides; see [Config].
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context so long-running work can report progress.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/papersync/pkg/buildinfo"
	"github.com/matzehuels/papersync/pkg/cache"
	"github.com/matzehuels/papersync/pkg/document"
	"github.com/matzehuels/papersync/pkg/pages"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "papersync"

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
	Config *Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "papersync keeps a page image in step with its transcript",
		Long: `papersync drives the scroll-sync engine of a converted paper: as the
transcript scrolls, the page image pans and zooms to the source region of
the paragraph at eye level.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, explicit := c.configPath, c.configPath != ""
			if !explicit {
				path = defaultConfigPath()
			}
			cfg, err := LoadConfigFile(path, explicit)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/papersync/config.toml)")

	root.AddCommand(c.frameCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Document Loading
// =============================================================================

// newCache opens the configured page cache.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.Discard, nil
	}
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.Discard, nil
	case backendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Cache.RedisAddr,
			Password: c.Config.Cache.RedisPassword,
			DB:       c.Config.Cache.RedisDB,
			Prefix:   appName + ":",
		})
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.Discard, nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/papersync/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loaded is a document with its page images.
type loaded struct {
	doc   *document.Document
	set   *pages.Set
	cache cache.Cache
}

func (l *loaded) Close() error { return l.cache.Close() }

// openDocument loads the document at path and starts loading its pages.
// With wait set it blocks until every page has settled.
func (c *CLI) openDocument(ctx context.Context, path string, noCache, wait bool) (*loaded, error) {
	logger := loggerFromContext(ctx)

	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	for _, p := range doc.Check() {
		logger.Warn("block address unusable", "block", p.Block, "err", p.Err)
	}

	pc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		pc.Close()
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cache.DocumentScope(raw))
	src, err := doc.Source(pages.WithCache(pc, keyer, c.Config.Cache.TTL))
	if err != nil {
		pc.Close()
		return nil, err
	}

	var spinner *Spinner
	if wait {
		spinner = newSpinnerWithContext(ctx, "Loading pages...")
	}
	var settled atomic.Int32
	set := pages.Load(ctx, src,
		pages.WithConcurrency(c.Config.Load.Concurrency),
		pages.WithProgress(func(i int, err error) {
			n := settled.Add(1)
			if spinner != nil {
				spinner.SetMessage(fmt.Sprintf("Loading pages %d/%d...", n, src.Len()))
			}
			if err != nil {
				logger.Warn("page failed to load", "page", i, "ref", src.Ref(i), "err", err)
				return
			}
			logger.Debug("page loaded", "page", i, "ref", src.Ref(i))
		}),
	)
	l := &loaded{doc: doc, set: set, cache: pc}
	if !wait {
		return l, nil
	}

	waitCtx := ctx
	if c.Config.Load.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.Config.Load.Timeout)
		defer cancel()
	}
	prog := newProgress(logger)
	spinner.Start()
	err = set.Wait(waitCtx)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Loaded %d/%d pages", set.Loaded(), set.Len()))
		l.Close()
		return nil, fmt.Errorf("wait for pages: %w", err)
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Loaded %d/%d pages", set.Loaded(), set.Len()))
	return l, nil
}
