// Package cli implements the matdump command-line interface.
//
// This package provides commands for exporting material libraries to typed
// text documents, drawing their reference structure, serving exports over
// HTTP, and managing the document cache. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - export: Walk a material library and write one document per material
//   - graph: Render the material reference structure as DOT, SVG, or PNG
//   - serve: Run the HTTP export service
//   - cache: Manage the document cache
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/materialkit/matdump/pkg/buildinfo"
	"github.com/materialkit/matdump/pkg/cache"
	"github.com/materialkit/matdump/pkg/config"
	"github.com/materialkit/matdump/pkg/scene"
	"github.com/materialkit/matdump/pkg/scene/jsonfile"
	scenemongo "github.com/materialkit/matdump/pkg/scene/mongo"
)

// appName is the application name used for directories and display.
const appName = "matdump"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "matdump",
		Short:        "Matdump exports material libraries as typed text documents",
		Long:         `Matdump walks the material and texture-map graph of a scene library and writes a fully-typed, round-trippable text document per material, tolerating cyclic graphs and unreliable host introspection.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default matdump.toml if present)")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the effective configuration for a command run.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.configPath != "" {
		return config.Load(c.configPath, true)
	}
	return config.Load(config.DefaultFilename, false)
}

// newCache builds the document cache selected by cfg. Backend failures
// degrade to the null cache: caching is an optimization, never a blocker.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache()
	}

	if cfg.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "err", err)
			return cache.NewNullCache()
		}
		return rc
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache()
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// openLibrary loads the library named by the positional argument. For the
// json source the argument is a scene file path; for mongo it is the stored
// library name.
func (c *CLI) openLibrary(ctx context.Context, cfg *config.Config, arg string) (scene.Library, func(), error) {
	if cfg.Scene.Source == "mongo" {
		src, err := scenemongo.NewSource(ctx, scenemongo.Config{
			URI:        cfg.Scene.MongoURI,
			Database:   cfg.Scene.MongoDatabase,
			Collection: cfg.Scene.MongoCollection,
		})
		if err != nil {
			return nil, nil, err
		}
		lib, err := src.Library(ctx, arg)
		if err != nil {
			_ = src.Close(ctx)
			return nil, nil, err
		}
		return lib, func() { _ = src.Close(ctx) }, nil
	}

	lib, err := jsonfile.Load(arg)
	if err != nil {
		return nil, nil, err
	}
	return lib, func() {}, nil
}

// cacheDir returns the cache directory using XDG standard (~/.cache/matdump/).
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
