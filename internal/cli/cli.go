package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svgcrop/pkg/buildinfo"
	"github.com/matzehuels/svgcrop/pkg/cache"
	"github.com/matzehuels/svgcrop/pkg/config"
	"github.com/matzehuels/svgcrop/pkg/crop"
	"github.com/matzehuels/svgcrop/pkg/pipeline"
	"github.com/matzehuels/svgcrop/pkg/render"
	"github.com/matzehuels/svgcrop/pkg/render/chrome"
	"github.com/matzehuels/svgcrop/pkg/render/raster"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "svgcrop"
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

	// Config is loaded before any command runs.
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
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
		Short:        "svgcrop trims SVG viewBoxes to their visible content",
		Long:         `svgcrop renders SVG documents, finds the bounds of their visible pixels and rewrites each viewBox to fit that content.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/svgcrop/config.toml)")

	// Register all subcommands
	root.AddCommand(c.cropCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.browserCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default one.
func (c *CLI) loadConfig() error {
	path := c.configPath
	if path == "" {
		var err error
		if path, err = config.Path(); err != nil {
			c.Config = config.Default()
			return nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from cfg. The returned runner owns
// the cache; the renderer is returned separately so callers can start or
// close a browser around it.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, r render.Renderer) (*pipeline.Runner, error) {
	store, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(crop.New(r, c.Logger), store, newKeyer(cfg.Cache), c.Logger)
	runner.Renderer = cfg.Renderer.Kind
	if cfg.Cache.TTL > 0 {
		runner.TTL = cfg.Cache.TTL
	}
	return runner, nil
}

// newRenderer builds the renderer selected by cfg.
func (c *CLI) newRenderer(cfg config.Renderer) (render.Renderer, error) {
	if err := pipeline.ValidateRenderer(cfg.Kind); err != nil {
		return nil, err
	}
	if cfg.Kind == pipeline.RendererRaster {
		return raster.New(), nil
	}

	opts := []chrome.Option{chrome.WithLogger(c.Logger)}
	if cfg.Bin != "" {
		opts = append(opts, chrome.WithBin(cfg.Bin))
	}
	if cfg.ControlURL != "" {
		opts = append(opts, chrome.WithControlURL(cfg.ControlURL))
	}
	if cfg.NoSandbox {
		opts = append(opts, chrome.WithNoSandbox())
	}
	if !cfg.Headless {
		opts = append(opts, chrome.WithHeadful())
	}
	return chrome.New(opts...)
}

// newCache opens the configured cache backend.
func newCache(ctx context.Context, cfg config.Cache) (cache.Cache, error) {
	switch cfg.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	case config.BackendMongo:
		return cache.NewMongoCache(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// newKeyer namespaces cache keys when a prefix is configured, so several
// deployments can share one Redis or Mongo instance.
func newKeyer(cfg config.Cache) cache.Keyer {
	if cfg.KeyPrefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), cfg.KeyPrefix)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/svgcrop/).
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
// Flag Helpers
// =============================================================================

// rendererFlags are the renderer flags shared by crop and serve.
type rendererFlags struct {
	kind       string
	bin        string
	controlURL string
	noSandbox  bool
}

func (f *rendererFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "renderer", "", "renderer: chrome (default), raster")
	cmd.Flags().StringVar(&f.bin, "chrome-bin", "", "Chrome executable")
	cmd.Flags().StringVar(&f.controlURL, "control-url", "", "DevTools URL of a running browser (see 'svgcrop browser')")
	cmd.Flags().BoolVar(&f.noSandbox, "no-sandbox", false, "disable the Chrome sandbox")
}

// apply overrides cfg with the flags the user set explicitly.
func (f *rendererFlags) apply(cmd *cobra.Command, cfg *config.Renderer) {
	if cmd.Flags().Changed("renderer") {
		cfg.Kind = f.kind
	}
	if cmd.Flags().Changed("chrome-bin") {
		cfg.Bin = f.bin
	}
	if cmd.Flags().Changed("control-url") {
		cfg.ControlURL = f.controlURL
	}
	if cmd.Flags().Changed("no-sandbox") {
		cfg.NoSandbox = f.noSandbox
	}
}
