// Package config loads svgcrop settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/svgcrop/config.toml (or
// ~/.config/svgcrop/config.toml). A missing file is not an error: every
// setting has a default, and command-line flags override both.
//
//	[crop]
//	size = 200
//	scale = 1.1
//
//	[renderer]
//	kind = "chrome"
//	control_url = "ws://127.0.0.1:9222/devtools/browser/..."
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl = "720h"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/svgcrop/pkg/crop"
	errs "github.com/matzehuels/svgcrop/pkg/errors"
	"github.com/matzehuels/svgcrop/pkg/pipeline"
)

const appName = "svgcrop"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Config is the complete configuration.
type Config struct {
	Crop     Crop     `toml:"crop"`
	Renderer Renderer `toml:"renderer"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
}

// Crop holds the default crop options.
type Crop struct {
	Size  int     `toml:"size"`
	Scale float64 `toml:"scale"`
}

// Renderer selects and configures the renderer.
type Renderer struct {
	Kind       string `toml:"kind"`
	Bin        string `toml:"bin,omitempty"`
	ControlURL string `toml:"control_url,omitempty"`
	Headless   bool   `toml:"headless"`
	NoSandbox  bool   `toml:"no_sandbox"`
}

// Cache selects the result cache backend.
type Cache struct {
	Backend string        `toml:"backend"`
	Dir     string        `toml:"dir,omitempty"`
	TTL     time.Duration `toml:"ttl"`

	RedisURL  string `toml:"redis_url,omitempty"`
	KeyPrefix string `toml:"key_prefix,omitempty"`

	MongoURI        string `toml:"mongo_uri,omitempty"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `toml:"addr"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
	MaxDocuments int           `toml:"max_documents"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Crop: Crop{
			Size:  pipeline.DefaultSize,
			Scale: pipeline.DefaultScale,
		},
		Renderer: Renderer{
			Kind:     pipeline.DefaultRenderer,
			Headless: true,
		},
		Cache: Cache{
			Backend:         BackendFile,
			TTL:             30 * 24 * time.Hour,
			MongoDatabase:   appName,
			MongoCollection: "crops",
		},
		Server: Server{
			Addr:         ":8080",
			MaxBodyBytes: 8 << 20,
			MaxDocuments: 256,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
		},
	}
}

// Path returns the config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config at path on top of the defaults. A missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeConfiguration, err, "read %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errs.New(errs.ErrCodeConfiguration, "%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.Validate()
}

// LoadDefault loads the config from Path.
func LoadDefault() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := crop.ValidateTileSize(c.Crop.Size); err != nil {
		return err
	}
	if err := errs.ValidateScale(c.Crop.Scale); err != nil {
		return err
	}
	if err := pipeline.ValidateRenderer(c.Renderer.Kind); err != nil {
		return errs.Wrap(errs.ErrCodeConfiguration, err, "renderer.kind")
	}
	if c.Renderer.ControlURL != "" {
		if err := errs.ValidateControlURL(c.Renderer.ControlURL); err != nil {
			return err
		}
	}

	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errs.New(errs.ErrCodeConfiguration, "cache.redis_url is required for the redis backend")
		}
	case BackendMongo:
		if c.Cache.MongoURI == "" {
			return errs.New(errs.ErrCodeConfiguration, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return errs.New(errs.ErrCodeConfiguration, "invalid cache.backend: %q (must be one of: file, redis, mongo, none)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errs.New(errs.ErrCodeConfiguration, "cache.ttl must not be negative")
	}

	if c.Server.MaxBodyBytes <= 0 {
		return errs.New(errs.ErrCodeConfiguration, "server.max_body_bytes must be positive")
	}
	if c.Server.MaxDocuments <= 0 {
		return errs.New(errs.ErrCodeConfiguration, "server.max_documents must be positive")
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}
