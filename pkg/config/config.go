// Package config loads matdump settings from a TOML file. Every field has a
// default, so a missing file is not an error; command-line flags override
// file values.
//
// Example matdump.toml:
//
//	[export]
//	style = "tagged"
//	out_dir = "export"
//	max_depth = 20
//
//	[scene]
//	source = "json"
//
//	[cache]
//	backend = "file"
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/materialkit/matdump/pkg/errors"
)

// DefaultFilename is looked up in the working directory when no --config
// flag is given.
const DefaultFilename = "matdump.toml"

// Config is the full configuration tree.
type Config struct {
	Export ExportConfig `toml:"export"`
	Scene  SceneConfig  `toml:"scene"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// ExportConfig controls the export batch.
type ExportConfig struct {
	Style    string `toml:"style"`     // flow, tagged, or prefixed
	OutDir   string `toml:"out_dir"`   // output directory
	MaxDepth int    `toml:"max_depth"` // reference chain depth cap
}

// SceneConfig selects where libraries come from.
type SceneConfig struct {
	Source string `toml:"source"` // "json" or "mongo"

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// CacheConfig selects the document cache backend.
type CacheConfig struct {
	Backend string `toml:"backend"` // "file", "redis", or "none"
	Dir     string `toml:"dir"`     // file backend directory

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig controls the HTTP service.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			Style:    "tagged",
			OutDir:   "export",
			MaxDepth: 20,
		},
		Scene: SceneConfig{
			Source: "json",
		},
		Cache: CacheConfig{
			Backend: "file",
		},
		Server: ServerConfig{
			Addr: ":8402",
		},
	}
}

// Load reads a config file and merges it over the defaults. A missing file
// at the default location yields the defaults; a missing explicit path is an
// error.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	return Parse(data, cfg)
}

// Parse decodes TOML over base and validates the result.
func Parse(data []byte, base *Config) (*Config, error) {
	if base == nil {
		base = Default()
	}
	if err := toml.Unmarshal(data, base); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if err := base.validate(); err != nil {
		return nil, err
	}
	return base, nil
}

func (c *Config) validate() error {
	if err := errors.ValidateStyleName(c.Export.Style); err != nil {
		return err
	}
	if err := errors.ValidateOutputDir(c.Export.OutDir); err != nil {
		return err
	}
	if c.Export.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_depth cannot be negative")
	}
	switch c.Scene.Source {
	case "json", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown scene source %q (want json or mongo)", c.Scene.Source)
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want file, redis, or none)", c.Cache.Backend)
	}
	return nil
}
