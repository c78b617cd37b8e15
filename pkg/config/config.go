// Package config loads the optional TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/upset/config.toml (or
// ~/.config/upset/config.toml) and may set any subset of:
//
//	[chart]
//	width = 1000
//	height = 500
//	font_size = 12
//	formats = ["svg", "png"]
//	scale = 2
//
//	[palette.dot]
//	included = "#1f77b4"
//
//	[cache]
//	backend = "redis"          # file, null, redis or mongo
//	redis_addr = "localhost:6379"
//	ttl = "72h"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override the file.
package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/upset/pkg/cache"
	"github.com/matzehuels/upset/pkg/errors"
	"github.com/matzehuels/upset/pkg/render/upset/styles"
)

const appName = "upset"

// DefaultAddr is the server listen address when none is configured.
const DefaultAddr = ":8080"

// Config is the decoded configuration file.
type Config struct {
	Chart   Chart          `toml:"chart"`
	Palette styles.Palette `toml:"palette"`
	Cache   Cache          `toml:"cache"`
	Server  Server         `toml:"server"`
}

// Chart holds layout and render defaults.
type Chart struct {
	Width    float64  `toml:"width"`
	Height   float64  `toml:"height"`
	FontSize float64  `toml:"font_size"`
	Formats  []string `toml:"formats"`
	Scale    float64  `toml:"scale"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend         string        `toml:"backend"`
	Dir             string        `toml:"dir"`
	RedisAddr       string        `toml:"redis_addr"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
	TTL             time.Duration `toml:"ttl"`
}

// Server configures `upset serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config at path. An empty path means [DefaultPath], which
// may be absent; an explicitly named file must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Config{}, nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config not found: %s", path)
		}
		return Config{}, errors.Wrap(errors.ErrCodeFileRead, err, "read config %s", path)
	}
	return Parse(string(data))
}

// Parse decodes TOML content. Unknown keys are rejected.
func Parse(content string) (Config, error) {
	var cfg Config
	md, err := toml.Decode(content, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and backend names.
func (c Config) Validate() error {
	if err := errors.ValidateDimensions(c.Chart.Width, c.Chart.Height, c.Chart.FontSize); err != nil {
		return err
	}
	if c.Chart.Scale < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "chart.scale must not be negative")
	}
	backends := []string{"", cache.BackendFile, cache.BackendNull, cache.BackendRedis, cache.BackendMongo}
	if !slices.Contains(backends, c.Cache.Backend) {
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	return nil
}

// CacheOptions returns the options for [cache.Open]. defaultDir is used
// for the file backend when no dir is configured.
func (c Config) CacheOptions(defaultDir string) cache.Options {
	opts := cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             c.Cache.Dir,
		RedisAddr:       c.Cache.RedisAddr,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
	}
	if opts.Dir == "" {
		opts.Dir = defaultDir
	}
	return opts
}

// ServerAddr returns the configured listen address or [DefaultAddr].
func (c Config) ServerAddr() string {
	if c.Server.Addr != "" {
		return c.Server.Addr
	}
	return DefaultAddr
}
