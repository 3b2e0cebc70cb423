// Package config loads crimescope settings.
//
// Settings are read from crimescope.toml in the working directory, or from
// the file given with --config. Files ending in .yaml or .yml are read as
// YAML. Command-line flags override file values.
//
//	[data]
//	dir = "static/data"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
//	watch = true
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/crimescope/pkg/cache"
	"github.com/matzehuels/crimescope/pkg/dataset"
	"github.com/matzehuels/crimescope/pkg/errors"
)

// DefaultFile is read when no config path is given.
const DefaultFile = "crimescope.toml"

// Cache backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Data selects where dataset resources come from. The first of Mongo URI,
// base URL and directory that is set wins.
type Data struct {
	Dir             string `toml:"dir" yaml:"dir"`
	BaseURL         string `toml:"base_url" yaml:"base_url"`
	MongoURI        string `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database" yaml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection" yaml:"mongo_collection"`
}

// Cache configures the artifact cache.
type Cache struct {
	Backend   string   `toml:"backend" yaml:"backend"`
	Dir       string   `toml:"dir" yaml:"dir"`
	RedisAddr string   `toml:"redis_addr" yaml:"redis_addr"`
	RedisDB   int      `toml:"redis_db" yaml:"redis_db"`
	TTL       Duration `toml:"ttl" yaml:"ttl"`
}

// Server configures `crimescope serve`.
type Server struct {
	Addr  string `toml:"addr" yaml:"addr"`
	Watch bool   `toml:"watch" yaml:"watch"`
}

// Render holds default chart dimensions.
type Render struct {
	Width  float64 `toml:"width" yaml:"width"`
	Height float64 `toml:"height" yaml:"height"`
}

// Config is the top-level configuration.
type Config struct {
	Data   Data   `toml:"data" yaml:"data"`
	Cache  Cache  `toml:"cache" yaml:"cache"`
	Server Server `toml:"server" yaml:"server"`
	Render Render `toml:"render" yaml:"render"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// Default returns the configuration used without a config file.
func Default() Config {
	return Config{
		Data:   Data{Dir: filepath.Join("static", "data")},
		Cache:  Cache{Backend: BackendFile, Dir: DefaultCacheDir()},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultCacheDir returns ~/.cache/crimescope, or a temp directory when the
// home directory is unknown.
func DefaultCacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "crimescope")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "crimescope")
	}
	return filepath.Join(home, ".cache", "crimescope")
}

// Load reads the config at path. An empty path reads DefaultFile if it
// exists and returns Default otherwise. An explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		_, err = toml.Decode(string(data), &cfg)
	}
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	cfg.Path = path
	cfg.Data.Dir = expandHome(cfg.Data.Dir)
	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)

	return cfg, cfg.Validate()
}

// Validate checks the config for inconsistent values.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", BackendNone, BackendMemory, BackendFile, BackendRedis:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (want none, memory, file or redis)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache backend redis needs redis_addr")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl cannot be negative")
	}
	if c.Data.BaseURL != "" {
		if err := errors.ValidateURL(c.Data.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "data base_url")
		}
	}
	if c.Data.MongoURI != "" && (c.Data.MongoDatabase == "" || c.Data.MongoCollection == "") {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo_uri needs mongo_database and mongo_collection")
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "render size cannot be negative")
	}
	return nil
}

// OpenSource returns the dataset source the config selects. The returned
// close function releases connections and is never nil.
func (c Config) OpenSource(ctx context.Context) (dataset.Source, func(), error) {
	switch {
	case c.Data.MongoURI != "":
		src, err := dataset.NewMongoSource(ctx, c.Data.MongoURI, c.Data.MongoDatabase, c.Data.MongoCollection)
		if err != nil {
			return nil, func() {}, err
		}
		return src, func() { _ = src.Close(context.Background()) }, nil
	case c.Data.BaseURL != "":
		src, err := dataset.NewHTTPSource(c.Data.BaseURL)
		if err != nil {
			return nil, func() {}, err
		}
		return src, func() {}, nil
	}
	return dataset.NewFileSource(c.Data.Dir), func() {}, nil
}

// OpenCache returns the artifact cache the config selects.
func (c Config) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch c.Cache.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendMemory:
		return cache.NewMemoryCache(), nil
	case BackendRedis:
		return cache.NewRedisCache(ctx, c.Cache.RedisAddr, c.Cache.RedisDB)
	}
	dir := c.Cache.Dir
	if dir == "" {
		dir = DefaultCacheDir()
	}
	return cache.NewFileCache(dir)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Duration is a time.Duration read from strings such as "24h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

// Std returns the duration as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
