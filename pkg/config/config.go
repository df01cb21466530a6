// Package config loads flowpane settings from a TOML file.
//
// All fields have working defaults, so a config file is optional: the
// serve command runs with just a document path on the command line.
// Flags override file values, file values override defaults.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/flowpane/flowpane/pkg/errors"
)

// Cache backend names accepted in [cache] backend.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the root of the flowpane configuration.
type Config struct {
	// Document is the DOT file to load and watch.
	Document string `toml:"document"`

	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Watch  WatchConfig  `toml:"watch"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`
}

// CacheConfig selects and parameterizes the layout cache backend.
type CacheConfig struct {
	// Backend is one of none, file, redis, mongo.
	Backend string `toml:"backend"`

	// Dir is the cache directory for the file backend. Empty means a
	// flowpane directory under the user cache dir.
	Dir string `toml:"dir"`

	// RedisAddr is the redis host:port for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// MongoURI, MongoDatabase, and MongoCollection configure the mongo
	// backend.
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// WatchConfig controls the document file watcher.
type WatchConfig struct {
	// DebounceMS coalesces editor write bursts, in milliseconds.
	// Zero means the built-in default.
	DebounceMS int `toml:"debounce_ms"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: "127.0.0.1:7878"},
		Cache:  CacheConfig{Backend: BackendNone},
	}
}

// Load reads a TOML config file and fills in defaults for anything the
// file leaves out. A missing file is not an error when path is empty.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case "", BackendNone, BackendFile, BackendRedis, BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"unknown cache backend %q (want none, file, redis, or mongo)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis backend needs redis_addr")
	}
	if c.Cache.Backend == BackendMongo && c.Cache.MongoURI == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "mongo backend needs mongo_uri")
	}
	return nil
}

// Debounce returns the configured watch debounce as a duration, or zero
// when unset so callers fall back to their default.
func (w WatchConfig) Debounce() time.Duration {
	return time.Duration(w.DebounceMS) * time.Millisecond
}

// FileDir resolves the directory for the file backend.
func (c CacheConfig) FileDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve user cache dir")
	}
	return filepath.Join(base, "flowpane"), nil
}
