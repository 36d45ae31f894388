// Package config loads the optional anchorlayout configuration file.
//
// The file lives at $XDG_CONFIG_HOME/anchorlayout/config.toml (or
// ~/.config/anchorlayout/config.toml) and every key is optional:
//
//	[server]
//	addr = ":8080"
//	session_ttl = "30m"
//	session_dir = "/var/lib/anchorlayout/sessions"
//
//	[cache]
//	backend = "redis"        # file | redis | none
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[store]
//	mongo_uri = "mongodb://localhost:27017"
//	database = "anchorlayout"
//
// Command-line flags override file values.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

const appName = "anchorlayout"

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Duration is a time.Duration written as a Go duration string.
type Duration struct {
	time.Duration
}

// UnmarshalText parses strings such as "90s" or "24h".
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full configuration.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
	Store  StoreConfig  `toml:"store"`
}

// ServerConfig configures `anchorlayout serve`.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
	SessionDir string   `toml:"session_dir"`
}

// CacheConfig selects and configures the result cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	Prefix        string   `toml:"prefix"`
	TTL           Duration `toml:"ttl"`
}

// StoreConfig configures the snapshot store. An empty MongoURI selects
// the in-memory store.
type StoreConfig struct {
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// SetDefaults fills every unset value.
func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.SessionTTL.Duration == 0 {
		c.Server.SessionTTL.Duration = 30 * time.Minute
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheFile
	}
	if c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.Cache.TTL.Duration == 0 {
		c.Cache.TTL.Duration = 24 * time.Hour
	}
	if c.Store.Database == "" {
		c.Store.Database = appName
	}
}

// Validate reports inconsistent settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Server.SessionTTL.Duration < 0 || c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "durations must not be negative")
	}
	return nil
}

// Load reads the file at path and applies defaults. An empty path uses
// DefaultPath; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultPath returns the XDG location of the configuration file.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// CacheDir returns the cache directory using the XDG standard
// (~/.cache/anchorlayout/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
