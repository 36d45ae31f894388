package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/anchorlayout/pkg/errors"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != CacheFile {
		t.Errorf("Cache.Backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Cache.Dir != "/tmp/xdg-cache/anchorlayout" {
		t.Errorf("Cache.Dir = %q, want /tmp/xdg-cache/anchorlayout", cfg.Cache.Dir)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	src := `
[server]
addr = ":9090"
session_ttl = "5m"

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "1h"

[store]
mongo_uri = "mongodb://db:27017"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"addr", cfg.Server.Addr, ":9090"},
		{"session ttl", cfg.Server.SessionTTL.Duration, 5 * time.Minute},
		{"backend", cfg.Cache.Backend, CacheRedis},
		{"redis addr", cfg.Cache.RedisAddr, "cache:6379"},
		{"cache ttl", cfg.Cache.TTL.Duration, time.Hour},
		{"mongo uri", cfg.Store.MongoURI, "mongodb://db:27017"},
		{"database", cfg.Store.Database, "anchorlayout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `[server`},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"unknown backend", "[cache]\nbackend = \"memcached\""},
		{"redis without addr", "[cache]\nbackend = \"redis\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.src), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Load() = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/etc/xdg")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath: %v", err)
	}
	if want := "/etc/xdg/anchorlayout/config.toml"; got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}
