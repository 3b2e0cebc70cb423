package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/crimescope/pkg/cache"
	"github.com/matzehuels/crimescope/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "crimescope.toml", `
[data]
dir = "/srv/data"

[cache]
backend = "memory"
ttl = "2h"

[server]
addr = ":9090"
watch = true

[render]
width = 1200
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Data.Dir != "/srv/data" {
		t.Errorf("Data.Dir = %q, want /srv/data", cfg.Data.Dir)
	}
	if cfg.Cache.Backend != BackendMemory || cfg.Cache.TTL.Std() != 2*time.Hour {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Server.Addr != ":9090" || !cfg.Server.Watch {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Render.Width != 1200 {
		t.Errorf("Render.Width = %v, want 1200", cfg.Render.Width)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "crimescope.yaml", `
data:
  base_url: https://example.org/data
cache:
  backend: none
  ttl: 30m
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Data.BaseURL != "https://example.org/data" {
		t.Errorf("Data.BaseURL = %q", cfg.Data.BaseURL)
	}
	if cfg.Cache.TTL.Std() != 30*time.Minute {
		t.Errorf("Cache.TTL = %v, want 30m", cfg.Cache.TTL.Std())
	}
	// Unset sections keep their defaults.
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("explicit missing file error = %v, want INVALID_CONFIG", err)
	}

	wd, _ := os.Getwd()
	defer os.Chdir(wd)
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Path != "" || cfg.Cache.Backend != BackendFile {
		t.Errorf("Load(\"\") = %+v, want defaults", cfg)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := writeFile(t, "bad.toml", "[cache\nbackend = ")
	if _, err := Load(path); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("Load(bad) error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis with addr", func(c *Config) { c.Cache.Backend = BackendRedis; c.Cache.RedisAddr = "localhost:6379" }, false},
		{"mongo complete", func(c *Config) {
			c.Data.MongoURI = "mongodb://localhost"
			c.Data.MongoDatabase = "oldbailey"
			c.Data.MongoCollection = "resources"
		}, false},

		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"redis without addr", func(c *Config) { c.Cache.Backend = BackendRedis }, true},
		{"negative ttl", func(c *Config) { c.Cache.TTL = Duration(-time.Second) }, true},
		{"file base url", func(c *Config) { c.Data.BaseURL = "file:///etc" }, true},
		{"mongo without collection", func(c *Config) { c.Data.MongoURI = "mongodb://localhost" }, true},
		{"negative width", func(c *Config) { c.Render.Width = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpenSource(t *testing.T) {
	ctx := context.Background()

	cfg := Default()
	cfg.Data.Dir = t.TempDir()
	src, closeFn, err := cfg.OpenSource(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if src.Name() != "file" {
		t.Errorf("source = %s, want file", src.Name())
	}

	cfg.Data.BaseURL = "http://localhost:8000/static/data"
	src, closeFn, err = cfg.OpenSource(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	if src.Name() != "http" {
		t.Errorf("source = %s, want http", src.Name())
	}
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		backend string
		check   func(cache.Cache) bool
	}{
		{BackendNone, func(c cache.Cache) bool { _, ok := c.(*cache.NullCache); return ok }},
		{BackendMemory, func(c cache.Cache) bool { _, ok := c.(*cache.MemoryCache); return ok }},
		{BackendFile, func(c cache.Cache) bool { _, ok := c.(*cache.FileCache); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := Default()
			cfg.Cache.Backend = tt.backend
			cfg.Cache.Dir = t.TempDir()
			c, err := cfg.OpenCache(ctx)
			if err != nil {
				t.Fatal(err)
			}
			defer c.Close()
			if !tt.check(c) {
				t.Errorf("OpenCache(%s) = %T", tt.backend, c)
			}
		})
	}
}
