package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowpane/flowpane/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowpane.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Addr != "127.0.0.1:7878" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != BackendNone {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Error("expected default server addr")
	}
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
document = "pipelines/release.dot"

[server]
addr = "0.0.0.0:9000"

[cache]
backend = "redis"
redis_addr = "localhost:6379"

[watch]
debounce_ms = 500
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Document != "pipelines/release.dot" {
		t.Errorf("document = %q", cfg.Document)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Cache.Backend != BackendRedis {
		t.Errorf("backend = %q", cfg.Cache.Backend)
	}
	if got := cfg.Watch.Debounce(); got != 500*time.Millisecond {
		t.Errorf("debounce = %v", got)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `document = "flow.dot"`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != Default().Server.Addr {
		t.Errorf("addr = %q, want default", cfg.Server.Addr)
	}
	if cfg.Watch.Debounce() != 0 {
		t.Error("unset debounce should be zero")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"bad toml", `document = `, errors.ErrCodeInvalidConfig},
		{"unknown backend", "[cache]\nbackend = \"memcache\"\n", errors.ErrCodeInvalidConfig},
		{"redis without addr", "[cache]\nbackend = \"redis\"\n", errors.ErrCodeInvalidConfig},
		{"mongo without uri", "[cache]\nbackend = \"mongo\"\n", errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q", got, tt.code)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeFileNotFound {
		t.Errorf("code = %q", got)
	}
}

func TestOpenNoneAndFile(t *testing.T) {
	ctx := context.Background()

	c, err := CacheConfig{Backend: BackendNone}.Open(ctx)
	if err != nil {
		t.Fatalf("Open none: %v", err)
	}
	defer c.Close()
	if _, found, _ := c.Get(ctx, "k"); found {
		t.Error("null cache should never hit")
	}

	dir := t.TempDir()
	fc, err := CacheConfig{Backend: BackendFile, Dir: dir}.Open(ctx)
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	defer fc.Close()
	if err := fc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, found, err := fc.Get(ctx, "k")
	if err != nil || !found || string(data) != "v" {
		t.Errorf("Get = %q, %v, %v", data, found, err)
	}
}

func TestFileDirFallsBackToUserCache(t *testing.T) {
	dir, err := CacheConfig{}.FileDir()
	if err != nil {
		t.Skipf("no user cache dir: %v", err)
	}
	if filepath.Base(dir) != "flowpane" {
		t.Errorf("dir = %q, want flowpane suffix", dir)
	}
}
