package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Store.Backend != backendFile || cfg.Cache.Backend != backendFile {
		t.Errorf("backends = %q/%q, want file/file", cfg.Store.Backend, cfg.Cache.Backend)
	}
	if cfg.Store.Expiry() != 90*24*time.Hour {
		t.Errorf("Expiry = %v, want 90 days", cfg.Store.Expiry())
	}
}

func TestLoadConfigDefaultLocation(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	if err := os.MkdirAll(filepath.Join(base, appName), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(base, appName), "config.toml", `
document = "doc.yaml"

[server]
addr = ":9000"
allowed_origins = ["http://localhost:3000"]

[store]
backend = "mongo"
expiry_days = 30

[store.mongo]
uri = "mongodb://db:27017"
database = "canvas"

[cache]
backend = "redis"

[cache.redis]
addr = "redis:6379"
prefix = "nc:"
`)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Document != "doc.yaml" || cfg.Server.Addr != ":9000" {
		t.Errorf("cfg = %+v", cfg)
	}
	if len(cfg.Server.AllowedOrigins) != 1 {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Store.Backend != backendMongo || cfg.Store.Mongo.URI != "mongodb://db:27017" || cfg.Store.Mongo.Database != "canvas" {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.Expiry() != 30*24*time.Hour {
		t.Errorf("Expiry = %v", cfg.Store.Expiry())
	}
	if cfg.Cache.Backend != backendRedis || cfg.Cache.Redis.Addr != "redis:6379" || cfg.Cache.Redis.Prefix != "nc:" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "colour = \"red\"\n"},
		{"bad store backend", "[store]\nbackend = \"sqlite\"\n"},
		{"bad cache backend", "[cache]\nbackend = \"memcached\"\n"},
		{"zero expiry", "[store]\nexpiry_days = 0\n"},
		{"malformed", "[server\n"},
		{"document traversal", "document = \"../doc.json\"\n"},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, filepath.Base(t.Name())+string(rune('a'+i))+".toml", tt.content)
			_, err := loadConfig(path)
			if !errors.Is(err, errors.ErrCodeInvalidConfiguration) {
				t.Errorf("loadConfig() error = %v, want INVALID_CONFIGURATION", err)
			}
		})
	}
}

func TestLoadConfigExplicitMissing(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}
