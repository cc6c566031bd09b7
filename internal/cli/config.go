package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nodecanvas/pkg/cache"
	"github.com/matzehuels/nodecanvas/pkg/errors"
	"github.com/matzehuels/nodecanvas/pkg/store"
)

// Backend names accepted in the config file.
const (
	backendFile  = "file"
	backendMongo = "mongo"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the optional TOML configuration. Flags override file values and
// file values override the defaults from defaultConfig.
type Config struct {
	// Document is rendered by commands that are given no file argument.
	Document string       `toml:"document"`
	Server   ServerConfig `toml:"server"`
	Store    StoreConfig  `toml:"store"`
	Cache    CacheConfig  `toml:"cache"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// StoreConfig selects the layout store.
type StoreConfig struct {
	Backend    string            `toml:"backend"`
	Dir        string            `toml:"dir"`
	ExpiryDays int               `toml:"expiry_days"`
	Mongo      store.MongoConfig `toml:"mongo"`
}

// CacheConfig selects the artifact cache.
type CacheConfig struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// Expiry is the age after which stored layouts are pruned.
func (c StoreConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryDays) * 24 * time.Hour
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Store: StoreConfig{
			Backend:    backendFile,
			ExpiryDays: int(store.DefaultExpiry / (24 * time.Hour)),
		},
		Cache: CacheConfig{Backend: backendFile},
	}
}

// loadConfig reads the config file at path on top of the defaults. An empty
// path means the default location, which may be absent.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "read config")
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidConfiguration, "%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Document != "" {
		if err := errors.ValidatePath(c.Document); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfiguration, err, "document")
		}
	}
	switch c.Store.Backend {
	case backendFile, backendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfiguration, "store.backend must be %q or %q, got %q", backendFile, backendMongo, c.Store.Backend)
	}
	switch c.Cache.Backend {
	case backendFile, backendRedis, backendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfiguration, "cache.backend must be %q, %q or %q, got %q", backendFile, backendRedis, backendNone, c.Cache.Backend)
	}
	if c.Store.ExpiryDays <= 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "store.expiry_days must be positive, got %d", c.Store.ExpiryDays)
	}
	return nil
}
