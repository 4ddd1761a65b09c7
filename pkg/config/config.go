// Package config loads the optional layoutmetrics configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/layoutmetrics/config.toml
// (or ~/.config/layoutmetrics/config.toml). A missing file is not an error:
// [Load] then returns [Default]. Command-line flags override file values.
//
//	[cache]
//	dir = "/var/cache/layoutmetrics"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
// The default store backend is "file", which keeps reports under
// $XDG_DATA_HOME/layoutmetrics/reports.
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/layoutmetrics/pkg/errors"
)

// AppName names the config and cache directories.
const AppName = "layoutmetrics"

// Store backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Config is the full configuration file.
type Config struct {
	Cache  Cache  `toml:"cache"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`

	// Timeout bounds the longest-path search for every analysis.
	Timeout Duration `toml:"timeout"`
}

// Cache selects and configures the report cache. RedisAddr takes
// precedence over Dir.
type Cache struct {
	Disabled      bool   `toml:"disabled"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Prefix        string `toml:"prefix"`
}

// Store selects the report history backend. Dir only applies to the file
// backend.
type Store struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
	PostgresURL   string `toml:"postgres_url"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string   `toml:"addr"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
}

// Duration is a time.Duration that decodes from strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Store: Store{
			Backend:       BackendFile,
			MongoDatabase: AppName,
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  Duration{15 * time.Second},
			WriteTimeout: Duration{60 * time.Second},
			MaxBodyBytes: 8 << 20,
		},
		Timeout: Duration{30 * time.Second},
	}
}

// Load reads the file at path on top of [Default]. An empty path means
// [DefaultPath]. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile, BackendMemory:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	case BackendPostgres:
		if c.Store.PostgresURL == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "store.postgres_url is required for the postgres backend")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown store backend %q (want file, memory, mongo or postgres)", c.Store.Backend)
	}
	if c.Timeout.Duration < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "timeout must not be negative")
	}
	if c.Server.MaxBodyBytes < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "server.max_body_bytes must not be negative")
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/layoutmetrics/config.toml, falling
// back to ~/.config.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the file cache directory: Cache.Dir when set, otherwise
// $XDG_CACHE_HOME/layoutmetrics or ~/.cache/layoutmetrics.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// ReportsDir returns the file store directory: Store.Dir when set, otherwise
// $XDG_DATA_HOME/layoutmetrics/reports or ~/.local/share/layoutmetrics/reports.
// It is kept out of the cache directory so clearing the cache keeps reports.
func (c Config) ReportsDir() (string, error) {
	if c.Store.Dir != "" {
		return c.Store.Dir, nil
	}
	if home := os.Getenv("XDG_DATA_HOME"); home != "" {
		return filepath.Join(home, AppName, "reports"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", AppName, "reports"), nil
}
