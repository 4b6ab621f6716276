// Package config loads vanreport settings from defaults, an optional YAML
// file and VANREPORT_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-vanreport/pkg/export"
	"github.com/goliatone/go-vanreport/pkg/templates"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "VANREPORT_"

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// DefaultCacheVersion names the offline cache container.
const DefaultCacheVersion = "vanreport-v1"

type Config struct {
	DataDir      string `yaml:"data_dir" env:"DATA_DIR"`
	Storage      string `yaml:"storage" env:"STORAGE"`
	TemplatesKey string `yaml:"templates_key" env:"TEMPLATES_KEY"`
	Addr         string `yaml:"addr" env:"ADDR"`
	Origin       string `yaml:"origin" env:"ORIGIN"`
	ThemeVariant string `yaml:"theme_variant" env:"THEME_VARIANT"`

	Log    LogConfig    `yaml:"log" envPrefix:"LOG_"`
	Cache  CacheConfig  `yaml:"cache" envPrefix:"CACHE_"`
	Export ExportConfig `yaml:"export" envPrefix:"EXPORT_"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

type CacheConfig struct {
	Version     string `yaml:"version" env:"VERSION"`
	DB          string `yaml:"db" env:"DB"`
	Concurrency int    `yaml:"concurrency" env:"CONCURRENCY"`
	// Manifest optionally points at a YAML offline manifest replacing the
	// built-in shell manifest.
	Manifest string `yaml:"manifest" env:"MANIFEST"`
}

type ExportConfig struct {
	Scale   int      `yaml:"scale" env:"SCALE"`
	Dir     string   `yaml:"dir" env:"DIR"`
	Command string   `yaml:"command" env:"COMMAND"`
	Args    []string `yaml:"args" env:"ARGS" envSeparator:","`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DataDir:      "data",
		Storage:      StorageFile,
		TemplatesKey: templates.DefaultStorageKey,
		Addr:         ":8080",
		Origin:       "http://localhost:8080/",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Cache: CacheConfig{
			Version:     DefaultCacheVersion,
			Concurrency: 4,
		},
		Export: ExportConfig{
			Scale: export.DefaultScale,
			Dir:   ".",
		},
	}
}

// Load reads path (skipped when empty) over the defaults, then applies the
// process environment.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, nil)
}

// LoadWithEnv is Load with an explicit environment. A nil environ means the
// process environment.
func LoadWithEnv(path string, environ map[string]string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage {
	case StorageFile, StorageSQLite, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("storage %q must be one of file, sqlite, memory", c.Storage))
	}
	if strings.TrimSpace(c.DataDir) == "" && c.Storage != StorageMemory {
		errs = append(errs, errors.New("data_dir is required"))
	}
	if strings.TrimSpace(c.Cache.Version) == "" {
		errs = append(errs, errors.New("cache.version is required"))
	}
	if c.Cache.Concurrency <= 0 {
		errs = append(errs, errors.New("cache.concurrency must be positive"))
	}
	if c.Export.Scale <= 0 {
		errs = append(errs, errors.New("export.scale must be positive"))
	}
	if _, err := c.OriginURL(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// OriginURL parses Origin, which must be an absolute http(s) URL.
func (c Config) OriginURL() (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(c.Origin))
	if err != nil {
		return nil, fmt.Errorf("origin %q: %w", c.Origin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("origin %q must be an absolute http(s) url", c.Origin)
	}
	return u, nil
}

// KVPath is the sqlite database backing template storage.
func (c Config) KVPath() string {
	return filepath.Join(c.DataDir, "vanreport.db")
}

// CacheDBPath is the sqlite database backing the offline cache.
func (c Config) CacheDBPath() string {
	if c.Cache.DB != "" {
		return c.Cache.DB
	}
	return filepath.Join(c.DataDir, "cache.db")
}
