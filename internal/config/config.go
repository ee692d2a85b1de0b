// Package config loads the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dirName      = ".curl2json"
	fileName     = "config.yaml"
	historyFile  = "history.db"
	cookieFile   = "cookies.db"
	defaultKeep  = 500
	defaultLimit = 10 << 20
)

// Config is the on-disk configuration. Fields missing from the file keep
// their defaults.
type Config struct {
	Timeout         time.Duration     `yaml:"timeout"`
	FollowRedirects bool              `yaml:"follow_redirects"`
	Insecure        bool              `yaml:"insecure"`
	MaxBodySize     int64             `yaml:"max_body_size"`
	Color           bool              `yaml:"color"`
	DefaultHeaders  map[string]string `yaml:"default_headers"`
	History         History           `yaml:"history"`
	Cookies         Cookies           `yaml:"cookies"`
}

// History configures the execution history database.
type History struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	KeepLast int    `yaml:"keep_last"`
}

// Cookies configures the cookie jar. Without Persist, cookies only live for
// one request and its redirects.
type Cookies struct {
	Persist bool   `yaml:"persist"`
	Path    string `yaml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Timeout:         30 * time.Second,
		FollowRedirects: true,
		MaxBodySize:     defaultLimit,
		Color:           true,
		DefaultHeaders:  map[string]string{},
		History: History{
			Enabled:  true,
			Path:     filepath.Join(Dir(), historyFile),
			KeepLast: defaultKeep,
		},
		Cookies: Cookies{
			Path: filepath.Join(Dir(), cookieFile),
		},
	}
}

// Dir returns the data directory, ~/.curl2json. It falls back to a relative
// directory when the home directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// DefaultPath returns the default location of the configuration file.
func DefaultPath() string {
	return filepath.Join(Dir(), fileName)
}

// Load reads the file at path on top of the defaults. A missing file is not
// an error.
func Load(path string) (Config, error) {
	cfg := Default()

	content, err := os.ReadFile(ExpandPath(path))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.DefaultHeaders == nil {
		cfg.DefaultHeaders = map[string]string{}
	}
	cfg.History.Path = ExpandPath(cfg.History.Path)
	cfg.Cookies.Path = ExpandPath(cfg.Cookies.Path)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	if c.MaxBodySize < 0 {
		return fmt.Errorf("max_body_size must not be negative: %d", c.MaxBodySize)
	}
	if c.History.KeepLast < 0 {
		return fmt.Errorf("history.keep_last must not be negative: %d", c.History.KeepLast)
	}
	if c.History.Enabled && c.History.Path == "" {
		return errors.New("history.path is required when history is enabled")
	}
	if c.Cookies.Persist && c.Cookies.Path == "" {
		return errors.New("cookies.path is required when cookies.persist is set")
	}
	for name := range c.DefaultHeaders {
		if strings.TrimSpace(name) == "" {
			return errors.New("default_headers contains an empty name")
		}
	}
	return nil
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
