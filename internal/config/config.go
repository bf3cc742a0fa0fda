// Package config handles the XDG configuration directory and store settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

const (
	// AppName is the application directory name.
	AppName = "notifier"

	// ConfigFile is the settings filename inside the config directory.
	ConfigFile = "config.toml"

	// DefaultDBFile is the SQLite database filename used when no path is set.
	DefaultDBFile = "entries.db"

	// DefaultPerPage is the number of entries shown per page.
	DefaultPerPage = 10

	// DefaultTimeout bounds each request to the remote store.
	DefaultTimeout = 10 * time.Second

	// DefaultTokenType is the Authorization scheme used with Token.
	DefaultTokenType = "Bearer"
)

// Backend names.
const (
	BackendRemote = "remote"
	BackendSQLite = "sqlite"
)

// ErrInvalid is wrapped by every configuration validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string `toml:"-"`

	// Debug enables debug logging.
	Debug bool `toml:"-"`

	// Quiet suppresses informational output.
	Quiet bool `toml:"-"`

	// Now overrides the wall clock (tests). Nil means time.Now.
	Now func() time.Time `toml:"-"`

	// Backend selects the store implementation: "remote" or "sqlite".
	Backend string `toml:"backend" env:"NOTIFIER_BACKEND"`

	// PerPage is the dashboard page size.
	PerPage int `toml:"per_page" env:"NOTIFIER_PER_PAGE"`

	Remote RemoteConfig `toml:"remote"`
	SQLite SQLiteConfig `toml:"sqlite"`
}

// RemoteConfig describes the HTTP key-value document store.
type RemoteConfig struct {
	// URL is the data store API root, e.g. https://example.org/api/dataStore.
	URL string `toml:"url" env:"NOTIFIER_URL"`

	// Namespace groups the entries of this application.
	Namespace string `toml:"namespace" env:"NOTIFIER_NAMESPACE"`

	Username string `toml:"username" env:"NOTIFIER_USERNAME"`
	Password string `toml:"password" env:"NOTIFIER_PASSWORD"`

	// Token, when set, replaces basic auth.
	Token     string `toml:"token" env:"NOTIFIER_TOKEN"`
	TokenType string `toml:"token_type" env:"NOTIFIER_TOKEN_TYPE"`

	Timeout time.Duration `toml:"timeout" env:"NOTIFIER_TIMEOUT"`
}

// SQLiteConfig describes the local store.
type SQLiteConfig struct {
	Path string `toml:"path" env:"NOTIFIER_SQLITE_PATH"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/notifier or $HOME/.config/notifier.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:     dir,
		Backend: BackendRemote,
		PerPage: DefaultPerPage,
		Remote: RemoteConfig{
			TokenType: DefaultTokenType,
			Timeout:   DefaultTimeout,
		},
	}, nil
}

// Load creates a Config and layers config.toml and the environment over the
// defaults, in that order.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}
	if cfg.HasConfigFile() {
		if _, err := toml.DecodeFile(cfg.ConfigPath(), cfg); err != nil {
			return nil, fmt.Errorf("loading %s: %w", cfg.ConfigPath(), err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Validate checks the settings needed to open the selected backend.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendRemote:
		if strings.TrimSpace(c.Remote.URL) == "" {
			return fmt.Errorf("%w: remote url not set (NOTIFIER_URL)", ErrInvalid)
		}
		if strings.TrimSpace(c.Remote.Namespace) == "" {
			return fmt.Errorf("%w: remote namespace not set (NOTIFIER_NAMESPACE)", ErrInvalid)
		}
		if c.Remote.Username != "" && c.Remote.Password == "" && c.Remote.Token == "" {
			return fmt.Errorf("%w: password required for user %s", ErrInvalid, c.Remote.Username)
		}
		if c.Remote.Timeout <= 0 {
			return fmt.Errorf("%w: timeout must be positive", ErrInvalid)
		}
	case BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown backend: %s", ErrInvalid, c.Backend)
	}
	if c.PerPage < 0 {
		return fmt.Errorf("%w: per_page must not be negative", ErrInvalid)
	}
	return nil
}

// PageSize returns PerPage, or DefaultPerPage when unset.
func (c *Config) PageSize() int {
	if c.PerPage <= 0 {
		return DefaultPerPage
	}
	return c.PerPage
}

// Clock returns the current time.
func (c *Config) Clock() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Namespace returns the entry namespace for the active backend.
func (c *Config) Namespace() string {
	if ns := strings.TrimSpace(c.Remote.Namespace); ns != "" {
		return ns
	}
	return AppName
}

// ConfigPath returns the path to config.toml.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// DBPath returns the SQLite database path.
func (c *Config) DBPath() string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return filepath.Join(c.Dir, DefaultDBFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasConfigFile checks if config.toml exists.
func (c *Config) HasConfigFile() bool {
	_, err := os.Stat(c.ConfigPath())
	return err == nil
}
