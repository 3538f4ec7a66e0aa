// Package config loads perplex.toml configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL     = "http://localhost:8080"
	DefaultTimeout    = 15 * time.Second
	DefaultRetries    = 3
	DefaultRetryDelay = time.Second
	DefaultTheme      = "tokyo-night"
)

// ErrMissingUID is returned by Validate when no user identity is configured.
var ErrMissingUID = errors.New("no user id configured (set api.uid or PERPLEX_UID)")

// Config represents the perplex.toml configuration file.
type Config struct {
	API   API   `toml:"api"`
	Query Query `toml:"query"`
	UI    UI    `toml:"ui"`
}

// API describes how to reach and authenticate against the Perplex backend.
type API struct {
	URL     string `toml:"url"`
	Token   string `toml:"token"`
	UID     string `toml:"uid"`
	Timeout string `toml:"timeout"`
}

// Query tunes the read-side retry policy.
type Query struct {
	Retries    *int   `toml:"retries"`
	RetryDelay string `toml:"retry-delay"`
}

// UI holds presentation choices.
type UI struct {
	Theme string `toml:"theme"`
}

// Load reads the global config file, then the perplex.toml in dir, then the
// environment. Later sources win for every key they define.
func Load(dir string) (*Config, error) {
	globalPath, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return LoadFiles(globalPath, filepath.Join(dir, "perplex.toml"))
}

// LoadFiles merges the given files in order. Missing files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	merged := &Config{}
	for _, path := range paths {
		cfg, meta, err := loadConfigFile(path)
		if err != nil {
			return nil, err
		}
		merge(merged, cfg, meta)
	}
	applyEnv(merged)
	return merged, nil
}

// GlobalPath returns the location of the per-user config file.
func GlobalPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "perplex", "config.toml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "perplex", "config.toml"), nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, meta, nil
}

func merge(dst, src *Config, meta toml.MetaData) {
	mergeString(&dst.API.URL, meta.IsDefined("api", "url"), src.API.URL)
	mergeString(&dst.API.Token, meta.IsDefined("api", "token"), src.API.Token)
	mergeString(&dst.API.UID, meta.IsDefined("api", "uid"), src.API.UID)
	mergeString(&dst.API.Timeout, meta.IsDefined("api", "timeout"), src.API.Timeout)
	mergeString(&dst.Query.RetryDelay, meta.IsDefined("query", "retry-delay"), src.Query.RetryDelay)
	mergeString(&dst.UI.Theme, meta.IsDefined("ui", "theme"), src.UI.Theme)
	if meta.IsDefined("query", "retries") && src.Query.Retries != nil {
		retries := *src.Query.Retries
		dst.Query.Retries = &retries
	}
}

func mergeString(dst *string, defined bool, value string) {
	if defined {
		*dst = strings.TrimSpace(value)
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PERPLEX_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("PERPLEX_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("PERPLEX_UID"); v != "" {
		cfg.API.UID = v
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.UID) == "" {
		return ErrMissingUID
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := c.RetryDelay(); err != nil {
		return err
	}
	if c.Retries() < 0 {
		return fmt.Errorf("query.retries must not be negative, got %d", c.Retries())
	}
	return nil
}

// APIURL returns the configured base URL or the default.
func (c *Config) APIURL() string {
	if c.API.URL == "" {
		return DefaultAPIURL
	}
	return strings.TrimRight(c.API.URL, "/")
}

// Timeout returns the per-request timeout.
func (c *Config) Timeout() (time.Duration, error) {
	return parseDuration("api.timeout", c.API.Timeout, DefaultTimeout)
}

// RetryDelay returns the initial delay between read retries.
func (c *Config) RetryDelay() (time.Duration, error) {
	return parseDuration("query.retry-delay", c.Query.RetryDelay, DefaultRetryDelay)
}

// Retries returns how often a failed read is retried.
func (c *Config) Retries() int {
	if c.Query.Retries == nil {
		return DefaultRetries
	}
	return *c.Query.Retries
}

// Theme returns the configured theme name.
func (c *Config) Theme() string {
	if c.UI.Theme == "" {
		return DefaultTheme
	}
	return c.UI.Theme
}

func parseDuration(name, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}
	return d, nil
}
