package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppName is the application name used for keyring and config
const AppName = "notion"

// Config holds CLI configuration
type Config struct {
	BaseURL        string `yaml:"base_url,omitempty"`
	Token          string `yaml:"token,omitempty"`
	DatabaseID     string `yaml:"database_id,omitempty"`
	TitleProperty  string `yaml:"title_property,omitempty"`
	NotionVersion  string `yaml:"notion_version,omitempty"`
	BatchSize      int    `yaml:"batch_size,omitempty"`
	KeyringBackend string `yaml:"keyring_backend,omitempty"` // auto, keychain, secret-service, wincred, file
	OutputFormat   string `yaml:"output_format,omitempty"`   // text, json, ndjson, yaml, table
	LogLevel       string `yaml:"log_level,omitempty"`       // debug, info, warn, error
}

// Keys lists the supported config keys in file order.
func Keys() []string {
	return []string{
		"base_url",
		"token",
		"database_id",
		"title_property",
		"notion_version",
		"batch_size",
		"keyring_backend",
		"output_format",
		"log_level",
	}
}

// Get returns the string form of key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "base_url":
		return c.BaseURL, nil
	case "token":
		return c.Token, nil
	case "database_id":
		return c.DatabaseID, nil
	case "title_property":
		return c.TitleProperty, nil
	case "notion_version":
		return c.NotionVersion, nil
	case "batch_size":
		if c.BatchSize == 0 {
			return "", nil
		}
		return strconv.Itoa(c.BatchSize), nil
	case "keyring_backend":
		return c.KeyringBackend, nil
	case "output_format":
		return c.OutputFormat, nil
	case "log_level":
		return c.LogLevel, nil
	}
	return "", fmt.Errorf("unknown config key: %s", key)
}

// Set assigns key from its string form. An empty value clears the key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch key {
	case "base_url":
		c.BaseURL = value
	case "token":
		c.Token = value
	case "database_id":
		c.DatabaseID = value
	case "title_property":
		c.TitleProperty = value
	case "notion_version":
		c.NotionVersion = value
	case "batch_size":
		if value == "" {
			c.BatchSize = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > 100 {
			return fmt.Errorf("batch_size must be a number between 1 and 100, got %q", value)
		}
		c.BatchSize = n
	case "keyring_backend":
		c.KeyringBackend = value
	case "output_format":
		c.OutputFormat = value
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// DefaultConfigPath returns the default config file path
func DefaultConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureKeyringDir ensures the keyring directory exists and returns its path
func EnsureKeyringDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	keyringDir := filepath.Join(dir, "keyring")
	if err := os.MkdirAll(keyringDir, 0o700); err != nil {
		return "", fmt.Errorf("creating keyring directory: %w", err)
	}
	return keyringDir, nil
}

// ReadConfig reads the config file from the default location
func ReadConfig() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return Load(path)
}

// Load loads config from the given path. A missing file is an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save saves config to the given path
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}
