package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".sharecrawl"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the parsed configuration file: global crawl defaults plus
// per-share overrides keyed by share link.
type File struct {
	// Defaults applies to every share that has no specific entry.
	Defaults ShareConfig `yaml:"defaults"`

	// Shares maps a share link to its overrides.
	Shares map[string]ShareConfig `yaml:"shares"`
}

// ShareConfig carries crawl overrides for one share.
type ShareConfig struct {
	// Depth overrides the crawl depth budget. Nil keeps the global value;
	// a negative value means unbounded.
	Depth *int `yaml:"depth"`

	// Extensions overrides the leaf suffix allow-list.
	Extensions []string `yaml:"extensions"`
}

// LoadConfigFile loads the configuration file at path.
// If the file does not exist, it returns ErrConfigNotFound; callers
// decide whether that matters based on whether the path was explicit.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	if cf.Shares == nil {
		cf.Shares = make(map[string]ShareConfig)
	}

	return &cf, nil
}

// FindConfigFile locates the configuration file:
//  1. the explicit path, if one was given
//  2. .sharecrawl in the current directory
//  3. .sharecrawl in the user's home directory
//
// Returns the path if found, or empty string otherwise.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
