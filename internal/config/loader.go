package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the per-project configuration file name.
	DefaultConfigFile = ".webpulse"

	// xdgConfigFile is the file name looked up in XDGConfigDir.
	xdgConfigFile = "config.yaml"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile reads and parses a YAML configuration file.
// A missing file yields ErrConfigNotFound; whether that is fatal is up to
// the caller, which knows if the path was given explicitly.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cf := File{Sites: make(map[string]SiteConfig)}
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if cf.Sites == nil {
		cf.Sites = make(map[string]SiteConfig)
	}
	return &cf, nil
}

// FindConfigFile returns the configuration file to load, or "" when there
// is none. An explicit path is used only if it exists. Otherwise the first
// existing candidate wins:
//
//	./.webpulse
//	~/.webpulse
//	$XDG_CONFIG_HOME/webpulse/config.yaml
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if fileExists(configPath) {
			return configPath
		}
		return ""
	}

	for _, candidate := range searchPaths() {
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// searchPaths lists the implicit configuration locations in lookup order.
func searchPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultConfigFile))
	}
	return append(paths, filepath.Join(XDGConfigDir(), xdgConfigFile))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
