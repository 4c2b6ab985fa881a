package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrConfigExists is returned by WriteTemplate when the target file exists.
var ErrConfigExists = errors.New("configuration file already exists")

// Template is the commented sample written by `webpulse init`.
//
//go:embed template.yaml
var Template []byte

// WriteTemplate writes Template to path. Parent directories are created.
// An existing file is only replaced when force is true.
func WriteTemplate(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, Template, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
