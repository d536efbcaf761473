// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrExists is returned by Save when the target file is already present.
var ErrExists = errors.New("config file already exists")

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
// Keys absent from the file keep the value already held by target.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// Save writes v as YAML to a new file, prefixed by header. It never overwrites.
func Save[T any](filename, header string, v *T) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrExists, filename)
		}
		return fmt.Errorf("failed to create config file %s: %w", filename, err)
	}
	defer f.Close()

	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", filename, err)
	}
	return f.Close()
}
