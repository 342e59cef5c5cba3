package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appName    = "escl"
	configFile = "config.yaml"

	// ConfigPathEnvVar overrides the registry location
	ConfigPathEnvVar = "ESCL_CONFIG"
)

const fileHeader = `# escl scanner registry
# Scanners remembered by 'escl discover --save' and preferences.
# Edit nicknames here or with 'escl devices <name> <nickname>'.

`

// ConfigPath returns where the registry lives: $ESCL_CONFIG when set,
// otherwise escl/config.yaml under the user config directory
// ($XDG_CONFIG_HOME or ~/.config on Linux).
func ConfigPath() (string, error) {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, appName, configFile), nil
}

// LoadRegistry reads the registry from ConfigPath.
func LoadRegistry() (*Registry, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadRegistryFrom(path)
}

// LoadRegistryFrom reads a registry file. A missing file yields a new
// default registry bound to path.
func LoadRegistryFrom(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		registry := NewRegistry()
		registry.path = path
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	registry := NewRegistry()
	registry.Preferences = nil
	if err := yaml.Unmarshal(data, registry); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if registry.Version != CurrentVersion {
		return nil, fmt.Errorf("%s: unsupported registry version %d (expected %d)", path, registry.Version, CurrentVersion)
	}

	if registry.Devices == nil {
		registry.Devices = make(map[string]*Device)
	}
	if registry.Preferences == nil {
		registry.Preferences = defaultPreferences()
	}
	registry.path = path
	return registry, nil
}

// Path returns the file Save writes to. Empty for a registry built with
// NewRegistry.
func (r *Registry) Path() string {
	return r.path
}

// Save writes the registry back to the file it was loaded from, or to
// ConfigPath when it was created in memory.
func (r *Registry) Save() error {
	path := r.path
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			return err
		}
	}
	return r.SaveTo(path)
}

// SaveTo writes the registry to path through a temporary file and rename,
// so a crash never leaves a truncated registry behind.
func (r *Registry) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+configFile+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(fileHeader); err == nil {
		_, err = tmp.Write(data)
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save registry: %w", err)
	}

	r.path = path
	return nil
}
