package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownKey is returned when saving a key the resolver does not know.
var ErrUnknownKey = errors.New("unknown config key")

// SaveConfig writes configuration values back to the YAML files read by
// the Resolver.
type SaveConfig struct {
	// GlobalConfigDir is the directory under ~/.config/ for global config.
	GlobalConfigDir string

	// GlobalConfigFile is the filename. Defaults to "config.yaml".
	GlobalConfigFile string

	// LocalConfigName is the filename for local config.
	LocalConfigName string
}

// DefaultSaveConfig matches DefaultResolverConfig.
func DefaultSaveConfig() SaveConfig {
	rc := DefaultResolverConfig()
	return SaveConfig{
		GlobalConfigDir: rc.GlobalConfigDir,
		LocalConfigName: rc.LocalConfigName,
	}
}

func (c SaveConfig) globalConfigFile() string {
	if c.GlobalConfigFile != "" {
		return c.GlobalConfigFile
	}
	return "config.yaml"
}

// GlobalPath returns the global config file path.
func (c SaveConfig) GlobalPath() (string, error) {
	if c.GlobalConfigDir == "" {
		return "", fmt.Errorf("global config directory not configured")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", c.GlobalConfigDir, c.globalConfigFile()), nil
}

// SaveGlobal saves a key-value pair to the global config file. The file is
// private to the user since it may hold credentials.
func (c SaveConfig) SaveGlobal(key, value string) error {
	path, err := c.GlobalPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return saveKey(path, key, value, 0o600)
}

// SaveLocal saves a key-value pair to the local config file in dir.
// Credentials are refused because the local file is usually committed.
func (c SaveConfig) SaveLocal(dir, key, value string) error {
	if dir == "" {
		return fmt.Errorf("local config directory not given")
	}
	if c.LocalConfigName == "" {
		return fmt.Errorf("local config name not configured")
	}
	if IsSecret(key) {
		return fmt.Errorf("%s holds a credential; save it globally or set %s", key, EnvName("JIRAREST_", key))
	}
	return saveKey(filepath.Join(dir, c.LocalConfigName), key, value, 0o644)
}

// DeleteGlobalKey removes a key from the global config.
func (c SaveConfig) DeleteGlobalKey(key string) error {
	path, err := c.GlobalPath()
	if err != nil {
		return err
	}

	existing, err := readYAML(path)
	if err != nil || existing == nil {
		return nil // Nothing to delete
	}
	if !deleteNested(existing, strings.Split(key, ".")) {
		return nil
	}
	return writeYAML(path, existing, 0o600)
}

func saveKey(path, key, value string, perm os.FileMode) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w: %s\n\nValid keys: %s", ErrUnknownKey, key, strings.Join(Keys, ", "))
	}

	existing, err := readYAML(path)
	if err != nil {
		return err
	}
	if existing == nil {
		existing = make(map[string]any)
	}
	setNested(existing, strings.Split(key, "."), parseValue(key, value))
	return writeYAML(path, existing, perm)
}

// readYAML returns nil when the file does not exist.
func readYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

func writeYAML(path string, m map[string]any, perm os.FileMode) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func setNested(m map[string]any, path []string, value any) {
	if len(path) == 1 {
		m[path[0]] = value
		return
	}
	child, ok := m[path[0]].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[path[0]] = child
	}
	setNested(child, path[1:], value)
}

func deleteNested(m map[string]any, path []string) bool {
	if len(path) == 1 {
		if _, ok := m[path[0]]; !ok {
			return false
		}
		delete(m, path[0])
		return true
	}
	child, ok := m[path[0]].(map[string]any)
	if !ok {
		return false
	}
	removed := deleteNested(child, path[1:])
	if removed && len(child) == 0 {
		delete(m, path[0])
	}
	return removed
}

// parseValue converts string values to appropriate types for YAML.
func parseValue(key, value string) any {
	if key == KeyAuthScopes {
		var scopes []string
		for _, s := range strings.Split(value, ",") {
			if s = strings.TrimSpace(s); s != "" {
				scopes = append(scopes, s)
			}
		}
		return scopes
	}
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
