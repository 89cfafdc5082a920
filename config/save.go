package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SaveGlobal writes a key-value pair to the global config file,
// creating it if needed.
func SaveGlobal(key, value string) error {
	if !knownKey(key) {
		return fmt.Errorf("unknown config key: %s (valid keys: %s)",
			key, strings.Join(KnownKeys(), ", "))
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := filepath.Join(home, ".config", globalConfigDir, globalConfigFile)

	return saveTo(path, key, value, 0o600, true)
}

// SaveLocal writes a key-value pair to .trackwork.yaml in the git
// root.
func SaveLocal(gitRoot, key, value string) error {
	if gitRoot == "" {
		return fmt.Errorf("git root not found")
	}
	if !knownKey(key) {
		return fmt.Errorf("unknown config key: %s (valid keys: %s)",
			key, strings.Join(KnownKeys(), ", "))
	}

	// Local config is shared with the repo and should be readable.
	return saveTo(filepath.Join(gitRoot, localConfigName), key, value, 0o644, false)
}

// DeleteGlobalKey removes a key from the global config file.
func DeleteGlobalKey(key string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := filepath.Join(home, ".config", globalConfigDir, globalConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil // Nothing to delete
	}

	var existing map[string]any
	if err := yaml.Unmarshal(data, &existing); err != nil {
		return nil
	}

	delete(existing, key)

	data, err = yaml.Marshal(existing)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func saveTo(path, key, value string, perm os.FileMode, mkdir bool) error {
	var existing map[string]any
	if data, readErr := os.ReadFile(path); readErr == nil {
		_ = yaml.Unmarshal(data, &existing)
	}
	if existing == nil {
		existing = make(map[string]any)
	}

	existing[key] = parseValue(value)

	if mkdir {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(existing)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

// parseValue converts string values to appropriate types for YAML.
func parseValue(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	return value
}
