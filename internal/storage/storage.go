// Package storage provides atomic file operations for JSON and YAML data
// in ~/.tfsync/ and for exported change logs.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvDir overrides the state directory.
const EnvDir = "TFSYNC_HOME"

// Dir returns $TFSYNC_HOME or ~/.tfsync/, creating it if needed
func Dir() (string, error) {
	dir := os.Getenv(EnvDir)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".tfsync")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	return dir, nil
}

// SaveJSON atomically writes data as indented JSON to the specified path.
func SaveJSON(path string, data any) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, append(jsonData, '\n'))
}

// SaveYAML atomically writes data as YAML to the specified path.
func SaveYAML(path string, data any) error {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	return writeAtomic(path, yamlData)
}

// Save writes YAML for .yaml and .yml paths and JSON otherwise.
func Save(path string, data any) error {
	if IsYAML(path) {
		return SaveYAML(path, data)
	}
	return SaveJSON(path, data)
}

// IsYAML reports whether path has a YAML extension.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// writeAtomic ensures the parent directory exists, writes to a temp file,
// then renames to the final path.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o600); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}

// LoadJSON reads JSON from the specified path into dest.
// Returns os.ErrNotExist if file doesn't exist (caller should handle).
func LoadJSON(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// LoadYAML reads YAML from the specified path into dest.
func LoadYAML(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, dest)
}
