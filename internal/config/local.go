package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-build-root override file.
const LocalConfigFileName = ".tfsync.toml"

// LocalConfig holds per-build-root overrides from .tfsync.toml.
// Pointer fields and zero-value strings indicate "not set" (inherit from the job).
type LocalConfig struct {
	LocalPath     string `toml:"local_path"`
	WorkspaceName string `toml:"workspace_name"`
	UseUpdate     *bool  `toml:"use_update"`
}

// LoadLocal reads a .tfsync.toml from the given build root.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse failure.
func LoadLocal(root string) (*LocalConfig, error) {
	configFile := filepath.Join(root, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var local LocalConfig
	if err := toml.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}
	return &local, nil
}

// defaultLocalConfig is the template for tfsync config init --local
const defaultLocalConfig = `# tfsync local config (per-build-root overrides)
# Place this file in the build root passed to "tfsync checkout --root".
# Settings here override the job from ~/.config/tfsync/config.toml.

# local_path = "."
# workspace_name = "Hudson-${JOB_NAME}-${NODE_NAME}"
# use_update = false
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}
