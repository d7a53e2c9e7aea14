// file: internal/config/persistence.go
// version: 2.0.0
// guid: 9c8d7e6f-5a4b-3c2d-1e0f-9a8b7c6d5e4f

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/fileops"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the per-user config file in the home directory.
const ConfigFileName = ".pcm-startlist.yaml"

// ConfigFilePath returns $HOME/.pcm-startlist.yaml, or "" when the home
// directory is unknown.
func ConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ConfigFileName)
}

// Marshal renders the effective configuration as YAML.
func Marshal(c Config) ([]byte, error) {
	out := struct {
		Config        `yaml:",inline"`
		WatchDebounce string `yaml:"watch_debounce"`
	}{Config: c, WatchDebounce: c.WatchDebounce.String()}
	return yaml.Marshal(out)
}

// SaveConfigFile writes the effective configuration to path so it can be
// edited and picked up on the next run.
func SaveConfigFile(path string, c Config) error {
	if path == "" {
		return fmt.Errorf("no config file path")
	}
	data, err := Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := fileops.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
