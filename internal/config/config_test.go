// file: internal/config/config_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// TestInitConfig tests configuration initialization with defaults
func TestInitConfig(t *testing.T) {
	// Arrange
	viper.Reset()

	// Act
	InitConfig()

	// Assert
	if AppConfig.ConverterPath != filepath.Join("SQLiteExporter", "SQLiteExporter.exe") {
		t.Errorf("Unexpected converter_path default '%s'", AppConfig.ConverterPath)
	}
	if AppConfig.WorkDir != os.TempDir() {
		t.Errorf("Expected work_dir to default to the temp dir, got '%s'", AppConfig.WorkDir)
	}
	if AppConfig.TeamMatchThreshold != 0.5 {
		t.Errorf("Expected team_match_threshold 0.5, got %v", AppConfig.TeamMatchThreshold)
	}
	if AppConfig.RiderMinScore != 0 {
		t.Errorf("Expected rider_min_score 0, got %d", AppConfig.RiderMinScore)
	}
	if AppConfig.PlaceholderTeamBase != 1000 {
		t.Errorf("Expected placeholder_team_base 1000, got %d", AppConfig.PlaceholderTeamBase)
	}
	if AppConfig.FreeAgentTeamID != 119 {
		t.Errorf("Expected free_agent_team_id 119, got %d", AppConfig.FreeAgentTeamID)
	}
	if AppConfig.DBChunkSize != 900 {
		t.Errorf("Expected db_chunk_size 900, got %d", AppConfig.DBChunkSize)
	}
	if AppConfig.LogLevel != "info" || AppConfig.LogFormat != "console" {
		t.Errorf("Unexpected log defaults %s/%s", AppConfig.LogLevel, AppConfig.LogFormat)
	}
	if AppConfig.BackupDir != "backups" || AppConfig.MaxBackups != 10 {
		t.Errorf("Unexpected backup defaults %s/%d", AppConfig.BackupDir, AppConfig.MaxBackups)
	}
	if AppConfig.WatchDebounce != 2*time.Second {
		t.Errorf("Expected watch_debounce 2s, got %v", AppConfig.WatchDebounce)
	}
}

// TestInitConfigOverrides tests that explicit values win over defaults
func TestInitConfigOverrides(t *testing.T) {
	viper.Reset()
	viper.Set("team_match_threshold", 0.75)
	viper.Set("free_agent_team_id", 200)
	viper.Set("watch_debounce", "500ms")
	viper.Set("work_dir", "/srv/pcm")

	InitConfig()

	if AppConfig.TeamMatchThreshold != 0.75 {
		t.Errorf("Expected 0.75, got %v", AppConfig.TeamMatchThreshold)
	}
	if AppConfig.FreeAgentTeamID != 200 {
		t.Errorf("Expected 200, got %d", AppConfig.FreeAgentTeamID)
	}
	if AppConfig.WatchDebounce != 500*time.Millisecond {
		t.Errorf("Expected 500ms, got %v", AppConfig.WatchDebounce)
	}
	if AppConfig.WorkDir != "/srv/pcm" {
		t.Errorf("Expected /srv/pcm, got %s", AppConfig.WorkDir)
	}
}

// TestInitConfigClampsInvalidValues tests fallback for out-of-range values
func TestInitConfigClampsInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value any
		check func() bool
	}{
		{"team_match_threshold", 1.5, func() bool { return AppConfig.TeamMatchThreshold == 0.5 }},
		{"placeholder_team_base", -1, func() bool { return AppConfig.PlaceholderTeamBase == 1000 }},
		{"free_agent_team_id", 0, func() bool { return AppConfig.FreeAgentTeamID == 119 }},
		{"db_chunk_size", 5000, func() bool { return AppConfig.DBChunkSize == 900 }},
		{"suggestions", -3, func() bool { return AppConfig.Suggestions == 0 }},
		{"watch_debounce", "0s", func() bool { return AppConfig.WatchDebounce == 2*time.Second }},
	}
	for _, tt := range tests {
		viper.Reset()
		viper.Set(tt.key, tt.value)
		InitConfig()
		if !tt.check() {
			t.Errorf("%s=%v was not clamped: %+v", tt.key, tt.value, AppConfig)
		}
	}
}

// TestSaveConfigFile tests writing the effective configuration
func TestSaveConfigFile(t *testing.T) {
	viper.Reset()
	InitConfig()

	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := SaveConfigFile(path, AppConfig); err != nil {
		t.Fatalf("SaveConfigFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "watch_debounce: 2s") {
		t.Errorf("Expected human readable debounce in:\n%s", data)
	}

	var decoded map[string]any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("saved config is not YAML: %v", err)
	}
	if decoded["free_agent_team_id"] != 119 {
		t.Errorf("Expected free_agent_team_id 119, got %v", decoded["free_agent_team_id"])
	}

	// the saved file round-trips through viper
	viper.Reset()
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("viper could not read saved config: %v", err)
	}
	InitConfig()
	if AppConfig.WatchDebounce != 2*time.Second || AppConfig.DBChunkSize != 900 {
		t.Errorf("Round trip lost values: %+v", AppConfig)
	}

	if err := SaveConfigFile("", AppConfig); err == nil {
		t.Error("Expected error for empty path")
	}
}

// TestConfigFilePath tests the per-user config location
func TestConfigFilePath(t *testing.T) {
	t.Setenv("HOME", "/home/rider")
	if got := ConfigFilePath(); got != filepath.Join("/home/rider", ConfigFileName) {
		t.Errorf("Unexpected config path %s", got)
	}
}
