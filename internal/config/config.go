// file: internal/config/config.go
// version: 2.0.0
// guid: 7b8c9d0e-1f2a-3b4c-5d6e-7f8a9b0c1d2e

package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	ConverterPath string `yaml:"converter_path"`
	WorkDir       string `yaml:"work_dir"`

	TeamMatchThreshold  float64 `yaml:"team_match_threshold"`
	RiderMinScore       int     `yaml:"rider_min_score"`
	PlaceholderTeamBase int     `yaml:"placeholder_team_base"`
	Suggestions         int     `yaml:"suggestions"`

	FreeAgentTeamID int `yaml:"free_agent_team_id"`
	DBChunkSize     int `yaml:"db_chunk_size"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	BackupDir     string        `yaml:"backup_dir"`
	MaxBackups    int           `yaml:"max_backups"`
	WatchDebounce time.Duration `yaml:"-"`
}

var AppConfig Config

// SetDefaults registers the default value of every key with viper.
func SetDefaults() {
	viper.SetDefault("converter_path", filepath.Join("SQLiteExporter", "SQLiteExporter.exe"))
	viper.SetDefault("work_dir", os.TempDir())

	viper.SetDefault("team_match_threshold", 0.5)
	viper.SetDefault("rider_min_score", 0)
	viper.SetDefault("placeholder_team_base", 1000)
	viper.SetDefault("suggestions", 3)

	viper.SetDefault("free_agent_team_id", 119)
	viper.SetDefault("db_chunk_size", 900)

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "console")

	viper.SetDefault("backup_dir", "backups")
	viper.SetDefault("max_backups", 10)
	viper.SetDefault("watch_debounce", 2*time.Second)
}

// InitConfig initializes the application configuration
func InitConfig() {
	SetDefaults()

	AppConfig = Config{
		ConverterPath:       viper.GetString("converter_path"),
		WorkDir:             viper.GetString("work_dir"),
		TeamMatchThreshold:  viper.GetFloat64("team_match_threshold"),
		RiderMinScore:       viper.GetInt("rider_min_score"),
		PlaceholderTeamBase: viper.GetInt("placeholder_team_base"),
		Suggestions:         viper.GetInt("suggestions"),
		FreeAgentTeamID:     viper.GetInt("free_agent_team_id"),
		DBChunkSize:         viper.GetInt("db_chunk_size"),
		LogLevel:            viper.GetString("log_level"),
		LogFormat:           viper.GetString("log_format"),
		BackupDir:           viper.GetString("backup_dir"),
		MaxBackups:          viper.GetInt("max_backups"),
		WatchDebounce:       viper.GetDuration("watch_debounce"),
	}

	// Out-of-range values fall back to the defaults
	if AppConfig.WorkDir == "" {
		AppConfig.WorkDir = os.TempDir()
	}
	if AppConfig.TeamMatchThreshold < 0 || AppConfig.TeamMatchThreshold > 1 {
		AppConfig.TeamMatchThreshold = 0.5
	}
	if AppConfig.PlaceholderTeamBase <= 0 {
		AppConfig.PlaceholderTeamBase = 1000
	}
	if AppConfig.FreeAgentTeamID <= 0 {
		AppConfig.FreeAgentTeamID = 119
	}
	if AppConfig.DBChunkSize <= 0 || AppConfig.DBChunkSize > 999 {
		AppConfig.DBChunkSize = 900
	}
	if AppConfig.Suggestions < 0 {
		AppConfig.Suggestions = 0
	}
	if AppConfig.WatchDebounce <= 0 {
		AppConfig.WatchDebounce = 2 * time.Second
	}
}
