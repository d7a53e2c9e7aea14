// file: cmd/root.go
// version: 2.1.0
// guid: 6a7b8c9d-0e1f-2a3b-4c5d-6e7f8a9b0c1d

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/config"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/converter"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/dataset"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/logging"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pcm-startlist",
	Short: "Turn race startlist pages into Pro Cycling Manager startlists",
	Long: `pcm-startlist reads a saved race startlist page (ProCyclingStats,
FirstCycling or a generic site), matches every team and rider against a Pro
Cycling Manager database and writes either a startlist XML patch or a
multiplayer CDB where only the startlist riders stay with their teams.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pcm-startlist.yaml)")
	rootCmd.PersistentFlags().String("converter", "", "path to the SQLiteExporter tool")
	rootCmd.PersistentFlags().String("work-dir", "", "directory for working snapshots (default: OS temp dir)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "console", "log format: console or json")
	rootCmd.PersistentFlags().Float64("team-threshold", 0.5, "minimum similarity for a fuzzy team match")

	bindFlags()

	rootCmd.AddCommand(startlistCmd)
	rootCmd.AddCommand(multiplayerCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(datasetCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(diagnosticsCmd)
	rootCmd.AddCommand(backupCmd)
}

// bindFlags connects the persistent flags to their viper keys.
func bindFlags() {
	viper.BindPFlag("converter_path", rootCmd.PersistentFlags().Lookup("converter"))
	viper.BindPFlag("work_dir", rootCmd.PersistentFlags().Lookup("work-dir"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("team_match_threshold", rootCmd.PersistentFlags().Lookup("team-threshold"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if path := config.ConfigFilePath(); path != "" {
		viper.SetConfigFile(path)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PCM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	config.InitConfig()
}

// newLogger builds the structured logger from the configured level/format.
func newLogger() *zap.Logger {
	return logging.New(config.AppConfig.LogLevel, config.AppConfig.LogFormat)
}

// lineSink returns where match and mutation log lines go: verbatim to out
// for console output, or through zap when JSON logs are requested.
func lineSink(out io.Writer, logger *zap.Logger) logging.LineFunc {
	if config.AppConfig.LogFormat == "json" {
		return logging.Lines(logger)
	}
	return logging.Writer(out)
}

func datasetOptions() dataset.Options {
	opts := dataset.DefaultOptions()
	opts.TeamThreshold = config.AppConfig.TeamMatchThreshold
	opts.RiderMinScore = config.AppConfig.RiderMinScore
	return opts
}

func newConverter() *converter.Converter {
	return converter.New(config.AppConfig.ConverterPath, config.AppConfig.WorkDir)
}

// sourceFlags selects where the reference dataset comes from.
type sourceFlags struct {
	db  string
	csv string
	cdb string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	s.registerOn(cmd, cmd.Flags())
}

// registerOn adds the source flags to fs, which is cmd.Flags() or
// cmd.PersistentFlags() for command groups.
func (s *sourceFlags) registerOn(cmd *cobra.Command, fs *pflag.FlagSet) {
	fs.StringVar(&s.db, "db", "", "SQLite snapshot of the game database")
	fs.StringVar(&s.csv, "csv", "", "folder holding DYN_team.csv and DYN_cyclist.csv")
	fs.StringVar(&s.cdb, "cdb", "", "game CDB file, exported with the converter tool")
	cmd.MarkFlagsMutuallyExclusive("db", "csv", "cdb")
}

func (s *sourceFlags) empty() bool {
	return s.db == "" && s.csv == "" && s.cdb == ""
}

// snapshot returns a SQLite snapshot path, exporting the CDB when needed.
func (s *sourceFlags) snapshot(ctx context.Context) (string, error) {
	switch {
	case s.db != "":
		return s.db, nil
	case s.cdb != "":
		done := metrics.Track("convert_export")
		path, err := newConverter().Export(ctx, s.cdb)
		done(err)
		return path, err
	default:
		return "", errors.New("a --db or --cdb source is required")
	}
}

// load builds the reference dataset. No source yields a nil dataset.
func (s *sourceFlags) load(ctx context.Context) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	switch {
	case s.empty():
		return nil, nil
	case s.csv != "":
		ds, err = dataset.LoadCSVFolder(s.csv, datasetOptions())
	default:
		var path string
		if path, err = s.snapshot(ctx); err != nil {
			return nil, err
		}
		ds, err = dataset.LoadSQLite(ctx, path, datasetOptions())
	}
	if err != nil {
		return nil, err
	}
	sum := ds.Summarize()
	metrics.SetDataset(sum.Teams, sum.Cyclists)
	return ds, nil
}

// describeDataset is the one-line status printed after loading.
func describeDataset(ds *dataset.Dataset) string {
	if ds == nil {
		return "No database selected, every team gets a placeholder ID"
	}
	sum := ds.Summarize()
	if !sum.Loaded {
		return "WARNING: DYN_team or DYN_cyclist tables missing. ID matching unavailable."
	}
	return fmt.Sprintf("Database loaded: %d teams, %d cyclists", sum.Teams, sum.Cyclists)
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
