// file: cmd/multiplayer.go
// version: 1.1.0
// guid: 8e1b4f27-c3a6-4d09-b5f8-2a7e9c0d3b61

package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/backup"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/config"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/metrics"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/multiplayer"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type multiplayerOptions struct {
	source      sourceFlags
	output      string
	noBackup    bool
	metricsFile string
	progress    bool
}

var multiplayerOpts multiplayerOptions

// multiplayerCmd builds a multiplayer CDB from a startlist page
var multiplayerCmd = &cobra.Command{
	Use:   "multiplayer <page.html>",
	Short: "Create a multiplayer CDB containing only the startlist riders",
	Long: `Match a saved startlist page against a game database and write a new CDB
where every rider of a participating team who is not on the startlist is moved
to the free-agent pool and loses their contract. Teams that do not take part
are left untouched.

Make sure you have a backup of your CDB file before proceeding. An existing
output file is archived to the backup directory unless --no-backup is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMultiplayer(cmd, args[0], multiplayerOpts)
	},
}

func init() {
	multiplayerOpts.source.register(multiplayerCmd)
	multiplayerCmd.Flags().StringVarP(&multiplayerOpts.output, "output", "o", "", "CDB file to write")
	multiplayerCmd.Flags().BoolVar(&multiplayerOpts.noBackup, "no-backup", false, "do not archive an existing output file")
	multiplayerCmd.Flags().StringVar(&multiplayerOpts.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format")
	multiplayerCmd.Flags().BoolVar(&multiplayerOpts.progress, "progress", false, "show a progress bar while matching")
	_ = multiplayerCmd.MarkFlagRequired("output")
}

func runMultiplayer(cmd *cobra.Command, page string, opts multiplayerOptions) (err error) {
	if opts.source.db == "" && opts.source.cdb == "" {
		return errors.New("multiplayer needs the game database: pass --cdb or --db")
	}

	done := metrics.Track("multiplayer")
	defer func() {
		done(err)
		if opts.metricsFile != "" {
			if werr := metrics.WriteTextfile(opts.metricsFile); werr != nil && err == nil {
				err = fmt.Errorf("failed to write metrics: %w", werr)
			}
		}
	}()

	logger := newLogger()
	defer logger.Sync()
	out := cmd.OutOrStdout()
	log := lineSink(out, logger)
	ctx := commandContext(cmd)

	snapshot, err := opts.source.snapshot(ctx)
	if err != nil {
		return err
	}

	mutator := multiplayer.NewMutator(config.AppConfig.WorkDir)
	mutator.FreeAgentTeamID = config.AppConfig.FreeAgentTeamID
	mutator.ChunkSize = config.AppConfig.DBChunkSize
	mutator.Log = log

	conv := newConverter()
	p := &multiplayer.Pipeline{
		Options:     datasetOptions(),
		Mutator:     mutator,
		Importer:    importTracker{conv},
		Suggestions: config.AppConfig.Suggestions,
		Log:         log,
	}
	if !opts.noBackup {
		cfg := backup.DefaultBackupConfig()
		cfg.BackupDir = config.AppConfig.BackupDir
		cfg.MaxBackups = config.AppConfig.MaxBackups
		p.Backup = &cfg
	}
	var bar *progressbar.ProgressBar
	if opts.progress {
		p.Progress = func(processed, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total))
			}
			_ = bar.Set(processed)
		}
	}

	sum, err := p.Run(ctx, snapshot, page, opts.output)
	if bar != nil {
		_ = bar.Finish()
	}
	if sum != nil && sum.Resolution != nil {
		recordResolution(sum.Resolution)
	}
	if err != nil {
		return err
	}
	metrics.AddRidersMoved(sum.Moved)
	metrics.AddContractsRemoved(sum.ContractsRemoved)

	fmt.Fprintf(out, "Saved %s  --  %d on startlist, %d moved to team %d\n",
		sum.Output, sum.RidersMatched, sum.Moved, mutator.FreeAgentTeamID)
	return nil
}

// importTracker records converter imports in the operation metrics.
type importTracker struct {
	multiplayer.Importer
}

func (t importTracker) Import(ctx context.Context, sqlitePath, targetCDB string) error {
	done := metrics.Track("convert_import")
	err := t.Importer.Import(ctx, sqlitePath, targetCDB)
	done(err)
	return err
}
