// file: internal/multiplayer/pipeline.go
// version: 1.0.0
// guid: e7f13b09-46c2-4d8a-a5e0-8b2c1f9d6a47

package multiplayer

import (
	"context"
	"errors"
	"fmt"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/backup"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/dataset"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/fileops"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/logging"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/startlist"
)

var (
	// ErrDatasetNotLoaded is returned when the snapshot lacks teams or cyclists.
	ErrDatasetNotLoaded = errors.New("snapshot has no team or cyclist data")
	// ErrNoStartlist is returned when the page holds no recognisable startlist.
	ErrNoStartlist = errors.New("could not parse startlist data")
	// ErrNoTeamsMatched is returned when no startlist team exists in the snapshot.
	ErrNoTeamsMatched = errors.New("no teams matched")
)

// Importer writes a SQLite snapshot back to a game CDB file.
type Importer interface {
	Import(ctx context.Context, sqlitePath, targetCDB string) error
}

// Summary is the outcome of a pipeline run.
type Summary struct {
	Resolution       *startlist.Resolution `json:"-" yaml:"-"`
	Startlist        *startlist.Startlist  `json:"-" yaml:"-"`
	TeamsMatched     int                   `json:"teams_matched" yaml:"teams_matched"`
	RidersMatched    int                   `json:"riders_matched" yaml:"riders_matched"`
	Moved            int64                 `json:"moved" yaml:"moved"`
	ContractsRemoved int64                 `json:"contracts_removed" yaml:"contracts_removed"`
	WorkingCopy      string                `json:"working_copy" yaml:"working_copy"`
	Output           string                `json:"output" yaml:"output"`
	Backup           string                `json:"backup,omitempty" yaml:"backup,omitempty"`
}

// Pipeline turns a startlist page and a game snapshot into a multiplayer
// CDB where only the startlist riders remain on participating teams.
type Pipeline struct {
	// Dataset is loaded from the snapshot when nil.
	Dataset  *dataset.Dataset
	Options  dataset.Options
	Parser   *startlist.Parser
	Mutator  *Mutator
	Importer Importer
	// Backup archives an existing output CDB before it is overwritten.
	Backup      *backup.BackupConfig
	Suggestions int
	Log         logging.LineFunc
	Progress    startlist.ProgressFunc
}

// Run parses htmlPath, resolves it against the snapshot, mutates a copy of
// the snapshot and imports the copy into outputCDB.
func (p *Pipeline) Run(ctx context.Context, snapshotPath, htmlPath, outputCDB string) (*Summary, error) {
	log := logging.OrDiscard(p.Log)
	if p.Mutator == nil || p.Importer == nil {
		return nil, errors.New("pipeline requires a mutator and an importer")
	}

	ds := p.Dataset
	if ds == nil {
		var err error
		if ds, err = dataset.LoadSQLite(ctx, snapshotPath, p.Options); err != nil {
			return nil, err
		}
	}
	if !ds.Loaded() {
		log("WARNING: DYN_team or DYN_cyclist tables missing.")
		return nil, ErrDatasetNotLoaded
	}

	log(fmt.Sprintf("Reading startlist: %s", htmlPath))
	parser := p.Parser
	if parser == nil {
		parser = startlist.NewParser()
	}
	sl, err := parser.ParseFile(htmlPath)
	if err != nil {
		log("ERROR: Could not parse startlist data.")
		return nil, err
	}
	if sl.Empty() {
		log("ERROR: Could not parse startlist data.")
		return nil, ErrNoStartlist
	}
	log(fmt.Sprintf("Parsed %d teams, %d riders\n", sl.Len(), sl.RiderCount()))

	res := (&startlist.Resolver{
		Dataset:     ds,
		Suggestions: p.Suggestions,
		Log:         log,
		Progress:    p.Progress,
	}).Resolve(sl)

	teamIDs := res.MatchedTeamIDs()
	riderIDs := res.MatchedRiderIDs()
	sum := &Summary{
		Resolution:    res,
		Startlist:     sl,
		TeamsMatched:  len(teamIDs),
		RidersMatched: len(riderIDs),
		Output:        outputCDB,
	}

	log(fmt.Sprintf("\nMatched %d teams, %d riders", len(teamIDs), len(riderIDs)))
	if n := len(res.UnmatchedTeams); n > 0 {
		log(fmt.Sprintf("[!] %d team(s) not matched", n))
	}
	if n := len(res.UnmatchedRiders); n > 0 {
		log(fmt.Sprintf("[!] %d rider(s) not matched", n))
	}

	if len(teamIDs) == 0 {
		log("ERROR: No teams matched. Cannot proceed.")
		return sum, ErrNoTeamsMatched
	}

	freeAgent := p.Mutator.FreeAgentTeamID
	if freeAgent == 0 {
		freeAgent = FreeAgentTeamID
	}
	log(fmt.Sprintf("\nMoving non-startlist riders to team %d...", freeAgent))

	applied, err := p.Mutator.Apply(ctx, snapshotPath, teamIDs, riderIDs)
	if err != nil {
		return sum, err
	}
	sum.Moved = applied.Moved
	sum.ContractsRemoved = applied.ContractsRemoved
	sum.WorkingCopy = applied.Path
	log(fmt.Sprintf("Moved %d rider(s) to team %d", applied.Moved, freeAgent))
	log(fmt.Sprintf("Removed %d contract(s)", applied.ContractsRemoved))

	if p.Backup != nil && fileops.Exists(outputCDB) {
		info, err := backup.CreateBackup(outputCDB, *p.Backup)
		if err != nil {
			return sum, fmt.Errorf("failed to back up %s: %w", outputCDB, err)
		}
		sum.Backup = info.Path
		log(fmt.Sprintf("Backed up existing output to: %s", info.Path))
	}

	log(fmt.Sprintf("Saving to: %s", outputCDB))
	if err := p.Importer.Import(ctx, applied.Path, outputCDB); err != nil {
		return sum, err
	}
	log(fmt.Sprintf("\nDone! Saved to: %s", outputCDB))
	return sum, nil
}
