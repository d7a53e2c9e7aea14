// file: internal/multiplayer/mutator.go
// version: 1.0.0
// guid: 2a8d5c31-7f4e-4b90-8e16-c9b0d3a5f7e2

// Package multiplayer rewrites a snapshot so that only the riders on a
// race startlist stay with their teams.
package multiplayer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/database"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/fileops"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/logging"
)

const (
	// FreeAgentTeamID is the game's pool for riders without a team.
	FreeAgentTeamID = 119

	// WorkingCopyName is the file the mutated snapshot is written to.
	WorkingCopyName = "pcm_multiplayer_db.sqlite"

	teamSet  = "mp_teams"
	riderSet = "mp_riders"
)

// Result describes one applied mutation.
type Result struct {
	Path             string `json:"path" yaml:"path"`
	Moved            int64  `json:"moved" yaml:"moved"`
	ContractsRemoved int64  `json:"contracts_removed" yaml:"contracts_removed"`
}

// Mutator moves riders that are not on the startlist to the free-agent
// pool and deletes their contracts.
type Mutator struct {
	FreeAgentTeamID int
	ChunkSize       int
	WorkDir         string
	Log             logging.LineFunc
}

// NewMutator returns a mutator with the game defaults writing into workDir
// (the OS temp dir when empty).
func NewMutator(workDir string) *Mutator {
	return &Mutator{
		FreeAgentTeamID: FreeAgentTeamID,
		ChunkSize:       database.DefaultChunkSize,
		WorkDir:         workDir,
	}
}

// WorkingPath is where Apply leaves the mutated snapshot.
func (m *Mutator) WorkingPath() string {
	dir := m.WorkDir
	if dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, WorkingCopyName)
}

// Apply copies the snapshot at snapshotPath to the working location and
// mutates the copy. The source snapshot is never modified. The copy only
// replaces the working file once both statements are committed, so a
// failure leaves no half-applied working copy behind.
func (m *Mutator) Apply(ctx context.Context, snapshotPath string, teamIDs, riderIDs []int) (*Result, error) {
	final := m.WorkingPath()
	tmp := fileops.TempSibling(final)

	if err := fileops.VerifiedCopy(snapshotPath, tmp); err != nil {
		return nil, fmt.Errorf("failed to copy snapshot: %w", err)
	}

	res, err := m.mutateFile(ctx, tmp, teamIDs, riderIDs)
	if err != nil {
		os.Remove(tmp)
		return nil, err
	}

	if err := fileops.ReplaceFile(tmp, final); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("failed to publish working copy: %w", err)
	}
	res.Path = final
	return res, nil
}

func (m *Mutator) mutateFile(ctx context.Context, path string, teamIDs, riderIDs []int) (*Result, error) {
	snap, err := database.OpenSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	moved, removed, err := m.Mutate(ctx, snap.DB(), teamIDs, riderIDs)
	if err != nil {
		return nil, err
	}
	return &Result{Moved: moved, ContractsRemoved: removed}, nil
}

// Mutate applies the roster change to db inside a single transaction and
// returns the number of riders moved and contracts removed. An empty team
// set touches nothing.
func (m *Mutator) Mutate(ctx context.Context, db *sql.DB, teamIDs, riderIDs []int) (moved, removed int64, err error) {
	if len(teamIDs) == 0 {
		return 0, 0, nil
	}
	log := logging.OrDiscard(m.Log)

	freeAgent := m.FreeAgentTeamID
	if freeAgent == 0 {
		freeAgent = FreeAgentTeamID
	}

	err = database.WithTx(ctx, db, func(tx *sql.Tx) error {
		ok, err := database.HasTable(ctx, tx, database.CyclistTable)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("snapshot has no %s table", database.CyclistTable)
		}

		if err := database.CreateIDSet(ctx, tx, teamSet, teamIDs, m.ChunkSize); err != nil {
			return err
		}
		if err := database.CreateIDSet(ctx, tx, riderSet, riderIDs, m.ChunkSize); err != nil {
			return err
		}

		update := fmt.Sprintf(
			"UPDATE %s SET %s = ? WHERE %s IN (SELECT id FROM temp.%s) AND %s NOT IN (SELECT id FROM temp.%s)",
			database.QuoteIdent(database.CyclistTable),
			database.QuoteIdent(database.ColCyclistTeam),
			database.QuoteIdent(database.ColCyclistTeam), teamSet,
			database.QuoteIdent(database.ColCyclistID), riderSet)
		r, err := tx.ExecContext(ctx, update, freeAgent)
		if err != nil {
			return fmt.Errorf("failed to move riders: %w", err)
		}
		if moved, err = r.RowsAffected(); err != nil {
			return err
		}

		ok, err = database.HasTable(ctx, tx, database.ContractTable)
		if err != nil {
			return err
		}
		if ok {
			del := fmt.Sprintf(
				"DELETE FROM %s WHERE %s IN (SELECT id FROM temp.%s) AND %s NOT IN (SELECT id FROM temp.%s)",
				database.QuoteIdent(database.ContractTable),
				database.QuoteIdent(database.ColContractTeam), teamSet,
				database.QuoteIdent(database.ColContractCyclist), riderSet)
			r, err := tx.ExecContext(ctx, del)
			if err != nil {
				return fmt.Errorf("failed to remove contracts: %w", err)
			}
			if removed, err = r.RowsAffected(); err != nil {
				return err
			}
		} else {
			log(fmt.Sprintf("[WARN] snapshot has no %s table, no contracts removed", database.ContractTable))
		}

		if err := database.DropIDSet(ctx, tx, teamSet); err != nil {
			return err
		}
		return database.DropIDSet(ctx, tx, riderSet)
	})
	if err != nil {
		return 0, 0, err
	}
	return moved, removed, nil
}
