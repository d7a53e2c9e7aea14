// file: internal/multiplayer/mutator_test.go
// version: 1.0.0
// guid: 9c4e7b12-5a3d-4f08-b6e1-2d8f0a7c3e95

package multiplayer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/logging"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rosterFixture has three teams: 1 (riders 10-12), 2 (riders 20-21) and
// 3 (rider 30). Every rider holds a contract with their team.
func rosterFixture() testutil.Fixture {
	f := testutil.Fixture{
		Teams: []testutil.TeamRow{{ID: 1, Name: "One"}, {ID: 2, Name: "Two"}, {ID: 3, Name: "Three"}},
	}
	for _, r := range []struct{ id, team int }{{10, 1}, {11, 1}, {12, 1}, {20, 2}, {21, 2}, {30, 3}} {
		f.Cyclists = append(f.Cyclists, testutil.CyclistRow{ID: r.id, FirstName: "F", LastName: "L", TeamID: r.team})
		f.Contracts = append(f.Contracts, testutil.ContractRow{CyclistID: r.id, TeamID: r.team})
	}
	return f
}

func teamOf(t *testing.T, path string, cyclist int) int {
	t.Helper()
	return testutil.QueryInt(t, path, "SELECT fkIDteam FROM DYN_cyclist WHERE IDcyclist = ?", cyclist)
}

func TestApply(t *testing.T) {
	src := testutil.NewSnapshot(t, rosterFixture())
	m := NewMutator(t.TempDir())

	res, err := m.Apply(context.Background(), src, []int{1, 2}, []int{10, 20})
	require.NoError(t, err)
	assert.Equal(t, m.WorkingPath(), res.Path)
	assert.Equal(t, int64(3), res.Moved)
	assert.Equal(t, int64(3), res.ContractsRemoved)

	assert.Equal(t, 1, teamOf(t, res.Path, 10))
	assert.Equal(t, FreeAgentTeamID, teamOf(t, res.Path, 11))
	assert.Equal(t, FreeAgentTeamID, teamOf(t, res.Path, 12))
	assert.Equal(t, 2, teamOf(t, res.Path, 20))
	assert.Equal(t, FreeAgentTeamID, teamOf(t, res.Path, 21))
	// team 3 is not racing and keeps its rider
	assert.Equal(t, 3, teamOf(t, res.Path, 30))
	assert.Equal(t, 3, testutil.QueryInt(t, res.Path, "SELECT COUNT(*) FROM DYN_contract_cyclist"))

	// the source snapshot is untouched
	assert.Equal(t, 1, teamOf(t, src, 11))
	assert.Equal(t, 6, testutil.QueryInt(t, src, "SELECT COUNT(*) FROM DYN_contract_cyclist"))

	// no temporary files are left next to the working copy
	entries, err := os.ReadDir(filepath.Dir(res.Path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestApply_RepeatedRunsAgree(t *testing.T) {
	src := testutil.NewSnapshot(t, rosterFixture())
	m := NewMutator(t.TempDir())

	first, err := m.Apply(context.Background(), src, []int{1, 2}, []int{10, 20})
	require.NoError(t, err)
	second, err := m.Apply(context.Background(), src, []int{1, 2}, []int{10, 20})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// applying to an already mutated copy moves nobody
	again, err := m.Apply(context.Background(), second.Path, []int{1, 2}, []int{10, 20})
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.Moved)
	assert.Equal(t, int64(0), again.ContractsRemoved)
}

func TestApply_EmptySets(t *testing.T) {
	src := testutil.NewSnapshot(t, rosterFixture())
	res, err := NewMutator(t.TempDir()).Apply(context.Background(), src, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Moved)
	assert.Equal(t, int64(0), res.ContractsRemoved)
	assert.FileExists(t, res.Path)
	assert.Equal(t, 1, teamOf(t, res.Path, 11))
}

func TestApply_NoRosteredRiders(t *testing.T) {
	src := testutil.NewSnapshot(t, rosterFixture())
	res, err := NewMutator(t.TempDir()).Apply(context.Background(), src, []int{2}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Moved)
	assert.Equal(t, int64(2), res.ContractsRemoved)
}

func TestApply_MoreRidersThanOneChunk(t *testing.T) {
	f := testutil.Fixture{Teams: []testutil.TeamRow{{ID: 1, Name: "Big"}, {ID: 2, Name: "Other"}}}
	var roster []int
	for id := 1; id <= 2000; id++ {
		f.Cyclists = append(f.Cyclists, testutil.CyclistRow{ID: id, FirstName: "F", LastName: "L", TeamID: 1})
		f.Contracts = append(f.Contracts, testutil.ContractRow{CyclistID: id, TeamID: 1})
		if id <= 1500 {
			roster = append(roster, id)
		}
	}
	src := testutil.NewSnapshot(t, f)

	teams := []int{1}
	for id := 1000; id < 2000; id++ {
		teams = append(teams, id) // non-existent teams spill the team set over one chunk too
	}

	m := NewMutator(t.TempDir())
	m.ChunkSize = 900
	res, err := m.Apply(context.Background(), src, teams, roster)
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.Moved)
	assert.Equal(t, int64(500), res.ContractsRemoved)
	assert.Equal(t, 500, testutil.QueryInt(t, res.Path, "SELECT COUNT(*) FROM DYN_cyclist WHERE fkIDteam = ?", FreeAgentTeamID))
	assert.Equal(t, 1, teamOf(t, res.Path, 1500))
	assert.Equal(t, FreeAgentTeamID, teamOf(t, res.Path, 1501))
}

func TestApply_CustomFreeAgentTeam(t *testing.T) {
	src := testutil.NewSnapshot(t, rosterFixture())
	m := NewMutator(t.TempDir())
	m.FreeAgentTeamID = 999

	res, err := m.Apply(context.Background(), src, []int{3}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Moved)
	assert.Equal(t, 999, teamOf(t, res.Path, 30))
}

func TestApply_MissingContractTable(t *testing.T) {
	f := rosterFixture()
	f.SkipContracts = true
	src := testutil.NewSnapshot(t, f)

	rec := &logging.Recorder{}
	m := NewMutator(t.TempDir())
	m.Log = rec.Log

	res, err := m.Apply(context.Background(), src, []int{1}, []int{10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Moved)
	assert.Equal(t, int64(0), res.ContractsRemoved)
	assert.Contains(t, rec.String(), "no DYN_contract_cyclist table")
}

func TestApply_MissingCyclistTableLeavesNoWorkingCopy(t *testing.T) {
	f := rosterFixture()
	f.SkipCyclists = true
	src := testutil.NewSnapshot(t, f)

	dir := t.TempDir()
	m := NewMutator(dir)
	_, err := m.Apply(context.Background(), src, []int{1}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DYN_cyclist")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestApply_MissingSource(t *testing.T) {
	_, err := NewMutator(t.TempDir()).Apply(context.Background(), filepath.Join(t.TempDir(), "none.sqlite"), []int{1}, nil)
	assert.Error(t, err)
}

func TestMutate_RollsBackOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM sqlite_master`).
		WithArgs("DYN_cyclist").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	for _, set := range []string{"mp_teams", "mp_riders"} {
		mock.ExpectExec(`CREATE TEMP TABLE IF NOT EXISTS \[` + set + `\]`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM temp\.\[` + set + `\]`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT OR IGNORE INTO temp\.\[` + set + `\]`).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(`UPDATE \[DYN_cyclist\] SET \[fkIDteam\] = \?`).
		WithArgs(FreeAgentTeamID).
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	moved, removed, err := NewMutator("").Mutate(context.Background(), db, []int{1}, []int{10})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Zero(t, moved)
	assert.Zero(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMutate_EmptyTeamsTouchesNothing(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	moved, removed, err := NewMutator("").Mutate(context.Background(), db, nil, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Zero(t, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
