// file: internal/testutil/snapshot.go
// version: 2.0.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// TeamRow is one fixture row of DYN_team.
type TeamRow struct {
	ID        int
	Name      string
	ShortName string
}

// CyclistRow is one fixture row of DYN_cyclist. TeamID 0 stores NULL.
type CyclistRow struct {
	ID        int
	FirstName string
	LastName  string
	TeamID    int
}

// ContractRow is one fixture row of DYN_contract_cyclist.
type ContractRow struct {
	CyclistID int
	TeamID    int
}

// Fixture describes the contents of a test snapshot. The Skip flags leave a
// table out of the schema so tests can exercise missing-table handling.
type Fixture struct {
	Teams     []TeamRow
	Cyclists  []CyclistRow
	Contracts []ContractRow

	SkipTeams     bool
	SkipCyclists  bool
	SkipContracts bool
}

const (
	teamSchema = `CREATE TABLE DYN_team (
		IDteam INTEGER PRIMARY KEY,
		gene_sz_name TEXT,
		gene_sz_shortname TEXT
	)`
	cyclistSchema = `CREATE TABLE DYN_cyclist (
		IDcyclist INTEGER PRIMARY KEY,
		gene_sz_firstname TEXT,
		gene_sz_lastname TEXT,
		fkIDteam INTEGER
	)`
	contractSchema = `CREATE TABLE DYN_contract_cyclist (
		IDcontract_cyclist INTEGER PRIMARY KEY AUTOINCREMENT,
		fkIDcyclist INTEGER,
		fkIDteam INTEGER
	)`
)

// NewSnapshot writes a SQLite snapshot holding f into a temp dir and
// returns its path.
func NewSnapshot(t *testing.T, f Fixture) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "snapshot.sqlite")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	tx, err := db.Begin()
	require.NoError(t, err)

	if !f.SkipTeams {
		_, err = tx.Exec(teamSchema)
		require.NoError(t, err)
		for _, r := range f.Teams {
			var short any
			if r.ShortName != "" {
				short = r.ShortName
			}
			_, err = tx.Exec("INSERT INTO DYN_team VALUES (?, ?, ?)", r.ID, r.Name, short)
			require.NoError(t, err)
		}
	}

	if !f.SkipCyclists {
		_, err = tx.Exec(cyclistSchema)
		require.NoError(t, err)
		for _, r := range f.Cyclists {
			var team any
			if r.TeamID != 0 {
				team = r.TeamID
			}
			_, err = tx.Exec("INSERT INTO DYN_cyclist VALUES (?, ?, ?, ?)", r.ID, r.FirstName, r.LastName, team)
			require.NoError(t, err)
		}
	}

	if !f.SkipContracts {
		_, err = tx.Exec(contractSchema)
		require.NoError(t, err)
		for _, r := range f.Contracts {
			_, err = tx.Exec("INSERT INTO DYN_contract_cyclist (fkIDcyclist, fkIDteam) VALUES (?, ?)", r.CyclistID, r.TeamID)
			require.NoError(t, err)
		}
	}

	require.NoError(t, tx.Commit())
	return path
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// QueryInt runs a single-value integer query against the snapshot at path.
func QueryInt(t *testing.T, path, query string, args ...any) int {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}
