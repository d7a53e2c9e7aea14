// file: internal/database/snapshot.go
// version: 1.0.0
// guid: 345b9d74-202b-4729-90d3-67e521a0d945

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// Table and column names used by the game database.
const (
	TeamTable     = "DYN_team"
	CyclistTable  = "DYN_cyclist"
	ContractTable = "DYN_contract_cyclist"

	ColTeamID        = "IDteam"
	ColTeamName      = "gene_sz_name"
	ColTeamShortName = "gene_sz_shortname"

	ColCyclistID        = "IDcyclist"
	ColCyclistFirstName = "gene_sz_firstname"
	ColCyclistLastName  = "gene_sz_lastname"
	ColCyclistTeam      = "fkIDteam"

	ColContractCyclist = "fkIDcyclist"
	ColContractTeam    = "fkIDteam"
)

// ErrSnapshotNotFound is returned when the snapshot file does not exist.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is an open SQLite copy of the game database
type Snapshot struct {
	db   *sql.DB
	path string
}

// OpenSnapshot opens an existing SQLite snapshot. The file must exist;
// opening never creates an empty database.
func OpenSnapshot(path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat snapshot: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("snapshot path %s is a directory", path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite snapshot: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite snapshot: %w", err)
	}

	return &Snapshot{db: db, path: path}, nil
}

// Path returns the file the snapshot was opened from.
func (s *Snapshot) Path() string {
	return s.path
}

// DB exposes the underlying handle for callers that run their own statements.
func (s *Snapshot) DB() *sql.DB {
	return s.db
}

// Close closes the snapshot.
func (s *Snapshot) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HasTable reports whether the named table exists.
func (s *Snapshot) HasTable(ctx context.Context, name string) (bool, error) {
	return HasTable(ctx, s.db, name)
}

// Columns returns the set of column names of a table.
func (s *Snapshot) Columns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", QuoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     sql.NullString
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dfltValue, &pk); err != nil {
			return nil, err
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// Teams reads the team table. A missing table yields an empty slice.
func (s *Snapshot) Teams(ctx context.Context) ([]models.Team, error) {
	exists, err := s.HasTable(ctx, TeamTable)
	if err != nil || !exists {
		return nil, err
	}

	cols, err := s.Columns(ctx, TeamTable)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(TeamTable, cols, ColTeamID, ColTeamName); err != nil {
		return nil, err
	}
	short := "NULL"
	if cols[ColTeamShortName] {
		short = QuoteIdent(ColTeamShortName)
	}

	query := fmt.Sprintf("SELECT %s, %s, %s FROM %s",
		QuoteIdent(ColTeamID), QuoteIdent(ColTeamName), short, QuoteIdent(TeamTable))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var (
			id        sql.NullInt64
			name      sql.NullString
			shortName sql.NullString
		)
		if err := rows.Scan(&id, &name, &shortName); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		if !id.Valid {
			continue
		}
		teams = append(teams, models.Team{
			ID:        int(id.Int64),
			Name:      name.String,
			ShortName: models.StringPtr(shortName.String),
		})
	}
	return teams, rows.Err()
}

// Cyclists reads the cyclist table. A missing table yields an empty slice.
func (s *Snapshot) Cyclists(ctx context.Context) ([]models.Cyclist, error) {
	exists, err := s.HasTable(ctx, CyclistTable)
	if err != nil || !exists {
		return nil, err
	}

	cols, err := s.Columns(ctx, CyclistTable)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(CyclistTable, cols, ColCyclistID, ColCyclistFirstName, ColCyclistLastName); err != nil {
		return nil, err
	}
	team := "NULL"
	if cols[ColCyclistTeam] {
		team = QuoteIdent(ColCyclistTeam)
	}

	query := fmt.Sprintf("SELECT %s, %s, %s, %s FROM %s",
		QuoteIdent(ColCyclistID), QuoteIdent(ColCyclistFirstName), QuoteIdent(ColCyclistLastName),
		team, QuoteIdent(CyclistTable))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cyclists: %w", err)
	}
	defer rows.Close()

	var cyclists []models.Cyclist
	for rows.Next() {
		var (
			id     sql.NullInt64
			first  sql.NullString
			last   sql.NullString
			teamID sql.NullInt64
		)
		if err := rows.Scan(&id, &first, &last, &teamID); err != nil {
			return nil, fmt.Errorf("failed to scan cyclist: %w", err)
		}
		if !id.Valid {
			continue
		}
		c := models.Cyclist{
			ID:        int(id.Int64),
			FirstName: first.String,
			LastName:  last.String,
		}
		if teamID.Valid {
			c.TeamID = models.IntPtr(int(teamID.Int64))
		}
		cyclists = append(cyclists, c)
	}
	return cyclists, rows.Err()
}

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// HasTable reports whether the named table exists in the main schema.
func HasTable(ctx context.Context, q Querier, name string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to look up table %s: %w", name, err)
	}
	return count > 0, nil
}

func requireColumns(table string, cols map[string]bool, names ...string) error {
	var missing []string
	for _, n := range names {
		if !cols[n] {
			missing = append(missing, n)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table %s is missing columns: %s", table, strings.Join(missing, ", "))
	}
	return nil
}

// QuoteIdent brackets an identifier the way the game's exporter names them.
func QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
