// file: internal/dataset/load.go
// version: 1.0.0
// guid: c42e8b17-5d90-4f3a-a6e8-7b19d0f54c2e

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/database"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/models"
)

// CSV file names looked up by LoadCSVFolder.
const (
	TeamsCSV    = database.TeamTable + ".csv"
	CyclistsCSV = database.CyclistTable + ".csv"
)

// LoadSQLite builds a dataset from a SQLite snapshot. Missing team or
// cyclist tables yield empty collections; an unopenable snapshot is an error.
func LoadSQLite(ctx context.Context, path string, opts Options) (*Dataset, error) {
	snap, err := database.OpenSnapshot(path)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	teams, err := snap.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}
	cyclists, err := snap.Cyclists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cyclists: %w", err)
	}
	return New(teams, cyclists, opts), nil
}

// LoadCSVFolder builds a dataset from DYN_team.csv and DYN_cyclist.csv in dir.
func LoadCSVFolder(dir string, opts Options) (*Dataset, error) {
	return LoadCSV(filepath.Join(dir, TeamsCSV), filepath.Join(dir, CyclistsCSV), opts)
}

// LoadCSV builds a dataset from a teams file and a cyclists file. A missing
// file yields an empty collection for that entity.
func LoadCSV(teamsPath, cyclistsPath string, opts Options) (*Dataset, error) {
	teamRows, err := readCSV(teamsPath)
	if err != nil {
		return nil, err
	}
	cyclistRows, err := readCSV(cyclistsPath)
	if err != nil {
		return nil, err
	}

	var teams []models.Team
	for i, row := range teamRows {
		id, ok := parseID(row[database.ColTeamID])
		if !ok {
			log.Printf("[WARN] %s row %d: invalid %s %q, skipping", filepath.Base(teamsPath), i+2, database.ColTeamID, row[database.ColTeamID])
			continue
		}
		teams = append(teams, models.Team{
			ID:        id,
			Name:      row[database.ColTeamName],
			ShortName: models.StringPtr(row[database.ColTeamShortName]),
		})
	}

	var cyclists []models.Cyclist
	for i, row := range cyclistRows {
		id, ok := parseID(row[database.ColCyclistID])
		if !ok {
			log.Printf("[WARN] %s row %d: invalid %s %q, skipping", filepath.Base(cyclistsPath), i+2, database.ColCyclistID, row[database.ColCyclistID])
			continue
		}
		c := models.Cyclist{
			ID:        id,
			FirstName: row[database.ColCyclistFirstName],
			LastName:  row[database.ColCyclistLastName],
		}
		if teamID, ok := parseID(row[database.ColCyclistTeam]); ok {
			c.TeamID = models.IntPtr(teamID)
		}
		cyclists = append(cyclists, c)
	}

	return New(teams, cyclists, opts), nil
}

// readCSV reads a header-plus-rows file into one map per row.
func readCSV(path string) ([]map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []map[string]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseID accepts integer identifiers, including spreadsheet exports such
// as "42.0".
func parseID(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
