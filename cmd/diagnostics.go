// file: cmd/diagnostics.go
// version: 2.0.0
// guid: c8f6a0d4-2a8b-48cf-9d08-02cc9915d9fc

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/database"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/dataset"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/matcher"
	"github.com/spf13/cobra"
)

var (
	diagnosticsSource sourceFlags

	diagnosticsCmd = &cobra.Command{
		Use:   "diagnostics",
		Short: "Debugging helpers for name matching",
		Long:  "Diagnostic utilities for inspecting a game database and checking how names resolve.",
	}

	matchTeamCmd = &cobra.Command{
		Use:   "match-team <name>",
		Short: "Show how a team name resolves",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := diagnosticsDataset(cmd)
			if err != nil {
				return err
			}
			return runMatchTeam(cmd.OutOrStdout(), ds, strings.Join(args, " "))
		},
	}

	matchRiderCmd = &cobra.Command{
		Use:   "match-rider <name>",
		Short: "Show how a rider name resolves",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := diagnosticsDataset(cmd)
			if err != nil {
				return err
			}
			team, _ := cmd.Flags().GetInt("team")
			return runMatchRider(cmd.OutOrStdout(), ds, strings.Join(args, " "), team)
		},
	}

	tablesCmd = &cobra.Command{
		Use:   "tables",
		Short: "List the tables of a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			path, err := diagnosticsSource.snapshot(ctx)
			if err != nil {
				return err
			}
			prefix, _ := cmd.Flags().GetString("prefix")
			return runTables(ctx, cmd.OutOrStdout(), path, prefix)
		},
	}
)

func init() {
	diagnosticsSource.registerOn(diagnosticsCmd, diagnosticsCmd.PersistentFlags())

	matchRiderCmd.Flags().Int("team", 0, "resolved team ID of the rider, enables the team bonus")
	tablesCmd.Flags().String("prefix", "DYN_", "only list tables starting with this prefix")

	diagnosticsCmd.AddCommand(matchTeamCmd)
	diagnosticsCmd.AddCommand(matchRiderCmd)
	diagnosticsCmd.AddCommand(tablesCmd)
}

func diagnosticsDataset(cmd *cobra.Command) (*dataset.Dataset, error) {
	if diagnosticsSource.empty() {
		return nil, errors.New("pass one of --db, --csv or --cdb")
	}
	ds, err := diagnosticsSource.load(commandContext(cmd))
	if err != nil {
		return nil, err
	}
	if !ds.Loaded() {
		return nil, errors.New("DYN_team or DYN_cyclist tables missing")
	}
	return ds, nil
}

func runMatchTeam(out io.Writer, ds *dataset.Dataset, name string) error {
	fmt.Fprintf(out, "Query:      %s\n", name)
	fmt.Fprintf(out, "Normalized: %s\n", matcher.Normalize(name))

	if m, ok := ds.MatchTeam(name); ok {
		fmt.Fprintf(out, "Match:      %s (ID: %d, score %.2f)\n", m.Name, m.ID, m.Score)
		return nil
	}
	fmt.Fprintln(out, "Match:      none")
	printSuggestions(out, name, ds.TeamNames())
	return nil
}

func runMatchRider(out io.Writer, ds *dataset.Dataset, name string, team int) error {
	fmt.Fprintf(out, "Query:      %s\n", name)
	fmt.Fprintf(out, "Normalized: %s\n", matcher.Normalize(name))

	if m, ok := ds.MatchRider(name, team); ok {
		teamID := "free agent"
		if m.TeamID != nil {
			teamID = fmt.Sprintf("team %d", *m.TeamID)
		}
		fmt.Fprintf(out, "Match:      %s (ID: %d, score %d, %s)\n", m.Display, m.ID, m.Score, teamID)
		return nil
	}
	fmt.Fprintln(out, "Match:      none")
	printSuggestions(out, name, ds.CyclistNames())
	return nil
}

func printSuggestions(out io.Writer, name string, candidates []string) {
	suggestions := matcher.Suggest(name, candidates, 5)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintln(out, "Closest names:")
	for i, s := range suggestions {
		fmt.Fprintf(out, "%2d. %s\n", i+1, s)
	}
}

func runTables(ctx context.Context, out io.Writer, path, prefix string) error {
	snap, err := database.OpenSnapshot(path)
	if err != nil {
		return err
	}
	defer snap.Close()

	rows, err := snap.DB().QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	sort.Strings(names)

	if len(names) == 0 {
		fmt.Fprintln(out, "No tables matched the requested prefix.")
		return nil
	}

	for i, name := range names {
		cols, err := snap.Columns(ctx, name)
		if err != nil {
			return err
		}
		var count int
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", database.QuoteIdent(name))
		if err := snap.DB().QueryRowContext(ctx, query).Scan(&count); err != nil {
			return fmt.Errorf("failed to count %s: %w", name, err)
		}
		fmt.Fprintf(out, "%2d. %s (%d rows, %d columns)\n", i+1, name, count, len(cols))
	}
	return nil
}
