// file: internal/database/idset.go
// version: 1.0.0
// guid: 5f0c1a7e-96d2-4b8e-a3c1-0d4b2e9f7a61

package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// DefaultChunkSize keeps every statement below SQLite's historical limit
// of 999 bound parameters.
const DefaultChunkSize = 900

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// CreateIDSet creates (or empties) the temporary table temp.<name> with a
// single integer primary key column "id" and fills it with ids. Inserts are
// split so that no statement binds more than chunkSize parameters.
//
// Temporary tables are scoped to one connection, so exec should be a
// transaction or a dedicated *sql.Conn.
func CreateIDSet(ctx context.Context, exec Execer, name string, ids []int, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	table := "temp." + QuoteIdent(name)

	stmts := []string{
		fmt.Sprintf("CREATE TEMP TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY)", QuoteIdent(name)),
		fmt.Sprintf("DELETE FROM %s", table),
	}
	for _, stmt := range stmts {
		if _, err := exec.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare id set %s: %w", name, err)
		}
	}

	for start := 0; start < len(ids); start += chunkSize {
		end := min(start+chunkSize, len(ids))
		chunk := ids[start:end]

		query := fmt.Sprintf("INSERT OR IGNORE INTO %s (id) VALUES %s",
			table, strings.TrimSuffix(strings.Repeat("(?),", len(chunk)), ","))
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		if _, err := exec.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to fill id set %s: %w", name, err)
		}
	}
	return nil
}

// DropIDSet removes a temporary id set created by CreateIDSet.
func DropIDSet(ctx context.Context, exec Execer, name string) error {
	_, err := exec.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS temp.%s", QuoteIdent(name)))
	return err
}

// WithTx runs fn inside a transaction, committing when fn succeeds and
// rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
