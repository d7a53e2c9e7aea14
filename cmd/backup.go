// file: cmd/backup.go
// version: 1.0.0
// guid: 3f9a2c6e-71d4-4b08-9e5a-d2c40b8f6a17

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/backup"
	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/config"
	"github.com/spf13/cobra"
)

var (
	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Manage database backups",
		Long: `List, restore and delete the archives the multiplayer command writes
before it overwrites a database. Archives live in the configured backup_dir.`,
	}

	backupListCmd = &cobra.Command{
		Use:   "list",
		Short: "List backups, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackupList(cmd.OutOrStdout(), config.AppConfig.BackupDir)
		},
	}

	backupRestoreCmd = &cobra.Command{
		Use:   "restore <archive> [target-dir]",
		Short: "Extract a backup into a directory",
		Long: `Extract a backup archive into target-dir (default: the current directory).
The archive may be a path or a file name inside the backup directory.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) == 2 {
				target = args[1]
			}
			archive := resolveBackup(config.AppConfig.BackupDir, args[0])
			if err := backup.RestoreBackup(archive, target); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s to %s\n", archive, target)
			return nil
		},
	}

	backupDeleteCmd = &cobra.Command{
		Use:   "delete <archive>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			archive := resolveBackup(config.AppConfig.BackupDir, args[0])
			if err := backup.DeleteBackup(archive); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", archive)
			return nil
		},
	}
)

func init() {
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupDeleteCmd)
}

func runBackupList(out io.Writer, dir string) error {
	backups, err := backup.ListBackups(dir)
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		fmt.Fprintln(out, "No backups found.")
		return nil
	}
	for i, b := range backups {
		fmt.Fprintf(out, "%2d. %s (%s, %s, %d bytes)\n",
			i+1, b.Filename, b.Source, b.CreatedAt.Format(time.RFC3339), b.Size)
	}
	return nil
}

// resolveBackup accepts an existing path or a bare archive name from dir.
func resolveBackup(dir, name string) string {
	if _, err := os.Stat(name); err == nil {
		return name
	}
	return filepath.Join(dir, name)
}
