// file: cmd/convert.go
// version: 1.0.0
// guid: 2f9d6c3b-7a41-4e58-8b0d-e3c5a19f7264

package cmd

import (
	"fmt"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	convertCmd = &cobra.Command{
		Use:   "convert",
		Short: "Convert between game CDB files and SQLite snapshots",
		Long: `Run the SQLiteExporter tool to turn a game CDB into an editable SQLite
snapshot, or to pack a snapshot back into a CDB.`,
	}

	convertExportCmd = &cobra.Command{
		Use:   "export <file.cdb>",
		Short: "Export a CDB to the working SQLite snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			done := metrics.Track("convert_export")
			defer func() { done(err) }()

			path, err := newConverter().Export(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", args[0], path)
			return nil
		},
	}

	convertImportCmd = &cobra.Command{
		Use:   "import <snapshot.sqlite> <file.cdb>",
		Short: "Pack a SQLite snapshot into a CDB",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			done := metrics.Track("convert_import")
			defer func() { done(err) }()

			if err = newConverter().Import(commandContext(cmd), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", args[1])
			return nil
		},
	}
)

func init() {
	convertCmd.AddCommand(convertExportCmd)
	convertCmd.AddCommand(convertImportCmd)
}
