// file: cmd/dataset.go
// version: 1.0.0
// guid: 91c4e7a2-5d3f-4b68-a0e1-7f2b8d6c9e35

package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var datasetSource sourceFlags

// datasetCmd reports what the matcher will see in a database
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Summarize the teams and riders of a database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if datasetSource.empty() {
			return errors.New("pass one of --db, --csv or --cdb")
		}
		ds, err := datasetSource.load(commandContext(cmd))
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(ds.Summarize()); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	datasetSource.register(datasetCmd)
}
