// file: cmd/config.go
// version: 1.0.0
// guid: e3a81f6c-04d7-4b92-8c5e-1a9f7d2b6c40

package cmd

import (
	"fmt"

	"github.com/benjaminnaesen/PCM-CDB-Editor/internal/config"
	"github.com/spf13/cobra"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show or save the effective configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Marshal(config.AppConfig)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	configSaveCmd = &cobra.Command{
		Use:   "save [path]",
		Short: "Write the effective configuration to a file",
		Long: `Write the effective configuration (defaults, config file, environment and
flags combined) to path, or to $HOME/.pcm-startlist.yaml when no path is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ConfigFilePath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.SaveConfigFile(path, config.AppConfig); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to: %s\n", path)
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
}
