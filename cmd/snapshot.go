package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var snapshotOutput string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Vault snapshot tools",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exports the saved vault as yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := defaultDependencyInject(); err != nil {
			return err
		}
		defer closeDependencies()

		snapshot := vaultInteractor.Snapshot()
		if snapshotOutput == "" {
			return printYaml(snapshot)
		}

		data, err := yaml.Marshal(snapshot)
		if err != nil {
			return err
		}
		return os.WriteFile(snapshotOutput, data, 0o644)
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotExportCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "output file (default: stdout)")
}
