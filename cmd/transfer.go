package cmd

import (
	"vault/domain"

	"github.com/spf13/cobra"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <from> <to> <shares>",
	Short: "Moves shares between accounts",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := domain.ParseAccount(args[0])
		if err != nil {
			return err
		}
		to, err := domain.ParseAccount(args[1])
		if err != nil {
			return err
		}
		shares, err := domain.ParseAmount(args[2])
		if err != nil {
			return err
		}

		return withVault(func() error {
			record, err := vaultInteractor.Transfer(cmd.Context(), from, to, shares)
			if err != nil {
				return err
			}
			return printRecord(record)
		})
	},
}

func init() {
	rootCmd.AddCommand(transferCmd)
}
