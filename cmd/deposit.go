package cmd

import (
	"vault/domain"

	"github.com/spf13/cobra"
)

var depositAux []string

var depositCmd = &cobra.Command{
	Use:   "deposit <account> <amount>",
	Short: "Deposits underlying and mints shares to the account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := domain.ParseAccount(args[0])
		if err != nil {
			return err
		}
		amount, err := domain.ParseAmount(args[1])
		if err != nil {
			return err
		}
		aux, err := parseAux(depositAux)
		if err != nil {
			return err
		}

		return withVault(func() error {
			record, err := vaultInteractor.Deposit(cmd.Context(), account, amount, aux)
			if err != nil {
				return err
			}
			return printRecord(record)
		})
	},
}

func init() {
	rootCmd.AddCommand(depositCmd)
	depositCmd.Flags().StringSliceVar(&depositAux, "aux", nil, "hex payload per strategy index, forwarded on deposit")
}
