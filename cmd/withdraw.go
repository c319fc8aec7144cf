package cmd

import (
	"vault/domain"

	"github.com/spf13/cobra"
)

var (
	withdrawRecipient string
	withdrawAux       []string
)

var withdrawCmd = &cobra.Command{
	Use:   "withdraw <account> <amount>",
	Short: "Burns the account's shares for an amount of underlying",
	Long: `Burns the shares worth the amount, rounded up, and pays the underlying
from the buffer first, then from the strategies in reverse priority order.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := domain.ParseAccount(args[0])
		if err != nil {
			return err
		}
		amount, err := domain.ParseAmount(args[1])
		if err != nil {
			return err
		}
		recipient := account
		if withdrawRecipient != "" {
			if recipient, err = domain.ParseAccount(withdrawRecipient); err != nil {
				return err
			}
		}
		aux, err := parseAux(withdrawAux)
		if err != nil {
			return err
		}

		return withVault(func() error {
			record, err := vaultInteractor.Withdraw(cmd.Context(), account, recipient, amount, aux)
			if err != nil {
				return err
			}
			return printRecord(record)
		})
	},
}

func init() {
	rootCmd.AddCommand(withdrawCmd)
	withdrawCmd.Flags().StringVar(&withdrawRecipient, "recipient", "", "account receiving the underlying (default: the withdrawing account)")
	withdrawCmd.Flags().StringSliceVar(&withdrawAux, "aux", nil, "hex payload per strategy index, forwarded on withdrawal")
}
