package cmd

import (
	"vault/domain"

	"github.com/spf13/cobra"
)

var (
	historyAccount string
	historyLimit   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Prints the latest journaled operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var account domain.Account
		if historyAccount != "" {
			var err error
			if account, err = domain.ParseAccount(historyAccount); err != nil {
				return err
			}
		}

		if err := defaultDependencyInject(); err != nil {
			return err
		}
		defer closeDependencies()

		records, err := journalInteractor.History(account, historyLimit)
		if err != nil {
			return err
		}
		return printYaml(records)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyAccount, "account", "", "only operations sent or received by the account")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of records")
}
