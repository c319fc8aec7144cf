package cmd

import (
	"fmt"

	"vault/domain"
	"vault/domain/util"

	"github.com/spf13/cobra"
)

var (
	statusYaml    bool
	statusAccount string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Prints the vault state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := defaultDependencyInject(); err != nil {
			return err
		}
		defer closeDependencies()

		if statusAccount != "" {
			account, err := domain.ParseAccount(statusAccount)
			if err != nil {
				return err
			}
			status, err := vaultInteractor.AccountStatus(account)
			if err != nil {
				return err
			}
			if statusYaml {
				return printYaml(status)
			}
			underlying, err := vaultInteractor.UnderlyingOf(account)
			if err != nil {
				return err
			}
			fmt.Printf("%v: %v worth %v\n", account, util.SharesString(vaultInteractor.BalanceOf(account)), util.AmountString(underlying))
			return nil
		}

		if statusYaml {
			return printYaml(vaultInteractor.Status())
		}
		printStatus()
		return nil
	},
}

func printStatus() {
	fmt.Printf("------------- VAULT -----------------\n")
	fmt.Printf("total staked   : %v\n", util.AmountString(vaultInteractor.TotalStaked()))
	fmt.Printf("total shares   : %v\n", util.SharesString(vaultInteractor.TotalShares()))
	fmt.Printf("share price    : %v\n", util.PriceString(vaultInteractor.SharePrice()))
	fmt.Printf("buffered       : %v (target %v)\n", util.AmountString(vaultInteractor.Buffered()), util.AmountString(vaultInteractor.BufferTarget()))
	fmt.Printf("deposit bounds : %v .. %v\n", util.AmountString(vaultInteractor.MinDeposits()), util.AmountString(vaultInteractor.MaxDeposits()))
	if vaultInteractor.DepositsDisabled() {
		fmt.Printf("⛔️ deposits are disabled\n")
	}
	if vaultInteractor.WithdrawalsDisabled() {
		fmt.Printf("⛔️ withdrawals are disabled\n")
	}

	fmt.Printf("------------- STRATEGIES ------------\n")
	for i, view := range vaultInteractor.Strategies() {
		fmt.Printf("#%03d - %v [ %v of %v, floor %v ]\n", i, view.ID, util.AmountString(view.TotalDeposits), util.AmountString(view.MaxDeposits), util.AmountString(view.MinDeposits))
	}

	fmt.Printf("------------- FEES ------------------\n")
	for _, entry := range vaultInteractor.Fees() {
		fmt.Printf("%v - %d bps (%v)\n", entry.Recipient, entry.BasisPoints, entry.Kind)
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusYaml, "yaml", false, "print as yaml")
	statusCmd.Flags().StringVar(&statusAccount, "account", "", "print one account's position")
}
