package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"vault/domain"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var feeEntries []string

var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Manages the vault fee table",
}

var feeSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replaces the fee table",
	Long: `Replaces the fee table with the given entries, in order. Each entry is
recipient:basis_points[:kind] with kind 'plain' (default) or 'notify'.
Without entries the table is cleared.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fees, err := parseFeeEntries(feeEntries)
		if err != nil {
			return err
		}
		return withVault(func() error {
			if err := vaultInteractor.SetFeeTable(fees); err != nil {
				return err
			}
			log.Printf("🔵 fee table set, %d bps in total", fees.TotalBasisPoints())
			return nil
		})
	},
}

func parseFeeEntries(entries []string) (domain.FeeTable, error) {
	fees := make(domain.FeeTable, 0, len(entries))
	for _, entry := range entries {
		parts := strings.Split(entry, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("%w - entry %q", domain.ErrorInvalidFee, entry)
		}
		recipient, err := domain.ParseAccount(parts[0])
		if err != nil {
			return nil, err
		}
		bps, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w - entry %q: %v", domain.ErrorInvalidFee, entry, err)
		}
		kind := domain.RecipientPlain
		if len(parts) == 3 {
			kind = domain.RecipientKind(strings.ToLower(parts[2]))
		}
		fees = append(fees, domain.FeeEntry{Recipient: recipient, BasisPoints: uint32(bps), Kind: kind})
	}
	return fees, fees.Validate()
}

var bufferCmd = &cobra.Command{
	Use:   "buffer",
	Short: "Manages the liquidity buffer",
}

var bufferSetCmd = &cobra.Command{
	Use:   "set <basis_points>",
	Short: "Sets the share of total staked kept out of the strategies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bps, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("%w - %v", domain.ErrorInvalidBuffer, err)
		}
		return withVault(func() error {
			return vaultInteractor.SetBufferBasisPoints(uint32(bps))
		})
	},
}

var (
	switchDeposits    bool
	switchWithdrawals bool
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Disables deposits and/or withdrawals (both by default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(func() error {
			return setSwitches(true)
		})
	},
}

var unpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "Enables deposits and/or withdrawals (both by default)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withVault(func() error {
			return setSwitches(false)
		})
	},
}

func setSwitches(disabled bool) error {
	deposits, withdrawals := switchDeposits, switchWithdrawals
	if !deposits && !withdrawals {
		deposits, withdrawals = true, true
	}
	if deposits {
		vaultInteractor.SetDepositsDisabled(disabled)
		log.Printf("🔵 deposits disabled: %v", disabled)
	}
	if withdrawals {
		vaultInteractor.SetWithdrawalsDisabled(disabled)
		log.Printf("🔵 withdrawals disabled: %v", disabled)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(feeCmd, bufferCmd, pauseCmd, unpauseCmd)
	feeCmd.AddCommand(feeSetCmd)
	bufferCmd.AddCommand(bufferSetCmd)

	feeSetCmd.Flags().StringArrayVar(&feeEntries, "entry", nil, "fee entry recipient:basis_points[:kind], repeatable")
	for _, c := range []*cobra.Command{pauseCmd, unpauseCmd} {
		c.Flags().BoolVar(&switchDeposits, "deposits", false, "deposits only")
		c.Flags().BoolVar(&switchWithdrawals, "withdrawals", false, "withdrawals only")
	}
}
