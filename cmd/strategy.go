package cmd

import (
	"fmt"
	"strconv"

	"vault/domain"
	"vault/infrastructure/pool"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var strategyConfig domain.StrategyConfig

var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Manages the ordered strategy list",
}

var strategyAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Appends a pool strategy at the lowest priority",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := strategyConfig
		sc.ID = args[0]
		p, err := pool.FromConfig(sc)
		if err != nil {
			return err
		}
		return withVault(func() error {
			return vaultInteractor.AddStrategy(p)
		})
	},
}

var strategyRemoveCmd = &cobra.Command{
	Use:   "remove <index>",
	Short: "Removes an empty strategy",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("index %q: %w", args[0], err)
		}
		return withVault(func() error {
			return vaultInteractor.RemoveStrategy(index)
		})
	},
}

var strategyReorderCmd = &cobra.Command{
	Use:   "reorder <index>...",
	Short: "Sets the priority order",
	Long: `Sets the priority order. The n-th argument is the current index of the
strategy that moves to position n; every index must appear exactly once.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order := make([]int, len(args))
		for i, arg := range args {
			index, err := strconv.Atoi(arg)
			if err != nil {
				return fmt.Errorf("index %q: %w", arg, err)
			}
			order[i] = index
		}
		return withVault(func() error {
			return vaultInteractor.ReorderStrategies(order)
		})
	},
}

var strategyAccrueCmd = &cobra.Command{
	Use:   "accrue <id> <delta>",
	Short: "Books a gain (positive) or loss (negative) on a pool strategy",
	Long: `Books a gain or loss on a pool strategy's deposits. The change reaches the
share price at the next reconcile.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta, err := domain.ParseSignedAmount(args[1])
		if err != nil {
			return err
		}
		return withVault(func() error {
			strategy, _, ok := vaultInteractor.StrategyByID(args[0])
			if !ok {
				return fmt.Errorf("%w - strategy %v is not managed", domain.ErrorInvalidStrategySet, args[0])
			}
			p, ok := strategy.(*pool.Pool)
			if !ok {
				return fmt.Errorf("strategy %v is not a pool", args[0])
			}
			if err := p.Accrue(delta); err != nil {
				return err
			}
			log.Printf("🔵 strategy %v accrued %v", args[0], delta)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(strategyCmd)
	strategyCmd.AddCommand(strategyAddCmd, strategyRemoveCmd, strategyReorderCmd, strategyAccrueCmd)

	strategyAddCmd.Flags().StringVar(&strategyConfig.MaxDeposits, "max", "0", "maximum deposits")
	strategyAddCmd.Flags().StringVar(&strategyConfig.MinDeposits, "min", "0", "deposits floor")
	strategyAddCmd.Flags().Uint32Var(&strategyConfig.FeeBps, "fee-bps", 0, "fee the strategy levies on its gains, in basis points")
	strategyAddCmd.Flags().StringVar(&strategyConfig.FeeRecipient, "fee-recipient", "", "recipient of the strategy fee")
}
