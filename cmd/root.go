package cmd

import (
	"fmt"
	"os"

	"vault/domain"
	"vault/infrastructure/logger"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: "Off-chain share vault over capacity-bounded strategies",
	Long: `Keeps a share ledger over a pool of underlying that is routed into an
ordered list of strategies, and rebases the share price from the gains and
losses the strategies report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := domain.ReadConfig(configFile); err != nil {
			return err
		}
		return logger.Setup(domain.GetLogLevel(), domain.GetLogFile())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "⛔️ %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "configuration file")
}
