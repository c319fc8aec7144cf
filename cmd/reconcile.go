package cmd

import (
	"github.com/spf13/cobra"
)

var (
	reconcileIndices []int
	reconcileAux     string
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Rebases the vault from the strategies' deposit changes",
	Long: `Collects the gain or loss every selected strategy reports, mints the fee
shares on a gain and moves the share price. Without --strategy every managed
strategy is reconciled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		aux, err := parseAux([]string{reconcileAux})
		if err != nil {
			return err
		}

		return withVault(func() error {
			indices := reconcileIndices
			if len(indices) == 0 {
				indices = vaultInteractor.AllIndices()
			}
			record, err := vaultInteractor.Reconcile(cmd.Context(), indices, aux[0])
			if err != nil {
				return err
			}
			return printRecord(record)
		})
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
	reconcileCmd.Flags().IntSliceVar(&reconcileIndices, "strategy", nil, "strategy indices to reconcile")
	reconcileCmd.Flags().StringVar(&reconcileAux, "aux", "", "hex payload forwarded to every strategy update")
}
