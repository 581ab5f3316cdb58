package cmd

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the riskctl command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "riskctl",
		Short: "Offline risk reports for GOF and QQQI",
		Long: `riskctl classifies the risk of the supported income ETFs from a fund-data file
without a database or network access.

Example:
  riskctl analyze --funds data/funds.yaml
  riskctl valuation --funds data/funds.yaml --portfolio portfolio.yaml`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newAnalyzeCmd(),
		newValuationCmd(),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
