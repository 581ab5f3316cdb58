package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simaogato/etfguard-backend/internal/adapter/marketdata/fundfile"
	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/simaogato/etfguard-backend/internal/usecase/notification"
)

type analyzeOptions struct {
	fundsPath string
	symbols   []string
	failOn    string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the risk report of each instrument in a fund-data file",
		Long: `Analyze reads a fund-data YAML file and runs each supported instrument through
its analyzer.

With --fail-on the command exits non-zero when any instrument reaches that level.

Example:
  riskctl analyze --funds data/funds.yaml --symbol GOF --fail-on HIGH`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.fundsPath, "funds", "f", "./data/funds.yaml", "path to the fund-data YAML file")
	cmd.Flags().StringSliceVarP(&opts.symbols, "symbol", "s", nil, "instrument to analyze (repeatable, default all supported)")
	cmd.Flags().StringVar(&opts.failOn, "fail-on", "", "exit non-zero at or above this level (LOW, MEDIUM, HIGH, CRITICAL)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions) error {
	var threshold *domain.RiskLevel
	if opts.failOn != "" {
		level, err := domain.ParseRiskLevel(strings.ToUpper(opts.failOn))
		if err != nil {
			return err
		}
		threshold = &level
	}

	file, err := fundfile.Load(opts.fundsPath)
	if err != nil {
		return err
	}

	symbols := opts.symbols
	if len(symbols) == 0 {
		symbols = domain.SupportedSymbols()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Fund data as of %s\n", file.AsOf.Format("2006-01-02"))

	var breached []string
	for _, symbol := range symbols {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))

		metrics, err := analyzeFund(file, symbol)
		if err != nil {
			return err
		}

		fmt.Fprintf(out, "\n== %s ==\n%s\n", symbol, notification.RiskAlertContent(metrics))

		if threshold != nil && !metrics.OverallRiskLevel().IsLowerThan(*threshold) {
			breached = append(breached, symbol)
		}
	}

	if len(breached) > 0 {
		return fmt.Errorf("risk at or above %s: %s", threshold, strings.Join(breached, ", "))
	}
	return nil
}

func analyzeFund(file *fundfile.File, symbol string) (domain.RiskMetrics, error) {
	reading, err := file.Reading(symbol)
	if err != nil {
		return domain.RiskMetrics{}, err
	}
	analyzer, err := domain.NewAnalyzer(reading)
	if err != nil {
		return domain.RiskMetrics{}, err
	}
	return analyzer.Analyze(), nil
}
