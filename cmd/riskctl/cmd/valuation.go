package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/simaogato/etfguard-backend/internal/adapter/marketdata/fundfile"
	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/simaogato/etfguard-backend/internal/usecase/notification"
)

// portfolioFile is the YAML layout of --portfolio
type portfolioFile struct {
	Owner     string `yaml:"owner"`
	Positions []struct {
		Symbol       string `yaml:"symbol"`
		Quantity     int    `yaml:"quantity"`
		AveragePrice string `yaml:"average_price"`
	} `yaml:"positions"`
}

type ownerName string

func (o ownerName) String() string { return string(o) }

type valuationOptions struct {
	fundsPath     string
	portfolioPath string
}

func newValuationCmd() *cobra.Command {
	opts := &valuationOptions{}

	cmd := &cobra.Command{
		Use:   "valuation",
		Short: "Value a portfolio file and report its combined risk",
		Long: `Valuation prices every position of a portfolio YAML file with the fund-data file,
then prints the expected distributions with their forward yield and the
portfolio risk report.

Portfolio file:
  owner: alice
  positions:
    - symbol: GOF
      quantity: 100
      average_price: "6.00"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValuation(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.fundsPath, "funds", "f", "./data/funds.yaml", "path to the fund-data YAML file")
	cmd.Flags().StringVarP(&opts.portfolioPath, "portfolio", "p", "", "path to the portfolio YAML file (required)")
	cmd.MarkFlagRequired("portfolio")

	return cmd
}

func loadPortfolio(path string) (ownerName, *domain.Portfolio, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read portfolio file: %w", err)
	}

	var f portfolioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return "", nil, fmt.Errorf("%w: portfolio file: %v", domain.ErrMalformedValue, err)
	}

	p := domain.NewPortfolio()
	for _, pos := range f.Positions {
		symbol := strings.ToUpper(strings.TrimSpace(pos.Symbol))
		if !domain.IsSupported(symbol) {
			return "", nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedInstrument, pos.Symbol)
		}
		price, err := domain.MoneyFromString(pos.AveragePrice)
		if err != nil {
			return "", nil, fmt.Errorf("%s average_price: %w", symbol, err)
		}
		if err := p.AddPosition(symbol, pos.Quantity, price); err != nil {
			return "", nil, fmt.Errorf("%s: %w", symbol, err)
		}
	}

	owner := f.Owner
	if owner == "" {
		owner = "LOCAL"
	}
	return ownerName(owner), p, nil
}

func runValuation(cmd *cobra.Command, opts *valuationOptions) error {
	funds, err := fundfile.Load(opts.fundsPath)
	if err != nil {
		return err
	}
	owner, p, err := loadPortfolio(opts.portfolioPath)
	if err != nil {
		return err
	}

	prices := make(domain.Prices, p.Len())
	for _, symbol := range p.Symbols() {
		snapshot, err := funds.Snapshot(symbol)
		if err != nil {
			return err
		}
		prices[symbol] = snapshot.Price
	}

	total, err := p.TotalValue(prices)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := writePositions(out, p, prices); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTotal value: %s\n", total)

	if err := writeDividends(out, funds, p); err != nil {
		return err
	}

	metrics, err := domain.AnalyzePortfolioRisk(domain.PortfolioSubject(owner), p, func(symbol string) (domain.RiskMetrics, error) {
		return analyzeFund(funds, symbol)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n== %s ==\n%s\n", metrics.Subject(), notification.RiskAlertContent(metrics))

	return nil
}

func writePositions(out io.Writer, p *domain.Portfolio, prices domain.Prices) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tQTY\tAVG\tPRICE\tVALUE\tP/L %\tWEIGHT %")

	for _, pos := range p.Positions() {
		price := prices[pos.Symbol]
		plRate, err := pos.ProfitLossRate(price)
		if err != nil {
			return fmt.Errorf("failed to compute profit/loss for %s: %w", pos.Symbol, err)
		}
		weight, err := p.Weight(pos.Symbol, prices)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			pos.Symbol, pos.Quantity(), pos.AveragePrice(), price, pos.Value(price),
			plRate.StringFixed(2), weight.StringFixed(2))
	}

	return tw.Flush()
}

func writeDividends(out io.Writer, funds *fundfile.File, p *domain.Portfolio) error {
	for _, pos := range p.Positions() {
		dividend, err := funds.Dividend(pos.Symbol)
		if err != nil {
			return err
		}
		if dividend == nil {
			continue
		}
		expected, err := dividend.TotalFor(pos.Quantity())
		if err != nil {
			return err
		}
		snapshot, err := funds.Snapshot(pos.Symbol)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Expected %s distribution on %s: %s (forward yield %s%%)\n",
			pos.Symbol, dividend.PayDate.Format("2006-01-02"), expected,
			domain.Yield(snapshot, dividend.Annualized()).StringFixed(2))
	}
	return nil
}
