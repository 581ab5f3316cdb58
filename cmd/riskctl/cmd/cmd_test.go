package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const funds = `
as_of: 2026-10-16
funds:
  GOF:
    price: "6.50"
    nav: "5.00"
    leverage: "33"
    previous_leverage: "30"
    roc: "92"
    dividend:
      ex_date: 2026-10-15
      pay_date: 2026-10-31
      amount_per_share: "0.1821"
  QQQI:
    price: "60.00"
    nav: "59.90"
    roc: "35"
    nasdaq_trend: "1.2"
`

const holdings = `
owner: alice
positions:
  - symbol: GOF
    quantity: 100
    average_price: "6.00"
  - symbol: qqqi
    quantity: 10
    average_price: "50.00"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyze(t *testing.T) {
	path := writeFile(t, "funds.yaml", funds)

	out, err := run(t, "analyze", "--funds", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Fund data as of 2026-10-16")
	assert.Contains(t, out, "== GOF ==")
	assert.Contains(t, out, "Overall risk: Critical")
	assert.Contains(t, out, "== QQQI ==")
}

func TestAnalyze_FailOn(t *testing.T) {
	path := writeFile(t, "funds.yaml", funds)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "Breached", args: []string{"--fail-on", "high"}, wantErr: "risk at or above HIGH: GOF"},
		{name: "Not breached", args: []string{"--symbol", "QQQI", "--fail-on", "CRITICAL"}},
		{name: "Unknown level", args: []string{"--fail-on", "SEVERE"}, wantErr: "risk level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"analyze", "--funds", path}, tt.args...)...)

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAnalyze_UnknownSymbol(t *testing.T) {
	path := writeFile(t, "funds.yaml", funds)

	_, err := run(t, "analyze", "--funds", path, "--symbol", "SPY")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPY")
}

func TestValuation(t *testing.T) {
	fundsPath := writeFile(t, "funds.yaml", funds)
	portfolioPath := writeFile(t, "portfolio.yaml", holdings)

	out, err := run(t, "valuation", "--funds", fundsPath, "--portfolio", portfolioPath)

	require.NoError(t, err)
	assert.Contains(t, out, "Total value: $1,250.00")
	assert.Contains(t, out, "Expected GOF distribution on 2026-10-31: $18.21 (forward yield 33.62%)")
	assert.Contains(t, out, "== PORTFOLIO_alice ==")
	assert.Contains(t, out, "GOF - ROC")
	assert.Contains(t, out, "QQQI - ROC")
}

func TestValuation_Errors(t *testing.T) {
	fundsPath := writeFile(t, "funds.yaml", funds)

	tests := []struct {
		name      string
		portfolio string
		wantErr   string
	}{
		{
			name:      "Unsupported symbol",
			portfolio: "positions:\n  - symbol: SPY\n    quantity: 1\n    average_price: \"1\"\n",
			wantErr:   "SPY",
		},
		{
			name:      "Duplicate position",
			portfolio: "positions:\n  - symbol: GOF\n    quantity: 1\n    average_price: \"1\"\n  - symbol: GOF\n    quantity: 2\n    average_price: \"1\"\n",
			wantErr:   "GOF",
		},
		{
			name:      "Empty portfolio",
			portfolio: "owner: bob\n",
			wantErr:   "nothing to analyze",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "portfolio.yaml", tt.portfolio)

			_, err := run(t, "valuation", "--funds", fundsPath, "--portfolio", path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValuation_RequiresPortfolio(t *testing.T) {
	_, err := run(t, "valuation")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "portfolio")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "riskctl version "+version+"\n", out)
}
