package fundfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
as_of: 2026-10-16
funds:
  GOF:
    price: "6.20"
    nav: "5.00"
    leverage: "33"
    previous_leverage: "30"
    roc: "92"
    dividend:
      ex_date: 2026-10-15
      pay_date: 2026-10-31
      amount_per_share: "0.1821"
      roc: "92"
  QQQI:
    price: "52.31"
    nav: "52.10"
    premium: "0.4"
    roc: "100"
    nasdaq_trend: "-3.46"
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "funds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))

	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), f.AsOf)
	assert.Len(t, f.Funds, 2)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "Not YAML", data: "funds: [unclosed"},
		{name: "Missing as_of", data: "funds:\n  GOF:\n    price: \"1\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))

			assert.ErrorIs(t, err, domain.ErrMalformedValue)
		})
	}
}

func TestIndicators_AbsentKeysStayAbsent(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	gof, err := f.Indicators(domain.SymbolGOF)
	require.NoError(t, err)
	assert.False(t, gof.Premium.IsPresent())
	assert.False(t, gof.Trend.IsPresent())
	l, ok := gof.Leverage.Get()
	require.True(t, ok)
	assert.True(t, l.IsIncreasing())

	qqqi, err := f.Indicators(domain.SymbolQQQI)
	require.NoError(t, err)
	assert.False(t, qqqi.Leverage.IsPresent())
	trend, ok := qqqi.Trend.Get()
	require.True(t, ok)
	assert.Equal(t, "-3.46", trend.String())
}

func TestIndicators_OutOfRange(t *testing.T) {
	f, err := Parse([]byte("as_of: 2026-10-16\nfunds:\n  GOF:\n    price: \"1\"\n    nav: \"1\"\n    roc: \"120\"\n"))
	require.NoError(t, err)

	_, err = f.Indicators(domain.SymbolGOF)

	assert.ErrorIs(t, err, domain.ErrMalformedValue)
}

func TestReading_DerivesPremiumAndLastDistribution(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	reading, err := f.Reading(domain.SymbolGOF)

	require.NoError(t, err)
	p, ok := reading.Indicators.Premium.Get()
	require.True(t, ok)
	assert.Equal(t, "24.00", p.Value().StringFixed(2))
	last, ok := reading.Indicators.LastDistribution.Get()
	require.True(t, ok)
	assert.Equal(t, "0.1821", last.StringFixed())

	analyzer, err := domain.NewAnalyzer(reading)
	require.NoError(t, err)
	assert.Equal(t, domain.RiskLevelCritical, analyzer.Analyze().OverallRiskLevel())
}

func TestDividend(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	gof, err := f.Dividend(domain.SymbolGOF)
	require.NoError(t, err)
	require.NotNil(t, gof)
	assert.True(t, gof.HasROC())
	assert.Equal(t, time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC), gof.PayDate)

	qqqi, err := f.Dividend(domain.SymbolQQQI)
	require.NoError(t, err)
	assert.Nil(t, qqqi)

	_, err = f.Dividend("SPY")
	assert.ErrorIs(t, err, domain.ErrInstrumentNotFound)
}

func TestSource_RereadsFile(t *testing.T) {
	ctx := context.Background()
	path := writeSample(t, sample)
	source := NewSource(path)

	snapshot, err := source.FetchSnapshot(ctx, domain.SymbolQQQI)
	require.NoError(t, err)
	assert.Equal(t, "52.3100", snapshot.Price.StringFixed())

	require.NoError(t, os.WriteFile(path, []byte("as_of: 2026-10-17\nfunds:\n  QQQI:\n    price: \"53\"\n    nav: \"53\"\n"), 0o600))

	snapshot, err = source.FetchSnapshot(ctx, domain.SymbolQQQI)
	require.NoError(t, err)
	assert.Equal(t, "53.0000", snapshot.Price.StringFixed())

	ind, err := source.FetchIndicators(ctx, domain.SymbolQQQI)
	require.NoError(t, err)
	assert.False(t, ind.ROC.IsPresent())

	div, err := source.FetchLatestDividend(ctx, domain.SymbolQQQI)
	require.NoError(t, err)
	assert.Nil(t, div)
}

func TestSource_MissingFile(t *testing.T) {
	source := NewSource(filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := source.FetchSnapshot(context.Background(), domain.SymbolGOF)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read fund data file")
}
