package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzePortfolioRisk(t *testing.T) {
	p := samplePortfolio(t)
	perInstrument := map[string]RiskMetrics{}

	acc := NewRiskAccumulator(SymbolGOF)
	acc.Add(CategoryROC, RiskLevelCritical, "ROC exceeds 50%")
	acc.Add(CategoryPremium, RiskLevelLow, "premium below 10%")
	perInstrument[SymbolGOF] = acc.Finish()

	acc = NewRiskAccumulator(SymbolQQQI)
	acc.Add(CategoryTrend, RiskLevelMedium, "Nasdaq-100 falling")
	perInstrument[SymbolQQQI] = acc.Finish()

	m, err := AnalyzePortfolioRisk("PORTFOLIO_1", p, func(symbol string) (RiskMetrics, error) {
		return perInstrument[symbol], nil
	})

	require.NoError(t, err)
	assert.Equal(t, "PORTFOLIO_1", m.Subject())
	assert.Equal(t, RiskLevelCritical, m.OverallRiskLevel())
	assert.Equal(t, []RiskFactor{
		{Category: "GOF - ROC", Level: RiskLevelCritical, Message: "ROC exceeds 50%"},
		{Category: "GOF - Premium/Discount", Level: RiskLevelLow, Message: "premium below 10%"},
		{Category: "QQQI - Nasdaq Trend", Level: RiskLevelMedium, Message: "Nasdaq-100 falling"},
	}, m.Factors())
}

func TestAnalyzePortfolioRisk_EmptyPortfolio(t *testing.T) {
	called := false
	analyze := func(string) (RiskMetrics, error) {
		called = true
		return RiskMetrics{}, nil
	}

	_, err := AnalyzePortfolioRisk("PORTFOLIO_1", NewPortfolio(), analyze)
	assert.ErrorIs(t, err, ErrEmptyPortfolio)

	_, err = AnalyzePortfolioRisk("PORTFOLIO_1", nil, analyze)
	assert.ErrorIs(t, err, ErrEmptyPortfolio)

	assert.False(t, called)
}

func TestAnalyzePortfolioRisk_PropagatesInstrumentError(t *testing.T) {
	p := samplePortfolio(t)
	boom := errors.New("quote feed down")

	_, err := AnalyzePortfolioRisk("PORTFOLIO_1", p, func(symbol string) (RiskMetrics, error) {
		if symbol == SymbolQQQI {
			return RiskMetrics{}, boom
		}
		return NewRiskAccumulator(symbol).Finish(), nil
	})

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to analyze QQQI")
}

func TestPortfolioSubject(t *testing.T) {
	id := uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001")

	assert.Equal(t, "PORTFOLIO_6f1c2d3e-0000-4000-8000-000000000001", PortfolioSubject(id))
}
