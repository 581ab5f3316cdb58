package domain

import "fmt"

// InstrumentRiskFunc returns the current RiskMetrics of one instrument
type InstrumentRiskFunc func(symbol string) (RiskMetrics, error)

// PortfolioSubject names the metrics of an owner's portfolio
func PortfolioSubject(ownerID fmt.Stringer) string {
	return "PORTFOLIO_" + ownerID.String()
}

// AnalyzePortfolioRisk runs every held instrument through analyze and folds all factors
// into one metrics value. Each category is prefixed with its instrument, e.g. "GOF - ROC",
// and the overall level is the maximum across all of them.
func AnalyzePortfolioRisk(subject string, portfolio *Portfolio, analyze InstrumentRiskFunc) (RiskMetrics, error) {
	if portfolio == nil || portfolio.IsEmpty() {
		return RiskMetrics{}, fmt.Errorf("%w: nothing to analyze for %s", ErrEmptyPortfolio, subject)
	}

	acc := NewRiskAccumulator(subject)
	for _, symbol := range portfolio.Symbols() {
		metrics, err := analyze(symbol)
		if err != nil {
			return RiskMetrics{}, fmt.Errorf("failed to analyze %s: %w", symbol, err)
		}
		for _, f := range metrics.factors {
			acc.Add(symbol+" - "+f.Category, f.Level, f.Message)
		}
	}
	return acc.Finish(), nil
}
