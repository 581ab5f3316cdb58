package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Supported instruments
const (
	SymbolGOF  = "GOF"
	SymbolQQQI = "QQQI"
)

// Risk factor categories
const (
	CategoryPremium  = "Premium/Discount"
	CategoryLeverage = "Leverage"
	CategoryROC      = "ROC"
	CategoryDividend = "Dividend Sustainability"
	CategoryTrend    = "Nasdaq Trend"
)

// Analyzer produces RiskMetrics from one instrument's current readings.
// The set of implementations is closed: one variant per supported instrument,
// each owning its threshold table.
type Analyzer interface {
	Symbol() string
	Reading() InstrumentReading
	Analyze() RiskMetrics

	variant()
}

type catalogEntry struct {
	metadata InstrumentMetadata
	build    func(InstrumentReading) (Analyzer, error)
}

// catalog order is also the iteration order of SupportedSymbols
var catalog = []catalogEntry{
	{
		metadata: InstrumentMetadata{
			Symbol:            SymbolGOF,
			Name:              "Guggenheim Strategic Opportunities Fund",
			Types:             []InstrumentType{InstrumentTypeCEF, InstrumentTypeLeveraged, InstrumentTypeDividend},
			PaymentDayOfMonth: 31,
			Description:       "Leveraged multi-sector closed-end fund paying monthly distributions",
		},
		build: func(r InstrumentReading) (Analyzer, error) { return NewLeveragedCEF(r) },
	},
	{
		metadata: InstrumentMetadata{
			Symbol:            SymbolQQQI,
			Name:              "NEOS Nasdaq 100 High Income ETF",
			Types:             []InstrumentType{InstrumentTypeCoveredCall, InstrumentTypeDividend, InstrumentTypeIndex},
			PaymentDayOfMonth: 28,
			Description:       "Nasdaq-100 covered-call income ETF paying monthly distributions",
		},
		build: func(r InstrumentReading) (Analyzer, error) { return NewCoveredCall(r) },
	},
}

// SupportedSymbols lists every instrument an analyzer exists for
func SupportedSymbols() []string {
	out := make([]string, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e.metadata.Symbol)
	}
	return out
}

// IsSupported reports whether symbol has an analyzer
func IsSupported(symbol string) bool {
	_, ok := lookup(symbol)
	return ok
}

// CatalogMetadata returns the built-in metadata of a supported instrument
func CatalogMetadata(symbol string) (InstrumentMetadata, error) {
	e, ok := lookup(symbol)
	if !ok {
		return InstrumentMetadata{}, fmt.Errorf("%w: %s", ErrUnsupportedInstrument, symbol)
	}
	return e.metadata, nil
}

// NewAnalyzer picks the variant for the reading's symbol
func NewAnalyzer(reading InstrumentReading) (Analyzer, error) {
	e, ok := lookup(reading.Snapshot.Symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedInstrument, reading.Snapshot.Symbol)
	}
	return e.build(reading)
}

func lookup(symbol string) (catalogEntry, bool) {
	for _, e := range catalog {
		if e.metadata.Symbol == symbol {
			return e, true
		}
	}
	return catalogEntry{}, false
}

func checkSymbol(reading InstrumentReading, want string) error {
	if reading.Snapshot.Symbol != want {
		return fmt.Errorf("%w: expected %s reading, got %q", ErrUnsupportedInstrument, want, reading.Snapshot.Symbol)
	}
	return nil
}

// addDividendFactor is shared by both variants; it is informational only
func addDividendFactor(acc *RiskAccumulator, last Optional[Money]) {
	amount, ok := last.Get()
	if !ok {
		acc.Add(CategoryDividend, RiskLevelLow, "insufficient distribution history")
		return
	}
	acc.Add(CategoryDividend, RiskLevelLow, fmt.Sprintf("last distribution: %s", amount))
}

// Leveraged closed-end fund thresholds (percent)
const (
	cefROCCritical = 50
	cefROCWarning  = 30
)

// LeveragedCEF analyzes a leveraged closed-end fund (GOF) on premium, leverage trend,
// return of capital and dividend sustainability.
type LeveragedCEF struct {
	reading InstrumentReading
}

// NewLeveragedCEF builds the GOF analyzer from its current reading
func NewLeveragedCEF(reading InstrumentReading) (*LeveragedCEF, error) {
	if err := checkSymbol(reading, SymbolGOF); err != nil {
		return nil, err
	}
	return &LeveragedCEF{reading: reading}, nil
}

func (a *LeveragedCEF) Symbol() string              { return a.reading.Snapshot.Symbol }
func (a *LeveragedCEF) Reading() InstrumentReading { return a.reading }
func (a *LeveragedCEF) variant()                    {}

// Analyze classifies all four factors
func (a *LeveragedCEF) Analyze() RiskMetrics {
	acc := NewRiskAccumulator(a.Symbol())
	ind := a.reading.Indicators

	a.analyzePremium(acc, ind.Premium)
	a.analyzeLeverage(acc, ind.Leverage)
	a.analyzeROC(acc, ind.ROC)
	addDividendFactor(acc, ind.LastDistribution)

	return acc.Finish()
}

func (a *LeveragedCEF) analyzePremium(acc *RiskAccumulator, reading Optional[Premium]) {
	premium, ok := reading.Get()
	switch {
	case !ok:
		acc.Add(CategoryPremium, RiskLevelMedium, "no premium data")
	case premium.IsHighRisk():
		acc.Add(CategoryPremium, RiskLevelHigh,
			fmt.Sprintf("premium exceeds 15%% (%s) - avoid new purchases", premium))
	case premium.IsMediumRisk():
		acc.Add(CategoryPremium, RiskLevelMedium,
			fmt.Sprintf("premium in the 10-15%% range (%s) - caution", premium))
	default:
		acc.Add(CategoryPremium, RiskLevelLow,
			fmt.Sprintf("premium below 10%% (%s) - stable", premium))
	}
}

func (a *LeveragedCEF) analyzeLeverage(acc *RiskAccumulator, reading Optional[Leverage]) {
	leverage, ok := reading.Get()
	switch {
	case !ok:
		acc.Add(CategoryLeverage, RiskLevelMedium, "no leverage data")
	case leverage.IsIncreasing():
		acc.Add(CategoryLeverage, RiskLevelMedium,
			fmt.Sprintf("leverage increasing (%s) - risk rising", leverage))
	case leverage.IsDecreasing():
		acc.Add(CategoryLeverage, RiskLevelLow,
			fmt.Sprintf("leverage decreasing (%s) - risk easing", leverage))
	default:
		acc.Add(CategoryLeverage, RiskLevelLow,
			fmt.Sprintf("leverage stable (%s)", leverage))
	}
}

func (a *LeveragedCEF) analyzeROC(acc *RiskAccumulator, reading Optional[ROC]) {
	roc, ok := reading.Get()
	critical := decimal.NewFromInt(cefROCCritical)
	warning := decimal.NewFromInt(cefROCWarning)

	switch {
	case !ok:
		acc.Add(CategoryROC, RiskLevelMedium, "no ROC data")
	case roc.Exceeds(critical):
		acc.Add(CategoryROC, RiskLevelCritical,
			fmt.Sprintf("ROC exceeds 50%% (%s) - NAV erosion risk", roc))
	case roc.Within(warning, critical):
		acc.Add(CategoryROC, RiskLevelMedium,
			fmt.Sprintf("ROC in the 30-50%% range (%s) - caution", roc))
	default:
		acc.Add(CategoryROC, RiskLevelLow,
			fmt.Sprintf("ROC below 30%% (%s) - normal", roc))
	}
}

// Covered-call index fund thresholds (percent). Return of capital is structural for
// these funds, so the top band stops at HIGH.
const (
	coveredCallROCHigh    = 60
	coveredCallROCWarning = 40
)

// CoveredCall analyzes a covered-call index income fund (QQQI) on return of capital,
// the underlying index trend and dividend sustainability.
type CoveredCall struct {
	reading InstrumentReading
}

// NewCoveredCall builds the QQQI analyzer from its current reading
func NewCoveredCall(reading InstrumentReading) (*CoveredCall, error) {
	if err := checkSymbol(reading, SymbolQQQI); err != nil {
		return nil, err
	}
	return &CoveredCall{reading: reading}, nil
}

func (a *CoveredCall) Symbol() string              { return a.reading.Snapshot.Symbol }
func (a *CoveredCall) Reading() InstrumentReading { return a.reading }
func (a *CoveredCall) variant()                    {}

// Analyze classifies all three factors
func (a *CoveredCall) Analyze() RiskMetrics {
	acc := NewRiskAccumulator(a.Symbol())
	ind := a.reading.Indicators

	a.analyzeROC(acc, ind.ROC)
	a.analyzeTrend(acc, ind.Trend)
	addDividendFactor(acc, ind.LastDistribution)

	return acc.Finish()
}

func (a *CoveredCall) analyzeROC(acc *RiskAccumulator, reading Optional[ROC]) {
	roc, ok := reading.Get()
	high := decimal.NewFromInt(coveredCallROCHigh)
	warning := decimal.NewFromInt(coveredCallROCWarning)

	switch {
	case !ok:
		acc.Add(CategoryROC, RiskLevelMedium, "no ROC data")
	case roc.Exceeds(high):
		acc.Add(CategoryROC, RiskLevelHigh,
			fmt.Sprintf("ROC exceeds 60%% (%s) - verify structural sustainability", roc))
	case roc.Within(warning, high):
		acc.Add(CategoryROC, RiskLevelMedium,
			fmt.Sprintf("ROC in the 40-60%% range (%s) - caution", roc))
	default:
		acc.Add(CategoryROC, RiskLevelLow,
			fmt.Sprintf("ROC below 40%% (%s) - normal", roc))
	}
}

func (a *CoveredCall) analyzeTrend(acc *RiskAccumulator, reading Optional[decimal.Decimal]) {
	trend, ok := reading.Get()
	switch {
	case !ok:
		acc.Add(CategoryTrend, RiskLevelLow, "no Nasdaq-100 trend data")
	case trend.IsNegative():
		acc.Add(CategoryTrend, RiskLevelMedium,
			fmt.Sprintf("Nasdaq-100 falling (%s%%) - option income may decline", trend.StringFixed(2)))
	case trend.IsZero():
		acc.Add(CategoryTrend, RiskLevelLow, "Nasdaq-100 flat - stable")
	default:
		acc.Add(CategoryTrend, RiskLevelLow,
			fmt.Sprintf("Nasdaq-100 rising (+%s%%) - favorable", trend.StringFixed(2)))
	}
}
