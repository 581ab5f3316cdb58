package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InstrumentType classifies funds
type InstrumentType string

const (
	InstrumentTypeIndex       InstrumentType = "INDEX"
	InstrumentTypeSector      InstrumentType = "SECTOR"
	InstrumentTypeThematic    InstrumentType = "THEMATIC"
	InstrumentTypeBond        InstrumentType = "BOND"
	InstrumentTypeCommodity   InstrumentType = "COMMODITY"
	InstrumentTypeREIT        InstrumentType = "REIT"
	InstrumentTypeLeveraged   InstrumentType = "LEVERAGED"
	InstrumentTypeInverse     InstrumentType = "INVERSE"
	InstrumentTypeDividend    InstrumentType = "DIVIDEND"
	InstrumentTypeGlobal      InstrumentType = "GLOBAL"
	InstrumentTypeSmartBeta   InstrumentType = "SMART_BETA"
	InstrumentTypeCEF         InstrumentType = "CEF"
	InstrumentTypeCoveredCall InstrumentType = "COVERED_CALL"
)

var instrumentTypeInfo = map[InstrumentType][2]string{
	InstrumentTypeIndex:       {"Index", "tracks a broad market or benchmark index"},
	InstrumentTypeSector:      {"Sector", "industry or sector exposure"},
	InstrumentTypeThematic:    {"Thematic", "a specific trend or future industry"},
	InstrumentTypeBond:        {"Bond", "government or corporate bonds"},
	InstrumentTypeCommodity:   {"Commodity", "tracks physical assets such as gold or oil"},
	InstrumentTypeREIT:        {"REIT", "listed real estate"},
	InstrumentTypeLeveraged:   {"Leveraged", "uses borrowing to amplify returns"},
	InstrumentTypeInverse:     {"Inverse", "moves opposite to its index"},
	InstrumentTypeDividend:    {"Dividend", "high-dividend holdings"},
	InstrumentTypeGlobal:      {"Global", "overseas or single-country markets"},
	InstrumentTypeSmartBeta:   {"Smart beta", "factor-based strategy"},
	InstrumentTypeCEF:         {"Closed-end fund", "fixed share count traded on exchange"},
	InstrumentTypeCoveredCall: {"Covered call", "earns option premium income"},
}

func (t InstrumentType) DisplayName() string { return instrumentTypeInfo[t][0] }
func (t InstrumentType) Description() string { return instrumentTypeInfo[t][1] }

// ParseInstrumentType parses an enum name such as "CEF"
func ParseInstrumentType(s string) (InstrumentType, error) {
	t := InstrumentType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := instrumentTypeInfo[t]; !ok {
		return "", fmt.Errorf("%w: instrument type %q", ErrMalformedValue, s)
	}
	return t, nil
}

// Snapshot is a price and NAV observation for one instrument
type Snapshot struct {
	Symbol string
	Price  Money
	NAV    Money
	AsOf   time.Time
}

// NewSnapshot validates a snapshot. Every field is required.
func NewSnapshot(symbol string, price, nav Money, asOf time.Time) (Snapshot, error) {
	if strings.TrimSpace(symbol) == "" {
		return Snapshot{}, fmt.Errorf("%w: snapshot symbol is required", ErrMalformedValue)
	}
	if asOf.IsZero() {
		return Snapshot{}, fmt.Errorf("%w: snapshot date is required for %s", ErrMalformedValue, symbol)
	}
	return Snapshot{Symbol: symbol, Price: price, NAV: nav, AsOf: asOf}, nil
}

// PremiumOrDiscount returns price − NAV
func (s Snapshot) PremiumOrDiscount() Money {
	return s.Price.Sub(s.NAV)
}

func (s Snapshot) IsTradingAtPremium() bool  { return s.Price.GreaterThan(s.NAV) }
func (s Snapshot) IsTradingAtDiscount() bool { return s.Price.LessThan(s.NAV) }

// PremiumPercent derives (price − NAV) ÷ NAV × 100 rounded to 4 places.
// It is absent when NAV is zero.
func (s Snapshot) PremiumPercent() Optional[Premium] {
	if s.NAV.IsZero() {
		return None[Premium]()
	}
	pct := s.PremiumOrDiscount().Decimal().DivRound(s.NAV.Decimal(), 4).Mul(hundred)
	return Some(NewPremium(pct))
}

// Indicators is the full set of fund readings an analyzer may consult.
// Each reading is optional; analyzers classify absence explicitly.
type Indicators struct {
	Premium          Optional[Premium]
	Leverage         Optional[Leverage]
	ROC              Optional[ROC]
	Trend            Optional[decimal.Decimal]
	LastDistribution Optional[Money]
}

// InstrumentReading is one stored observation: a snapshot plus indicators.
// New readings replace old ones wholesale.
type InstrumentReading struct {
	Snapshot   Snapshot
	Indicators Indicators
	RecordedAt time.Time
}

// InstrumentMetadata describes a supported instrument
type InstrumentMetadata struct {
	Symbol            string
	Name              string
	Types             []InstrumentType
	PaymentDayOfMonth int
	Description       string
}

// HasType reports whether the instrument carries t
func (m InstrumentMetadata) HasType(t InstrumentType) bool {
	for _, it := range m.Types {
		if it == t {
			return true
		}
	}
	return false
}

// Yield returns annualDividend ÷ price × 100 for the snapshot's price.
// It returns 0 when the price is zero.
func Yield(snapshot Snapshot, annualDividend Money) decimal.Decimal {
	if snapshot.Price.IsZero() {
		return decimal.Zero
	}
	return annualDividend.Decimal().DivRound(snapshot.Price.Decimal(), 4).Mul(hundred)
}
