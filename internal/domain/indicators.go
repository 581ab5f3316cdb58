package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Premium bands, in percent of NAV
var (
	premiumHighRiskThreshold   = decimal.NewFromInt(15)
	premiumMediumRiskThreshold = decimal.NewFromInt(10)
)

// Premium is the market price's premium (positive) or discount (negative) to NAV, in percent
type Premium struct {
	value decimal.Decimal
}

// NewPremium wraps a premium reading
func NewPremium(value decimal.Decimal) Premium {
	return Premium{value: value}
}

// ParsePremium parses a premium reading such as "12.5"
func ParsePremium(value string) (Premium, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Premium{}, fmt.Errorf("%w: premium %q: %v", ErrMalformedValue, value, err)
	}
	return NewPremium(d), nil
}

func (p Premium) Value() decimal.Decimal { return p.value }

// IsHighRisk is true above 15%
func (p Premium) IsHighRisk() bool {
	return p.value.GreaterThan(premiumHighRiskThreshold)
}

// IsMediumRisk is true from 10% to 15%, both inclusive
func (p Premium) IsMediumRisk() bool {
	return p.value.GreaterThanOrEqual(premiumMediumRiskThreshold) &&
		p.value.LessThanOrEqual(premiumHighRiskThreshold)
}

// IsLowRisk is true below 10%
func (p Premium) IsLowRisk() bool {
	return p.value.LessThan(premiumMediumRiskThreshold)
}

func (p Premium) String() string { return p.value.String() + "%" }

// Leverage is a fund's leverage ratio in percent with the previous reading, if known
type Leverage struct {
	current  decimal.Decimal
	previous Optional[decimal.Decimal]
}

// NewLeverage validates and wraps a leverage reading. current must not be negative.
func NewLeverage(current decimal.Decimal, previous Optional[decimal.Decimal]) (Leverage, error) {
	if current.IsNegative() {
		return Leverage{}, fmt.Errorf("%w: leverage must not be negative, got %s", ErrMalformedValue, current)
	}
	return Leverage{current: current, previous: previous}, nil
}

// ParseLeverage parses current and previous readings; an empty previous means absent
func ParseLeverage(current, previous string) (Leverage, error) {
	cur, err := decimal.NewFromString(current)
	if err != nil {
		return Leverage{}, fmt.Errorf("%w: leverage %q: %v", ErrMalformedValue, current, err)
	}

	prev := None[decimal.Decimal]()
	if previous != "" {
		d, err := decimal.NewFromString(previous)
		if err != nil {
			return Leverage{}, fmt.Errorf("%w: previous leverage %q: %v", ErrMalformedValue, previous, err)
		}
		prev = Some(d)
	}

	return NewLeverage(cur, prev)
}

func (l Leverage) Current() decimal.Decimal             { return l.current }
func (l Leverage) Previous() Optional[decimal.Decimal] { return l.previous }

// WithPrevious returns a copy carrying previous as the prior reading
func (l Leverage) WithPrevious(previous decimal.Decimal) Leverage {
	return Leverage{current: l.current, previous: Some(previous)}
}

func (l Leverage) IsIncreasing() bool {
	prev, ok := l.previous.Get()
	return ok && l.current.GreaterThan(prev)
}

func (l Leverage) IsDecreasing() bool {
	prev, ok := l.previous.Get()
	return ok && l.current.LessThan(prev)
}

// IsStable is true when unchanged or when there is nothing to compare against
func (l Leverage) IsStable() bool {
	prev, ok := l.previous.Get()
	return !ok || l.current.Equal(prev)
}

// ChangeRate returns (current − previous) ÷ previous × 100, or 0 without a usable previous
func (l Leverage) ChangeRate() decimal.Decimal {
	prev, ok := l.previous.Get()
	if !ok || prev.IsZero() {
		return decimal.Zero
	}
	return l.current.Sub(prev).DivRound(prev, 4).Mul(hundred)
}

func (l Leverage) String() string {
	prev, ok := l.previous.Get()
	if !ok {
		return l.current.String() + "%"
	}
	return fmt.Sprintf("%s%% (previous: %s%%)", l.current, prev)
}

// ROC is the return-of-capital share of a distribution, in percent (0–100)
type ROC struct {
	value decimal.Decimal
}

// NewROC validates and wraps a return-of-capital reading
func NewROC(value decimal.Decimal) (ROC, error) {
	if value.IsNegative() || value.GreaterThan(hundred) {
		return ROC{}, fmt.Errorf("%w: ROC must be between 0 and 100, got %s", ErrMalformedValue, value)
	}
	return ROC{value: value}, nil
}

// ParseROC parses a return-of-capital reading such as "42.7"
func ParseROC(value string) (ROC, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return ROC{}, fmt.Errorf("%w: ROC %q: %v", ErrMalformedValue, value, err)
	}
	return NewROC(d)
}

func (r ROC) Value() decimal.Decimal { return r.value }

// Exceeds is true strictly above threshold
func (r ROC) Exceeds(threshold decimal.Decimal) bool {
	return r.value.GreaterThan(threshold)
}

// Within is true from low to high, both inclusive
func (r ROC) Within(low, high decimal.Decimal) bool {
	return r.value.GreaterThanOrEqual(low) && r.value.LessThanOrEqual(high)
}

func (r ROC) String() string { return r.value.String() + "%" }
