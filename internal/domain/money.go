package domain

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const (
	// MoneyScale is the number of fractional digits every Money value is stored at
	MoneyScale int32 = 4

	// RatioScale is the precision of Money ÷ Money ratios
	RatioScale int32 = 10

	displayCurrency = money.USD
)

var hundred = decimal.NewFromInt(100)

// Money is an immutable USD amount held at a fixed scale of 4 fractional digits.
// Every constructing operation rounds half-up (away from zero) to that scale.
// The zero value is $0.
type Money struct {
	amount decimal.Decimal
}

// ZeroMoney is $0
var ZeroMoney = Money{}

// NewMoney creates Money from a decimal amount
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(MoneyScale)}
}

// MoneyFromString parses an amount such as "22.5" or "-3.1416"
func MoneyFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("%w: money amount %q: %v", ErrMalformedValue, amount, err)
	}
	return NewMoney(d), nil
}

// MustMoney is MoneyFromString for literals known to be valid. It panics otherwise.
func MustMoney(amount string) Money {
	m, err := MoneyFromString(amount)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromFloat creates Money from a float using its shortest decimal representation
func MoneyFromFloat(amount float64) Money {
	return NewMoney(decimal.NewFromFloat(amount))
}

// MoneyFromInt creates Money from a whole-dollar amount
func MoneyFromInt(amount int64) Money {
	return NewMoney(decimal.NewFromInt(amount))
}

// Add returns m + other
func (m Money) Add(other Money) Money {
	return NewMoney(m.amount.Add(other.amount))
}

// Sub returns m - other
func (m Money) Sub(other Money) Money {
	return NewMoney(m.amount.Sub(other.amount))
}

// Mul returns m × multiplier
func (m Money) Mul(multiplier int) Money {
	return NewMoney(m.amount.Mul(decimal.NewFromInt(int64(multiplier))))
}

// MulDecimal returns m × multiplier
func (m Money) MulDecimal(multiplier decimal.Decimal) Money {
	return NewMoney(m.amount.Mul(multiplier))
}

// Ratio returns m ÷ divisor as a plain ratio rounded half-up to RatioScale digits.
// It is used for percentages and weights and is deliberately not Money.
func (m Money) Ratio(divisor Money) (decimal.Decimal, error) {
	if divisor.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: %s / %s", ErrDivisionByZero, m, divisor)
	}
	return m.amount.DivRound(divisor.amount, RatioScale), nil
}

// Div returns m ÷ divisor rounded half-up to MoneyScale digits
func (m Money) Div(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, fmt.Errorf("%w: %s / 0", ErrDivisionByZero, m)
	}
	return Money{amount: m.amount.DivRound(divisor, MoneyScale)}, nil
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) GreaterThan(other Money) bool        { return m.amount.GreaterThan(other.amount) }
func (m Money) LessThan(other Money) bool           { return m.amount.LessThan(other.amount) }
func (m Money) GreaterThanOrEqual(other Money) bool { return m.amount.GreaterThanOrEqual(other.amount) }
func (m Money) LessThanOrEqual(other Money) bool    { return m.amount.LessThanOrEqual(other.amount) }

// Cmp compares the underlying amounts (-1, 0, +1)
func (m Money) Cmp(other Money) int { return m.amount.Cmp(other.amount) }

// Equal compares numeric values, independent of trailing zeros
func (m Money) Equal(other Money) bool { return m.amount.Equal(other.amount) }

// Decimal returns the stored amount
func (m Money) Decimal() decimal.Decimal { return m.amount }

// StringFixed returns the plain amount with all 4 fractional digits, e.g. "22.0000".
// This is the persistence and wire representation.
func (m Money) StringFixed() string { return m.amount.StringFixed(MoneyScale) }

// String renders the amount for people, rounded to cents: "$1,350.00".
// Amounts whose cents do not fit in an int64 are printed without grouping.
func (m Money) String() string {
	cents := m.amount.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		if m.amount.IsNegative() {
			return "-$" + m.amount.Abs().StringFixed(2)
		}
		return "$" + m.amount.StringFixed(2)
	}
	return money.New(cents.IntPart(), displayCurrency).Display()
}
