package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// now is swapped in tests that assert timestamps
var now = time.Now

// MaxQuantity is the largest number of units one position can hold. It matches the INTEGER quantity column.
const MaxQuantity = math.MaxInt32

// Position is one holding of one instrument: a quantity and its weighted-average cost.
// Quantity and average price are only changed through AddQuantity and ReduceQuantity.
type Position struct {
	ID        uuid.UUID
	Symbol    string
	CreatedAt time.Time
	UpdatedAt time.Time

	quantity     int
	averagePrice Money
}

// NewPosition opens a fresh position. quantity and averagePrice must be positive
// and quantity may not exceed MaxQuantity.
func NewPosition(symbol string, quantity int, averagePrice Money) (*Position, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidQuantity, quantity)
	}
	if quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity %d exceeds the limit of %d", ErrInvalidQuantity, quantity, MaxQuantity)
	}
	if !averagePrice.IsPositive() {
		return nil, fmt.Errorf("%w: average price must be positive, got %s", ErrMalformedValue, averagePrice.StringFixed())
	}

	ts := now()
	return &Position{
		ID:           uuid.New(),
		Symbol:       symbol,
		CreatedAt:    ts,
		UpdatedAt:    ts,
		quantity:     quantity,
		averagePrice: averagePrice,
	}, nil
}

// ReconstitutePosition rebuilds a stored position with its existing identity,
// timestamps and average price. Nothing is re-derived.
func ReconstitutePosition(id uuid.UUID, symbol string, quantity int, averagePrice Money, createdAt, updatedAt time.Time) (*Position, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: stored position %s has quantity %d", ErrInvalidQuantity, symbol, quantity)
	}
	if quantity > MaxQuantity {
		return nil, fmt.Errorf("%w: stored position %s has quantity %d above the limit", ErrInvalidQuantity, symbol, quantity)
	}
	if !averagePrice.IsPositive() {
		return nil, fmt.Errorf("%w: stored position %s has average price %s", ErrMalformedValue, symbol, averagePrice.StringFixed())
	}

	return &Position{
		ID:           id,
		Symbol:       symbol,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
		quantity:     quantity,
		averagePrice: averagePrice,
	}, nil
}

// Quantity returns the number of units held
func (p *Position) Quantity() int { return p.quantity }

// AveragePrice returns the weighted-average cost per unit
func (p *Position) AveragePrice() Money { return p.averagePrice }

// AddQuantity buys more units and recomputes the weighted-average cost:
//
//	(average × quantity + price × delta) ÷ (quantity + delta)
//
// with the division rounded half-up to the Money scale.
func (p *Position) AddQuantity(delta int, price Money) error {
	if delta <= 0 {
		return fmt.Errorf("%w: additional quantity must be positive, got %d", ErrInvalidQuantity, delta)
	}
	if delta > MaxQuantity-p.quantity {
		return fmt.Errorf("%w: adding %d to %d units of %s exceeds the limit of %d", ErrInvalidQuantity, delta, p.quantity, p.Symbol, MaxQuantity)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: purchase price must be positive, got %s", ErrMalformedValue, price.StringFixed())
	}

	totalCost := p.averagePrice.Mul(p.quantity).Add(price.Mul(delta))
	newQuantity := p.quantity + delta

	average, err := totalCost.Div(decimal.NewFromInt(int64(newQuantity)))
	if err != nil {
		return err
	}

	p.quantity = newQuantity
	p.averagePrice = average
	p.UpdatedAt = now()
	return nil
}

// ReduceQuantity sells units. The average cost is left untouched.
// Reducing to zero is legal; removing the empty position is the portfolio's job.
func (p *Position) ReduceQuantity(delta int) error {
	if delta <= 0 {
		return fmt.Errorf("%w: quantity to sell must be positive, got %d", ErrInvalidQuantity, delta)
	}
	if delta > p.quantity {
		return fmt.Errorf("%w: cannot sell %d of %s, holding %d", ErrInsufficientQuantity, delta, p.Symbol, p.quantity)
	}

	p.quantity -= delta
	p.UpdatedAt = now()
	return nil
}

// Value returns currentPrice × quantity
func (p *Position) Value(currentPrice Money) Money {
	return currentPrice.Mul(p.quantity)
}

// CostBasis returns averagePrice × quantity
func (p *Position) CostBasis() Money {
	return p.averagePrice.Mul(p.quantity)
}

// ProfitLossRate returns (currentPrice − average) ÷ average × 100, rounded to 2 places
func (p *Position) ProfitLossRate(currentPrice Money) (decimal.Decimal, error) {
	ratio, err := currentPrice.Sub(p.averagePrice).Ratio(p.averagePrice)
	if err != nil {
		return decimal.Zero, err
	}
	return ratio.Mul(hundred).Round(2), nil
}

// ExpectedDividend returns perShare × quantity
func (p *Position) ExpectedDividend(perShare Money) Money {
	return perShare.Mul(p.quantity)
}
