package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Prices maps an instrument symbol to its current price
type Prices map[string]Money

// Portfolio is an owner's positions, at most one per symbol, kept in insertion order.
// It performs no locking; callers serialize mutations per owner.
type Portfolio struct {
	positions []*Position
}

// NewPortfolio returns an empty portfolio
func NewPortfolio() *Portfolio {
	return &Portfolio{}
}

// ReconstitutePortfolio rebuilds a stored portfolio. Duplicate symbols are rejected.
func ReconstitutePortfolio(positions []*Position) (*Portfolio, error) {
	p := &Portfolio{positions: make([]*Position, 0, len(positions))}
	for _, pos := range positions {
		if p.HasPosition(pos.Symbol) {
			return nil, fmt.Errorf("%w: %s stored twice", ErrDuplicatePosition, pos.Symbol)
		}
		p.positions = append(p.positions, pos)
	}
	return p, nil
}

// AddPosition opens a new position. It fails if the symbol is already held.
func (p *Portfolio) AddPosition(symbol string, quantity int, averagePrice Money) error {
	if p.HasPosition(symbol) {
		return fmt.Errorf("%w: already holding %s", ErrDuplicatePosition, symbol)
	}

	pos, err := NewPosition(symbol, quantity, averagePrice)
	if err != nil {
		return err
	}
	p.positions = append(p.positions, pos)
	return nil
}

// AddToPosition buys more of a held symbol
func (p *Portfolio) AddToPosition(symbol string, quantity int, purchasePrice Money) error {
	pos, err := p.Position(symbol)
	if err != nil {
		return err
	}
	return pos.AddQuantity(quantity, purchasePrice)
}

// RemoveFromPosition sells part of a held symbol. A position sold down to exactly
// zero is removed.
func (p *Portfolio) RemoveFromPosition(symbol string, quantity int) error {
	pos, err := p.Position(symbol)
	if err != nil {
		return err
	}
	if err := pos.ReduceQuantity(quantity); err != nil {
		return err
	}

	if pos.Quantity() == 0 {
		p.remove(symbol)
	}
	return nil
}

// RemovePosition drops a held symbol regardless of quantity
func (p *Portfolio) RemovePosition(symbol string) error {
	if !p.remove(symbol) {
		return fmt.Errorf("%w: %s", ErrPositionNotFound, symbol)
	}
	return nil
}

// HasPosition reports whether symbol is held
func (p *Portfolio) HasPosition(symbol string) bool {
	return p.indexOf(symbol) >= 0
}

// Position returns the held position for symbol
func (p *Portfolio) Position(symbol string) (*Position, error) {
	i := p.indexOf(symbol)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, symbol)
	}
	return p.positions[i], nil
}

// Positions returns the held positions in insertion order. The slice is a copy.
func (p *Portfolio) Positions() []*Position {
	out := make([]*Position, len(p.positions))
	copy(out, p.positions)
	return out
}

// Symbols returns the held symbols in insertion order
func (p *Portfolio) Symbols() []string {
	out := make([]string, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, pos.Symbol)
	}
	return out
}

func (p *Portfolio) IsEmpty() bool { return len(p.positions) == 0 }
func (p *Portfolio) Len() int      { return len(p.positions) }

// TotalValue sums every position at its current price.
// Every held symbol must have a price; a missing one is an error, never zero.
func (p *Portfolio) TotalValue(prices Prices) (Money, error) {
	total := ZeroMoney
	for _, pos := range p.positions {
		price, ok := prices[pos.Symbol]
		if !ok {
			return Money{}, fmt.Errorf("%w: %s", ErrMissingPrice, pos.Symbol)
		}
		total = total.Add(pos.Value(price))
	}
	return total, nil
}

// Weight returns the share of symbol in the portfolio's total value, in percent.
// It returns 0 when the total value is 0 instead of dividing by zero.
func (p *Portfolio) Weight(symbol string, prices Prices) (decimal.Decimal, error) {
	total, err := p.TotalValue(prices)
	if err != nil {
		return decimal.Zero, err
	}
	if total.IsZero() {
		return decimal.Zero, nil
	}

	pos, err := p.Position(symbol)
	if err != nil {
		return decimal.Zero, err
	}

	ratio, err := pos.Value(prices[symbol]).Ratio(total)
	if err != nil {
		return decimal.Zero, err
	}
	return ratio.Mul(hundred), nil
}

func (p *Portfolio) indexOf(symbol string) int {
	for i, pos := range p.positions {
		if pos.Symbol == symbol {
			return i
		}
	}
	return -1
}

func (p *Portfolio) remove(symbol string) bool {
	i := p.indexOf(symbol)
	if i < 0 {
		return false
	}
	p.positions = append(p.positions[:i], p.positions[i+1:]...)
	return true
}
