package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Dividend is one announced distribution of an instrument
type Dividend struct {
	ID             uuid.UUID
	Symbol         string
	ExDate         time.Time
	PayDate        time.Time
	AmountPerShare Money
	ROC            Optional[ROC]
}

// NewDividend validates a distribution: pay date on or after ex date, positive amount
func NewDividend(symbol string, exDate, payDate time.Time, amountPerShare Money, roc Optional[ROC]) (*Dividend, error) {
	if exDate.IsZero() {
		return nil, fmt.Errorf("%w: ex-dividend date is required", ErrMalformedValue)
	}
	if payDate.IsZero() {
		return nil, fmt.Errorf("%w: payment date is required", ErrMalformedValue)
	}
	if payDate.Before(exDate) {
		return nil, fmt.Errorf("%w: payment date %s is before ex-dividend date %s",
			ErrMalformedValue, payDate.Format(time.DateOnly), exDate.Format(time.DateOnly))
	}
	if !amountPerShare.IsPositive() {
		return nil, fmt.Errorf("%w: dividend per share must be positive, got %s", ErrMalformedValue, amountPerShare.StringFixed())
	}

	return &Dividend{
		ID:             uuid.New(),
		Symbol:         symbol,
		ExDate:         exDate,
		PayDate:        payDate,
		AmountPerShare: amountPerShare,
		ROC:            roc,
	}, nil
}

// TotalFor returns the amount payable for quantity units
func (d *Dividend) TotalFor(quantity int) (Money, error) {
	if quantity <= 0 {
		return Money{}, fmt.Errorf("%w: held quantity must be positive, got %d", ErrInvalidQuantity, quantity)
	}
	return d.AmountPerShare.Mul(quantity), nil
}

// DistributionsPerYear is the payout frequency of every supported fund (monthly)
const DistributionsPerYear = 12

// Annualized returns the per-share amount paid over a year at this distribution's rate
func (d *Dividend) Annualized() Money {
	return d.AmountPerShare.Mul(DistributionsPerYear)
}

// HasROC reports whether a return-of-capital reading accompanies the distribution
func (d *Dividend) HasROC() bool {
	return d.ROC.IsPresent()
}
