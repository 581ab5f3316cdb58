package portfolio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

// PositionValuation is one position priced at its latest stored quote
type PositionValuation struct {
	Symbol         string
	Quantity       int
	AveragePrice   domain.Money
	CurrentPrice   domain.Money
	Value          domain.Money
	CostBasis      domain.Money
	ProfitLossRate decimal.Decimal
	Weight         decimal.Decimal
}

// ValuationResult represents a priced portfolio
type ValuationResult struct {
	UserID     uuid.UUID
	TotalValue domain.Money
	CostBasis  domain.Money
	Positions  []PositionValuation
	PricedAt   time.Time
}

// PortfolioService handles position management and valuation for a user
type PortfolioService struct {
	UserRepo       domain.UserRepository
	InstrumentRepo domain.InstrumentRepository

	locks ownerLocks
}

// NewPortfolioService creates a new PortfolioService instance
func NewPortfolioService(userRepo domain.UserRepository, instrumentRepo domain.InstrumentRepository) *PortfolioService {
	return &PortfolioService{
		UserRepo:       userRepo,
		InstrumentRepo: instrumentRepo,
	}
}

// AddPosition opens a new position for a supported instrument
func (s *PortfolioService) AddPosition(ctx context.Context, userID uuid.UUID, symbol string, quantity int, averagePrice domain.Money) (*domain.Position, error) {
	symbol = normalizeSymbol(symbol)
	if !domain.IsSupported(symbol) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedInstrument, symbol)
	}

	return s.mutate(ctx, userID, symbol, func(u *domain.User) error {
		return u.AddPosition(symbol, quantity, averagePrice)
	})
}

// AddToPosition buys more of an existing position, re-averaging its cost
func (s *PortfolioService) AddToPosition(ctx context.Context, userID uuid.UUID, symbol string, quantity int, purchasePrice domain.Money) (*domain.Position, error) {
	symbol = normalizeSymbol(symbol)
	return s.mutate(ctx, userID, symbol, func(u *domain.User) error {
		return u.AddToPosition(symbol, quantity, purchasePrice)
	})
}

// ReducePosition sells part of a position. Selling the whole holding removes the position,
// in which case the returned position is nil.
func (s *PortfolioService) ReducePosition(ctx context.Context, userID uuid.UUID, symbol string, quantity int) (*domain.Position, error) {
	symbol = normalizeSymbol(symbol)
	return s.mutate(ctx, userID, symbol, func(u *domain.User) error {
		return u.ReducePosition(symbol, quantity)
	})
}

// RemovePosition drops a position regardless of its quantity
func (s *PortfolioService) RemovePosition(ctx context.Context, userID uuid.UUID, symbol string) error {
	symbol = normalizeSymbol(symbol)
	_, err := s.mutate(ctx, userID, symbol, func(u *domain.User) error {
		return u.RemovePosition(symbol)
	})
	return err
}

// ListPositions returns the user's positions in insertion order
func (s *PortfolioService) ListPositions(ctx context.Context, userID uuid.UUID) ([]*domain.Position, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Portfolio.Positions(), nil
}

// GetPosition returns the user's position in symbol
func (s *PortfolioService) GetPosition(ctx context.Context, userID uuid.UUID, symbol string) (*domain.Position, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Portfolio.Position(normalizeSymbol(symbol))
}

// Valuation prices every position with the latest stored snapshot of its instrument.
// A held instrument without any stored reading fails with ErrMissingPrice.
func (s *PortfolioService) Valuation(ctx context.Context, userID uuid.UUID) (*ValuationResult, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prices, pricedAt, err := s.latestPrices(ctx, user.Portfolio.Symbols())
	if err != nil {
		return nil, err
	}

	total, err := user.Portfolio.TotalValue(prices)
	if err != nil {
		return nil, err
	}

	result := &ValuationResult{
		UserID:     user.ID,
		TotalValue: total,
		CostBasis:  domain.ZeroMoney,
		PricedAt:   pricedAt,
	}

	for _, pos := range user.Portfolio.Positions() {
		price := prices[pos.Symbol]

		plRate, err := pos.ProfitLossRate(price)
		if err != nil {
			return nil, fmt.Errorf("failed to compute profit/loss for %s: %w", pos.Symbol, err)
		}
		weight, err := user.Portfolio.Weight(pos.Symbol, prices)
		if err != nil {
			return nil, err
		}

		result.CostBasis = result.CostBasis.Add(pos.CostBasis())
		result.Positions = append(result.Positions, PositionValuation{
			Symbol:         pos.Symbol,
			Quantity:       pos.Quantity(),
			AveragePrice:   pos.AveragePrice(),
			CurrentPrice:   price,
			Value:          pos.Value(price),
			CostBasis:      pos.CostBasis(),
			ProfitLossRate: plRate,
			Weight:         weight,
		})
	}

	return result, nil
}

// latestPrices collects the price of each symbol's latest reading. Symbols without a
// reading are left out so that the domain reports them as missing.
func (s *PortfolioService) latestPrices(ctx context.Context, symbols []string) (domain.Prices, time.Time, error) {
	prices := make(domain.Prices, len(symbols))
	var pricedAt time.Time

	for _, symbol := range symbols {
		reading, err := s.InstrumentRepo.GetLatestReading(ctx, symbol)
		if errors.Is(err, domain.ErrInstrumentNotFound) {
			continue
		}
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to load latest reading for %s: %w", symbol, err)
		}
		prices[symbol] = reading.Snapshot.Price
		if reading.Snapshot.AsOf.After(pricedAt) {
			pricedAt = reading.Snapshot.AsOf
		}
	}

	return prices, pricedAt, nil
}

// mutate applies change to the user's portfolio and persists it while holding the owner's lock.
// It returns the position in symbol after the change, or nil when it no longer exists.
func (s *PortfolioService) mutate(ctx context.Context, userID uuid.UUID, symbol string, change func(*domain.User) error) (*domain.Position, error) {
	unlock := s.locks.lock(userID)
	defer unlock()

	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := change(user); err != nil {
		return nil, err
	}

	if err := s.UserRepo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save portfolio: %w", err)
	}

	if !user.HasPosition(symbol) {
		return nil, nil
	}
	return user.Portfolio.Position(symbol)
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ownerLocks serializes read-modify-write cycles per portfolio owner.
// An entry lives only while some caller holds or waits on it.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*ownerLock
}

type ownerLock struct {
	sync.Mutex
	refs int
}

func (l *ownerLocks) lock(owner uuid.UUID) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[uuid.UUID]*ownerLock)
	}
	m, ok := l.locks[owner]
	if !ok {
		m = &ownerLock{}
		l.locks[owner] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()

		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, owner)
		}
		l.mu.Unlock()
	}
}

func (l *ownerLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
