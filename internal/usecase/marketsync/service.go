package marketsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

var now = time.Now

// MarketSyncService pulls fresh market and fund data and stores it as a new reading
type MarketSyncService struct {
	Quotes         domain.QuoteSource
	Funds          domain.FundDataSource
	InstrumentRepo domain.InstrumentRepository
	DividendRepo   domain.DividendRepository

	log zerolog.Logger
}

// NewMarketSyncService creates a new MarketSyncService instance
func NewMarketSyncService(
	quotes domain.QuoteSource,
	funds domain.FundDataSource,
	instrumentRepo domain.InstrumentRepository,
	dividendRepo domain.DividendRepository,
	log zerolog.Logger,
) *MarketSyncService {
	return &MarketSyncService{
		Quotes:         quotes,
		Funds:          funds,
		InstrumentRepo: instrumentRepo,
		DividendRepo:   dividendRepo,
		log:            log.With().Str("component", "market_sync").Logger(),
	}
}

// SyncInstrument records a new reading for symbol. The reading replaces the previous one
// wholesale; the previous reading is only consulted for the leverage baseline.
func (s *MarketSyncService) SyncInstrument(ctx context.Context, symbol string) (*domain.InstrumentReading, error) {
	if !domain.IsSupported(symbol) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedInstrument, symbol)
	}

	snapshot, err := s.Quotes.FetchSnapshot(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	indicators, err := s.Funds.FetchIndicators(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fund data for %s: %w", symbol, err)
	}

	if !indicators.Premium.IsPresent() {
		indicators.Premium = snapshot.PremiumPercent()
	}

	if err := s.fillPreviousLeverage(ctx, symbol, &indicators); err != nil {
		return nil, err
	}

	dividend, err := s.syncDividend(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if !indicators.LastDistribution.IsPresent() && dividend != nil {
		indicators.LastDistribution = domain.Some(dividend.AmountPerShare)
	}

	reading := &domain.InstrumentReading{
		Snapshot:   snapshot,
		Indicators: indicators,
		RecordedAt: now(),
	}
	if err := s.InstrumentRepo.AddReading(ctx, reading); err != nil {
		return nil, fmt.Errorf("failed to store reading for %s: %w", symbol, err)
	}

	s.log.Info().
		Str("symbol", symbol).
		Str("price", snapshot.Price.StringFixed()).
		Str("nav", snapshot.NAV.StringFixed()).
		Msg("Reading stored")

	return reading, nil
}

// SyncAll syncs every supported instrument. A failing instrument does not stop the others;
// all failures are returned joined.
func (s *MarketSyncService) SyncAll(ctx context.Context) (int, error) {
	synced := 0
	var errs []error

	for _, symbol := range domain.SupportedSymbols() {
		if _, err := s.SyncInstrument(ctx, symbol); err != nil {
			s.log.Error().Err(err).Str("symbol", symbol).Msg("Sync failed")
			errs = append(errs, err)
			continue
		}
		synced++
	}

	return synced, errors.Join(errs...)
}

// fillPreviousLeverage uses the last stored leverage as the baseline when the source
// reports only the current value
func (s *MarketSyncService) fillPreviousLeverage(ctx context.Context, symbol string, indicators *domain.Indicators) error {
	leverage, ok := indicators.Leverage.Get()
	if !ok || leverage.Previous().IsPresent() {
		return nil
	}

	last, err := s.InstrumentRepo.GetLatestReading(ctx, symbol)
	if errors.Is(err, domain.ErrInstrumentNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load previous reading for %s: %w", symbol, err)
	}

	if prev, ok := last.Indicators.Leverage.Get(); ok {
		indicators.Leverage = domain.Some(leverage.WithPrevious(prev.Current()))
	}
	return nil
}

// syncDividend stores the source's latest distribution when it is newer than the stored one
// and returns it
func (s *MarketSyncService) syncDividend(ctx context.Context, symbol string) (*domain.Dividend, error) {
	dividend, err := s.Funds.FetchLatestDividend(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dividend for %s: %w", symbol, err)
	}
	if dividend == nil {
		return nil, nil
	}

	stored, err := s.DividendRepo.GetLatest(ctx, symbol)
	switch {
	case errors.Is(err, domain.ErrInstrumentNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load stored dividend for %s: %w", symbol, err)
	case !stored.ExDate.Before(dividend.ExDate):
		return dividend, nil
	}

	if err := s.DividendRepo.Save(ctx, dividend); err != nil {
		return nil, fmt.Errorf("failed to store dividend for %s: %w", symbol, err)
	}
	s.log.Info().
		Str("symbol", symbol).
		Str("ex_date", dividend.ExDate.Format(time.DateOnly)).
		Str("amount", dividend.AmountPerShare.StringFixed()).
		Msg("Dividend stored")

	return dividend, nil
}
