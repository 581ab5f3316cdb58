package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/simaogato/etfguard-backend/internal/domain"
)

// RiskService runs the instrument analyzers over stored readings
type RiskService struct {
	InstrumentRepo domain.InstrumentRepository
	UserRepo       domain.UserRepository
}

// NewRiskService creates a new RiskService instance
func NewRiskService(instrumentRepo domain.InstrumentRepository, userRepo domain.UserRepository) *RiskService {
	return &RiskService{
		InstrumentRepo: instrumentRepo,
		UserRepo:       userRepo,
	}
}

// AnalyzeInstrument classifies an instrument from its latest stored reading
func (s *RiskService) AnalyzeInstrument(ctx context.Context, symbol string) (domain.RiskMetrics, error) {
	if !domain.IsSupported(symbol) {
		return domain.RiskMetrics{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedInstrument, symbol)
	}

	reading, err := s.InstrumentRepo.GetLatestReading(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrInstrumentNotFound) {
			return domain.RiskMetrics{}, fmt.Errorf("no reading stored for %s: %w", symbol, err)
		}
		return domain.RiskMetrics{}, fmt.Errorf("failed to load latest reading for %s: %w", symbol, err)
	}

	analyzer, err := domain.NewAnalyzer(*reading)
	if err != nil {
		return domain.RiskMetrics{}, err
	}

	return analyzer.Analyze(), nil
}

// AnalyzePortfolio folds the risk of every instrument the user holds into one result
// whose subject is PORTFOLIO_<userID>
func (s *RiskService) AnalyzePortfolio(ctx context.Context, userID uuid.UUID) (domain.RiskMetrics, error) {
	user, err := s.UserRepo.GetByID(ctx, userID)
	if err != nil {
		return domain.RiskMetrics{}, err
	}

	return domain.AnalyzePortfolioRisk(domain.PortfolioSubject(user.ID), user.Portfolio,
		func(symbol string) (domain.RiskMetrics, error) {
			return s.AnalyzeInstrument(ctx, symbol)
		})
}

// AnalyzeAll classifies every supported instrument, in catalog order
func (s *RiskService) AnalyzeAll(ctx context.Context) ([]domain.RiskMetrics, error) {
	var results []domain.RiskMetrics
	for _, symbol := range domain.SupportedSymbols() {
		metrics, err := s.AnalyzeInstrument(ctx, symbol)
		if err != nil {
			return nil, err
		}
		results = append(results, metrics)
	}
	return results, nil
}
