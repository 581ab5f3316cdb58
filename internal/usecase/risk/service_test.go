package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/simaogato/etfguard-backend/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func storedReading(t *testing.T, symbol string, ind domain.Indicators) *domain.InstrumentReading {
	t.Helper()
	asOf := time.Date(2026, 10, 16, 21, 0, 0, 0, time.UTC)
	snap, err := domain.NewSnapshot(symbol, domain.MustMoney("10"), domain.MustMoney("9"), asOf)
	require.NoError(t, err)
	return &domain.InstrumentReading{Snapshot: snap, Indicators: ind, RecordedAt: asOf}
}

func mustROC(t *testing.T, v string) domain.Optional[domain.ROC] {
	t.Helper()
	r, err := domain.ParseROC(v)
	require.NoError(t, err)
	return domain.Some(r)
}

func TestAnalyzeInstrument_GOF(t *testing.T) {
	ctx := context.Background()
	mockInstrumentRepo := new(mocks.InstrumentRepository)
	service := NewRiskService(mockInstrumentRepo, new(mocks.UserRepository))

	lev, err := domain.ParseLeverage("30", "30")
	require.NoError(t, err)
	mockInstrumentRepo.On("GetLatestReading", ctx, domain.SymbolGOF).Return(storedReading(t, domain.SymbolGOF, domain.Indicators{
		Premium:  domain.Some(domain.NewPremium(decimal.NewFromInt(18))),
		Leverage: domain.Some(lev),
		ROC:      mustROC(t, "25"),
	}), nil)

	metrics, err := service.AnalyzeInstrument(ctx, domain.SymbolGOF)

	require.NoError(t, err)
	assert.Equal(t, domain.SymbolGOF, metrics.Subject())
	assert.Equal(t, domain.RiskLevelHigh, metrics.OverallRiskLevel())
	assert.Contains(t, metrics.Factors()[0].Message, "avoid new purchases")
	mockInstrumentRepo.AssertExpectations(t)
}

func TestAnalyzeInstrument_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		symbol    string
		setupMock func(m *mocks.InstrumentRepository)
		wantErr   error
		errSubstr string
	}{
		{
			name:      "Unsupported symbol",
			symbol:    "SPY",
			setupMock: func(m *mocks.InstrumentRepository) {},
			wantErr:   domain.ErrUnsupportedInstrument,
		},
		{
			name:   "No reading stored",
			symbol: domain.SymbolQQQI,
			setupMock: func(m *mocks.InstrumentRepository) {
				m.On("GetLatestReading", ctx, domain.SymbolQQQI).Return(nil, domain.ErrInstrumentNotFound)
			},
			wantErr:   domain.ErrInstrumentNotFound,
			errSubstr: "no reading stored for QQQI",
		},
		{
			name:   "Repository failure",
			symbol: domain.SymbolQQQI,
			setupMock: func(m *mocks.InstrumentRepository) {
				m.On("GetLatestReading", ctx, domain.SymbolQQQI).Return(nil, errors.New("timeout"))
			},
			errSubstr: "failed to load latest reading",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockInstrumentRepo := new(mocks.InstrumentRepository)
			tt.setupMock(mockInstrumentRepo)
			service := NewRiskService(mockInstrumentRepo, new(mocks.UserRepository))

			_, err := service.AnalyzeInstrument(ctx, tt.symbol)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errSubstr != "" {
				assert.Contains(t, err.Error(), tt.errSubstr)
			}
		})
	}
}

func TestAnalyzePortfolio(t *testing.T) {
	ctx := context.Background()
	mockInstrumentRepo := new(mocks.InstrumentRepository)
	mockUserRepo := new(mocks.UserRepository)
	service := NewRiskService(mockInstrumentRepo, mockUserRepo)

	user := domain.RegisterUser(1, "")
	require.NoError(t, user.AddPosition(domain.SymbolGOF, 10, domain.MustMoney("20")))
	require.NoError(t, user.AddPosition(domain.SymbolQQQI, 20, domain.MustMoney("50")))
	mockUserRepo.On("GetByID", ctx, user.ID).Return(user, nil)
	mockInstrumentRepo.On("GetLatestReading", ctx, domain.SymbolGOF).
		Return(storedReading(t, domain.SymbolGOF, domain.Indicators{ROC: mustROC(t, "55")}), nil)
	mockInstrumentRepo.On("GetLatestReading", ctx, domain.SymbolQQQI).
		Return(storedReading(t, domain.SymbolQQQI, domain.Indicators{ROC: mustROC(t, "10")}), nil)

	metrics, err := service.AnalyzePortfolio(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, "PORTFOLIO_"+user.ID.String(), metrics.Subject())
	assert.Equal(t, domain.RiskLevelCritical, metrics.OverallRiskLevel())
	// four GOF factors followed by three QQQI factors
	factors := metrics.Factors()
	require.Len(t, factors, 7)
	assert.Equal(t, "GOF - Premium/Discount", factors[0].Category)
	assert.Equal(t, "QQQI - ROC", factors[4].Category)
}

func TestAnalyzePortfolio_Empty(t *testing.T) {
	ctx := context.Background()
	mockInstrumentRepo := new(mocks.InstrumentRepository)
	mockUserRepo := new(mocks.UserRepository)
	service := NewRiskService(mockInstrumentRepo, mockUserRepo)

	user := domain.RegisterUser(1, "")
	mockUserRepo.On("GetByID", ctx, user.ID).Return(user, nil)

	_, err := service.AnalyzePortfolio(ctx, user.ID)

	assert.ErrorIs(t, err, domain.ErrEmptyPortfolio)
	mockInstrumentRepo.AssertNotCalled(t, "GetLatestReading", mock.Anything, mock.Anything)
}

func TestAnalyzeAll(t *testing.T) {
	ctx := context.Background()
	mockInstrumentRepo := new(mocks.InstrumentRepository)
	service := NewRiskService(mockInstrumentRepo, new(mocks.UserRepository))

	mockInstrumentRepo.On("GetLatestReading", ctx, domain.SymbolGOF).
		Return(storedReading(t, domain.SymbolGOF, domain.Indicators{}), nil)
	mockInstrumentRepo.On("GetLatestReading", ctx, domain.SymbolQQQI).
		Return(storedReading(t, domain.SymbolQQQI, domain.Indicators{}), nil)

	results, err := service.AnalyzeAll(ctx)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, domain.SymbolGOF, results[0].Subject())
	assert.Equal(t, domain.SymbolQQQI, results[1].Subject())
}
