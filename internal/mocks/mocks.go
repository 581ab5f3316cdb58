// Package mocks holds testify mocks of the domain collaborator interfaces, shared by the
// usecase and adapter tests.
package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// UserRepository is a mock implementation of domain.UserRepository
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) GetByChatID(ctx context.Context, chatID domain.TelegramChatID) (*domain.User, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) ExistsByChatID(ctx context.Context, chatID domain.TelegramChatID) (bool, error) {
	args := m.Called(ctx, chatID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) ListHolding(ctx context.Context, symbol string) ([]*domain.User, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// DividendRepository is a mock implementation of domain.DividendRepository
type DividendRepository struct {
	mock.Mock
}

func (m *DividendRepository) Save(ctx context.Context, dividend *domain.Dividend) error {
	args := m.Called(ctx, dividend)
	return args.Error(0)
}

func (m *DividendRepository) GetLatest(ctx context.Context, symbol string) (*domain.Dividend, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dividend), args.Error(1)
}

func (m *DividendRepository) ListByDateRange(ctx context.Context, symbol string, from, to time.Time) ([]*domain.Dividend, error) {
	args := m.Called(ctx, symbol, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Dividend), args.Error(1)
}

func (m *DividendRepository) ListByPaymentDate(ctx context.Context, date time.Time) ([]*domain.Dividend, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Dividend), args.Error(1)
}

// InstrumentRepository is a mock implementation of domain.InstrumentRepository
type InstrumentRepository struct {
	mock.Mock
}

func (m *InstrumentRepository) SaveMetadata(ctx context.Context, metadata domain.InstrumentMetadata) error {
	args := m.Called(ctx, metadata)
	return args.Error(0)
}

func (m *InstrumentRepository) GetMetadata(ctx context.Context, symbol string) (*domain.InstrumentMetadata, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstrumentMetadata), args.Error(1)
}

func (m *InstrumentRepository) AddReading(ctx context.Context, reading *domain.InstrumentReading) error {
	args := m.Called(ctx, reading)
	return args.Error(0)
}

func (m *InstrumentRepository) GetLatestReading(ctx context.Context, symbol string) (*domain.InstrumentReading, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InstrumentReading), args.Error(1)
}

// QuoteSource is a mock implementation of domain.QuoteSource
type QuoteSource struct {
	mock.Mock
}

func (m *QuoteSource) FetchSnapshot(ctx context.Context, symbol string) (domain.Snapshot, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(domain.Snapshot), args.Error(1)
}

// FundDataSource is a mock implementation of domain.FundDataSource
type FundDataSource struct {
	mock.Mock
}

func (m *FundDataSource) FetchIndicators(ctx context.Context, symbol string) (domain.Indicators, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(domain.Indicators), args.Error(1)
}

func (m *FundDataSource) FetchLatestDividend(ctx context.Context, symbol string) (*domain.Dividend, error) {
	args := m.Called(ctx, symbol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dividend), args.Error(1)
}

// NotificationSender is a mock implementation of domain.NotificationSender
type NotificationSender struct {
	mock.Mock
}

func (m *NotificationSender) Send(ctx context.Context, message *domain.NotificationMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *NotificationSender) Available() bool {
	args := m.Called()
	return args.Bool(0)
}
