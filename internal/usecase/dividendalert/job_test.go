package dividendalert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/simaogato/etfguard-backend/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNotifier is a mock implementation of Notifier for testing
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendDividendNotification(ctx context.Context, userID uuid.UUID, symbol string) error {
	args := m.Called(ctx, userID, symbol)
	return args.Error(0)
}

func (m *MockNotifier) SendRiskAlert(ctx context.Context, userID uuid.UUID, symbol string) error {
	args := m.Called(ctx, userID, symbol)
	return args.Error(0)
}

func newJob(enabled bool) (*DividendJob, *mocks.UserRepository, *MockNotifier) {
	userRepo := new(mocks.UserRepository)
	notifier := new(MockNotifier)
	job := NewDividendJob(userRepo, notifier, enabled, time.UTC, zerolog.New(nil).Level(zerolog.Disabled))
	return job, userRepo, notifier
}

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	prev := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = prev })
}

func holders(n int) []*domain.User {
	users := make([]*domain.User, n)
	for i := range users {
		users[i] = domain.RegisterUser(domain.TelegramChatID(100+i), "holder")
	}
	return users
}

func TestIsPaymentDay(t *testing.T) {
	tests := []struct {
		name   string
		symbol string
		date   time.Time
		want   bool
	}{
		{name: "GOF on the 31st", symbol: domain.SymbolGOF, date: time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC), want: true},
		{name: "GOF on the 30th of a 31-day month", symbol: domain.SymbolGOF, date: time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC), want: false},
		{name: "GOF on the last day of a 30-day month", symbol: domain.SymbolGOF, date: time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC), want: true},
		{name: "GOF on the last day of February", symbol: domain.SymbolGOF, date: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), want: true},
		{name: "QQQI on the 28th", symbol: domain.SymbolQQQI, date: time.Date(2026, 10, 28, 0, 0, 0, 0, time.UTC), want: true},
		{name: "QQQI on the last day of the month", symbol: domain.SymbolQQQI, date: time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC), want: true},
		{name: "QQQI on the 29th of a leap February", symbol: domain.SymbolQQQI, date: time.Date(2028, 2, 29, 0, 0, 0, 0, time.UTC), want: true},
		{name: "QQQI mid month", symbol: domain.SymbolQQQI, date: time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsPaymentDay(tt.symbol, tt.date)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsPaymentDay_UnsupportedSymbol(t *testing.T) {
	_, err := IsPaymentDay("SPY", time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC))

	assert.ErrorIs(t, err, domain.ErrUnsupportedInstrument)
}

func TestRun_NotifiesHoldersOnPaymentDay(t *testing.T) {
	ctx := context.Background()
	// the 28th is QQQI's payment day only
	freezeClock(t, time.Date(2026, 10, 28, 18, 0, 0, 0, time.UTC))
	job, userRepo, notifier := newJob(true)

	users := holders(2)
	userRepo.On("ListHolding", ctx, domain.SymbolQQQI).Return(users, nil)
	notifier.On("SendDividendNotification", ctx, mock.Anything, domain.SymbolQQQI).Return(nil)
	notifier.On("SendRiskAlert", ctx, mock.Anything, domain.SymbolQQQI).Return(nil)

	err := job.Run(ctx)

	require.NoError(t, err)
	notifier.AssertNumberOfCalls(t, "SendDividendNotification", 2)
	notifier.AssertNumberOfCalls(t, "SendRiskAlert", 2)
	userRepo.AssertNotCalled(t, "ListHolding", mock.Anything, domain.SymbolGOF)
}

func TestRun_OutsidePaymentDays(t *testing.T) {
	freezeClock(t, time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC))
	job, userRepo, _ := newJob(true)

	require.NoError(t, job.Run(context.Background()))

	userRepo.AssertNotCalled(t, "ListHolding", mock.Anything, mock.Anything)
}

func TestRun_EvaluatesDateInZone(t *testing.T) {
	ctx := context.Background()
	// 2026-10-30 20:00 UTC is already the 31st in Seoul
	freezeClock(t, time.Date(2026, 10, 30, 20, 0, 0, 0, time.UTC))

	userRepo := new(mocks.UserRepository)
	job := NewDividendJob(userRepo, new(MockNotifier), true, time.FixedZone("KST", 9*60*60), zerolog.New(nil).Level(zerolog.Disabled))
	userRepo.On("ListHolding", ctx, mock.Anything).Return([]*domain.User{}, nil)

	require.NoError(t, job.Run(ctx))

	userRepo.AssertCalled(t, "ListHolding", ctx, domain.SymbolGOF)
	userRepo.AssertCalled(t, "ListHolding", ctx, domain.SymbolQQQI)
}

func TestRun_Disabled(t *testing.T) {
	freezeClock(t, time.Date(2026, 10, 31, 18, 0, 0, 0, time.UTC))
	job, userRepo, _ := newJob(false)

	require.NoError(t, job.Run(context.Background()))

	userRepo.AssertNotCalled(t, "ListHolding", mock.Anything, mock.Anything)
}

func TestTriggerSymbol_SkipsFailingUsers(t *testing.T) {
	ctx := context.Background()
	job, userRepo, notifier := newJob(false)

	users := holders(3)
	userRepo.On("ListHolding", ctx, domain.SymbolGOF).Return(users, nil)
	notifier.On("SendDividendNotification", ctx, users[0].ID, domain.SymbolGOF).Return(nil)
	notifier.On("SendDividendNotification", ctx, users[1].ID, domain.SymbolGOF).Return(errors.New("chat not found"))
	notifier.On("SendDividendNotification", ctx, users[2].ID, domain.SymbolGOF).Return(nil)
	notifier.On("SendRiskAlert", ctx, mock.Anything, domain.SymbolGOF).Return(nil)

	notified, err := job.TriggerSymbol(ctx, domain.SymbolGOF)

	require.NoError(t, err)
	assert.Equal(t, 2, notified)
	notifier.AssertNotCalled(t, "SendRiskAlert", ctx, users[1].ID, domain.SymbolGOF)
}

func TestTriggerSymbol_Unsupported(t *testing.T) {
	job, userRepo, _ := newJob(true)

	_, err := job.TriggerSymbol(context.Background(), "JEPI")

	assert.ErrorIs(t, err, domain.ErrUnsupportedInstrument)
	userRepo.AssertNotCalled(t, "ListHolding", mock.Anything, mock.Anything)
}

func TestTriggerAll(t *testing.T) {
	ctx := context.Background()
	job, userRepo, notifier := newJob(true)
	dbErr := errors.New("connection reset")

	userRepo.On("ListHolding", ctx, domain.SymbolGOF).Return(nil, dbErr)
	userRepo.On("ListHolding", ctx, domain.SymbolQQQI).Return(holders(1), nil)
	notifier.On("SendDividendNotification", ctx, mock.Anything, domain.SymbolQQQI).Return(nil)
	notifier.On("SendRiskAlert", ctx, mock.Anything, domain.SymbolQQQI).Return(nil)

	notified, err := job.TriggerAll(ctx)

	assert.Equal(t, 1, notified)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "failed to list holders of GOF")
}

func TestName(t *testing.T) {
	job, _, _ := newJob(true)
	assert.Equal(t, "dividend_alert", job.Name())
}
