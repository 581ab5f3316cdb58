//go:build integration

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDB *DB

// TestMain connects to the database named by DB_CONN_STR and applies the schema
func TestMain(m *testing.M) {
	connStr := os.Getenv("DB_CONN_STR")
	if connStr == "" {
		connStr = "host=localhost port=5432 user=postgres password=postgres dbname=etfguard_test sslmode=disable"
	}

	var err error
	testDB, err = NewDB(connStr)
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	if err := testDB.Migrate(context.Background()); err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}

	code := m.Run()
	testDB.Close()
	os.Exit(code)
}

func uniqueChatID() domain.TelegramChatID {
	return domain.TelegramChatID(time.Now().UnixNano())
}

func TestUserRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testDB)

	user := domain.RegisterUser(uniqueChatID(), "integration")
	require.NoError(t, user.AddPosition(domain.SymbolGOF, 10, domain.MustMoney("20")))
	require.NoError(t, user.AddToPosition(domain.SymbolGOF, 10, domain.MustMoney("24.3333")))
	require.NoError(t, user.AddPosition(domain.SymbolQQQI, 5, domain.MustMoney("51.10")))
	require.NoError(t, repo.Save(ctx, user))

	loaded, err := repo.GetByChatID(ctx, user.TelegramChatID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)
	assert.Equal(t, 2, loaded.Portfolio.Len())

	gof, err := loaded.Portfolio.Position(domain.SymbolGOF)
	require.NoError(t, err)
	assert.Equal(t, 20, gof.Quantity())
	// the stored average is reloaded as is
	want, _ := user.Portfolio.Position(domain.SymbolGOF)
	assert.Equal(t, want.AveragePrice().StringFixed(), gof.AveragePrice().StringFixed())

	// removing a position and saving drops its row
	require.NoError(t, loaded.RemovePosition(domain.SymbolQQQI))
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{domain.SymbolGOF}, reloaded.Portfolio.Symbols())

	holders, err := repo.ListHolding(ctx, domain.SymbolGOF)
	require.NoError(t, err)
	found := false
	for _, h := range holders {
		if h.ID == user.ID {
			found = true
		}
	}
	assert.True(t, found)

	exists, err := repo.ExistsByChatID(ctx, user.TelegramChatID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_NotFound(t *testing.T) {
	_, err := NewUserRepository(testDB).GetByChatID(context.Background(), uniqueChatID())

	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestInstrumentRepository_LatestReading(t *testing.T) {
	ctx := context.Background()
	repo := NewInstrumentRepository(testDB)

	metadata, err := domain.CatalogMetadata(domain.SymbolGOF)
	require.NoError(t, err)
	require.NoError(t, repo.SaveMetadata(ctx, metadata))

	stored, err := repo.GetMetadata(ctx, domain.SymbolGOF)
	require.NoError(t, err)
	assert.Equal(t, metadata.Types, stored.Types)

	snapshot, err := domain.NewSnapshot(domain.SymbolGOF, domain.MustMoney("6.20"), domain.MustMoney("5.00"), time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	lev, err := domain.ParseLeverage("33", "30")
	require.NoError(t, err)

	older := &domain.InstrumentReading{Snapshot: snapshot, RecordedAt: time.Now().Add(-time.Hour)}
	newer := &domain.InstrumentReading{
		Snapshot: snapshot,
		Indicators: domain.Indicators{
			Premium:  domain.Some(domain.NewPremium(decimal.NewFromInt(24))),
			Leverage: domain.Some(lev),
		},
		RecordedAt: time.Now(),
	}
	require.NoError(t, repo.AddReading(ctx, older))
	require.NoError(t, repo.AddReading(ctx, newer))

	latest, err := repo.GetLatestReading(ctx, domain.SymbolGOF)
	require.NoError(t, err)
	assert.True(t, latest.Indicators.Leverage.IsPresent())
	assert.False(t, latest.Indicators.ROC.IsPresent())
	assert.Equal(t, "6.2000", latest.Snapshot.Price.StringFixed())
}

func TestDividendRepository_Latest(t *testing.T) {
	ctx := context.Background()
	repo := NewDividendRepository(testDB)

	roc, err := domain.ParseROC("92")
	require.NoError(t, err)
	exDate := time.Date(2099, 1, 15, 0, 0, 0, 0, time.UTC)
	dividend, err := domain.NewDividend(domain.SymbolQQQI, exDate, exDate.AddDate(0, 0, 13), domain.MustMoney("0.6012"), domain.Some(roc))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, dividend))

	latest, err := repo.GetLatest(ctx, domain.SymbolQQQI)
	require.NoError(t, err)
	assert.Equal(t, "0.6012", latest.AmountPerShare.StringFixed())
	assert.True(t, latest.HasROC())

	paid, err := repo.ListByPaymentDate(ctx, exDate.AddDate(0, 0, 13))
	require.NoError(t, err)
	assert.NotEmpty(t, paid)
}
