package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot_Validation(t *testing.T) {
	_, err := NewSnapshot("", MustMoney("1"), MustMoney("1"), readingDate)
	assert.ErrorIs(t, err, ErrMalformedValue)

	_, err = NewSnapshot("GOF", MustMoney("1"), MustMoney("1"), time.Time{})
	assert.ErrorIs(t, err, ErrMalformedValue)
}

func TestSnapshot_Premium(t *testing.T) {
	tests := []struct {
		name         string
		price        string
		nav          string
		wantPremium  bool
		wantDiscount bool
		wantPercent  string
	}{
		{name: "Premium", price: "6.20", nav: "5.00", wantPremium: true, wantPercent: "24.00"},
		{name: "Discount", price: "4.50", nav: "5.00", wantDiscount: true, wantPercent: "-10.00"},
		{name: "At NAV", price: "5.00", nav: "5.00", wantPercent: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSnapshot("GOF", MustMoney(tt.price), MustMoney(tt.nav), readingDate)
			require.NoError(t, err)

			assert.Equal(t, tt.wantPremium, s.IsTradingAtPremium())
			assert.Equal(t, tt.wantDiscount, s.IsTradingAtDiscount())

			p, ok := s.PremiumPercent().Get()
			require.True(t, ok)
			assert.Equal(t, tt.wantPercent, p.Value().StringFixed(2))
		})
	}
}

func TestSnapshot_PremiumAbsentWithoutNAV(t *testing.T) {
	s, err := NewSnapshot("QQQI", MustMoney("52.10"), ZeroMoney, readingDate)
	require.NoError(t, err)

	assert.False(t, s.PremiumPercent().IsPresent())
}

func TestYield(t *testing.T) {
	s, err := NewSnapshot("QQQI", MustMoney("50"), MustMoney("50"), readingDate)
	require.NoError(t, err)
	assert.Equal(t, "14.40", Yield(s, MustMoney("7.20")).StringFixed(2))

	s.Price = ZeroMoney
	assert.True(t, Yield(s, MustMoney("7.20")).IsZero())
}

func TestParseInstrumentType(t *testing.T) {
	got, err := ParseInstrumentType(" covered_call ")
	require.NoError(t, err)
	assert.Equal(t, InstrumentTypeCoveredCall, got)
	assert.Equal(t, "Covered call", got.DisplayName())
	assert.NotEmpty(t, got.Description())

	_, err = ParseInstrumentType("CRYPTO")
	assert.ErrorIs(t, err, ErrMalformedValue)
}
