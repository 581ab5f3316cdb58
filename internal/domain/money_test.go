package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoney_RoundsHalfUpToFourDigits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "Exact value is padded", input: "22", want: "22.0000"},
		{name: "Half rounds up", input: "1.23455", want: "1.2346"},
		{name: "Below half rounds down", input: "1.23454", want: "1.2345"},
		{name: "Negative half rounds away from zero", input: "-1.23455", want: "-1.2346"},
		{name: "Tiny value rounds to zero", input: "0.00004", want: "0.0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := MoneyFromString(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.StringFixed())
		})
	}
}

func TestMoneyFromString_Malformed(t *testing.T) {
	_, err := MoneyFromString("twelve dollars")

	assert.ErrorIs(t, err, ErrMalformedValue)
}

func TestMoney_Constructors(t *testing.T) {
	assert.Equal(t, "0.1000", MoneyFromFloat(0.1).StringFixed())
	assert.Equal(t, "15.0000", MoneyFromInt(15).StringFixed())
	assert.Equal(t, "3.1416", NewMoney(decimal.RequireFromString("3.14159")).StringFixed())
	assert.True(t, ZeroMoney.IsZero())
}

func TestMoney_EqualIgnoresTrailingZeros(t *testing.T) {
	assert.True(t, MustMoney("2.5").Equal(MustMoney("2.50000")))
	assert.True(t, MustMoney("2.5").Equal(MoneyFromFloat(2.5)))
	assert.False(t, MustMoney("2.5").Equal(MustMoney("2.5001")))
}

func TestMoney_Arithmetic(t *testing.T) {
	a := MustMoney("10.25")
	b := MustMoney("0.75")

	assert.Equal(t, "11.0000", a.Add(b).StringFixed())
	assert.Equal(t, "9.5000", a.Sub(b).StringFixed())
	assert.Equal(t, "-9.5000", b.Sub(a).StringFixed())
	assert.Equal(t, "30.7500", a.Mul(3).StringFixed())
	assert.Equal(t, "1.0250", a.MulDecimal(decimal.RequireFromString("0.1")).StringFixed())

	// operands are never mutated
	assert.Equal(t, "10.2500", a.StringFixed())
}

func TestMoney_Div(t *testing.T) {
	got, err := MustMoney("20").Div(decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "6.6667", got.StringFixed())

	got, err = MustMoney("10").Div(decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "3.3333", got.StringFixed())
}

func TestMoney_RatioUsesTenDigits(t *testing.T) {
	got, err := MustMoney("1").Ratio(MustMoney("3"))
	require.NoError(t, err)
	assert.Equal(t, "0.3333333333", got.String())

	got, err = MustMoney("2").Ratio(MustMoney("3"))
	require.NoError(t, err)
	assert.Equal(t, "0.6666666667", got.String())
}

func TestMoney_DivisionByZero(t *testing.T) {
	_, err := MoneyFromFloat(0.1).Ratio(MoneyFromFloat(0))
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, err = MoneyFromFloat(0.1).Div(decimal.Zero)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestMoney_SignAndComparison(t *testing.T) {
	small := MustMoney("1.00")
	large := MustMoney("2.00")

	assert.True(t, small.IsPositive())
	assert.True(t, MustMoney("-1").IsNegative())
	assert.True(t, MustMoney("0.0000").IsZero())

	assert.True(t, large.GreaterThan(small))
	assert.True(t, small.LessThan(large))
	assert.True(t, small.GreaterThanOrEqual(MustMoney("1")))
	assert.True(t, small.LessThanOrEqual(MustMoney("1")))
	assert.False(t, small.GreaterThan(MustMoney("1")))
	assert.Equal(t, -1, small.Cmp(large))
	assert.Equal(t, 0, small.Cmp(MustMoney("1.0")))
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{name: "Grouped thousands", amount: "1350", want: "$1,350.00"},
		{name: "Rounds down to cents", amount: "0.1834", want: "$0.18"},
		{name: "Rounds half up to cents", amount: "0.185", want: "$0.19"},
		{name: "Beyond int64 cents", amount: "100000000000000000", want: "$100000000000000000.00"},
		{name: "Negative beyond int64 cents", amount: "-100000000000000000.005", want: "-$100000000000000000.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MustMoney(tt.amount).String())
		})
	}
}
