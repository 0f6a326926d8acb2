package business_test

import (
	"testing"

	"github.com/numera/numera-api/internal/types/business"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := business.NewMoney(23800, "EUR")
	require.NoError(t, err)
	assert.Equal(t, int64(23800), m.AmountCents)
	assert.Equal(t, "EUR", m.Currency)

	_, err = business.NewMoney(100, "XXX")
	var unknown *business.UnknownJurisdictionError
	assert.ErrorAs(t, err, &unknown)
}

func TestMoney_AddSubtract(t *testing.T) {
	a, _ := business.NewMoney(10000, "EUR")
	b, _ := business.NewMoney(1900, "EUR")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(11900), sum.AmountCents)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(8100), diff.AmountCents)

	usd, _ := business.NewMoney(100, "USD")
	_, err = a.Add(usd)
	var mismatch *business.CurrencyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "EUR", mismatch.Left)
	assert.Equal(t, "USD", mismatch.Right)

	_, err = a.Subtract(usd)
	assert.ErrorAs(t, err, &mismatch)
}

func TestMoney_PercentageOf(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		rateBps  int64
		expected int64
	}{
		{name: "19 percent of 200.00", cents: 20000, rateBps: 1900, expected: 3800},
		{name: "19 percent of 0.10", cents: 10, rateBps: 1900, expected: 2},
		{name: "zero rate", cents: 20000, rateBps: 0, expected: 0},
		{name: "zero amount", cents: 0, rateBps: 1900, expected: 0},
		// 0.25 * 5% = 0.0125, half to even rounds down to 0.01
		{name: "half rounds to even down", cents: 25, rateBps: 500, expected: 1},
		// 0.75 * 5% = 0.0375, half to even rounds up to 0.04
		{name: "half rounds to even up", cents: 75, rateBps: 500, expected: 4},
		{name: "negative amount", cents: -20000, rateBps: 1900, expected: -3800},
		// -0.25 * 5% = -0.0125, rounds toward even, -0.01
		{name: "negative half to even", cents: -25, rateBps: 500, expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := business.NewMoney(tt.cents, "EUR")
			require.NoError(t, err)
			got := m.PercentageOf(tt.rateBps).RoundToMinorUnit()
			assert.Equal(t, tt.expected, got.AmountCents)
			assert.Equal(t, "EUR", got.Currency)
		})
	}
}

func TestMoney_MultiplyByQuantity(t *testing.T) {
	m, _ := business.NewMoney(999, "EUR")
	assert.Equal(t, int64(2997), m.MultiplyByQuantity(3).AmountCents)
}

func TestMoney_DecimalString(t *testing.T) {
	tests := []struct {
		cents    int64
		expected string
	}{
		{23800, "238.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-150, "-1.50"},
		{100099, "1000.99"},
	}
	for _, tt := range tests {
		m := business.Money{AmountCents: tt.cents, Currency: "EUR"}
		assert.Equal(t, tt.expected, m.DecimalString())
	}
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
		wantErr  bool
	}{
		{name: "two decimals", input: "238.00", expected: 23800},
		{name: "one decimal", input: "0.1", expected: 10},
		{name: "no decimals", input: "7", expected: 700},
		{name: "negative", input: "-0.10", expected: -10},
		{name: "too many decimals", input: "1.005", wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := business.ParseMoney(tt.input, "EUR")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.AmountCents)
		})
	}

	_, err := business.ParseMoney("1.00", "XXX")
	assert.Error(t, err)
}

func TestParseMoney_RoundTrip(t *testing.T) {
	m, err := business.ParseMoney("1234.56", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", m.DecimalString())
}
