package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	t.Run("known currency", func(t *testing.T) {
		c, ok := Lookup("USD")
		assert.True(t, ok)
		assert.Equal(t, "$", c.Symbol)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		c, ok := Lookup("ngn")
		assert.True(t, ok)
		assert.Equal(t, "NGN", c.Code)
	})

	t.Run("unknown currency", func(t *testing.T) {
		_, ok := Lookup("XXX")
		assert.False(t, ok)
	})
}

func TestForCountry(t *testing.T) {
	code, ok := ForCountry("ng")
	assert.True(t, ok)
	assert.Equal(t, "NGN", code)

	code, ok = ForCountry("DE")
	assert.True(t, ok)
	assert.Equal(t, "EUR", code)

	_, ok = ForCountry("JP")
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		want   string
	}{
		{"thousands grouping", 1234.5, "USD", "$1,234.50"},
		{"small amount", 5, "USD", "$5.00"},
		{"millions", 1234567.891, "NGN", "₦1,234,567.89"},
		{"exactly one group", 999.99, "GBP", "£999.99"},
		{"negative amount", -1234.5, "EUR", "€-1,234.50"},
		{"unknown code falls back to suffix form", 10, "ZZZ", "10.00 ZZZ"},
		{"unknown code is uppercased", 1500, "zzz", "1,500.00 ZZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.amount, tt.code))
		})
	}
}

func TestFeeSchedule_Calculate(t *testing.T) {
	schedule := FeeSchedule{Percentage: decimal.NewFromFloat(0.5)}

	t.Run("percentage applies above the floor", func(t *testing.T) {
		// 0.5% of 10000 USD = 50, well above the 1 USD minimum.
		assert.Equal(t, 50.0, schedule.Calculate(10000, "USD"))
	})

	t.Run("minimum fee floors small amounts", func(t *testing.T) {
		// 0.5% of 100 USD = 0.50, below the 1 USD minimum.
		assert.Equal(t, 1.0, schedule.Calculate(100, "USD"))
	})

	t.Run("NGN floor is 50", func(t *testing.T) {
		assert.Equal(t, 50.0, schedule.Calculate(100, "NGN"))
		// 0.5% of 100000 NGN = 500, above the floor.
		assert.Equal(t, 500.0, schedule.Calculate(100000, "NGN"))
	})

	t.Run("fee never drops when amount grows", func(t *testing.T) {
		prev := 0.0
		for _, amount := range []float64{1, 10, 100, 500, 1000, 5000, 100000} {
			fee := schedule.Calculate(amount, "USD")
			assert.GreaterOrEqual(t, fee, prev, "amount %v", amount)
			prev = fee
		}
	})

	t.Run("unknown currency has no floor", func(t *testing.T) {
		assert.Equal(t, 0.5, schedule.Calculate(100, "ZZZ"))
	})

	t.Run("rounding to two places", func(t *testing.T) {
		// 0.5% of 12345.67 = 61.72835
		assert.Equal(t, 61.73, schedule.Calculate(12345.67, "GBP"))
	})
}

func TestCalculateFees_UsesConfiguredSchedule(t *testing.T) {
	// Default schedule is 0.5% with per-currency floors.
	assert.Equal(t, 50.0, CalculateFees(100, "NGN"))
	assert.Equal(t, 1.0, CalculateFees(100, "USD"))
}
