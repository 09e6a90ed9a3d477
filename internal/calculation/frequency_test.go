package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConvertToMonthly(t *testing.T) {
	tests := []struct {
		frequency string
		amount    string
		want      string
	}{
		{"daily", "10", "300"},
		{"weekly", "25", "100"},
		{"biweekly", "60", "120"},
		{"bi-weekly", "60", "120"},
		{"monthly", "123.45", "123.45"},
		{"Monthly", "123.45", "123.45"},
		{"quarterly", "300", "100"},
		{"semiannually", "600", "100"},
		{"semi-annually", "600", "100"},
		{"annually", "1200", "100"},
		{"one-time", "5000", "0"},
		{"one_time", "5000", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.frequency, func(t *testing.T) {
			got := ConvertToMonthly(dec(tt.amount), tt.frequency, nil)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestConvertToMonthly_MonthlyIsIdempotent(t *testing.T) {
	amount := dec("987.65")
	once := ConvertToMonthly(amount, "monthly", nil)
	twice := ConvertToMonthly(once, "monthly", nil)

	assert.True(t, once.Equal(amount))
	assert.True(t, twice.Equal(once))
}

func TestConvertToMonthly_OneTimeIsAlwaysZero(t *testing.T) {
	for _, amount := range []decimal.Decimal{dec("0.01"), dec("1"), dec("1000000000")} {
		assert.True(t, ConvertToMonthly(amount, "one-time", nil).IsZero())
	}
}

func TestConvertToMonthly_UnknownFrequencyPassesThrough(t *testing.T) {
	logger := &TestLogger{}

	got := ConvertToMonthly(dec("42"), "fortnightly-ish", logger)

	assert.True(t, got.Equal(dec("42")))
	assert.Contains(t, logger.warnings(), `unknown benefit frequency "fortnightly-ish"`)
}
