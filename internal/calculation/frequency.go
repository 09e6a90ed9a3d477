package calculation

import (
	"strings"

	"github.com/shopspring/decimal"
)

type frequencyFactor struct {
	mul, div int64
}

// monthlyFactors converts one payment at the given frequency into its
// monthly equivalent. Keys are lower-case with separators removed.
var monthlyFactors = map[string]frequencyFactor{
	"daily":        {mul: 30, div: 1},
	"weekly":       {mul: 4, div: 1},
	"biweekly":     {mul: 2, div: 1},
	"monthly":      {mul: 1, div: 1},
	"quarterly":    {mul: 1, div: 3},
	"semiannually": {mul: 1, div: 6},
	"semiannual":   {mul: 1, div: 6},
	"annually":     {mul: 1, div: 12},
	"annual":       {mul: 1, div: 12},
	"yearly":       {mul: 1, div: 12},
	"onetime":      {mul: 0, div: 1},
}

// ConvertToMonthly normalizes an amount paid at frequency to a monthly
// figure. One-time payments contribute nothing to ongoing monthly coverage.
// Unknown frequencies pass the amount through unchanged with a warning.
func ConvertToMonthly(amount decimal.Decimal, frequency string, log Logger) decimal.Decimal {
	factor, ok := monthlyFactors[normalizeFrequency(frequency)]
	if !ok {
		orNop(log).Warnf("unknown benefit frequency %q, treating amount as monthly", frequency)
		return amount
	}
	if factor.mul == 0 {
		return decimal.Zero
	}
	monthly := amount.Mul(decimal.NewFromInt(factor.mul))
	if factor.div != 1 {
		monthly = monthly.Div(decimal.NewFromInt(factor.div))
	}
	return monthly
}

// IsKnownFrequency reports whether ConvertToMonthly has a factor for frequency.
func IsKnownFrequency(frequency string) bool {
	_, ok := monthlyFactors[normalizeFrequency(frequency)]
	return ok
}

func normalizeFrequency(frequency string) string {
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.ToLower(strings.TrimSpace(frequency)))
}
