package output

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

// FormatCurrency formats a decimal as a dollar amount
func FormatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Abs().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a decimal that is already in percent
func FormatPercentage(amount decimal.Decimal) string {
	return amount.StringFixed(2) + "%"
}

// FormatBenefitRange renders min/max bounds, leaving an open side as "…".
func FormatBenefitRange(r domain.BenefitRange) string {
	if r.Min == nil && r.Max == nil {
		return "-"
	}
	lo, hi := "…", "…"
	if r.Min != nil {
		lo = FormatCurrency(*r.Min)
	}
	if r.Max != nil {
		hi = FormatCurrency(*r.Max)
	}
	return lo + " - " + hi
}

func fixedOrEmpty(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}

// documentSummary lists documents as "key ✓" or "key ✗", sorted by key.
func documentSummary(status map[string]bool) string {
	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		mark := "✗"
		if status[k] {
			mark = "✓"
		}
		parts = append(parts, k+" "+mark)
	}
	return strings.Join(parts, ", ")
}
