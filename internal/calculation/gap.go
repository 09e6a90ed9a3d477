package calculation

import (
	"sort"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// AnalyzeGap sums the monthly benefits of every qualifying match and compares
// the total with the MEB. The gap never goes negative; coverage is a
// percentage and is not capped at 100. A non-positive MEB yields zero coverage.
func AnalyzeGap(matches []domain.ProgramMatch, meb decimal.Decimal) domain.GapAnalysis {
	total := decimal.Zero
	for _, m := range matches {
		if m.Qualifies() {
			total = total.Add(m.CalculatedBenefit)
		}
	}

	coverage := decimal.Zero
	if meb.IsPositive() {
		coverage = total.Div(meb).Mul(hundred)
	}

	return domain.GapAnalysis{
		TotalBenefits: total,
		MEBAmount:     meb,
		Gap:           decimal.Max(decimal.Zero, meb.Sub(total)),
		Coverage:      coverage,
	}
}

// RankMatches orders matches by descending eligibility score. Ties keep their
// relative order.
func RankMatches(matches []domain.ProgramMatch) []domain.ProgramMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].EligibilityScore > matches[j].EligibilityScore
	})
	return matches
}
