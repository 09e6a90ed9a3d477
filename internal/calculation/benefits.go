package calculation

import (
	"sort"
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

// CalculateBenefit returns the monthly benefit a program pays for params.
//
// The running amount starts at the program minimum (zero when unset). Active
// benefit rules are applied in ascending priority, each one seeing the
// previous result, so the order matters. The result is clamped to the
// program bounds and converted to a monthly figure.
func CalculateBenefit(program domain.Program, p domain.EligibilityParams, log Logger) decimal.Decimal {
	log = orNop(log)

	floor := decimal.Zero
	if program.MinimumBenefit != nil {
		floor = *program.MinimumBenefit
	}

	amount := floor
	for _, rule := range sortedBenefitRules(program.ActiveBenefitRules()) {
		next, applied, err := applyBenefitRule(rule, amount, p)
		if err != nil {
			log.Warnf("program %s: %v", program.ID, err)
			continue
		}
		if applied {
			log.Debugf("program %s benefit rule %s: %s -> %s", program.ID, rule.ID, amount, next)
			amount = next
		}
	}

	amount = clampBenefit(amount, floor, program.MaximumBenefit)
	return ConvertToMonthly(amount, program.BenefitFrequency, log)
}

// applyBenefitRule applies one modifier when its numeric condition holds.
// applied is false when the condition fails or the param is not a number.
func applyBenefitRule(rule domain.BenefitRule, amount decimal.Decimal, p domain.EligibilityParams) (decimal.Decimal, bool, error) {
	f, known := domain.FieldByName(rule.ConditionType)
	if !known {
		return amount, false, nil
	}
	raw, ok := p.Lookup(f)
	if !ok {
		return amount, false, nil
	}

	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return amount, false, nil
	}
	threshold, err := decimal.NewFromString(strings.TrimSpace(rule.ThresholdValue))
	if err != nil {
		return amount, false, domain.NewEvaluationAnomaly(rule.ID, "threshold %q is not numeric", rule.ThresholdValue)
	}

	holds, err := compareDecimal(rule.ID, rule.Operator, value, threshold)
	if err != nil || !holds {
		return amount, false, err
	}

	switch rule.ModifierType {
	case domain.ModifierMultiply:
		return amount.Mul(rule.BenefitModifier), true, nil
	case domain.ModifierAdd:
		return amount.Add(rule.BenefitModifier), true, nil
	case domain.ModifierSubtract:
		return amount.Sub(rule.BenefitModifier), true, nil
	case domain.ModifierSet:
		return rule.BenefitModifier, true, nil
	}
	return amount, false, domain.NewEvaluationAnomaly(rule.ID, "unknown modifier type %q", rule.ModifierType)
}

// compareDecimal applies a numeric comparator. Equality is numeric here, not
// the string equality eligibility rules use.
func compareDecimal(ruleID, op string, left, right decimal.Decimal) (bool, error) {
	switch op {
	case domain.OpGreaterThan:
		return left.GreaterThan(right), nil
	case domain.OpLessThan:
		return left.LessThan(right), nil
	case domain.OpGreaterThanOrEqual:
		return left.GreaterThanOrEqual(right), nil
	case domain.OpLessThanOrEqual:
		return left.LessThanOrEqual(right), nil
	case domain.OpEqual:
		return left.Equal(right), nil
	case domain.OpNotEqual:
		return !left.Equal(right), nil
	}
	return false, domain.NewEvaluationAnomaly(ruleID, "unknown operator %q", op)
}

// clampBenefit bounds amount to [floor, ceiling]. A nil ceiling is unbounded.
func clampBenefit(amount, floor decimal.Decimal, ceiling *decimal.Decimal) decimal.Decimal {
	amount = decimal.Max(amount, floor)
	if ceiling != nil {
		amount = decimal.Min(amount, *ceiling)
	}
	return amount
}

func sortedBenefitRules(rules []domain.BenefitRule) []domain.BenefitRule {
	sorted := append([]domain.BenefitRule(nil), rules...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })
	return sorted
}
