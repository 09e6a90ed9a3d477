package calculation

import (
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

// MeetsBaseThresholds checks a beneficiary against the flat thresholds carried
// on the program itself. Unset thresholds do not restrict.
func MeetsBaseThresholds(program domain.Program, b domain.Beneficiary) bool {
	if program.AgeMinimum != nil && b.Age < *program.AgeMinimum {
		return false
	}
	if program.AgeMaximum != nil && b.Age > *program.AgeMaximum {
		return false
	}
	if program.HouseholdSize != nil && b.HouseholdSize < *program.HouseholdSize {
		return false
	}
	if !matchesThreshold(program.Gender, b.Gender) ||
		!matchesThreshold(program.EmploymentStatus, b.EmploymentStatus) ||
		!matchesThreshold(program.DisabilityStatus, b.DisabilityStatus) ||
		!matchesThreshold(program.ChronicIllnessStatus, b.ChronicIllnessStatus) {
		return false
	}
	if program.CountryCode != "" && !strings.EqualFold(program.CountryCode, b.CountryCode) {
		return false
	}
	if program.CitizenshipRequired && b.CountryOfOrigin != "" && !strings.EqualFold(program.CountryCode, b.CountryOfOrigin) {
		return false
	}
	return true
}

// matchesThreshold treats an unset threshold, "any" and "all" as wildcards.
func matchesThreshold(threshold *string, value string) bool {
	if threshold == nil {
		return true
	}
	t := strings.TrimSpace(*threshold)
	switch strings.ToLower(t) {
	case "", "any", "all":
		return true
	}
	return strings.EqualFold(t, strings.TrimSpace(value))
}

// CalculateConditionBenefits runs the flat program model: the cash and
// in-kind buckets start from the program's base amounts (when the matching
// transfer flag is set) and every active condition that holds adds its
// amount to its bucket. Conditions are additive and independent of order.
// An ineligible beneficiary gets zero amounts.
func CalculateConditionBenefits(program domain.Program, b domain.Beneficiary, log Logger) domain.EligibilityCalculation {
	log = orNop(log)

	result := domain.EligibilityCalculation{
		ProgramID:    program.ID,
		Eligible:     MeetsBaseThresholds(program, b),
		CashAmount:   decimal.Zero,
		InKindAmount: decimal.Zero,
		TotalAmount:  decimal.Zero,
	}
	if !result.Eligible {
		return result
	}

	if program.CashTransfer {
		result.CashAmount = program.CashTransferMonthlyAmount
	}
	if program.InKindTransfer {
		result.InKindAmount = program.InKindDollarValueAmt
	}

	for _, c := range program.BenefitConditions {
		if !c.Active {
			continue
		}
		ok, err := EvaluateCondition(c, b)
		if err != nil {
			log.Warnf("program %s: %v", program.ID, err)
			continue
		}
		if !ok {
			continue
		}
		switch c.BenefitType {
		case domain.BenefitTypeCash:
			result.CashAmount = result.CashAmount.Add(c.BenefitAmount)
		case domain.BenefitTypeInKind:
			result.InKindAmount = result.InKindAmount.Add(c.BenefitAmount)
		default:
			log.Warnf("program %s: condition %s has unknown benefit type %q", program.ID, c.ID, c.BenefitType)
		}
	}

	result.TotalAmount = result.CashAmount.Add(result.InKindAmount)
	return result
}

// EvaluateCondition tests one benefit condition against a beneficiary.
// Ordering comparators are numeric. Equality is numeric when both sides are
// numbers and a case-insensitive string match otherwise.
func EvaluateCondition(c domain.BenefitCondition, b domain.Beneficiary) (bool, error) {
	raw, ok := b.Attribute(c.ConditionField)
	if !ok {
		return false, domain.NewEvaluationAnomaly(c.ID, "unknown beneficiary attribute %q", c.ConditionField)
	}

	left, lerr := decimal.NewFromString(strings.TrimSpace(raw))
	right, rerr := decimal.NewFromString(strings.TrimSpace(c.ConditionValue))
	numeric := lerr == nil && rerr == nil

	switch c.ConditionOperator {
	case domain.OpEqual, domain.OpNotEqual:
		equal := strings.EqualFold(strings.TrimSpace(raw), strings.TrimSpace(c.ConditionValue))
		if numeric {
			equal = left.Equal(right)
		}
		if c.ConditionOperator == domain.OpNotEqual {
			return !equal, nil
		}
		return equal, nil
	case domain.OpGreaterThan, domain.OpLessThan, domain.OpGreaterThanOrEqual, domain.OpLessThanOrEqual:
		if !numeric {
			return false, domain.NewEvaluationAnomaly(c.ID, "%s %s %s: operands must be numeric", raw, c.ConditionOperator, c.ConditionValue)
		}
		return compareDecimal(c.ID, c.ConditionOperator, left, right)
	}
	return false, domain.NewEvaluationAnomaly(c.ID, "unknown operator %q", c.ConditionOperator)
}
