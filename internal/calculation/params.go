package calculation

import (
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

// Rule types that have no one-to-one params field, in normalized form.
const (
	ruleTypeResidency           = "residency"
	ruleTypeIncome              = "income"
	ruleTypeAgeRange            = "ageRange"
	ruleTypeVulnerabilityStatus = "vulnerabilityStatus"
	ruleTypeDependencyRatio     = "dependencyRatio"
)

const daysPerMonth = 30

// paramValue resolves the operand an eligibility rule compares against. The
// rule type must already be normalized. ok is false when the value is not
// provided, which fails the rule closed.
func paramValue(rule domain.EligibilityRule, p domain.EligibilityParams) (value string, ok bool, err error) {
	switch rule.RuleType {
	case ruleTypeResidency:
		if p.HasProofOfResidence != nil && *p.HasProofOfResidence {
			return "citizen_or_resident", true, nil
		}
		return "non_resident", true, nil

	case ruleTypeIncome:
		if p.MonthlyIncome == nil {
			return "0", true, nil
		}
		monthly, err := decimal.NewFromString(strings.TrimSpace(*p.MonthlyIncome))
		if err != nil {
			return "", false, domain.NewEvaluationAnomaly(rule.ID, "monthly income %q is not numeric", *p.MonthlyIncome)
		}
		return monthly.Div(decimal.NewFromInt(daysPerMonth)).String(), true, nil

	case ruleTypeAgeRange:
		return lookup(p, domain.FieldAge)

	case ruleTypeVulnerabilityStatus:
		if domain.VulnerabilityScoreOf(p) >= domain.VulnerableThreshold {
			return "vulnerable", true, nil
		}
		return "not_vulnerable", true, nil

	case ruleTypeDependencyRatio:
		if p.HouseholdSize == nil {
			return "0", true, nil
		}
		size, err := decimal.NewFromString(strings.TrimSpace(*p.HouseholdSize))
		if err != nil || !size.IsPositive() {
			return "0", true, nil
		}
		if p.NumberOfDependents == nil {
			return "", false, nil
		}
		deps, err := decimal.NewFromString(strings.TrimSpace(*p.NumberOfDependents))
		if err != nil {
			return "", false, domain.NewEvaluationAnomaly(rule.ID, "number of dependents %q is not numeric", *p.NumberOfDependents)
		}
		return deps.Div(size).String(), true, nil
	}

	// "has*" documentation flags and every other rule type are direct lookups.
	f, known := domain.FieldByName(rule.RuleType)
	if !known {
		return "", false, nil
	}
	return lookup(p, f)
}

func lookup(p domain.EligibilityParams, f domain.Field) (string, bool, error) {
	v, ok := p.Lookup(f)
	return v, ok, nil
}
