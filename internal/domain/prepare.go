package domain

import (
	"sort"
	"strings"
)

// PrepareProgram returns a copy of the program ready for evaluation: rule and
// condition keys are normalized to canonical camelCase, operators and
// modifier types to their canonical spelling, and eligibility and benefit
// rules are stable-sorted by ascending priority. Stores call it once when a
// program is loaded so evaluation never re-normalizes.
func PrepareProgram(p Program) Program {
	out := p.DeepCopy()

	for i := range out.EligibilityRules {
		r := &out.EligibilityRules[i]
		r.RuleType = NormalizeKey(r.RuleType)
		r.Operator = canonicalOperator(r.Operator)
	}
	for i := range out.BenefitRules {
		r := &out.BenefitRules[i]
		r.ConditionType = NormalizeKey(r.ConditionType)
		r.Operator = canonicalOperator(r.Operator)
		r.ModifierType = strings.ToLower(strings.TrimSpace(r.ModifierType))
	}
	for i := range out.BenefitConditions {
		c := &out.BenefitConditions[i]
		c.ConditionField = NormalizeKey(c.ConditionField)
		c.ConditionOperator = canonicalOperator(c.ConditionOperator)
		c.BenefitType = canonicalBenefitType(c.BenefitType)
	}

	sort.SliceStable(out.EligibilityRules, func(i, j int) bool {
		return out.EligibilityRules[i].Priority < out.EligibilityRules[j].Priority
	})
	sort.SliceStable(out.BenefitRules, func(i, j int) bool {
		return out.BenefitRules[i].Priority < out.BenefitRules[j].Priority
	})
	return out
}

func canonicalOperator(op string) string {
	op = strings.TrimSpace(op)
	switch strings.ToUpper(op) {
	case OpIn, OpBetween, OpAny:
		return strings.ToUpper(op)
	case "==":
		return OpEqual
	case "!=":
		return OpNotEqual
	}
	return op
}

func canonicalBenefitType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	switch t {
	case "in_kind", "inkind", "in kind":
		return BenefitTypeInKind
	}
	return t
}
