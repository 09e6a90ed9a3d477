package calculation

import (
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

const (
	fallbackIncomeCeiling = 1000
	seniorAge             = 60
	adultAge              = 18
)

// Score rates how well params match a program, from 0 (ineligible) to 100.
//
// Active rules are grouped by LogicGroup. A group passes when every rule in
// it passes, and the program is eligible when any group passes. An eligible
// program scores the share of all active rules that passed, across every
// group, so a program can be eligible with a low score. Programs without
// active rules fall back to a category heuristic.
func Score(program domain.Program, p domain.EligibilityParams, log Logger) float64 {
	log = orNop(log)

	rules := program.ActiveEligibilityRules()
	if len(rules) == 0 {
		return FallbackScore(program.Category, p)
	}

	groupPassed := make(map[int]bool)
	matched := 0
	for _, rule := range rules {
		ok, err := EvaluateRule(rule, p)
		if err != nil {
			log.Warnf("program %s: %v", program.ID, err)
		}
		log.Debugf("program %s rule %s (%s %s %s, group %d): %t",
			program.ID, rule.ID, rule.RuleType, rule.Operator, rule.Value, rule.LogicGroup, ok)

		if ok {
			matched++
		}
		if passed, seen := groupPassed[rule.LogicGroup]; seen {
			groupPassed[rule.LogicGroup] = passed && ok
		} else {
			groupPassed[rule.LogicGroup] = ok
		}
	}

	eligible := false
	for _, passed := range groupPassed {
		if passed {
			eligible = true
			break
		}
	}
	if !eligible {
		return 0
	}
	return float64(matched) * 100 / float64(len(rules))
}

// FallbackScore is the all-or-nothing category heuristic used for programs
// that define no eligibility rules.
func FallbackScore(category string, p domain.EligibilityParams) float64 {
	age, hasAge := floatParam(p.Age)

	pass := false
	switch normalizeCategory(category) {
	case domain.CategoryDisability:
		pass = p.DisabilityStatus != nil && hasCondition(*p.DisabilityStatus)
	case domain.CategorySocialAssistance:
		unemployed := p.EmploymentStatus != nil && strings.EqualFold(strings.TrimSpace(*p.EmploymentStatus), "unemployed")
		income, hasIncome := floatParam(p.MonthlyIncome)
		pass = unemployed || (hasIncome && income < fallbackIncomeCeiling) || (hasAge && age >= seniorAge)
	case domain.CategoryEducation:
		pass = hasAge && age < adultAge
	case domain.CategoryPension:
		pass = hasAge && age >= seniorAge
	}

	if pass {
		return 100
	}
	return 0
}

func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	return strings.NewReplacer("-", "_", " ", "_").Replace(category)
}

func hasCondition(status string) bool {
	status = strings.TrimSpace(status)
	return status != "" && status != domain.NoneStatus
}

func floatParam(s *string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, err := parseFloat(*s)
	if err != nil {
		return 0, false
	}
	return v, true
}
