package calculation

import (
	"strconv"
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

// EvaluateRule reports whether params satisfy one eligibility rule. The rule
// must come from a prepared program (see domain.PrepareProgram).
//
// A missing param value evaluates to false. When the rule cannot be evaluated
// cleanly (non-numeric operand, malformed range, unknown operator) the result
// is false and the returned error is a *domain.EvaluationAnomaly describing
// why; callers log it and carry on.
func EvaluateRule(rule domain.EligibilityRule, p domain.EligibilityParams) (bool, error) {
	value, ok, err := paramValue(rule, p)
	if err != nil || !ok {
		return false, err
	}

	switch rule.Operator {
	case domain.OpGreaterThan, domain.OpLessThan, domain.OpGreaterThanOrEqual, domain.OpLessThanOrEqual:
		left, lerr := parseFloat(value)
		right, rerr := parseFloat(rule.Value)
		if lerr != nil || rerr != nil {
			return false, domain.NewEvaluationAnomaly(rule.ID, "%s %s %s: operands must be numeric", value, rule.Operator, rule.Value)
		}
		return compareFloat(rule.Operator, left, right), nil

	case domain.OpEqual:
		return strings.EqualFold(strings.TrimSpace(value), strings.TrimSpace(rule.Value)), nil

	case domain.OpIn:
		return containsFold(splitList(rule.Value), value), nil

	case domain.OpBetween:
		bounds := splitList(rule.Value)
		if len(bounds) != 2 {
			return false, domain.NewEvaluationAnomaly(rule.ID, "BETWEEN value %q is not \"min,max\"", rule.Value)
		}
		lo, loErr := parseFloat(bounds[0])
		hi, hiErr := parseFloat(bounds[1])
		if loErr != nil || hiErr != nil {
			return false, domain.NewEvaluationAnomaly(rule.ID, "BETWEEN bounds %q are not numeric", rule.Value)
		}
		v, err := parseFloat(value)
		if err != nil {
			return false, domain.NewEvaluationAnomaly(rule.ID, "BETWEEN operand %q is not numeric", value)
		}
		return v >= lo && v <= hi, nil

	case domain.OpAny:
		allowed := splitList(rule.Value)
		for _, item := range splitList(value) {
			if containsFold(allowed, item) {
				return true, nil
			}
		}
		return false, nil
	}

	return false, domain.NewEvaluationAnomaly(rule.ID, "unknown operator %q", rule.Operator)
}

func compareFloat(op string, left, right float64) bool {
	switch op {
	case domain.OpGreaterThan:
		return left > right
	case domain.OpLessThan:
		return left < right
	case domain.OpGreaterThanOrEqual:
		return left >= right
	case domain.OpLessThanOrEqual:
		return left <= right
	}
	return false
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// splitList splits a comma-delimited list, trimming blanks and dropping
// empty elements.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func containsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
