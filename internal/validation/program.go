package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/calculation"
	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

var (
	eligibilityOperators = map[string]bool{
		domain.OpGreaterThan: true, domain.OpLessThan: true,
		domain.OpGreaterThanOrEqual: true, domain.OpLessThanOrEqual: true,
		domain.OpEqual: true, domain.OpIn: true, domain.OpBetween: true, domain.OpAny: true,
	}
	comparisonOperators = map[string]bool{
		domain.OpGreaterThan: true, domain.OpLessThan: true,
		domain.OpGreaterThanOrEqual: true, domain.OpLessThanOrEqual: true,
		domain.OpEqual: true, domain.OpNotEqual: true,
	}
	modifierTypes = map[string]bool{
		domain.ModifierMultiply: true, domain.ModifierAdd: true,
		domain.ModifierSubtract: true, domain.ModifierSet: true,
	}
	coverageTypes = map[string]bool{
		domain.CoverageFull: true, domain.CoveragePartial: true, domain.CoverageExcluded: true,
	}
)

// ValidateProgram checks that a catalog program can be evaluated: required
// identity fields, consistent benefit bounds, a known frequency and well
// formed rules. Keys and operators are checked in their prepared form, so any
// spelling PrepareProgram accepts is valid here. The returned error is a
// *domain.ValidationError listing every problem.
func ValidateProgram(p domain.Program) error {
	var issues []domain.FieldIssue
	check := func(field string, err error) {
		if err != nil {
			issues = append(issues, domain.FieldIssue{Field: field, Message: err.Error()})
		}
	}

	check("name", requireText("name", p.Name))
	check("countryCode", requireText("country_code", p.CountryCode))
	check("benefitFrequency", validateFrequency(p.BenefitFrequency))
	check("minimumBenefit", validateBounds(p))

	prepared := domain.PrepareProgram(p)
	for i, r := range prepared.EligibilityRules {
		check(fmt.Sprintf("eligibilityRules[%d]", i), validateEligibilityRule(r))
	}
	for i, r := range prepared.BenefitRules {
		check(fmt.Sprintf("benefitRules[%d]", i), validateBenefitRule(r))
	}
	for i, c := range prepared.BenefitConditions {
		check(fmt.Sprintf("benefitConditions[%d]", i), validateCondition(c))
	}
	for i, d := range prepared.RequiredDocuments {
		if strings.TrimSpace(d.DocumentType) == "" {
			check(fmt.Sprintf("requiredDocuments[%d]", i), fmt.Errorf("document %d: document_type is required", i))
		}
	}
	for i, c := range prepared.GeographicCoverage {
		check(fmt.Sprintf("geographicCoverage[%d]", i), validateCoverage(c))
	}

	if len(issues) > 0 {
		return domain.NewValidationError(issues...)
	}
	return nil
}

func requireText(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}

func validateFrequency(frequency string) error {
	if strings.TrimSpace(frequency) == "" {
		return fmt.Errorf("benefit_frequency is required")
	}
	if !calculation.IsKnownFrequency(frequency) {
		return fmt.Errorf("benefit_frequency %q is not supported", frequency)
	}
	return nil
}

func validateBounds(p domain.Program) error {
	if p.MinimumBenefit != nil && p.MinimumBenefit.IsNegative() {
		return fmt.Errorf("minimum_benefit cannot be negative")
	}
	if p.MaximumBenefit != nil && p.MaximumBenefit.IsNegative() {
		return fmt.Errorf("maximum_benefit cannot be negative")
	}
	if p.MinimumBenefit != nil && p.MaximumBenefit != nil && p.MaximumBenefit.LessThan(*p.MinimumBenefit) {
		return fmt.Errorf("maximum_benefit cannot be less than minimum_benefit")
	}
	return nil
}

func validateEligibilityRule(r domain.EligibilityRule) error {
	if r.RuleType == "" {
		return fmt.Errorf("rule_type is required")
	}
	if !eligibilityOperators[r.Operator] {
		return fmt.Errorf("rule %s: operator %q is not supported", r.RuleType, r.Operator)
	}
	if r.Operator == domain.OpBetween {
		bounds := strings.Split(r.Value, ",")
		if len(bounds) != 2 || !isNumber(bounds[0]) || !isNumber(bounds[1]) {
			return fmt.Errorf("rule %s: BETWEEN value must be \"min,max\", got %q", r.RuleType, r.Value)
		}
	}
	return nil
}

func validateBenefitRule(r domain.BenefitRule) error {
	if r.ConditionType == "" {
		return fmt.Errorf("condition_type is required")
	}
	if !comparisonOperators[r.Operator] {
		return fmt.Errorf("benefit rule %s: operator %q is not supported", r.ConditionType, r.Operator)
	}
	if !isNumber(r.ThresholdValue) {
		return fmt.Errorf("benefit rule %s: threshold_value %q must be numeric", r.ConditionType, r.ThresholdValue)
	}
	if !modifierTypes[r.ModifierType] {
		return fmt.Errorf("benefit rule %s: modifier_type %q is not supported", r.ConditionType, r.ModifierType)
	}
	return nil
}

func validateCondition(c domain.BenefitCondition) error {
	if c.BenefitType != domain.BenefitTypeCash && c.BenefitType != domain.BenefitTypeInKind {
		return fmt.Errorf("benefit_type must be %q or %q, got %q", domain.BenefitTypeCash, domain.BenefitTypeInKind, c.BenefitType)
	}
	if _, ok := (domain.Beneficiary{}).Attribute(c.ConditionField); !ok {
		return fmt.Errorf("condition_field %q is not a beneficiary attribute", c.ConditionField)
	}
	if !comparisonOperators[c.ConditionOperator] {
		return fmt.Errorf("condition on %s: operator %q is not supported", c.ConditionField, c.ConditionOperator)
	}
	if c.BenefitAmount.IsNegative() {
		return fmt.Errorf("condition on %s: benefit_amount cannot be negative", c.ConditionField)
	}
	return nil
}

func validateCoverage(c domain.GeographicCoverage) error {
	if strings.TrimSpace(c.Region) == "" {
		return fmt.Errorf("region is required")
	}
	if !coverageTypes[strings.ToLower(strings.TrimSpace(c.CoverageType))] {
		return fmt.Errorf("region %s: coverage_type %q is not supported", c.Region, c.CoverageType)
	}
	return nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}
