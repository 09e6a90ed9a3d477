package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rule operators shared by eligibility rules, benefit rules and benefit conditions.
// Not every rule kind accepts every operator.
const (
	OpGreaterThan        = ">"
	OpLessThan           = "<"
	OpGreaterThanOrEqual = ">="
	OpLessThanOrEqual    = "<="
	OpEqual              = "==="
	OpNotEqual           = "!=="
	OpIn                 = "IN"
	OpBetween            = "BETWEEN"
	OpAny                = "ANY"
)

// Benefit modifier types applied by benefit rules.
const (
	ModifierMultiply = "multiply"
	ModifierAdd      = "add"
	ModifierSubtract = "subtract"
	ModifierSet      = "set"
)

// Geographic coverage types.
const (
	CoverageFull     = "full"
	CoveragePartial  = "partial"
	CoverageExcluded = "excluded"
)

// Benefit condition buckets.
const (
	BenefitTypeCash   = "cash"
	BenefitTypeInKind = "in-kind"
)

// Program categories with a built-in fallback eligibility heuristic.
const (
	CategoryDisability       = "disability"
	CategorySocialAssistance = "social_assistance"
	CategoryEducation        = "education"
	CategoryPension          = "pension"
)

// NationalRegion is the coverage region that stands for the whole country.
const NationalRegion = "national"

// Program is the aggregate root of the catalog: base thresholds, base benefit
// fields and the rule collections used by the engine.
type Program struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	Description    string `yaml:"description,omitempty" json:"description,omitempty"`
	Category       string `yaml:"category" json:"category"`
	ProgramCountry string `yaml:"program_country,omitempty" json:"programCountry,omitempty"`
	CountryCode    string `yaml:"country_code" json:"countryCode"`
	Active         bool   `yaml:"active" json:"active"`

	// Base eligibility thresholds (flat program model)
	AgeMinimum           *int    `yaml:"age_minimum,omitempty" json:"ageMinimum,omitempty"`
	AgeMaximum           *int    `yaml:"age_maximum,omitempty" json:"ageMaximum,omitempty"`
	Gender               *string `yaml:"gender,omitempty" json:"gender,omitempty"`
	EmploymentStatus     *string `yaml:"employment_status,omitempty" json:"employmentStatus,omitempty"`
	DisabilityStatus     *string `yaml:"disability_status,omitempty" json:"disabilityStatus,omitempty"`
	ChronicIllnessStatus *string `yaml:"chronic_illness_status,omitempty" json:"chronicIllnessStatus,omitempty"`
	HouseholdSize        *int    `yaml:"household_size,omitempty" json:"householdSize,omitempty"`
	CitizenshipRequired  bool    `yaml:"citizenship_required,omitempty" json:"citizenshipRequired,omitempty"`

	// Base benefit fields
	MinimumBenefit            *decimal.Decimal `yaml:"minimum_benefit,omitempty" json:"minimumBenefit,omitempty"`
	MaximumBenefit            *decimal.Decimal `yaml:"maximum_benefit,omitempty" json:"maximumBenefit,omitempty"`
	BenefitFrequency          string           `yaml:"benefit_frequency" json:"benefitFrequency"`
	CashTransfer              bool             `yaml:"cash_transfer,omitempty" json:"cashTransfer,omitempty"`
	CashTransferMonthlyAmount decimal.Decimal  `yaml:"cash_transfer_monthly_amount,omitempty" json:"cashTransferMonthlyAmount"`
	InKindTransfer            bool             `yaml:"in_kind_transfer,omitempty" json:"inKindTransfer,omitempty"`
	InKindDollarValueAmt      decimal.Decimal  `yaml:"in_kind_dollar_value_amt,omitempty" json:"inKindDollarValueAmt"`
	ReapplicationPeriod       string           `yaml:"reapplication_period,omitempty" json:"reapplicationPeriod,omitempty"`

	EligibilityRules   []EligibilityRule    `yaml:"eligibility_rules,omitempty" json:"eligibilityRules"`
	BenefitRules       []BenefitRule        `yaml:"benefit_rules,omitempty" json:"benefitRules"`
	BenefitConditions  []BenefitCondition   `yaml:"benefit_conditions,omitempty" json:"benefitConditions"`
	RequiredDocuments  []RequiredDocument   `yaml:"required_documents,omitempty" json:"requiredDocuments"`
	GeographicCoverage []GeographicCoverage `yaml:"geographic_coverage,omitempty" json:"geographicCoverage"`
}

// EligibilityRule matches one EligibilityParams value against an operand.
// Rules sharing a LogicGroup are AND-combined; groups are OR-combined.
type EligibilityRule struct {
	ID         string `yaml:"id,omitempty" json:"id"`
	ProgramID  string `yaml:"program_id,omitempty" json:"programId"`
	RuleType   string `yaml:"rule_type" json:"ruleType"`
	Operator   string `yaml:"operator" json:"operator"`
	Value      string `yaml:"value" json:"value"`
	LogicGroup int    `yaml:"logic_group,omitempty" json:"logicGroup"`
	Priority   int    `yaml:"priority,omitempty" json:"priority"`
	Active     bool   `yaml:"active" json:"active"`
}

// BenefitRule modifies the running benefit amount when its condition holds.
// Rules apply in ascending Priority and each one sees the previous result.
type BenefitRule struct {
	ID              string          `yaml:"id,omitempty" json:"id"`
	ProgramID       string          `yaml:"program_id,omitempty" json:"programId"`
	ConditionType   string          `yaml:"condition_type" json:"conditionType"`
	Operator        string          `yaml:"operator" json:"operator"`
	ThresholdValue  string          `yaml:"threshold_value" json:"thresholdValue"`
	BenefitModifier decimal.Decimal `yaml:"benefit_modifier" json:"benefitModifier"`
	ModifierType    string          `yaml:"modifier_type" json:"modifierType"`
	Priority        int             `yaml:"priority,omitempty" json:"priority"`
	Active          bool            `yaml:"active" json:"active"`
}

// BenefitCondition adds a fixed amount to the cash or in-kind bucket when a
// beneficiary attribute satisfies the condition. Conditions are additive only.
type BenefitCondition struct {
	ID                string          `yaml:"id,omitempty" json:"id"`
	ProgramID         string          `yaml:"program_id,omitempty" json:"programId"`
	BenefitType       string          `yaml:"benefit_type" json:"benefitType"`
	ConditionField    string          `yaml:"condition_field" json:"conditionField"`
	ConditionOperator string          `yaml:"condition_operator" json:"conditionOperator"`
	ConditionValue    string          `yaml:"condition_value" json:"conditionValue"`
	BenefitAmount     decimal.Decimal `yaml:"benefit_amount" json:"benefitAmount"`
	Active            bool            `yaml:"active" json:"active"`
}

// RequiredDocument is a document a program asks for, optionally replaceable
// by one of its alternatives.
type RequiredDocument struct {
	ID                  string                `yaml:"id,omitempty" json:"id"`
	DocumentType        string                `yaml:"document_type" json:"documentType"`
	IsMandatory         bool                  `yaml:"is_mandatory" json:"isMandatory"`
	AlternativesAllowed bool                  `yaml:"alternatives_allowed,omitempty" json:"alternativesAllowed"`
	Active              bool                  `yaml:"active" json:"active"`
	Alternatives        []DocumentAlternative `yaml:"alternatives,omitempty" json:"alternatives"`
}

// DocumentAlternative is an alternate acceptable document type.
type DocumentAlternative struct {
	ID              string `yaml:"id,omitempty" json:"id"`
	AlternativeType string `yaml:"alternative_type" json:"alternativeType"`
}

// GeographicCoverage describes how a program covers a single region.
type GeographicCoverage struct {
	ID                  string  `yaml:"id,omitempty" json:"id"`
	Region              string  `yaml:"region" json:"region"`
	CoverageType        string  `yaml:"coverage_type" json:"coverageType"`
	SpecialRequirements *string `yaml:"special_requirements,omitempty" json:"specialRequirements,omitempty"`
	Active              bool    `yaml:"active" json:"active"`
}

// MEBValue is the monthly Minimum Expenditure Basket for a country.
type MEBValue struct {
	CountryCode string          `yaml:"country_code" json:"countryCode"`
	Amount      decimal.Decimal `yaml:"amount" json:"amount"`
}

// BenefitAdjustment is an immutable cost-of-living adjustment history entry.
type BenefitAdjustment struct {
	ID             string          `json:"id"`
	ProgramID      string          `json:"programId"`
	AdjustmentRate decimal.Decimal `json:"adjustmentRate"`
	EffectiveDate  time.Time       `json:"effectiveDate"`
	Year           int             `json:"year"`
}

// AdjustedBenefit applies a COLA rate to a benefit bound, rounded to cents.
// A nil bound stays nil.
func AdjustedBenefit(amount *decimal.Decimal, rate decimal.Decimal) *decimal.Decimal {
	if amount == nil {
		return nil
	}
	adjusted := amount.Mul(decimal.NewFromInt(1).Add(rate)).Round(2)
	return &adjusted
}

// ActiveEligibilityRules returns the active eligibility rules in their current order.
func (p *Program) ActiveEligibilityRules() []EligibilityRule {
	rules := make([]EligibilityRule, 0, len(p.EligibilityRules))
	for _, r := range p.EligibilityRules {
		if r.Active {
			rules = append(rules, r)
		}
	}
	return rules
}

// ActiveBenefitRules returns the active benefit rules in their current order.
func (p *Program) ActiveBenefitRules() []BenefitRule {
	rules := make([]BenefitRule, 0, len(p.BenefitRules))
	for _, r := range p.BenefitRules {
		if r.Active {
			rules = append(rules, r)
		}
	}
	return rules
}

// ActiveDocuments returns the active required documents.
func (p *Program) ActiveDocuments() []RequiredDocument {
	docs := make([]RequiredDocument, 0, len(p.RequiredDocuments))
	for _, d := range p.RequiredDocuments {
		if d.Active {
			docs = append(docs, d)
		}
	}
	return docs
}

// ActiveCoverage returns the active geographic coverage entries.
func (p *Program) ActiveCoverage() []GeographicCoverage {
	coverage := make([]GeographicCoverage, 0, len(p.GeographicCoverage))
	for _, c := range p.GeographicCoverage {
		if c.Active {
			coverage = append(coverage, c)
		}
	}
	return coverage
}

// DeepCopy returns a copy of the program that shares no slices or pointers
// with the receiver.
func (p Program) DeepCopy() Program {
	cp := p
	cp.AgeMinimum = copyPtr(p.AgeMinimum)
	cp.AgeMaximum = copyPtr(p.AgeMaximum)
	cp.Gender = copyPtr(p.Gender)
	cp.EmploymentStatus = copyPtr(p.EmploymentStatus)
	cp.DisabilityStatus = copyPtr(p.DisabilityStatus)
	cp.ChronicIllnessStatus = copyPtr(p.ChronicIllnessStatus)
	cp.HouseholdSize = copyPtr(p.HouseholdSize)
	cp.MinimumBenefit = copyPtr(p.MinimumBenefit)
	cp.MaximumBenefit = copyPtr(p.MaximumBenefit)
	cp.EligibilityRules = append([]EligibilityRule(nil), p.EligibilityRules...)
	cp.BenefitRules = append([]BenefitRule(nil), p.BenefitRules...)
	cp.BenefitConditions = append([]BenefitCondition(nil), p.BenefitConditions...)
	cp.RequiredDocuments = make([]RequiredDocument, len(p.RequiredDocuments))
	for i, d := range p.RequiredDocuments {
		d.Alternatives = append([]DocumentAlternative(nil), d.Alternatives...)
		cp.RequiredDocuments[i] = d
	}
	cp.GeographicCoverage = make([]GeographicCoverage, len(p.GeographicCoverage))
	for i, c := range p.GeographicCoverage {
		c.SpecialRequirements = copyPtr(c.SpecialRequirements)
		cp.GeographicCoverage[i] = c
	}
	return cp
}

func copyPtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
