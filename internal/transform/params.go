// Package transform turns section-structured form submissions into the flat
// EligibilityParams record the engine evaluates.
package transform

import (
	"strconv"
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/Puppetdog/sp-calculator-sub000/internal/validation"
	"github.com/shopspring/decimal"
)

// ToEligibilityParams flattens a submission, derives the computed fields and
// validates the result. Basic fields are always copied; optional sections
// only contribute when present.
func ToEligibilityParams(sub domain.FormSubmission) (domain.EligibilityParams, error) {
	p := domain.EligibilityParams{
		Age:                domain.StringPtr(sub.Basic.Age),
		Gender:             domain.StringPtr(sub.Basic.Gender),
		CountryOfResidence: domain.StringPtr(sub.Basic.CountryOfResidence),
		CountryOfOrigin:    optional(sub.Basic.CountryOfOrigin),
		Region:             optional(sub.Basic.Region),
	}
	if p.Region == nil && sub.Preferences != nil {
		p.Region = optional(sub.Preferences.Region)
	}

	if h := sub.Household; h != nil {
		p.HouseholdSize = domain.StringPtr(h.HouseholdSize)
		p.NumberOfDependents = domain.StringPtr(h.NumberOfDependents)
		p.TypeOfDependents = optional(h.TypeOfDependents)
		p.MonthlyIncome = optional(h.MonthlyIncome)
		p.HouseholdIncomePerPerson = incomePerPerson(p.MonthlyIncome, h.HouseholdSize)
		p.DependencyRatio = dependencyRatio(h.NumberOfDependents, h.HouseholdSize)
	}

	if hs := sub.Health; hs != nil {
		disability := defaultStatus(hs.DisabilityStatus)
		chronic := defaultStatus(hs.ChronicIllnessStatus)
		p.DisabilityStatus = &disability
		p.ChronicIllnessStatus = &chronic
		p.RequiresMedicalCare = domain.StringPtr(strconv.FormatBool(disability != domain.NoneStatus || chronic != domain.NoneStatus))
	}

	if e := sub.Employment; e != nil {
		p.EmploymentStatus = optional(e.EmploymentStatus)
		p.EmploymentSector = optional(e.EmploymentSector)
		p.SocialSecurityNumber = optional(e.SocialSecurityNumber)
	}

	if d := sub.Documentation; d != nil {
		p.HasValidID = d.HasValidID
		p.HasProofOfResidence = d.HasProofOfResidence
		p.HasIncomeDocuments = d.HasIncomeDocuments
	}

	score := domain.ComputeVulnerabilityScore(p)
	p.VulnerabilityScore = domain.StringPtr(strconv.Itoa(score))
	p.IsVulnerable = domain.StringPtr(strconv.FormatBool(score >= domain.VulnerableThreshold))

	result := validation.Validate(p)
	if err := result.Err(); err != nil {
		return domain.EligibilityParams{}, err
	}
	return result.Data, nil
}

// FromFormSteps runs the form-step pathway: the household step clamps
// dependents before the submission is flattened and validated.
func FromFormSteps(sub domain.FormSubmission) (domain.EligibilityParams, error) {
	if sub.Household != nil {
		clamped := ClampHousehold(*sub.Household)
		sub.Household = &clamped
	}
	return ToEligibilityParams(sub)
}

// ClampHousehold is the household form step's correction: the applicant is
// part of the household, so dependents are capped at householdSize-1.
// Unparseable values are left for the validator to report.
func ClampHousehold(h domain.HouseholdSection) domain.HouseholdSection {
	size, err := strconv.Atoi(strings.TrimSpace(h.HouseholdSize))
	if err != nil || size <= 0 {
		return h
	}
	deps, err := strconv.Atoi(strings.TrimSpace(h.NumberOfDependents))
	if err != nil {
		return h
	}
	if limit := size - 1; deps > limit {
		h.NumberOfDependents = strconv.Itoa(limit)
	}
	return h
}

func incomePerPerson(monthlyIncome *string, householdSize string) *string {
	if monthlyIncome == nil {
		return nil
	}
	income, err := decimal.NewFromString(strings.TrimSpace(*monthlyIncome))
	if err != nil {
		return nil
	}
	size, err := decimal.NewFromString(strings.TrimSpace(householdSize))
	if err != nil || !size.IsPositive() {
		return nil
	}
	return domain.StringPtr(income.Div(size).String())
}

func dependencyRatio(dependents, householdSize string) *string {
	size, err := decimal.NewFromString(strings.TrimSpace(householdSize))
	if err != nil || !size.IsPositive() {
		return domain.StringPtr("0")
	}
	deps, err := decimal.NewFromString(strings.TrimSpace(dependents))
	if err != nil {
		return nil
	}
	return domain.StringPtr(deps.Div(size).String())
}

func defaultStatus(status string) string {
	if strings.TrimSpace(status) == "" {
		return domain.NoneStatus
	}
	return status
}

func optional(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
