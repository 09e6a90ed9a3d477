package domain

import (
	"github.com/shopspring/decimal"
)

// ProgramMatch is one program evaluated against a beneficiary.
type ProgramMatch struct {
	Program               Program         `json:"program"`
	EligibilityScore      float64         `json:"eligibilityScore"`
	CalculatedBenefit     decimal.Decimal `json:"calculatedBenefit"`
	DocumentationStatus   map[string]bool `json:"documentationStatus"`
	GeographicEligibility bool            `json:"geographicEligibility"`
}

// Qualifies reports whether the match counts towards total benefits.
func (m ProgramMatch) Qualifies() bool {
	return m.EligibilityScore > 0 && m.GeographicEligibility
}

// GapAnalysis compares total monthly benefits with the country's MEB.
type GapAnalysis struct {
	TotalBenefits decimal.Decimal `json:"totalBenefits"`
	MEBAmount     decimal.Decimal `json:"mebAmount"`
	Gap           decimal.Decimal `json:"gap"`
	Coverage      decimal.Decimal `json:"coverage"` // percent, not clamped at 100
}

// BenefitRange is the min/max benefit bounds of a program.
type BenefitRange struct {
	Min *decimal.Decimal `json:"min,omitempty"`
	Max *decimal.Decimal `json:"max,omitempty"`
}

// EnhancedProgram is a program with metadata derived for listings.
type EnhancedProgram struct {
	Program                Program      `json:"program"`
	DocumentCount          int          `json:"documentCount"`
	MandatoryDocumentCount int          `json:"mandatoryDocumentCount"`
	ActiveRuleCount        int          `json:"activeRuleCount"`
	ActiveBenefitRuleCount int          `json:"activeBenefitRuleCount"`
	BenefitRange           BenefitRange `json:"benefitRange"`
	CoveredRegions         []string     `json:"coveredRegions"`
}

// EligibilityCalculation is the result of the flat program+beneficiary path.
type EligibilityCalculation struct {
	ProgramID    string          `json:"programId"`
	Eligible     bool            `json:"eligible"`
	CashAmount   decimal.Decimal `json:"cashAmount"`
	InKindAmount decimal.Decimal `json:"inKindAmount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}
