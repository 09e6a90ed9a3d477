package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Beneficiary is the attribute record used by the flat program model, where
// benefit conditions name beneficiary attributes directly.
type Beneficiary struct {
	Age                  int             `yaml:"age" json:"age"`
	Gender               string          `yaml:"gender,omitempty" json:"gender,omitempty"`
	CountryCode          string          `yaml:"country_code,omitempty" json:"countryCode,omitempty"`
	CountryOfOrigin      string          `yaml:"country_of_origin,omitempty" json:"countryOfOrigin,omitempty"`
	Region               string          `yaml:"region,omitempty" json:"region,omitempty"`
	HouseholdSize        int             `yaml:"household_size,omitempty" json:"householdSize,omitempty"`
	NumberOfDependents   int             `yaml:"number_of_dependents,omitempty" json:"numberOfDependents,omitempty"`
	MonthlyIncome        decimal.Decimal `yaml:"monthly_income,omitempty" json:"monthlyIncome"`
	EmploymentStatus     string          `yaml:"employment_status,omitempty" json:"employmentStatus,omitempty"`
	DisabilityStatus     string          `yaml:"disability_status,omitempty" json:"disabilityStatus,omitempty"`
	ChronicIllnessStatus string          `yaml:"chronic_illness_status,omitempty" json:"chronicIllnessStatus,omitempty"`
}

// Attribute returns a beneficiary attribute by name in string form. Names are
// matched in any casing convention; unknown names report false.
func (b Beneficiary) Attribute(name string) (string, bool) {
	switch strings.ToLower(NormalizeKey(name)) {
	case "age":
		return strconv.Itoa(b.Age), true
	case "gender":
		return b.Gender, true
	case "countrycode":
		return b.CountryCode, true
	case "countryoforigin":
		return b.CountryOfOrigin, true
	case "region":
		return b.Region, true
	case "householdsize":
		return strconv.Itoa(b.HouseholdSize), true
	case "numberofdependents":
		return strconv.Itoa(b.NumberOfDependents), true
	case "monthlyincome":
		return b.MonthlyIncome.String(), true
	case "employmentstatus":
		return b.EmploymentStatus, true
	case "disabilitystatus":
		return b.DisabilityStatus, true
	case "chronicillnessstatus":
		return b.ChronicIllnessStatus, true
	}
	return "", false
}

// BeneficiaryFromParams builds the flat beneficiary record from normalized
// params. Unparseable numbers are left at zero.
func BeneficiaryFromParams(p EligibilityParams) Beneficiary {
	b := Beneficiary{
		Gender:               deref(p.Gender),
		CountryCode:          deref(p.CountryOfResidence),
		CountryOfOrigin:      deref(p.CountryOfOrigin),
		Region:               deref(p.Region),
		EmploymentStatus:     deref(p.EmploymentStatus),
		DisabilityStatus:     deref(p.DisabilityStatus),
		ChronicIllnessStatus: deref(p.ChronicIllnessStatus),
	}
	b.Age, _ = strconv.Atoi(strings.TrimSpace(deref(p.Age)))
	b.HouseholdSize, _ = strconv.Atoi(strings.TrimSpace(deref(p.HouseholdSize)))
	b.NumberOfDependents, _ = strconv.Atoi(strings.TrimSpace(deref(p.NumberOfDependents)))
	if income, err := decimal.NewFromString(strings.TrimSpace(deref(p.MonthlyIncome))); err == nil {
		b.MonthlyIncome = income
	}
	return b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
