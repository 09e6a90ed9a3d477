package domain

import (
	"strconv"
	"strings"
	"unicode"
)

// EligibilityParams is the flat, normalized record consumed by eligibility and
// benefit rules. Numeric fields are carried as decimal strings, the way they
// arrive from form input, and are parsed at evaluation time. A nil field is
// "not provided".
type EligibilityParams struct {
	// Identity and demographics
	Age                *string `json:"age,omitempty"`
	Gender             *string `json:"gender,omitempty"`
	CountryOfResidence *string `json:"countryOfResidence,omitempty"`
	CountryOfOrigin    *string `json:"countryOfOrigin,omitempty"`
	Region             *string `json:"region,omitempty"`

	// Household
	HouseholdSize            *string `json:"householdSize,omitempty"`
	NumberOfDependents       *string `json:"numberOfDependents,omitempty"`
	TypeOfDependents         *string `json:"typeOfDependents,omitempty"`
	MonthlyIncome            *string `json:"monthlyIncome,omitempty"`
	HouseholdIncomePerPerson *string `json:"householdIncomePerPerson,omitempty"`
	DependencyRatio          *string `json:"dependencyRatio,omitempty"`

	// Employment
	EmploymentStatus     *string `json:"employmentStatus,omitempty"`
	EmploymentSector     *string `json:"employmentSector,omitempty"`
	SocialSecurityNumber *string `json:"socialSecurityNumber,omitempty"`

	// Health
	DisabilityStatus     *string `json:"disabilityStatus,omitempty"`
	ChronicIllnessStatus *string `json:"chronicIllnessStatus,omitempty"`
	RequiresMedicalCare  *string `json:"requiresMedicalCare,omitempty"`

	// Documentation
	HasValidID          *bool `json:"hasValidID,omitempty"`
	HasProofOfResidence *bool `json:"hasProofOfResidence,omitempty"`
	HasIncomeDocuments  *bool `json:"hasIncomeDocuments,omitempty"`

	// Derived
	VulnerabilityScore *string `json:"vulnerabilityScore,omitempty"`
	IsVulnerable       *string `json:"isVulnerable,omitempty"`
}

// NoneStatus is the health-status sentinel meaning "no condition".
const NoneStatus = "1"

// Field identifies one EligibilityParams field. Rules resolve their string
// keys to a Field once; evaluation never indexes the record dynamically.
type Field int

const (
	FieldUnknown Field = iota
	FieldAge
	FieldGender
	FieldCountryOfResidence
	FieldCountryOfOrigin
	FieldRegion
	FieldHouseholdSize
	FieldNumberOfDependents
	FieldTypeOfDependents
	FieldMonthlyIncome
	FieldHouseholdIncomePerPerson
	FieldDependencyRatio
	FieldEmploymentStatus
	FieldEmploymentSector
	FieldSocialSecurityNumber
	FieldDisabilityStatus
	FieldChronicIllnessStatus
	FieldRequiresMedicalCare
	FieldHasValidID
	FieldHasProofOfResidence
	FieldHasIncomeDocuments
	FieldVulnerabilityScore
	FieldIsVulnerable
)

var fieldNames = map[Field]string{
	FieldAge:                      "age",
	FieldGender:                   "gender",
	FieldCountryOfResidence:       "countryOfResidence",
	FieldCountryOfOrigin:          "countryOfOrigin",
	FieldRegion:                   "region",
	FieldHouseholdSize:            "householdSize",
	FieldNumberOfDependents:       "numberOfDependents",
	FieldTypeOfDependents:         "typeOfDependents",
	FieldMonthlyIncome:            "monthlyIncome",
	FieldHouseholdIncomePerPerson: "householdIncomePerPerson",
	FieldDependencyRatio:          "dependencyRatio",
	FieldEmploymentStatus:         "employmentStatus",
	FieldEmploymentSector:         "employmentSector",
	FieldSocialSecurityNumber:     "socialSecurityNumber",
	FieldDisabilityStatus:         "disabilityStatus",
	FieldChronicIllnessStatus:     "chronicIllnessStatus",
	FieldRequiresMedicalCare:      "requiresMedicalCare",
	FieldHasValidID:               "hasValidID",
	FieldHasProofOfResidence:      "hasProofOfResidence",
	FieldHasIncomeDocuments:       "hasIncomeDocuments",
	FieldVulnerabilityScore:       "vulnerabilityScore",
	FieldIsVulnerable:             "isVulnerable",
}

// fieldsByKey is keyed by the lower-cased canonical name so that "hasValidID",
// "has_valid_id" and "HasValidId" all resolve to the same field.
var fieldsByKey = func() map[string]Field {
	m := make(map[string]Field, len(fieldNames))
	for f, name := range fieldNames {
		m[strings.ToLower(name)] = f
	}
	return m
}()

// String returns the canonical camelCase name of the field.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return "unknown"
}

// FieldByKey resolves a rule key in any casing convention to a declared field.
func FieldByKey(key string) (Field, bool) {
	f, ok := fieldsByKey[strings.ToLower(NormalizeKey(key))]
	return f, ok
}

// Lookup returns the value of a field as a string. Documentation booleans are
// coerced to "true"/"false". The second result is false when the field is
// unknown or not provided.
func (p EligibilityParams) Lookup(f Field) (string, bool) {
	var v *string
	switch f {
	case FieldAge:
		v = p.Age
	case FieldGender:
		v = p.Gender
	case FieldCountryOfResidence:
		v = p.CountryOfResidence
	case FieldCountryOfOrigin:
		v = p.CountryOfOrigin
	case FieldRegion:
		v = p.Region
	case FieldHouseholdSize:
		v = p.HouseholdSize
	case FieldNumberOfDependents:
		v = p.NumberOfDependents
	case FieldTypeOfDependents:
		v = p.TypeOfDependents
	case FieldMonthlyIncome:
		v = p.MonthlyIncome
	case FieldHouseholdIncomePerPerson:
		v = p.HouseholdIncomePerPerson
	case FieldDependencyRatio:
		v = p.DependencyRatio
	case FieldEmploymentStatus:
		v = p.EmploymentStatus
	case FieldEmploymentSector:
		v = p.EmploymentSector
	case FieldSocialSecurityNumber:
		v = p.SocialSecurityNumber
	case FieldDisabilityStatus:
		v = p.DisabilityStatus
	case FieldChronicIllnessStatus:
		v = p.ChronicIllnessStatus
	case FieldRequiresMedicalCare:
		v = p.RequiresMedicalCare
	case FieldHasValidID:
		return boolString(p.HasValidID)
	case FieldHasProofOfResidence:
		return boolString(p.HasProofOfResidence)
	case FieldHasIncomeDocuments:
		return boolString(p.HasIncomeDocuments)
	case FieldVulnerabilityScore:
		v = p.VulnerabilityScore
	case FieldIsVulnerable:
		v = p.IsVulnerable
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

// FieldByName resolves a key that is already in canonical camelCase, as
// produced by NormalizeKey. Matching ignores case only.
func FieldByName(name string) (Field, bool) {
	f, ok := fieldsByKey[strings.ToLower(name)]
	return f, ok
}

// LookupKey is Lookup for a rule key.
func (p EligibilityParams) LookupKey(key string) (string, bool) {
	f, ok := FieldByKey(key)
	if !ok {
		return "", false
	}
	return p.Lookup(f)
}

func boolString(b *bool) (string, bool) {
	if b == nil {
		return "", false
	}
	return strconv.FormatBool(*b), true
}

// NormalizeKey converts snake_case, kebab-case, space separated and
// PascalCase keys to lowerCamelCase. Already-camel keys pass through with
// only their first rune lowered; all-caps parts are lowered whole.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	parts := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '.'
	})
	var b strings.Builder
	for i, part := range parts {
		if strings.ToUpper(part) == part {
			part = strings.ToLower(part)
		}
		runes := []rune(part)
		if i == 0 {
			runes[0] = unicode.ToLower(runes[0])
		} else {
			runes[0] = unicode.ToUpper(runes[0])
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
