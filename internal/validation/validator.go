// Package validation schema-checks normalized eligibility params. It is a pure
// gate: it never mutates its input and never touches a data store.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	minAge = 0
	maxAge = 120
)

// Result is the outcome of validating one params record.
type Result struct {
	Valid  bool
	Data   domain.EligibilityParams
	Issues []domain.FieldIssue
}

// Err returns nil for a valid result, otherwise a *domain.ValidationError
// listing every issue.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return domain.NewValidationError(r.Issues...)
}

// Validate checks numeric ranges and cross-field consistency. Every violated
// constraint contributes one issue.
func Validate(p domain.EligibilityParams) Result {
	var issues []domain.FieldIssue
	add := func(field, format string, args ...any) {
		issues = append(issues, domain.FieldIssue{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Required identity fields
	if p.Age == nil {
		add("age", "age is required")
	} else if age, err := parseDecimal(*p.Age); err != nil {
		add("age", "age must be a number")
	} else if age.LessThan(decimal.NewFromInt(minAge)) || age.GreaterThan(decimal.NewFromInt(maxAge)) {
		add("age", "age must be between %d and %d", minAge, maxAge)
	}
	if p.Gender == nil || strings.TrimSpace(*p.Gender) == "" {
		add("gender", "gender is required")
	}
	if p.CountryOfResidence == nil || strings.TrimSpace(*p.CountryOfResidence) == "" {
		add("countryOfResidence", "countryOfResidence is required")
	}

	// Household
	householdSize, sizeOK := 0, false
	if p.HouseholdSize != nil {
		n, err := strconv.Atoi(strings.TrimSpace(*p.HouseholdSize))
		if err != nil || n <= 0 {
			add("householdSize", "householdSize must be a positive integer")
		} else {
			householdSize, sizeOK = n, true
		}
	}
	dependents, depsOK := 0, false
	if p.NumberOfDependents != nil {
		n, err := strconv.Atoi(strings.TrimSpace(*p.NumberOfDependents))
		if err != nil || n < 0 {
			add("numberOfDependents", "numberOfDependents must be a non-negative integer")
		} else {
			dependents, depsOK = n, true
		}
	}
	if sizeOK && depsOK && dependents > householdSize {
		add("numberOfDependents", "numberOfDependents (%d) cannot exceed householdSize (%d)", dependents, householdSize)
	}

	// Derived numeric fields must at least be numbers when present
	numeric := []struct {
		name  string
		value *string
	}{
		{"monthlyIncome", p.MonthlyIncome},
		{"householdIncomePerPerson", p.HouseholdIncomePerPerson},
		{"dependencyRatio", p.DependencyRatio},
	}
	for _, f := range numeric {
		if f.value == nil {
			continue
		}
		if _, err := parseDecimal(*f.value); err != nil {
			add(f.name, "%s must be a number", f.name)
		}
	}

	if p.RequiresMedicalCare != nil && *p.RequiresMedicalCare != "true" && *p.RequiresMedicalCare != "false" {
		add("requiresMedicalCare", "requiresMedicalCare must be \"true\" or \"false\"")
	}

	return Result{
		Valid:  len(issues) == 0,
		Data:   p,
		Issues: issues,
	}
}

// parseDecimal accepts plain decimal strings such as "42", "-1" or "12.50".
// Exponents, hex floats, NaN and Inf are rejected.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "eE") {
		return decimal.Decimal{}, fmt.Errorf("%q is not a decimal number", s)
	}
	return decimal.NewFromString(s)
}
