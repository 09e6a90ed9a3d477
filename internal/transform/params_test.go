package transform

import (
	"errors"
	"testing"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSubmission() domain.FormSubmission {
	return domain.FormSubmission{
		Basic: domain.BasicSection{
			Age:                "34",
			Gender:             "female",
			CountryOfResidence: "JO",
		},
	}
}

func TestToEligibilityParams_BasicOnly(t *testing.T) {
	p, err := ToEligibilityParams(baseSubmission())
	require.NoError(t, err)

	assert.Equal(t, "34", *p.Age)
	assert.Equal(t, "female", *p.Gender)
	assert.Equal(t, "JO", *p.CountryOfResidence)
	assert.Nil(t, p.HouseholdSize)
	assert.Nil(t, p.DisabilityStatus, "health defaults only apply when the section is present")
	assert.Nil(t, p.HasValidID)
	assert.Equal(t, "0", *p.VulnerabilityScore)
	assert.Equal(t, "false", *p.IsVulnerable)
}

func TestToEligibilityParams_HouseholdDerivations(t *testing.T) {
	sub := baseSubmission()
	sub.Household = &domain.HouseholdSection{
		HouseholdSize:      "4",
		NumberOfDependents: "2",
		MonthlyIncome:      "800",
	}

	p, err := ToEligibilityParams(sub)
	require.NoError(t, err)

	require.NotNil(t, p.HouseholdIncomePerPerson)
	assert.Equal(t, "200", *p.HouseholdIncomePerPerson)
	require.NotNil(t, p.DependencyRatio)
	assert.Equal(t, "0.5", *p.DependencyRatio)
	assert.Equal(t, "800", *p.MonthlyIncome)
}

func TestToEligibilityParams_NoIncomeLeavesPerPersonUnset(t *testing.T) {
	sub := baseSubmission()
	sub.Household = &domain.HouseholdSection{HouseholdSize: "3", NumberOfDependents: "1"}

	p, err := ToEligibilityParams(sub)
	require.NoError(t, err)

	assert.Nil(t, p.MonthlyIncome)
	assert.Nil(t, p.HouseholdIncomePerPerson)
}

func TestDependencyRatio_NonPositiveHousehold(t *testing.T) {
	assert.Equal(t, "0", *dependencyRatio("2", "0"))
	assert.Equal(t, "0", *dependencyRatio("2", "-3"))
	assert.Nil(t, incomePerPerson(domain.StringPtr("500"), "0"))
}

func TestToEligibilityParams_HealthDefaults(t *testing.T) {
	tests := []struct {
		name        string
		health      domain.HealthSection
		disability  string
		chronic     string
		medicalCare string
	}{
		{"empty section", domain.HealthSection{}, "1", "1", "false"},
		{"disability only", domain.HealthSection{DisabilityStatus: "3"}, "3", "1", "true"},
		{"chronic only", domain.HealthSection{ChronicIllnessStatus: "2"}, "1", "2", "true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := baseSubmission()
			health := tt.health
			sub.Health = &health

			p, err := ToEligibilityParams(sub)
			require.NoError(t, err)

			assert.Equal(t, tt.disability, *p.DisabilityStatus)
			assert.Equal(t, tt.chronic, *p.ChronicIllnessStatus)
			assert.Equal(t, tt.medicalCare, *p.RequiresMedicalCare)
		})
	}
}

func TestToEligibilityParams_EmploymentAndDocumentsCopiedVerbatim(t *testing.T) {
	sub := baseSubmission()
	sub.Employment = &domain.EmploymentSection{EmploymentStatus: "Unemployed"}
	sub.Documentation = &domain.DocumentationSection{HasValidID: domain.BoolPtr(true)}

	p, err := ToEligibilityParams(sub)
	require.NoError(t, err)

	assert.Equal(t, "Unemployed", *p.EmploymentStatus)
	assert.Nil(t, p.EmploymentSector)
	require.NotNil(t, p.HasValidID)
	assert.True(t, *p.HasValidID)
	assert.Nil(t, p.HasProofOfResidence, "absent documents stay absent")
}

func TestToEligibilityParams_Vulnerability(t *testing.T) {
	sub := baseSubmission()
	sub.Basic.Age = "67"
	sub.Health = &domain.HealthSection{DisabilityStatus: "2"}
	sub.Employment = &domain.EmploymentSection{EmploymentStatus: "unemployed"}

	p, err := ToEligibilityParams(sub)
	require.NoError(t, err)

	assert.Equal(t, "3", *p.VulnerabilityScore)
	assert.Equal(t, "true", *p.IsVulnerable)
}

func TestToEligibilityParams_RegionFromPreferences(t *testing.T) {
	sub := baseSubmission()
	sub.Preferences = &domain.PreferencesSection{Region: "Irbid"}

	p, err := ToEligibilityParams(sub)
	require.NoError(t, err)
	assert.Equal(t, "Irbid", *p.Region)

	sub.Basic.Region = "Amman"
	p, err = ToEligibilityParams(sub)
	require.NoError(t, err)
	assert.Equal(t, "Amman", *p.Region, "basic region wins over preferences")
}

func TestToEligibilityParams_ValidationFailureJoinsMessages(t *testing.T) {
	sub := baseSubmission()
	sub.Basic.Age = "130"
	sub.Household = &domain.HouseholdSection{HouseholdSize: "3", NumberOfDependents: "5"}

	_, err := ToEligibilityParams(sub)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Contains(t, err.Error(), "age must be between 0 and 120; numberOfDependents (5) cannot exceed householdSize (3)")
}

func TestClampHousehold(t *testing.T) {
	tests := []struct {
		name string
		in   domain.HouseholdSection
		want string
	}{
		{"over limit", domain.HouseholdSection{HouseholdSize: "3", NumberOfDependents: "5"}, "2"},
		{"at limit", domain.HouseholdSection{HouseholdSize: "3", NumberOfDependents: "2"}, "2"},
		{"single person", domain.HouseholdSection{HouseholdSize: "1", NumberOfDependents: "1"}, "0"},
		{"unparseable size", domain.HouseholdSection{HouseholdSize: "abc", NumberOfDependents: "5"}, "5"},
		{"zero size", domain.HouseholdSection{HouseholdSize: "0", NumberOfDependents: "5"}, "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampHousehold(tt.in)
			assert.Equal(t, tt.want, got.NumberOfDependents)
			assert.Equal(t, tt.in.HouseholdSize, got.HouseholdSize)
		})
	}
}

func TestFromFormSteps_ClampsBeforeValidation(t *testing.T) {
	sub := baseSubmission()
	sub.Household = &domain.HouseholdSection{HouseholdSize: "3", NumberOfDependents: "5"}

	_, err := ToEligibilityParams(sub)
	require.Error(t, err, "direct pathway rejects")

	p, err := FromFormSteps(sub)
	require.NoError(t, err, "form pathway clamps")
	assert.Equal(t, "2", *p.NumberOfDependents)
	assert.Equal(t, "5", sub.Household.NumberOfDependents, "caller's submission is untouched")
}
