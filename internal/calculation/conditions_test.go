package calculation

import (
	"errors"
	"testing"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func flatProgram() domain.Program {
	return domain.PrepareProgram(domain.Program{
		ID:                        "flat-1",
		CountryCode:               "JO",
		AgeMinimum:                intPtr(18),
		AgeMaximum:                intPtr(64),
		CashTransfer:              true,
		CashTransferMonthlyAmount: dec("100"),
		InKindTransfer:            false,
		InKindDollarValueAmt:      dec("40"),
		BenefitConditions: []domain.BenefitCondition{
			{ID: "c-1", BenefitType: "cash", ConditionField: "household_size", ConditionOperator: ">=", ConditionValue: "4", BenefitAmount: dec("25"), Active: true},
			{ID: "c-2", BenefitType: "in_kind", ConditionField: "disability_status", ConditionOperator: "!==", ConditionValue: "1", BenefitAmount: dec("30"), Active: true},
			{ID: "c-3", BenefitType: "cash", ConditionField: "employment_status", ConditionOperator: "===", ConditionValue: "Unemployed", BenefitAmount: dec("15"), Active: true},
			{ID: "c-4", BenefitType: "cash", ConditionField: "age", ConditionOperator: ">", ConditionValue: "0", BenefitAmount: dec("999"), Active: false},
		},
	})
}

func TestCalculateConditionBenefits_Additive(t *testing.T) {
	b := domain.Beneficiary{
		Age:              40,
		CountryCode:      "jo",
		HouseholdSize:    5,
		DisabilityStatus: "2",
		EmploymentStatus: "unemployed",
	}

	got := CalculateConditionBenefits(flatProgram(), b, nil)

	assert.True(t, got.Eligible)
	assert.Equal(t, "flat-1", got.ProgramID)
	assert.True(t, got.CashAmount.Equal(dec("140")), "100 base + 25 + 15, got %s", got.CashAmount)
	assert.True(t, got.InKindAmount.Equal(dec("30")), "in-kind base is off, only the condition adds, got %s", got.InKindAmount)
	assert.True(t, got.TotalAmount.Equal(dec("170")))
}

func TestCalculateConditionBenefits_OrderIndependent(t *testing.T) {
	b := domain.Beneficiary{Age: 40, CountryCode: "JO", HouseholdSize: 5, DisabilityStatus: "2", EmploymentStatus: "unemployed"}

	program := flatProgram()
	reversed := program.DeepCopy()
	for i, j := 0, len(reversed.BenefitConditions)-1; i < j; i, j = i+1, j-1 {
		reversed.BenefitConditions[i], reversed.BenefitConditions[j] = reversed.BenefitConditions[j], reversed.BenefitConditions[i]
	}

	assert.True(t, CalculateConditionBenefits(program, b, nil).TotalAmount.Equal(CalculateConditionBenefits(reversed, b, nil).TotalAmount))
}

func TestCalculateConditionBenefits_IneligibleGetsNothing(t *testing.T) {
	b := domain.Beneficiary{Age: 70, CountryCode: "JO", HouseholdSize: 5}

	got := CalculateConditionBenefits(flatProgram(), b, nil)

	assert.False(t, got.Eligible)
	assert.True(t, got.TotalAmount.IsZero())
}

func TestMeetsBaseThresholds(t *testing.T) {
	female := "female"
	anyStatus := "any"
	program := domain.Program{
		CountryCode:         "JO",
		AgeMinimum:          intPtr(18),
		HouseholdSize:       intPtr(2),
		Gender:              &female,
		EmploymentStatus:    &anyStatus,
		CitizenshipRequired: true,
	}
	base := domain.Beneficiary{Age: 30, Gender: "Female", CountryCode: "JO", HouseholdSize: 3, EmploymentStatus: "employed"}

	assert.True(t, MeetsBaseThresholds(program, base))

	tests := []struct {
		name   string
		mutate func(b *domain.Beneficiary)
	}{
		{"too young", func(b *domain.Beneficiary) { b.Age = 17 }},
		{"wrong gender", func(b *domain.Beneficiary) { b.Gender = "male" }},
		{"household too small", func(b *domain.Beneficiary) { b.HouseholdSize = 1 }},
		{"other country", func(b *domain.Beneficiary) { b.CountryCode = "LB" }},
		{"foreign origin", func(b *domain.Beneficiary) { b.CountryOfOrigin = "SY" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := base
			tt.mutate(&b)
			assert.False(t, MeetsBaseThresholds(program, b))
		})
	}
}

func TestEvaluateCondition(t *testing.T) {
	b := domain.Beneficiary{Age: 30, Gender: "female", MonthlyIncome: dec("450.50")}

	tests := []struct {
		name string
		cond domain.BenefitCondition
		want bool
	}{
		{"numeric less than", domain.BenefitCondition{ConditionField: "monthlyIncome", ConditionOperator: "<", ConditionValue: "500"}, true},
		{"numeric equality", domain.BenefitCondition{ConditionField: "age", ConditionOperator: "===", ConditionValue: "30.0"}, true},
		{"string equality ignores case", domain.BenefitCondition{ConditionField: "gender", ConditionOperator: "===", ConditionValue: "Female"}, true},
		{"not equal", domain.BenefitCondition{ConditionField: "gender", ConditionOperator: "!==", ConditionValue: "male"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EvaluateCondition(tt.cond, b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := EvaluateCondition(domain.BenefitCondition{ConditionField: "gender", ConditionOperator: ">", ConditionValue: "3"}, b)
	assert.True(t, errors.Is(err, domain.ErrEvaluation))

	_, err = EvaluateCondition(domain.BenefitCondition{ConditionField: "eye_colour", ConditionOperator: "===", ConditionValue: "blue"}, b)
	assert.True(t, errors.Is(err, domain.ErrEvaluation))
}
