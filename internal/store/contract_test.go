package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleProgram(name, country string) domain.Program {
	requirements := "municipal registration"
	return domain.Program{
		Name:             name,
		Category:         domain.CategorySocialAssistance,
		CountryCode:      country,
		Active:           true,
		MinimumBenefit:   decPtr("123.45"),
		BenefitFrequency: "monthly",
		EligibilityRules: []domain.EligibilityRule{
			{RuleType: "household_size", Operator: ">=", Value: "3", Priority: 2, Active: true},
			{RuleType: "age_range", Operator: "between", Value: "18,65", Priority: 1, Active: true},
			{RuleType: "gender", Operator: "===", Value: "female", Priority: 0, Active: false},
		},
		BenefitRules: []domain.BenefitRule{
			{ConditionType: "number_of_dependents", Operator: ">", ThresholdValue: "2", BenefitModifier: decimal.NewFromInt(25), ModifierType: "add", Priority: 1, Active: true},
		},
		BenefitConditions: []domain.BenefitCondition{
			{BenefitType: "cash", ConditionField: "household_size", ConditionOperator: ">=", ConditionValue: "4", BenefitAmount: decimal.NewFromInt(10), Active: true},
		},
		RequiredDocuments: []domain.RequiredDocument{
			{
				DocumentType:        "valid_id",
				IsMandatory:         true,
				AlternativesAllowed: true,
				Active:              true,
				Alternatives:        []domain.DocumentAlternative{{AlternativeType: "proof_of_residence"}},
			},
		},
		GeographicCoverage: []domain.GeographicCoverage{
			{Region: "Amman", CoverageType: "full", Active: true},
			{Region: "Zarqa", CoverageType: "partial", SpecialRequirements: &requirements, Active: true},
			{Region: "Irbid", CoverageType: "full", Active: false},
		},
	}
}

// runStoreContract exercises the behavior every ProgramStore must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) ProgramStore) {
	ctx := context.Background()

	t.Run("add and list", func(t *testing.T) {
		s := newStore(t)

		added, err := s.AddProgram(ctx, sampleProgram("Cash Support", "jo"))
		require.NoError(t, err)
		require.NotEmpty(t, added.ID)
		for _, r := range added.EligibilityRules {
			assert.NotEmpty(t, r.ID)
		}

		inactive := sampleProgram("Retired Scheme", "JO")
		inactive.Active = false
		_, err = s.AddProgram(ctx, inactive)
		require.NoError(t, err)

		_, err = s.AddProgram(ctx, sampleProgram("Lebanon Support", "LB"))
		require.NoError(t, err)

		programs, err := s.ListActivePrograms(ctx, "JO")
		require.NoError(t, err)
		require.Len(t, programs, 1)

		p := programs[0]
		assert.Equal(t, "Cash Support", p.Name)
		require.Len(t, p.EligibilityRules, 2, "inactive rules are not returned")
		assert.Equal(t, "ageRange", p.EligibilityRules[0].RuleType, "rules are prepared and ordered by priority")
		assert.Equal(t, domain.OpBetween, p.EligibilityRules[0].Operator)
		assert.Equal(t, "householdSize", p.EligibilityRules[1].RuleType)
		require.Len(t, p.BenefitRules, 1)
		assert.True(t, p.BenefitRules[0].BenefitModifier.Equal(decimal.NewFromInt(25)))
		require.Len(t, p.BenefitConditions, 1)
		require.Len(t, p.RequiredDocuments, 1)
		require.Len(t, p.RequiredDocuments[0].Alternatives, 1)
		assert.Equal(t, "proof_of_residence", p.RequiredDocuments[0].Alternatives[0].AlternativeType)
		require.Len(t, p.GeographicCoverage, 2)
		require.NotNil(t, p.MinimumBenefit)
		assert.True(t, p.MinimumBenefit.Equal(decimal.RequireFromString("123.45")))
		assert.Nil(t, p.MaximumBenefit)

		all, err := s.ListAllActivePrograms(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("get program", func(t *testing.T) {
		s := newStore(t)
		added, err := s.AddProgram(ctx, sampleProgram("Cash Support", "JO"))
		require.NoError(t, err)

		got, err := s.GetProgram(ctx, added.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cash Support", got.Name)

		_, err = s.GetProgram(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("MEB", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetMEB(ctx, "JO")
		assert.True(t, errors.Is(err, domain.ErrNotFound), "no default basket")

		require.NoError(t, s.SaveMEB(ctx, domain.MEBValue{CountryCode: "JO", Amount: decimal.NewFromInt(300)}))
		require.NoError(t, s.SaveMEB(ctx, domain.MEBValue{CountryCode: "jo", Amount: decimal.NewFromInt(350)}))

		meb, err := s.GetMEB(ctx, "jo")
		require.NoError(t, err)
		assert.True(t, meb.Amount.Equal(decimal.NewFromInt(350)), "second save replaces the first")
	})

	t.Run("COLA", func(t *testing.T) {
		s := newStore(t)
		program := sampleProgram("Cash Support", "JO")
		program.MaximumBenefit = decPtr("200")
		added, err := s.AddProgram(ctx, program)
		require.NoError(t, err)

		effective := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
		adj, err := s.ApplyCOLA(ctx, added.ID, decimal.RequireFromString("0.032"), effective)
		require.NoError(t, err)
		assert.Equal(t, 2026, adj.Year)
		assert.NotEmpty(t, adj.ID)

		got, err := s.GetProgram(ctx, added.ID)
		require.NoError(t, err)
		assert.True(t, got.MinimumBenefit.Equal(decimal.RequireFromString("127.4")), "got %s", got.MinimumBenefit)
		assert.True(t, got.MaximumBenefit.Equal(decimal.RequireFromString("206.4")), "got %s", got.MaximumBenefit)

		history, err := s.ListAdjustments(ctx, added.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.True(t, history[0].AdjustmentRate.Equal(decimal.RequireFromString("0.032")))
		assert.True(t, history[0].EffectiveDate.Equal(effective))

		_, err = s.ApplyCOLA(ctx, "missing", decimal.RequireFromString("0.01"), effective)
		assert.True(t, errors.Is(err, domain.ErrNotFound))

		_, err = s.ListAdjustments(ctx, "missing")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
