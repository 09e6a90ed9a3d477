package calculation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngine(t *testing.T) {
	engine := NewEngine()

	assert.NotNil(t, engine, "Should create engine")
	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.Equal(t, DefaultWorkers, engine.Workers)
}

func TestEngine_SetLogger(t *testing.T) {
	engine := NewEngine()

	customLogger := &TestLogger{}
	engine.SetLogger(customLogger)
	assert.Equal(t, customLogger, engine.Logger, "Should set custom logger")

	// nil installs the no-op logger
	engine.SetLogger(nil)
	assert.NotNil(t, engine.Logger, "Should not be nil")
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func catalog() []domain.Program {
	national := []domain.GeographicCoverage{{Region: "national", CoverageType: "full", Active: true}}
	return []domain.Program{
		domain.PrepareProgram(domain.Program{
			ID:               "cash",
			MinimumBenefit:   decPtr("100"),
			BenefitFrequency: "monthly",
			EligibilityRules: []domain.EligibilityRule{
				{ID: "r1", RuleType: "age", Operator: ">=", Value: "18", Active: true},
				{ID: "r2", RuleType: "employment_status", Operator: "===", Value: "unemployed", Active: true},
			},
			GeographicCoverage: national,
		}),
		domain.PrepareProgram(domain.Program{
			ID:               "pension",
			Category:         domain.CategoryPension,
			MinimumBenefit:   decPtr("300"),
			BenefitFrequency: "quarterly",
		}),
		domain.PrepareProgram(domain.Program{
			ID:               "northern",
			MinimumBenefit:   decPtr("50"),
			BenefitFrequency: "monthly",
			EligibilityRules: []domain.EligibilityRule{
				{ID: "r3", RuleType: "age", Operator: ">=", Value: "18", Active: true},
				{ID: "r4", RuleType: "gender", Operator: "===", Value: "male", Active: true, LogicGroup: 1},
			},
			GeographicCoverage: []domain.GeographicCoverage{{Region: "Irbid", CoverageType: "full", Active: true}},
			RequiredDocuments:  []domain.RequiredDocument{{DocumentType: "valid_id", IsMandatory: true, Active: true}},
		}),
	}
}

func TestEngine_EvaluatePrograms(t *testing.T) {
	engine := NewEngine()
	p := domain.EligibilityParams{
		Age:              domain.StringPtr("35"),
		Gender:           domain.StringPtr("female"),
		EmploymentStatus: domain.StringPtr("unemployed"),
		Region:           domain.StringPtr("Amman"),
		HasValidID:       domain.BoolPtr(true),
	}

	matches, err := engine.EvaluatePrograms(context.Background(), catalog(), p)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "cash", matches[0].Program.ID)
	assert.Equal(t, 100.0, matches[0].EligibilityScore)
	assert.True(t, matches[0].GeographicEligibility)
	assert.True(t, matches[0].CalculatedBenefit.Equal(dec("100")))

	assert.Equal(t, "northern", matches[1].Program.ID)
	assert.Equal(t, 50.0, matches[1].EligibilityScore)
	assert.False(t, matches[1].GeographicEligibility, "Amman is not covered")
	assert.Equal(t, map[string]bool{"valid_id": true}, matches[1].DocumentationStatus)

	assert.Equal(t, "pension", matches[2].Program.ID)
	assert.Equal(t, 0.0, matches[2].EligibilityScore, "fallback: 35 is below pension age")
	assert.True(t, matches[2].CalculatedBenefit.Equal(dec("100")), "quarterly 300 is 100 a month")
}

func TestEngine_EvaluatePrograms_SingleWorker(t *testing.T) {
	engine := NewEngine()
	engine.Workers = 1

	matches, err := engine.EvaluatePrograms(context.Background(), catalog(), domain.EligibilityParams{Age: domain.StringPtr("70")})
	require.NoError(t, err)
	assert.Len(t, matches, 3)
	assert.Equal(t, "pension", matches[0].Program.ID)
}

func TestEngine_EvaluatePrograms_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine().EvaluatePrograms(ctx, catalog(), domain.EligibilityParams{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_EvaluatePrograms_UsesRequestCache(t *testing.T) {
	engine := NewEngine()
	cache := NewRequestCache()
	ctx := WithRequestCache(context.Background(), cache)
	p := domain.EligibilityParams{Age: domain.StringPtr("70")}

	first, err := engine.EvaluatePrograms(ctx, catalog(), p)
	require.NoError(t, err)
	second, err := engine.EvaluatePrograms(ctx, catalog(), p)
	require.NoError(t, err)

	hits, misses := cache.Stats()
	assert.Equal(t, 3, misses)
	assert.Equal(t, 3, hits)
	assert.Equal(t, first, second)

	_, err = engine.EvaluatePrograms(ctx, catalog(), domain.EligibilityParams{Age: domain.StringPtr("71")})
	require.NoError(t, err)
	_, misses = cache.Stats()
	assert.Equal(t, 6, misses, "different params miss")
}

func TestEngine_LogsAnomalies(t *testing.T) {
	engine := NewEngine()
	logger := &TestLogger{}
	engine.SetLogger(logger)

	program := domain.PrepareProgram(domain.Program{
		ID:               "odd",
		BenefitFrequency: "fortnightly",
		EligibilityRules: []domain.EligibilityRule{{ID: "bad", RuleType: "age", Operator: "LIKE", Value: "3%", Active: true}},
	})

	match := engine.EvaluateProgram(program, domain.EligibilityParams{Age: domain.StringPtr("30")})

	assert.Equal(t, 0.0, match.EligibilityScore)
	warnings := logger.warnings()
	assert.Contains(t, warnings, `program odd: rule bad evaluation: unknown operator "LIKE"`)
	assert.Contains(t, warnings, `unknown benefit frequency "fortnightly"`)
}

// TestLogger is a simple logger for testing
type TestLogger struct {
	mu       sync.Mutex
	messages []string
}

func (tl *TestLogger) record(level, format string, args ...any) {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	tl.messages = append(tl.messages, level+": "+fmt.Sprintf(format, args...))
}

func (tl *TestLogger) Debugf(format string, args ...any) { tl.record("DEBUG", format, args...) }
func (tl *TestLogger) Infof(format string, args ...any)  { tl.record("INFO", format, args...) }
func (tl *TestLogger) Warnf(format string, args ...any)  { tl.record("WARN", format, args...) }
func (tl *TestLogger) Errorf(format string, args ...any) { tl.record("ERROR", format, args...) }

func (tl *TestLogger) warnings() string {
	tl.mu.Lock()
	defer tl.mu.Unlock()
	var out []string
	for _, m := range tl.messages {
		if strings.HasPrefix(m, "WARN: ") {
			out = append(out, m)
		}
	}
	return strings.Join(out, "\n")
}
