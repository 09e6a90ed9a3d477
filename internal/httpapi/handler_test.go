package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Puppetdog/sp-calculator-sub000/internal/calculation"
	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/Puppetdog/sp-calculator-sub000/internal/metrics"
	"github.com/Puppetdog/sp-calculator-sub000/internal/service"
	"github.com/Puppetdog/sp-calculator-sub000/internal/store"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	programs := store.NewMemoryStore([]domain.Program{
		{
			ID:               "pension",
			Name:             "Senior Pension",
			Category:         domain.CategoryPension,
			CountryCode:      "JO",
			Active:           true,
			MinimumBenefit:   decPtr("100"),
			BenefitFrequency: "monthly",
		},
		{
			ID:               "family",
			Name:             "Family Cash",
			Category:         domain.CategorySocialAssistance,
			CountryCode:      "JO",
			Active:           true,
			MinimumBenefit:   decPtr("150"),
			BenefitFrequency: "monthly",
			EligibilityRules: []domain.EligibilityRule{
				{RuleType: "householdSize", Operator: ">=", Value: "4", Active: true},
			},
		},
	}, []domain.MEBValue{{CountryCode: "JO", Amount: decimal.NewFromInt(500)}})

	reg := prometheus.NewRegistry()
	svc := service.New(programs, service.WithMetrics(metrics.New(reg)))
	return NewRouter(svc, nil, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const submissionJSON = `{
	"basic": {"age": "67", "gender": "female", "countryOfResidence": "JO"},
	"household": {"householdSize": "4", "numberOfDependents": "2", "monthlyIncome": "300"}
}`

func TestEligibility(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/v1/eligibility", submissionJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp EligibilityResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Matches, 2)
	for _, m := range resp.Matches {
		assert.Equal(t, 100.0, m.EligibilityScore)
	}
}

func TestEligibility_ValidationError(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/v1/eligibility", `{"basic": {"age": "200", "gender": "f", "countryOfResidence": "JO"}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "validation_error", body.Error)
	require.Len(t, body.Issues, 1)
	assert.Equal(t, "age", body.Issues[0].Field)
}

func TestMalformedBody(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/v1/gap", `{"basic":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "bad_request", body.Error)
}

func TestGap(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/v1/gap", submissionJSON)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var gap domain.GapAnalysis
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&gap))
	assert.True(t, gap.TotalBenefits.Equal(decimal.NewFromInt(250)))
	assert.True(t, gap.Gap.Equal(decimal.NewFromInt(250)))
	assert.True(t, gap.Coverage.Equal(decimal.NewFromInt(50)))

	missing := strings.Replace(submissionJSON, `"JO"`, `"SY"`, 1)
	rec = do(t, h, http.MethodPost, "/v1/gap", missing)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBenefit(t *testing.T) {
	h := newTestRouter(t)
	params := `{"age": "30", "gender": "male", "countryOfResidence": "JO"}`

	rec := do(t, h, http.MethodPost, "/v1/programs/family/benefit", params)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp BenefitResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "family", resp.ProgramID)
	assert.True(t, resp.MonthlyBenefit.Equal(decimal.NewFromInt(150)))

	rec = do(t, h, http.MethodPost, "/v1/programs/unknown/benefit", params)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPrograms(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/v1/programs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var all ProgramsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	assert.Len(t, all.Programs, 2)

	rec = do(t, h, http.MethodGet, "/v1/programs?search=famly", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found ProgramsResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&found))
	require.Len(t, found.Programs, 1)
	assert.Equal(t, "Family Cash", found.Programs[0].Program.Name)
}

func TestAddProgramAndCOLA(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/v1/programs", `{"name": "Winter Aid", "countryCode": "JO", "active": true, "benefitFrequency": "quarterly", "minimumBenefit": "90"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var added domain.Program
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&added))
	require.NotEmpty(t, added.ID)

	rec = do(t, h, http.MethodPost, "/v1/programs", `{"name": "", "countryCode": "JO", "benefitFrequency": "monthly"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/programs/"+added.ID+"/cola", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/v1/programs/"+added.ID+"/cola", `{"rate": "0.05"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/programs/"+added.ID+"/adjustments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var history []domain.BenefitAdjustment
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.True(t, history[0].AdjustmentRate.Equal(decimal.RequireFromString("0.05")))

	rec = do(t, h, http.MethodPost, "/v1/programs/unknown/cola", `{"rate": 0.05}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConditionEligibility(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/v1/programs/pension/eligibility", `{"age": 70, "countryCode": "JO"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result domain.EligibilityCalculation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.True(t, result.Eligible)
	assert.Equal(t, "pension", result.ProgramID)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	do(t, h, http.MethodPost, "/v1/eligibility", submissionJSON)
	rec = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `spcalc_operations_total{operation="eligible_programs",outcome="ok"} 1`)
}

// failingService fails every call with an unclassified error.
type failingService struct {
	Service
}

func (failingService) ListEnhancedPrograms(context.Context) ([]domain.EnhancedProgram, error) {
	return nil, errors.New("connection refused")
}

func TestInternalErrorOmitsDescription(t *testing.T) {
	h := NewRouter(failingService{}, nil, nil)

	rec := do(t, h, http.MethodGet, "/v1/programs", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "internal_error", body["error"])
	_, ok := body["error_description"]
	assert.False(t, ok)
}

func TestRequestCacheMiddleware(t *testing.T) {
	var seen []*calculation.RequestCache
	h := RequestCache(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = append(seen, calculation.RequestCacheFrom(r.Context()))
	}))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", bytes.NewReader(nil)))
	}
	require.Len(t, seen, 2)
	assert.NotNil(t, seen[0])
	assert.NotSame(t, seen[0], seen[1], "each request gets a fresh cache")
}
