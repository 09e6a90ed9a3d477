// Package service is the caller-facing API of the calculator. It turns form
// submissions into params, loads candidate programs from the store, fans the
// evaluation out through the engine and assembles results.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Puppetdog/sp-calculator-sub000/internal/calculation"
	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/Puppetdog/sp-calculator-sub000/internal/metrics"
	"github.com/Puppetdog/sp-calculator-sub000/internal/store"
	"github.com/Puppetdog/sp-calculator-sub000/internal/transform"
	"github.com/Puppetdog/sp-calculator-sub000/internal/validation"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
)

// Operation names used for metrics and logs.
const (
	OpEligiblePrograms     = "eligible_programs"
	OpBenefitAmount        = "benefit_amount"
	OpBenefitsGap          = "benefits_gap"
	OpListPrograms         = "list_programs"
	OpConditionEligibility = "condition_eligibility"
	OpAdjustBenefits       = "adjust_benefits"
	OpAddProgram           = "add_program"
)

// Service orchestrates the store and the evaluation engine.
type Service struct {
	programs store.ProgramStore
	engine   *calculation.Engine
	logger   *slog.Logger
	metrics  *metrics.Metrics
	workers  int
	now      func() time.Time
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithWorkers bounds how many programs are evaluated concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// WithClock replaces the clock used to date COLA adjustments.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New constructs a Service.
func New(programs store.ProgramStore, opts ...Option) *Service {
	s := &Service{
		programs: programs,
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}

	s.engine = calculation.NewEngine()
	if s.workers > 0 {
		s.engine.Workers = s.workers
	}
	s.engine.SetLogger(engineLogger{logger: s.logger, metrics: s.metrics})
	return s
}

// GetEligiblePrograms returns the programs the submission scores above zero
// on, ranked by descending eligibility score. Geographic eligibility is
// reported per match, not used as a filter.
func (s *Service) GetEligiblePrograms(ctx context.Context, sub domain.FormSubmission) ([]domain.ProgramMatch, error) {
	start := time.Now()

	matches, err := s.eligiblePrograms(ctx, sub)
	s.observe(ctx, OpEligiblePrograms, start, err)
	return matches, err
}

func (s *Service) eligiblePrograms(ctx context.Context, sub domain.FormSubmission) ([]domain.ProgramMatch, error) {
	params, err := transform.ToEligibilityParams(sub)
	if err != nil {
		return nil, err
	}
	matches, err := s.evaluate(ctx, params, sub.Preferences)
	if err != nil {
		return nil, err
	}

	eligible := make([]domain.ProgramMatch, 0, len(matches))
	for _, m := range matches {
		if m.EligibilityScore > 0 {
			eligible = append(eligible, m)
		}
	}
	return eligible, nil
}

// CalculateBenefitAmount computes the monthly benefit of one program for
// already normalized params.
func (s *Service) CalculateBenefitAmount(ctx context.Context, programID string, p domain.EligibilityParams) (decimal.Decimal, error) {
	start := time.Now()

	program, err := s.programs.GetProgram(ctx, programID)
	if err != nil {
		err = fmt.Errorf("failed to calculate benefit amount: %w", err)
		s.observe(ctx, OpBenefitAmount, start, err)
		return decimal.Zero, err
	}

	amount := calculation.CalculateBenefit(program, p, s.engine.Logger)
	s.observe(ctx, OpBenefitAmount, start, nil)
	return amount, nil
}

// CalculateBenefitsGap compares the qualifying monthly benefits of a
// submission with its country's MEB. A country without an MEB record is an
// error; there is no default basket.
func (s *Service) CalculateBenefitsGap(ctx context.Context, sub domain.FormSubmission) (domain.GapAnalysis, error) {
	start := time.Now()

	gap, err := s.benefitsGap(ctx, sub)
	s.observe(ctx, OpBenefitsGap, start, err)
	return gap, err
}

func (s *Service) benefitsGap(ctx context.Context, sub domain.FormSubmission) (domain.GapAnalysis, error) {
	params, err := transform.ToEligibilityParams(sub)
	if err != nil {
		return domain.GapAnalysis{}, err
	}

	meb, err := s.programs.GetMEB(ctx, *params.CountryOfResidence)
	if err != nil {
		return domain.GapAnalysis{}, fmt.Errorf("failed to calculate benefits gap: %w", err)
	}

	matches, err := s.evaluate(ctx, params, sub.Preferences)
	if err != nil {
		return domain.GapAnalysis{}, err
	}
	return calculation.AnalyzeGap(matches, meb.Amount), nil
}

// evaluate scores every active program of the params' country of residence,
// narrowed to the preferred categories when there are any.
func (s *Service) evaluate(ctx context.Context, params domain.EligibilityParams, prefs *domain.PreferencesSection) ([]domain.ProgramMatch, error) {
	country := *params.CountryOfResidence
	programs, err := s.programs.ListActivePrograms(ctx, country)
	if err != nil {
		return nil, fmt.Errorf("list programs for %s: %w", country, err)
	}
	if prefs != nil {
		programs = filterCategories(programs, prefs.Categories)
	}

	cache := calculation.RequestCacheFrom(ctx)
	if cache == nil {
		cache = calculation.NewRequestCache()
		ctx = calculation.WithRequestCache(ctx, cache)
	}
	hitsBefore, missesBefore := cache.Stats()

	matches, err := s.engine.EvaluatePrograms(ctx, programs, params)
	if err != nil {
		return nil, fmt.Errorf("evaluate programs: %w", err)
	}

	hits, misses := cache.Stats()
	s.metrics.AddCacheLookups(hits-hitsBefore, misses-missesBefore)
	s.metrics.ObserveProgramsEvaluated(len(programs))
	s.logger.DebugContext(ctx, "programs evaluated",
		"country", country,
		"programs", len(programs),
		"cache_hits", hits-hitsBefore,
	)
	return matches, nil
}

func filterCategories(programs []domain.Program, categories []string) []domain.Program {
	if len(categories) == 0 {
		return programs
	}
	wanted := make(map[string]bool, len(categories))
	for _, c := range categories {
		wanted[categoryKey(c)] = true
	}

	kept := make([]domain.Program, 0, len(programs))
	for _, p := range programs {
		if wanted[categoryKey(p.Category)] {
			kept = append(kept, p)
		}
	}
	return kept
}

func categoryKey(c string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(c)), "-", "_")
}

// ListEnhancedPrograms returns every active program with its listing
// metadata.
func (s *Service) ListEnhancedPrograms(ctx context.Context) ([]domain.EnhancedProgram, error) {
	start := time.Now()

	programs, err := s.programs.ListAllActivePrograms(ctx)
	if err != nil {
		err = fmt.Errorf("list programs: %w", err)
		s.observe(ctx, OpListPrograms, start, err)
		return nil, err
	}

	out := make([]domain.EnhancedProgram, 0, len(programs))
	for _, p := range programs {
		out = append(out, Enhance(p))
	}
	s.observe(ctx, OpListPrograms, start, nil)
	return out, nil
}

// SearchPrograms lists the active programs whose name matches query. Names
// containing the query's characters in order match, as do names within a
// small edit distance of it. Closer names come first.
func (s *Service) SearchPrograms(ctx context.Context, query string) ([]domain.EnhancedProgram, error) {
	programs, err := s.ListEnhancedPrograms(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return programs, nil
	}

	type ranked struct {
		program  domain.EnhancedProgram
		distance int
	}
	var hits []ranked
	for _, p := range programs {
		name := strings.ToLower(p.Program.Name)
		distance := fuzzy.LevenshteinDistance(query, name)
		if fuzzy.MatchNormalizedFold(query, name) || distance <= typoThreshold(query) {
			hits = append(hits, ranked{program: p, distance: distance})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].distance < hits[j].distance
	})

	out := make([]domain.EnhancedProgram, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.program)
	}
	return out, nil
}

// typoThreshold is the edit distance tolerated for a query: one edit for
// short queries, otherwise 15% of its length.
func typoThreshold(query string) int {
	n := len([]rune(query))
	if n <= 6 {
		return 1
	}
	return (n*15 + 99) / 100
}

// Enhance derives the listing metadata of a prepared program.
func Enhance(p domain.Program) domain.EnhancedProgram {
	docs := p.ActiveDocuments()
	mandatory := 0
	for _, d := range docs {
		if d.IsMandatory {
			mandatory++
		}
	}
	return domain.EnhancedProgram{
		Program:                p,
		DocumentCount:          len(docs),
		MandatoryDocumentCount: mandatory,
		ActiveRuleCount:        len(p.ActiveEligibilityRules()),
		ActiveBenefitRuleCount: len(p.ActiveBenefitRules()),
		BenefitRange:           domain.BenefitRange{Min: p.MinimumBenefit, Max: p.MaximumBenefit},
		CoveredRegions:         calculation.CoveredRegions(p.ActiveCoverage()),
	}
}

// CalculateEligibility runs the flat program model for one beneficiary:
// base thresholds decide eligibility and benefit conditions add to the cash
// and in-kind amounts.
func (s *Service) CalculateEligibility(ctx context.Context, programID string, b domain.Beneficiary) (domain.EligibilityCalculation, error) {
	start := time.Now()

	program, err := s.programs.GetProgram(ctx, programID)
	if err != nil {
		err = fmt.Errorf("failed to calculate eligibility: %w", err)
		s.observe(ctx, OpConditionEligibility, start, err)
		return domain.EligibilityCalculation{}, err
	}

	result := calculation.CalculateConditionBenefits(program, b, s.engine.Logger)
	s.observe(ctx, OpConditionEligibility, start, nil)
	return result, nil
}

// AdjustBenefits applies a cost-of-living adjustment to a program's benefit
// bounds, effective now. rate is a fraction: 0.032 raises bounds by 3.2%.
func (s *Service) AdjustBenefits(ctx context.Context, programID string, rate decimal.Decimal) (domain.BenefitAdjustment, error) {
	start := time.Now()

	if rate.LessThanOrEqual(decimal.NewFromInt(-1)) {
		err := domain.NewValidationError(domain.FieldIssue{
			Field:   "adjustmentRate",
			Message: fmt.Sprintf("adjustment rate %s must be greater than -1", rate),
		})
		s.observe(ctx, OpAdjustBenefits, start, err)
		return domain.BenefitAdjustment{}, err
	}

	adj, err := s.programs.ApplyCOLA(ctx, programID, rate, s.now())
	s.observe(ctx, OpAdjustBenefits, start, err)
	if err != nil {
		return domain.BenefitAdjustment{}, err
	}

	s.metrics.IncrementCOLAApplied()
	s.logger.InfoContext(ctx, "benefits adjusted",
		"program_id", programID,
		"rate", rate.String(),
		"year", adj.Year,
	)
	return adj, nil
}

// ListAdjustments returns a program's COLA history, oldest first.
func (s *Service) ListAdjustments(ctx context.Context, programID string) ([]domain.BenefitAdjustment, error) {
	return s.programs.ListAdjustments(ctx, programID)
}

// AddProgram validates and stores a new program.
func (s *Service) AddProgram(ctx context.Context, p domain.Program) (domain.Program, error) {
	start := time.Now()

	if err := validation.ValidateProgram(p); err != nil {
		s.observe(ctx, OpAddProgram, start, err)
		return domain.Program{}, err
	}

	added, err := s.programs.AddProgram(ctx, p)
	s.observe(ctx, OpAddProgram, start, err)
	if err != nil {
		return domain.Program{}, err
	}

	s.logger.InfoContext(ctx, "program added",
		"program_id", added.ID,
		"name", added.Name,
		"country", added.CountryCode,
	)
	return added, nil
}

// observe records metrics for an operation and logs its failure.
func (s *Service) observe(ctx context.Context, operation string, start time.Time, err error) {
	s.metrics.ObserveOperation(operation, Outcome(err), start)
	if err != nil {
		s.logger.WarnContext(ctx, "operation failed",
			"operation", operation,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// Outcome classifies err for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
