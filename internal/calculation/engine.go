package calculation

import (
	"context"
	"fmt"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds how many programs are evaluated at once.
const DefaultWorkers = 8

// Engine evaluates prepared programs against eligibility params.
type Engine struct {
	Logger  Logger
	Workers int
}

// NewEngine creates an engine with a no-op logger and the default worker count.
func NewEngine() *Engine {
	return &Engine{
		Logger:  NopLogger{},
		Workers: DefaultWorkers,
	}
}

// SetLogger sets the logger. A nil logger installs a no-op logger.
func (e *Engine) SetLogger(l Logger) {
	e.Logger = orNop(l)
}

// EvaluateProgram scores one program and computes its benefit, document
// status and geographic eligibility.
func (e *Engine) EvaluateProgram(program domain.Program, p domain.EligibilityParams) domain.ProgramMatch {
	region := ""
	if p.Region != nil {
		region = *p.Region
	}

	return domain.ProgramMatch{
		Program:               program,
		EligibilityScore:      Score(program, p, e.Logger),
		CalculatedBenefit:     CalculateBenefit(program, p, e.Logger),
		DocumentationStatus:   DocumentationStatus(program, p),
		GeographicEligibility: IsCovered(program.ActiveCoverage(), region),
	}
}

// EvaluatePrograms evaluates every program concurrently and returns the
// matches ranked by descending score. Each evaluation depends only on its
// program and the params; results are joined before ranking. When ctx
// carries a RequestCache, repeated evaluations within the request are
// served from it.
func (e *Engine) EvaluatePrograms(ctx context.Context, programs []domain.Program, p domain.EligibilityParams) ([]domain.ProgramMatch, error) {
	cache := RequestCacheFrom(ctx)
	matches := make([]domain.ProgramMatch, len(programs))

	g, ctx := errgroup.WithContext(ctx)
	workers := e.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	g.SetLimit(workers)

	for i := range programs {
		program := programs[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			key, err := CacheKey(program.ID, p)
			if err != nil {
				return fmt.Errorf("cache key for program %s: %w", program.ID, err)
			}
			matches[i] = cache.GetOrCompute(key, func() domain.ProgramMatch {
				return e.EvaluateProgram(program, p)
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	orNop(e.Logger).Debugf("evaluated %d programs", len(matches))
	return RankMatches(matches), nil
}
