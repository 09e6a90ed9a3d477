// Package store persists the program catalog, MEB values and COLA history.
// Programs are passed through domain.PrepareProgram once, as they enter a
// store. Every program a store returns carries only its active child rows,
// rules ordered by priority.
package store

import (
	"context"
	"time"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/shopspring/decimal"
)

// ProgramStore is the persistence collaborator of the service layer.
type ProgramStore interface {
	// ListActivePrograms returns active programs for a country.
	ListActivePrograms(ctx context.Context, countryCode string) ([]domain.Program, error)
	// ListAllActivePrograms returns every active program.
	ListAllActivePrograms(ctx context.Context) ([]domain.Program, error)
	// GetProgram returns a program by ID or a *domain.NotFoundError.
	GetProgram(ctx context.Context, id string) (domain.Program, error)
	// GetMEB returns a country's MEB or a *domain.NotFoundError.
	GetMEB(ctx context.Context, countryCode string) (domain.MEBValue, error)
	// SaveMEB creates or replaces a country's MEB.
	SaveMEB(ctx context.Context, meb domain.MEBValue) error
	// AddProgram stores a new program, assigning IDs where missing.
	AddProgram(ctx context.Context, p domain.Program) (domain.Program, error)
	// ApplyCOLA scales a program's benefit bounds by (1+rate) and records
	// the adjustment. Both happen or neither does.
	ApplyCOLA(ctx context.Context, programID string, rate decimal.Decimal, effective time.Time) (domain.BenefitAdjustment, error)
	// ListAdjustments returns a program's COLA history, oldest first.
	ListAdjustments(ctx context.Context, programID string) ([]domain.BenefitAdjustment, error)
}

// activeView returns a copy of an already prepared program with inactive
// children dropped.
func activeView(p domain.Program) domain.Program {
	out := p.DeepCopy()
	out.EligibilityRules = out.ActiveEligibilityRules()
	out.BenefitRules = out.ActiveBenefitRules()
	out.RequiredDocuments = out.ActiveDocuments()
	out.GeographicCoverage = out.ActiveCoverage()

	conditions := make([]domain.BenefitCondition, 0, len(out.BenefitConditions))
	for _, c := range out.BenefitConditions {
		if c.Active {
			conditions = append(conditions, c)
		}
	}
	out.BenefitConditions = conditions
	return out
}
