package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryStore keeps the catalog in process memory. It backs the CLI when a
// YAML catalog is used instead of a database, and the service tests.
type MemoryStore struct {
	mu          sync.RWMutex
	programs    map[string]domain.Program
	order       []string
	mebs        map[string]domain.MEBValue
	adjustments map[string][]domain.BenefitAdjustment
}

// NewMemoryStore creates a store seeded with programs and MEB values.
func NewMemoryStore(programs []domain.Program, mebs []domain.MEBValue) *MemoryStore {
	s := &MemoryStore{
		programs:    make(map[string]domain.Program, len(programs)),
		mebs:        make(map[string]domain.MEBValue, len(mebs)),
		adjustments: make(map[string][]domain.BenefitAdjustment),
	}
	for _, p := range programs {
		s.put(withIDs(p))
	}
	for _, m := range mebs {
		s.mebs[countryKey(m.CountryCode)] = m
	}
	return s
}

// put stores the prepared form of p and returns it.
func (s *MemoryStore) put(p domain.Program) domain.Program {
	p = domain.PrepareProgram(p)
	if _, exists := s.programs[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.programs[p.ID] = p
	return p
}

func (s *MemoryStore) ListActivePrograms(_ context.Context, countryCode string) ([]domain.Program, error) {
	return s.list(func(p domain.Program) bool {
		return strings.EqualFold(p.CountryCode, countryCode)
	}), nil
}

func (s *MemoryStore) ListAllActivePrograms(_ context.Context) ([]domain.Program, error) {
	return s.list(func(domain.Program) bool { return true }), nil
}

func (s *MemoryStore) list(keep func(domain.Program) bool) []domain.Program {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Program
	for _, id := range s.order {
		p := s.programs[id]
		if p.Active && keep(p) {
			out = append(out, activeView(p))
		}
	}
	return out
}

func (s *MemoryStore) GetProgram(_ context.Context, id string) (domain.Program, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.programs[id]
	if !ok {
		return domain.Program{}, domain.NewNotFoundError("program", id)
	}
	return activeView(p), nil
}

func (s *MemoryStore) GetMEB(_ context.Context, countryCode string) (domain.MEBValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.mebs[countryKey(countryCode)]
	if !ok {
		return domain.MEBValue{}, domain.NewNotFoundError("MEB for country", countryCode)
	}
	return m, nil
}

func (s *MemoryStore) SaveMEB(_ context.Context, meb domain.MEBValue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mebs[countryKey(meb.CountryCode)] = meb
	return nil
}

func (s *MemoryStore) AddProgram(_ context.Context, p domain.Program) (domain.Program, error) {
	p = withIDs(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.put(p).DeepCopy(), nil
}

// ApplyCOLA builds the adjusted program and the history entry before
// publishing either, so readers never observe one without the other.
func (s *MemoryStore) ApplyCOLA(ctx context.Context, programID string, rate decimal.Decimal, effective time.Time) (domain.BenefitAdjustment, error) {
	if err := ctx.Err(); err != nil {
		return domain.BenefitAdjustment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.programs[programID]
	if !ok {
		return domain.BenefitAdjustment{}, domain.NewNotFoundError("program", programID)
	}

	adjusted := p.DeepCopy()
	adjusted.MinimumBenefit = domain.AdjustedBenefit(p.MinimumBenefit, rate)
	adjusted.MaximumBenefit = domain.AdjustedBenefit(p.MaximumBenefit, rate)

	adj := domain.BenefitAdjustment{
		ID:             uuid.NewString(),
		ProgramID:      programID,
		AdjustmentRate: rate,
		EffectiveDate:  effective,
		Year:           effective.Year(),
	}

	s.programs[programID] = adjusted
	s.adjustments[programID] = append(s.adjustments[programID], adj)
	return adj, nil
}

func (s *MemoryStore) ListAdjustments(_ context.Context, programID string) ([]domain.BenefitAdjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.programs[programID]; !ok {
		return nil, domain.NewNotFoundError("program", programID)
	}
	return append([]domain.BenefitAdjustment(nil), s.adjustments[programID]...), nil
}

// withIDs returns a copy of p with a UUID on the program and on every child
// row that lacks one.
func withIDs(p domain.Program) domain.Program {
	p = p.DeepCopy()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.EligibilityRules {
		r := &p.EligibilityRules[i]
		r.ID = orNewID(r.ID)
		r.ProgramID = p.ID
	}
	for i := range p.BenefitRules {
		r := &p.BenefitRules[i]
		r.ID = orNewID(r.ID)
		r.ProgramID = p.ID
	}
	for i := range p.BenefitConditions {
		c := &p.BenefitConditions[i]
		c.ID = orNewID(c.ID)
		c.ProgramID = p.ID
	}
	for i := range p.RequiredDocuments {
		d := &p.RequiredDocuments[i]
		d.ID = orNewID(d.ID)
		for j := range d.Alternatives {
			d.Alternatives[j].ID = orNewID(d.Alternatives[j].ID)
		}
	}
	for i := range p.GeographicCoverage {
		p.GeographicCoverage[i].ID = orNewID(p.GeographicCoverage[i].ID)
	}
	return p
}

func orNewID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	return id
}

func countryKey(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
