package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

// Seed loads programs and MEB values into a store. Programs whose ID is
// already stored are skipped and MEB values are upserted, so seeding the
// same catalog twice is a no-op. It returns the number of programs added.
func Seed(ctx context.Context, s ProgramStore, programs []domain.Program, mebs []domain.MEBValue) (int, error) {
	added := 0
	for _, p := range programs {
		if p.ID != "" {
			_, err := s.GetProgram(ctx, p.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return added, fmt.Errorf("seed program %s: %w", p.ID, err)
			}
		}
		if _, err := s.AddProgram(ctx, p); err != nil {
			return added, fmt.Errorf("seed program %s: %w", p.Name, err)
		}
		added++
	}
	for _, m := range mebs {
		if err := s.SaveMEB(ctx, m); err != nil {
			return added, fmt.Errorf("seed MEB %s: %w", m.CountryCode, err)
		}
	}
	return added, nil
}
