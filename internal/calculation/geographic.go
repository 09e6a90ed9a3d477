package calculation

import (
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

// IsCovered reports whether a program's coverage includes region.
//
// No coverage entries means no geographic restriction. A full "national"
// entry covers every region. Otherwise the region must have its own entry
// that is either full, or partial without special requirements.
func IsCovered(coverage []domain.GeographicCoverage, region string) bool {
	if len(coverage) == 0 {
		return true
	}

	for _, c := range coverage {
		if strings.EqualFold(strings.TrimSpace(c.Region), domain.NationalRegion) &&
			strings.EqualFold(c.CoverageType, domain.CoverageFull) {
			return true
		}
	}

	region = strings.TrimSpace(region)
	for _, c := range coverage {
		if !strings.EqualFold(strings.TrimSpace(c.Region), region) {
			continue
		}
		switch strings.ToLower(c.CoverageType) {
		case domain.CoverageFull:
			return true
		case domain.CoveragePartial:
			return c.SpecialRequirements == nil || strings.TrimSpace(*c.SpecialRequirements) == ""
		default:
			return false
		}
	}
	return false
}

// CoveredRegions lists the regions a program covers, excluded entries left out.
func CoveredRegions(coverage []domain.GeographicCoverage) []string {
	regions := make([]string, 0, len(coverage))
	for _, c := range coverage {
		if strings.EqualFold(c.CoverageType, domain.CoverageExcluded) {
			continue
		}
		regions = append(regions, c.Region)
	}
	return regions
}
