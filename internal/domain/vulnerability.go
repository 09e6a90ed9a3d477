package domain

import (
	"strconv"
	"strings"
)

// VulnerableThreshold is the score from which a beneficiary counts as vulnerable.
const VulnerableThreshold = 2

// ComputeVulnerabilityScore counts the vulnerability factors present in the
// params: disability, chronic illness, unemployment, very low per-person
// income, a high dependency ratio, and being a minor or elderly. Missing or
// unparseable values never add to the score.
func ComputeVulnerabilityScore(p EligibilityParams) int {
	score := 0
	if p.DisabilityStatus != nil && *p.DisabilityStatus != NoneStatus {
		score++
	}
	if p.ChronicIllnessStatus != nil && *p.ChronicIllnessStatus != NoneStatus {
		score++
	}
	if p.EmploymentStatus != nil && strings.EqualFold(strings.TrimSpace(*p.EmploymentStatus), "unemployed") {
		score++
	}
	if v, ok := parseNumber(p.HouseholdIncomePerPerson); ok && v < 100 {
		score++
	}
	if v, ok := parseNumber(p.DependencyRatio); ok && v >= 0.5 {
		score++
	}
	if age, ok := parseNumber(p.Age); ok && (age >= 60 || age < 18) {
		score++
	}
	return score
}

// VulnerabilityScoreOf returns the carried score when present and numeric,
// otherwise computes it.
func VulnerabilityScoreOf(p EligibilityParams) int {
	if v, ok := parseNumber(p.VulnerabilityScore); ok {
		return int(v)
	}
	return ComputeVulnerabilityScore(p)
}

func parseNumber(s *string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
