package output

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
	"strings"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

// CSVFormatter writes one table per report section. Matches are written
// first, then programs; sections are separated by a blank line.
type CSVFormatter struct{}

func (CSVFormatter) Name() string { return "csv" }

func (CSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	sections := 0
	next := func() {
		if sections > 0 {
			_ = w.Write(nil)
		}
		sections++
	}

	if report.Matches != nil {
		next()
		if err := writeMatchRows(w, report.Matches); err != nil {
			return nil, err
		}
	}
	if report.Gap != nil {
		next()
		g := report.Gap
		rows := [][]string{
			{"TotalBenefits", "MEBAmount", "Gap", "Coverage"},
			{g.TotalBenefits.StringFixed(2), g.MEBAmount.StringFixed(2), g.Gap.StringFixed(2), g.Coverage.StringFixed(2)},
		}
		if err := w.WriteAll(rows); err != nil {
			return nil, err
		}
	}
	if report.Programs != nil {
		next()
		if err := writeProgramRows(w, report.Programs); err != nil {
			return nil, err
		}
	}
	if e := report.Eligibility; e != nil {
		next()
		rows := [][]string{
			{"ProgramID", "Eligible", "CashAmount", "InKindAmount", "TotalAmount"},
			{e.ProgramID, strconv.FormatBool(e.Eligible), e.CashAmount.StringFixed(2), e.InKindAmount.StringFixed(2), e.TotalAmount.StringFixed(2)},
		}
		if err := w.WriteAll(rows); err != nil {
			return nil, err
		}
	}
	if report.Adjustments != nil {
		next()
		if err := w.Write([]string{"ProgramID", "Year", "AdjustmentRate", "EffectiveDate"}); err != nil {
			return nil, err
		}
		for _, a := range report.Adjustments {
			row := []string{a.ProgramID, strconv.Itoa(a.Year), a.AdjustmentRate.String(), a.EffectiveDate.Format("2006-01-02")}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func writeMatchRows(w *csv.Writer, matches []domain.ProgramMatch) error {
	if err := w.Write([]string{"ProgramID", "Program", "EligibilityScore", "MonthlyBenefit", "GeographicEligibility", "MissingDocuments"}); err != nil {
		return err
	}
	for _, m := range matches {
		var missing []string
		for doc, ok := range m.DocumentationStatus {
			if !ok {
				missing = append(missing, doc)
			}
		}
		sort.Strings(missing)
		row := []string{
			m.Program.ID,
			m.Program.Name,
			strconv.FormatFloat(m.EligibilityScore, 'f', 2, 64),
			m.CalculatedBenefit.StringFixed(2),
			strconv.FormatBool(m.GeographicEligibility),
			strings.Join(missing, ";"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeProgramRows(w *csv.Writer, programs []domain.EnhancedProgram) error {
	if err := w.Write([]string{"ProgramID", "Program", "Category", "CountryCode", "BenefitFrequency", "MinimumBenefit", "MaximumBenefit", "ActiveRules", "Documents", "Regions"}); err != nil {
		return err
	}
	sorted := append([]domain.EnhancedProgram(nil), programs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Program.Name < sorted[j].Program.Name })
	for _, p := range sorted {
		row := []string{
			p.Program.ID,
			p.Program.Name,
			p.Program.Category,
			p.Program.CountryCode,
			p.Program.BenefitFrequency,
			fixedOrEmpty(p.BenefitRange.Min),
			fixedOrEmpty(p.BenefitRange.Max),
			strconv.Itoa(p.ActiveRuleCount),
			strconv.Itoa(p.DocumentCount),
			strings.Join(p.CoveredRegions, ";"),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
