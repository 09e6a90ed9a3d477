package output

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

var (
	colorPrimary = lipgloss.Color("#7D56F4")
	colorSuccess = lipgloss.Color("#04B575")
	colorDanger  = lipgloss.Color("#FF5F87")
	colorMuted   = lipgloss.Color("#626262")
	colorBorder  = lipgloss.Color("#3C3C3C")

	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	sectionStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	subtitleStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	metricLabelStyle = lipgloss.NewStyle().Foreground(colorMuted)
	metricValueStyle = lipgloss.NewStyle().Bold(true)
	positiveStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	negativeStyle    = lipgloss.NewStyle().Foreground(colorDanger)
	headerStyle      = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle        = lipgloss.NewStyle().Padding(0, 1)
	cardStyle        = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorBorder).
				Padding(0, 2)
)

// ConsoleFormatter renders a styled terminal report.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Name() string { return "console" }

func (ConsoleFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer

	title := report.Title
	if title == "" {
		title = "Social Protection Report"
	}
	fmt.Fprintln(&buf, titleStyle.Render(title))
	if !report.GeneratedAt.IsZero() {
		fmt.Fprintln(&buf, subtitleStyle.Render("Generated "+report.GeneratedAt.Format("2006-01-02 15:04:05")))
	}
	fmt.Fprintln(&buf)

	if report.Matches != nil {
		writeMatches(&buf, report.Matches)
	}
	if report.Gap != nil {
		writeGap(&buf, *report.Gap)
	}
	if report.Programs != nil {
		writePrograms(&buf, report.Programs)
	}
	if report.Eligibility != nil {
		writeEligibility(&buf, *report.Eligibility)
	}
	if report.Adjustments != nil {
		writeAdjustments(&buf, report.Adjustments)
	}
	return buf.Bytes(), nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func writeMatches(buf *bytes.Buffer, matches []domain.ProgramMatch) {
	fmt.Fprintln(buf, sectionStyle.Render(fmt.Sprintf("ELIGIBLE PROGRAMS (%d)", len(matches))))
	if len(matches) == 0 {
		fmt.Fprintln(buf, subtitleStyle.Render("No programs matched."))
		fmt.Fprintln(buf)
		return
	}
	t := newTable("Program", "Category", "Score", "Monthly Benefit", "In Region", "Documents")
	for _, m := range matches {
		region := positiveStyle.Render("yes")
		if !m.GeographicEligibility {
			region = negativeStyle.Render("no")
		}
		t.Row(
			m.Program.Name,
			m.Program.Category,
			strconv.FormatFloat(m.EligibilityScore, 'f', 1, 64),
			FormatCurrency(m.CalculatedBenefit),
			region,
			documentSummary(m.DocumentationStatus),
		)
	}
	fmt.Fprintln(buf, t.Render())
	fmt.Fprintln(buf)
}

func writeGap(buf *bytes.Buffer, gap domain.GapAnalysis) {
	fmt.Fprintln(buf, sectionStyle.Render("BENEFITS GAP"))

	gapValue := FormatCurrency(gap.Gap)
	if gap.Gap.IsPositive() {
		gapValue = negativeStyle.Render(gapValue)
	} else {
		gapValue = positiveStyle.Render(gapValue)
	}
	cards := []string{
		metricCard("Total Benefits", metricValueStyle.Render(FormatCurrency(gap.TotalBenefits))),
		metricCard("Minimum Expenditure Basket", metricValueStyle.Render(FormatCurrency(gap.MEBAmount))),
		metricCard("Gap", gapValue),
		metricCard("Coverage", metricValueStyle.Render(FormatPercentage(gap.Coverage))),
	}
	fmt.Fprintln(buf, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	fmt.Fprintln(buf)
}

func metricCard(label, value string) string {
	return cardStyle.Render(metricLabelStyle.Render(label) + "\n" + value)
}

func writePrograms(buf *bytes.Buffer, programs []domain.EnhancedProgram) {
	fmt.Fprintln(buf, sectionStyle.Render(fmt.Sprintf("PROGRAMS (%d)", len(programs))))
	if len(programs) == 0 {
		fmt.Fprintln(buf, subtitleStyle.Render("No programs found."))
		fmt.Fprintln(buf)
		return
	}
	t := newTable("ID", "Program", "Country", "Frequency", "Benefit Range", "Rules", "Documents", "Regions")
	for _, p := range programs {
		regions := strings.Join(p.CoveredRegions, ", ")
		if regions == "" {
			regions = "all"
		}
		t.Row(
			p.Program.ID,
			p.Program.Name,
			p.Program.CountryCode,
			p.Program.BenefitFrequency,
			FormatBenefitRange(p.BenefitRange),
			fmt.Sprintf("%d / %d", p.ActiveRuleCount, p.ActiveBenefitRuleCount),
			fmt.Sprintf("%d (%d mandatory)", p.DocumentCount, p.MandatoryDocumentCount),
			regions,
		)
	}
	fmt.Fprintln(buf, t.Render())
	fmt.Fprintln(buf)
}

func writeEligibility(buf *bytes.Buffer, e domain.EligibilityCalculation) {
	fmt.Fprintln(buf, sectionStyle.Render("ELIGIBILITY: "+e.ProgramID))
	eligible := positiveStyle.Render("eligible")
	if !e.Eligible {
		eligible = negativeStyle.Render("not eligible")
	}
	fmt.Fprintln(buf, eligible)
	cards := []string{
		metricCard("Cash", metricValueStyle.Render(FormatCurrency(e.CashAmount))),
		metricCard("In-Kind", metricValueStyle.Render(FormatCurrency(e.InKindAmount))),
		metricCard("Total", metricValueStyle.Render(FormatCurrency(e.TotalAmount))),
	}
	fmt.Fprintln(buf, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	fmt.Fprintln(buf)
}

func writeAdjustments(buf *bytes.Buffer, adjustments []domain.BenefitAdjustment) {
	fmt.Fprintln(buf, sectionStyle.Render(fmt.Sprintf("BENEFIT ADJUSTMENTS (%d)", len(adjustments))))
	if len(adjustments) == 0 {
		fmt.Fprintln(buf, subtitleStyle.Render("No adjustments recorded."))
		fmt.Fprintln(buf)
		return
	}
	t := newTable("Program", "Year", "Rate", "Effective")
	for _, a := range adjustments {
		t.Row(
			a.ProgramID,
			strconv.Itoa(a.Year),
			FormatPercentage(a.AdjustmentRate.Shift(2)),
			a.EffectiveDate.Format("2006-01-02"),
		)
	}
	fmt.Fprintln(buf, t.Render())
	fmt.Fprintln(buf)
}
