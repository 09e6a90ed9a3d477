package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
)

// Report is what a command renders. Sections that were not computed are left
// nil and every formatter skips them.
type Report struct {
	Title       string                         `json:"title"`
	GeneratedAt time.Time                      `json:"generatedAt"`
	Matches     []domain.ProgramMatch          `json:"matches,omitempty"`
	Gap         *domain.GapAnalysis            `json:"gap,omitempty"`
	Programs    []domain.EnhancedProgram       `json:"programs,omitempty"`
	Eligibility *domain.EligibilityCalculation `json:"eligibility,omitempty"`
	Adjustments []domain.BenefitAdjustment     `json:"adjustments,omitempty"`
}

// Formatter renders a report in one output format.
type Formatter interface {
	Name() string
	Format(report *Report) ([]byte, error)
}

// FormatterFunc adapts a function to the Formatter interface.
type FormatterFunc struct {
	ID string
	F  func(report *Report) ([]byte, error)
}

func (f FormatterFunc) Name() string { return f.ID }

func (f FormatterFunc) Format(report *Report) ([]byte, error) { return f.F(report) }

var registry = map[string]Formatter{}

func register(f Formatter) {
	registry[f.Name()] = f
}

func init() {
	register(ConsoleFormatter{})
	register(JSONFormatter{})
	register(CSVFormatter{})
	register(HTMLFormatter{})
}

// GetFormatterByName returns the formatter registered under name. Names are
// case-insensitive.
func GetFormatterByName(name string) (Formatter, bool) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// FormatNames lists the registered format names in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteFormatted renders the report and writes it to a timestamped file in
// the working directory, returning the file name.
func WriteFormatted(f Formatter, report *Report, ext string) (string, error) {
	data, err := f.Format(report)
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("spcalc_report_%s.%s", time.Now().Format("20060102_150405"), ext)
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return filename, nil
}
